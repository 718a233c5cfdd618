package services

import (
	"strings"
	"time"
)

// RevealFiller stands in for characters not yet revealed.
const RevealFiller = "?"

const (
	revealFirstAt    = 1500 * time.Millisecond
	revealLastAt     = 3500 * time.Millisecond
	revealInteriorAt = 5500 * time.Millisecond
	revealStep       = 1000 * time.Millisecond
	revealSettle     = 1500 * time.Millisecond
)

// RevealFrame is one checkpoint of the first-prize name reveal.
type RevealFrame struct {
	OffsetMS int64  `json:"offsetMs"`
	Text     string `json:"text"`
}

// Offset is the time after the winner popup opens at which Text is shown.
func (f RevealFrame) Offset() time.Duration {
	return time.Duration(f.OffsetMS) * time.Millisecond
}

// RevealFrames builds the progressive reveal for name: first character,
// then first and last, then one interior character per second, and finally
// the whole name. Characters are runes, not bytes.
func RevealFrames(name string) []RevealFrame {
	r := []rune(name)
	n := len(r)
	if n == 0 {
		return nil
	}

	frames := []RevealFrame{frame(revealFirstAt, string(r[0])+strings.Repeat(RevealFiller, n-1))}
	if n <= 2 {
		return append(frames, frame(revealLastAt, name))
	}

	last := string(r[n-1])
	frames = append(frames, frame(revealLastAt, string(r[0])+strings.Repeat(RevealFiller, n-2)+last))

	for i := 1; i <= n-2; i++ {
		at := revealInteriorAt + time.Duration(i-1)*revealStep
		frames = append(frames, frame(at, string(r[:i+1])+strings.Repeat(RevealFiller, n-i-2)+last))
	}
	lastInterior := revealInteriorAt + time.Duration(n-3)*revealStep
	return append(frames, frame(lastInterior+revealSettle, name))
}

func frame(at time.Duration, text string) RevealFrame {
	return RevealFrame{OffsetMS: at.Milliseconds(), Text: text}
}
