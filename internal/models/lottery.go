package models

import "time"

// PickedAtLayout is the ISO-8601 layout used for Winner.PickedAt,
// millisecond precision in UTC, e.g. 2024-01-01T00:00:00.000Z.
const PickedAtLayout = "2006-01-02T15:04:05.000Z07:00"

// Participant represents a person entering the draw.
// N is unique within a saved participant set but need not be sequential.
type Participant struct {
	N    int    `json:"n"`
	Name string `json:"name"`
}

// Winner is a snapshot of a Participant taken at the moment it was drawn.
type Winner struct {
	N        int    `json:"n"`
	Name     string `json:"name"`
	PickedAt string `json:"pickedAt"`
}

// NewWinner stamps p with the given time.
func NewWinner(p Participant, at time.Time) Winner {
	return Winner{N: p.N, Name: p.Name, PickedAt: at.UTC().Format(PickedAtLayout)}
}

// Participant returns the participant the winner was drawn from.
func (w Winner) Participant() Participant {
	return Participant{N: w.N, Name: w.Name}
}

// Settings holds operator toggles that survive restarts.
type Settings struct {
	AllowRepeatWinners bool `json:"allowRepeatWinners"`
}

// ImportError reports a problem with one row of an imported file.
// Row is 1-based; row 0 means the whole file was rejected.
type ImportError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ParseResult is the outcome of parsing an uploaded participant file.
type ParseResult struct {
	Participants []Participant `json:"participants"`
	Errors       []ImportError `json:"errors"`
}
