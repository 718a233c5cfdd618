package services

import "luckydraw/internal/models"

// Phase is the draw engine state.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseSpinning  Phase = "spinning"
	PhaseSlowing   Phase = "slowing"
	PhaseRevealing Phase = "revealing"
)

// EventType names what changed in an Event.
type EventType string

const (
	// EventState is sent on every phase change and on pool changes.
	EventState EventType = "state"
	// EventTick is sent for each re-roll of the spinning candidate.
	EventTick EventType = "tick"
	// EventCountdown is sent for each slowdown step.
	EventCountdown EventType = "countdown"
	// EventWinner is sent once a winner has been committed.
	EventWinner EventType = "winner"
	// EventError is sent when a draw was abandoned because the store failed.
	EventError EventType = "error"
)

// Snapshot is what the presentation layer needs to render the draw.
type Snapshot struct {
	Phase      Phase  `json:"phase"`
	DrawID     string `json:"drawId,omitempty"`
	FirstPrize bool   `json:"firstPrize"`
	// Display is the text for the spin box: the candidate name, or a
	// placeholder while first-prize mode hides it.
	Display   string              `json:"display"`
	Candidate *models.Participant `json:"candidate,omitempty"`
	Countdown *int                `json:"countdown,omitempty"`
	Eligible  int                 `json:"eligible"`
	Total     int                 `json:"total"`

	AllowRepeatWinners bool `json:"allowRepeatWinners"`
	CanStart           bool `json:"canStart"`
	CanStop            bool `json:"canStop"`
}

// Event is published to the engine listener.
type Event struct {
	Type     EventType      `json:"type"`
	Snapshot Snapshot       `json:"snapshot"`
	Winner   *models.Winner `json:"winner,omitempty"`
	Message  string         `json:"message,omitempty"`
}
