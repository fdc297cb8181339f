package messages

import "time"

// Event is the base interface for scan events delivered to observers.
type Event interface {
	Type() string
}

// Event type constants for type identification
const (
	TypeStateChanged = "StateChanged"
	TypeItemAccepted = "ItemAccepted"
	TypeItemSkipped  = "ItemSkipped"
	TypeItemFiltered = "ItemFiltered"
	TypeErrorCounted = "ErrorCounted"
	TypeScanFinished = "ScanFinished"
)

// StateChanged - the state machine moved from one state to another
type StateChanged struct {
	SessionID string
	Item      int
	From      string
	To        string
}

func (m StateChanged) Type() string { return TypeStateChanged }

// ItemAccepted - a record passed validation and was appended
type ItemAccepted struct {
	SessionID string
	Item      int
	RecordID  string
	Summary   string
	Attempts  int
	Elapsed   time.Duration
	Delay     time.Duration
}

func (m ItemAccepted) Type() string { return TypeItemAccepted }

// ItemSkipped - an item was given up after retries or a validation failure
type ItemSkipped struct {
	SessionID string
	Item      int
	Category  string
	Err       error
}

func (m ItemSkipped) Type() string { return TypeItemSkipped }

// ItemFiltered - a valid record fell below the rarity or level filter
type ItemFiltered struct {
	SessionID string
	Item      int
	Reason    string
}

func (m ItemFiltered) Type() string { return TypeItemFiltered }

// ErrorCounted - one failure was added to the error tally
type ErrorCounted struct {
	SessionID string
	Item      int
	Category  string
	Attempt   int
	Err       error
}

func (m ErrorCounted) Type() string { return TypeErrorCounted }

// ScanFinished - the machine reached a terminal state
type ScanFinished struct {
	SessionID string
	Outcome   string
	Accepted  int
	Skipped   int
	Filtered  int
	Elapsed   time.Duration
	Err       error
}

func (m ScanFinished) Type() string { return TypeScanFinished }
