package engine

import (
	"fmt"

	"github.com/dshills/findview/internal/resources"
)

// State is the search state of an engine.
type State int

const (
	// StateIdle means there is no search pattern.
	StateIdle State = iota
	// StateSearching means matches are being recomputed.
	StateSearching
	// StateHasMatches means the last search found at least one match.
	StateHasMatches
	// StateNoMatches means the last search found nothing.
	StateNoMatches
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSearching:
		return "searching"
	case StateHasMatches:
		return "has-matches"
	case StateNoMatches:
		return "no-matches"
	default:
		return "unknown"
	}
}

// NoPattern is the Result count reported when the search string is empty.
const NoPattern = -1

// Result is published after every search.
type Result struct {
	// Count is the number of matches, or NoPattern.
	Count int
	// Err is the pattern error of the search, if any.
	Err error
}

// Beeper is called when a search narrowed by typing found nothing.
type Beeper func()

// Status describes what a find bar should display.
type Status struct {
	Visible           bool
	NextEnabled       bool
	PrevEnabled       bool
	ReplaceEnabled    bool
	ReplaceAllEnabled bool
	NoResults         bool
	Message           string
	Icon              resources.Key
	Err               error
}

// Messages shown in the status line.
const (
	MessageNoMatch = "No match found"
	messageMatches = "%d matches"
)

func newStatus(hasEditor bool, find string, matches int, err error) Status {
	if !hasEditor || find == "" {
		return Status{}
	}
	if matches == 0 {
		return Status{
			Visible:   true,
			NoResults: true,
			Message:   MessageNoMatch,
			Icon:      resources.StatusWarn,
			Err:       err,
		}
	}
	return Status{
		Visible:           true,
		NextEnabled:       true,
		PrevEnabled:       true,
		ReplaceEnabled:    true,
		ReplaceAllEnabled: true,
		Message:           fmt.Sprintf(messageMatches, matches),
		Icon:              resources.StatusInfo,
	}
}
