package model

import "fmt"

// Session status values, in journey order
const (
	StatusUploading      = "uploading"
	StatusATSProcessing  = "ats_processing"
	StatusATSReady       = "ats_ready"
	StatusConfigured     = "configured"
	StatusInterviewReady = "interview_ready"
	StatusInProgress     = "in_progress"
	StatusCompleted      = "completed"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusUploading, StatusATSProcessing, StatusATSReady, StatusConfigured,
		StatusInterviewReady, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// statusTransitions is the closed set of allowed forward moves. A session
// never goes backwards and never skips the interview stages, but a retry of
// the current stage (same status written again) is always allowed.
var statusTransitions = map[string][]string{
	StatusUploading:      {StatusATSProcessing},
	StatusATSProcessing:  {StatusATSReady},
	StatusATSReady:       {StatusConfigured},
	StatusConfigured:     {StatusInterviewReady},
	StatusInterviewReady: {StatusInProgress},
	StatusInProgress:     {StatusCompleted},
	StatusCompleted:      {},
}

// CanTransition reports whether a session may move from one status to
// another. Writing the current status again is a legal no-op.
func CanTransition(from, to string) bool {
	if from == to {
		return ValidStatus(from)
	}
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ErrInvalidTransition is returned when a status patch would skip or
// reverse a stage.
type ErrInvalidTransition struct {
	From string
	To   string
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}
