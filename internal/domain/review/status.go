package review

import "fmt"

// Status is the review lifecycle state. It only moves forward:
// Pending → Completed → Acknowledged.
type Status string

const (
	StatusPending      Status = "Pending"
	StatusCompleted    Status = "Completed"
	StatusAcknowledged Status = "Acknowledged"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusAcknowledged:
		return true
	}
	return false
}

// TransitionError reports a lifecycle move the state machine rejects.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition review from %s to %s", e.From, e.To)
}

// canSubmit guards the Submit operation. A Pending review is always
// submittable; a Completed one only when resubmission is enabled.
func canSubmit(from Status, allowResubmission bool) error {
	switch from {
	case StatusPending:
		return nil
	case StatusCompleted:
		if allowResubmission {
			return nil
		}
	}
	return &TransitionError{From: from, To: StatusCompleted}
}

// canAcknowledge guards the Acknowledge operation: only a Completed review
// can be acknowledged.
func canAcknowledge(from Status) error {
	if from == StatusCompleted {
		return nil
	}
	return &TransitionError{From: from, To: StatusAcknowledged}
}
