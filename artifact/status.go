package artifact

import "strings"

// Status is the approval state of an artifact.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Presentation-layer labels that some surfaces use. They map onto the core
// three-state machine and never introduce new transitions.
const (
	labelUnderReview       = "under_review"       // a draft sitting in review
	labelApprovedWithNotes = "approved_with_notes" // approved, notes attached
	labelRequiresRevision  = "requires_revision"  // a draft sent back for rework
)

// ParseStatus normalizes a status label to a core Status.
// Extended presentation labels collapse onto draft/approved.
func ParseStatus(s string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(StatusDraft), labelUnderReview, labelRequiresRevision:
		return StatusDraft, true
	case string(StatusApproved), labelApprovedWithNotes:
		return StatusApproved, true
	case string(StatusRejected):
		return StatusRejected, true
	}
	return "", false
}

// rank orders statuses for requirement checks. Rejected never satisfies a
// requirement, so it ranks below draft.
func (s Status) rank() int {
	switch s {
	case StatusDraft:
		return 1
	case StatusApproved:
		return 2
	default:
		return 0
	}
}

// Satisfies reports whether an artifact in status s meets a requirement for
// at least min. Draft < approved; rejected satisfies nothing.
func (s Status) Satisfies(min Status) bool {
	if s == StatusRejected {
		return false
	}
	return s.rank() >= min.rank()
}

// Valid reports whether s is one of the three core states.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// canTransition encodes the lifecycle state machine:
//
//	draft    -> approved (approve)
//	draft    -> rejected (reject)
//	approved -> draft    (reopen, the only way to un-approve)
//
// Everything else is rejected.
func canTransition(from, to Status) bool {
	switch from {
	case StatusDraft:
		return to == StatusApproved || to == StatusRejected
	case StatusApproved:
		return to == StatusDraft
	}
	return false
}
