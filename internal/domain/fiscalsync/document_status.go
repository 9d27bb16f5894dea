package fiscalsync

import "fmt"

// DocumentStatus is the submission state of a fiscal document.
type DocumentStatus string

const (
	DocumentStatusDraft              DocumentStatus = "DRAFT"
	DocumentStatusReferencesResolved DocumentStatus = "REFERENCES_RESOLVED"
	DocumentStatusSubmitted          DocumentStatus = "SUBMITTED"
	DocumentStatusRemoteIDAssigned   DocumentStatus = "REMOTE_ID_ASSIGNED"
	DocumentStatusBackfilled         DocumentStatus = "LOCAL_IDS_BACKFILLED"
	DocumentStatusCancelled          DocumentStatus = "CANCELLED"
)

var documentTransitions = map[DocumentStatus][]DocumentStatus{
	DocumentStatusDraft:              {DocumentStatusReferencesResolved},
	DocumentStatusReferencesResolved: {DocumentStatusSubmitted, DocumentStatusDraft},
	DocumentStatusSubmitted:          {DocumentStatusRemoteIDAssigned, DocumentStatusDraft},
	DocumentStatusRemoteIDAssigned:   {DocumentStatusBackfilled, DocumentStatusCancelled},
	DocumentStatusBackfilled:         {DocumentStatusCancelled},
}

// IsValid returns true if the status is known.
func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocumentStatusDraft, DocumentStatusReferencesResolved, DocumentStatusSubmitted,
		DocumentStatusRemoteIDAssigned, DocumentStatusBackfilled, DocumentStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving to next is allowed.
func (s DocumentStatus) CanTransitionTo(next DocumentStatus) bool {
	for _, allowed := range documentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsIssued reports whether the provider has certified the document.
func (s DocumentStatus) IsIssued() bool {
	return s == DocumentStatusRemoteIDAssigned || s == DocumentStatusBackfilled
}

// IsTerminal returns true for states with no further transitions.
func (s DocumentStatus) IsTerminal() bool {
	return len(documentTransitions[s]) == 0
}

func (s DocumentStatus) String() string {
	return string(s)
}

func transitionError(op string, from, to DocumentStatus) error {
	return NewIllegalStateError(op, fmt.Sprintf("cannot move document from %s to %s", from, to), ErrInvalidTransition)
}
