package models

import "fmt"

// LawyerRequestStatus tracks the lawyer-assignment state of a case:
// none -> pending -> approved | rejected. The status starts as pending iff a
// lawyer type other than "none" was requested at case creation.
type LawyerRequestStatus string

// Lawyer request states
const (
	LawyerRequestNone     LawyerRequestStatus = "none"
	LawyerRequestPending  LawyerRequestStatus = "pending"
	LawyerRequestApproved LawyerRequestStatus = "approved"
	LawyerRequestRejected LawyerRequestStatus = "rejected"
)

// LawyerType describes how a case wants representation assigned
type LawyerType string

// Lawyer types
const (
	LawyerTypePublic   LawyerType = "public"
	LawyerTypePersonal LawyerType = "personal"
	LawyerTypeNone     LawyerType = "none"
)

// Valid reports whether t is a known lawyer type
func (t LawyerType) Valid() bool {
	return t == LawyerTypePublic || t == LawyerTypePersonal || t == LawyerTypeNone
}

// InitialRequestStatus returns the lawyer request status a freshly registered
// case must carry for the given lawyer type
func (t LawyerType) InitialRequestStatus() LawyerRequestStatus {
	if t == LawyerTypeNone {
		return LawyerRequestNone
	}
	return LawyerRequestPending
}

// ErrInvalidTransition is returned when a lawyer request transition is not
// allowed from the current state
type ErrInvalidTransition struct {
	From, To LawyerRequestStatus
}

func (e ErrInvalidTransition) Error() string {
	return fmt.Sprintf("invalid lawyer request transition %s -> %s", e.From, e.To)
}

// CanTransition reports whether moving from s to next is a legal transition.
// Only pending requests can be resolved; approved and rejected are terminal.
func (s LawyerRequestStatus) CanTransition(next LawyerRequestStatus) bool {
	switch s {
	case LawyerRequestNone:
		return next == LawyerRequestPending
	case LawyerRequestPending:
		return next == LawyerRequestApproved || next == LawyerRequestRejected
	default:
		return false
	}
}

// Transition validates and returns the next state
func (s LawyerRequestStatus) Transition(next LawyerRequestStatus) (LawyerRequestStatus, error) {
	if !s.CanTransition(next) {
		return s, ErrInvalidTransition{From: s, To: next}
	}
	return next, nil
}
