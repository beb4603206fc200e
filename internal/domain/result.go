// Package domain contains the request-level types shared by the translation
// core and its HTTP and Lambda adapters.
package domain

import "codeberg.org/snonux/jsontranslate/internal/jsontree"

// Status is the outcome of a request.
type Status string

const (
	StatusSuccess        Status = "success"
	StatusPartialFailure Status = "partial_failure"
	StatusError          Status = "error"
)

// NoteKind tells a clarification from a recorded failure.
type NoteKind string

const (
	NoteClarification NoteKind = "clarification"
	NoteFailure       NoteKind = "failure"
)

// Note annotates the leaf at Path.
type Note struct {
	Path    string   `json:"path"`
	Kind    NoteKind `json:"kind"`
	Message string   `json:"note"`
}

// Result is the outcome of one completed traversal.
type Result struct {
	Status Status
	Data   jsontree.Value
	Notes  []Note
}

// Failures counts the failure notes of r.
func (r *Result) Failures() int {
	n := 0
	for _, note := range r.Notes {
		if note.Kind == NoteFailure {
			n++
		}
	}
	return n
}

// State is a step of the request lifecycle.
type State int

const (
	StateReceived State = iota
	StateTraversing
	StateReconstructing
	StateCompleted
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateReceived:
		return "received"
	case StateTraversing:
		return "traversing"
	case StateReconstructing:
		return "reconstructing"
	case StateCompleted:
		return "completed"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}
