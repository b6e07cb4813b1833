// Package rev holds the authoritative state of one collaboratively-edited
// document: its content plus the append-only revision log, and the rebase
// protocol that serializes concurrent client edits into that log.
package rev

import (
	"errors"
	"fmt"

	"github.com/penmux/penmux/ot"
)

// ErrRevisionOutOfRange is returned when a client claims a revision that is
// negative or beyond the current log.
var ErrRevisionOutOfRange = errors.New("rev: revision out of range")

// Server reconciles incoming operations against the document history.
//
// It is not safe for concurrent use: callers must serialize access per
// document (different documents can proceed fully in parallel).
type Server struct {
	doc *ot.Doc
	log []ot.Wrapped
}

// New builds a Server over the given document. history, if any, is the
// revision log the document is the product of.
func New(doc *ot.Doc, history []ot.Wrapped) *Server {
	return &Server{doc: doc, log: history}
}

// Doc returns the current document.
func (s *Server) Doc() *ot.Doc {
	return s.doc
}

// Revision returns the number of committed operations.
func (s *Server) Revision() int {
	return len(s.log)
}

// History returns the committed operations from the given revision on.
func (s *Server) History(since int) []ot.Wrapped {
	if since < 0 || since > len(s.log) {
		return nil
	}
	out := make([]ot.Wrapped, len(s.log)-since)
	copy(out, s.log[since:])
	return out
}

// Receive rebases an operation produced against the given revision past
// every operation committed since, applies it, appends it to the log and
// returns it. The returned rebased operation — not the client's original —
// is what must be stored, acknowledged and broadcast.
//
// A bad revision fails with ErrRevisionOutOfRange; a length mismatch during
// apply means corrupt history or a broken client and also fails without
// mutating state. No error here is retried.
func (s *Server) Receive(revision int, w ot.Wrapped) (ot.Wrapped, error) {
	if revision < 0 || revision > len(s.log) {
		return ot.Wrapped{}, fmt.Errorf("%w: %d with log length %d", ErrRevisionOutOfRange, revision, len(s.log))
	}

	// Rebase past everything the client hadn't seen. History is already
	// committed, so it goes first into the transform and its inserts win
	// position ties.
	for _, committed := range s.log[revision:] {
		var err error
		if _, w, err = ot.TransformWrapped(committed, w); err != nil {
			return ot.Wrapped{}, err
		}
	}

	doc, err := w.Op.Apply(s.doc)
	if err != nil {
		return ot.Wrapped{}, err
	}

	s.doc = doc
	s.log = append(s.log, w)
	return w, nil
}
