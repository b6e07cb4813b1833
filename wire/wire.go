// Package wire defines the JSON messages of the session protocol.
//
// Client-to-server payloads are kept raw so a malformed operation or
// selection is a per-message decode failure the coordinator can log and
// drop, rather than a connection-fatal error.
package wire

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/penmux/penmux/ot"
)

// Event types. The same names appear in both directions where the table in
// the protocol has matching rows.
const (
	TypeDoc        = "doc"
	TypeOperation  = "operation"
	TypeSelection  = "selection"
	TypeAck        = "ack"
	TypeClientJoin = "client_join"
	TypeClientLeft = "client_left"
	TypeSetName    = "set_name"
)

// ErrMalformedPayload wraps any wire decode failure.
var ErrMalformedPayload = errors.New("wire: malformed payload")

// Client is one participant's ephemeral record.
type Client struct {
	ID        int          `json:"id"`
	Name      string       `json:"name"`
	Selection ot.Selection `json:"selection,omitempty"`
}

// Snapshot is the state a newly-joined client needs to catch up: the plain
// document text, the revision counter, the other participants, and the
// committed operations to replay for rich-text attributes.
//
// Epoch identifies this in-memory instance of the room; a client that
// reconnects and sees a different epoch must discard its local history.
type Snapshot struct {
	Epoch      string         `json:"epoch"`
	Document   string         `json:"document"`
	Revision   int            `json:"revision"`
	Clients    map[int]Client `json:"clients"`
	Operations []ot.Wrapped   `json:"operations"`
}

// ClientEvent is a message from a client.
type ClientEvent struct {
	Type      string          `json:"type"`
	Revision  int             `json:"revision"`
	Operation json.RawMessage `json:"operation,omitempty"`
	Selection json.RawMessage `json:"selection,omitempty"`
	Name      string          `json:"name,omitempty"`
}

// ServerEvent is a message to a client.
type ServerEvent struct {
	Type      string        `json:"type"`
	Client    int           `json:"client,omitempty"`
	Name      string        `json:"name,omitempty"`
	Operation *ot.Operation `json:"operation,omitempty"`
	Selection ot.Selection  `json:"selection,omitempty"`
	Join      *Client       `json:"join,omitempty"`
	Doc       *Snapshot     `json:"doc,omitempty"`
}

// DecodeOperation decodes a raw operation payload.
func DecodeOperation(raw json.RawMessage) (*ot.Operation, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: missing operation", ErrMalformedPayload)
	}
	op := ot.New()
	if err := json.Unmarshal(raw, op); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return op, nil
}

// DecodeSelection decodes a raw selection payload. Absent or null payloads
// decode to nil (no selection).
func DecodeSelection(raw json.RawMessage) (ot.Selection, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var sel ot.Selection
	if err := json.Unmarshal(raw, &sel); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return sel, nil
}
