// Package save implements the transferable save document: world
// state, chat history, and event log packaged as one JSON file.
// Import replaces only the sections present in the document.
package save

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nathoo/dmcore/engine/state"
	"github.com/nathoo/dmcore/types"
)

// ErrMalformedDocument reports an import payload that could not be
// decoded. Nothing is mutated when it is returned.
var ErrMalformedDocument = errors.New("malformed save document")

// exportDoc is the on-disk shape.
type exportDoc struct {
	State    *types.WorldState `json:"state"`
	History  []types.Message   `json:"history"`
	EventLog []types.LogEntry  `json:"eventLog"`
}

// Document is a decoded save document. The Has* flags record which
// top-level keys were present; absent sections must leave the
// existing data untouched.
type Document struct {
	State    *types.WorldState
	History  []types.Message
	EventLog []types.LogEntry

	HasState    bool
	HasHistory  bool
	HasEventLog bool
}

// Export serializes the three records into one document.
func Export(ws *types.WorldState, history []types.Message, eventLog []types.LogEntry) ([]byte, error) {
	if history == nil {
		history = []types.Message{}
	}
	if eventLog == nil {
		eventLog = []types.LogEntry{}
	}
	doc := exportDoc{State: ws, History: history, EventLog: eventLog}
	return json.MarshalIndent(doc, "", "  ")
}

// Import decodes a save document, validating each top-level key
// independently. A document where a present key cannot be decoded is
// malformed as a whole.
func Import(data []byte) (*Document, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	doc := &Document{}

	if r, ok := raw["state"]; ok {
		var ws types.WorldState
		if err := json.Unmarshal(r, &ws); err != nil {
			return nil, fmt.Errorf("%w: state: %v", ErrMalformedDocument, err)
		}
		state.Normalize(&ws)
		doc.State = &ws
		doc.HasState = true
	}

	if r, ok := raw["history"]; ok {
		if err := json.Unmarshal(r, &doc.History); err != nil {
			return nil, fmt.Errorf("%w: history: %v", ErrMalformedDocument, err)
		}
		if doc.History == nil {
			doc.History = []types.Message{}
		}
		doc.HasHistory = true
	}

	if r, ok := raw["eventLog"]; ok {
		if err := json.Unmarshal(r, &doc.EventLog); err != nil {
			return nil, fmt.Errorf("%w: eventLog: %v", ErrMalformedDocument, err)
		}
		if doc.EventLog == nil {
			doc.EventLog = []types.LogEntry{}
		}
		doc.HasEventLog = true
	}

	if !doc.HasState && !doc.HasHistory && !doc.HasEventLog {
		return nil, fmt.Errorf("%w: no recognized sections", ErrMalformedDocument)
	}

	return doc, nil
}
