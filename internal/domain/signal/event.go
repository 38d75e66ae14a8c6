package signal

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrMalformedEvent = errors.New("malformed signal event")
	ErrMissingSignal  = errors.New("signal event has no signal name")
)

// Event is one inbound message from the signal feed. Only Name is interpreted;
// the rest of the decoded object is kept as Payload.
type Event struct {
	ID      string // Correlation id assigned on receipt
	Name    string
	Payload json.RawMessage
}

type wireEvent struct {
	Signal *string `json:"signal"`
}

// Decode parses a raw feed message. It requires a JSON object with a
// non-empty string "signal" field; other fields are ignored.
func Decode(raw []byte) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal(raw, &w); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if w.Signal == nil || strings.TrimSpace(*w.Signal) == "" {
		return Event{}, ErrMissingSignal
	}
	return Event{
		ID:      uuid.New().String(),
		Name:    *w.Signal,
		Payload: append(json.RawMessage(nil), raw...),
	}, nil
}
