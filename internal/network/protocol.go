package network

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MaxMessageSize caps a single inbound frame. Anything larger is hostile.
const MaxMessageSize = 64 * 1024

// Message is the inbound envelope: a type discriminator for routing plus
// the raw frame. The protocol is flat, so the body keeps every field of
// the original object for the handler to decode into its own shape.
type Message struct {
	Type string
	Body json.RawMessage
}

// ParseMessage extracts the type discriminator from a raw JSON frame.
func ParseMessage(data []byte) (Message, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}
	if head.Type == "" {
		return Message{}, errors.New("message missing type")
	}
	return Message{Type: head.Type, Body: data}, nil
}

// errorFrame builds an ERROR reply without involving the session layer,
// for protocol-level failures caught inside the read loop.
func errorFrame(msg string) []byte {
	data, _ := json.Marshal(struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}{Type: "ERROR", Message: msg})
	return data
}
