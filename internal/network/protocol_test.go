package network

import (
	"encoding/json"
	"testing"
)

func TestParseMessageKeepsFullBody(t *testing.T) {
	raw := []byte(`{"type":"JOIN_ROOM","roomId":"ABC234","playerName":"alice"}`)
	msg, err := ParseMessage(raw)
	if err != nil {
		t.Fatalf("ParseMessage() error = %v", err)
	}
	if msg.Type != "JOIN_ROOM" {
		t.Fatalf("Type = %q, want JOIN_ROOM", msg.Type)
	}

	var body struct {
		RoomID string `json:"roomId"`
	}
	if err := json.Unmarshal(msg.Body, &body); err != nil {
		t.Fatalf("body is not decodable: %v", err)
	}
	if body.RoomID != "ABC234" {
		t.Fatalf("roomId = %q, want ABC234", body.RoomID)
	}
}

func TestParseMessageRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"not json", "{}", `{"type":""}`, `[1,2,3]`} {
		if _, err := ParseMessage([]byte(raw)); err == nil {
			t.Errorf("ParseMessage(%q) accepted invalid input", raw)
		}
	}
}

func TestErrorFrameShape(t *testing.T) {
	var m map[string]string
	if err := json.Unmarshal(errorFrame("boom"), &m); err != nil {
		t.Fatalf("errorFrame produced invalid JSON: %v", err)
	}
	if m["type"] != "ERROR" || m["message"] != "boom" {
		t.Fatalf("frame = %v", m)
	}
}
