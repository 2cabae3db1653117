package board

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// PositionKind enumerates the four places a token can be.
type PositionKind int

const (
	AtHome PositionKind = iota
	OnTrack
	OnStretch
	Finished
)

// Position is a tagged variant: a token is in exactly one of the four
// states at any time. Index is the home slot for AtHome, the track cell
// for OnTrack and the stretch slot for OnStretch; it is always zero for
// Finished.
type Position struct {
	Kind  PositionKind
	Index int
}

func Home(slot int) Position {
	return Position{Kind: AtHome, Index: slot}
}

func Track(cell int) Position {
	return Position{Kind: OnTrack, Index: cell}
}

func Stretch(slot int) Position {
	return Position{Kind: OnStretch, Index: slot}
}

func Finish() Position {
	return Position{Kind: Finished}
}

const stretchPrefix = "home_stretch_"

func (p Position) String() string {
	switch p.Kind {
	case AtHome:
		return "home"
	case OnTrack:
		return strconv.Itoa(p.Index)
	case OnStretch:
		return stretchPrefix + strconv.Itoa(p.Index)
	case Finished:
		return "finished"
	}
	return fmt.Sprintf("invalid(%d)", int(p.Kind))
}

// MarshalJSON keeps the wire encoding the clients already speak:
// "home", a bare track-cell number, "home_stretch_N" or "finished".
func (p Position) MarshalJSON() ([]byte, error) {
	if p.Kind == OnTrack {
		return json.Marshal(p.Index)
	}
	return json.Marshal(p.String())
}

func (p *Position) UnmarshalJSON(data []byte) error {
	var cell int
	if err := json.Unmarshal(data, &cell); err == nil {
		*p = Track(cell)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode position: %w", err)
	}

	switch {
	case s == "home":
		*p = Home(0)
	case s == "finished":
		*p = Finish()
	case strings.HasPrefix(s, stretchPrefix):
		slot, err := strconv.Atoi(strings.TrimPrefix(s, stretchPrefix))
		if err != nil {
			return fmt.Errorf("decode stretch position %q: %w", s, err)
		}
		*p = Stretch(slot)
	default:
		return fmt.Errorf("unknown position %q", s)
	}
	return nil
}
