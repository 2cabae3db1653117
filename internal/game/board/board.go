// Package board holds the pure movement rules for the eight-seat board:
// 13 shared track cells per seat (104 total), a private four-cell home
// stretch per seat, and an exact-roll requirement to finish.
package board

// Board geometry. Every player owns a 104-cell loop that starts at their
// seat's start cell and ends at the entrance of their home stretch.
const (
	MaxPlayers      = 8
	TokensPerPlayer = 4
	CellsPerSeat    = 13
	TrackCells      = CellsPerSeat * MaxPlayers
	StretchLength   = 4
)

// Color pairs a display name with its hex value for the client board.
type Color struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// Colors maps a seat index to its fixed board color.
var Colors = [MaxPlayers]Color{
	{Name: "Blue", Hex: "#3B82F6"},
	{Name: "Red", Hex: "#EF4444"},
	{Name: "Purple", Hex: "#8B5CF6"},
	{Name: "Green", Hex: "#22C55E"},
	{Name: "Yellow", Hex: "#EAB308"},
	{Name: "Black", Hex: "#1F2937"},
	{Name: "Orange", Hex: "#F97316"},
	{Name: "Pink", Hex: "#EC4899"},
}

// StartCell is the track cell a seat's tokens enter on when leaving home.
func StartCell(seat int) int {
	return seat * CellsPerSeat
}

// Progress reports how far along its own loop a token on the given track
// cell has travelled for the given seat, in [0, TrackCells).
func Progress(cell, seat int) int {
	return (cell - StartCell(seat) + TrackCells) % TrackCells
}

// Advance computes the destination of a token for a dice value. The second
// return is false when the move is illegal: leaving home without a six,
// moving a finished token, or any roll that would overshoot past the
// finish (there is no bounce-back).
func Advance(pos Position, seat, dice int) (Position, bool) {
	switch pos.Kind {
	case AtHome:
		if dice != 6 {
			return Position{}, false
		}
		return Track(StartCell(seat)), true

	case OnStretch:
		slot := pos.Index + dice
		if slot > StretchLength {
			return Position{}, false
		}
		if slot == StretchLength {
			return Finish(), true
		}
		return Stretch(slot), true

	case OnTrack:
		dist := Progress(pos.Index, seat) + dice
		if dist < TrackCells {
			return Track((pos.Index + dice) % TrackCells), true
		}
		slot := dist - TrackCells
		if slot > StretchLength {
			return Position{}, false
		}
		if slot == StretchLength {
			return Finish(), true
		}
		return Stretch(slot), true
	}

	// Finished tokens never move again.
	return Position{}, false
}
