// Package game owns per-room gameplay state: the turn state machine, dice
// rolls, legal-move computation, captures, the win condition and the turn
// timer. Sessions are created when a room starts its game and destroyed
// when the game or the room ends.
package game

import (
	"time"

	"ashtapada/internal/game/board"
)

// Phase is the turn state machine state.
type Phase string

const (
	PhaseRollDice    Phase = "ROLL_DICE"
	PhaseSelectPiece Phase = "SELECT_PIECE"
	PhaseGameOver    Phase = "GAME_OVER"
)

// MoveType distinguishes leaving home from a regular advance on the wire.
type MoveType string

const (
	MoveExitHome MoveType = "EXIT_HOME"
	MoveAdvance  MoveType = "MOVE"
)

// PlayerInfo is the roster entry snapshotted at game start.
type PlayerInfo struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Color      board.Color `json:"color"`
	ColorIndex int         `json:"colorIndex"`
}

// Token is one of a player's four pieces. HomeSlot is the fixed home-yard
// slot the token returns to when captured.
type Token struct {
	ID       int            `json:"id"`
	Position board.Position `json:"position"`
	HomeSlot int            `json:"homePosition"`
}

// PieceSet holds one player's tokens.
type PieceSet struct {
	PlayerID   string      `json:"playerId"`
	ColorIndex int         `json:"colorIndex"`
	Color      board.Color `json:"color"`
	Tokens     []*Token    `json:"tokens"`
}

// Move is a legal option offered to the current player after a roll.
type Move struct {
	TokenID int      `json:"tokenId"`
	CanMove bool     `json:"canMove"`
	Type    MoveType `json:"type"`
}

// Capture identifies the single opposing token evicted by a landing.
type Capture struct {
	PlayerID string `json:"playerId"`
	TokenID  int    `json:"tokenId"`
}

// TurnRecord is one entry of the append-only move history.
type TurnRecord struct {
	PlayerID  string   `json:"playerId"`
	TokenID   int      `json:"tokenId"`
	DiceValue int      `json:"diceValue"`
	Captured  *Capture `json:"captured"`
	Timestamp int64    `json:"timestamp"`
}

// Session is the gameplay state for one room. All fields are mutated only
// from the hub event loop; the timer callback re-enters that loop and is
// epoch-guarded so a stale fire can never race a fresh turn.
type Session struct {
	roomID  string
	players []*PlayerInfo
	pieces  map[string]*PieceSet

	currentTurnIndex int
	currentPlayerID  string
	diceValue        int
	diceRolled       bool
	phase            Phase
	winner           string
	history          []TurnRecord

	startedAt     time.Time
	turnStartedAt time.Time

	turnEpoch uint64
	timer     *time.Timer
}

// tokenAt finds the first opposing token occupying the given track cell,
// scanning the roster in join order. Under single-occupancy rules at most
// one token can match.
func (s *Session) tokenAt(cell int, excludePlayerID string) (string, *Token) {
	for _, p := range s.players {
		if p.ID == excludePlayerID {
			continue
		}
		set := s.pieces[p.ID]
		if set == nil {
			continue
		}
		for _, tok := range set.Tokens {
			if tok.Position == board.Track(cell) {
				return p.ID, tok
			}
		}
	}
	return "", nil
}

// validMoves lists every token the player may legally move with the dice
// value rolled this turn. Overshoots past the finish are excluded here and
// re-checked on the actual move.
func (s *Session) validMoves(playerID string) []Move {
	set, ok := s.pieces[playerID]
	if !ok {
		return nil
	}

	moves := []Move{}
	for _, tok := range set.Tokens {
		if _, ok := board.Advance(tok.Position, set.ColorIndex, s.diceValue); !ok {
			continue
		}
		moveType := MoveAdvance
		if tok.Position.Kind == board.AtHome {
			moveType = MoveExitHome
		}
		moves = append(moves, Move{TokenID: tok.ID, CanMove: true, Type: moveType})
	}
	return moves
}

func (s *Session) allFinished(playerID string) bool {
	set, ok := s.pieces[playerID]
	if !ok {
		return false
	}
	for _, tok := range set.Tokens {
		if tok.Position.Kind != board.Finished {
			return false
		}
	}
	return true
}
