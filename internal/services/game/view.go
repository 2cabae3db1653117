package game

// View is the only gameplay data ever broadcast to clients. DiceValue and
// Winner are null on the wire until set, matching the protocol.
type View struct {
	RoomID           string               `json:"roomId"`
	Players          []*PlayerInfo        `json:"players"`
	Pieces           map[string]*PieceSet `json:"pieces"`
	CurrentTurnIndex int                  `json:"currentTurnIndex"`
	CurrentPlayerID  string               `json:"currentPlayerId"`
	DiceValue        *int                 `json:"diceValue"`
	DiceRolled       bool                 `json:"diceRolled"`
	Phase            Phase                `json:"phase"`
	Winner           *string              `json:"winner"`
	TurnStartedAt    int64                `json:"turnStartedAt"`
	TurnTimeLimit    int64                `json:"turnTimeLimit"`
}

// History returns a copy of the room's append-only move log.
func (st *Store) History(roomID string) []TurnRecord {
	s := st.sessions[roomID]
	if s == nil {
		return nil
	}
	out := make([]TurnRecord, len(s.history))
	copy(out, s.history)
	return out
}

// View snapshots a session, or nil for an unknown room.
func (st *Store) View(roomID string) *View {
	s := st.sessions[roomID]
	if s == nil {
		return nil
	}

	v := &View{
		RoomID:           s.roomID,
		Players:          s.players,
		Pieces:           s.pieces,
		CurrentTurnIndex: s.currentTurnIndex,
		CurrentPlayerID:  s.currentPlayerID,
		DiceRolled:       s.diceRolled,
		Phase:            s.phase,
		TurnStartedAt:    s.turnStartedAt.UnixMilli(),
		TurnTimeLimit:    st.turnLimit.Milliseconds(),
	}
	if s.diceRolled {
		dice := s.diceValue
		v.DiceValue = &dice
	}
	if s.winner != "" {
		winner := s.winner
		v.Winner = &winner
	}
	return v
}
