package game

import (
	"encoding/json"
	"errors"
	"testing"

	"ashtapada/internal/game/board"
)

// scriptedDice feeds a fixed sequence of rolls to the store.
func scriptedDice(values ...int) (func() int, *int) {
	i := new(int)
	return func() int {
		v := values[*i%len(values)]
		*i++
		return v
	}, i
}

func rosterOf(names ...string) []*PlayerInfo {
	players := make([]*PlayerInfo, 0, len(names))
	for i, name := range names {
		players = append(players, &PlayerInfo{
			ID:         name,
			Name:       name,
			Color:      board.Colors[i],
			ColorIndex: i,
		})
	}
	return players
}

func newTestStore(t *testing.T, rolls ...int) (*Store, *Session) {
	t.Helper()
	opts := []Option{WithTurnLimit(0)}
	if len(rolls) > 0 {
		roll, _ := scriptedDice(rolls...)
		opts = append(opts, WithRoll(roll))
	}
	st := NewStore(opts...)
	s := st.Initialize("ROOM01", rosterOf("alice", "bob"))
	return st, s
}

func placeToken(s *Session, playerID string, tokenID int, pos board.Position) {
	for _, tok := range s.pieces[playerID].Tokens {
		if tok.ID == tokenID {
			tok.Position = pos
			return
		}
	}
}

func TestInitialize(t *testing.T) {
	_, s := newTestStore(t)

	if s.phase != PhaseRollDice {
		t.Errorf("phase = %s, want ROLL_DICE", s.phase)
	}
	if s.currentPlayerID != "alice" || s.currentTurnIndex != 0 {
		t.Errorf("current = %s/%d, want alice/0", s.currentPlayerID, s.currentTurnIndex)
	}
	for id, set := range s.pieces {
		if len(set.Tokens) != board.TokensPerPlayer {
			t.Fatalf("%s has %d tokens", id, len(set.Tokens))
		}
		for slot, tok := range set.Tokens {
			if tok.Position != board.Home(slot) || tok.HomeSlot != slot {
				t.Errorf("%s token %d = %+v, want home slot %d", id, tok.ID, tok, slot)
			}
		}
	}
}

func TestRollValidation(t *testing.T) {
	st, _ := newTestStore(t, 6)

	if _, err := st.Roll("NOROOM", "alice"); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("unknown room err = %v", err)
	}
	if _, err := st.Roll("ROOM01", "bob"); !errors.Is(err, ErrNotYourTurn) {
		t.Errorf("out of turn err = %v", err)
	}
	if _, err := st.Roll("ROOM01", "alice"); err != nil {
		t.Fatalf("first roll: %v", err)
	}
	if _, err := st.Roll("ROOM01", "alice"); !errors.Is(err, ErrAlreadyRolled) {
		t.Errorf("double roll err = %v", err)
	}
}

func TestSixOpensAllHomeTokens(t *testing.T) {
	st, s := newTestStore(t, 6)

	res, err := st.Roll("ROOM01", "alice")
	if err != nil {
		t.Fatalf("roll: %v", err)
	}
	if res.Skipped || len(res.ValidMoves) != board.TokensPerPlayer {
		t.Fatalf("res = %+v, want 4 exit-home moves", res)
	}
	for _, m := range res.ValidMoves {
		if m.Type != MoveExitHome || !m.CanMove {
			t.Errorf("move = %+v, want EXIT_HOME", m)
		}
	}
	if s.phase != PhaseSelectPiece {
		t.Errorf("phase = %s, want SELECT_PIECE", s.phase)
	}
}

func TestExitHomeLandsOnStartCellAndKeepsTurn(t *testing.T) {
	st, s := newTestStore(t, 6)

	if _, err := st.Roll("ROOM01", "alice"); err != nil {
		t.Fatalf("roll: %v", err)
	}
	res, err := st.MovePiece("ROOM01", "alice", 0)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if res.Captured != nil || res.GameOver {
		t.Errorf("res = %+v, want plain move", res)
	}

	if got := s.pieces["alice"].Tokens[0].Position; got != board.Track(0) {
		t.Errorf("token position = %v, want track cell 0", got)
	}
	// A six keeps the turn and demands a fresh roll.
	if s.currentPlayerID != "alice" || s.diceRolled || s.phase != PhaseRollDice {
		t.Errorf("after six: current=%s rolled=%v phase=%s", s.currentPlayerID, s.diceRolled, s.phase)
	}
}

func TestNoMovesSkipsTurn(t *testing.T) {
	st, s := newTestStore(t, 3)

	// All tokens at home and the roll is not a six: nothing can move.
	res, err := st.Roll("ROOM01", "alice")
	if err != nil {
		t.Fatalf("roll: %v", err)
	}
	if !res.Skipped || len(res.ValidMoves) != 0 {
		t.Fatalf("res = %+v, want skipped with no moves", res)
	}
	if s.currentPlayerID != "bob" || s.diceRolled || s.phase != PhaseRollDice {
		t.Errorf("after skip: current=%s rolled=%v phase=%s", s.currentPlayerID, s.diceRolled, s.phase)
	}
}

func TestNonSixMoveAdvancesTurn(t *testing.T) {
	st, s := newTestStore(t, 4)
	placeToken(s, "alice", 0, board.Track(10))

	if _, err := st.Roll("ROOM01", "alice"); err != nil {
		t.Fatalf("roll: %v", err)
	}
	if _, err := st.MovePiece("ROOM01", "alice", 0); err != nil {
		t.Fatalf("move: %v", err)
	}

	if got := s.pieces["alice"].Tokens[0].Position; got != board.Track(14) {
		t.Errorf("token = %v, want track 14", got)
	}
	if s.currentPlayerID != "bob" {
		t.Errorf("turn did not advance: current = %s", s.currentPlayerID)
	}
}

func TestMoveValidation(t *testing.T) {
	st, s := newTestStore(t, 3, 2)
	placeToken(s, "alice", 0, board.Track(10))

	if _, err := st.MovePiece("ROOM01", "alice", 0); !errors.Is(err, ErrRollFirst) {
		t.Errorf("move before roll err = %v", err)
	}
	if _, err := st.Roll("ROOM01", "alice"); err != nil {
		t.Fatalf("roll: %v", err)
	}
	if _, err := st.MovePiece("ROOM01", "bob", 0); !errors.Is(err, ErrNotYourTurn) {
		t.Errorf("out of turn err = %v", err)
	}
	if _, err := st.MovePiece("ROOM01", "alice", 9); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("bad token err = %v", err)
	}
	// Token 1 is still at home and the dice is 3: illegal.
	if _, err := st.MovePiece("ROOM01", "alice", 1); !errors.Is(err, ErrInvalidMove) {
		t.Errorf("illegal move err = %v", err)
	}
}

func TestRejectedMoveLeavesStateUntouched(t *testing.T) {
	st, s := newTestStore(t, 2)
	placeToken(s, "alice", 0, board.Stretch(3))
	placeToken(s, "alice", 1, board.Track(50))

	if _, err := st.Roll("ROOM01", "alice"); err != nil {
		t.Fatalf("roll: %v", err)
	}
	before, err := json.Marshal(st.View("ROOM01"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	// Stretch slot 3 with a 2 overshoots.
	if _, err := st.MovePiece("ROOM01", "alice", 0); !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("err = %v, want ErrInvalidMove", err)
	}

	after, err := json.Marshal(st.View("ROOM01"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(before) != string(after) {
		t.Errorf("state changed by a rejected move:\n%s\n%s", before, after)
	}
}

func TestOvershootExcludedFromValidMoves(t *testing.T) {
	st, s := newTestStore(t, 2)
	placeToken(s, "alice", 0, board.Stretch(3))
	placeToken(s, "alice", 1, board.Track(50))

	res, err := st.Roll("ROOM01", "alice")
	if err != nil {
		t.Fatalf("roll: %v", err)
	}
	for _, m := range res.ValidMoves {
		if m.TokenID == 0 {
			t.Errorf("overshooting token offered as a valid move: %+v", m)
		}
	}
}

func TestTrackEntersStretch(t *testing.T) {
	st, s := newTestStore(t, 5)
	placeToken(s, "alice", 2, board.Track(101))

	if _, err := st.Roll("ROOM01", "alice"); err != nil {
		t.Fatalf("roll: %v", err)
	}
	if _, err := st.MovePiece("ROOM01", "alice", 2); err != nil {
		t.Fatalf("move: %v", err)
	}
	if got := s.pieces["alice"].Tokens[2].Position; got != board.Stretch(2) {
		t.Errorf("token = %v, want stretch slot 2", got)
	}
}

func TestExactRollFinishes(t *testing.T) {
	st, s := newTestStore(t, 1)
	placeToken(s, "alice", 3, board.Stretch(3))

	if _, err := st.Roll("ROOM01", "alice"); err != nil {
		t.Fatalf("roll: %v", err)
	}
	if _, err := st.MovePiece("ROOM01", "alice", 3); err != nil {
		t.Fatalf("move: %v", err)
	}
	if got := s.pieces["alice"].Tokens[3].Position; got.Kind != board.Finished {
		t.Errorf("token = %v, want finished", got)
	}
}

func TestCaptureSendsVictimHome(t *testing.T) {
	st, s := newTestStore(t, 4)
	placeToken(s, "alice", 0, board.Track(36))
	placeToken(s, "bob", 1, board.Track(40))

	if _, err := st.Roll("ROOM01", "alice"); err != nil {
		t.Fatalf("roll: %v", err)
	}
	res, err := st.MovePiece("ROOM01", "alice", 0)
	if err != nil {
		t.Fatalf("move: %v", err)
	}

	if res.Captured == nil || res.Captured.PlayerID != "bob" || res.Captured.TokenID != 1 {
		t.Fatalf("captured = %+v, want bob token 1", res.Captured)
	}
	if got := s.pieces["bob"].Tokens[1].Position; got != board.Home(1) {
		t.Errorf("victim = %v, want back in home slot 1", got)
	}
	if got := s.pieces["alice"].Tokens[0].Position; got != board.Track(40) {
		t.Errorf("mover = %v, want track 40", got)
	}

	records := st.History("ROOM01")
	if len(records) != 1 || records[0].Captured == nil {
		t.Errorf("history = %+v, want one capturing record", records)
	}
}

func TestLandingOnEmptyCellCapturesNothing(t *testing.T) {
	st, s := newTestStore(t, 4)
	placeToken(s, "alice", 0, board.Track(36))

	if _, err := st.Roll("ROOM01", "alice"); err != nil {
		t.Fatalf("roll: %v", err)
	}
	res, err := st.MovePiece("ROOM01", "alice", 0)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if res.Captured != nil {
		t.Errorf("captured = %+v, want nil", res.Captured)
	}
}

func TestWinWhenAllTokensFinish(t *testing.T) {
	st, s := newTestStore(t, 1)
	for tok := 0; tok < 3; tok++ {
		placeToken(s, "alice", tok, board.Finish())
	}
	placeToken(s, "alice", 3, board.Stretch(3))

	if _, err := st.Roll("ROOM01", "alice"); err != nil {
		t.Fatalf("roll: %v", err)
	}
	res, err := st.MovePiece("ROOM01", "alice", 3)
	if err != nil {
		t.Fatalf("move: %v", err)
	}

	if !res.GameOver || res.Winner != "alice" {
		t.Fatalf("res = %+v, want alice winning", res)
	}
	if s.phase != PhaseGameOver || s.winner != "alice" {
		t.Errorf("session phase=%s winner=%s", s.phase, s.winner)
	}
	v := st.View("ROOM01")
	if v.Winner == nil || *v.Winner != "alice" {
		t.Errorf("view winner = %v", v.Winner)
	}
}

func TestDisconnectCurrentPlayerAdvancesFirst(t *testing.T) {
	st := NewStore(WithTurnLimit(0))
	s := st.Initialize("ROOM01", rosterOf("alice", "bob", "carol"))

	res, ok := st.HandleDisconnect("ROOM01", "alice")
	if !ok || res.GameOver {
		t.Fatalf("res = %+v ok = %v, want ongoing game", res, ok)
	}
	if s.currentPlayerID != "bob" {
		t.Errorf("current = %s, want bob", s.currentPlayerID)
	}
	if len(s.players) != 2 || s.pieces["alice"] != nil {
		t.Errorf("alice not fully removed: %d players", len(s.players))
	}
}

func TestDisconnectDownToOneEndsGame(t *testing.T) {
	st, _ := newTestStore(t)

	res, ok := st.HandleDisconnect("ROOM01", "alice")
	if !ok {
		t.Fatal("alice should be in the roster")
	}
	if !res.GameOver || res.Winner != "bob" {
		t.Fatalf("res = %+v, want bob winning by forfeit", res)
	}
}

func TestDisconnectUnknownPlayer(t *testing.T) {
	st, _ := newTestStore(t)
	if _, ok := st.HandleDisconnect("ROOM01", "mallory"); ok {
		t.Error("non-roster participant should not touch the session")
	}
}

func TestSnapshotIdempotent(t *testing.T) {
	st, _ := newTestStore(t, 6)
	if _, err := st.Roll("ROOM01", "alice"); err != nil {
		t.Fatalf("roll: %v", err)
	}

	first, err := json.Marshal(st.View("ROOM01"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second, err := json.Marshal(st.View("ROOM01"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(first) != string(second) {
		t.Errorf("snapshots differ:\n%s\n%s", first, second)
	}
}

func TestTurnTimeoutAdvancesTurn(t *testing.T) {
	var timedOut []string
	st, s := newTestStore(t)
	st.SetTimeoutHandler(func(roomID string) { timedOut = append(timedOut, roomID) })

	epoch := s.turnEpoch
	st.expireTurn("ROOM01", epoch)

	if s.currentPlayerID != "bob" {
		t.Errorf("current = %s, want bob after timeout", s.currentPlayerID)
	}
	if len(timedOut) != 1 || timedOut[0] != "ROOM01" {
		t.Errorf("timeout handler calls = %v", timedOut)
	}
}

func TestStaleTimerFireIsIgnored(t *testing.T) {
	var fired int
	st, s := newTestStore(t)
	st.SetTimeoutHandler(func(string) { fired++ })

	stale := s.turnEpoch
	// The player acts before the timer: the epoch moves on.
	st.nextTurn(s)
	current := s.currentPlayerID

	st.expireTurn("ROOM01", stale)
	if fired != 0 {
		t.Error("stale fire reached the timeout handler")
	}
	if s.currentPlayerID != current {
		t.Error("stale fire advanced the turn")
	}
}

func TestTimerFireAfterGameOverIsIgnored(t *testing.T) {
	var fired int
	st, s := newTestStore(t)
	st.SetTimeoutHandler(func(string) { fired++ })

	epoch := s.turnEpoch
	if _, ok := st.HandleDisconnect("ROOM01", "alice"); !ok {
		t.Fatal("disconnect failed")
	}
	st.expireTurn("ROOM01", epoch)
	if fired != 0 {
		t.Error("timer fired into a finished game")
	}
}

func TestDeleteDropsSession(t *testing.T) {
	st, _ := newTestStore(t)
	st.Delete("ROOM01")
	if st.Has("ROOM01") {
		t.Error("session survived Delete")
	}
	if st.View("ROOM01") != nil {
		t.Error("view of deleted session is not nil")
	}
}
