package game

import (
	"errors"
	"log"
	"math/rand/v2"
	"time"

	"ashtapada/internal/game/board"
)

// DefaultTurnTimeLimit bounds how long a player may sit on their turn.
const DefaultTurnTimeLimit = 10 * time.Second

var (
	ErrGameNotFound  = errors.New("game not found")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrAlreadyRolled = errors.New("already rolled")
	ErrRollFirst     = errors.New("roll dice first")
	ErrTokenNotFound = errors.New("token not found")
	ErrInvalidMove   = errors.New("invalid move")
)

// Store owns every active session, keyed by room code. Like the room
// registry it is driven entirely from the hub event loop.
type Store struct {
	sessions map[string]*Session

	roll      func() int
	turnLimit time.Duration

	// dispatch funnels timer fires back onto the event loop; onTimeout
	// lets the gateway broadcast the advanced state afterwards.
	dispatch  func(func())
	onTimeout func(roomID string)
}

// Option configures a Store.
type Option func(*Store)

// WithRoll substitutes the dice source, for deterministic tests.
func WithRoll(roll func() int) Option {
	return func(st *Store) { st.roll = roll }
}

// WithTurnLimit overrides the turn time limit. Zero disables the timer.
func WithTurnLimit(d time.Duration) Option {
	return func(st *Store) { st.turnLimit = d }
}

func NewStore(opts ...Option) *Store {
	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 1))
	st := &Store{
		sessions:  make(map[string]*Session),
		roll:      func() int { return rng.IntN(6) + 1 },
		turnLimit: DefaultTurnTimeLimit,
		dispatch:  func(fn func()) { fn() },
	}
	for _, opt := range opts {
		opt(st)
	}
	return st
}

// SetDispatch routes timer callbacks through the given scheduler, normally
// the network hub's task queue.
func (st *Store) SetDispatch(do func(func())) {
	st.dispatch = do
}

// SetTimeoutHandler registers the callback invoked after a turn is
// forcibly advanced by the timer.
func (st *Store) SetTimeoutHandler(fn func(roomID string)) {
	st.onTimeout = fn
}

// Has reports whether a session exists for the room.
func (st *Store) Has(roomID string) bool {
	return st.sessions[roomID] != nil
}

// Initialize creates the session for a freshly started room: four tokens
// per player in their home yard, seat order equal to join order, first
// player to act, and the turn timer armed.
func (st *Store) Initialize(roomID string, players []*PlayerInfo) *Session {
	s := &Session{
		roomID:    roomID,
		players:   players,
		pieces:    make(map[string]*PieceSet, len(players)),
		phase:     PhaseRollDice,
		startedAt: time.Now(),
	}
	for _, p := range players {
		set := &PieceSet{
			PlayerID:   p.ID,
			ColorIndex: p.ColorIndex,
			Color:      p.Color,
			Tokens:     make([]*Token, 0, board.TokensPerPlayer),
		}
		for slot := 0; slot < board.TokensPerPlayer; slot++ {
			set.Tokens = append(set.Tokens, &Token{ID: slot, Position: board.Home(slot), HomeSlot: slot})
		}
		s.pieces[p.ID] = set
	}
	s.currentPlayerID = players[0].ID

	st.sessions[roomID] = s
	st.armTimer(s)
	log.Printf("[GameSession %s] Initialized with %d players", roomID, len(players))
	return s
}

// RollResult reports a dice roll and the options it opened.
type RollResult struct {
	DiceValue  int
	ValidMoves []Move
	// Skipped is set when no legal move existed and the turn advanced
	// automatically.
	Skipped bool
}

// Roll produces the current player's dice value and legal moves. With no
// legal move the turn is skipped on the spot.
func (st *Store) Roll(roomID, playerID string) (*RollResult, error) {
	s := st.sessions[roomID]
	if s == nil {
		return nil, ErrGameNotFound
	}
	if s.phase == PhaseGameOver || s.currentPlayerID != playerID {
		return nil, ErrNotYourTurn
	}
	if s.diceRolled {
		return nil, ErrAlreadyRolled
	}

	dice := st.roll()
	s.diceValue = dice
	s.diceRolled = true
	s.phase = PhaseSelectPiece

	moves := s.validMoves(playerID)
	if len(moves) == 0 {
		st.nextTurn(s)
		return &RollResult{DiceValue: dice, ValidMoves: []Move{}, Skipped: true}, nil
	}

	// The player now has a fresh window to pick a piece.
	st.armTimer(s)
	return &RollResult{DiceValue: dice, ValidMoves: moves}, nil
}

// MoveResult reports the effects of a completed move.
type MoveResult struct {
	Captured *Capture
	GameOver bool
	Winner   string
}

// MovePiece applies the rolled dice to one of the current player's tokens.
// Every precondition is checked before any mutation; a rejected move
// leaves the session untouched.
func (st *Store) MovePiece(roomID, playerID string, tokenID int) (*MoveResult, error) {
	s := st.sessions[roomID]
	if s == nil {
		return nil, ErrGameNotFound
	}
	if s.phase == PhaseGameOver || s.currentPlayerID != playerID {
		return nil, ErrNotYourTurn
	}
	if !s.diceRolled {
		return nil, ErrRollFirst
	}

	set := s.pieces[playerID]
	var token *Token
	for _, tok := range set.Tokens {
		if tok.ID == tokenID {
			token = tok
			break
		}
	}
	if token == nil {
		return nil, ErrTokenNotFound
	}

	dest, ok := board.Advance(token.Position, set.ColorIndex, s.diceValue)
	if !ok {
		return nil, ErrInvalidMove
	}

	dice := s.diceValue
	token.Position = dest

	var captured *Capture
	if dest.Kind == board.OnTrack {
		if victimID, victim := s.tokenAt(dest.Index, playerID); victim != nil {
			victim.Position = board.Home(victim.HomeSlot)
			captured = &Capture{PlayerID: victimID, TokenID: victim.ID}
		}
	}

	s.history = append(s.history, TurnRecord{
		PlayerID:  playerID,
		TokenID:   tokenID,
		DiceValue: dice,
		Captured:  captured,
		Timestamp: time.Now().UnixMilli(),
	})

	if s.allFinished(playerID) {
		st.endGame(s, playerID)
		return &MoveResult{Captured: captured, GameOver: true, Winner: playerID}, nil
	}

	if dice == 6 {
		// A six keeps the turn; a fresh roll is required.
		s.diceRolled = false
		s.diceValue = 0
		s.phase = PhaseRollDice
		st.armTimer(s)
	} else {
		st.nextTurn(s)
	}
	return &MoveResult{Captured: captured}, nil
}

// DisconnectResult reports how a session absorbed a player's departure.
type DisconnectResult struct {
	GameOver bool
	Winner   string
}

// HandleDisconnect removes a player from the running game: the turn
// advances past them first if needed, their pieces leave the board, and a
// single remaining player wins by forfeit. The second return is false when
// the player was not part of the roster.
func (st *Store) HandleDisconnect(roomID, playerID string) (*DisconnectResult, bool) {
	s := st.sessions[roomID]
	if s == nil {
		return nil, false
	}

	idx := -1
	for i, p := range s.players {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, false
	}

	if s.phase != PhaseGameOver && s.currentPlayerID == playerID {
		st.nextTurn(s)
	}

	s.players = append(s.players[:idx], s.players[idx+1:]...)
	delete(s.pieces, playerID)

	// Re-anchor the turn index on the current player's id: removing an
	// earlier roster entry shifts every index after it.
	s.currentTurnIndex = 0
	for i, p := range s.players {
		if p.ID == s.currentPlayerID {
			s.currentTurnIndex = i
			break
		}
	}
	if len(s.players) > 0 {
		s.currentPlayerID = s.players[s.currentTurnIndex].ID
	}

	if len(s.players) <= 1 {
		winner := ""
		if len(s.players) == 1 {
			winner = s.players[0].ID
		}
		st.endGame(s, winner)
		return &DisconnectResult{GameOver: true, Winner: winner}, true
	}
	return &DisconnectResult{}, true
}

// Delete drops a session and its timer.
func (st *Store) Delete(roomID string) {
	s := st.sessions[roomID]
	if s == nil {
		return
	}
	st.cancelTimer(s)
	delete(st.sessions, roomID)
}

func (st *Store) endGame(s *Session, winner string) {
	s.phase = PhaseGameOver
	s.winner = winner
	s.diceRolled = false
	s.diceValue = 0
	st.cancelTimer(s)
	s.turnEpoch++
	log.Printf("[GameSession %s] Game over, winner: %s", s.roomID, winner)
}

// nextTurn hands the turn to the next roster entry, cyclically, clearing
// the dice state and restarting the timer.
func (st *Store) nextTurn(s *Session) {
	s.currentTurnIndex = (s.currentTurnIndex + 1) % len(s.players)
	s.currentPlayerID = s.players[s.currentTurnIndex].ID
	s.diceRolled = false
	s.diceValue = 0
	s.phase = PhaseRollDice
	st.armTimer(s)
}

// armTimer cancels any running turn timer and starts a fresh one. Bumping
// the epoch first makes an already-fired stale callback a no-op.
func (st *Store) armTimer(s *Session) {
	st.cancelTimer(s)
	s.turnEpoch++
	s.turnStartedAt = time.Now()
	if st.turnLimit <= 0 {
		return
	}
	roomID, epoch := s.roomID, s.turnEpoch
	s.timer = time.AfterFunc(st.turnLimit, func() {
		st.dispatch(func() { st.expireTurn(roomID, epoch) })
	})
}

func (st *Store) cancelTimer(s *Session) {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// expireTurn runs on the event loop when a turn timer fires. The epoch
// check discards fires that lost the race against a state transition.
func (st *Store) expireTurn(roomID string, epoch uint64) {
	s := st.sessions[roomID]
	if s == nil || s.phase == PhaseGameOver || s.turnEpoch != epoch {
		return
	}
	log.Printf("[GameSession %s] Turn timeout for %s", roomID, s.currentPlayerID)
	st.nextTurn(s)
	if st.onTimeout != nil {
		st.onTimeout(roomID)
	}
}
