package model

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/benbeisheim/chess-engine/internal/errors"
	"github.com/benbeisheim/chess-engine/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
)

// ResolveKingCaptured is the Resolve value once a king has been taken.
const ResolveKingCaptured = "king captured"

// noSquare marks an unknown square in error context.
var noSquare = Position{X: -1, Y: -1}

// Conn is the part of a websocket connection a game writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// SyncConn serializes writes to a Conn, which allows one writer at a time.
// State frames carry the game's sequence number; a frame older than the last
// one written is skipped.
type SyncConn struct {
	mu      sync.Mutex
	conn    Conn
	lastSeq uint64
}

// NewSyncConn wraps conn. A conn that is already a *SyncConn is returned as is.
func NewSyncConn(conn Conn) *SyncConn {
	if sc, ok := conn.(*SyncConn); ok {
		return sc
	}
	return &SyncConn{conn: conn}
}

func (c *SyncConn) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(messageType, data)
}

// Close is not serialized so it can interrupt a blocked write.
func (c *SyncConn) Close() error {
	return c.conn.Close()
}

func (c *SyncConn) writeState(seq uint64, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq <= c.lastSeq {
		return nil
	}
	c.lastSeq = seq
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// wraps reports whether c is conn or was built around it.
func (c *SyncConn) wraps(conn Conn) bool {
	return Conn(c) == conn || c.conn == conn
}

// The connections for a specific game
type GameConnections struct {
	connections map[string]*SyncConn // playerID -> connection
	mu          sync.RWMutex
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]*SyncConn),
	}
}

// Game is one session around a Board. It holds the selected piece, enforces
// turn order and serializes every engine call behind its mutex.
type Game struct {
	ID          string
	mu          sync.Mutex
	state       GameState
	seq         uint64 // bumped for every encoded state
	connections *GameConnections // Connections just for this game
}

type GameState struct {
	Board          *Board      `json:"boardState"`
	ToMove         Color       `json:"toMove"`
	SelectedSquare *Position   `json:"selectedSquare"`
	LegalMoves     []Position  `json:"legalMoves"`
	Resolve        *string     `json:"resolve"`
	Winner         *Color      `json:"winner"`
	Players        Players     `json:"players"`
	LastMove       *SimpleMove `json:"lastMove"`
	MoveCount      int         `json:"moveCount"`
}

func NewGame(id string) *Game {
	return &Game{
		ID:          id,
		state:       newGameState(),
		connections: NewGameConnections(),
	}
}

func newGameState() GameState {
	board := NewBoard()
	board.Initialize()
	return GameState{
		Board:      board,
		ToMove:     White,
		LegalMoves: make([]Position, 0),
		Players: Players{
			White: ClientPlayer{Color: White},
			Black: ClientPlayer{Color: Black},
		},
	}
}

// AddPlayer seats playerID as White, then Black. A player who is already
// seated gets their seat back.
func (g *Game) AddPlayer(playerID string) (Color, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if c, ok := g.colorOf(playerID); ok {
		return c, nil
	}
	for _, c := range []Color{White, Black} {
		seat := g.state.Players.seat(c)
		if seat.ID == "" {
			seat.ID = playerID
			log.Infow("player seated", "gameId", g.ID, "playerId", playerID, "color", c)
			return c, nil
		}
	}
	return "", errors.ErrGameFull
}

// GetState returns a deep copy of the state that is safe to use after the
// game changes.
func (g *Game) GetState() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.state.clone()
}

func (s GameState) clone() GameState {
	c := s
	c.Board = s.Board.Clone()
	c.LegalMoves = append(make([]Position, 0, len(s.LegalMoves)), s.LegalMoves...)
	if s.SelectedSquare != nil {
		sq := *s.SelectedSquare
		c.SelectedSquare = &sq
	}
	if s.Resolve != nil {
		r := *s.Resolve
		c.Resolve = &r
	}
	if s.Winner != nil {
		w := *s.Winner
		c.Winner = &w
	}
	if s.LastMove != nil {
		m := *s.LastMove
		c.LastMove = &m
	}
	return c
}

// canSpectate reports whether a seat is still open. Callers hold g.mu.
func (g *Game) canSpectate() bool {
	return g.state.Players.White.ID == "" || g.state.Players.Black.ID == ""
}

func (g *Game) colorOf(playerID string) (Color, bool) {
	if playerID == "" {
		return "", false
	}
	switch playerID {
	case g.state.Players.White.ID:
		return White, true
	case g.state.Players.Black.ID:
		return Black, true
	}
	return "", false
}

// LegalMoves returns the destinations of the piece on pos, whoever owns it.
func (g *Game) LegalMoves(pos Position) ([]Position, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.state.Board.At(pos)
	if !ok {
		return nil, fmt.Errorf("%s is empty: %w", pos, errors.ErrInvalidSquare)
	}
	return p.LegalDestinations(g.state.Board), nil
}

// Select picks up the player's piece on pos and stores its legal destinations.
// Selecting another piece replaces the current selection.
func (g *Game) Select(playerID string, pos Position) error {
	return g.update(func() error {
		return g.selectPiece(playerID, pos)
	})
}

// Cancel drops the current selection.
func (g *Game) Cancel(playerID string) error {
	return g.update(func() error {
		if err := g.checkTurn(playerID); err != nil {
			return err
		}
		g.clearSelection()
		return nil
	})
}

// Move moves the selected piece to to. It fails unless to is one of the
// selected piece's legal destinations.
func (g *Game) Move(playerID string, to Position) (Outcome, error) {
	return g.play(playerID, nil, to, "")
}

// MoveAndPromote moves the selected piece to to and then promotes it to
// promotion when that is set; see MakeMove.
func (g *Game) MoveAndPromote(playerID string, to Position, promotion PieceType) (Outcome, error) {
	return g.play(playerID, nil, to, promotion)
}

// MakeMove selects move.From, moves it to move.To and, if move.Promotion is
// set, promotes the moved piece. An unknown promotion type fails before the
// move; a piece off its promotion edge is reported but the move stands.
func (g *Game) MakeMove(playerID string, move WSMove) (Outcome, error) {
	from := move.From
	return g.play(playerID, &from, move.To, move.Promotion)
}

func (g *Game) play(playerID string, from *Position, to Position, promotion PieceType) (Outcome, error) {
	if promotion != "" && !promotion.Valid() {
		return Outcome{}, g.moveError(fmt.Errorf("promote to %q: %w", promotion, errors.ErrUnknownPieceType), playerID, noSquare, to)
	}

	var outcome Outcome
	var promoteErr error
	err := g.update(func() error {
		if from != nil {
			if err := g.selectPiece(playerID, *from); err != nil {
				return err
			}
		}
		var err error
		if outcome, err = g.moveSelected(playerID, to); err != nil {
			return err
		}
		if promotion != "" {
			_, promoteErr = g.state.Board.Promote(to, promotion)
		}
		return nil
	})
	if err != nil {
		return outcome, err
	}
	if promoteErr != nil {
		return outcome, g.moveError(promoteErr, playerID, to, noSquare)
	}
	return outcome, nil
}

// Promote changes the player's piece on pos into t; see Board.Promote.
func (g *Game) Promote(playerID string, pos Position, t PieceType) (PieceType, error) {
	var promoted PieceType
	err := g.update(func() error {
		if g.state.Resolve != nil {
			return errors.ErrGameOver
		}
		c, ok := g.colorOf(playerID)
		if !ok {
			return errors.ErrPlayerNotInGame
		}
		p, ok := g.state.Board.At(pos)
		if !ok {
			return g.moveError(errors.ErrInvalidSquare, playerID, pos, noSquare)
		}
		if p.Color != c {
			return g.moveError(errors.ErrNotYourPiece, playerID, pos, noSquare)
		}
		var err error
		if promoted, err = g.state.Board.Promote(pos, t); err != nil {
			return g.moveError(err, playerID, pos, noSquare)
		}
		if g.state.SelectedSquare != nil && *g.state.SelectedSquare == pos {
			p, _ = g.state.Board.At(pos)
			g.state.LegalMoves = p.LegalDestinations(g.state.Board)
		}
		log.Infow("piece promoted", "gameId", g.ID, "playerId", playerID, "square", pos.String(), "piece", t)
		return nil
	})
	return promoted, err
}

// Export returns the board's text and FEN placement views.
func (g *Game) Export() Export {
	g.mu.Lock()
	defer g.mu.Unlock()

	return Export{Pieces: g.state.Board.String(), FEN: g.state.Board.FEN()}
}

func (g *Game) checkTurn(playerID string) error {
	if g.state.Resolve != nil {
		return errors.ErrGameOver
	}
	c, ok := g.colorOf(playerID)
	if !ok {
		return errors.ErrPlayerNotInGame
	}
	if c != g.state.ToMove {
		return errors.ErrNotYourTurn
	}
	return nil
}

func (g *Game) selectPiece(playerID string, pos Position) error {
	if err := g.checkTurn(playerID); err != nil {
		return g.moveError(err, playerID, pos, noSquare)
	}
	p, ok := g.state.Board.At(pos)
	if !ok {
		return g.moveError(errors.ErrInvalidSquare, playerID, pos, noSquare)
	}
	if p.Color != g.state.ToMove {
		return g.moveError(errors.ErrNotYourPiece, playerID, pos, noSquare)
	}

	selected := pos
	g.state.SelectedSquare = &selected
	g.state.LegalMoves = p.LegalDestinations(g.state.Board)
	log.Debugw("piece selected", "gameId", g.ID, "playerId", playerID, "square", pos.String(), "moves", len(g.state.LegalMoves))
	return nil
}

func (g *Game) moveSelected(playerID string, to Position) (Outcome, error) {
	if err := g.checkTurn(playerID); err != nil {
		return Outcome{}, g.moveError(err, playerID, noSquare, to)
	}
	if g.state.SelectedSquare == nil {
		return Outcome{}, g.moveError(errors.ErrNoPieceSelected, playerID, noSquare, to)
	}
	from := *g.state.SelectedSquare
	if from == to {
		return Outcome{}, g.moveError(errors.ErrIllegalMove, playerID, from, to)
	}

	// The board may have changed since selection, so destinations are recomputed.
	p, _ := g.state.Board.At(from)
	if !containsPosition(p.LegalDestinations(g.state.Board), to) {
		return Outcome{}, g.moveError(errors.ErrIllegalMove, playerID, from, to)
	}

	outcome := g.state.Board.ApplyMove(from, to)
	g.state.LastMove = &SimpleMove{From: from, To: to}
	g.state.MoveCount++
	g.clearSelection()

	if outcome.IsGameOver() {
		resolve := ResolveKingCaptured
		winner := outcome.Winner
		g.state.Resolve = &resolve
		g.state.Winner = &winner
		log.Infow("game over", "gameId", g.ID, "winner", winner, "moves", g.state.MoveCount)
	} else {
		g.state.ToMove = g.state.ToMove.Opposite()
	}
	log.Infow("move applied", "gameId", g.ID, "playerId", playerID, "from", from.String(), "to", to.String(), "capture", outcome.Captured != nil)
	return outcome, nil
}

func (g *Game) clearSelection() {
	g.state.SelectedSquare = nil
	g.state.LegalMoves = make([]Position, 0)
}

// moveError wraps err with the game context. Off-board squares are left out.
func (g *Game) moveError(err error, playerID string, from, to Position) error {
	e := &errors.MoveError{Err: err, GameID: g.ID, PlayerID: playerID}
	if from.OnBoard() {
		e.From = from.String()
	}
	if to.OnBoard() {
		e.To = to.String()
	}
	return e
}

func containsPosition(ps []Position, p Position) bool {
	for _, q := range ps {
		if q == p {
			return true
		}
	}
	return false
}

// update runs fn under the game lock and broadcasts the new state if fn succeeds.
func (g *Game) update(fn func() error) error {
	g.mu.Lock()
	if err := fn(); err != nil {
		g.mu.Unlock()
		return err
	}
	seq, payload, err := g.statePayload()
	g.mu.Unlock()
	if err != nil {
		return err
	}
	g.broadcast(seq, payload)
	return nil
}

// statePayload encodes the current state as a gameState message and numbers
// it. Callers hold g.mu.
func (g *Game) statePayload() (uint64, []byte, error) {
	state, err := json.Marshal(g.state)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal game state: %w", err)
	}
	msg, err := json.Marshal(ws.Message{
		Type:    ws.MessageTypeGameState,
		Payload: json.RawMessage(state),
	})
	if err != nil {
		return 0, nil, err
	}
	g.seq++
	return g.seq, msg, nil
}

func (g *Game) RegisterConnection(playerID string, conn Conn) error {
	g.mu.Lock()
	_, seated := g.colorOf(playerID)
	isAuthorized := seated || g.canSpectate()
	g.mu.Unlock()

	if !isAuthorized {
		return errors.ErrPlayerNotInGame
	}

	sc := NewSyncConn(conn)
	g.connections.mu.Lock()
	if _, exists := g.connections.connections[playerID]; exists {
		// If we already have a healthy connection, keep it and reject the new one
		g.connections.mu.Unlock()
		_ = sc.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "Connection already exists"),
		)
		_ = sc.Close()
		log.Warnw("duplicate connection rejected", "gameId", g.ID, "playerId", playerID)
		return nil
	}
	g.connections.connections[playerID] = sc
	g.connections.mu.Unlock()
	log.Infow("connection registered", "gameId", g.ID, "playerId", playerID)

	g.mu.Lock()
	seq, payload, err := g.statePayload()
	g.mu.Unlock()
	if err != nil {
		return err
	}
	g.broadcast(seq, payload)
	return nil
}

// UnregisterConnection drops conn for playerID. A connection that was never
// registered, such as a rejected duplicate, leaves the live one in place.
func (g *Game) UnregisterConnection(playerID string, conn Conn) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	if existing, exists := g.connections.connections[playerID]; exists && existing.wraps(conn) {
		delete(g.connections.connections, playerID)
		log.Infow("connection unregistered", "gameId", g.ID, "playerId", playerID)
	}
}

// broadcast writes state frame seq to every connection and drops the ones
// that fail.
func (g *Game) broadcast(seq uint64, payload []byte) {
	g.connections.mu.RLock()
	active := make(map[string]*SyncConn, len(g.connections.connections))
	for playerID, conn := range g.connections.connections {
		active[playerID] = conn
	}
	g.connections.mu.RUnlock()

	for playerID, conn := range active {
		if err := conn.writeState(seq, payload); err != nil {
			log.Warnw("failed to send state", "gameId", g.ID, "playerId", playerID, "error", err)
			g.connections.mu.Lock()
			if g.connections.connections[playerID] == conn {
				delete(g.connections.connections, playerID)
			}
			g.connections.mu.Unlock()
		}
	}
}
