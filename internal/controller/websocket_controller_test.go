package controller

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/benbeisheim/chess-engine/internal/errors"
	"github.com/benbeisheim/chess-engine/internal/model"
	"github.com/benbeisheim/chess-engine/internal/service"
	"github.com/benbeisheim/chess-engine/internal/testutil"
	"github.com/benbeisheim/chess-engine/internal/ws"
)

type recordingConn struct {
	written [][]byte
}

func (c *recordingConn) WriteMessage(_ int, data []byte) error {
	c.written = append(c.written, data)
	return nil
}

func (c *recordingConn) Close() error { return nil }

func message(t *testing.T, typ ws.MessageType, payload interface{}) ws.Message {
	t.Helper()
	raw, err := json.Marshal(payload)
	testutil.AssertNoError(t, err)
	return ws.Message{Type: typ, Payload: raw}
}

func newSeatedController(t *testing.T) (*WebSocketController, *service.GameService, string) {
	t.Helper()
	gs := service.NewGameService(service.NewGameManager())
	gameID, err := gs.CreateGame()
	testutil.AssertNoError(t, err)
	for _, id := range []string{"alice", "bob"} {
		_, err := gs.JoinGame(gameID, id)
		testutil.AssertNoError(t, err)
	}
	return NewWebSocketController(gs), gs, gameID
}

func TestHandleMessage(t *testing.T) {
	wsc, gs, gameID := newSeatedController(t)

	err := wsc.handleMessage(gameID, "alice", message(t, ws.MessageTypeSelect, ws.SelectPayload{Square: "b1"}))
	testutil.AssertNoError(t, err)
	state, _ := gs.GetGameState(gameID)
	testutil.AssertEqual(t, state.SelectedSquare.Notation(), "b1")

	err = wsc.handleMessage(gameID, "alice", message(t, ws.MessageTypeCancel, nil))
	testutil.AssertNoError(t, err)
	state, _ = gs.GetGameState(gameID)
	testutil.AssertTrue(t, state.SelectedSquare == nil)

	err = wsc.handleMessage(gameID, "alice", message(t, ws.MessageTypeMove, ws.MovePayload{From: "b1", To: "c3"}))
	testutil.AssertNoError(t, err)
	state, _ = gs.GetGameState(gameID)
	testutil.AssertEqual(t, state.ToMove, model.Black)

	err = wsc.handleMessage(gameID, "bob", message(t, ws.MessageTypeSelect, ws.SelectPayload{Square: "h8"}))
	testutil.AssertNoError(t, err)
	err = wsc.handleMessage(gameID, "bob", message(t, ws.MessageTypeMove, ws.MovePayload{To: "h6"}))
	testutil.AssertErrorIs(t, err, errors.ErrIllegalMove)

	err = wsc.handleMessage(gameID, "bob", message(t, ws.MessageTypePromote, ws.PromotePayload{Square: "h8", Piece: "queen"}))
	testutil.AssertNoError(t, err)
	state, _ = gs.GetGameState(gameID)
	p, ok := state.Board.At(model.NewPosition(7, 0))
	testutil.AssertTrue(t, ok)
	testutil.AssertEqual(t, p.Type, model.Queen)
}

func TestHandleMessageErrors(t *testing.T) {
	wsc, _, gameID := newSeatedController(t)

	tests := []struct {
		name string
		msg  ws.Message
		want error
	}{
		{"unknown type", ws.Message{Type: "castle", Payload: json.RawMessage(`{}`)}, errors.ErrUnknownMessage},
		{"bad square", message(t, ws.MessageTypeSelect, ws.SelectPayload{Square: "i1"}), errors.ErrInvalidSquare},
		{"opponent piece", message(t, ws.MessageTypeSelect, ws.SelectPayload{Square: "e7"}), errors.ErrNotYourPiece},
		{"rejected promotion", message(t, ws.MessageTypePromote, ws.PromotePayload{Square: "e2", Piece: "queen"}), errors.ErrPromotionRejected},
		{"unknown piece", message(t, ws.MessageTypePromote, ws.PromotePayload{Square: "a2", Piece: "dragon"}), errors.ErrUnknownPieceType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertErrorIs(t, wsc.handleMessage(gameID, "alice", tt.msg), tt.want)
		})
	}

	err := wsc.handleMessage(gameID, "alice", ws.Message{Type: ws.MessageTypeMove, Payload: json.RawMessage(`"e2e4"`)})
	testutil.AssertTrue(t, err != nil, "undecodable payload rejected")
}

func TestSendError(t *testing.T) {
	wsc, _, _ := newSeatedController(t)
	conn := &recordingConn{}

	wsc.sendError(conn, errors.ErrNotYourTurn)

	testutil.AssertEqual(t, len(conn.written), 1)
	var msg ws.Message
	testutil.AssertNoError(t, json.Unmarshal(conn.written[0], &msg))
	testutil.AssertEqual(t, msg.Type, ws.MessageTypeError)
	var payload ws.ErrorPayload
	testutil.AssertNoError(t, json.Unmarshal(msg.Payload, &payload))
	testutil.AssertEqual(t, payload.Error, "not your turn")
}

func TestAbandonMatchmaking(t *testing.T) {
	gm := service.NewGameManager()
	gs := service.NewGameService(gm)
	wsc := NewWebSocketController(gs)

	ch := make(chan string, 1)
	testutil.AssertNoError(t, gs.RegisterMatchmakingChannel("alice", ch))
	testutil.AssertNoError(t, gs.JoinMatchmaking("alice"))

	_, ok := wsc.abandonMatchmaking("alice", ch)
	testutil.AssertFalse(t, ok, "no match yet")
	testutil.AssertFalse(t, gs.LeaveMatchmaking("alice"), "already out of the queue")
}

func TestAbandonMatchmakingReturnsRacedMatch(t *testing.T) {
	gm := service.NewGameManager()
	gs := service.NewGameService(gm)
	wsc := NewWebSocketController(gs)

	ch := make(chan string, 1)
	testutil.AssertNoError(t, gs.RegisterMatchmakingChannel("alice", ch))
	testutil.AssertNoError(t, gs.JoinMatchmaking("alice"))
	testutil.AssertNoError(t, gs.JoinMatchmaking("bob"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go gm.Run(ctx, time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for len(ch) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("players were never matched")
		}
		time.Sleep(time.Millisecond)
	}

	lost, ok := wsc.abandonMatchmaking("alice", ch)
	testutil.AssertTrue(t, ok)
	testutil.AssertTrue(t, strings.Contains(lost, `"matchFound"`), "got %s", lost)
}
