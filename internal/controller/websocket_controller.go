package controller

import (
	"encoding/json"

	"github.com/benbeisheim/chess-engine/internal/errors"
	"github.com/benbeisheim/chess-engine/internal/middleware"
	"github.com/benbeisheim/chess-engine/internal/model"
	"github.com/benbeisheim/chess-engine/internal/service"
	"github.com/benbeisheim/chess-engine/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
)

type WebSocketController struct {
	gameService *service.GameService
}

func NewWebSocketController(gameService *service.GameService) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
	}
}

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID := c.Params("gameId")
	playerID, _ := c.Locals(middleware.PlayerIDKey).(string)
	// Broadcasts from other players' goroutines write to this socket too.
	conn := model.NewSyncConn(c)

	if err := wsc.gameService.RegisterConnection(gameID, playerID, conn); err != nil {
		log.Warnw("failed to register connection", "gameId", gameID, "playerId", playerID, "error", err)
		wsc.sendError(conn, err)
		_ = conn.Close()
		return
	}
	defer wsc.gameService.UnregisterConnection(gameID, playerID, conn)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Debugw("connection closed", "gameId", gameID, "playerId", playerID, "error", err)
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Debugw("unparseable message", "gameId", gameID, "playerId", playerID, "error", err)
			wsc.sendError(conn, errors.Wrap(err, "parse message"))
			continue
		}
		if msg.Type == ws.MessageTypeLeave {
			log.Infow("player left", "gameId", gameID, "playerId", playerID)
			return
		}

		if err := wsc.handleMessage(gameID, playerID, msg); err != nil {
			log.Debugw("message rejected", "gameId", gameID, "playerId", playerID, "type", msg.Type, "error", err)
			wsc.sendError(conn, err)
		}
	}
}

// handleMessage applies one command. The resulting state reaches clients
// through the game's broadcast.
func (wsc *WebSocketController) handleMessage(gameID, playerID string, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeSelect:
		var p ws.SelectPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return errors.Wrap(err, "decode select")
		}
		return wsc.gameService.Select(gameID, playerID, p.Square)

	case ws.MessageTypeMove:
		var p ws.MovePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return errors.Wrap(err, "decode move")
		}
		_, err := wsc.gameService.HandleMove(gameID, playerID, p.From, p.To, p.Promotion)
		return err

	case ws.MessageTypeCancel:
		return wsc.gameService.Cancel(gameID, playerID)

	case ws.MessageTypePromote:
		var p ws.PromotePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return errors.Wrap(err, "decode promote")
		}
		_, err := wsc.gameService.Promote(gameID, playerID, p.Square, p.Piece)
		return err

	default:
		return errors.Wrapf(errors.ErrUnknownMessage, "%q", msg.Type)
	}
}

// HandleMatchmaking queues the player and forwards the matchFound event once
// a game has been made for them.
func (wsc *WebSocketController) HandleMatchmaking(c *websocket.Conn) {
	playerID, _ := c.Locals(middleware.PlayerIDKey).(string)

	ch := make(chan string, 1)
	if err := wsc.gameService.RegisterMatchmakingChannel(playerID, ch); err != nil {
		wsc.sendError(c, err)
		return
	}
	if err := wsc.gameService.JoinMatchmaking(playerID); err != nil && !errors.Is(err, errors.ErrAlreadyQueued) {
		wsc.gameService.UnregisterMatchmakingChannel(playerID, ch)
		wsc.sendError(c, err)
		return
	}

	// The reader only watches for the client going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case msg, ok := <-ch:
		if !ok {
			// Replaced by a newer matchmaking socket for the same player.
			return
		}
		if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			log.Warnw("failed to forward match", "playerId", playerID, "error", err)
		}
	case <-gone:
		if lost, ok := wsc.abandonMatchmaking(playerID, ch); ok {
			log.Warnw("match found after socket closed", "playerId", playerID, "event", lost)
		}
		log.Debugw("matchmaking socket closed", "playerId", playerID)
	}
}

// abandonMatchmaking takes a player whose socket closed out of matchmaking.
// Once the channel is unregistered nothing else is sent on it, so a match
// event that raced the close is still buffered and is returned.
func (wsc *WebSocketController) abandonMatchmaking(playerID string, ch chan string) (string, bool) {
	wsc.gameService.UnregisterMatchmakingChannel(playerID, ch)
	wsc.gameService.LeaveMatchmaking(playerID)
	select {
	case msg, ok := <-ch:
		return msg, ok
	default:
		return "", false
	}
}

// sendError writes err to conn as an error message.
func (wsc *WebSocketController) sendError(conn model.Conn, err error) {
	payload, mErr := json.Marshal(ws.ErrorPayload{Error: err.Error()})
	if mErr != nil {
		log.Errorw("failed to encode error", "error", mErr)
		return
	}
	msg, mErr := json.Marshal(ws.Message{
		Type:    ws.MessageTypeError,
		Payload: json.RawMessage(payload),
	})
	if mErr != nil {
		log.Errorw("failed to encode error", "error", mErr)
		return
	}
	if wErr := conn.WriteMessage(websocket.TextMessage, msg); wErr != nil {
		log.Debugw("failed to send error", "error", wErr)
	}
}
