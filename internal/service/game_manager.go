package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/benbeisheim/chess-engine/internal/errors"
	"github.com/benbeisheim/chess-engine/internal/model"
	"github.com/benbeisheim/chess-engine/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

type GameManager struct {
	games            map[string]*model.Game
	queue            *model.Queue
	matchingChannels map[string]chan string
	mu               sync.RWMutex
}

func NewGameManager() *GameManager {
	return &GameManager{
		games:            make(map[string]*model.Game),
		queue:            model.NewQueue(),
		matchingChannels: make(map[string]chan string),
	}
}

func (gm *GameManager) RegisterMatchmakingChannel(playerID string, ch chan string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	// A newer socket replaces the old one; closing the old channel ends its reader.
	if existingCh, exists := gm.matchingChannels[playerID]; exists {
		log.Debugw("replacing matchmaking channel", "playerId", playerID)
		delete(gm.matchingChannels, playerID)
		close(existingCh)
	}

	gm.matchingChannels[playerID] = ch
	log.Debugw("matchmaking channel registered", "playerId", playerID)
	return nil
}

// UnregisterMatchmakingChannel forgets ch for playerID. The channel is not
// closed; its creator owns it. A channel that was already replaced is left alone.
func (gm *GameManager) UnregisterMatchmakingChannel(playerID string, ch chan string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if existing, ok := gm.matchingChannels[playerID]; ok && existing == ch {
		delete(gm.matchingChannels, playerID)
		log.Debugw("matchmaking channel unregistered", "playerId", playerID)
	}
}

// Run pairs queued players every interval until ctx is done.
func (gm *GameManager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Infow("matchmaking started", "interval", interval.String())
	for {
		select {
		case <-ctx.Done():
			log.Infow("matchmaking stopped")
			return
		case <-ticker.C:
			gm.processMatchmaking()
		}
	}
}

// processMatchmaking seats every available pair in a fresh game and tells
// both players where to go. It returns the ids of the games it created.
func (gm *GameManager) processMatchmaking() []string {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	var created []string
	for {
		player1, player2, ok := gm.queue.GetNextPair()
		if !ok {
			return created
		}

		gameID := uuid.New().String()
		game := model.NewGame(gameID)
		p1Color, err := game.AddPlayer(player1.ID)
		if err != nil {
			log.Errorw("failed to seat matched player", "gameId", gameID, "playerId", player1.ID, "error", err)
			continue
		}
		p2Color, err := game.AddPlayer(player2.ID)
		if err != nil {
			log.Errorw("failed to seat matched player", "gameId", gameID, "playerId", player2.ID, "error", err)
			continue
		}
		gm.games[gameID] = game
		created = append(created, gameID)
		log.Infow("match found", "gameId", gameID, "white", player1.ID, "black", player2.ID)

		sentBoth := gm.sendMatchFound(player1.ID, model.MatchFoundEvent{GameID: gameID, Color: p1Color})
		sentBoth = gm.sendMatchFound(player2.ID, model.MatchFoundEvent{GameID: gameID, Color: p2Color}) && sentBoth
		if !sentBoth {
			log.Warnw("failed to notify all players of match", "gameId", gameID)
		}
	}
}

// sendMatchFound delivers event on the player's channel and retires the
// channel. Callers hold gm.mu.
func (gm *GameManager) sendMatchFound(playerID string, event model.MatchFoundEvent) bool {
	ch, ok := gm.matchingChannels[playerID]
	if !ok {
		return false
	}
	msg, err := encodeMessage(ws.MessageTypeMatchFound, event)
	if err != nil {
		log.Errorw("failed to encode match event", "playerId", playerID, "error", err)
		return false
	}
	select {
	case ch <- msg:
		delete(gm.matchingChannels, playerID)
		close(ch)
		return true
	default:
		log.Warnw("matchmaking channel full", "playerId", playerID)
		return false
	}
}

func encodeMessage(t ws.MessageType, payload interface{}) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal %s payload: %w", t, err)
	}
	msg, err := json.Marshal(ws.Message{Type: t, Payload: json.RawMessage(data)})
	if err != nil {
		return "", fmt.Errorf("marshal %s message: %w", t, err)
	}
	return string(msg), nil
}

func (gm *GameManager) CreateGame(gameID string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[gameID]; exists {
		return errors.ErrGameExists
	}

	gm.games[gameID] = model.NewGame(gameID)
	log.Infow("game created", "gameId", gameID)
	return nil
}

func (gm *GameManager) GetGame(gameID string) (*model.Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	game, exists := gm.games[gameID]
	if !exists {
		return nil, errors.Wrapf(errors.ErrGameNotFound, "game %s", gameID)
	}

	return game, nil
}

func (gm *GameManager) AddPlayerToGame(gameID string, playerID string) (model.Color, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return "", err
	}
	return game.AddPlayer(playerID)
}

func (gm *GameManager) JoinMatchmaking(playerID string) error {
	if err := gm.queue.AddPlayer(model.Player{ID: playerID}); err != nil {
		log.Debugw("matchmaking join rejected", "playerId", playerID, "error", err)
		return err
	}
	log.Infow("player queued", "playerId", playerID, "queued", gm.queue.Size())
	return nil
}

// LeaveMatchmaking drops playerID from the queue. It reports whether the
// player was waiting.
func (gm *GameManager) LeaveMatchmaking(playerID string) bool {
	removed := gm.queue.Remove(playerID)
	if removed {
		log.Infow("player left queue", "playerId", playerID)
	}
	return removed
}

func (gm *GameManager) GetGameState(gameID string) (model.GameState, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return game.GetState(), nil
}

func (gm *GameManager) LegalMoves(gameID string, pos model.Position) ([]model.Position, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	return game.LegalMoves(pos)
}

func (gm *GameManager) Select(gameID string, playerID string, pos model.Position) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.Select(playerID, pos)
}

func (gm *GameManager) Cancel(gameID string, playerID string) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.Cancel(playerID)
}

// Move moves the player's selected piece to to, promoting it afterwards when
// promotion is set.
func (gm *GameManager) Move(gameID string, playerID string, to model.Position, promotion model.PieceType) (model.Outcome, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.Outcome{}, err
	}
	return game.MoveAndPromote(playerID, to, promotion)
}

func (gm *GameManager) MakeMove(gameID string, playerID string, move model.WSMove) (model.Outcome, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.Outcome{}, err
	}
	return game.MakeMove(playerID, move)
}

func (gm *GameManager) Promote(gameID string, playerID string, pos model.Position, t model.PieceType) (model.PieceType, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return "", err
	}
	return game.Promote(playerID, pos, t)
}

func (gm *GameManager) Export(gameID string) (model.Export, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.Export{}, err
	}
	return game.Export(), nil
}

func (gm *GameManager) RegisterConnection(gameID string, playerID string, conn model.Conn) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.RegisterConnection(playerID, conn)
}

func (gm *GameManager) UnregisterConnection(gameID string, playerID string, conn model.Conn) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return
	}
	game.UnregisterConnection(playerID, conn)
}
