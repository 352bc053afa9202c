package service

import (
	"strings"

	"github.com/benbeisheim/chess-engine/internal/model"
	"github.com/google/uuid"
)

// GameService is the entry point the controllers use. It turns client
// squares and piece names into model values and hands off to the manager.
type GameService struct {
	gameManager *GameManager
}

func NewGameService(gameManager *GameManager) *GameService {
	return &GameService{
		gameManager: gameManager,
	}
}

func (gs *GameService) JoinGame(gameID string, playerID string) (model.Color, error) {
	return gs.gameManager.AddPlayerToGame(gameID, playerID)
}

func (gs *GameService) CreateGame() (string, error) {
	gameID := uuid.New().String()

	if err := gs.gameManager.CreateGame(gameID); err != nil {
		return "", err
	}

	return gameID, nil
}

func (gs *GameService) JoinMatchmaking(playerID string) error {
	return gs.gameManager.JoinMatchmaking(playerID)
}

func (gs *GameService) LeaveMatchmaking(playerID string) bool {
	return gs.gameManager.LeaveMatchmaking(playerID)
}

func (gs *GameService) GetGameState(gameID string) (model.GameState, error) {
	return gs.gameManager.GetGameState(gameID)
}

// LegalMoves lists where the piece on square, e.g. "e2", may go.
func (gs *GameService) LegalMoves(gameID string, square string) ([]model.Position, error) {
	pos, err := model.ParsePosition(square)
	if err != nil {
		return nil, err
	}
	return gs.gameManager.LegalMoves(gameID, pos)
}

func (gs *GameService) Select(gameID string, playerID string, square string) error {
	pos, err := model.ParsePosition(square)
	if err != nil {
		return err
	}
	return gs.gameManager.Select(gameID, playerID, pos)
}

func (gs *GameService) Cancel(gameID string, playerID string) error {
	return gs.gameManager.Cancel(gameID, playerID)
}

// HandleMove plays from-to for playerID. An empty from moves the piece the
// player has selected.
func (gs *GameService) HandleMove(gameID string, playerID string, from, to, promotion string) (model.Outcome, error) {
	dest, err := model.ParsePosition(to)
	if err != nil {
		return model.Outcome{}, err
	}
	if strings.TrimSpace(from) == "" {
		return gs.gameManager.Move(gameID, playerID, dest, parsePieceType(promotion))
	}
	src, err := model.ParsePosition(from)
	if err != nil {
		return model.Outcome{}, err
	}
	return gs.gameManager.MakeMove(gameID, playerID, model.WSMove{
		From:      src,
		To:        dest,
		Promotion: parsePieceType(promotion),
	})
}

func (gs *GameService) Promote(gameID string, playerID string, square string, piece string) (model.PieceType, error) {
	pos, err := model.ParsePosition(square)
	if err != nil {
		return "", err
	}
	return gs.gameManager.Promote(gameID, playerID, pos, parsePieceType(piece))
}

func (gs *GameService) Export(gameID string) (model.Export, error) {
	return gs.gameManager.Export(gameID)
}

func (gs *GameService) RegisterConnection(gameID string, playerID string, conn model.Conn) error {
	return gs.gameManager.RegisterConnection(gameID, playerID, conn)
}

func (gs *GameService) UnregisterConnection(gameID string, playerID string, conn model.Conn) {
	gs.gameManager.UnregisterConnection(gameID, playerID, conn)
}

func (gs *GameService) RegisterMatchmakingChannel(playerID string, ch chan string) error {
	return gs.gameManager.RegisterMatchmakingChannel(playerID, ch)
}

func (gs *GameService) UnregisterMatchmakingChannel(playerID string, ch chan string) {
	gs.gameManager.UnregisterMatchmakingChannel(playerID, ch)
}

// parsePieceType accepts names like "Queen" or "queen". Unknown names are
// passed through and rejected by the board.
func parsePieceType(s string) model.PieceType {
	return model.PieceType(strings.ToLower(strings.TrimSpace(s)))
}
