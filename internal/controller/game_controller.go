package controller

import (
	"github.com/benbeisheim/chess-engine/internal/errors"
	"github.com/benbeisheim/chess-engine/internal/middleware"
	"github.com/benbeisheim/chess-engine/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

type GameController struct {
	gameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{gameService: gameService}
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	gameID, err := gc.gameService.CreateGame()
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game created",
		"game_id": gameID,
	})
}

func (gc *GameController) JoinGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	playerID := middleware.PlayerID(c)

	color, err := gc.gameService.JoinGame(gameID, playerID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Game joined",
		"color":   color,
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	gameState, err := gc.gameService.GetGameState(c.Params("gameId"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(gameState)
}

// LegalMoves lists the destinations of the piece on :square in notation.
func (gc *GameController) LegalMoves(c *fiber.Ctx) error {
	square := c.Params("square")
	moves, err := gc.gameService.LegalMoves(c.Params("gameId"), square)
	if err != nil {
		return errorResponse(c, err)
	}

	notation := make([]string, 0, len(moves))
	for _, m := range moves {
		notation = append(notation, m.Notation())
	}
	return c.JSON(fiber.Map{
		"square": square,
		"moves":  notation,
	})
}

func (gc *GameController) Export(c *fiber.Ctx) error {
	export, err := gc.gameService.Export(c.Params("gameId"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(export)
}

func (gc *GameController) JoinMatchmaking(c *fiber.Ctx) error {
	if err := gc.gameService.JoinMatchmaking(middleware.PlayerID(c)); err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"status": "queued",
	})
}

func errorResponse(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		log.Errorw("request failed", "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errors.ErrGameNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, errors.ErrGameExists),
		errors.Is(err, errors.ErrGameFull),
		errors.Is(err, errors.ErrAlreadyQueued),
		errors.Is(err, errors.ErrGameOver),
		errors.Is(err, errors.ErrNotYourTurn):
		return fiber.StatusConflict
	case errors.Is(err, errors.ErrPlayerNotInGame),
		errors.Is(err, errors.ErrNotYourPiece):
		return fiber.StatusForbidden
	case errors.Is(err, errors.ErrInvalidSquare),
		errors.Is(err, errors.ErrUnknownPieceType),
		errors.Is(err, errors.ErrIllegalMove),
		errors.Is(err, errors.ErrNoPieceSelected),
		errors.Is(err, errors.ErrPromotionRejected),
		errors.Is(err, errors.ErrUnknownMessage):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
