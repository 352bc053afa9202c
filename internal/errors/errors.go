// Package errors provides sentinel errors and error types for the chess engine
// and the game server built around it. It defines the failure conditions a
// caller can react to and structured errors that keep move context while
// allowing inspection with Is and As.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Engine errors.
var (
	// ErrPromotionRejected indicates the piece is not on its promotion edge.
	ErrPromotionRejected = errors.New("piece is not qualified for promotion")

	// ErrContractViolation marks programmer errors such as moving from an
	// empty square. It is raised with panic, never returned.
	ErrContractViolation = errors.New("contract violation")

	// ErrUnknownPieceType indicates a piece type outside the six chess variants.
	ErrUnknownPieceType = errors.New("unknown piece type")

	// ErrInvalidSquare indicates square notation that does not name a board square.
	ErrInvalidSquare = errors.New("invalid square")
)

// Session and service errors.
var (
	ErrGameNotFound    = errors.New("game not found")
	ErrGameExists      = errors.New("game already exists")
	ErrGameFull        = errors.New("game is full")
	ErrGameOver        = errors.New("game is over")
	ErrPlayerNotInGame = errors.New("player not in game")
	ErrNotYourTurn     = errors.New("not your turn")
	ErrNotYourPiece    = errors.New("piece does not belong to player")
	ErrNoPieceSelected = errors.New("no piece selected")
	ErrIllegalMove     = errors.New("illegal move")
	ErrAlreadyQueued   = errors.New("player already in queue")
	ErrUnknownMessage  = errors.New("unknown message type")

	// ErrInvalidConfig indicates invalid configuration values.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// MoveError wraps a session error with the game, player and squares involved.
type MoveError struct {
	Err      error  // The underlying error
	GameID   string // Game the move was sent to (if known)
	PlayerID string // Player who sent the move (if known)
	From     string // Source square in notation (if known)
	To       string // Destination square in notation (if known)
}

// Error returns a formatted message including all available context.
func (e *MoveError) Error() string {
	var parts []string

	if e.GameID != "" {
		parts = append(parts, fmt.Sprintf("game %s", e.GameID))
	}
	if e.PlayerID != "" {
		parts = append(parts, fmt.Sprintf("player %s", e.PlayerID))
	}
	switch {
	case e.From != "" && e.To != "":
		parts = append(parts, fmt.Sprintf("move %s-%s", e.From, e.To))
	case e.From != "":
		parts = append(parts, fmt.Sprintf("square %s", e.From))
	case e.To != "":
		parts = append(parts, fmt.Sprintf("to %s", e.To))
	}

	context := strings.Join(parts, ", ")
	if e.Err == nil {
		return context
	}
	if context == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", context, e.Err)
}

// Unwrap returns the underlying error.
func (e *MoveError) Unwrap() error {
	return e.Err
}

// Wrap adds context to an error while preserving the underlying error
// for inspection with Is and As.
func Wrap(err error, context string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// Wrapf adds formatted context to an error.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
