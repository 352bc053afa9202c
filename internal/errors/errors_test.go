package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors_Wrapping(t *testing.T) {
	tests := []struct {
		name     string
		sentinel error
	}{
		{"ErrPromotionRejected", ErrPromotionRejected},
		{"ErrGameNotFound", ErrGameNotFound},
		{"ErrNotYourTurn", ErrNotYourTurn},
		{"ErrIllegalMove", ErrIllegalMove},
		{"ErrInvalidConfig", ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.sentinel)
			if !Is(wrapped, tt.sentinel) {
				t.Errorf("Is(wrapped, %v) = false, want true", tt.sentinel)
			}
		})
	}
}

func TestMoveError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *MoveError
		want string
	}{
		{
			name: "full context",
			err:  &MoveError{Err: ErrIllegalMove, GameID: "g1", PlayerID: "p1", From: "e2", To: "e5"},
			want: "game g1, player p1, move e2-e5: illegal move",
		},
		{
			name: "source square only",
			err:  &MoveError{Err: ErrNotYourPiece, GameID: "g1", From: "a8"},
			want: "game g1, square a8: piece does not belong to player",
		},
		{
			name: "no context",
			err:  &MoveError{Err: ErrGameOver},
			want: "game is over",
		},
		{
			name: "no underlying error",
			err:  &MoveError{GameID: "g1", To: "h1"},
			want: "game g1, to h1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMoveError_Unwrap(t *testing.T) {
	err := Wrap(&MoveError{Err: ErrNotYourTurn, GameID: "g1"}, "handle move")

	if !Is(err, ErrNotYourTurn) {
		t.Error("Is(err, ErrNotYourTurn) = false, want true")
	}

	var moveErr *MoveError
	if !As(err, &moveErr) {
		t.Fatal("As(err, *MoveError) = false, want true")
	}
	if moveErr.GameID != "g1" {
		t.Errorf("GameID = %q, want %q", moveErr.GameID, "g1")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("Wrap(nil) should return nil")
	}
	if Wrapf(nil, "context %d", 1) != nil {
		t.Error("Wrapf(nil) should return nil")
	}

	err := Wrapf(ErrGameNotFound, "lookup %s", "abc")
	if got, want := err.Error(), "lookup abc: game not found"; got != want {
		t.Errorf("Wrapf() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrGameNotFound) {
		t.Error("wrapped error lost its sentinel")
	}
}
