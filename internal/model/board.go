package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/benbeisheim/chess-engine/internal/errors"
)

// CapturedPieces holds beaten pieces keyed by their own color.
type CapturedPieces struct {
	White []Piece `json:"white"`
	Black []Piece `json:"black"`
}

func newCapturedPieces() CapturedPieces {
	return CapturedPieces{
		White: make([]Piece, 0),
		Black: make([]Piece, 0),
	}
}

// MoveStatus tells a driver whether play continues after a move.
type MoveStatus int

const (
	Continue MoveStatus = iota
	GameOver
)

func (s MoveStatus) String() string {
	if s == GameOver {
		return "gameOver"
	}
	return "continue"
}

// Outcome is the result of Board.ApplyMove. Winner is only set on GameOver.
type Outcome struct {
	Status   MoveStatus
	Winner   Color
	Captured *Piece
}

func (o Outcome) IsGameOver() bool {
	return o.Status == GameOver
}

// Board is the 8x8 grid, indexed [row][col], and the pieces beaten so far.
// A Board is not safe for concurrent use.
type Board struct {
	squares  [BoardSize][BoardSize]*Piece
	captured CapturedPieces
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{captured: newCapturedPieces()}
}

var backRank = [BoardSize]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// Initialize sets up the starting layout: Black on rows 0 and 1, White on rows 6 and 7.
func (b *Board) Initialize() {
	b.squares = [BoardSize][BoardSize]*Piece{}
	b.captured = newCapturedPieces()
	for x := 0; x < BoardSize; x++ {
		b.place(NewPiece(backRank[x], Black, NewPosition(x, 0)))
		b.place(NewPiece(Pawn, Black, NewPosition(x, blackPawnRow)))
		b.place(NewPiece(Pawn, White, NewPosition(x, whitePawnRow)))
		b.place(NewPiece(backRank[x], White, NewPosition(x, BoardSize-1)))
	}
}

// place puts a new piece on its own Position, replacing whatever stood there.
func (b *Board) place(p Piece) {
	piece := p
	b.squares[p.Position.Y][p.Position.X] = &piece
}

func (b *Board) at(pos Position) *Piece {
	return b.squares[pos.Y][pos.X]
}

// At returns a copy of the piece on pos. It reports false for empty or
// off-board squares.
func (b *Board) At(pos Position) (Piece, bool) {
	if !pos.OnBoard() {
		return Piece{}, false
	}
	p := b.at(pos)
	if p == nil {
		return Piece{}, false
	}
	return *p, true
}

// Pieces returns copies of all placed pieces in row-major order.
func (b *Board) Pieces() []Piece {
	pieces := make([]Piece, 0, 32)
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			if p := b.squares[y][x]; p != nil {
				pieces = append(pieces, *p)
			}
		}
	}
	return pieces
}

// Captured returns copies of the beaten pieces.
func (b *Board) Captured() CapturedPieces {
	return CapturedPieces{
		White: append(make([]Piece, 0, len(b.captured.White)), b.captured.White...),
		Black: append(make([]Piece, 0, len(b.captured.Black)), b.captured.Black...),
	}
}

// ApplyMove moves the piece on from to to. A piece standing on to is
// captured; capturing a king ends the game in favour of the mover, and the
// move is still carried out.
//
// No legality check is made: callers obtain to from LegalDestinations. Moving
// from an empty or off-board square, or onto the square itself, panics.
func (b *Board) ApplyMove(from, to Position) Outcome {
	if !from.OnBoard() || !to.OnBoard() {
		panic(errors.Wrapf(errors.ErrContractViolation, "apply move %s-%s: square off the board", from, to))
	}
	if from == to {
		panic(errors.Wrapf(errors.ErrContractViolation, "apply move %s-%s: source equals destination", from, to))
	}
	piece := b.at(from)
	if piece == nil {
		panic(errors.Wrapf(errors.ErrContractViolation, "apply move %s-%s: no piece on source square", from, to))
	}

	outcome := Outcome{Status: Continue}
	if target := b.at(to); target != nil {
		b.squares[to.Y][to.X] = nil
		b.capture(*target)
		captured := *target
		outcome.Captured = &captured
		if target.Type == King {
			outcome.Status = GameOver
			outcome.Winner = piece.Color
		}
	}

	b.squares[from.Y][from.X] = nil
	b.squares[to.Y][to.X] = piece
	piece.Position = to
	return outcome
}

func (b *Board) capture(p Piece) {
	if p.Color == Black {
		b.captured.Black = append(b.captured.Black, p)
	} else {
		b.captured.White = append(b.captured.White, p)
	}
}

// Promote turns the piece on pos into t when it qualifies; see Piece.Promote.
func (b *Board) Promote(pos Position, t PieceType) (PieceType, error) {
	if !pos.OnBoard() || b.at(pos) == nil {
		return "", fmt.Errorf("promote on %s: square is empty: %w", pos, errors.ErrInvalidSquare)
	}
	return b.at(pos).Promote(t)
}

// Clone returns a deep copy of the board.
func (b *Board) Clone() *Board {
	c := &Board{captured: b.Captured()}
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			if p := b.squares[y][x]; p != nil {
				c.place(*p)
			}
		}
	}
	return c
}

// String lists every piece as letter, file and rank, e.g. "RA8 NB8 ... RH1".
// It carries no color, turn or castling data and has no parsing counterpart.
func (b *Board) String() string {
	tokens := make([]string, 0, 32)
	for _, p := range b.Pieces() {
		tokens = append(tokens, fmt.Sprintf("%s%c%d", p.Type.Letter(), 'A'+p.Position.X, BoardSize-p.Position.Y))
	}
	return strings.Join(tokens, " ")
}

type boardJSON struct {
	Board          [BoardSize][BoardSize]*Piece `json:"board"`
	CapturedPieces CapturedPieces               `json:"capturedPieces"`
}

// MarshalJSON encodes the grid row by row with null for empty squares.
func (b *Board) MarshalJSON() ([]byte, error) {
	return json.Marshal(boardJSON{Board: b.squares, CapturedPieces: b.captured})
}
