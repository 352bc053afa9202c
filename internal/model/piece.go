package model

import (
	"fmt"

	"github.com/benbeisheim/chess-engine/internal/errors"
)

type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// Opposite returns the other side's color.
func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

type PieceType string

const (
	King   PieceType = "king"
	Queen  PieceType = "queen"
	Rook   PieceType = "rook"
	Bishop PieceType = "bishop"
	Knight PieceType = "knight"
	Pawn   PieceType = "pawn"
)

// Letter returns the one-letter code used by the board export.
func (p PieceType) Letter() string {
	switch p {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	case Pawn:
		return "P"
	}
	return "?"
}

// Valid reports whether p is one of the six chess piece types.
func (p PieceType) Valid() bool {
	return p.Letter() != "?"
}

// whiteGlyphs holds the white chess symbols; black symbols follow six code points later.
var whiteGlyphs = map[PieceType]rune{
	King:   0x2654,
	Queen:  0x2655,
	Rook:   0x2656,
	Bishop: 0x2657,
	Knight: 0x2658,
	Pawn:   0x2659,
}

// Glyph returns the Unicode chess symbol for a piece of this type and color.
func (p PieceType) Glyph(c Color) rune {
	g, ok := whiteGlyphs[p]
	if !ok {
		return '?'
	}
	if c == Black {
		return g + 6
	}
	return g
}

// Piece is a chess piece. Position always mirrors the square the board
// keeps it on; only Board.ApplyMove relocates a placed piece.
type Piece struct {
	Type     PieceType `json:"type"`
	Color    Color     `json:"color"`
	Position Position  `json:"position"`
}

func NewPiece(t PieceType, c Color, pos Position) Piece {
	return Piece{Type: t, Color: c, Position: pos}
}

func (p Piece) String() string {
	return fmt.Sprintf("%c%s", p.Type.Glyph(p.Color), p.Position)
}

// CanPromote reports whether the piece stands on its promotion edge: column 0
// for White, column 7 for Black. The piece type is not consulted.
func (p Piece) CanPromote() bool {
	return p.Color == White && p.Position.X == 0 ||
		p.Color == Black && p.Position.X == BoardSize-1
}

// Promote changes the piece into t if it stands on its promotion edge.
// On failure the piece is left untouched.
func (p *Piece) Promote(t PieceType) (PieceType, error) {
	if !t.Valid() {
		return p.Type, fmt.Errorf("promote %s to %q: %w", p, t, errors.ErrUnknownPieceType)
	}
	if !p.CanPromote() {
		return p.Type, fmt.Errorf("promote %s to %s: %w", p, t, errors.ErrPromotionRejected)
	}
	p.Type = t
	return t, nil
}
