package model

import (
	"github.com/notnil/chess"
)

var fenPieceTypes = map[PieceType]chess.PieceType{
	King:   chess.King,
	Queen:  chess.Queen,
	Rook:   chess.Rook,
	Bishop: chess.Bishop,
	Knight: chess.Knight,
	Pawn:   chess.Pawn,
}

func fenColor(c Color) chess.Color {
	if c == Black {
		return chess.Black
	}
	return chess.White
}

// square maps a position to a notnil square. Row 0 is the eighth rank.
func (p Position) square() chess.Square {
	return chess.NewSquare(chess.File(p.X), chess.Rank(BoardSize-1-p.Y))
}

// FEN returns the piece-placement field of a FEN record for the board,
// e.g. "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR" for the start position.
func (b *Board) FEN() string {
	placement := make(map[chess.Square]chess.Piece, 32)
	for _, p := range b.Pieces() {
		placement[p.Position.square()] = chess.NewPiece(fenPieceTypes[p.Type], fenColor(p.Color))
	}
	return chess.NewBoard(placement).String()
}
