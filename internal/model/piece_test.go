package model

import (
	"testing"

	"github.com/benbeisheim/chess-engine/internal/errors"
	"github.com/benbeisheim/chess-engine/internal/testutil"
)

func TestPromote(t *testing.T) {
	tests := []struct {
		name    string
		piece   Piece
		to      PieceType
		wantErr error
	}{
		{"white on column 0", NewPiece(Pawn, White, NewPosition(0, 4)), Queen, nil},
		{"black on column 7", NewPiece(Pawn, Black, NewPosition(7, 2)), Knight, nil},
		// Any piece type qualifies, not only pawns.
		{"white rook on column 0", NewPiece(Rook, White, NewPosition(0, 7)), Queen, nil},
		{"white on column 1", NewPiece(Pawn, White, NewPosition(1, 4)), Queen, errors.ErrPromotionRejected},
		{"white on column 7", NewPiece(Pawn, White, NewPosition(7, 4)), Queen, errors.ErrPromotionRejected},
		{"black on column 0", NewPiece(Pawn, Black, NewPosition(0, 6)), Queen, errors.ErrPromotionRejected},
		{"white on row 0", NewPiece(Pawn, White, NewPosition(3, 0)), Queen, errors.ErrPromotionRejected},
		{"unknown type", NewPiece(Pawn, White, NewPosition(0, 4)), PieceType("dragon"), errors.ErrUnknownPieceType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.piece
			got, err := p.Promote(tt.to)
			if tt.wantErr != nil {
				testutil.AssertErrorIs(t, err, tt.wantErr)
				testutil.AssertEqual(t, got, tt.piece.Type)
				testutil.AssertEqual(t, p, tt.piece, "piece unchanged")
				return
			}
			testutil.AssertNoError(t, err)
			testutil.AssertEqual(t, got, tt.to)
			testutil.AssertEqual(t, p.Type, tt.to)
			testutil.AssertEqual(t, p.Position, tt.piece.Position)
		})
	}
}

func TestPieceTypeLetterAndGlyph(t *testing.T) {
	tests := []struct {
		typ    PieceType
		letter string
		white  rune
		black  rune
	}{
		{King, "K", '♔', '♚'},
		{Queen, "Q", '♕', '♛'},
		{Rook, "R", '♖', '♜'},
		{Bishop, "B", '♗', '♝'},
		{Knight, "N", '♘', '♞'},
		{Pawn, "P", '♙', '♟'},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			testutil.AssertEqual(t, tt.typ.Letter(), tt.letter)
			testutil.AssertEqual(t, tt.typ.Glyph(White), tt.white)
			testutil.AssertEqual(t, tt.typ.Glyph(Black), tt.black)
			testutil.AssertTrue(t, tt.typ.Valid())
		})
	}

	testutil.AssertFalse(t, PieceType("").Valid())
	testutil.AssertEqual(t, PieceType("").Glyph(White), '?')
}

func TestColor(t *testing.T) {
	testutil.AssertEqual(t, White.Opposite(), Black)
	testutil.AssertEqual(t, Black.Opposite(), White)
}

func TestPieceString(t *testing.T) {
	testutil.AssertEqual(t, NewPiece(Knight, White, NewPosition(6, 7)).String(), "♘g1")
	testutil.AssertEqual(t, NewPiece(Pawn, Black, NewPosition(9, 1)).String(), "♟(9,1)")
}
