package model

// WSMove is a move request from a client. Promotion is optional and is
// attempted on the moved piece after the move has been applied.
type WSMove struct {
	From      Position  `json:"from"`
	To        Position  `json:"to"`
	Promotion PieceType `json:"promotion"`
}

type SimpleMove struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

// Export is the read-only text view of a board.
type Export struct {
	Pieces string `json:"pieces"`
	FEN    string `json:"fen"`
}
