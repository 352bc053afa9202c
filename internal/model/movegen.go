package model

var (
	diagonalDirs   = []Direction{NorthEast, SouthEast, SouthWest, NorthWest}
	orthogonalDirs = []Direction{North, East, South, West}
	compassDirs    = []Direction{North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest}
	knightDirs     = []Direction{
		NorthNorthEast, EastNorthEast, EastSouthEast, SouthSouthEast,
		SouthSouthWest, WestSouthWest, WestNorthWest, NorthNorthWest,
	}
)

const (
	slideRange = BoardSize
	stepRange  = 1

	blackPawnRow = 1
	whitePawnRow = 6
)

// LegalDestinations returns the squares p may move to on b under this engine's
// rules: no check detection, castling or en passant. Results are grouped by
// direction, nearest square first. Neither p nor b is modified.
func (p Piece) LegalDestinations(b *Board) []Position {
	switch p.Type {
	case Pawn:
		return p.pawnDestinations(b)
	case Knight:
		return p.walk(b, knightDirs, stepRange)
	case Bishop:
		return p.walk(b, diagonalDirs, slideRange)
	case Rook:
		return p.walk(b, orthogonalDirs, slideRange)
	case Queen:
		return p.walk(b, compassDirs, slideRange)
	case King:
		return p.walk(b, compassDirs, stepRange)
	default:
		return []Position{}
	}
}

// walk steps up to reach squares along each direction. Empty squares are
// added and the walk continues; an opposing piece is added and ends the
// direction; an own piece or the board edge ends it without adding.
func (p Piece) walk(b *Board, dirs []Direction, reach int) []Position {
	moves := []Position{}
	for _, dir := range dirs {
		offset := dir.Offset()
		target := p.Position
		for step := 0; step < reach; step++ {
			target = target.Add(offset)
			if !target.OnBoard() {
				break
			}
			occupant := b.at(target)
			if occupant == nil {
				moves = append(moves, target)
				continue
			}
			if occupant.Color != p.Color {
				moves = append(moves, target)
			}
			break
		}
	}
	return moves
}

// pawnDestinations moves forward onto empty squares only, two squares from the
// home row, and captures only on the two forward diagonals.
func (p Piece) pawnDestinations(b *Board) []Position {
	forward, captures, homeRow := North, [2]Direction{NorthWest, NorthEast}, whitePawnRow
	if p.Color == Black {
		forward, captures, homeRow = South, [2]Direction{SouthWest, SouthEast}, blackPawnRow
	}
	reach := stepRange
	if p.Position.Y == homeRow {
		reach = 2
	}

	moves := []Position{}
	target := p.Position
	for step := 0; step < reach; step++ {
		target = target.Add(forward.Offset())
		if !target.OnBoard() || b.at(target) != nil {
			break
		}
		moves = append(moves, target)
	}
	for _, dir := range captures {
		target := p.Position.Add(dir.Offset())
		if !target.OnBoard() {
			continue
		}
		if occupant := b.at(target); occupant != nil && occupant.Color != p.Color {
			moves = append(moves, target)
		}
	}
	return moves
}
