package model

import (
	"fmt"
	"strings"

	"github.com/benbeisheim/chess-engine/internal/errors"
)

// BoardSize is the number of rows and columns on the board.
const BoardSize = 8

// Position is a board coordinate. X is the column and Y the row, both in
// [0,7] once a piece stands on it. Row 0 is the black back rank.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func NewPosition(x, y int) Position {
	return Position{X: x, Y: y}
}

// OnBoard reports whether p names one of the 64 squares.
func (p Position) OnBoard() bool {
	return p.X >= 0 && p.X < BoardSize && p.Y >= 0 && p.Y < BoardSize
}

// Add returns p shifted by offset.
func (p Position) Add(offset Position) Position {
	return Position{X: p.X + offset.X, Y: p.Y + offset.Y}
}

// Notation returns the square in lower-case algebraic form, e.g. "e2".
func (p Position) Notation() string {
	return fmt.Sprintf("%c%d", p.X+'a', BoardSize-p.Y)
}

func (p Position) String() string {
	if !p.OnBoard() {
		return fmt.Sprintf("(%d,%d)", p.X, p.Y)
	}
	return p.Notation()
}

// ParsePosition converts square notation such as "e2" or "E2" to a Position.
func ParsePosition(square string) (Position, error) {
	s := strings.ToLower(strings.TrimSpace(square))
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return Position{}, fmt.Errorf("%q: %w", square, errors.ErrInvalidSquare)
	}
	return Position{X: int(s[0] - 'a'), Y: BoardSize - int(s[1]-'0')}, nil
}

// Direction names one of the sixteen offsets pieces move along: the eight
// compass directions and the eight knight jumps.
type Direction int

const (
	North Direction = iota
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
	NorthNorthEast
	EastNorthEast
	EastSouthEast
	SouthSouthEast
	SouthSouthWest
	WestSouthWest
	WestNorthWest
	NorthNorthWest
	numDirections
)

// directionOffsets is the only place movement offsets are defined.
var directionOffsets = [numDirections]Position{
	North:          {X: 0, Y: -1},
	NorthEast:      {X: 1, Y: -1},
	East:           {X: 1, Y: 0},
	SouthEast:      {X: 1, Y: 1},
	South:          {X: 0, Y: 1},
	SouthWest:      {X: -1, Y: 1},
	West:           {X: -1, Y: 0},
	NorthWest:      {X: -1, Y: -1},
	NorthNorthEast: {X: 1, Y: -2},
	EastNorthEast:  {X: 2, Y: -1},
	EastSouthEast:  {X: 2, Y: 1},
	SouthSouthEast: {X: 1, Y: 2},
	SouthSouthWest: {X: -1, Y: 2},
	WestSouthWest:  {X: -2, Y: 1},
	WestNorthWest:  {X: -2, Y: -1},
	NorthNorthWest: {X: -1, Y: -2},
}

// Offset returns the (column, row) step for d.
func (d Direction) Offset() Position {
	return directionOffsets[d]
}
