package model

type Player struct {
	ID    string
	Color Color
}

type ClientPlayer struct {
	ID    string `json:"name"`
	Color Color  `json:"color"`
}

type Players struct {
	White ClientPlayer `json:"white"`
	Black ClientPlayer `json:"black"`
}

// seat returns the seat for c.
func (p *Players) seat(c Color) *ClientPlayer {
	if c == Black {
		return &p.Black
	}
	return &p.White
}

// MatchFoundEvent is sent to both players when matchmaking pairs them.
type MatchFoundEvent struct {
	GameID string `json:"gameId"`
	Color  Color  `json:"color"`
}
