package ws

import (
	"encoding/json"
)

// MessageType represents the different kinds of messages our system can handle
type MessageType string

const (
	// client -> server
	MessageTypeSelect  MessageType = "select"
	MessageTypeMove    MessageType = "move"
	MessageTypeCancel  MessageType = "cancel"
	MessageTypePromote MessageType = "promote"
	MessageTypeLeave   MessageType = "leave"

	// server -> client
	MessageTypeGameState  MessageType = "gameState"
	MessageTypeMatchFound MessageType = "matchFound"
	MessageTypeError      MessageType = "error"
)

// Message represents a WebSocket message in our system
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// SelectPayload picks up the piece on Square, e.g. "e2".
type SelectPayload struct {
	Square string `json:"square"`
}

// MovePayload moves a piece. From may be empty to move the selected piece.
type MovePayload struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

type PromotePayload struct {
	Square string `json:"square"`
	Piece  string `json:"piece"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}
