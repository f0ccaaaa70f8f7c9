package domain

import "errors"

var (
	ErrRoomExists   = errors.New("room already exists")
	ErrRoomNotFound = errors.New("room not found")
)

const (
	TypeCreateRoom  = "CREATE_ROOM"
	TypeJoinRoom    = "JOIN_ROOM"
	TypeVideoEvent  = "VIDEO_EVENT"
	TypeRoomCreated = "ROOM_CREATED"
	TypeRoomJoined  = "ROOM_JOINED"
)

// Message is the flat inbound envelope every client frame decodes into.
// Field presence depends on Type; clientId may ride along on any message
// and updates the connection's identity.
type Message struct {
	Type      string   `json:"type"`
	RoomID    string   `json:"roomId,omitempty"`
	URL       string   `json:"url,omitempty"`
	RequestID string   `json:"requestId,omitempty"`
	Event     string   `json:"event,omitempty"`
	Time      *float64 `json:"time,omitempty"`
	Playing   *bool    `json:"playing,omitempty"`
	ClientID  string   `json:"clientId,omitempty"`
}

// RoomReply acknowledges CREATE_ROOM / JOIN_ROOM requests.
type RoomReply struct {
	Type      string `json:"type"`
	OK        bool   `json:"ok"`
	RoomID    string `json:"roomId"`
	RequestID string `json:"requestId,omitempty"`
	URL       string `json:"url,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// VideoEvent is relayed to every room member except the sender.
type VideoEvent struct {
	Type         string   `json:"type"`
	RoomID       string   `json:"roomId"`
	Event        string   `json:"event"`
	Time         *float64 `json:"time,omitempty"`
	Playing      *bool    `json:"playing,omitempty"`
	FromClientID string   `json:"fromClientId"`
}

// Connection is one client's live channel. ID is assigned by the server
// and never changes; ClientID is whatever the client last told us.
type Connection interface {
	ID() string
	ClientID() string
	SetClientID(id string)
	Room() string
	SetRoom(id string)
	Send(data []byte) error
	Close() error
}

// Registry owns the room map. All mutations are serialized internally.
type Registry interface {
	Create(roomID, url string, member Connection) error
	Join(roomID string, member Connection) (url string, err error)
	Detach(member Connection)
	Targets(roomID string, exclude Connection) []Connection
	Stats() (rooms, clients int)
}

type MessageHandler interface {
	Handle(conn Connection, data []byte)
}
