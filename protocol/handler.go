package protocol

import (
	"encoding/json"
	"log/slog"

	"github.com/redripper480/sync-party-server/domain"
	"github.com/redripper480/sync-party-server/metrics"
)

// Handler routes decoded client messages against the room registry.
type Handler struct {
	registry domain.Registry
}

func NewHandler(r domain.Registry) *Handler {
	return &Handler{registry: r}
}

func (h *Handler) Handle(conn domain.Connection, data []byte) {
	var msg domain.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		slog.Warn("invalid message", "clientId", conn.ClientID(), "error", err)
		return
	}

	// Any message may carry the client's self-assigned identity.
	if msg.ClientID != "" {
		conn.SetClientID(msg.ClientID)
	}

	if msg.Type == "" {
		slog.Warn("message without type", "clientId", conn.ClientID())
		return
	}

	switch msg.Type {
	case domain.TypeCreateRoom:
		metrics.MessagesTotal.WithLabelValues(msg.Type).Inc()
		h.handleCreateRoom(conn, msg)
	case domain.TypeJoinRoom:
		metrics.MessagesTotal.WithLabelValues(msg.Type).Inc()
		h.handleJoinRoom(conn, msg)
	case domain.TypeVideoEvent:
		metrics.MessagesTotal.WithLabelValues(msg.Type).Inc()
		h.handleVideoEvent(conn, msg)
	default:
		metrics.MessagesTotal.WithLabelValues("unknown").Inc()
		slog.Warn("unknown message type", "type", msg.Type, "clientId", conn.ClientID())
	}
}

func (h *Handler) handleCreateRoom(conn domain.Connection, msg domain.Message) {
	if msg.RoomID == "" || msg.RequestID == "" {
		slog.Error("CREATE_ROOM missing roomId or requestId", "clientId", conn.ClientID())
		h.reply(conn, domain.RoomReply{
			Type:      domain.TypeRoomCreated,
			OK:        false,
			RoomID:    msg.RoomID,
			RequestID: msg.RequestID,
			Reason:    "Missing roomId or requestId",
		})
		return
	}

	if err := h.registry.Create(msg.RoomID, msg.URL, conn); err != nil {
		slog.Warn("room already exists", "room", msg.RoomID)
		h.reply(conn, domain.RoomReply{
			Type:      domain.TypeRoomCreated,
			OK:        false,
			RoomID:    msg.RoomID,
			RequestID: msg.RequestID,
			Reason:    "Room already exists",
		})
		return
	}

	h.reply(conn, domain.RoomReply{
		Type:      domain.TypeRoomCreated,
		OK:        true,
		RoomID:    msg.RoomID,
		RequestID: msg.RequestID,
		URL:       msg.URL,
	})
}

func (h *Handler) handleJoinRoom(conn domain.Connection, msg domain.Message) {
	if msg.RoomID == "" || msg.RequestID == "" {
		slog.Error("JOIN_ROOM missing roomId or requestId", "clientId", conn.ClientID())
		h.reply(conn, domain.RoomReply{
			Type:      domain.TypeRoomJoined,
			OK:        false,
			RoomID:    msg.RoomID,
			RequestID: msg.RequestID,
			Reason:    "Missing roomId or requestId",
		})
		return
	}

	url, err := h.registry.Join(msg.RoomID, conn)
	if err != nil {
		slog.Warn("join requested for non-existent room", "room", msg.RoomID)
		h.reply(conn, domain.RoomReply{
			Type:      domain.TypeRoomJoined,
			OK:        false,
			RoomID:    msg.RoomID,
			RequestID: msg.RequestID,
			Reason:    "Room not found",
		})
		return
	}

	h.reply(conn, domain.RoomReply{
		Type:      domain.TypeRoomJoined,
		OK:        true,
		RoomID:    msg.RoomID,
		RequestID: msg.RequestID,
		URL:       url,
	})
}

func (h *Handler) handleVideoEvent(conn domain.Connection, msg domain.Message) {
	if msg.RoomID == "" || msg.Event == "" {
		slog.Warn("video event missing roomId or event", "clientId", conn.ClientID())
		return
	}

	targets := h.registry.Targets(msg.RoomID, conn)
	if len(targets) == 0 {
		return
	}

	out := domain.VideoEvent{
		Type:         domain.TypeVideoEvent,
		RoomID:       msg.RoomID,
		Event:        msg.Event,
		Time:         msg.Time,
		Playing:      msg.Playing,
		FromClientID: conn.ClientID(),
	}
	data, err := json.Marshal(out)
	if err != nil {
		slog.Warn("marshal error", "clientId", conn.ClientID(), "error", err)
		return
	}

	// Best effort: one member's dead channel must not starve the rest.
	for _, target := range targets {
		if err := target.Send(data); err != nil {
			metrics.SendFailuresTotal.Inc()
			slog.Warn("send failed", "room", msg.RoomID, "clientId", target.ClientID(), "error", err)
			continue
		}
		metrics.BroadcastsTotal.Inc()
	}
}

// reply sends an encoded response to a single connection, swallowing
// transport errors the way the rest of the relay does.
func (h *Handler) reply(conn domain.Connection, reply domain.RoomReply) {
	data, err := json.Marshal(reply)
	if err != nil {
		slog.Warn("marshal error", "clientId", conn.ClientID(), "error", err)
		return
	}
	if err := conn.Send(data); err != nil {
		metrics.SendFailuresTotal.Inc()
		slog.Warn("send failed", "clientId", conn.ClientID(), "error", err)
	}
}
