package hub

import (
	"encoding/json"
	"errors"
	"log"

	"learnspace/backend/services"

	"github.com/gofiber/websocket/v2"
)

// inboundEvent is what clients send; Data stays raw until the event
// type is known.
type inboundEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type ChatHandler struct {
	Hub    *Hub
	Chat   *services.ChatService
	logger *log.Logger
}

func NewChatHandler(h *Hub, chat *services.ChatService, logger *log.Logger) *ChatHandler {
	return &ChatHandler{Hub: h, Chat: chat, logger: logger}
}

// Handle runs the read loop for one chat connection. The auth
// middleware has already placed the user id in Locals.
func (h *ChatHandler) Handle(conn *websocket.Conn) {
	userID, _ := conn.Locals("userID").(string)
	if userID == "" {
		conn.Close()
		return
	}

	client := NewClient(userID, conn)
	h.Hub.Join(UserGroup(userID), client)
	defer func() {
		h.Hub.LeaveAll(client)
		client.Close()
	}()

	for {
		var event inboundEvent
		if err := conn.ReadJSON(&event); err != nil {
			return
		}
		h.Dispatch(client, event)
	}
}

// Dispatch routes one inbound event. Split from the read loop so tests
// can drive it with a fake connection.
func (h *ChatHandler) Dispatch(client *Client, event inboundEvent) {
	switch event.Event {
	case "JoinConversation":
		h.joinConversation(client, event.Data)
	case "LeaveConversation":
		h.leaveConversation(client, event.Data)
	case "SendMessage":
		h.sendMessage(client, event.Data)
	case "MarkMessageAsRead":
		h.markMessageAsRead(client, event.Data)
	case "StartTyping":
		h.typing(client, event.Data, "UserStartedTyping")
	case "StopTyping":
		h.typing(client, event.Data, "UserStoppedTyping")
	default:
		h.logger.Printf("chat: unknown event %q from user %s", event.Event, client.UserID)
	}
}

type conversationPayload struct {
	ConversationID string `json:"conversation_id"`
}

func (h *ChatHandler) joinConversation(client *Client, raw json.RawMessage) {
	var payload conversationPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.ConversationID == "" {
		return
	}
	h.Hub.Join(ConversationGroup(payload.ConversationID), client)
}

func (h *ChatHandler) leaveConversation(client *Client, raw json.RawMessage) {
	var payload conversationPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.ConversationID == "" {
		return
	}
	h.Hub.Leave(ConversationGroup(payload.ConversationID), client)
}

type sendMessagePayload struct {
	ConversationID string `json:"conversation_id"`
	Content        string `json:"content"`
}

// sendMessage persists first and broadcasts only after the write
// landed. On failure the sender alone hears about it; the conversation
// group never sees a message that is not durable. The receiver is
// derived server-side from the conversation.
func (h *ChatHandler) sendMessage(client *Client, raw json.RawMessage) {
	var payload sendMessagePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		client.Send("MessageError", map[string]string{"error": "invalid payload"})
		return
	}

	message, err := h.Chat.SendMessage(payload.ConversationID, client.UserID, payload.Content)
	if err != nil {
		client.Send("MessageError", map[string]string{"error": messageErrorText(err)})
		return
	}

	h.Hub.Broadcast(ConversationGroup(payload.ConversationID), "ReceiveMessage", message)
	client.Send("MessageSent", map[string]string{"message_id": message.ID})
}

type markReadPayload struct {
	MessageID string `json:"message_id"`
}

// markMessageAsRead emits a read receipt to the sender only on the
// first transition to read. Repeats and unauthorized calls stay silent.
func (h *ChatHandler) markMessageAsRead(client *Client, raw json.RawMessage) {
	var payload markReadPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.MessageID == "" {
		return
	}

	message, changed, err := h.Chat.MarkMessageAsRead(payload.MessageID, client.UserID)
	if err != nil {
		h.logger.Printf("chat: mark read %s by user %s failed: %v", payload.MessageID, client.UserID, err)
		return
	}
	if !changed {
		return
	}

	h.Hub.SendToUser(message.SenderID, "MessageRead", map[string]interface{}{
		"message_id": message.ID,
		"read_at":    message.ReadAt,
		"read_by":    client.UserID,
	})
}

type typingPayload struct {
	ConversationID string `json:"conversation_id"`
	ReceiverID     string `json:"receiver_id"`
}

// Typing indicators are ephemeral: no persistence, delivery is
// best-effort to whoever is connected right now.
func (h *ChatHandler) typing(client *Client, raw json.RawMessage, event string) {
	var payload typingPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.ReceiverID == "" {
		return
	}
	h.Hub.SendToUser(payload.ReceiverID, event, map[string]string{
		"conversation_id": payload.ConversationID,
		"user_id":         client.UserID,
	})
}

func messageErrorText(err error) string {
	switch {
	case errors.Is(err, services.ErrEmptyContent):
		return "message content is empty"
	case errors.Is(err, services.ErrForbidden):
		return "not a participant of this conversation"
	case errors.Is(err, services.ErrNotFound):
		return "conversation not found"
	default:
		return "message could not be delivered"
	}
}
