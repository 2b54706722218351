package hub

import (
	"encoding/json"
	"log"

	"learnspace/backend/services"

	"github.com/gofiber/websocket/v2"
)

type NotificationHandler struct {
	Hub           *Hub
	Notifications *services.NotificationService
	logger        *log.Logger
}

func NewNotificationHandler(h *Hub, notifications *services.NotificationService, logger *log.Logger) *NotificationHandler {
	return &NotificationHandler{Hub: h, Notifications: notifications, logger: logger}
}

// Handle joins the connection to the user's personal group and pushes
// the current unread count, then serves read-state events until the
// peer goes away. Nothing is replayed for time spent offline; the
// fresh count on connect is the catch-up mechanism.
func (h *NotificationHandler) Handle(conn *websocket.Conn) {
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

	h.pushUnreadCount(client)

	for {
		var event inboundEvent
		if err := conn.ReadJSON(&event); err != nil {
			return
		}
		h.Dispatch(client, event)
	}
}

func (h *NotificationHandler) Dispatch(client *Client, event inboundEvent) {
	switch event.Event {
	case "MarkAsRead":
		h.markAsRead(client, event.Data)
	case "MarkAllAsRead":
		h.markAllAsRead(client)
	case "JoinCourseGroup":
		h.courseGroup(client, event.Data, true)
	case "LeaveCourseGroup":
		h.courseGroup(client, event.Data, false)
	case "JoinRoleGroup":
		h.joinRoleGroup(client, event.Data)
	default:
		h.logger.Printf("notifications: unknown event %q from user %s", event.Event, client.UserID)
	}
}

// pushUnreadCount recomputes from storage every time; the count is
// never maintained incrementally on the connection.
func (h *NotificationHandler) pushUnreadCount(client *Client) {
	count, err := h.Notifications.UnreadCount(client.UserID)
	if err != nil {
		h.logger.Printf("notifications: unread count for user %s failed: %v", client.UserID, err)
		return
	}
	client.Send("UpdateUnreadCount", map[string]int64{"unread_count": count})
}

type notificationIDPayload struct {
	NotificationID string `json:"notification_id"`
}

func (h *NotificationHandler) markAsRead(client *Client, raw json.RawMessage) {
	var payload notificationIDPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.NotificationID == "" {
		return
	}

	changed, err := h.Notifications.MarkRead(payload.NotificationID, client.UserID)
	if err != nil {
		h.logger.Printf("notifications: mark read %s for user %s failed: %v", payload.NotificationID, client.UserID, err)
		return
	}
	if changed {
		h.pushUnreadCount(client)
	}
}

func (h *NotificationHandler) markAllAsRead(client *Client) {
	if err := h.Notifications.MarkAllRead(client.UserID); err != nil {
		h.logger.Printf("notifications: mark all read for user %s failed: %v", client.UserID, err)
		return
	}
	h.pushUnreadCount(client)
}

type courseGroupPayload struct {
	CourseID string `json:"course_id"`
}

func (h *NotificationHandler) courseGroup(client *Client, raw json.RawMessage, join bool) {
	var payload courseGroupPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.CourseID == "" {
		return
	}
	if join {
		h.Hub.Join(CourseGroup(payload.CourseID), client)
	} else {
		h.Hub.Leave(CourseGroup(payload.CourseID), client)
	}
}

type roleGroupPayload struct {
	Role string `json:"role"`
}

func (h *NotificationHandler) joinRoleGroup(client *Client, raw json.RawMessage) {
	var payload roleGroupPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Role == "" {
		return
	}
	h.Hub.Join(RoleGroup(payload.Role), client)
}
