package hub

import (
	"log"
	"sync"
)

// Event is the wire envelope for every server-to-client push.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub tracks which live connections belong to which named groups and
// fans events out to them. Group membership is the only state kept for
// a connection; nothing is queued for clients that are offline, they
// re-fetch on reconnect.
type Hub struct {
	logger *log.Logger

	mu     sync.RWMutex
	groups map[string]map[*Client]struct{}
}

func New(logger *log.Logger) *Hub {
	return &Hub{
		logger: logger,
		groups: make(map[string]map[*Client]struct{}),
	}
}

// UserGroup names the personal group every authenticated connection
// joins on connect.
func UserGroup(userID string) string { return "user:" + userID }

func ConversationGroup(conversationID string) string { return "conversation:" + conversationID }

func CourseGroup(courseID string) string { return "course:" + courseID }

func RoleGroup(role string) string { return "role:" + role }

// Join is idempotent: adding a connection to a group it is already in
// changes nothing.
func (h *Hub) Join(group string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.groups[group]
	if !ok {
		members = make(map[*Client]struct{})
		h.groups[group] = members
	}
	members[client] = struct{}{}
}

func (h *Hub) Leave(group string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(group, client)
}

// LeaveAll detaches a connection from every group it joined. Called on
// disconnect; there is no other compensating action.
func (h *Hub) LeaveAll(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for group := range h.groups {
		h.removeLocked(group, client)
	}
}

func (h *Hub) removeLocked(group string, client *Client) {
	members, ok := h.groups[group]
	if !ok {
		return
	}
	delete(members, client)
	if len(members) == 0 {
		delete(h.groups, group)
	}
}

// Broadcast sends an event to every member of a group. Write failures
// are logged and skipped; a dead connection is cleaned up by its own
// read loop, not here.
func (h *Hub) Broadcast(group, event string, data interface{}) {
	h.mu.RLock()
	members := make([]*Client, 0, len(h.groups[group]))
	for client := range h.groups[group] {
		members = append(members, client)
	}
	h.mu.RUnlock()

	for _, client := range members {
		if err := client.Send(event, data); err != nil {
			h.logger.Printf("hub: send to user %s in %s failed: %v", client.UserID, group, err)
		}
	}
}

// SendToUser targets a user's personal group.
func (h *Hub) SendToUser(userID, event string, data interface{}) {
	h.Broadcast(UserGroup(userID), event, data)
}

// GroupSize reports current membership, mainly for tests.
func (h *Hub) GroupSize(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}
