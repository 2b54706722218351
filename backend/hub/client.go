package hub

import "sync"

// wsConn is the subset of *websocket.Conn the hub needs. Tests
// substitute a recording fake.
type wsConn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Client is one live connection owned by one authenticated user. Writes
// are serialized with a mutex because fan-out and the connection's own
// handler may push concurrently.
type Client struct {
	UserID string

	mu   sync.Mutex
	conn wsConn
}

func NewClient(userID string, conn wsConn) *Client {
	return &Client{UserID: userID, conn: conn}
}

func (c *Client) Send(event string, data interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(Event{Event: event, Data: data})
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Close()
}
