package room

import "fmt"

// Client is a single connected websocket session, seated or spectating, attached to a room
type Client struct {
	send  chan interface{}
	Close chan string

	// CloseError holds the reason the underlying connection ended, set by the transport layer
	CloseError error

	room        *Room
	displayName string
	seatIdx     int
}

// NewClient returns a new client identified by displayName, not yet attached to a room
func NewClient(displayName string) *Client {
	return &Client{
		send:        make(chan interface{}, 256),
		Close:       make(chan string),
		displayName: displayName,
		seatIdx:     -1,
	}
}

// Send enqueues a message for the client's write loop, dropping it if the client's buffer is full
func (c *Client) Send(msg interface{}) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// SendChan returns the read-only outbound channel the transport layer drains
func (c *Client) SendChan() <-chan interface{} {
	return c.send
}

// String returns a traceable identifier for logging
func (c *Client) String() string {
	return fmt.Sprintf("%s@%s", c.displayName, c.roomID())
}

func (c *Client) roomID() string {
	if c.room == nil {
		return "-"
	}

	return c.room.ID
}

// ReceivedMessage is called by the transport layer when a client sends a message
func (c *Client) ReceivedMessage(msg *Envelope) {
	if c.room == nil {
		return
	}

	c.room.ReceivedMessage(c, msg)
}
