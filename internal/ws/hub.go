// Package ws pushes collection change events to connected admin consoles.
package ws

import (
	"context"

	"github.com/rs/zerolog"

	"atelier/storefront/internal/backend"
)

// Message is one table change as delivered to a console.
type Message struct {
	Table string        `json:"table"`
	Event backend.Event `json:"event"`
}

type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan Message
	clients    map[*Client]struct{}
	done       chan struct{}
	log        zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Message, 64),
		clients:    make(map[*Client]struct{}),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run owns the client set; it exits when ctx is cancelled, closing every
// client's send channel. After it returns, attach and drop become no-ops, so
// pumps whose peers hang up mid-shutdown still unwind.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			return

		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.log.Debug().Str("user_id", client.UserID).Msg("live console attached")

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}

		case msg := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- msg:
				default:
					// Slow consumer: drop it rather than stall the hub.
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// attach hands the client to Run; after shutdown it closes the client's send
// channel instead, which makes its write pump exit immediately.
func (h *Hub) attach(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		close(c.send)
	}
}

// drop detaches a client whose socket closed. After shutdown Run has already
// closed every send channel, so there is nothing left to hand back.
func (h *Hub) drop(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Announce satisfies live.Broadcaster. It never blocks: when the hub is
// saturated the event is dropped, since consoles resync from the collections
// anyway.
func (h *Hub) Announce(table string, ev backend.Event) {
	select {
	case h.broadcast <- Message{Table: table, Event: ev}:
	default:
		h.log.Warn().Str("table", table).Msg("live broadcast dropped")
	}
}
