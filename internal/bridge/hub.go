package bridge

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Rotty13/llm-sim-sub001/internal/action"
	"github.com/Rotty13/llm-sim-sub001/internal/events"
	"github.com/Rotty13/llm-sim-sub001/schemas"
)

// Hub maintains the set of connected observers and broadcasts frames to
// all of them. Slow observers are dropped rather than allowed to stall
// the rest.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex

	upgrader websocket.Upgrader

	// validate holds the compiled frame schema when outbound validation
	// is on; frames that fail it are dropped before broadcast.
	validate *jsonschema.Schema
}

// NewHub creates a hub. With validateFrames set, every outbound frame is
// checked against the embedded frame schema first.
func NewHub(validateFrames bool) (*Hub, error) {
	h := &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	if validateFrames {
		schema, err := schemas.Compile("frame.schema.json", schemas.Frame)
		if err != nil {
			return nil, err
		}
		h.validate = schema
	}
	return h, nil
}

// Run handles client registration and broadcast fan-out until the context
// is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			slog.Info("bridge hub shutting down")
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			slog.Info("observer connected", "observers", h.ClientCount())
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				slog.Info("observer disconnected", "observers", len(h.clients))
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast serializes one frame and queues it for every observer.
func (h *Hub) Broadcast(f Frame) {
	payload, err := json.Marshal(f)
	if err != nil {
		slog.Error("frame marshal failed", "error", err)
		return
	}
	if h.validate != nil {
		var doc any
		_ = json.Unmarshal(payload, &doc)
		if err := h.validate.Validate(doc); err != nil {
			slog.Warn("dropping malformed frame", "type", f.Type, "error", err)
			return
		}
	}
	select {
	case h.broadcast <- payload:
	default:
		// Queue full; observers are best-effort.
	}
}

// OnInstruction queues one executed instruction for broadcast. The
// signature matches the simulation's instruction hook.
func (h *Hub) OnInstruction(name string, tick int, in action.Instruction) {
	h.Broadcast(InstructionFrame(name, tick, in))
}

// StartEventPoller follows the event log from its current end and pushes
// every later event to connected observers.
func (h *Hub) StartEventPoller(ctx context.Context, log *events.Log) {
	go func() {
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()

		cursor := log.Total()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				batch, next := log.Since(cursor)
				cursor = next
				for _, e := range batch {
					h.Broadcast(EventFrame(e))
				}
			}
		}
	}()
}

// ServeWS upgrades one observer connection and starts its pumps.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	c := &Client{hub: h, conn: conn, send: make(chan []byte, 256)}
	h.register <- c
	go c.writePump()
	go c.readPump()
}

// Serve blocks, serving the websocket endpoint at /ws on addr.
func (h *Hub) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.ServeWS)
	slog.Info("bridge listening", "addr", addr)
	return http.ListenAndServe(addr, mux)
}

// ClientCount returns the number of connected observers.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
