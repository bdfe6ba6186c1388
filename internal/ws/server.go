package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"pizza-rush/internal/store"
)

// Handler receives decoded client messages. Connection identifiers are
// assigned by this package; the handler treats them as opaque player ids.
type Handler interface {
	Connected(ctx context.Context, connID string)
	Disconnected(ctx context.Context, connID string)
	Join(ctx context.Context, connID, room, passphrase string)
	PrepareIngredient(ctx context.Context, connID, kind string)
	TakeIngredient(ctx context.Context, connID, ingredientID, target string)
	BuildPizza(ctx context.Context, connID, target string)
	MoveToOven(ctx context.Context, connID, pizzaID string)
	ToggleOven(ctx context.Context, connID, state string)
	StartRound(ctx context.Context, connID string)
	TimeRequest(ctx context.Context, connID string)
}

type Client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Server owns the websocket connections and the room membership sets. It
// pushes outbound events and forwards inbound messages to the handler; all
// game decisions live behind the Handler.
type Server struct {
	handler  Handler
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[string]*Client
	rooms   map[string]map[string]*Client
	joined  map[string]string
}

func NewServer() *Server {
	return &Server{
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		clients:  map[string]*Client{},
		rooms:    map[string]map[string]*Client{},
		joined:   map[string]string{},
	}
}

// SetHandler wires the message sink. The server and its handler reference
// each other, so one side binds late; call before serving connections.
func (s *Server) SetHandler(h Handler) {
	s.handler = h
}

func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &Client{id: store.NewID(), conn: conn, send: make(chan []byte, 32)}

	s.mu.Lock()
	s.clients[client.id] = client
	s.mu.Unlock()

	go s.writeLoop(client)
	s.handler.Connected(r.Context(), client.id)
	s.readLoop(r.Context(), client)
}

func (s *Server) readLoop(ctx context.Context, c *Client) {
	defer func() {
		s.unregister(c)
		s.handler.Disconnected(ctx, c.id)
		_ = c.conn.Close()
	}()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var base struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(msg, &base); err != nil {
			continue
		}
		switch base.Type {
		case MsgJoin:
			var m JoinMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				continue
			}
			s.handler.Join(ctx, c.id, m.Room, m.Passphrase)
		case MsgPrepareIngredient:
			var m PrepareMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				continue
			}
			s.handler.PrepareIngredient(ctx, c.id, m.Kind)
		case MsgTakeIngredient:
			var m TakeMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				continue
			}
			s.handler.TakeIngredient(ctx, c.id, m.IngredientID, m.Target)
		case MsgBuildPizza:
			var m BuildMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				continue
			}
			s.handler.BuildPizza(ctx, c.id, m.Target)
		case MsgMoveToOven:
			var m MoveMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				continue
			}
			s.handler.MoveToOven(ctx, c.id, m.PizzaID)
		case MsgToggleOven:
			var m ToggleMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				continue
			}
			s.handler.ToggleOven(ctx, c.id, m.State)
		case MsgStartRound:
			s.handler.StartRound(ctx, c.id)
		case MsgTimeRequest:
			s.handler.TimeRequest(ctx, c.id)
		}
	}
}

func (s *Server) writeLoop(c *Client) {
	for msg := range c.send {
		_ = c.conn.WriteMessage(websocket.TextMessage, msg)
	}
}

func (s *Server) unregister(c *Client) {
	s.mu.Lock()
	delete(s.clients, c.id)
	if room, ok := s.joined[c.id]; ok {
		delete(s.joined, c.id)
		if members := s.rooms[room]; members != nil {
			delete(members, c.id)
			if len(members) == 0 {
				delete(s.rooms, room)
			}
		}
	}
	s.mu.Unlock()
	safeClose(c.send)
}

// Subscribe adds the connection to a room's event feed. A connection belongs
// to at most one room; a second subscribe moves it.
func (s *Server) Subscribe(connID, room string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[connID]
	if !ok {
		return
	}
	if old, ok := s.joined[connID]; ok {
		if members := s.rooms[old]; members != nil {
			delete(members, connID)
			if len(members) == 0 {
				delete(s.rooms, old)
			}
		}
	}
	if s.rooms[room] == nil {
		s.rooms[room] = map[string]*Client{}
	}
	s.rooms[room][connID] = c
	s.joined[connID] = room
}

func (s *Server) Unsubscribe(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.joined[connID]
	if !ok {
		return
	}
	delete(s.joined, connID)
	if members := s.rooms[room]; members != nil {
		delete(members, connID)
		if len(members) == 0 {
			delete(s.rooms, room)
		}
	}
}

// Broadcast sends an event to every connection subscribed to the room.
func (s *Server) Broadcast(room, event string, data any) {
	msg, err := json.Marshal(Envelope{Type: event, Data: data})
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("marshal broadcast")
		return
	}
	s.mu.Lock()
	for _, c := range s.rooms[room] {
		safeSend(c.send, msg)
	}
	s.mu.Unlock()
}

// BroadcastAll sends an event to every open connection, subscribed or not.
func (s *Server) BroadcastAll(event string, data any) {
	msg, err := json.Marshal(Envelope{Type: event, Data: data})
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("marshal broadcast")
		return
	}
	s.mu.Lock()
	for _, c := range s.clients {
		safeSend(c.send, msg)
	}
	s.mu.Unlock()
}

// Send sends an event to a single connection. Unknown ids are ignored; the
// peer may have dropped between the handler's decision and the write.
func (s *Server) Send(connID, event string, data any) {
	msg, err := json.Marshal(Envelope{Type: event, Data: data})
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("marshal send")
		return
	}
	s.mu.Lock()
	c, ok := s.clients[connID]
	s.mu.Unlock()
	if ok {
		safeSend(c.send, msg)
	}
}

// The send channel is closed by unregister while broadcasts may still be in
// flight; recover covers the race instead of a second registry lock.
func safeClose(ch chan []byte) {
	defer func() {
		_ = recover()
	}()
	close(ch)
}

func safeSend(ch chan []byte, msg []byte) {
	defer func() {
		_ = recover()
	}()
	select {
	case ch <- msg:
	default:
	}
}
