package nexus

// subscription.go carries subscription operations over a websocket, speaking
// the graphql-ws wire dialect: connection_init/ack, start/data/complete,
// stop. Each started operation runs in its own goroutine off
// graphql.Subscribe and is torn down on stop or socket close.

import (
	"context"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/graphql-go/graphql"
	jsoniter "github.com/json-iterator/go"
)

const (
	msgConnectionInit      = "connection_init"
	msgConnectionAck       = "connection_ack"
	msgConnectionTerminate = "connection_terminate"
	msgStart               = "start"
	msgData                = "data"
	msgError               = "error"
	msgComplete            = "complete"
	msgStop                = "stop"
)

type wsMessage struct {
	Type    string              `json:"type"`
	ID      string              `json:"id,omitempty"`
	Payload jsoniter.RawMessage `json:"payload,omitempty"`
}

var upgrader = websocket.Upgrader{
	Subprotocols: []string{"graphql-ws"},
	CheckOrigin:  func(r *http.Request) bool { return true },
}

// SubscriptionHandler upgrades requests to websocket connections and serves
// subscription operations against schema. contextFn, when non-nil, builds
// the base context for every operation on the connection.
func SubscriptionHandler(schema *graphql.Schema, contextFn ContextFunc, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Debug("websocket upgrade failed", "err", err)
			return
		}
		defer conn.Close()

		base := r.Context()
		if contextFn != nil {
			base = contextFn(r)
		}

		s := &wsSession{
			conn:   conn,
			schema: schema,
			base:   base,
			logger: logger,
			ops:    make(map[string]context.CancelFunc),
		}
		defer s.cancelAll()

		s.run()
	})
}

type wsSession struct {
	conn   *websocket.Conn
	schema *graphql.Schema
	base   context.Context
	logger *log.Logger

	writeMu sync.Mutex

	opsMu sync.Mutex
	ops   map[string]context.CancelFunc
}

func (s *wsSession) run() {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.Debug("bad websocket message", "err", err)
			continue
		}

		switch msg.Type {
		case msgConnectionInit:
			s.write(wsMessage{Type: msgConnectionAck})
		case msgStart:
			s.start(msg)
		case msgStop:
			s.cancel(msg.ID)
		case msgConnectionTerminate:
			return
		}
	}
}

func (s *wsSession) start(msg wsMessage) {
	var req Request
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			s.writeError(msg.ID, err.Error())
			return
		}
	}

	ctx, cancel := context.WithCancel(s.base)
	s.opsMu.Lock()
	if _, exists := s.ops[msg.ID]; exists {
		s.opsMu.Unlock()
		cancel()
		s.writeError(msg.ID, "operation id already in use")
		return
	}
	s.ops[msg.ID] = cancel
	s.opsMu.Unlock()

	go func() {
		defer s.cancel(msg.ID)

		results := graphql.Subscribe(graphql.Params{
			Schema:         *s.schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        ctx,
		})
		for result := range results {
			payload, err := json.Marshal(httpResponse{Data: result.Data, Errors: result.Errors})
			if err != nil {
				s.writeError(msg.ID, err.Error())
				return
			}
			s.write(wsMessage{Type: msgData, ID: msg.ID, Payload: payload})
		}
		s.write(wsMessage{Type: msgComplete, ID: msg.ID})
	}()
}

func (s *wsSession) cancel(id string) {
	s.opsMu.Lock()
	cancel, ok := s.ops[id]
	delete(s.ops, id)
	s.opsMu.Unlock()
	if ok {
		cancel()
	}
}

func (s *wsSession) cancelAll() {
	s.opsMu.Lock()
	for id, cancel := range s.ops {
		delete(s.ops, id)
		cancel()
	}
	s.opsMu.Unlock()
}

func (s *wsSession) write(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Debug("websocket marshal failed", "err", err)
		return
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.logger.Debug("websocket write failed", "err", err)
	}
}

func (s *wsSession) writeError(id, message string) {
	payload, _ := json.Marshal(map[string]string{"message": message})
	s.write(wsMessage{Type: msgError, ID: id, Payload: payload})
}
