// Package fake is an in-memory backend that speaks the console wire
// protocol. It backs integration tests and the fake-backend command.
package fake

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/enciclo/control"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ExpiredMessage is the business message sent for an expired session.
const ExpiredMessage = "Sesión caducada"

// pagedEndpoints answer with {list, total} filtered and paged by Query.
var pagedEndpoints = map[string]bool{
	"user":           true,
	"sessions":       true,
	"lastsessions":   true,
	"chats":          true,
	"pages":          true,
	"queries":        true,
	"prints":         true,
	"userstats":      true,
	"repository/get": true,
	"crm/leads":      true,
	"entities/list":  true,
	"entities/pages": true,
}

// listEndpoints answer with every seeded row.
var listEndpoints = map[string]bool{
	"collections":         true,
	"meta/collections":    true,
	"processlist":         true,
	"getqueries":          true,
	"getlistmedia":        true,
	"getlistrepositories": true,
	"fake_stats":          true,
	"listrag":             true,
	"crm/messages":        true,
}

// exportEndpoints answer with a download URL.
var exportEndpoints = map[string]bool{
	"sessions_export":   true,
	"pages_export":      true,
	"queries_export":    true,
	"print_export":      true,
	"chats_export":      true,
	"repository/export": true,
	"exportwiki":        true,
}

// Server is an in-memory backend. Its zero value is not usable; call New.
type Server struct {
	logger  *zap.Logger
	now     func() time.Time
	ttl     time.Duration
	fileURL string

	mu       sync.Mutex
	users    map[string]string    // username -> secret
	sessions map[string]time.Time // session id -> expiry
	rows     map[string][]map[string]any
	calls    []Call
}

// Call is one request the server received.
type Call struct {
	Endpoint  string
	SessionID string
	Query     *control.Query // set for paged endpoints
	Body      map[string]any
}

// Option configures a [Server].
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithSessionTTL sets how long a session stays valid after login.
func WithSessionTTL(d time.Duration) Option {
	return func(s *Server) { s.ttl = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithFileURL sets the prefix of generated export and upload URLs.
func WithFileURL(prefix string) Option {
	return func(s *Server) { s.fileURL = strings.TrimRight(prefix, "/") }
}

// New returns an empty server.
func New(opts ...Option) *Server {
	s := &Server{
		logger:   zap.NewNop(),
		now:      time.Now,
		ttl:      time.Hour,
		fileURL:  "http://files.invalid",
		users:    make(map[string]string),
		sessions: make(map[string]time.Time),
		rows:     make(map[string][]map[string]any),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// AddUser registers credentials accepted by /login.
func (s *Server) AddUser(username, secret string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[username] = secret
}

// Seed appends rows to endpoint. Rows are anything that encodes to a JSON
// object.
func (s *Server) Seed(endpoint string, rows ...any) error {
	decoded := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		b, err := json.Marshal(r)
		if err != nil {
			return err
		}
		var m map[string]any
		if err := json.Unmarshal(b, &m); err != nil {
			return err
		}
		decoded = append(decoded, m)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[endpoint] = append(s.rows[endpoint], decoded...)
	return nil
}

// Expire ends session id as if its TTL had elapsed.
func (s *Server) Expire(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; ok {
		s.sessions[id] = time.Time{}
	}
}

// Revoke forgets session id, so further calls get HTTP 403.
func (s *Server) Revoke(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Calls returns the requests received so far.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// Router returns the HTTP handler.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/{endpoint:.+}", s.handleCall).Methods(http.MethodPost)
	return r
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Secret   string `json:"secret"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "invalid body"})
		return
	}
	s.mu.Lock()
	secret, ok := s.users[req.Username]
	if !ok || secret != req.Secret {
		s.mu.Unlock()
		s.logger.Info("login rejected", zap.String("username", req.Username))
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "Usuario o clave incorrectos"})
		return
	}
	id := uuid.NewString()
	s.sessions[id] = s.now().Add(s.ttl)
	s.mu.Unlock()
	s.logger.Info("login", zap.String("username", req.Username))
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "session_id": id})
}

func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	endpoint := mux.Vars(r)["endpoint"]
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "invalid body"})
		return
	}
	sid, _ := body["session_id"].(string)
	call := Call{Endpoint: endpoint, SessionID: sid, Body: body}

	s.mu.Lock()
	expiry, known := s.sessions[sid]
	s.mu.Unlock()
	switch {
	case !known:
		s.record(call)
		writeJSON(w, http.StatusForbidden, map[string]any{"message": "Forbidden"})
		return
	case !s.now().Before(expiry):
		s.record(call)
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": ExpiredMessage})
		return
	}

	_, paged := body["page"]
	switch {
	case endpoint == "user" && body["data"] != nil:
		s.record(call)
		s.saveUser(w, body)
	case pagedEndpoints[endpoint] && paged:
		q, err := parseQuery(body)
		if err != nil {
			s.record(call)
			writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": err.Error()})
			return
		}
		call.Query = &q
		s.record(call)
		list, total := s.page(endpoint, q)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "list": list, "total": total})
	case listEndpoints[endpoint], pagedEndpoints[endpoint]:
		s.record(call)
		s.mu.Lock()
		list := append([]map[string]any{}, s.rows[endpoint]...)
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "list": list, "total": len(list)})
	case exportEndpoints[endpoint]:
		s.record(call)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "url": s.fileURL + "/exports/" + uuid.NewString() + ".xlsx"})
	default:
		s.record(call)
		s.handleAction(w, endpoint, body)
	}
}

func (s *Server) handleAction(w http.ResponseWriter, endpoint string, body map[string]any) {
	switch endpoint {
	case "repository/upload":
		name, _ := body["name"].(string)
		if name == "" {
			writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "Missing file name"})
			return
		}
		id := uuid.NewString()
		doc := map[string]any{"id": id, "name": name, "title": body["title"], "status": "pending"}
		s.mu.Lock()
		s.rows["repository/get"] = append(s.rows["repository/get"], doc)
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "url": s.fileURL + "/repository/" + id + "/" + name})
	case "chat/query", "testrag":
		q, _ := body["query"].(string)
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"id":      uuid.NewString(),
			"answer":  "**Echo:** " + q + "\n\n- source: fake backend",
		})
	case "process":
		action, _ := body["action"].(string)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Process " + action + " launched"})
	default:
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

// saveUser creates a user when id is null and replaces it otherwise.
func (s *Server) saveUser(w http.ResponseWriter, body map[string]any) {
	data, ok := body["data"].(map[string]any)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "Missing user data"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	users := s.rows["user"]
	if id, ok := body["id"].(float64); ok {
		for i, u := range users {
			if u["id"] == id {
				data["id"] = id
				users[i] = data
				writeUser(w, data)
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "Unknown user"})
		return
	}
	data["id"] = float64(len(users) + 1)
	s.rows["user"] = append(users, data)
	writeUser(w, data)
}

func writeUser(w http.ResponseWriter, user map[string]any) {
	out := map[string]any{"success": true}
	for k, v := range user {
		out[k] = v
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) record(c Call) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, c)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
