package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/client"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/session"
	ws "github.com/Daveman-1/BookstoreFrontEnd/internal/websocket"
	"github.com/stretchr/testify/require"
)

// newTab signs user into a fresh tab whose backend is served by mux
func newTab(t *testing.T, mux *http.ServeMux, user *model.User) Tab {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	c, err := client.NewClient(client.Options{BaseURL: server.URL, Timeout: 2 * time.Second})
	require.NoError(t, err)

	sess := session.New(session.NewMemoryStorage(time.Hour), nil)
	if user != nil {
		require.NoError(t, sess.Save(context.Background(), "token", *user))
	}
	return Tab{ID: "tab-1", Session: sess, Backend: c.Bind(sess)}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func serveJSON(body any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) { writeJSON(w, http.StatusOK, body) }
}

func failWith(status int, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, status, map[string]string{"message": message})
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []ws.Event
}

func (p *recordingPublisher) Publish(ev ws.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

var (
	adminUser = &model.User{ID: 1, Name: "Ada Admin", Username: "admin", Role: model.RoleAdmin}
	staffUser = &model.User{ID: 2, Name: "Sam Staff", Username: "staff", Role: model.RoleStaff,
		Permissions: []string{model.PermUploadExcel, model.PermManageSales}}
)
