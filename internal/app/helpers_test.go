package app

import (
	"testing"
	"time"

	"github.com/bft-labs/termlink/internal/app/apptest"
	"github.com/bft-labs/termlink/internal/ports"
	"github.com/bft-labs/termlink/pkg/log"
)

// mockLogger implements ports.Logger for testing.
type mockLogger struct{}

func (mockLogger) Debug(msg string, fields ...ports.Field) {}
func (mockLogger) Info(msg string, fields ...ports.Field)  {}
func (mockLogger) Warn(msg string, fields ...ports.Field)  {}
func (mockLogger) Error(msg string, fields ...ports.Field) {}
func (m mockLogger) With(fields ...ports.Field) log.Logger { return m }

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// pair is a client/server pair wired the way a session wires them, on a
// manual scheduler.
type pair struct {
	sched  *apptest.Scheduler
	rec    *apptest.Recorder
	client *Endpoint
	server *Endpoint
	link   *Link
}

func newPair(t *testing.T, client, server EndpointConfig, responder ports.Responder) *pair {
	t.Helper()
	if client.Name == "" {
		client.Name = "client"
	}
	if server.Name == "" {
		server.Name = "server"
	}

	sched := apptest.NewScheduler(epoch)
	rec := &apptest.Recorder{}
	router := NewRouter(sched, rec)

	c := NewEndpoint(client, sched, router, mockLogger{}, nil)
	s := NewEndpoint(server, sched, router, mockLogger{}, responder)
	link, err := NewLink(c, s, mockLogger{})
	if err != nil {
		t.Fatalf("NewLink: %v", err)
	}
	router.Attach(link)

	return &pair{sched: sched, rec: rec, client: c, server: s, link: link}
}

// do runs fn on the scheduler thread and drains everything it posts.
func (p *pair) do(fn func()) {
	p.sched.Do(fn)
}
