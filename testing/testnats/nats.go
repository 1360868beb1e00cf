package testnats

import (
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"
)

// Server is an in-process NATS server bound to a random local port.
type Server struct {
	URL string
}

// Setup starts a NATS server for the test and shuts it down on cleanup.
// Each call gets its own server, so tests using it may run in parallel.
//
// Usage:
//
//	func TestMyPublisher(t *testing.T) {
//	    ns := testnats.Setup(t)
//	    sub := ns.Connect(t)
//	    ...
//	}
func Setup(t *testing.T) *Server {
	t.Helper()

	ns, err := server.NewServer(&server.Options{
		Host:   "127.0.0.1",
		Port:   -1,
		NoLog:  true,
		NoSigs: true,
	})
	require.NoError(t, err)

	go ns.Start()

	if !ns.ReadyForConnections(5 * time.Second) {
		ns.Shutdown()
		t.Fatal("NATS server not ready within timeout")
	}

	t.Cleanup(func() {
		ns.Shutdown()
		ns.WaitForShutdown()
	})

	return &Server{URL: ns.ClientURL()}
}

// Connect opens a client connection that is closed on cleanup.
func (s *Server) Connect(t *testing.T) *nats.Conn {
	t.Helper()

	conn, err := nats.Connect(s.URL)
	require.NoError(t, err)

	t.Cleanup(func() { conn.Close() })

	return conn
}

