package broadcast

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/wfunc/dodgerelay/session"
)

// MockConnection records writes and can be made to fail.
type MockConnection struct {
	sent    []interface{}
	sendErr error
}

func (m *MockConnection) Send(v interface{}) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, v)
	return nil
}
func (m *MockConnection) ReadMessage() ([]byte, error)        { return nil, nil }
func (m *MockConnection) Close() error                        { return nil }
func (m *MockConnection) RemoteAddr() net.Addr                { return &net.TCPAddr{} }
func (m *MockConnection) SetHeartbeat(interval time.Duration) {}

func TestDispatcher_SendAll_SkipsBrokenConnections(t *testing.T) {
	d := NewDispatcher()

	broken := &MockConnection{sendErr: errors.New("connection reset")}
	healthy := &MockConnection{}

	sessions := []*session.Session{
		session.NewSession("s1", broken),
		session.NewSession("s2", healthy),
	}

	d.SendAll(sessions, map[string]string{"type": "player_left"})

	if len(healthy.sent) != 1 {
		t.Errorf("A healthy recipient should still be delivered to, got %d messages", len(healthy.sent))
	}
	if len(broken.sent) != 0 {
		t.Errorf("The broken recipient recorded %d messages", len(broken.sent))
	}
}

func TestDispatcher_Send_NilSession(t *testing.T) {
	d := NewDispatcher()
	// Must not panic.
	d.Send(nil, map[string]string{"type": "noop"})
}
