// broadcast/broadcast.go
package broadcast

import (
	"github.com/wfunc/dodgerelay/session"
)

// Dispatcher delivers outbound messages to one or many recipients.
// Delivery is best-effort: a recipient whose connection is not writable is
// skipped, with no retry, no queuing, and no error surfaced to the caller.
// The disconnect path cleans up broken connections.
type Dispatcher struct{}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

func (d *Dispatcher) Send(s *session.Session, v interface{}) {
	if s == nil {
		return
	}
	// Errors are swallowed on purpose; see type comment.
	_ = s.Send(v)
}

func (d *Dispatcher) SendAll(sessions []*session.Session, v interface{}) {
	for _, s := range sessions {
		d.Send(s, v)
	}
}
