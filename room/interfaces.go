package room

import (
	"time"

	"github.com/wfunc/dodgerelay/session"
)

// Broadcaster delivers outbound messages. Room operations compute the
// recipient set while holding the room lock and hand it over, so two sends
// to the same recipient always arrive in issue order. Delivery is
// best-effort; implementations must not block on a slow recipient.
// This is defined here to break the import cycle between room and broadcast.
type Broadcaster interface {
	Send(s *session.Session, v interface{})
	SendAll(sessions []*session.Session, v interface{})
}

// Scheduler runs a callback once after a delay (interval 0) or repeatedly.
// Implemented by timer.Manager.
type Scheduler interface {
	AddTimer(delay, interval time.Duration, callback func()) int64
}
