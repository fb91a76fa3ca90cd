package httphelper

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/phonecore/phonecore/internal/logging"
)

// NoResponseReason tells why a request produced no usable response
type NoResponseReason int

const (
	// ReasonTimeout means the deadline elapsed before a response arrived
	ReasonTimeout NoResponseReason = iota
	// ReasonServerError means the server answered with an error status
	ReasonServerError
)

func (r NoResponseReason) String() string {
	switch r {
	case ReasonTimeout:
		return "timeout"
	case ReasonServerError:
		return "server_error"
	default:
		return "unknown"
	}
}

// NoResponseEvent is published once per request that ends without a response
type NoResponseEvent struct {
	URL        string
	Method     string
	Reason     NoResponseReason
	StatusCode int // set for ReasonServerError
	Timeout    time.Duration
	At         time.Time
}

// subscriberBuffer bounds how many undelivered events a subscriber may hold
const subscriberBuffer = 16

type notifier struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan NoResponseEvent
}

func (n *notifier) subscribe() (<-chan NoResponseEvent, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.subs == nil {
		n.subs = make(map[int]chan NoResponseEvent)
	}
	id := n.nextID
	n.nextID++
	ch := make(chan NoResponseEvent, subscriberBuffer)
	n.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			if sub, ok := n.subs[id]; ok {
				delete(n.subs, id)
				close(sub)
			}
		})
	}
}

// publish never blocks; slow subscribers lose events.
func (n *notifier) publish(ev NoResponseEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for id, ch := range n.subs {
		select {
		case ch <- ev:
		default:
			logging.Warn("Dropping no-response event for slow subscriber",
				zap.Int("subscriber", id),
				zap.String("url", ev.URL),
			)
		}
	}
}
