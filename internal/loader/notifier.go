package loader

import (
	"sync"
	"time"
)

// TimeoutNotifier surfaces a user-visible timeout warning for a domain
type TimeoutNotifier interface {
	NotifyTimeout(d Domain)
}

// ThrottledNotifier forwards timeout notifications to a sink, suppressing
// repeats for the same domain inside a cooldown window. During a sustained
// outage every load cycle times out; without the cooldown the user gets a
// toast storm.
type ThrottledNotifier struct {
	mu       sync.Mutex
	cooldown time.Duration
	last     map[Domain]time.Time
	sink     func(Domain)
	now      func() time.Time
}

// NewThrottledNotifier creates a notifier with the given cooldown window
func NewThrottledNotifier(cooldown time.Duration, sink func(Domain)) *ThrottledNotifier {
	return &ThrottledNotifier{
		cooldown: cooldown,
		last:     make(map[Domain]time.Time),
		sink:     sink,
		now:      time.Now,
	}
}

// NotifyTimeout forwards the warning unless one for the same domain was
// forwarded within the cooldown window.
func (n *ThrottledNotifier) NotifyTimeout(d Domain) {
	n.mu.Lock()
	at := n.now()
	if prev, ok := n.last[d]; ok && at.Sub(prev) < n.cooldown {
		n.mu.Unlock()
		return
	}
	n.last[d] = at
	n.mu.Unlock()

	if n.sink != nil {
		n.sink(d)
	}
}
