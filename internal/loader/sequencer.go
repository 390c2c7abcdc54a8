package loader

import (
	"sync"
)

// Domain is a named category of data-loading operation with its own
// sequence counter.
type Domain string

const (
	DomainQueue    Domain = "queue"
	DomainCritical Domain = "critical"
	DomainAccount  Domain = "account"
	DomainPool     Domain = "pool"
)

// Token identifies one logical load operation within a domain. A token is
// current iff its epoch matches the sequencer's and its sequence equals
// the domain's latest issued sequence at the moment of check.
type Token struct {
	Domain Domain
	Epoch  int64
	Seq    int64
}

// Sequencer issues monotonic load tokens per domain and answers whether a
// completed load is still the newest one for its domain. It never cancels
// in-flight work; callers gate their side effects on IsCurrent after every
// await point instead.
//
// An injected instance rather than package state, so tests get isolated
// counters.
type Sequencer struct {
	mu    sync.Mutex
	epoch int64
	seqs  map[Domain]int64
}

// NewSequencer creates a sequencer with all domain counters at zero
func NewSequencer() *Sequencer {
	return &Sequencer{seqs: make(map[Domain]int64)}
}

// Begin increments the domain's counter and returns a token holding the
// new value. Every token issued earlier for the same domain becomes stale.
func (s *Sequencer) Begin(d Domain) Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seqs[d]++
	return Token{Domain: d, Epoch: s.epoch, Seq: s.seqs[d]}
}

// IsCurrent reports whether the token's load is still the newest for its
// domain. A token from before a reset is stale forever: counters restart
// at one in the new epoch, so the epoch check keeps a pre-reset token from
// colliding with a fresh one carrying the same sequence.
func (s *Sequencer) IsCurrent(t Token) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch == t.Epoch && s.seqs[t.Domain] == t.Seq
}

// Current returns the domain's latest issued sequence without incrementing
func (s *Sequencer) Current(d Domain) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seqs[d]
}

// ResetAll starts a new epoch and clears every domain counter. Outstanding
// tokens all become stale, so loads in flight across an identity switch can
// never commit, no matter how many loads the new identity has begun.
func (s *Sequencer) ResetAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.seqs = make(map[Domain]int64)
}
