package resolve

import (
	"slices"
	"sync"

	"github.com/sells-group/leads-cli/internal/model"
)

// Ticket identifies one run within a Session. Later tickets are newer.
type Ticket uint64

// pendingPatch is an override applied while tickets up to at had started.
type pendingPatch struct {
	at    Ticket
	id    string
	patch model.Override
}

// Session holds the latest published result. When runs overlap the most
// recently started one wins: a run that finishes after a newer run has
// published is discarded. Overrides applied after a run began are replayed
// onto that run's result when it publishes, since its override read may
// predate them.
type Session struct {
	mu        sync.RWMutex
	next      Ticket
	published Ticket
	current   *Result
	pending   []pendingPatch
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{}
}

// Begin starts a run and returns its ticket.
func (s *Session) Begin() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return s.next
}

// Publish installs res if no newer ticket has published. It reports whether
// res became current. res itself is never mutated.
func (s *Session) Publish(t Ticket, res *Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t <= s.published {
		return false
	}

	next := res
	for _, p := range s.pending {
		if p.at < t {
			continue
		}
		if next == res {
			cp := *res
			cp.Leads = slices.Clone(res.Leads)
			next = &cp
		}
		applyTo(next, p.id, p.patch)
	}

	s.published = t
	s.current = next
	// Runs up to t can no longer publish.
	s.pending = slices.DeleteFunc(s.pending, func(p pendingPatch) bool { return p.at <= t })
	return true
}

// Current returns the latest published result, or nil before the first.
func (s *Session) Current() *Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// ApplyOverride replaces the current result with a copy in which the lead
// with id has patch applied. Results already handed out are not mutated.
// The patch is also kept for any run still in flight. It reports whether the
// current result held the lead.
func (s *Session) ApplyOverride(id string, patch model.Override) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.retainLocked(id, patch)
	if s.current == nil || !slices.ContainsFunc(s.current.Leads, func(l model.Lead) bool { return l.ID == id }) {
		return false
	}
	next := *s.current
	next.Leads = slices.Clone(s.current.Leads)
	applyTo(&next, id, patch)
	s.current = &next
	return true
}

// retain keeps patch for replay onto runs that have started but not yet
// published. The resolver calls it again once the store write returns, so a
// run whose override read raced the write still ends up with the patch.
func (s *Session) retain(id string, patch model.Override) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.retainLocked(id, patch)
}

func (s *Session) retainLocked(id string, patch model.Override) {
	if s.next > s.published {
		s.pending = append(s.pending, pendingPatch{at: s.next, id: id, patch: patch})
	}
}

func applyTo(res *Result, id string, patch model.Override) {
	i := slices.IndexFunc(res.Leads, func(l model.Lead) bool { return l.ID == id })
	if i < 0 {
		return
	}
	res.Leads[i] = res.Leads[i].ApplyOverride(patch)
}
