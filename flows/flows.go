// Package flows tracks the short-lived interactive exchanges between a solver
// and the engine: team creation (name entry, then confirmation), team
// deletion (confirmation) and guess entry (puzzle selection, then free text).
// A flow holds no store state; nothing is persisted until its terminal step
// completes, so a timeout or explicit cancel aborts with zero side effects.
package flows

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Interaction deadlines: free-text entry gets a minute, a binary
// confirmation fifteen seconds.
const (
	InputTimeout   = 60 * time.Second
	ConfirmTimeout = 15 * time.Second
)

var (
	ErrUnknownFlow = errors.New("unknown or finished flow")
	ErrExpired     = errors.New("flow has timed out")
	ErrWrongState  = errors.New("flow is not awaiting this step")
)

// Kind names the command a flow belongs to.
type Kind string

const (
	KindTeamCreate Kind = "team_create"
	KindTeamDelete Kind = "team_delete"
	KindGuess      Kind = "guess"
)

// State is the step a flow is suspended on.
type State string

const (
	AwaitingInput        State = "awaiting_input"
	AwaitingSelection    State = "awaiting_selection"
	AwaitingConfirmation State = "awaiting_confirmation"
)

// Flow is one in-progress interaction, owned by a single identity.
type Flow struct {
	ID       string
	Identity string
	Kind     Kind
	State    State
	Deadline time.Time
	// Data accumulates the inputs collected so far (proposed team name,
	// selected puzzle id).
	Data map[string]string
}

// Manager owns all live flows behind one mutex. Expired entries are dropped
// lazily on access and swept periodically.
type Manager struct {
	mu    sync.Mutex
	flows map[string]*Flow
	now   func() time.Time
}

func NewManager() *Manager {
	return &Manager{flows: make(map[string]*Flow), now: time.Now}
}

// snapshot copies a flow so callers can read it without holding the manager
// mutex. The Data map is cloned; the stored flow is only ever touched under
// the lock.
func (f *Flow) snapshot() *Flow {
	c := *f
	c.Data = make(map[string]string, len(f.Data))
	for k, v := range f.Data {
		c.Data[k] = v
	}
	return &c
}

// Start opens a new flow for an identity, replacing any previous flow of the
// same kind that identity had in progress.
func (m *Manager) Start(identity string, kind Kind, state State, ttl time.Duration) *Flow {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, f := range m.flows {
		if f.Identity == identity && f.Kind == kind {
			delete(m.flows, id)
		}
	}

	f := &Flow{
		ID:       uuid.NewString(),
		Identity: identity,
		Kind:     kind,
		State:    state,
		Deadline: m.now().Add(ttl),
		Data:     make(map[string]string),
	}
	m.flows[f.ID] = f
	return f.snapshot()
}

// Take looks up a live flow for the given identity and expected state and
// returns a snapshot of it. The flow stays suspended; callers advance or
// finish it explicitly. Expired flows are removed and reported as such.
func (m *Manager) Take(id, identity string, state State) (*Flow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.flows[id]
	if !ok || f.Identity != identity {
		return nil, ErrUnknownFlow
	}
	if m.now().After(f.Deadline) {
		delete(m.flows, id)
		return nil, ErrExpired
	}
	if f.State != state {
		return nil, ErrWrongState
	}
	return f.snapshot(), nil
}

// Advance moves a flow to its next state with a fresh deadline, merging the
// collected data, and returns the updated snapshot. The flow may have been
// finished or swept since it was taken, in which case ErrUnknownFlow is
// returned.
func (m *Manager) Advance(id string, state State, ttl time.Duration, data map[string]string) (*Flow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.flows[id]
	if !ok {
		return nil, ErrUnknownFlow
	}
	for k, v := range data {
		f.Data[k] = v
	}
	f.State = state
	f.Deadline = m.now().Add(ttl)
	return f.snapshot(), nil
}

// Finish removes a flow after its terminal step (confirmed, declined, or the
// final input was processed).
func (m *Manager) Finish(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.flows, id)
}

// Cancel removes a flow on explicit user abort. Unknown ids are fine; the
// flow may already have expired.
func (m *Manager) Cancel(id, identity string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if f, ok := m.flows[id]; ok && f.Identity == identity {
		delete(m.flows, id)
	}
}

// StartSweeper drops expired flows in the background so abandoned
// interactions do not accumulate.
func (m *Manager) StartSweeper(interval time.Duration) {
	go func() {
		for {
			time.Sleep(interval)
			m.sweep()
		}
	}()
}

func (m *Manager) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for id, f := range m.flows {
		if now.After(f.Deadline) {
			delete(m.flows, id)
		}
	}
}
