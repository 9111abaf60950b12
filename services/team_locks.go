package services

import "sync"

// TeamLocks hands out one mutex per team id. Every read-modify-write against
// a team row (quota debit, score credit) runs under that team's lock, so
// concurrent guesses from one team serialize while different teams proceed
// independently. Locks are never reclaimed; the map is bounded by the number
// of teams ever created in this process.
type TeamLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func NewTeamLocks() *TeamLocks {
	return &TeamLocks{locks: make(map[uint]*sync.Mutex)}
}

// Get returns the mutex for a team, creating it on first use.
func (t *TeamLocks) Get(teamID uint) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()

	if l, ok := t.locks[teamID]; ok {
		return l
	}
	l := &sync.Mutex{}
	t.locks[teamID] = l
	return l
}
