package domain

import (
	"context"
	"sync"
	"time"
)

// UserRecord is the persisted form of a user.
type UserRecord struct {
	ID            string
	Name          string
	Discriminator string
	AccessTime    time.Time
	StrikeCount   int
	Blocked       bool
	IsVoter       bool
	Warned        bool
	NumAccesses   int64
}

// UserView is a consistent copy of a user's gating fields.
type UserView struct {
	LastCommand time.Time
	StrikeCount int
	Blocked     bool
	IsVoter     bool
	Warned      bool
}

// UserState is the in-memory owner of one user's rate-limit state. It is safe
// for concurrent use.
type UserState struct {
	mu sync.Mutex
	// gate admits one rate-limit evaluation at a time, vote recheck included.
	gate chan struct{}

	id            string
	name          string
	discriminator string
	lastCommand   time.Time
	strikeCount   int
	blocked       bool
	isVoter       bool
	warned        bool
}

// NewUserState returns a user seen for the first time: a voter with no strikes.
func NewUserState(id, name, discriminator string) *UserState {
	return &UserState{
		gate:          make(chan struct{}, 1),
		id:            id,
		name:          name,
		discriminator: discriminator,
		isVoter:       true,
	}
}

func RestoreUserState(rec UserRecord) *UserState {
	return &UserState{
		gate:          make(chan struct{}, 1),
		id:            rec.ID,
		name:          rec.Name,
		discriminator: rec.Discriminator,
		lastCommand:   rec.AccessTime,
		strikeCount:   max(rec.StrikeCount, 0),
		blocked:       rec.Blocked,
		isVoter:       rec.IsVoter,
		warned:        rec.Warned,
	}
}

func (u *UserState) ID() string {
	return u.id
}

// AcquireGate waits until no other evaluation holds this user's gate, or
// until ctx is done. The returned func releases the gate.
func (u *UserState) AcquireGate(ctx context.Context) (func(), error) {
	select {
	case u.gate <- struct{}{}:
		return func() { <-u.gate }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (u *UserState) View() UserView {
	u.mu.Lock()
	defer u.mu.Unlock()
	return UserView{
		LastCommand: u.lastCommand,
		StrikeCount: u.strikeCount,
		Blocked:     u.blocked,
		IsVoter:     u.isVoter,
		Warned:      u.warned,
	}
}

// Rename refreshes the display name and discriminator, reporting a change.
func (u *UserState) Rename(name, discriminator string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	if name == "" || (name == u.name && discriminator == u.discriminator) {
		return false
	}
	u.name = name
	u.discriminator = discriminator
	return true
}

// RecordSuccessfulCommand stamps now and clears strikes, block and warning.
// It reports whether any of those three were cleared.
func (u *UserState) RecordSuccessfulCommand(now time.Time) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.lastCommand = now
	if u.strikeCount == 0 && !u.blocked && !u.warned {
		return false
	}
	u.strikeCount = 0
	u.blocked = false
	u.warned = false
	return true
}

// RecordStrike increments the strike counter. When autoBlock is set and the
// count reaches maxStrikes the user becomes blocked.
func (u *UserState) RecordStrike(maxStrikes int, autoBlock bool) (int, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.strikeCount++
	if autoBlock && !u.blocked && u.strikeCount >= maxStrikes {
		u.blocked = true
		return u.strikeCount, true
	}
	return u.strikeCount, false
}

// Touch updates the last command time without clearing anything.
func (u *UserState) Touch(now time.Time) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.lastCommand = now
}

// MarkWarned returns true only for the first warning since the last reset.
func (u *UserState) MarkWarned() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.warned {
		return false
	}
	u.warned = true
	return true
}

func (u *UserState) SetVoter(voter bool) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.isVoter == voter {
		return false
	}
	u.isVoter = voter
	return true
}

// SetBlocked blocks or unblocks the user. Unblocking also clears strikes and
// the warning.
func (u *UserState) SetBlocked(blocked bool) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.blocked == blocked {
		return false
	}
	u.blocked = blocked
	if !blocked {
		u.strikeCount = 0
		u.warned = false
	}
	return true
}

func (u *UserState) Snapshot() UserRecord {
	u.mu.Lock()
	defer u.mu.Unlock()
	return UserRecord{
		ID:            u.id,
		Name:          u.name,
		Discriminator: u.discriminator,
		AccessTime:    u.lastCommand,
		StrikeCount:   u.strikeCount,
		Blocked:       u.blocked,
		IsVoter:       u.isVoter,
		Warned:        u.warned,
	}
}
