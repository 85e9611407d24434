package services

import (
	"math"
	"sync"
	"time"
)

const ThrottleCooldownCapSeconds = 30

type throttleEntry struct {
	failCount     int
	cooldownUntil time.Time
}

// LoginThrottle slows down repeated failed logins for the same key (normalized email).
type LoginThrottle struct {
	mu      sync.Mutex
	entries map[string]*throttleEntry
	now     func() time.Time
}

func NewLoginThrottle() *LoginThrottle {
	return &LoginThrottle{entries: make(map[string]*throttleEntry), now: time.Now}
}

// WaitSeconds returns how many seconds the user must wait before trying again (0 if no cooldown).
func (t *LoginThrottle) WaitSeconds(key string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[key]
	if !ok {
		return 0
	}
	now := t.now()
	if now.Before(e.cooldownUntil) {
		return int(math.Ceil(e.cooldownUntil.Sub(now).Seconds()))
	}
	return 0
}

// RecordFailed increments the fail count and sets cooldown = now + min(30, 2^failCount) seconds.
func (t *LoginThrottle) RecordFailed(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[key]
	if !ok {
		e = &throttleEntry{}
		t.entries[key] = e
	}
	e.failCount++
	e.cooldownUntil = t.now().Add(time.Duration(CooldownSecondsForFailCount(e.failCount)) * time.Second)
}

// RecordSuccess forgets the key's failures.
func (t *LoginThrottle) RecordSuccess(key string) {
	t.mu.Lock()
	delete(t.entries, key)
	t.mu.Unlock()
}

// CooldownSecondsForFailCount returns min(30, 2^failCount).
func CooldownSecondsForFailCount(failCount int) int {
	s := int(math.Pow(2, float64(failCount)))
	if s > ThrottleCooldownCapSeconds {
		return ThrottleCooldownCapSeconds
	}
	return s
}
