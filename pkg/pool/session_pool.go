// SPDX-FileCopyrightText: 2025 Wagomu project.
// SPDX-License-Identifier: EPL-2.0

// Package pool manages per-session scheduler state. Per the concurrency model, a
// session is a single simulator run the driver invokes exactly once per tick; a long-
// lived scheduler process serving more than one concurrent simulator run keeps one
// isolated Session per session id so no state leaks between them.
package pool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wagomu-sim/elastisim-scheduler/pkg/logging"
)

// Session is the per-run state a SessionPool manages: a driver instance and whatever
// stores (agreements, memoized views) it owns. Callers supply their own concrete type
// satisfying this interface via Factory.
type Session interface {
	// Close releases any resources (open files, sinks) the session holds.
	Close() error
}

// Factory constructs a new Session for a session id the pool has not seen before.
type Factory func(sessionID string) (Session, error)

// SessionPool hands out one Session per session id, creating it lazily on first use.
type SessionPool struct {
	mu       sync.RWMutex
	sessions map[string]*pooledSession
	factory  Factory
	logger   logging.Logger
}

type pooledSession struct {
	session  Session
	created  time.Time
	lastUsed time.Time
	useCount int64
}

// NewSessionPool creates a pool that builds sessions via factory.
func NewSessionPool(factory Factory, logger logging.Logger) *SessionPool {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &SessionPool{
		sessions: make(map[string]*pooledSession),
		factory:  factory,
		logger:   logger,
	}
}

// Get returns the Session for sessionID, creating it via Factory on first use.
func (p *SessionPool) Get(sessionID string) (Session, error) {
	p.mu.RLock()
	ps, exists := p.sessions[sessionID]
	p.mu.RUnlock()

	if exists {
		p.mu.Lock()
		ps.lastUsed = time.Now()
		ps.useCount++
		p.mu.Unlock()
		return ps.session, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if ps, exists := p.sessions[sessionID]; exists {
		ps.lastUsed = time.Now()
		ps.useCount++
		return ps.session, nil
	}

	session, err := p.factory(sessionID)
	if err != nil {
		return nil, fmt.Errorf("pool: create session %s: %w", sessionID, err)
	}

	p.sessions[sessionID] = &pooledSession{
		session:  session,
		created:  time.Now(),
		lastUsed: time.Now(),
		useCount: 1,
	}
	p.logger.Info("created session", "session_id", sessionID)

	return session, nil
}

// Drop closes and removes the session for sessionID, if present.
func (p *SessionPool) Drop(sessionID string) error {
	p.mu.Lock()
	ps, exists := p.sessions[sessionID]
	if exists {
		delete(p.sessions, sessionID)
	}
	p.mu.Unlock()

	if !exists {
		return nil
	}
	return ps.session.Close()
}

// Stats reports pool occupancy and per-session usage counters.
func (p *SessionPool) Stats() Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	stats := Stats{
		TotalSessions: len(p.sessions),
		SessionStats:  make(map[string]SessionStats, len(p.sessions)),
	}
	for id, ps := range p.sessions {
		stats.SessionStats[id] = SessionStats{
			Created:  ps.created,
			LastUsed: ps.lastUsed,
			UseCount: ps.useCount,
		}
	}
	return stats
}

// CleanupIdle closes and removes sessions unused for longer than maxIdleTime.
func (p *SessionPool) CleanupIdle(maxIdleTime time.Duration) int {
	p.mu.Lock()
	cutoff := time.Now().Add(-maxIdleTime)
	var toClose []Session
	removed := 0
	for id, ps := range p.sessions {
		if ps.lastUsed.Before(cutoff) {
			toClose = append(toClose, ps.session)
			delete(p.sessions, id)
			removed++
		}
	}
	p.mu.Unlock()

	for _, s := range toClose {
		_ = s.Close()
	}
	if removed > 0 {
		p.logger.Info("cleaned up idle sessions", "removed", removed)
	}
	return removed
}

// Close closes every session in the pool.
func (p *SessionPool) Close() error {
	p.mu.Lock()
	sessions := make([]Session, 0, len(p.sessions))
	for id, ps := range p.sessions {
		sessions = append(sessions, ps.session)
		delete(p.sessions, id)
	}
	p.mu.Unlock()

	var firstErr error
	for _, s := range sessions {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.logger.Info("closed session pool")
	return firstErr
}

// Stats contains statistics about the session pool.
type Stats struct {
	TotalSessions int
	SessionStats  map[string]SessionStats
}

// SessionStats contains statistics for a single session.
type SessionStats struct {
	Created  time.Time
	LastUsed time.Time
	UseCount int64
}

// Janitor periodically evicts idle sessions from a SessionPool.
type Janitor struct {
	pool            *SessionPool
	cleanupInterval time.Duration
	maxIdleTime     time.Duration
	ctx             context.Context
	cancel          context.CancelFunc
	wg              sync.WaitGroup
}

// NewJanitor creates a Janitor for pool with the given cleanup cadence and idle cutoff.
func NewJanitor(pool *SessionPool, cleanupInterval, maxIdleTime time.Duration) *Janitor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Janitor{
		pool:            pool,
		cleanupInterval: cleanupInterval,
		maxIdleTime:     maxIdleTime,
		ctx:             ctx,
		cancel:          cancel,
	}
}

// Start begins the periodic cleanup goroutine.
func (j *Janitor) Start() {
	j.wg.Add(1)
	go j.run()
}

// Stop halts the cleanup goroutine and waits for it to exit.
func (j *Janitor) Stop() {
	j.cancel()
	j.wg.Wait()
}

func (j *Janitor) run() {
	defer j.wg.Done()

	ticker := time.NewTicker(j.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.pool.CleanupIdle(j.maxIdleTime)
		case <-j.ctx.Done():
			return
		}
	}
}
