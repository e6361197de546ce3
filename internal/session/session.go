// Package session gives each shopper their own set of engine components.
// A session is what a single browser tab was in the original storefront.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"sahara-storefront/internal/logging"
	"sahara-storefront/internal/metrics"
	catalogrepo "sahara-storefront/internal/repository/catalog"
	cartrepo "sahara-storefront/internal/repository/cart"
	"sahara-storefront/internal/service/admin"
	"sahara-storefront/internal/service/cart"
	"sahara-storefront/internal/service/catalog"
	"sahara-storefront/internal/service/query"
)

// Session bundles the query engine, catalog cache, cart and admin contract
// for one shopper. The orchestrator keeps the cache in step with the engine.
type Session struct {
	ID      string
	Query   *query.Engine
	Catalog *catalog.Cache
	Cart    *cart.Store
	Admin   *admin.Service

	orchestrator *catalog.Orchestrator

	// serial is held for the whole of one gateway request.
	serial sync.Mutex

	mu       sync.Mutex
	lastSeen time.Time
}

// Do runs fn with the session to itself. Do is not reentrant.
func (s *Session) Do(fn func()) {
	s.serial.Lock()
	defer s.serial.Unlock()
	fn()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// WaitIdle blocks until catalog fetches already triggered have completed.
func (s *Session) WaitIdle() {
	s.orchestrator.Wait()
}

type Deps struct {
	CatalogRepo  catalogrepo.Repository
	CartRepo     cartrepo.Repository
	FetchTimeout time.Duration
	TTL          time.Duration
	Logger       logrus.FieldLogger
}

// Registry owns every live session. Idle sessions are dropped by Sweep.
type Registry struct {
	deps   Deps
	logger logrus.FieldLogger
	ctx    context.Context
	cancel context.CancelFunc
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(deps Deps) *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	if deps.TTL <= 0 {
		deps.TTL = 30 * time.Minute
	}
	return &Registry{
		deps:     deps,
		logger:   logging.OrDiscard(deps.Logger),
		ctx:      ctx,
		cancel:   cancel,
		now:      time.Now,
		sessions: map[string]*Session{},
	}
}

// Create starts a new session and its initial catalog fetch.
func (r *Registry) Create() *Session {
	id := uuid.NewString()
	logger := r.logger.WithField("session", id)

	engine := query.NewEngine()
	cache := catalog.New(r.deps.CatalogRepo, logger)
	s := &Session{
		ID:           id,
		Query:        engine,
		Catalog:      cache,
		Cart:         cart.New(r.deps.CartRepo, logger),
		Admin:        admin.New(r.deps.CatalogRepo, cache, logger),
		orchestrator: catalog.NewOrchestrator(cache, engine, r.deps.FetchTimeout, logger),
		lastSeen:     r.now(),
	}

	r.mu.Lock()
	r.sessions[id] = s
	n := len(r.sessions)
	r.mu.Unlock()

	s.orchestrator.Start(r.ctx)
	metrics.SetActiveSessions(n)
	logger.Debug("session: created")
	return s
}

// Get returns a live session and marks it as used.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if ok {
		s.touch(r.now())
	}
	return s, ok
}

// GetOrCreate returns the session for id, or a new one when id is unknown
// or expired. created reports which.
func (r *Registry) GetOrCreate(id string) (s *Session, created bool) {
	if id != "" {
		if s, ok := r.Get(id); ok {
			return s, false
		}
	}
	return r.Create(), true
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than the TTL and returns how many.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.deps.TTL)
	var expired []*Session

	r.mu.Lock()
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	n := len(r.sessions)
	r.mu.Unlock()

	for _, s := range expired {
		s.orchestrator.Stop()
	}
	metrics.SetActiveSessions(n)
	if len(expired) > 0 {
		r.logger.WithField("expired", len(expired)).Info("session: swept idle sessions")
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Close stops every session's background fetching.
func (r *Registry) Close() {
	r.mu.Lock()
	all := make([]*Session, 0, len(r.sessions))
	for id, s := range r.sessions {
		all = append(all, s)
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	r.cancel()
	for _, s := range all {
		s.orchestrator.Stop()
	}
	metrics.SetActiveSessions(0)
}
