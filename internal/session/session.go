// Package session keeps interactive chart sessions in memory. A session pairs
// a selection machine with a scene builder and remembers the last scene so
// every dispatch can answer with the changes since the previous one.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fight-timeline/internal/chart"
	"fight-timeline/internal/constants"
	"fight-timeline/internal/label"
	"fight-timeline/internal/metrics"
	"fight-timeline/internal/scene"
	"fight-timeline/internal/selection"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
)

var ErrSessionNotFound = errors.New("session not found")

type Session struct {
	ID string

	machine *selection.Machine
	builder *scene.Builder
	logger  zerolog.Logger

	unsubscribe func()

	// mu guards what the last committed snapshot produced
	mu       sync.Mutex
	state    selection.State
	scene    scene.Scene
	changes  []scene.Change
	rebuilds int
}

// Update is what a dispatch returns: the committed state and the scene
// changes made by the commit the dispatch produced.
type Update struct {
	State   selection.State
	Changes []scene.Change
}

// Dispatch applies a to the machine. The scene is rebuilt by the machine's
// commit notification; a transition that commits nothing (a failure or a
// dropped response) reports no changes.
func (s *Session) Dispatch(ctx context.Context, a Action) (Update, error) {
	if err := a.validate(); err != nil {
		return Update{}, err
	}

	s.mu.Lock()
	before := s.rebuilds
	s.mu.Unlock()

	if err := a.apply(ctx, s.machine); err != nil {
		s.logger.Debug().Err(err).Str("action", string(a.Type)).Msg("action failed")
		return Update{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rebuilds == before {
		return Update{State: s.machine.State()}, nil
	}
	return Update{State: s.state, Changes: s.changes}, nil
}

// render runs inside every machine commit, once per transition.
func (s *Session) render(st selection.State) {
	next := s.builder.Build(st)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.changes = scene.Diff(s.scene, next)
	s.scene = next
	s.state = st
	s.rebuilds++
}

func (s *Session) State() selection.State {
	return s.machine.State()
}

func (s *Session) Scene() scene.Scene {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scene
}

// LastChanges returns the diff produced by the most recent commit.
func (s *Session) LastChanges() []scene.Change {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changes
}

type Options struct {
	Dimensions chart.Dimensions
	TTL        time.Duration

	// label shuffle override, nil keeps the random default
	Shuffler label.Shuffler
}

type Manager struct {
	ds       selection.DataSource
	measurer label.Measurer
	opts     Options
	sessions *cache.Cache
	logger   zerolog.Logger
	metrics  *metrics.Metrics
}

func NewManager(ds selection.DataSource, measurer label.Measurer, opts Options, logger zerolog.Logger, m *metrics.Metrics) *Manager {
	if opts.TTL <= 0 {
		opts.TTL = constants.SessionTTL
	}
	if opts.Dimensions.Width == 0 {
		opts.Dimensions = chart.DefaultDimensions()
	}

	sessions := cache.New(opts.TTL, constants.SessionCleanup)
	logger = logger.With().Str("component", "session").Logger()
	sessions.OnEvicted(func(id string, v any) {
		if sess, ok := v.(*Session); ok {
			sess.unsubscribe()
		}
		logger.Debug().Str("session_id", id).Msg("session closed")
		m.SessionClosed()
	})

	return &Manager{
		ds:       ds,
		measurer: measurer,
		opts:     opts,
		sessions: sessions,
		logger:   logger,
		metrics:  m,
	}
}

// Create mounts a new session. When the mount committed but some fighters
// were rejected for bad data, the session is kept and returned along with
// the error.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	id := uuid.NewString()
	logger := m.logger.With().Str("session_id", id).Logger()

	var labelOpts []label.Option
	if m.opts.Shuffler != nil {
		labelOpts = append(labelOpts, label.WithShuffler(m.opts.Shuffler))
	}

	sess := &Session{
		ID:      id,
		machine: selection.New(m.ds, logger, m.metrics),
		builder: scene.NewBuilder(m.opts.Dimensions, m.measurer, scene.NewPalette(), m.metrics, labelOpts...),
		logger:  logger,
	}
	sess.unsubscribe = sess.machine.Subscribe(sess.render)

	err := sess.machine.Mount(ctx)
	if err != nil && !sess.machine.State().Mounted {
		sess.unsubscribe()
		logger.Error().Err(err).Msg("failed to mount session")
		return nil, fmt.Errorf("failed to mount session: %w", err)
	}

	m.sessions.Set(id, sess, cache.DefaultExpiration)
	m.metrics.SessionOpened()

	if err != nil {
		logger.Warn().Err(err).Msg("session mounted with rejected fighters")
		return sess, err
	}
	logger.Info().Msg("session created")
	return sess, nil
}

// Get returns the session and extends its lifetime.
func (m *Manager) Get(id string) (*Session, error) {
	v, ok := m.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	m.sessions.Set(id, v, cache.DefaultExpiration)
	return v.(*Session), nil
}

func (m *Manager) Close(id string) error {
	if _, ok := m.sessions.Get(id); !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	m.sessions.Delete(id)
	return nil
}

func (m *Manager) Count() int {
	return m.sessions.ItemCount()
}
