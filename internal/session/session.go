// Package session tracks the inbound stream lifecycle and restarts playback
// when a stream ends.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rbright/netscreen/internal/fsm"
	"github.com/rbright/netscreen/internal/netstat"
)

// DefaultPollInterval is the delay between connection-table polls.
const DefaultPollInterval = time.Second

// Observer reports established peers on the listen port.
type Observer interface {
	Poll(ctx context.Context, protocol string, listenPort int) ([]netstat.Connection, error)
}

// Restarter restarts the playback process.
type Restarter interface {
	RestartPlayback(ctx context.Context) error
}

// Listen is where the daemon expects the encoder to connect.
type Listen struct {
	Protocol string
	Address  string
	Port     int
}

// Snapshot is a copy of the session state at one instant.
type Snapshot struct {
	State         fsm.State `json:"state"`
	ClientAddress string    `json:"client_address,omitempty"`
	Protocol      string    `json:"protocol"`
	ListenAddress string    `json:"listen_address"`
	ListenPort    int       `json:"listen_port"`
	Since         time.Time `json:"since"`
}

// Streaming reports whether a client is currently attributed to the session.
func (s Snapshot) Streaming() bool {
	return s.State == fsm.StateStreaming
}

// Options configures a Machine.
type Options struct {
	Listen    Listen
	Observer  Observer
	Restarter Restarter
	Logger    *slog.Logger
	Interval  time.Duration
	Now       func() time.Time
}

// Machine is the edge-triggered Idle/Streaming state machine.
type Machine struct {
	listen    Listen
	observer  Observer
	restarter Restarter
	logger    *slog.Logger
	interval  time.Duration
	now       func() time.Time

	mu     sync.RWMutex
	state  fsm.State
	client string
	since  time.Time

	subMu   sync.Mutex
	subs    map[int]chan Snapshot
	nextSub int
}

// NewMachine returns a Machine in state Idle.
func NewMachine(opts Options) (*Machine, error) {
	if opts.Observer == nil {
		return nil, errors.New("session requires an observer")
	}
	if opts.Restarter == nil {
		return nil, errors.New("session requires a playback restarter")
	}
	if opts.Listen.Port <= 0 || opts.Listen.Port > 65535 {
		return nil, fmt.Errorf("invalid listen port %d", opts.Listen.Port)
	}
	if opts.Listen.Protocol == "" {
		opts.Listen.Protocol = "tcp"
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultPollInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Machine{
		listen:    opts.Listen,
		observer:  opts.Observer,
		restarter: opts.Restarter,
		logger:    opts.Logger,
		interval:  opts.Interval,
		now:       opts.Now,
		state:     fsm.StateIdle,
		since:     opts.Now(),
		subs:      make(map[int]chan Snapshot),
	}, nil
}

// Snapshot returns the current state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Machine) snapshotLocked() Snapshot {
	return Snapshot{
		State:         m.state,
		ClientAddress: m.client,
		Protocol:      m.listen.Protocol,
		ListenAddress: m.listen.Address,
		ListenPort:    m.listen.Port,
		Since:         m.since,
	}
}

// Tick polls the observer once and applies at most one transition.
// Observer failures are returned; a failed playback restart is logged and
// the session still goes Idle.
func (m *Machine) Tick(ctx context.Context) error {
	conns, err := m.observer.Poll(ctx, m.listen.Protocol, m.listen.Port)
	if err != nil {
		return fmt.Errorf("poll connections: %w", err)
	}

	m.mu.Lock()
	current := m.state
	event := fsm.EventFor(len(conns))
	m.logger.Debug("poll", "state", current, "connections", len(conns))
	if !fsm.Changes(current, event) {
		m.mu.Unlock()
		return nil
	}

	next, err := fsm.Transition(current, event)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	previousClient := m.client
	m.state = next
	m.since = m.now()
	if next == fsm.StateStreaming {
		m.client = conns[0].Remote.IP
	} else {
		m.client = ""
	}
	snap := m.snapshotLocked()
	m.mu.Unlock()

	if next == fsm.StateStreaming {
		m.logger.Info("client started stream", "client", snap.ClientAddress, "connections", len(conns))
	} else {
		m.logger.Info("client stopped stream", "client", previousClient)
		if err := m.restarter.RestartPlayback(ctx); err != nil {
			m.logger.Error("restart playback failed", "error", err.Error())
		}
	}

	m.publish(snap)
	return nil
}

// Run ticks immediately and then every poll interval until ctx is done or a
// tick fails.
func (m *Machine) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		if err := m.Tick(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Subscribe returns a channel receiving a snapshot after every transition,
// and a function releasing it. Slow subscribers miss snapshots rather than
// stall the poll loop.
func (m *Machine) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	m.subMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch
	m.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.subMu.Lock()
			delete(m.subs, id)
			m.subMu.Unlock()
			close(ch)
		})
	}
}

func (m *Machine) publish(snap Snapshot) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for _, ch := range m.subs {
		select {
		case ch <- snap:
			continue
		default:
		}
		// replace the stale pending snapshot with the newest one
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}
