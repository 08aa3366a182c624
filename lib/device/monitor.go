package device

import (
	"log/slog"
	"sync"
	"time"

	"strumboli/lib/config"
)

// MonitorEvent reports a tablet appearing or disappearing.
type MonitorEvent struct {
	Connected bool
	Tablet    config.Tablet
}

// Monitor polls the USB bus for any tablet matching a known profile, so the
// server can start without a device and pick one up when it is plugged in.
type Monitor struct {
	profiles []config.Tablet
	interval time.Duration
	events   chan MonitorEvent
	stop     chan struct{}

	mu      sync.Mutex
	current *config.Tablet
}

const defaultPollInterval = 2 * time.Second

func NewMonitor(profiles []config.Tablet, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Monitor{
		profiles: profiles,
		interval: interval,
		events:   make(chan MonitorEvent, 4),
		stop:     make(chan struct{}),
	}
}

func (m *Monitor) Events() <-chan MonitorEvent {
	return m.events
}

// SetConnected registers a tablet that was already open before the monitor
// started, so its removal is noticed.
func (m *Monitor) SetConnected(t config.Tablet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = &t
}

// Start begins polling in a background goroutine.
func (m *Monitor) Start() {
	go m.run()
}

func (m *Monitor) Stop() {
	close(m.stop)
}

func (m *Monitor) run() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.poll()
		}
	}
}

func (m *Monitor) poll() {
	m.mu.Lock()
	current := m.current
	m.mu.Unlock()

	if current != nil {
		devices, err := Enumerate(*current)
		if err != nil {
			slog.Warn("hotplug scan failed", "err", err)
			return
		}
		if len(devices) == 0 {
			slog.Info("tablet disconnected", "product", current.Product)
			m.mu.Lock()
			m.current = nil
			m.mu.Unlock()
			m.emit(MonitorEvent{Connected: false, Tablet: *current})
		}
		return
	}

	for _, profile := range m.profiles {
		devices, err := Enumerate(profile)
		if err != nil {
			slog.Warn("hotplug scan failed", "err", err)
			return
		}
		if len(devices) > 0 {
			slog.Info("tablet connected", "product", devices[0].Product())
			m.mu.Lock()
			m.current = &profile
			m.mu.Unlock()
			m.emit(MonitorEvent{Connected: true, Tablet: profile})
			return
		}
	}
}

func (m *Monitor) emit(ev MonitorEvent) {
	select {
	case m.events <- ev:
	default:
	}
}
