// Package button monitors the SELECT push button: two-sample debounce,
// short/long press classification, a level-polled latched reset check, and
// an optional self-terminating watch context.
package button

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Chati-SidecarTridge/md-microfirmware-template/hal"
)

// Defaults match the firmware's polling cadence.
const (
	DefaultDebounceDelay = 50 * time.Millisecond
	DefaultPollInterval  = 100 * time.Millisecond
	DefaultLongPress     = 10 * time.Second
)

// Config tunes the monitor. Zero values take the defaults above.
type Config struct {
	DebounceDelay time.Duration
	PollInterval  time.Duration
	LongPress     time.Duration
}

// Monitor owns the SELECT button state. All methods run on the main loop
// except the watch goroutine, which coordinates with StopWatch through a
// single activity flag checked at loop-top granularity.
type Monitor struct {
	pin   hal.Pin
	clock hal.Clock
	log   hal.Logger
	cfg   Config

	shortCb func()
	longCb  func()

	watchActive atomic.Bool
	latched     bool
}

func New(pin hal.Pin, clock hal.Clock, log hal.Logger, cfg Config) (*Monitor, error) {
	if pin == nil {
		return nil, fmt.Errorf("button: nil pin")
	}
	if clock == nil {
		return nil, fmt.Errorf("button: nil clock")
	}
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = DefaultDebounceDelay
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.LongPress <= 0 {
		cfg.LongPress = DefaultLongPress
	}
	return &Monitor{pin: pin, clock: clock, log: log, cfg: cfg}, nil
}

// SetResetCallback registers the short-press callback (nil = no-op).
func (m *Monitor) SetResetCallback(cb func()) { m.shortCb = cb }

// SetLongResetCallback registers the long-press callback (nil = no-op).
func (m *Monitor) SetLongResetCallback(cb func()) { m.longCb = cb }

// Pressed samples the raw signal once. High means pressed.
func (m *Monitor) Pressed() bool {
	level, err := m.pin.Read()
	if err != nil {
		return false
	}
	return level
}

// DetectStableState takes two samples separated by the debounce delay and
// reports whether both matched the expected level. This is the sole
// debounce primitive.
func (m *Monitor) DetectStableState(expected bool) bool {
	first := m.Pressed()
	m.clock.Sleep(m.cfg.DebounceDelay)
	second := m.Pressed()
	return first == expected && second == expected
}

// WaitForPressAndDispatch blocks through one full press. It aborts with no
// side effects if the initial pressed stability check fails. Classification
// turns long once the threshold is crossed and stays long. The callback
// fires only after the release is itself debounce-confirmed.
func (m *Monitor) WaitForPressAndDispatch() {
	m.logf("button: waiting for SELECT release")

	if !m.DetectStableState(true) {
		m.logf("button: SELECT was not stably pressed")
		return
	}

	var pressDuration time.Duration
	longPress := false
	for m.Pressed() {
		m.clock.Sleep(m.cfg.PollInterval)
		if pressDuration < m.cfg.LongPress {
			pressDuration += m.cfg.PollInterval
			if pressDuration >= m.cfg.LongPress {
				longPress = true
			}
		}
	}

	for !m.DetectStableState(false) {
		m.clock.Sleep(m.cfg.PollInterval)
	}

	m.logf(fmt.Sprintf("button: SELECT released after %v", pressDuration))
	if longPress {
		if m.longCb != nil {
			m.logf("button: long press, executing long reset callback")
			m.longCb()
		}
	} else if m.shortCb != nil {
		m.logf("button: short press, executing reset callback")
		m.shortCb()
	}
}

// StartWatch registers the callbacks and launches the secondary watch
// context, which waits for one press, dispatches it, and terminates itself.
// No-op when a watch is already active.
func (m *Monitor) StartWatch(short, long func()) {
	m.shortCb = short
	m.longCb = long

	if !m.watchActive.CompareAndSwap(false, true) {
		m.logf("button: watch context already active")
		return
	}

	m.logf("button: launching watch context for SELECT push")
	go m.watch()
}

func (m *Monitor) watch() {
	for m.watchActive.Load() && !m.DetectStableState(true) {
		m.clock.Sleep(m.cfg.PollInterval)
	}

	if !m.watchActive.Load() {
		return
	}

	m.logf("button: SELECT pushed")
	m.WaitForPressAndDispatch()
	m.watchActive.Store(false)
}

// StopWatch signals the watch context to stop and detaches; the goroutine
// observes the flag at its next loop-top check. Work already completed
// stands, nothing else is cleaned up.
func (m *Monitor) StopWatch() {
	if !m.watchActive.Swap(false) {
		m.logf("button: watch context already disabled")
		return
	}
	m.logf("button: watch context disabled")
}

// WatchActive reports whether the secondary watch context is running.
func (m *Monitor) WatchActive() bool { return m.watchActive.Load() }

// CheckPushReset is the level-polled alternative: it latches a debounced
// press and fires the short callback immediately on the latch, with no
// duration classification. The latch clears only on a debounced release.
func (m *Monitor) CheckPushReset() {
	pressed := m.Pressed()
	if pressed && !m.latched {
		if !m.DetectStableState(true) {
			return
		}

		m.latched = true
		m.logf("button: SELECT pushed, resetting")
		if m.shortCb != nil {
			m.shortCb()
		}
		return
	}

	if !pressed && m.latched {
		if m.DetectStableState(false) {
			m.latched = false
		}
	}
}

func (m *Monitor) logf(s string) {
	if m.log != nil {
		m.log.WriteLineString(s)
	}
}
