// Package ctrlevent wires the escape codec, reply writer, interest
// registry, event dispatcher, and state bus into the subsystem the rest
// of the router initializes once at startup and tears down once at
// shutdown. It registers as subsystem "orconn" at priority -40: after
// logging, threads, networking, crypto, and TLS, before application
// logic.
package ctrlevent

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/torctl/ctrlevent/api"
	"github.com/torctl/ctrlevent/control"
	"github.com/torctl/ctrlevent/dispatcher"
	"github.com/torctl/ctrlevent/events"
	"github.com/torctl/ctrlevent/logger"
	"github.com/torctl/ctrlevent/orconn"
	"github.com/torctl/ctrlevent/registry"
	"github.com/torctl/ctrlevent/reply"
	"github.com/torctl/ctrlevent/statebus"
)

// SubsystemName and SubsystemPriority identify this module to the
// router's subsystem manager.
const (
	SubsystemName     = "orconn"
	SubsystemPriority = -40
)

// Config holds the module's tunables. Initialize reads the fields once
// to build the log relay's rate limiter. Module.Reconfigure replaces the
// Config and its config-store snapshot, firing OnReload hooks
// synchronously so tests observe the change deterministically; it does
// not rebuild the rate limiter, which keeps the values Initialize gave it.
type Config struct {
	// LogRateLimitEvery and LogRateLimitBurst bound how often the
	// severity-window log callback may itself log a relay notice, so a
	// newly widened DEBUG..ERR window can't flood the control channel's
	// own bookkeeping.
	LogRateLimitEvery time.Duration
	LogRateLimitBurst int
}

// DefaultConfig returns the Config this module starts with absent
// explicit configuration.
func DefaultConfig() *Config {
	return &Config{
		LogRateLimitEvery: 100 * time.Millisecond,
		LogRateLimitBurst: 20,
	}
}

// Module is the initialized subsystem: the registry, dispatcher, and
// state bus, plus the ambient config/metrics/debug substrate from
// package control.
type Module struct {
	cfg *Config

	configStore *control.ConfigStore
	debug       *control.DebugProbes
	metrics     *control.MetricsRegistry
	logf        logger.Logf

	Registry   *registry.Registry
	Dispatcher *dispatcher.Dispatcher
	StateBus   *statebus.Bus
}

// Initialize creates the state bus, the interest registry, and the
// event dispatcher, and wires two producer paths: the registry's
// log-severity callback relays log lines in the installed window onto
// the dispatcher as DEBUG/INFO/NOTICE/WARN/ERR events, and a state-bus
// subscription turns every orconn.StatusMsg into an ORCONN event line.
// cfg may be nil to use DefaultConfig. nodes may be nil if no directory
// table is available (display names fall back to identity digest or
// address:port). logf may be nil to discard diagnostic output.
func Initialize(cfg *Config, conns api.ConnIterable, mainloop api.Mainloop, logSink api.LogSink, scheduler api.PeriodicScheduler, nodes api.NodeTable, logf logger.Logf) *Module {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logf == nil {
		logf = logger.Discard
	}

	m := &Module{
		cfg:         cfg,
		configStore: control.NewConfigStore(),
		debug:       control.NewDebugProbes(),
		metrics:     control.NewMetricsRegistry(),
		logf:        logf,
		StateBus:    statebus.New(),
	}
	m.applyConfig(cfg)

	var disp *dispatcher.Dispatcher
	rateLimitedLogf := logger.RateLimited(logf, rate.NewLimiter(rate.Every(cfg.LogRateLimitEvery), cfg.LogRateLimitBurst))
	logCB := func(ctx context.Context, sev events.Severity, msg string) {
		code := events.LogEventCode(sev)
		disp.Publish(ctx, code, reply.FormatEvent(code, msg))
		rateLimitedLogf("ctrlevent: relayed %s log event onto the control channel", code)
	}

	m.Registry = registry.New(conns, logSink, scheduler, logCB)
	disp = dispatcher.New(m.Registry, conns, mainloop, logSink, m.metrics)
	m.Dispatcher = disp

	m.StateBus.Subscribe(func(msg any) {
		sm, isStatus := msg.(orconn.StatusMsg)
		if !isStatus {
			return
		}
		payload, want := orconn.FormatStatus(m.Registry, nodes, sm.Conn, sm.Status, orconn.ReasonText(sm.Reason), sm.NCircs)
		if want {
			m.Dispatcher.Publish(context.Background(), events.OrConn, payload)
		}
	})

	m.debug.RegisterProbe("ctrlevent.global_mask", func() any { return m.Registry.GlobalMask() })
	m.debug.RegisterProbe("ctrlevent.metrics", func() any { return m.metrics.GetSnapshot() })

	return m
}

// Reconfigure installs a new Config and fires the config store's reload
// hooks synchronously. The log relay's rate limiter is not rebuilt and
// keeps the LogRateLimitEvery/LogRateLimitBurst values from Initialize.
func (m *Module) Reconfigure(cfg *Config) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	m.cfg = cfg
	m.applyConfig(cfg)
}

func (m *Module) applyConfig(cfg *Config) {
	m.configStore.SetConfig(map[string]any{
		"log_rate_limit_every": cfg.LogRateLimitEvery,
		"log_rate_limit_burst": cfg.LogRateLimitBurst,
	})
}

// GetConfig, SetConfig, Stats, OnReload, and RegisterDebugProbe make
// Module satisfy api.Control, the narrow view of this module's
// ambient-stack introspection surface used by the router's control
// command handlers (GETCONF/GETINFO, out of scope here, consume it).
func (m *Module) GetConfig() map[string]any { return m.configStore.GetSnapshot() }

func (m *Module) SetConfig(cfg map[string]any) error {
	m.configStore.SetConfig(cfg)
	return nil
}

func (m *Module) Stats() map[string]any { return m.debug.DumpState() }

func (m *Module) OnReload(fn func()) { m.configStore.OnReload(fn) }

func (m *Module) RegisterDebugProbe(name string, fn func() any) { m.debug.RegisterProbe(name, fn) }

var _ api.Control = (*Module)(nil)

// EventNames returns the events() introspection surface: every
// registered event name, space-separated.
func (m *Module) EventNames() string { return registry.EventNames() }

// Shutdown releases the dispatcher's mainloop handle, frees any queued
// payloads, zeros the global mask, and drops every state-bus
// subscription. Safe to call more than once.
func (m *Module) Shutdown() {
	m.Dispatcher.FreeAll()
	m.Registry.Reset()
	m.StateBus.Shutdown()
}
