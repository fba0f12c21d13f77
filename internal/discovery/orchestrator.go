package discovery

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ymonitor/ymonitor/internal/logging"
	"github.com/ymonitor/ymonitor/internal/model"
	"github.com/ymonitor/ymonitor/internal/snmp"
	"github.com/ymonitor/ymonitor/internal/snmp/cache"
	"github.com/ymonitor/ymonitor/internal/websocket"
	"github.com/ymonitor/ymonitor/internal/ymerrors"
)

// SessionType distinguishes the scope of a discovery run.
type SessionType string

const (
	SessionFull        SessionType = "full"
	SessionIncremental SessionType = "incremental"
	SessionModule      SessionType = "module"
)

// SessionStatus is the lifecycle state of a discovery session.
type SessionStatus string

const (
	SessionRunning   SessionStatus = "running"
	SessionCompleted SessionStatus = "completed"
	SessionFailed    SessionStatus = "failed"
	SessionCancelled SessionStatus = "cancelled"
)

// incrementalModules is the module subset an incremental run executes.
var incrementalModules = []string{"sensors", "ports", "topology"}

// sessionRetention is how long a completed session's record is kept
// before the pruning goroutine evicts it.
const sessionRetention = 24 * time.Hour

// Session is the discovery session record.
type Session struct {
	ID              string
	DeviceID        string
	Type            SessionType
	SelectedModules []string
	Status          SessionStatus
	StartedAt       time.Time
	EndedAt         *time.Time
	CurrentModule   string
	Results         []Result
	Errors          []error
	Progress        int

	cancel context.CancelFunc
}

// DeviceLoader resolves a device id to its current model.Device record.
type DeviceLoader interface {
	Get(ctx context.Context, deviceID string) (*model.Device, error)
}

// Orchestrator runs Discovery Modules against devices in dependency
// order and tracks session state. The process-scoped RWMutex-guarded
// session table with a background pruning goroutine
// generalizes internal/sessionbroker.Broker's connection table from
// inbound agent sessions to outbound discovery runs.
type Orchestrator struct {
	Transport *snmp.Transport
	Devices   DeviceLoader
	Modules   []Module
	Templates map[string]OSTemplate

	// Cache, when set, fronts the identity probe DetectOS issues with
	// the SNMP response cache so repeated detect_os calls against the
	// same device within the cache TTL don't re-probe it. Nil disables
	// caching; full discovery runs always probe live regardless of
	// this field.
	Cache *cache.Cache

	// Progress, when set, receives a frame on every module transition
	// and at session completion, for an operator-facing progress
	// stream. Nil disables streaming without changing session
	// bookkeeping — GetSession remains the authoritative, poll-based
	// fallback either way.
	Progress *websocket.Hub

	mu       sync.RWMutex
	sessions map[string]*Session

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewOrchestrator constructs an Orchestrator and starts its session
// pruning goroutine.
func NewOrchestrator(transport *snmp.Transport, devices DeviceLoader, modules []Module, templates map[string]OSTemplate) *Orchestrator {
	o := &Orchestrator{
		Transport: transport,
		Devices:   devices,
		Modules:   modules,
		Templates: templates,
		sessions:  make(map[string]*Session),
		stopCh:    make(chan struct{}),
	}
	sort.Slice(o.Modules, func(i, j int) bool { return o.Modules[i].Priority() < o.Modules[j].Priority() })
	go o.pruneLoop()
	return o
}

func (o *Orchestrator) pushProgress(session *Session) {
	if o.Progress == nil {
		return
	}
	o.Progress.Push(websocket.ProgressFrame{
		SessionID:     session.ID,
		DeviceID:      session.DeviceID,
		CurrentModule: session.CurrentModule,
		Status:        string(session.Status),
		Progress:      session.Progress,
	})
}

// Close stops the pruning goroutine.
func (o *Orchestrator) Close() {
	o.stopOnce.Do(func() { close(o.stopCh) })
}

func (o *Orchestrator) pruneLoop() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	log := logging.L("discovery.orchestrator")
	for {
		select {
		case <-o.stopCh:
			return
		case <-ticker.C:
			o.pruneSessions(log)
		}
	}
}

func (o *Orchestrator) pruneSessions(log interface{ Debug(string, ...any) }) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now()
	for id, s := range o.sessions {
		if s.EndedAt != nil && now.Sub(*s.EndedAt) > sessionRetention {
			delete(o.sessions, id)
			log.Debug("pruned discovery session", "session_id", id)
		}
	}
}

// DiscoverDevice starts a full (or module-scoped, when modules is
// non-empty) discovery session.
func (o *Orchestrator) DiscoverDevice(ctx context.Context, deviceID string, modules []string) (*Session, error) {
	typ := SessionFull
	if len(modules) > 0 {
		typ = SessionModule
	}
	return o.run(ctx, deviceID, typ, modules)
}

// Incremental runs only {sensors, ports, topology}.
func (o *Orchestrator) Incremental(ctx context.Context, deviceID string) (*Session, error) {
	return o.run(ctx, deviceID, SessionIncremental, incrementalModules)
}

func (o *Orchestrator) run(ctx context.Context, deviceID string, typ SessionType, selected []string) (*Session, error) {
	device, err := o.Devices.Get(ctx, deviceID)
	if err != nil {
		return nil, ymerrors.NotFound("device", deviceID)
	}

	runCtx, cancel := context.WithCancel(ctx)
	session := &Session{
		ID:              uuid.NewString(),
		DeviceID:        deviceID,
		Type:            typ,
		SelectedModules: selected,
		Status:          SessionRunning,
		StartedAt:       time.Now(),
		cancel:          cancel,
	}

	o.mu.Lock()
	o.sessions[session.ID] = session
	o.mu.Unlock()

	go o.execute(runCtx, session, *device)
	return session, nil
}

func (o *Orchestrator) execute(ctx context.Context, session *Session, device model.Device) {
	log := logging.WithDevice(logging.L("discovery.orchestrator"), device.ID, "discover")

	// Connectivity probe before any module runs: an unreachable device
	// fails the session outright.
	probe := o.Transport.TestConnection(ctx, device.Hostname, device.SNMP)
	if !probe.Success {
		o.finish(session, SessionFailed, []error{ymerrors.ErrUnreachable})
		log.Warn("discovery session failed: device unreachable", "error", probe.Error)
		return
	}

	device.OS, device.Vendor, _ = o.detectOS(ctx, device)

	runnable := o.selectModules(session)
	succeeded := make(map[string]bool, len(runnable))
	var sessionErrs []error

	for i, mod := range runnable {
		select {
		case <-ctx.Done():
			o.finish(session, SessionCancelled, sessionErrs)
			return
		default:
		}

		if !dependenciesSatisfied(mod, succeeded) {
			continue
		}
		if !mod.CanDiscover(device) {
			continue
		}

		o.mu.Lock()
		session.CurrentModule = mod.Name()
		session.Progress = (i * 100) / len(runnable)
		o.mu.Unlock()
		o.pushProgress(session)

		result := mod.Discover(ctx, device, o.Templates)
		o.mu.Lock()
		session.Results = append(session.Results, result)
		o.mu.Unlock()

		if result.Success {
			succeeded[mod.Name()] = true
		} else {
			// A module failure records errors but does not stop the
			// remaining modules.
			sessionErrs = append(sessionErrs, result.Errors...)
			log.Warn("discovery module failed", "module", mod.Name(), "errors", len(result.Errors))
		}
	}

	status := SessionCompleted
	if len(runnable) > 0 && len(succeeded) == 0 {
		status = SessionFailed
	}
	o.finish(session, status, sessionErrs)
}

func (o *Orchestrator) selectModules(session *Session) []Module {
	if len(session.SelectedModules) == 0 {
		return o.Modules
	}
	want := make(map[string]bool, len(session.SelectedModules))
	for _, name := range session.SelectedModules {
		want[name] = true
	}
	var out []Module
	for _, mod := range o.Modules {
		if want[mod.Name()] {
			out = append(out, mod)
		}
	}
	return out
}

func dependenciesSatisfied(mod Module, succeeded map[string]bool) bool {
	for _, dep := range mod.Dependencies() {
		if !succeeded[dep] {
			return false
		}
	}
	return true
}

func (o *Orchestrator) finish(session *Session, status SessionStatus, errs []error) {
	now := time.Now()
	o.mu.Lock()
	session.Status = status
	session.EndedAt = &now
	session.Errors = append(session.Errors, errs...)
	session.Progress = 100
	o.mu.Unlock()
	o.pushProgress(session)
}

// GetSession returns a session by id.
func (o *Orchestrator) GetSession(id string) (*Session, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	s, ok := o.sessions[id]
	if !ok {
		return nil, ymerrors.NotFound("discovery session", id)
	}
	return s, nil
}

// Cancel stops a running session.
func (o *Orchestrator) Cancel(id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	s, ok := o.sessions[id]
	if !ok {
		return ymerrors.NotFound("discovery session", id)
	}
	if s.Status != SessionRunning {
		return nil
	}
	s.cancel()
	return nil
}

// GetAvailableModules returns the registered modules' names and
// descriptions.
func (o *Orchestrator) GetAvailableModules() []Module {
	return o.Modules
}

// osDetectionOrder is the candidate OS key allowlist; anything a raw
// detectOS call returns that isn't in this list normalizes to "generic".
var osDetectionOrder = []string{
	"cisco-ios", "cisco-nxos", "cisco-asa", "cisco-generic",
	"junos", "arista-eos", "hp-procurve", "vmware-esxi",
	"linux", "windows", "generic",
}

// detectOS runs the Core module's identity query and resolves it
// against osDetectionOrder.
func (o *Orchestrator) detectOS(ctx context.Context, device model.Device) (os, vendor string, _ error) {
	// A running discovery session always probes live: the whole point
	// of a session is a fresh picture of the device, so it bypasses
	// the cache regardless of whether one is configured.
	os, vendor, _, err := DetectOS(ctx, o.Transport, nil, device, o.Templates)
	return os, vendor, err
}

// DetectOS runs the Core module's identity query and resolves the
// result against osDetectionOrder, independent of any running session.
// Exported so the operational surface (internal/api) can offer
// detect_os without starting a full discovery session. respCache, when
// non-nil, fronts the identity query with the SNMP response cache so
// repeated calls against the same device within the cache TTL skip
// the network round trip.
func DetectOS(ctx context.Context, transport *snmp.Transport, respCache *cache.Cache, device model.Device, templates map[string]OSTemplate) (os, vendor string, confidence int, err error) {
	oids := []string{oidSysDescr, oidSysObjectID}

	var r snmp.Response
	if respCache != nil {
		deviceIdent := fmt.Sprintf("%s:%d:%s", device.Hostname, device.SNMP.Port, device.SNMP.Version)
		r = respCache.FetchGet(ctx, transport, deviceIdent, device.Hostname, device.SNMP, oids)
	} else {
		r = transport.Get(ctx, device.Hostname, device.SNMP, oids)
	}
	if !r.Success {
		return "generic", "", 0, fmt.Errorf("detect_os: %w", r.ToYMError("detect_os"))
	}

	var sysDescr, sysObjectID string
	for _, vb := range r.Varbinds {
		switch vb.Oid {
		case oidSysDescr:
			sysDescr = string(vb.Str)
		case oidSysObjectID:
			sysObjectID = vb.OidVal
		}
	}

	detectedOS, vendor, conf := detectOS(sysDescr, sysObjectID, templates)
	for _, candidate := range osDetectionOrder {
		if candidate == detectedOS {
			return candidate, vendor, conf, nil
		}
	}
	return "generic", vendor, conf, nil
}
