package snmp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gosnmp/gosnmp"

	"github.com/ymonitor/ymonitor/internal/logging"
	"github.com/ymonitor/ymonitor/internal/model"
	"github.com/ymonitor/ymonitor/internal/ymerrors"
)

// Session-table tuning, generalized from the teacher's sessionbroker
// idle-reaper constants.
const (
	IdleTimeout       = 10 * time.Minute
	IdleCheckInterval = 60 * time.Second
)

// sessionKey is the session reuse key: (hostname, port, version).
type sessionKey struct {
	hostname string
	port     int
	version  model.SNMPVersion
}

func (k sessionKey) String() string {
	return k.hostname + ":" + strconv.Itoa(k.port) + ":" + string(k.version)
}

type session struct {
	cl         *client
	lastUsedAt time.Time
}

// Transport is the SNMP Transport. It owns a table of reusable
// sessions keyed by (hostname, port, version),
// generalizing the connection-management shape of the teacher's
// sessionbroker.Broker (RWMutex-guarded map + background idle reaper)
// from inbound agent connections to outbound SNMP sessions.
type Transport struct {
	mu       sync.RWMutex
	sessions map[string]*session

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewTransport constructs a Transport and starts its idle-reaper
// goroutine, mirroring the teacher's Broker.idleReaper lifecycle.
func NewTransport() *Transport {
	t := &Transport{
		sessions: make(map[string]*session),
		stopCh:   make(chan struct{}),
	}
	go t.idleReaper()
	return t
}

// Close stops the reaper and closes every open session.
func (t *Transport) Close() {
	t.stopOnce.Do(func() { close(t.stopCh) })
	t.mu.Lock()
	defer t.mu.Unlock()
	for k, s := range t.sessions {
		s.cl.close()
		delete(t.sessions, k)
	}
}

func (t *Transport) idleReaper() {
	ticker := time.NewTicker(IdleCheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-t.stopCh:
			return
		case <-ticker.C:
			t.reapIdle()
		}
	}
}

func (t *Transport) reapIdle() {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	log := logging.L("snmp.transport")
	for k, s := range t.sessions {
		if now.Sub(s.lastUsedAt) > IdleTimeout {
			s.cl.close()
			delete(t.sessions, k)
			log.Debug("reaped idle snmp session", "session_key", k)
		}
	}
}

func (t *Transport) getOrCreate(hostname string, cfg model.SNMPConfig) (*client, error) {
	key := sessionKey{hostname: hostname, port: cfg.Port, version: cfg.Version}.String()

	t.mu.RLock()
	s, ok := t.sessions[key]
	t.mu.RUnlock()
	if ok {
		t.mu.Lock()
		s.lastUsedAt = time.Now()
		t.mu.Unlock()
		return s.cl, nil
	}

	cl, err := newClient(ConfigFromDevice(hostname, cfg))
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	if existing, ok := t.sessions[key]; ok {
		t.mu.Unlock()
		cl.close()
		existing.lastUsedAt = time.Now()
		return existing.cl, nil
	}
	t.sessions[key] = &session{cl: cl, lastUsedAt: time.Now()}
	t.mu.Unlock()
	return cl, nil
}

// InvalidateSession drops a cached session, forcing reconnection on next
// use (e.g. after a credential change).
func (t *Transport) InvalidateSession(hostname string, cfg model.SNMPConfig) {
	key := sessionKey{hostname: hostname, port: cfg.Port, version: cfg.Version}.String()
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.sessions[key]; ok {
		s.cl.close()
		delete(t.sessions, key)
	}
}

// Get performs a single SNMP GET.
func (t *Transport) Get(ctx context.Context, hostname string, cfg model.SNMPConfig, oids []string) Response {
	cl, err := t.getOrCreate(hostname, cfg)
	if err != nil {
		return failure(ErrTransportFailure, err)
	}
	pkt, err := cl.gs.Get(oids)
	return responseFromPacketErr(pkt, err)
}

// GetNext performs a single SNMP GETNEXT.
func (t *Transport) GetNext(ctx context.Context, hostname string, cfg model.SNMPConfig, oids []string) Response {
	cl, err := t.getOrCreate(hostname, cfg)
	if err != nil {
		return failure(ErrTransportFailure, err)
	}
	pkt, err := cl.gs.GetNext(oids)
	return responseFromPacketErr(pkt, err)
}

// GetBulk performs a true SNMP GETBULK for v2c/v3, falling back to a
// Walk-based aggregation on v1 where GETBULK does not exist on the
// wire. This diverges from the teacher's own "GetBulk" helper, which
// merely issues a multi-OID Get.
func (t *Transport) GetBulk(ctx context.Context, hostname string, cfg model.SNMPConfig, oids []string, nonRepeaters, maxRepetitions uint32) Response {
	if cfg.Version == model.SNMPv1 {
		return t.walkMany(ctx, hostname, cfg, oids)
	}
	cl, err := t.getOrCreate(hostname, cfg)
	if err != nil {
		return failure(ErrTransportFailure, err)
	}
	pkt, err := cl.gs.GetBulk(oids, nonRepeaters, maxRepetitions)
	return responseFromPacketErr(pkt, err)
}

// Walk performs a full subtree walk of a single OID, reusing gosnmp's
// version-appropriate Walk/BulkWalk under the hood.
func (t *Transport) Walk(ctx context.Context, hostname string, cfg model.SNMPConfig, oid string) Response {
	cl, err := t.getOrCreate(hostname, cfg)
	if err != nil {
		return failure(ErrTransportFailure, err)
	}

	var out []Varbind
	walkFn := func(pdu gosnmp.SnmpPDU) error {
		out = append(out, fromPDU(pdu))
		return nil
	}

	if cfg.Version == model.SNMPv1 {
		err = cl.gs.Walk(oid, walkFn)
	} else {
		err = cl.gs.BulkWalk(oid, walkFn)
	}
	if err != nil {
		return failure(errCodeFromErr(err), err)
	}
	return success(out)
}

func (t *Transport) walkMany(ctx context.Context, hostname string, cfg model.SNMPConfig, oids []string) Response {
	var out []Varbind
	for _, oid := range oids {
		r := t.Walk(ctx, hostname, cfg, oid)
		if !r.Success {
			return r
		}
		out = append(out, r.Varbinds...)
	}
	return success(out)
}

// Set performs an SNMP SET. pdus are (oid, gosnmp.Asn1BER, value)
// triples assembled by the caller.
func (t *Transport) Set(ctx context.Context, hostname string, cfg model.SNMPConfig, pdus []gosnmp.SnmpPDU) Response {
	cl, err := t.getOrCreate(hostname, cfg)
	if err != nil {
		return failure(ErrTransportFailure, err)
	}
	pkt, err := cl.gs.Set(pdus)
	return responseFromPacketErr(pkt, err)
}

// TestConnection performs a lightweight reachability probe (GET on
// sysDescr.0) used by the Discovery Orchestrator's connectivity check.
func (t *Transport) TestConnection(ctx context.Context, hostname string, cfg model.SNMPConfig) Response {
	const sysDescr = "1.3.6.1.2.1.1.1.0"
	return t.Get(ctx, hostname, cfg, []string{sysDescr})
}

func responseFromPacketErr(pkt *gosnmp.SnmpPacket, err error) Response {
	if err != nil {
		return failure(errCodeFromErr(err), err)
	}
	if pkt.Error != gosnmp.NoError {
		code := errorCodeFromSNMP(pkt.Error)
		return failure(code, fmt.Errorf("snmp error: %s", code))
	}
	vbs := make([]Varbind, 0, len(pkt.Variables))
	for _, v := range pkt.Variables {
		vbs = append(vbs, fromPDU(v))
	}
	return success(vbs)
}

func errCodeFromErr(err error) ErrorCode {
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	return ErrTransportFailure
}

// ToYMError converts a failed Response into the package-wide error
// taxonomy.
func (r Response) ToYMError(op string) error {
	if r.Success {
		return nil
	}
	if r.ErrorCode == ErrTimeout {
		return ymerrors.ErrTimeout
	}
	return &ymerrors.SnmpError{Code: string(r.ErrorCode), Op: op}
}
