package snmp

import (
	"errors"
	"testing"

	"github.com/gosnmp/gosnmp"

	"github.com/ymonitor/ymonitor/internal/model"
	"github.com/ymonitor/ymonitor/internal/ymerrors"
)

func TestSessionKeyDistinguishesVersionAndPort(t *testing.T) {
	k1 := sessionKey{hostname: "sw1", port: 161, version: model.SNMPv2c}.String()
	k2 := sessionKey{hostname: "sw1", port: 161, version: model.SNMPv3}.String()
	k3 := sessionKey{hostname: "sw1", port: 1161, version: model.SNMPv2c}.String()
	if k1 == k2 || k1 == k3 {
		t.Fatalf("expected distinct session keys, got %q %q %q", k1, k2, k3)
	}
}

func TestResponseFromPacketErrMapsSNMPErrorCode(t *testing.T) {
	pkt := &gosnmp.SnmpPacket{Error: gosnmp.NoSuchName}
	r := responseFromPacketErr(pkt, nil)
	if r.Success {
		t.Fatal("expected failure response for non-zero PDU error")
	}
	if r.ErrorCode != ErrNoSuchName {
		t.Fatalf("expected noSuchName, got %s", r.ErrorCode)
	}
}

func TestResponseFromPacketErrSuccess(t *testing.T) {
	pkt := &gosnmp.SnmpPacket{
		Error: gosnmp.NoError,
		Variables: []gosnmp.SnmpPDU{
			{Name: "1.3.6.1.2.1.1.5.0", Type: gosnmp.OctetString, Value: []byte("sw1")},
		},
	}
	r := responseFromPacketErr(pkt, nil)
	if !r.Success || len(r.Varbinds) != 1 {
		t.Fatalf("expected one successful varbind, got %+v", r)
	}
}

func TestToYMErrorWrapsSnmpError(t *testing.T) {
	r := Response{Success: false, ErrorCode: ErrGenErr}
	err := r.ToYMError("get")
	var snmpErr *ymerrors.SnmpError
	if !errors.As(err, &snmpErr) {
		t.Fatalf("expected *ymerrors.SnmpError, got %T", err)
	}
	if snmpErr.Op != "get" || snmpErr.Code != string(ErrGenErr) {
		t.Fatalf("unexpected SnmpError fields: %+v", snmpErr)
	}
}

func TestToYMErrorMapsTimeout(t *testing.T) {
	r := Response{Success: false, ErrorCode: ErrTimeout}
	if err := r.ToYMError("walk"); !errors.Is(err, ymerrors.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}
