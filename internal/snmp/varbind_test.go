package snmp

import (
	"math/big"
	"testing"

	"github.com/gosnmp/gosnmp"
)

func TestFromPDUCounter32(t *testing.T) {
	vb := fromPDU(gosnmp.SnmpPDU{Name: "1.3.6.1.2.1.2.2.1.10.1", Type: gosnmp.Counter32, Value: uint(4294967295)})
	if vb.Kind != KindCounter {
		t.Fatalf("expected KindCounter, got %s", vb.Kind)
	}
	got, ok := vb.AsUint64()
	if !ok || got != 4294967295 {
		t.Fatalf("AsUint64() = %d, %v", got, ok)
	}
}

func TestFromPDUCounter64(t *testing.T) {
	vb := fromPDU(gosnmp.SnmpPDU{Name: "1.3.6.1.2.1.31.1.1.1.6.1", Type: gosnmp.Counter64, Value: big.NewInt(9999999999)})
	if vb.Kind != KindCounter64 {
		t.Fatalf("expected KindCounter64, got %s", vb.Kind)
	}
	got, ok := vb.AsUint64()
	if !ok || got != 9999999999 {
		t.Fatalf("AsUint64() = %d, %v", got, ok)
	}
}

func TestFromPDUExceptionValues(t *testing.T) {
	cases := []gosnmp.Asn1BER{gosnmp.NoSuchObject, gosnmp.NoSuchInstance, gosnmp.EndOfMibView}
	for _, typ := range cases {
		vb := fromPDU(gosnmp.SnmpPDU{Name: "1.3.6.1.2.1.1.1.0", Type: typ})
		if !vb.IsExceptionValue() {
			t.Errorf("expected %v to be an exception value", typ)
		}
	}
}

func TestFromPDUOctetString(t *testing.T) {
	vb := fromPDU(gosnmp.SnmpPDU{Name: "1.3.6.1.2.1.1.5.0", Type: gosnmp.OctetString, Value: []byte("core-switch-01")})
	if vb.Kind != KindOctetString || string(vb.Str) != "core-switch-01" {
		t.Fatalf("unexpected octet string varbind: %+v", vb)
	}
}
