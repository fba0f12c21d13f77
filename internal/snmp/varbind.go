package snmp

import (
	"math/big"

	"github.com/gosnmp/gosnmp"
)

// VarbindKind tags the concrete type held by a Varbind, generalizing the
// teacher's untyped gosnmp.SnmpPDU.Value duck-typing into an explicit
// union.
type VarbindKind string

const (
	KindInteger      VarbindKind = "integer"
	KindCounter      VarbindKind = "counter"
	KindCounter64    VarbindKind = "counter64"
	KindGauge        VarbindKind = "gauge"
	KindTimeTicks    VarbindKind = "timeTicks"
	KindOctetString  VarbindKind = "octetString"
	KindOid          VarbindKind = "oid"
	KindIpAddress    VarbindKind = "ipAddress"
	KindNull         VarbindKind = "null"
	KindNoSuchObject VarbindKind = "noSuchObject"
	KindNoSuchInst   VarbindKind = "noSuchInstance"
	KindEndOfMibView VarbindKind = "endOfMibView"
)

// Varbind is the tagged-union value representation returned by every
// transport operation. Exactly one of the typed fields is meaningful,
// selected by Kind.
type Varbind struct {
	Oid  string
	Kind VarbindKind

	Int    int64
	UInt64 uint64
	Big    *big.Int
	Str    []byte
	OidVal string
	IP     string
}

// IsExceptionValue reports whether this varbind represents one of the
// three SNMPv2 exception values rather than real data.
func (v Varbind) IsExceptionValue() bool {
	switch v.Kind {
	case KindNoSuchObject, KindNoSuchInst, KindEndOfMibView:
		return true
	default:
		return false
	}
}

// AsUint64 returns the value as an unsigned 64-bit integer for counter
// math, handling both Counter32/Gauge32/TimeTicks and
// Counter64/big.Int-backed values via gosnmp.ToBigInt.
func (v Varbind) AsUint64() (uint64, bool) {
	switch v.Kind {
	case KindCounter, KindGauge, KindTimeTicks, KindInteger:
		if v.Int < 0 {
			return 0, false
		}
		return uint64(v.Int), true
	case KindCounter64:
		if v.Big != nil {
			return v.Big.Uint64(), true
		}
		return v.UInt64, true
	default:
		return 0, false
	}
}

// fromPDU converts a raw gosnmp.SnmpPDU into a Varbind, centralizing the
// value-parsing rules the teacher left inline/duck-typed at call sites.
func fromPDU(pdu gosnmp.SnmpPDU) Varbind {
	vb := Varbind{Oid: pdu.Name}
	switch pdu.Type {
	case gosnmp.Integer:
		vb.Kind = KindInteger
		vb.Int = toInt64(pdu.Value)
	case gosnmp.Counter32:
		vb.Kind = KindCounter
		vb.Int = toInt64(pdu.Value)
	case gosnmp.Gauge32:
		vb.Kind = KindGauge
		vb.Int = toInt64(pdu.Value)
	case gosnmp.TimeTicks:
		vb.Kind = KindTimeTicks
		vb.Int = toInt64(pdu.Value)
	case gosnmp.Counter64:
		vb.Kind = KindCounter64
		vb.Big = gosnmp.ToBigInt(pdu.Value)
	case gosnmp.OctetString:
		vb.Kind = KindOctetString
		if b, ok := pdu.Value.([]byte); ok {
			vb.Str = b
		} else if s, ok := pdu.Value.(string); ok {
			vb.Str = []byte(s)
		}
	case gosnmp.ObjectIdentifier:
		vb.Kind = KindOid
		if s, ok := pdu.Value.(string); ok {
			vb.OidVal = s
		}
	case gosnmp.IPAddress:
		vb.Kind = KindIpAddress
		if s, ok := pdu.Value.(string); ok {
			vb.IP = s
		}
	case gosnmp.NoSuchObject:
		vb.Kind = KindNoSuchObject
	case gosnmp.NoSuchInstance:
		vb.Kind = KindNoSuchInst
	case gosnmp.EndOfMibView:
		vb.Kind = KindEndOfMibView
	default:
		vb.Kind = KindNull
	}
	return vb
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case uint:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		return int64(n)
	default:
		return 0
	}
}
