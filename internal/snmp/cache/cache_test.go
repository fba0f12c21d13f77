package cache

import "testing"

func TestKeyIsOrderIndependentOverOIDs(t *testing.T) {
	k1 := Key("dev-1", OpGet, []string{"1.3.6.1.2.1.1.1.0", "1.3.6.1.2.1.1.3.0"}, nil, nil)
	k2 := Key("dev-1", OpGet, []string{"1.3.6.1.2.1.1.3.0", "1.3.6.1.2.1.1.1.0"}, nil, nil)
	if k1 != k2 {
		t.Fatalf("expected key to be stable regardless of OID order: %s != %s", k1, k2)
	}
}

func TestKeyDiffersByOpType(t *testing.T) {
	oids := []string{"1.3.6.1.2.1.1.1.0"}
	k1 := Key("dev-1", OpGet, oids, nil, nil)
	k2 := Key("dev-1", OpWalk, oids, nil, nil)
	if k1 == k2 {
		t.Fatal("expected different op types to produce different keys")
	}
}

func TestKeyDiffersByDeviceIdent(t *testing.T) {
	oids := []string{"1.3.6.1.2.1.1.1.0"}
	k1 := Key("dev-1", OpGet, oids, nil, nil)
	k2 := Key("dev-2", OpGet, oids, nil, nil)
	if k1 == k2 {
		t.Fatal("expected different device idents to produce different keys")
	}
}

func TestKeyDiffersByBulkParams(t *testing.T) {
	oids := []string{"1.3.6.1.2.1.2.2.1.10"}
	mr1, mr2 := uint32(10), uint32(20)
	k1 := Key("dev-1", OpGetBulk, oids, &mr1, nil)
	k2 := Key("dev-1", OpGetBulk, oids, &mr2, nil)
	if k1 == k2 {
		t.Fatal("expected different max_repetitions to produce different keys")
	}
}
