package snmp

import (
	"strconv"
	"testing"

	"github.com/ymonitor/ymonitor/internal/model"
)

func TestValidateDeviceAccumulatesAllErrors(t *testing.T) {
	v := Validator{}
	cfg := model.SNMPConfig{Version: model.SNMPv2c, Port: 0, TimeoutMS: 10, Retries: 99}
	errs := v.ValidateDevice("bad host!!", cfg)
	if len(errs) < 4 {
		t.Fatalf("expected at least 4 accumulated errors, got %d: %v", len(errs), errs)
	}
}

func TestValidateDeviceAcceptsIPAndHostname(t *testing.T) {
	v := Validator{}
	cfg := model.SNMPConfig{Version: model.SNMPv2c, Port: 161, TimeoutMS: 2000, Retries: 2, Community: "public"}
	if errs := v.ValidateDevice("192.168.1.1", cfg); len(errs) != 0 {
		t.Fatalf("unexpected errors for valid IPv4: %v", errs)
	}
	if errs := v.ValidateDevice("switch-core-01.example.com", cfg); len(errs) != 0 {
		t.Fatalf("unexpected errors for valid hostname: %v", errs)
	}
}

func TestValidateOIDArcRules(t *testing.T) {
	v := Validator{}
	cases := []struct {
		oid     string
		wantErr bool
	}{
		{"1.3.6.1.2.1.1.1.0", false},
		{"0.0", false},
		{"1.40.1", true},  // second arc > 39 with first arc < 2
		{"3.1.1", true},   // first arc out of {0,1,2}
		{"1.03.1", true},  // leading zero
		{"", true},
		{"1..1", true},
	}
	for _, tc := range cases {
		err := v.ValidateOID(tc.oid)
		if tc.wantErr != (err != nil) {
			t.Errorf("ValidateOID(%q) error = %v, wantErr %v", tc.oid, err, tc.wantErr)
		}
	}
}

func TestValidateOIDListRejectsDuplicatesAndOverLimit(t *testing.T) {
	v := Validator{}
	errs := v.ValidateOIDList([]string{"1.3.6.1.2.1.1.1.0", "1.3.6.1.2.1.1.1.0"})
	if len(errs) == 0 {
		t.Fatal("expected duplicate OID to be flagged")
	}

	big := make([]string, 101)
	for i := range big {
		big[i] = "1.3.6.1.2.1.1.1." + strconv.Itoa(i)
	}
	errs = v.ValidateOIDList(big)
	if len(errs) == 0 {
		t.Fatal("expected over-limit list to be flagged")
	}
}

func TestValidateBulkParametersClampsAt100(t *testing.T) {
	v := Validator{}
	maxRep := uint32(500)
	nonRep := uint32(0)
	errs := v.ValidateBulkParameters(&maxRep, &nonRep)
	if len(errs) != 1 {
		t.Fatalf("expected exactly one warning, got %d", len(errs))
	}
	if maxRep != 100 {
		t.Fatalf("expected max_repetitions clamped to 100, got %d", maxRep)
	}
}
