package discovery

import "testing"

func TestDetectOSPrecedence(t *testing.T) {
	templates := map[string]OSTemplate{
		"cisco-ios": {Vendor: "Cisco", EntityOIDBase: "1.3.6.1.4.1.9.1"},
	}
	os, vendor, confidence := detectOS("Cisco IOS Software", "1.3.6.1.4.1.9.1.1208", templates)
	if os != "cisco-ios" || vendor != "Cisco" || confidence != 90 {
		t.Fatalf("expected sysObjectID match to win with confidence 90, got %s/%s/%d", os, vendor, confidence)
	}
}

func TestDetectOSKeywordFallback(t *testing.T) {
	os, _, confidence := detectOS("Linux 5.15.0 x86_64", "", nil)
	if os != "linux" || confidence != 70 {
		t.Fatalf("expected linux keyword match, got %s/%d", os, confidence)
	}
}

func TestDetectOSGenericFallback(t *testing.T) {
	os, _, confidence := detectOS("some unidentifiable device", "", nil)
	if os != "unknown" || confidence != 50 {
		t.Fatalf("expected generic fallback, got %s/%d", os, confidence)
	}
}

func TestDetectOSEmpty(t *testing.T) {
	os, _, confidence := detectOS("", "", nil)
	if os != "generic" || confidence != 0 {
		t.Fatalf("expected generic/zero confidence for empty sysDescr, got %s/%d", os, confidence)
	}
}

func TestShouldIgnoreInterfaceDefaults(t *testing.T) {
	cases := []struct {
		name   string
		ifType int
		ignore bool
	}{
		{"Lo0", 0, true},
		{"Vlan1", 0, true},
		{"Tunnel0", 0, true},
		{"GigabitEthernet0/1", 0, false},
		{"GigabitEthernet0/1", 24, true},
		{"GigabitEthernet0/1", 131, true},
	}
	for _, tc := range cases {
		if got := shouldIgnoreInterface(tc.name, tc.ifType, OSTemplate{}); got != tc.ignore {
			t.Errorf("shouldIgnoreInterface(%q, %d) = %v, want %v", tc.name, tc.ifType, got, tc.ignore)
		}
	}
}

func TestTrailingIndex(t *testing.T) {
	idx, ok := trailingIndex("1.3.6.1.2.1.2.2.1.10.42")
	if !ok || idx != 42 {
		t.Fatalf("trailingIndex() = %d, %v, want 42, true", idx, ok)
	}
	if _, ok := trailingIndex(""); ok {
		t.Fatal("expected false for empty OID")
	}
}

func TestScalingDivisor(t *testing.T) {
	cases := []struct {
		scale int
		want  float64
	}{
		{9, 1},
		{8, 1000},
		{0, 1},
		{10, 0.001},
	}
	for _, tc := range cases {
		if got := scalingDivisor(tc.scale); got != tc.want {
			t.Errorf("scalingDivisor(%d) = %v, want %v", tc.scale, got, tc.want)
		}
	}
}

func TestEntityClassMapping(t *testing.T) {
	if EntityClass(3) != "chassis" {
		t.Fatalf("expected class 3 = chassis, got %s", EntityClass(3))
	}
	if EntityClass(999) != "other" {
		t.Fatalf("expected unknown code to fall back to other")
	}
}
