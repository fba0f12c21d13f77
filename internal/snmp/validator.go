package snmp

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"

	"github.com/ymonitor/ymonitor/internal/model"
)

// Validator validates device SNMP config and OID input, modeled on
// internal/config/validate.go's accumulate-all-errors style:
// ValidateDevice never stops at the first problem, it collects every
// violation so a caller can report all of them at once.
type Validator struct{}

var hostnameRE = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

// ValidateDevice checks a device's SNMP config and returns every
// violation found, or nil if the config is valid.
func (Validator) ValidateDevice(hostname string, cfg model.SNMPConfig) []error {
	var errs []error

	if !isValidHostname(hostname) {
		errs = append(errs, fmt.Errorf("hostname %q is not a valid IPv4/IPv6 address or RFC-1123 hostname", hostname))
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range [1,65535]", cfg.Port))
	}
	if cfg.TimeoutMS < 1000 {
		errs = append(errs, fmt.Errorf("timeout_ms %d must be >= 1000", cfg.TimeoutMS))
	}
	if cfg.Retries < 0 || cfg.Retries > 10 {
		errs = append(errs, fmt.Errorf("retries %d out of range [0,10]", cfg.Retries))
	}
	if !cfg.Version.IsValid() {
		errs = append(errs, fmt.Errorf("snmp version %q is invalid", cfg.Version))
	}
	if !cfg.CredentialsComplete() {
		errs = append(errs, fmt.Errorf("snmp credentials incomplete for version %q", cfg.Version))
	}

	return errs
}

// isValidHostname accepts an IPv4 dotted-quad, an IPv6 address, or an
// RFC-1123 hostname of at most 253 characters.
func isValidHostname(h string) bool {
	if h == "" {
		return false
	}
	if ip := net.ParseIP(h); ip != nil {
		return true
	}
	if len(h) > 253 {
		return false
	}
	return hostnameRE.MatchString(h)
}

// ValidateOID checks a single OID string against its arc rules: a
// non-empty sequence of non-negative integer arcs, first arc in
// {0,1,2}, second arc <= 39 when the first arc is < 2, and no leading
// zeros in any arc.
func (Validator) ValidateOID(oid string) error {
	if oid == "" {
		return fmt.Errorf("oid must not be empty")
	}
	arcs := strings.Split(strings.TrimPrefix(oid, "."), ".")
	if len(arcs) == 0 {
		return fmt.Errorf("oid %q has no arcs", oid)
	}

	nums := make([]int, len(arcs))
	for i, a := range arcs {
		if a == "" {
			return fmt.Errorf("oid %q has an empty arc", oid)
		}
		if len(a) > 1 && a[0] == '0' {
			return fmt.Errorf("oid %q has a leading zero in arc %q", oid, a)
		}
		n, err := strconv.Atoi(a)
		if err != nil || n < 0 {
			return fmt.Errorf("oid %q has a non-negative-integer arc %q", oid, a)
		}
		nums[i] = n
	}

	if nums[0] < 0 || nums[0] > 2 {
		return fmt.Errorf("oid %q first arc %d must be in {0,1,2}", oid, nums[0])
	}
	if nums[0] < 2 && len(nums) > 1 && nums[1] > 39 {
		return fmt.Errorf("oid %q second arc %d must be <= 39 when first arc < 2", oid, nums[1])
	}
	return nil
}

// ValidateOIDList additionally rejects duplicate OIDs and lists longer
// than 100.
func (v Validator) ValidateOIDList(oids []string) []error {
	var errs []error
	if len(oids) > 100 {
		errs = append(errs, fmt.Errorf("oid list has %d entries, limit is 100", len(oids)))
	}
	seen := make(map[string]bool, len(oids))
	for _, oid := range oids {
		if seen[oid] {
			errs = append(errs, fmt.Errorf("oid %q is duplicated in the list", oid))
			continue
		}
		seen[oid] = true
		if err := v.ValidateOID(oid); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// ValidateBulkParameters caps max_repetitions and non_repeaters at 100,
// clamping in place and returning a warning for each value that was
// out of range.
func (Validator) ValidateBulkParameters(maxRepetitions, nonRepeaters *uint32) []error {
	var errs []error
	if maxRepetitions != nil && *maxRepetitions > 100 {
		errs = append(errs, fmt.Errorf("max_repetitions %d exceeds cap of 100, clamped", *maxRepetitions))
		*maxRepetitions = 100
	}
	if nonRepeaters != nil && *nonRepeaters > 100 {
		errs = append(errs, fmt.Errorf("non_repeaters %d exceeds cap of 100, clamped", *nonRepeaters))
		*nonRepeaters = 100
	}
	return errs
}
