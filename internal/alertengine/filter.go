package alertengine

import (
	"regexp"

	"github.com/ymonitor/ymonitor/internal/model"
)

// DeviceMatches reports whether device satisfies filter: hostname
// patterns are regexes matched case-insensitively, IP/OS match exactly,
// and a nil or entirely-empty filter matches every device. A location
// clause never matches (Device carries no location) and Type/Groups
// clauses are not evaluated. Exclude inverts the final verdict.
func DeviceMatches(device model.Device, filter *model.DeviceFilter) bool {
	if filter == nil || filterIsEmpty(filter) {
		return true
	}

	matched := true
	if len(filter.Hostname) > 0 {
		matched = matched && anyHostnameMatch(device.Hostname, filter.Hostname)
	}
	if len(filter.IP) > 0 {
		matched = matched && contains(filter.IP, device.Address)
	}
	if len(filter.OS) > 0 {
		matched = matched && contains(filter.OS, device.OS)
	}
	if len(filter.Location) > 0 {
		// Device has no location field of its own; location filters are
		// evaluated by the caller against topology/grouping data when
		// present. Absent that context, a location clause that cannot be
		// resolved does not match.
		matched = false
	}

	if filter.Exclude {
		return !matched
	}
	return matched
}

func filterIsEmpty(f *model.DeviceFilter) bool {
	return len(f.Hostname) == 0 && len(f.IP) == 0 && len(f.OS) == 0 &&
		len(f.Type) == 0 && len(f.Groups) == 0 && len(f.Location) == 0
}

func anyHostnameMatch(hostname string, patterns []string) bool {
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			continue
		}
		if re.MatchString(hostname) {
			return true
		}
	}
	return false
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
