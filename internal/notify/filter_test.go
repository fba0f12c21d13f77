package notify

import (
	"testing"

	"github.com/ymonitor/ymonitor/internal/model"
)

func TestMatchesFilterEmptyMatchesAll(t *testing.T) {
	if !matchesFilter(filterContext{Severity: "critical"}, nil) {
		t.Fatalf("expected empty filter to match")
	}
}

func TestMatchesFilterEqSeverity(t *testing.T) {
	ctx := filterContext{Severity: "critical"}
	conds := []model.Condition{{Field: "severity", Op: model.OpEq, Value: "critical"}}
	if !matchesFilter(ctx, conds) {
		t.Fatalf("expected severity=critical eq match")
	}
}

func TestMatchesFilterNotInExcludes(t *testing.T) {
	ctx := filterContext{Severity: "info"}
	conds := []model.Condition{{Field: "severity", Op: model.OpNotIn, Value: []any{"critical", "warning"}}}
	if !matchesFilter(ctx, conds) {
		t.Fatalf("expected info to pass not_in [critical, warning]")
	}
}

func TestMatchesFilterRestrictedOperatorAlwaysFalse(t *testing.T) {
	ctx := filterContext{Severity: "warning"}
	conds := []model.Condition{{Field: "severity", Op: model.OpLike, Value: "warn"}}
	if matchesFilter(ctx, conds) {
		t.Fatalf("expected an operator outside {eq,ne,in,not_in} to always fail")
	}
}
