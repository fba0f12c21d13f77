package alertengine

import (
	"testing"

	"github.com/ymonitor/ymonitor/internal/model"
)

func deviceCtx(cpu float64) *MetricContext {
	cpuVal := cpu
	return NewMetricContext(
		model.Device{ID: "d1", Hostname: "core-sw-1", OS: "ios"},
		&model.DeviceMetrics{CPUUsage: &cpuVal},
		nil, nil,
	)
}

func TestEvaluateConditionsSingleGt(t *testing.T) {
	ctx := deviceCtx(95)
	conds := []model.Condition{{Field: "device.cpu", Op: model.OpGt, Value: 90.0}}
	if !EvaluateConditions(ctx, conds) {
		t.Fatalf("expected cpu 95 > 90 to be true")
	}
}

func TestEvaluateConditionsUnresolvedPathFails(t *testing.T) {
	ctx := deviceCtx(95)
	conds := []model.Condition{{Field: "device.nonexistent", Op: model.OpGt, Value: 1.0}}
	if EvaluateConditions(ctx, conds) {
		t.Fatalf("expected unresolved path to fail the condition")
	}
}

func TestEvaluateConditionsLeftAssociativeNoPrecedence(t *testing.T) {
	// true OR false AND false, evaluated strictly left-to-right, is
	// (true OR false) AND false = false -- NOT true as AND-before-OR
	// precedence would yield.
	ctx := deviceCtx(0)
	conds := []model.Condition{
		{Field: "device.os", Op: model.OpEq, Value: "ios"},                     // true
		{Field: "device.os", Op: model.OpEq, Value: "junos", Logical: model.LogicalOr},  // false -> running true
		{Field: "device.os", Op: model.OpEq, Value: "junos", Logical: model.LogicalAnd}, // false -> running false
	}
	if EvaluateConditions(ctx, conds) {
		t.Fatalf("expected strict left-to-right fold to yield false")
	}
}

func TestEvaluateConditionsReferencesEarlierConditionResult(t *testing.T) {
	ctx := deviceCtx(95)
	conds := []model.Condition{
		{Field: "device.cpu", Op: model.OpGt, Value: 90.0},
		{Field: "condition_1.result", Op: model.OpEq, Value: true, Logical: model.LogicalAnd},
	}
	if !EvaluateConditions(ctx, conds) {
		t.Fatalf("expected condition_1.result to resolve to true")
	}
}

func TestEvalConditionOperators(t *testing.T) {
	ctx := deviceCtx(50)
	cases := []struct {
		name string
		cond model.Condition
		want bool
	}{
		{"eq", model.Condition{Field: "device.hostname", Op: model.OpEq, Value: "core-sw-1"}, true},
		{"ne", model.Condition{Field: "device.hostname", Op: model.OpNe, Value: "other"}, true},
		{"gte", model.Condition{Field: "device.cpu", Op: model.OpGte, Value: 50.0}, true},
		{"lte", model.Condition{Field: "device.cpu", Op: model.OpLte, Value: 50.0}, true},
		{"lt-false", model.Condition{Field: "device.cpu", Op: model.OpLt, Value: 50.0}, false},
		{"like", model.Condition{Field: "device.hostname", Op: model.OpLike, Value: "core"}, true},
		{"not_like", model.Condition{Field: "device.hostname", Op: model.OpNotLike, Value: "edge"}, true},
		{"in", model.Condition{Field: "device.os", Op: model.OpIn, Value: []any{"ios", "junos"}}, true},
		{"not_in", model.Condition{Field: "device.os", Op: model.OpNotIn, Value: []any{"junos"}}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := evalCondition(ctx, tc.cond); got != tc.want {
				t.Fatalf("%s: evalCondition() = %v, want %v", tc.name, got, tc.want)
			}
		})
	}
}

func TestCompareValueNonNumericFailsRatherThanPanicking(t *testing.T) {
	ctx := deviceCtx(50)
	cond := model.Condition{Field: "device.hostname", Op: model.OpGt, Value: 10.0}
	if evalCondition(ctx, cond) {
		t.Fatalf("expected non-numeric comparison to fail closed")
	}
}
