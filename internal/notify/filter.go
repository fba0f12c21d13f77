package notify

import (
	"fmt"
	"strings"

	"github.com/ymonitor/ymonitor/internal/model"
)

// filterContext is the flat {severity, state, device_id, rule_id} tuple
// transport filter_conditions resolve against — deliberately not the
// nested MetricContext internal/alertengine uses, since the
// dispatcher's filter operator set is restricted to {eq, ne, in, not_in}
// over these four scalar fields only.
type filterContext struct {
	Severity string
	State    string
	DeviceID string
	RuleID   string
}

func fieldValue(ctx filterContext, field string) string {
	switch field {
	case "severity":
		return ctx.Severity
	case "state":
		return ctx.State
	case "device_id":
		return ctx.DeviceID
	case "rule_id":
		return ctx.RuleID
	default:
		return ""
	}
}

// matchesFilter folds conditions left-associatively exactly like
// internal/alertengine.EvaluateConditions, but restricted to the
// {eq, ne, in, not_in} operator set; any other operator in a
// transport's filter_conditions always evaluates false. An empty
// condition list matches every transport.
func matchesFilter(ctx filterContext, conditions []model.Condition) bool {
	if len(conditions) == 0 {
		return true
	}
	var result bool
	for i, c := range conditions {
		r := evalFilterCondition(ctx, c)
		if i == 0 {
			result = r
			continue
		}
		if c.Logical == model.LogicalOr {
			result = result || r
		} else {
			result = result && r
		}
	}
	return result
}

func evalFilterCondition(ctx filterContext, c model.Condition) bool {
	val := fieldValue(ctx, c.Field)
	switch c.Op {
	case model.OpEq:
		return val == filterStringify(c.Value)
	case model.OpNe:
		return val != filterStringify(c.Value)
	case model.OpIn:
		return filterContains(val, c.Value)
	case model.OpNotIn:
		return !filterContains(val, c.Value)
	default:
		return false
	}
}

func filterContains(val string, want any) bool {
	list, ok := want.([]any)
	if !ok {
		return val == filterStringify(want)
	}
	for _, item := range list {
		if val == filterStringify(item) {
			return true
		}
	}
	return false
}

func filterStringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return strings.TrimSpace(fmt.Sprint(v))
}
