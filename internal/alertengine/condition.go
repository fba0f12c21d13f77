package alertengine

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/ymonitor/ymonitor/internal/model"
)

// EvaluateConditions folds rule's conditions left-associatively against
// ctx: the first condition's result seeds the running value; every
// subsequent condition combines with its own Logical (default AND)
// against the running value, left to right, with no precedence
// override. Each condition's own boolean outcome is recorded
// into ctx under "condition_N.result" before the next one evaluates, so
// later conditions can reference earlier ones by dotted path.
func EvaluateConditions(ctx *MetricContext, conditions []model.Condition) bool {
	var result bool
	for i, c := range conditions {
		r := evalCondition(ctx, c)
		ctx.SetConditionResult(i+1, r)
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

func evalCondition(ctx *MetricContext, c model.Condition) bool {
	resolved, exists := ctx.Resolve(c.Field)
	if !exists {
		return false
	}
	switch c.Op {
	case model.OpEq:
		return equalValue(resolved, c.Value)
	case model.OpNe:
		return !equalValue(resolved, c.Value)
	case model.OpGt, model.OpGte, model.OpLt, model.OpLte:
		return compareValue(resolved, c.Value, c.Op)
	case model.OpLike:
		return likeValue(resolved, c.Value, false)
	case model.OpNotLike:
		return likeValue(resolved, c.Value, true)
	case model.OpIn:
		return inValue(resolved, c.Value, false)
	case model.OpNotIn:
		return inValue(resolved, c.Value, true)
	default:
		return false
	}
}

// coerceFloat converts v (a gjson.Result or an arbitrary literal from the
// rule definition) to a float64. The second return is false when no
// numeric interpretation exists, which the caller treats as NaN —
// comparisons against NaN are always false, so a coercion failure
// fails the condition rather than panicking or matching by accident.
func coerceFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case gjson.Result:
		if t.Type == gjson.Number {
			return t.Float(), true
		}
		if t.Type == gjson.String {
			f, err := strconv.ParseFloat(t.Str, 64)
			if err != nil {
				return 0, false
			}
			return f, true
		}
		if t.Type == gjson.True {
			return 1, true
		}
		if t.Type == gjson.False {
			return 0, true
		}
		return 0, false
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func compareValue(resolved gjson.Result, want any, op model.ConditionOp) bool {
	a, aok := coerceFloat(resolved)
	b, bok := coerceFloat(want)
	if !aok || !bok || math.IsNaN(a) || math.IsNaN(b) {
		return false
	}
	switch op {
	case model.OpGt:
		return a > b
	case model.OpGte:
		return a >= b
	case model.OpLt:
		return a < b
	case model.OpLte:
		return a <= b
	default:
		return false
	}
}

func equalValue(resolved gjson.Result, want any) bool {
	if af, aok := coerceFloat(resolved); aok {
		if bf, bok := coerceFloat(want); bok {
			return af == bf
		}
	}
	return resolved.String() == stringify(want)
}

func likeValue(resolved gjson.Result, want any, negate bool) bool {
	hay := strings.ToLower(resolved.String())
	needle := strings.ToLower(stringify(want))
	match := strings.Contains(hay, needle)
	if negate {
		return !match
	}
	return match
}

func inValue(resolved gjson.Result, want any, negate bool) bool {
	list, ok := want.([]any)
	if !ok {
		list = []any{want}
	}
	found := false
	for _, item := range list {
		if equalValue(resolved, item) {
			found = true
			break
		}
	}
	if negate {
		return !found
	}
	return found
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case gjson.Result:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(v)
	}
}
