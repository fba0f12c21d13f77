package alertengine

import (
	"regexp"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_.]+)\s*\}\}`)

// renderTemplate substitutes "{{dotted.path}}" placeholders in tmpl with
// values resolved from ctx — the alert title/message templates rendered
// against the metric context at creation time. Unresolvable
// placeholders are replaced with an empty string.
func renderTemplate(tmpl string, ctx *MetricContext) string {
	return placeholderPattern.ReplaceAllStringFunc(tmpl, func(match string) string {
		path := placeholderPattern.FindStringSubmatch(match)[1]
		r, ok := ctx.Resolve(path)
		if !ok {
			return ""
		}
		return r.String()
	})
}
