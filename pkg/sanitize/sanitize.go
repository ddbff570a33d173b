// Package sanitize cleans the host-supplied label, help and error markup the
// widget copies from a field's container into its own markup.
package sanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicyOnce   sync.Once
	textPolicy       *bluemonday.Policy
	markupPolicyOnce sync.Once
	markupPolicy     *bluemonday.Policy
)

// Text strips every tag from raw and returns its trimmed text content, the
// way label and help text are read from the container.
func Text(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	cleaned := textSanitizer().Sanitize(trimmed)
	return strings.Join(strings.Fields(html.UnescapeString(cleaned)), " ")
}

// Markup keeps the small set of inline and list elements error lists are
// rendered with and drops everything else.
func Markup(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(markupSanitizer().Sanitize(trimmed))
}

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}

func markupSanitizer() *bluemonday.Policy {
	markupPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("ul", "ol", "li", "p", "span", "strong", "em", "b", "i", "code", "br")
		policy.AllowAttrs("class").OnElements("ul", "ol", "li", "p", "span")
		markupPolicy = policy
	})
	return markupPolicy
}
