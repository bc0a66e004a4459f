// Package template renders prompt templates with {{key}} placeholder
// substitution and ships the default processing prompts per provider.
package template

import (
	"regexp"
	"strings"
)

// Placeholder names used by the processing prompts.
const (
	VarTranscription = "transcription"
	VarLanguage      = "language"
)

var placeholderRe = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// Render substitutes {{key}} placeholders with values from vars.
// Keys are trimmed of surrounding whitespace. Unknown keys are left
// intact so a typo in a custom template stays visible.
func Render(tmpl string, vars map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(tmpl, func(match string) string {
		key := strings.TrimSpace(match[2 : len(match)-2])
		if val, ok := vars[key]; ok {
			return val
		}
		return match
	})
}
