// Package format holds outbound text formatting helpers.
package format

import "strings"

var mdV1Escaper = strings.NewReplacer(
	"_", `\_`,
	"*", `\*`,
	"[", `\[`,
	"`", "\\`",
)

// EscapeMarkdown escapes Markdown (v1) control characters in user-supplied
// text so a display name cannot break message formatting.
func EscapeMarkdown(text string) string {
	return mdV1Escaper.Replace(text)
}
