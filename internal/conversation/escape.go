package conversation

import "strings"

var escaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`'`, `\'`,
	"\n", "",
	"\r", `\r`,
	"\t", `\t`,
)

// Escape neutralizes characters that break naive embedding into a request
// payload. It is not idempotent: apply it once, where raw text enters.
func Escape(text string) string {
	return escaper.Replace(text)
}
