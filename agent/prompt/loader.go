package prompt

import (
	_ "embed"
	"strings"
)

//go:embed template/system.txt
var systemRaw string

// SystemPrompt returns the trimmed assistant persona prompt.
// Safe to call concurrently; the embed is compile-time.
func SystemPrompt() string {
	return strings.TrimSpace(systemRaw)
}
