package process

import (
	"strings"
	"time"
)

// Command is one external tool invocation, typically ffmpeg.
type Command struct {
	// Binary is a path or a name looked up in PATH.
	Binary string
	Args   []string
	// Env entries (KEY=value) are added to the parent environment.
	Env []string
	// GracePeriod separates SIGTERM from SIGKILL on cancellation. Zero
	// means 5s.
	GracePeriod time.Duration
}

// String renders the command line for logs, quoting arguments with spaces.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Binary)
	for _, a := range c.Args {
		if a == "" || strings.ContainsAny(a, " \t\"'") {
			a = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}
