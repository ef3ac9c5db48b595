// Package diag is the allocator's diagnostic channel: a single place that
// writes the human-readable lines spec.md §6 requires on invalid or double
// free. Unlike the teacher's internal/debug (gated behind `-tags debug`),
// these lines are always emitted — spec.md §7 treats them as a required
// side effect, not an opt-in trace.
package diag

import (
	"fmt"
	"io"
	"os"

	"github.com/timandy/routine"
)

// Writer is where diagnostic lines go. Tests may swap this out to capture
// output instead of polluting stderr.
var Writer io.Writer = os.Stderr

// Reportf writes a single diagnostic line, tagged with the reporting
// goroutine's id the same way the teacher's debug.Log tags its traces.
func Reportf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(Writer, "allocator[g%d]: %s\n", routine.Goid(), msg)
}
