package report

import (
	"fmt"
	"io"
	"time"

	"github.com/cposada23/qaharness/internal/common"
)

// PrintConsole writes a human-readable summary of the run. Colors are ANSI
// and optional.
func PrintConsole(w io.Writer, run Run, color bool) {
	paint := func(c, s string) string {
		if !color {
			return s
		}
		return c + s + common.Reset
	}

	for _, s := range run.Suites {
		fmt.Fprintf(w, "%s\n", s.Name)
		for _, cr := range s.Results {
			if cr.Passed {
				fmt.Fprintf(w, "  %s %s %s\n",
					paint(common.Green, "✓"), cr.Name, paint(common.Gray, formatDuration(cr.Duration)))
			} else {
				fmt.Fprintf(w, "  %s %s\n", paint(common.Red, "✗"), cr.Name)
				if cr.Err != nil {
					fmt.Fprintf(w, "    %s\n", paint(common.Red, "→ "+cr.Err.Error()))
				}
			}
		}
		fmt.Fprintf(w, "  %s\n\n", paint(common.Gray, formatDuration(s.Duration)))
	}

	summary := fmt.Sprintf("%d passed, %d failed (%s)", run.Passed(), run.Failed(), formatDuration(run.Duration))
	if run.OK() {
		fmt.Fprintln(w, paint(common.Green, summary))
	} else {
		fmt.Fprintln(w, paint(common.Red, summary))
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
