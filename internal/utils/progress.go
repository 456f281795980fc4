package utils

import (
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// DescArchiving is the description shown while archive entries are written
const DescArchiving = "Archiving"

// NewProgressBar creates a consistently styled progress bar.
//
// Parameters:
//   - total: Total number of items. Use -1 for unknown totals (indeterminate/spinner mode).
//   - description: Text description to show before the progress bar (e.g., DescArchiving).
//   - out: Destination of the bar. Nil means stderr, which keeps stdout free for log lines.
//
// Example:
//
//	bar := utils.NewProgressBar(len(entries), utils.DescArchiving, nil)
//	defer bar.Finish()
//
//	for _, entry := range entries {
//	    // Archive entry
//	    bar.Add(1)
//	}
func NewProgressBar(total int, description string, out io.Writer) *progressbar.ProgressBar {
	if out == nil {
		out = os.Stderr
	}

	// Build common options
	opts := []progressbar.Option{
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			_, _ = io.WriteString(out, "\n")
		}),
	}

	if total < 0 {
		// Unknown total: use spinner mode
		opts = append(opts,
			progressbar.OptionSpinnerType(14),
			progressbar.OptionSetRenderBlankState(true),
		)
	} else {
		// Known total: show iterations/second
		opts = append(opts,
			progressbar.OptionShowIts(),
		)
	}

	return progressbar.NewOptions(total, opts...)
}
