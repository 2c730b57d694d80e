package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/bit2swaz/cache-janitor/internal/janitor"
)

var (
	prefixStyle = color.New(color.FgHiCyan, color.Bold)
	removeStyle = color.New(color.FgHiYellow, color.Bold)
	retainStyle = color.New(color.FgHiGreen, color.Bold)
	infoStyle   = color.New(color.FgHiWhite)
	subtleStyle = color.New(color.FgHiBlack)
	warnStyle   = color.New(color.FgHiMagenta, color.Bold)
	errorStyle  = color.New(color.FgHiRed, color.Bold)
)

const dryRunNotice = "(dry run, nothing removed)"

func prefix() string {
	return prefixStyle.Sprint("[CacheJanitor]")
}

func dispositionStyle(d janitor.Disposition) *color.Color {
	switch d {
	case janitor.Retain:
		return retainStyle
	case janitor.RemoveExpired:
		return removeStyle
	default:
		return warnStyle
	}
}

func logPassReport(out io.Writer, dir string, r janitor.Report, dryRun bool) {
	suffix := ""
	if dryRun {
		suffix = " " + subtleStyle.Sprint(dryRunNotice)
	}
	fmt.Fprintf(out, "%s %s %s in %s%s\n",
		prefix(),
		infoStyle.Sprintf("Swept %s:", dir),
		fmt.Sprintf("%s, %s of %d entries",
			removeStyle.Sprintf("%d removed", r.Removed),
			retainStyle.Sprintf("%d retained", r.Retained),
			r.Scanned),
		humanDuration(r.Duration),
		suffix,
	)

	for _, d := range janitor.Dispositions[1:] {
		if n := r.ByDisposition[d]; n > 0 {
			fmt.Fprintf(out, "%s   %s %d\n", prefix(), dispositionStyle(d).Sprint(d.String()), n)
		}
	}
	if r.Inconsistent > 0 {
		fmt.Fprintf(out, "%s %s\n", prefix(),
			warnStyle.Sprintf("%d stale working files had a completed result present", r.Inconsistent))
	}
	if r.Errors > 0 {
		fmt.Fprintf(out, "%s %s\n", prefix(),
			errorStyle.Sprintf("%d entries could not be processed, see the log", r.Errors))
	}
}

func logFailure(errOut io.Writer, label string, err error) {
	fmt.Fprintf(errOut, "%s %s %s\n", prefix(), errorStyle.Sprint(label), infoStyle.Sprint(err))
}

func humanDuration(d time.Duration) string {
	if d < time.Millisecond {
		return "0s"
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		minutes := d / time.Minute
		seconds := (d % time.Minute) / time.Second
		if seconds == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	if d < 48*time.Hour {
		return fmt.Sprintf("%dh %dm", d/time.Hour, (d%time.Hour)/time.Minute)
	}
	return fmt.Sprintf("%dd %dh", d/(24*time.Hour), (d%(24*time.Hour))/time.Hour)
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
