package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"pencilsketch/db"
	"pencilsketch/metrics"
	"pencilsketch/render"
	"pencilsketch/sketch"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	headerColor  = color.New(color.FgCyan, color.Bold)
	dimColor     = color.New(color.Faint)
)

func printOutcome(w io.Writer, out *render.Outcome) {
	var outputs []string
	for _, p := range []string{out.SketchPath, out.ColoredPath} {
		if p != "" {
			outputs = append(outputs, filepath.Base(p))
		}
	}
	fmt.Fprintf(w, "%s %s -> %s %s\n",
		successColor.Sprint("✓"),
		out.Input,
		strings.Join(outputs, ", "),
		dimColor.Sprintf("(%dx%d, %s, %s)", out.Width, out.Height,
			out.Duration.Round(time.Millisecond), humanize.IBytes(uint64(out.OutputBytes))))
}

func printFailure(w io.Writer, input string, err error) {
	fmt.Fprintf(w, "%s %s: %v\n", errorColor.Sprint("✗"), input, err)
}

// printRunSummary prints totals and the mean time of each stage.
func printRunSummary(w io.Writer, totals metrics.RenderMetrics, stages map[string]metrics.StageStats) {
	fmt.Fprintln(w)
	headerColor.Fprintln(w, "Summary")
	fmt.Fprintf(w, "  rendered: %s   failed: %s\n",
		successColor.Sprint(totals.TotalSuccess), failedCount(totals.TotalErrors))
	if totals.TotalSuccess == 0 {
		return
	}
	fmt.Fprintf(w, "  pixels:   %s   time: %s   throughput: %.2f MP/s\n",
		humanize.Comma(totals.TotalPixels),
		totals.TotalDuration.Round(time.Millisecond),
		totals.MegapixelsPerSecond())

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  stage\tavg\tmax")
	for _, st := range sketch.Stages {
		s, ok := stages[string(st)]
		if !ok {
			continue
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", st, s.Avg().Round(time.Microsecond), s.Max.Round(time.Microsecond))
	}
	tw.Flush()
}

func failedCount(n int64) string {
	if n == 0 {
		return fmt.Sprint(n)
	}
	return errorColor.Sprint(n)
}

// printHistory prints stored renders newest first, then aggregates.
func printHistory(w io.Writer, records []db.RenderRecord, stats db.HistoryStats, stages []db.StageAverage) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No renders recorded yet.")
		return
	}

	headerColor.Fprintln(w, "Recent renders")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  when\tstatus\tinput\tpreset\tsize\ttime")
	for _, r := range records {
		status := successColor.Sprint(r.Status)
		size := fmt.Sprintf("%dx%d", r.Width, r.Height)
		if r.Status == db.StatusError {
			status = errorColor.Sprint(r.Status)
			size = r.ErrorMessage
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\t%s\n",
			humanize.Time(r.CreatedAt), status, r.InputPath, r.Preset, size, r.Duration)
	}
	tw.Flush()

	fmt.Fprintln(w)
	headerColor.Fprintln(w, "Totals")
	fmt.Fprintf(w, "  renders: %d (%d ok, %s failed)\n", stats.Total, stats.Succeeded, failedCount(stats.Failed))
	fmt.Fprintf(w, "  average: %s   pixels: %s   written: %s\n",
		stats.AvgDuration.Round(time.Millisecond),
		humanize.Comma(stats.TotalPixels),
		humanize.IBytes(uint64(stats.OutputBytes)))

	if len(stages) == 0 {
		return
	}
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  stage\tavg\truns")
	for _, s := range stages {
		fmt.Fprintf(tw, "  %s\t%s\t%d\n", s.Name, s.Average.Round(time.Microsecond), s.Count)
	}
	tw.Flush()
}
