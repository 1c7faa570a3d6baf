// Package report renders ScanResults for the terminal: a colored tier
// label, a per-package signal list, and a batch summary line followed by a
// results table. Coloring is gated on whether the destination writer is an
// interactive terminal, matching the rest of
// the command-line surface's convention of degrading gracefully for piped
// or redirected output.
package report

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/term"

	"github.com/pkgguard/pkgguard/schema"
)

var (
	trustedColor    = color.New(color.FgGreen, color.Bold)
	okColor         = color.New(color.FgGreen)
	sketchyColor    = color.New(color.FgYellow, color.Bold)
	suspiciousColor = color.New(color.FgRed)
	maliciousColor  = color.New(color.FgRed, color.Bold)
)

// UseColor reports whether w is a terminal that should receive ANSI color
// codes. Callers writing to a file or a pipe should pass false explicitly.
func UseColor(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// TierLabel renders a tier name, colored when useColor is true.
func TierLabel(tier schema.Tier, useColor bool) string {
	if !useColor {
		return string(tier)
	}
	switch tier {
	case schema.TierTrusted:
		return trustedColor.Sprint(tier)
	case schema.TierOK:
		return okColor.Sprint(tier)
	case schema.TierSketchy:
		return sketchyColor.Sprint(tier)
	case schema.TierSuspicious:
		return suspiciousColor.Sprint(tier)
	case schema.TierMalicious:
		return maliciousColor.Sprint(tier)
	default:
		return string(tier)
	}
}

// PrintResult writes one package's full signal breakdown: package name,
// score, tier, elapsed time, and every signal sorted by descending points
// within its category, per the failure-reporting convention.
func PrintResult(w io.Writer, result schema.ScanResult, useColor bool) {
	if result.Error != "" {
		fmt.Fprintf(w, "%s: scan failed (%s) in %v\n", result.Package, result.Error, result.Duration)
		return
	}

	fmt.Fprintf(w, "%s: score %d, tier %s, %d signal(s) in %v\n",
		result.Package, result.Score, TierLabel(result.Tier, useColor), len(result.Signals), result.Duration)

	signals := sortedByCategoryThenPoints(result.Signals)
	for _, s := range signals {
		gate := ""
		if s.OverrideGate {
			gate = " [override]"
		}
		fmt.Fprintf(w, "  [%s] %s (+%d)%s: %s\n", s.Category, s.ID, s.Points, gate, s.Description)
		if s.MatchedLine != "" {
			fmt.Fprintf(w, "      matched: %s\n", s.MatchedLine)
		}
	}
}

// sortedByCategoryThenPoints groups signals by category and orders each
// group by descending points, matching the hook's failure-report ordering.
func sortedByCategoryThenPoints(signals []schema.Signal) []schema.Signal {
	sorted := make([]schema.Signal, len(signals))
	copy(sorted, signals)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Category != sorted[j].Category {
			return sorted[i].Category < sorted[j].Category
		}
		return sorted[i].Points > sorted[j].Points
	})
	return sorted
}

// PrintBatchSummary writes a one-line tier-count summary followed by a
// table of every result, matching the table-writer convention used
// elsewhere for tabular console output.
func PrintBatchSummary(w io.Writer, results []schema.ScanResult, useColor bool) {
	counts := map[schema.Tier]int{}
	failures := 0
	for _, r := range results {
		if r.Error != "" {
			failures++
			continue
		}
		counts[r.Tier]++
	}

	fmt.Fprintf(w, "scanned %d package(s): %d trusted, %d ok, %d sketchy, %d suspicious, %d malicious, %d failed\n",
		len(results), counts[schema.TierTrusted], counts[schema.TierOK], counts[schema.TierSketchy],
		counts[schema.TierSuspicious], counts[schema.TierMalicious], failures)

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Package", "Score", "Tier", "Signals", "Duration"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var rows [][]string
	for _, r := range results {
		tierCell := TierLabel(r.Tier, useColor)
		if r.Error != "" {
			tierCell = "ERROR"
		}
		rows = append(rows, []string{
			r.Package,
			fmt.Sprintf("%d", r.Score),
			tierCell,
			fmt.Sprintf("%d", len(r.Signals)),
			r.Duration.Round(1).String(),
		})
	}
	if err := table.Bulk(rows); err == nil {
		_ = table.Render()
	}
}

// WorstTier returns the least-trusted tier among results with no error, and
// whether any result had a scan error.
func WorstTier(results []schema.ScanResult) (worst schema.Tier, anyError bool) {
	worst = schema.TierTrusted
	for _, r := range results {
		if r.Error != "" {
			anyError = true
			continue
		}
		if tierRank(r.Tier) > tierRank(worst) {
			worst = r.Tier
		}
	}
	return worst, anyError
}

func tierRank(t schema.Tier) int {
	switch t {
	case schema.TierTrusted:
		return 0
	case schema.TierOK:
		return 1
	case schema.TierSketchy:
		return 2
	case schema.TierSuspicious:
		return 3
	case schema.TierMalicious:
		return 4
	default:
		return 0
	}
}
