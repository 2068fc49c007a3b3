// Package report renders an execution result as a Markdown report for PR
// comments and check run summaries. Rendering is pure: the same result
// always produces the same output.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/verityhq/verity/internal/constants"
	"github.com/verityhq/verity/internal/domain"
)

// Links carries the artifact URLs woven into the report.
type Links struct {
	// Video is the public URL of the full-run screencast, empty when no
	// video was produced.
	Video string

	// Screenshots maps scenario name to screenshot URL.
	Screenshots map[string]string
}

// Render produces the Markdown report for one execution result.
func Render(result *domain.ExecutionResult, links Links) string {
	var b strings.Builder

	writeHeader(&b, result)
	writeCoverage(&b, result)
	writeScenarios(&b, result, links)
	writeRecommendation(&b, result)

	return b.String()
}

func writeHeader(b *strings.Builder, result *domain.ExecutionResult) {
	icon := "✅"
	if result.Failed > 0 {
		icon = "❌"
	} else if result.Skipped > 0 {
		icon = "⚠️"
	}

	fmt.Fprintf(b, "## %s Automated Test Results\n\n", icon)
	fmt.Fprintf(b, "**%d/%d tests passed**", result.Passed, result.TotalTests)
	if result.Failed > 0 {
		fmt.Fprintf(b, " · %d failed", result.Failed)
	}
	if result.Skipped > 0 {
		fmt.Fprintf(b, " · %d skipped", result.Skipped)
	}
	fmt.Fprintf(b, " · %s\n\n", result.Duration.Round(time.Second))
}

// writeCoverage prints a per-priority pass summary, highest priority first.
func writeCoverage(b *strings.Builder, result *domain.ExecutionResult) {
	type bucket struct {
		priority domain.Priority
		passed   int
		total    int
	}
	buckets := map[domain.Priority]*bucket{}
	for _, s := range result.Scenarios {
		p := s.Scenario.ParsedPriority()
		bk := buckets[p]
		if bk == nil {
			bk = &bucket{priority: p}
			buckets[p] = bk
		}
		bk.total++
		if s.Status == constants.ScenarioPass {
			bk.passed++
		}
	}

	ordered := make([]*bucket, 0, len(buckets))
	for _, bk := range buckets {
		ordered = append(ordered, bk)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].priority.SortRank() < ordered[j].priority.SortRank()
	})

	b.WriteString("### Coverage\n\n")
	b.WriteString("| Priority | Passed | Total | Pass rate |\n|---|---|---|---|\n")
	for _, bk := range ordered {
		fmt.Fprintf(b, "| %s | %d | %d | %s |\n", bk.priority.Label(), bk.passed, bk.total, coverageBar(bk.passed, bk.total))
	}
	b.WriteString("\n")
}

// coverageBar renders a ten-segment bar with the bucket's pass percentage.
func coverageBar(passed, total int) string {
	if total == 0 {
		return ""
	}
	pct := passed * 100 / total
	filled := pct / 10
	return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled) + fmt.Sprintf(" %d%%", pct)
}

func writeScenarios(b *strings.Builder, result *domain.ExecutionResult, links Links) {
	b.WriteString("### Scenarios\n\n")

	// Scenarios execute in recipe order but report grouped by priority,
	// highest first. Offsets stay keyed to execution order.
	offsets := VideoOffsets(result)
	order := make([]int, len(result.Scenarios))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return result.Scenarios[order[a]].Scenario.ParsedPriority().SortRank() <
			result.Scenarios[order[b]].Scenario.ParsedPriority().SortRank()
	})

	for _, i := range order {
		s := result.Scenarios[i]
		fmt.Fprintf(b, "<details>\n<summary>%s %s (%s, %s)</summary>\n\n",
			statusIcon(s.Status), s.Scenario.Name,
			s.Scenario.ParsedPriority().Label(),
			(time.Duration(s.DurationMs) * time.Millisecond).Round(time.Millisecond*100))

		if s.Status != constants.ScenarioPass && s.Status != constants.ScenarioSkip {
			if s.Expected != "" {
				fmt.Fprintf(b, "- **Expected:** %s\n", s.Expected)
			}
			if s.Actual != "" {
				fmt.Fprintf(b, "- **Actual:** %s\n", s.Actual)
			}
			if s.Error != "" {
				fmt.Fprintf(b, "- **Error:** `%s`\n", s.Error)
			}
		}

		if url := links.Screenshots[s.Scenario.Name]; url != "" {
			if s.Status == constants.ScenarioFail || s.Status == constants.ScenarioError {
				fmt.Fprintf(b, "![Screenshot](%s)\n", url)
			} else {
				fmt.Fprintf(b, "- [Screenshot](%s)\n", url)
			}
		}
		if links.Video != "" && s.Status != constants.ScenarioSkip {
			fmt.Fprintf(b, "- [Watch in video](%s#t=%d)\n", links.Video, int(offsets[i].Seconds()))
		}

		writeTelemetry(b, s)
		b.WriteString("\n</details>\n\n")
	}
}

func writeTelemetry(b *strings.Builder, s domain.ScenarioResult) {
	if len(s.ConsoleLogs) > 0 {
		b.WriteString("\n**Console output:**\n\n```\n")
		for _, entry := range s.ConsoleLogs {
			fmt.Fprintf(b, "[%s] %s\n", entry.Level, entry.Text)
		}
		b.WriteString("```\n")
	}
	if len(s.NetworkErrors) > 0 {
		b.WriteString("\n**Network failures:**\n\n")
		for _, failure := range s.NetworkErrors {
			fmt.Fprintf(b, "- `%s`: %s\n", failure.URL, failure.Reason)
		}
	}
}

func writeRecommendation(b *strings.Builder, result *domain.ExecutionResult) {
	b.WriteString("### Recommendation\n\n")
	switch {
	case result.BlockingFailure():
		b.WriteString("🚫 **Do not merge.** A smoke or critical-path scenario failed.\n")
	case result.Failed > 0:
		fmt.Fprintf(b, "⚠️ **Review before merging.** %d non-blocking scenario(s) failed.\n", result.Failed)
	case result.Skipped > 0:
		b.WriteString("⚠️ Some scenarios were skipped; coverage is incomplete.\n")
	default:
		b.WriteString("✅ All scenarios passed. Safe to merge from a test perspective.\n")
	}
}

// VideoOffsets returns the estimated start offset of each scenario within
// the full-run video, accounting for the gap between scenarios.
func VideoOffsets(result *domain.ExecutionResult) []time.Duration {
	offsets := make([]time.Duration, len(result.Scenarios))
	var cursor time.Duration
	for i, s := range result.Scenarios {
		offsets[i] = cursor
		if s.Status != constants.ScenarioSkip {
			cursor += time.Duration(s.DurationMs)*time.Millisecond + constants.InterScenarioGap
		}
	}
	return offsets
}

func statusIcon(status constants.ScenarioStatus) string {
	switch status {
	case constants.ScenarioPass:
		return "✅"
	case constants.ScenarioFail:
		return "❌"
	case constants.ScenarioError:
		return "💥"
	case constants.ScenarioSkip:
		return "⏭️"
	}
	return "❓"
}
