package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"

	haiblock "github.com/haiblock/gosdk"
)

const (
	barWidth       = 30
	maxActivities  = 10
	maxRecentFiles = 5
)

// ratio returns n/d, or 0 when d is not positive.
func ratio(n, d float64) float64 {
	if d <= 0 {
		return 0
	}
	return n / d
}

// bar renders share (0..1) as a fixed-width bar.
func bar(share float64) string {
	filled := int(min(max(share, 0), 1) * barWidth)
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

func formatCurrency(amount float64) string {
	return fmt.Sprintf("$%.4f", amount)
}

func formatPercentage(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

func section(w io.Writer, title string) {
	line := strings.Repeat("=", 60)
	fmt.Fprintf(w, "\n%s\n  %s\n%s\n", line, title, line)
}

func subsection(w io.Writer, title string) {
	line := strings.Repeat("-", 40)
	fmt.Fprintf(w, "\n%s\n  %s\n%s\n", line, title, line)
}

// breakdown prints one bar per key, sorted by key.
func breakdown(w io.Writer, counts map[string]int) {
	total := 0
	for _, n := range counts {
		total += n
	}
	for _, key := range slices.Sorted(maps.Keys(counts)) {
		n := counts[key]
		share := ratio(float64(n), float64(total))
		fmt.Fprintf(w, "%-12s │%s│ %3d (%s)\n", strings.ToUpper(key), bar(share), n, formatPercentage(share))
	}
}

func activityMarker(status string) string {
	switch strings.ToLower(status) {
	case "success":
		return "[ok]"
	case "error":
		return "[err]"
	case "pending":
		return "[wait]"
	case "processing":
		return "[run]"
	}
	return "[-]"
}

func successInsight(rate float64) string {
	switch {
	case rate >= 0.9:
		return "Excellent success rate. Content optimization is working well."
	case rate >= 0.7:
		return "Good success rate. Review failed submissions for improvement opportunities."
	case rate >= 0.5:
		return "Moderate success rate. Review the transformation and submission process."
	}
	return "Low success rate. The content optimization workflow needs attention."
}

func costInsight(avg float64) string {
	switch {
	case avg < 0.01:
		return "Very cost-effective processing."
	case avg < 0.05:
		return "Cost-effective processing."
	case avg < 0.10:
		return "Moderate processing costs. Monitor for optimization opportunities."
	}
	return "High processing costs. Consider reducing content size."
}

func activityInsight(submissions int) string {
	switch {
	case submissions > 100:
		return "High activity level."
	case submissions > 20:
		return "Moderate activity level."
	}
	return "Getting started. Upload more content for better insights."
}

// renderDashboard writes the analytics overview. contents, when non-empty, adds a summary of
// the listed content.
func renderDashboard(w io.Writer, a *haiblock.AnalyticsData, contents []haiblock.Content) {
	fmt.Fprintln(w, "HaiBlock Analytics Dashboard")
	section(w, "ANALYTICS OVERVIEW")

	subsection(w, "Key Metrics")
	fmt.Fprintf(w, "Total Content Items:      %s\n", humanize.Comma(int64(a.TotalContent)))
	fmt.Fprintf(w, "Total Submissions:        %s\n", humanize.Comma(int64(a.TotalSubmissions)))
	fmt.Fprintf(w, "Successful Submissions:   %s\n", humanize.Comma(int64(a.SuccessfulSubmissions)))
	fmt.Fprintf(w, "Failed Submissions:       %s\n", humanize.Comma(int64(a.FailedSubmissions)))
	fmt.Fprintf(w, "Success Rate:             %s\n", formatPercentage(a.SuccessRate))

	subsection(w, "Cost Analysis")
	fmt.Fprintf(w, "Total Costs:              %s\n", formatCurrency(a.TotalCosts))
	fmt.Fprintf(w, "Average Cost/Submission:  %s\n", formatCurrency(a.AverageCostPerSubmission))
	if a.TotalSubmissions > 0 {
		fmt.Fprintf(w, "Cost per Success:         %s\n",
			formatCurrency(ratio(a.TotalCosts, float64(a.SuccessfulSubmissions))))
	}

	subsection(w, "Content Status Distribution")
	breakdown(w, a.ContentStatusBreakdown)

	if len(a.SubmissionProviderBreakdown) > 0 {
		subsection(w, "AI Provider Distribution")
		breakdown(w, a.SubmissionProviderBreakdown)
	}

	if len(a.RecentActivity) > 0 {
		subsection(w, "Recent Activity")
		for i, activity := range a.RecentActivity[:min(len(a.RecentActivity), maxActivities)] {
			when := "N/A"
			if t, ok := activity.Time(); ok {
				when = t.Format(timeLayout)
			}
			action := activity.Action()
			if action == "" {
				action = "Unknown action"
			}
			fmt.Fprintf(w, "%2d. %-6s %s - %s\n", i+1, activityMarker(activity.Status()), when, action)
			if id := activity.ContentID(); id != "" {
				fmt.Fprintf(w, "     Content: %s...\n", id[:min(len(id), 8)])
			}
		}
	}

	if len(a.MonthlyTrends) > 0 {
		subsection(w, "Monthly Trends")
		for _, month := range slices.Sorted(maps.Keys(a.MonthlyTrends)) {
			trend, ok := a.Trend(month)
			if !ok {
				continue
			}
			fmt.Fprintf(w, "%s: %3d submissions, %s costs\n", month, trend.Submissions, formatCurrency(trend.Costs))
		}
	}

	section(w, "PERFORMANCE INSIGHTS")
	fmt.Fprintln(w, successInsight(a.SuccessRate))
	fmt.Fprintln(w, costInsight(a.AverageCostPerSubmission))
	fmt.Fprintln(w, activityInsight(a.TotalSubmissions))

	if len(contents) > 0 {
		section(w, "CONTENT ANALYSIS")
		renderContentSummary(w, contents)
	}
}

func renderContentSummary(w io.Writer, contents []haiblock.Content) {
	fileTypes := map[string]int{}
	statuses := map[string]int{}
	var totalSize uint64
	for _, c := range contents {
		fileTypes[c.FileType]++
		statuses[c.Status.String()]++
		totalSize += uint64(max(c.FileSize, 0))
	}

	subsection(w, "Content Summary")
	fmt.Fprintf(w, "Total Files: %s\n", plural(len(contents), "file"))
	fmt.Fprintf(w, "Total Size:  %s\n", humanize.Bytes(totalSize))

	fmt.Fprintln(w, "\nFile Types:")
	for _, t := range slices.Sorted(maps.Keys(fileTypes)) {
		fmt.Fprintf(w, "  %s: %d\n", t, fileTypes[t])
	}

	fmt.Fprintln(w, "\nContent Status:")
	for _, s := range slices.Sorted(maps.Keys(statuses)) {
		fmt.Fprintf(w, "  %s: %d\n", s, statuses[s])
	}

	recent := slices.Clone(contents)
	slices.SortStableFunc(recent, func(a, b haiblock.Content) int {
		return b.UploadDate.Compare(a.UploadDate.Time)
	})
	fmt.Fprintln(w, "\nRecent Uploads:")
	for _, c := range recent[:min(len(recent), maxRecentFiles)] {
		fmt.Fprintf(w, "  %s (%s) - %s\n", c.Filename, humanize.Bytes(uint64(max(c.FileSize, 0))), c.Status)
	}
}
