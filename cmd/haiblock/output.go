package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	haiblock "github.com/haiblock/gosdk"
)

const (
	timeLayout    = "2006-01-02 15:04"
	previewLength = 200
)

// truncate shortens s to at most n characters, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, "✓ "+fmt.Sprintf(format, args...))
}

func printField(w io.Writer, label, format string, args ...any) {
	fmt.Fprintf(w, "%-12s %s\n", label+":", fmt.Sprintf(format, args...))
}

func printContent(w io.Writer, c *haiblock.Content) {
	printField(w, "ID", "%s", c.ID)
	printField(w, "Filename", "%s", c.Filename)
	printField(w, "Status", "%s", c.Status)
	printField(w, "Type", "%s", c.FileType)
	printField(w, "Size", "%s", humanize.Bytes(uint64(max(c.FileSize, 0))))
	printField(w, "Uploaded", "%s", c.UploadDate.Format(timeLayout))
	printField(w, "Updated", "%s", c.LastUpdated.Format(timeLayout))
	if c.TransformedText != nil {
		printField(w, "Transformed", "%s", humanize.Comma(int64(len(*c.TransformedText)))+" chars")
	}
}

func printContentTable(w io.Writer, items []haiblock.Content) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tSIZE\tUPLOADED\tFILENAME")
	for _, c := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			c.ID, c.Status, humanize.Bytes(uint64(max(c.FileSize, 0))), c.UploadDate.Format(timeLayout), c.Filename)
	}
	return tw.Flush()
}

func printSubmission(w io.Writer, s *haiblock.Submission) {
	printField(w, "ID", "%s", s.ID)
	printField(w, "Content", "%s", s.ContentID)
	printField(w, "Provider", "%s", s.Provider)
	printField(w, "Status", "%s", s.Status)
	printField(w, "Submitted", "%s", s.SubmittedAt.Format(timeLayout))
	if s.CostEstimate != nil {
		printField(w, "Cost", "%s", formatCurrency(*s.CostEstimate))
	}
	if s.ErrorMessage != nil {
		printField(w, "Error", "%s", *s.ErrorMessage)
	}
}

func printSubmissionTable(w io.Writer, items []haiblock.Submission) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCONTENT\tPROVIDER\tSTATUS\tSUBMITTED")
	for _, s := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			s.ID, s.ContentID, s.Provider, s.Status, s.SubmittedAt.Format(timeLayout))
	}
	return tw.Flush()
}

func printTransformation(w io.Writer, contentID string, r *haiblock.TransformationResult) {
	if err := r.Err(); err != nil {
		fmt.Fprintf(w, "✗ %v\n", err)
		return
	}
	printSuccess(w, "Transformed %s", contentID)
	printField(w, "Chunks", "%d", len(r.Chunks))
	printField(w, "FAQs", "%d", len(r.FAQs))
	if name, ok := r.CompanyInfo["name"].(string); ok {
		printField(w, "Company", "%s", name)
	}
	if r.TransformedText != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, strings.TrimSpace(truncate(*r.TransformedText, previewLength)))
	}
}
