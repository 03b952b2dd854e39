package csslint

import (
	"encoding/json"
	"io"
	"time"

	"github.com/yacobolo/cssbuild"
)

// JSONOutput is the machine-readable lint report.
type JSONOutput struct {
	Version   string      `json:"version"`
	Timestamp string      `json:"timestamp"`
	Summary   JSONSummary `json:"summary"`
	Issues    []JSONIssue `json:"issues"`
}

// JSONSummary contains high-level issue counts.
type JSONSummary struct {
	TotalIssues  int `json:"total_issues"`
	Errors       int `json:"errors"`
	Warnings     int `json:"warnings"`
	FilesScanned int `json:"files_scanned"`
	FilesFailed  int `json:"files_failed"`
}

// JSONIssue is a single rule violation.
type JSONIssue struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Severity string `json:"severity"`
	Rule     string `json:"rule"`
	Message  string `json:"message"`
	Linter   string `json:"linter"`
}

// WriteJSON writes lint results as indented JSON.
func WriteJSON(w io.Writer, results []cssbuild.LintResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(buildJSONOutput(results, time.Now()))
}

func buildJSONOutput(results []cssbuild.LintResult, now time.Time) JSONOutput {
	out := JSONOutput{
		Version:   "1.0",
		Timestamp: now.Format(time.RFC3339),
		Issues:    []JSONIssue{},
	}
	out.Summary.FilesScanned = len(results)

	for _, r := range results {
		out.Summary.Errors += r.ErrorCount
		out.Summary.Warnings += r.WarningCount
		if r.ErrorCount > 0 {
			out.Summary.FilesFailed++
		}
		for _, issue := range r.Issues {
			out.Issues = append(out.Issues, JSONIssue{
				File:     issue.Pos.Filename,
				Line:     issue.Pos.Line,
				Column:   issue.Pos.Column,
				Severity: issue.Severity,
				Rule:     issue.Rule,
				Message:  issue.Text,
				Linter:   issue.FromLinter,
			})
		}
	}
	out.Summary.TotalIssues = len(out.Issues)
	return out
}
