package cssbuild

// Issue represents a single lint violation
type Issue struct {
	FromLinter string   `json:"FromLinter"` // "csslint"
	Rule       string   `json:"Rule"`       // "no-important"
	Text       string   `json:"Text"`       // "!important should not be used"
	Severity   string   `json:"Severity"`   // "warning", "error"
	Pos        IssuePos `json:"Pos"`        // File location
}

// IssuePos specifies the exact location of an issue
type IssuePos struct {
	Filename string `json:"Filename"` // "src/scss/app.scss"
	Line     int    `json:"Line"`     // 12
	Column   int    `json:"Column"`   // 3 (1-based)
}

// IssueSeverity constants
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// LintResult is the outcome of linting one file.
type LintResult struct {
	FilePath     string  `json:"filePath"`
	ErrorCount   int     `json:"errorCount"`
	WarningCount int     `json:"warningCount"`
	Issues       []Issue `json:"issues"`
}

// NewLintResult counts issues by severity.
func NewLintResult(path string, issues []Issue) LintResult {
	result := LintResult{FilePath: path, Issues: issues}
	for _, issue := range issues {
		switch issue.Severity {
		case SeverityError:
			result.ErrorCount++
		case SeverityWarning:
			result.WarningCount++
		}
	}
	return result
}
