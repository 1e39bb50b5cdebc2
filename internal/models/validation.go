// internal/models/validation.go
package models

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// IssueCode identifies a content rule violation.
type IssueCode string

const (
	IssueEmptyContent      IssueCode = "EMPTY_CONTENT"
	IssueH1Heading         IssueCode = "H1_HEADING"
	IssueSourcesSection    IssueCode = "SOURCES_SECTION"
	IssueTransparencyNote  IssueCode = "TRANSPARENCY_NOTE"
	IssueContentTooShort   IssueCode = "CONTENT_TOO_SHORT"
	IssueContentTooLong    IssueCode = "CONTENT_TOO_LONG"
	IssueMissingLeadH2     IssueCode = "NEWS_MUST_START_WITH_H2"
	IssueTooFewSections    IssueCode = "TOO_FEW_H2_SECTIONS"
	IssueTooManySections   IssueCode = "TOO_MANY_H2_SECTIONS"
	IssueGenericHeading    IssueCode = "GENERIC_HEADING"
	IssueMissingLead       IssueCode = "MISSING_LEAD_PARAGRAPH"
	IssueNoSections        IssueCode = "NO_SECTIONS"
	IssueNoHeadings        IssueCode = "NO_HEADINGS"
	IssueCitationMarkers   IssueCode = "CITATION_MARKERS"
	IssueLowProse          IssueCode = "LOW_PROSE"
	IssueTitleTooLong      IssueCode = "TITLE_TOO_LONG"
	IssueSchemaViolation   IssueCode = "SCHEMA_VIOLATION"
	IssueUnsupportedFormat IssueCode = "UNSUPPORTED_CONTENT_TYPE"
)

type ValidationIssue struct {
	Code     IssueCode `json:"code"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
}

// ValidationReport is advisory output attached to a successful response.
type ValidationReport struct {
	Passed   bool              `json:"passed"`
	Errors   []string          `json:"errors"`
	Warnings []string          `json:"warnings"`
	Issues   []ValidationIssue `json:"issues"`
	Score    int               `json:"score"`
}

// Has reports whether the report contains an issue with the given code.
func (r ValidationReport) Has(code IssueCode) bool {
	for _, issue := range r.Issues {
		if issue.Code == code {
			return true
		}
	}
	return false
}
