// internal/generation/content-validator/validator.go
package contentvalidator

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"article-pipeline/internal/common/validation"
	"article-pipeline/internal/models"
)

type Config struct {
	MinLength      int
	MaxLength      int
	MinSections    int
	MaxSections    int
	MaxTitleLength int
}

func DefaultConfig() Config {
	return Config{
		MinLength:      500,
		MaxLength:      15000,
		MinSections:    4,
		MaxSections:    7,
		MaxTitleLength: 80,
	}
}

// Validator checks drafts against structural rules. Its report is advisory
// and never stops the pipeline.
type Validator struct {
	config Config
}

func New(config Config) *Validator {
	return &Validator{config: config}
}

var defaultValidator = New(DefaultConfig())

// Validate checks draft with the default rule limits.
func Validate(draft models.ArticleDraft, contentType models.ContentType) models.ValidationReport {
	return defaultValidator.Validate(draft, contentType)
}

type reportBuilder struct {
	report models.ValidationReport
	score  int
}

func newReportBuilder() *reportBuilder {
	return &reportBuilder{
		report: models.ValidationReport{
			Errors:   []string{},
			Warnings: []string{},
			Issues:   []models.ValidationIssue{},
		},
		score: 100,
	}
}

func (b *reportBuilder) fail(code models.IssueCode, penalty int, format string, args ...interface{}) {
	b.add(code, models.SeverityError, penalty, fmt.Sprintf(format, args...))
}

func (b *reportBuilder) warn(code models.IssueCode, penalty int, format string, args ...interface{}) {
	b.add(code, models.SeverityWarning, penalty, fmt.Sprintf(format, args...))
}

func (b *reportBuilder) add(code models.IssueCode, severity models.Severity, penalty int, msg string) {
	b.report.Issues = append(b.report.Issues, models.ValidationIssue{Code: code, Severity: severity, Message: msg})
	if severity == models.SeverityError {
		b.report.Errors = append(b.report.Errors, msg)
	} else {
		b.report.Warnings = append(b.report.Warnings, msg)
	}
	b.score -= penalty
}

func (b *reportBuilder) build() models.ValidationReport {
	switch {
	case b.score < 0:
		b.score = 0
	case b.score > 100:
		b.score = 100
	}
	b.report.Score = b.score
	b.report.Passed = len(b.report.Errors) == 0
	return b.report
}

func (v *Validator) Validate(draft models.ArticleDraft, contentType models.ContentType) models.ValidationReport {
	b := newReportBuilder()

	content := strings.TrimSpace(draft.Content)
	if content == "" {
		b.fail(models.IssueEmptyContent, 100, "content is empty")
		return b.build()
	}

	switch contentType {
	case models.ContentTypeNews:
		v.checkCommon(b, draft, content)
		v.checkNews(b, content)
		v.checkSchema(b, draft, validation.NewsDraftSchema)
	case models.ContentTypeEducational:
		v.checkCommon(b, draft, content)
		v.checkEducational(b, content)
		v.checkSchema(b, draft, validation.EducationalDraftSchema)
	default:
		b.fail(models.IssueUnsupportedFormat, penaltyUnsupported, "content type %q has no structural rules", contentType)
	}
	return b.build()
}

func (v *Validator) checkCommon(b *reportBuilder, draft models.ArticleDraft, content string) {
	if h1Line.MatchString(content) {
		b.fail(models.IssueH1Heading, penaltyH1, "content contains a level-1 heading; the title is supplied separately")
	}

	length := utf8.RuneCountInString(content)
	if length < v.config.MinLength {
		b.fail(models.IssueContentTooShort, penaltyTooShort, "content too short (%d characters, minimum %d)", length, v.config.MinLength)
	}

	if sourcesHeading.MatchString(content) || sourcesBold.MatchString(content) {
		b.fail(models.IssueSourcesSection, penaltySources, "sources/references section is not allowed")
	}

	if transparencyNote.MatchString(content) {
		b.fail(models.IssueTransparencyNote, penaltyTransparency, "transparency note is not allowed in content")
	}

	if markers := citationMarker.FindAllString(content, -1); len(markers) > 0 {
		b.warn(models.IssueCitationMarkers, penaltyCitations, "%d numeric citation markers found (e.g. %s)", len(markers), markers[0])
	}

	if len(h2OrH3Line.FindAllString(content, -1)) == 0 {
		b.warn(models.IssueNoHeadings, penaltyNoHeadings, "no level-2 or level-3 headings found")
	}

	if prose := countProseLines(content); prose < minProseLines {
		b.warn(models.IssueLowProse, penaltyLowProse, "little prose (%d text lines, expected at least %d)", prose, minProseLines)
	}

	if length > v.config.MaxLength {
		b.warn(models.IssueContentTooLong, penaltyTooLong, "content too long (%d characters, recommended under %d)", length, v.config.MaxLength)
	}

	if n := utf8.RuneCountInString(draft.Title); n > v.config.MaxTitleLength {
		b.warn(models.IssueTitleTooLong, penaltyTitleTooLong, "title too long (%d characters, maximum %d)", n, v.config.MaxTitleLength)
	}
}

func (v *Validator) checkNews(b *reportBuilder, content string) {
	if !strings.HasPrefix(content, "## ") {
		b.fail(models.IssueMissingLeadH2, penaltyLeadH2, "news content must start with a level-2 heading")
	}

	count := len(h2Line.FindAllString(content, -1))
	switch {
	case count < v.config.MinSections:
		b.fail(models.IssueTooFewSections, penaltyTooFewH2, "only %d level-2 sections (minimum %d)", count, v.config.MinSections)
	case count > v.config.MaxSections:
		b.warn(models.IssueTooManySections, penaltyTooManyH2, "%d level-2 sections (maximum %d)", count, v.config.MaxSections)
	}

	seen := make(map[string]bool)
	for _, m := range genericHeading.FindAllStringSubmatch(content, -1) {
		title := strings.ToLower(m[1])
		if seen[title] {
			continue
		}
		seen[title] = true
		b.warn(models.IssueGenericHeading, penaltyGenericTitle, "generic heading %q; use a descriptive title", m[1])
	}
}

func (v *Validator) checkEducational(b *reportBuilder, content string) {
	if !startsWithProse(content) {
		b.fail(models.IssueMissingLead, penaltyMissingLead, "educational content must open with a lead paragraph before the first section")
	}

	if len(h2Line.FindAllString(content, -1)) == 0 {
		b.fail(models.IssueNoSections, penaltyNoSections, "educational content needs at least one level-2 section")
	}
}

func (v *Validator) checkSchema(b *reportBuilder, draft models.ArticleDraft, schema *validation.Schema) {
	var doc interface{} = draft.Raw
	if draft.Raw == nil {
		doc = draft
	}

	res, err := schema.Validate(doc)
	if err != nil {
		b.fail(models.IssueSchemaViolation, penaltySchema, "draft could not be checked against %s: %v", schema.Name(), err)
		return
	}
	if !res.Valid {
		b.fail(models.IssueSchemaViolation, penaltySchema, "draft does not match %s: %s", schema.Name(), strings.Join(res.GetErrorMessages(), "; "))
	}
}

func countProseLines(content string) int {
	n := 0
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || headingPrefix.MatchString(line) {
			continue
		}
		n++
	}
	return n
}

func startsWithProse(content string) bool {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		return !strings.HasPrefix(line, "#")
	}
	return false
}
