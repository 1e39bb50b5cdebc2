package contentvalidator

import (
	"fmt"
	"strings"

	"article-pipeline/internal/models"
)

// Format renders a report as a short plain-text summary for logs and
// workflow variables.
func Format(report models.ValidationReport) string {
	var parts []string

	if len(report.Errors) > 0 {
		parts = append(parts, "Errors:")
		for _, e := range report.Errors {
			parts = append(parts, "- "+e)
		}
	}
	if len(report.Warnings) > 0 {
		parts = append(parts, "Warnings:")
		for _, w := range report.Warnings {
			parts = append(parts, "- "+w)
		}
	}

	status := "failed"
	if report.Passed {
		status = "passed"
	}
	parts = append(parts, fmt.Sprintf("Validation %s. Score: %d/100", status, report.Score))
	return strings.Join(parts, "\n")
}
