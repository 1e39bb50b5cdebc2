// internal/generation/metadata-deriver/clean.go
package metadataderiver

import (
	"regexp"
	"strings"

	"article-pipeline/internal/models"
)

// DefaultLeadHeading is prefixed to news content that does not open with a
// section heading.
const DefaultLeadHeading = "## Contexto"

var (
	leadingH1 = regexp.MustCompile(`^#[ \t]+[^\n]+\n+`)

	sourcesSection = []*regexp.Regexp{
		regexp.MustCompile(`(?is)\n#{1,3}[ \t]*(fontes?|referências?|referencias?|sources?|references?):?[ \t]*\n.*$`),
		regexp.MustCompile(`(?is)\n\*\*(fontes?|referências?|referencias?|sources?|references?):?\*\*:?.*$`),
	}

	referenceListLine = regexp.MustCompile(`(?m)^[ \t]*\[\d+\](\[\d+\])*.*(\n|$)`)

	transparencyNote = regexp.MustCompile(`(?is)\n#{1,3}[ \t]*(📊[ \t]*)?(nota de transparência|transparency note).*$`)

	leadingHeadingMarker = regexp.MustCompile(`^#[ \t]+`)
)

// CleanContent removes the parts of model output that the article page
// renders on its own: a leading title heading, trailing sources or
// transparency sections and reference-list lines. News content is made to
// open with a level-2 heading.
func CleanContent(content string, contentType models.ContentType) string {
	cleaned := strings.TrimSpace(content)
	cleaned = leadingH1.ReplaceAllString(cleaned, "")
	cleaned = RemoveSourcesSection(cleaned)
	cleaned = RemoveTransparencyNote(cleaned)

	if contentType == models.ContentTypeNews {
		cleaned = EnsureLeadH2(cleaned)
	}
	return strings.TrimSpace(cleaned)
}

func RemoveSourcesSection(content string) string {
	out := "\n" + content
	for _, re := range sourcesSection {
		out = re.ReplaceAllString(out, "")
	}
	out = referenceListLine.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}

func RemoveTransparencyNote(content string) string {
	return strings.TrimSpace(transparencyNote.ReplaceAllString("\n"+content, ""))
}

// EnsureLeadH2 promotes a leading H1 marker to H2, or prefixes
// DefaultLeadHeading when the content opens with prose.
func EnsureLeadH2(content string) string {
	trimmed := strings.TrimSpace(content)
	switch {
	case trimmed == "":
		return trimmed
	case strings.HasPrefix(trimmed, "##"):
		return trimmed
	case strings.HasPrefix(trimmed, "#"):
		return leadingHeadingMarker.ReplaceAllString(trimmed, "## ")
	default:
		return DefaultLeadHeading + "\n\n" + trimmed
	}
}
