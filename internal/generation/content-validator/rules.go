// internal/generation/content-validator/rules.go
package contentvalidator

import "regexp"

// Score deductions per issue.
const (
	penaltyH1           = 20
	penaltyTooShort     = 20
	penaltySources      = 15
	penaltyTransparency = 10
	penaltyLeadH2       = 15
	penaltyTooFewH2     = 20
	penaltyTooManyH2    = 5
	penaltyGenericTitle = 5
	penaltyMissingLead  = 15
	penaltyNoSections   = 15
	penaltyCitations    = 5
	penaltyNoHeadings   = 10
	penaltyLowProse     = 10
	penaltyTooLong      = 5
	penaltyTitleTooLong = 5
	penaltySchema       = 10
	penaltyUnsupported  = 100
	minProseLines       = 10
)

var (
	h1Line        = regexp.MustCompile(`(?m)^#[ \t]+\S`)
	h2Line        = regexp.MustCompile(`(?m)^##[ \t]+\S`)
	h2OrH3Line    = regexp.MustCompile(`(?m)^#{2,3}[ \t]+\S`)
	headingPrefix = regexp.MustCompile(`^#{1,3}[ \t]`)

	sourcesHeading = regexp.MustCompile(`(?im)^#{1,3}[ \t]*(fontes?|referências?|referencias?|sources?|references?):?[ \t]*$`)
	sourcesBold    = regexp.MustCompile(`(?i)\*\*(fontes?|referências?|referencias?|sources?|references?):?\*\*`)

	transparencyNote = regexp.MustCompile(`(?im)(nota de transparência|transparency note|^#{1,3}[ \t]*transparência)`)

	citationMarker = regexp.MustCompile(`\[\d+\]`)

	genericHeading = regexp.MustCompile(`(?im)^##[ \t]+(introdução|introducao|introduction|desenvolvimento|conclusão|conclusao|conclusion|informações|informacoes)`)
)
