// internal/generation/metadata-deriver/deriver.go
package metadataderiver

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"article-pipeline/internal/models"
)

const (
	WordsPerMinute   = 200
	ExcerptMaxLength = 200
	TitleMaxLength   = 80
	MaxTags          = 5

	minParagraphLength  = 20
	maxExcerptSentences = 3
	minTagLength        = 4
)

var headingLine = regexp.MustCompile(`(?m)^#{1,6}[ \t]+.*$`)

// Title trims title to TitleMaxLength characters, cutting at the last word
// boundary when there is one.
func Title(title string) string {
	title = strings.Join(strings.Fields(title), " ")
	if utf8.RuneCountInString(title) <= TitleMaxLength {
		return title
	}
	cut := string([]rune(title)[:TitleMaxLength])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,;:-")
}

// Derive fills slug, excerpt, read time and tags for a news or educational
// draft. Values supplied by the model win over derived ones.
func Derive(draft models.ArticleDraft, contentType models.ContentType, citations []string) models.EnrichedDraft {
	title := Title(draft.Title)
	out := models.EnrichedDraft{
		Title:     title,
		Slug:      Slug(title),
		Content:   draft.Content,
		Category:  draft.Category,
		ReadTime:  ReadTime(draft.Content),
		Citations: citations,
	}
	if out.Citations == nil {
		out.Citations = []string{}
	}

	switch contentType {
	case models.ContentTypeNews:
		out.Excerpt = firstNonBlank(draft.Excerpt, Excerpt(draft.Content))
		out.Sentiment = draft.Sentiment
	case models.ContentTypeEducational:
		out.Excerpt = firstNonBlank(draft.Description, Excerpt(draft.Content))
		out.Level = draft.Level
	default:
		out.Excerpt = Excerpt(draft.Content)
	}

	if len(draft.Tags) > 0 {
		out.Tags = append([]string(nil), draft.Tags...)
	} else {
		out.Tags = Tags(draft.Content)
	}
	return out
}

// Excerpt takes up to three sentences of the first substantial paragraph
// within ExcerptMaxLength characters. An over-long first sentence is cut at a
// word boundary and suffixed with "...".
func Excerpt(content string) string {
	withoutHeadings := headingLine.ReplaceAllString(content, "")

	var paragraph string
	for _, p := range strings.Split(withoutHeadings, "\n\n") {
		p = strings.Join(strings.Fields(p), " ")
		if utf8.RuneCountInString(p) > minParagraphLength {
			paragraph = p
			break
		}
	}
	if paragraph == "" {
		return ""
	}
	if utf8.RuneCountInString(paragraph) <= ExcerptMaxLength {
		sentences := splitSentences(paragraph)
		if len(sentences) <= maxExcerptSentences {
			return paragraph
		}
	}

	var excerpt string
	for i, s := range splitSentences(paragraph) {
		if i == maxExcerptSentences {
			break
		}
		candidate := s
		if excerpt != "" {
			candidate = excerpt + " " + s
		}
		if utf8.RuneCountInString(candidate) > ExcerptMaxLength {
			break
		}
		excerpt = candidate
	}
	if excerpt != "" {
		return excerpt
	}
	return truncateAtWord(paragraph, ExcerptMaxLength) + "..."
}

func splitSentences(paragraph string) []string {
	var sentences []string
	start := 0
	rs := []rune(paragraph)
	for i, r := range rs {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(rs) && !unicode.IsSpace(rs[i+1]) {
			continue
		}
		if s := strings.TrimSpace(string(rs[start : i+1])); s != "" {
			sentences = append(sentences, s)
		}
		start = i + 1
	}
	if tail := strings.TrimSpace(string(rs[start:])); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

func truncateAtWord(s string, limit int) string {
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	cut := string(rs[:limit])
	if i := strings.LastIndexFunc(cut, unicode.IsSpace); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRightFunc(cut, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
}

// ReadTime estimates reading time at WordsPerMinute, never below one minute.
func ReadTime(content string) string {
	words := len(strings.Fields(content))
	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min", minutes)
}

// Tags ranks significant words by frequency, breaking ties alphabetically.
func Tags(content string) []string {
	counts := make(map[string]int)
	words := strings.FieldsFunc(strings.ToLower(content), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if utf8.RuneCountInString(w) < minTagLength || isNumeric(w) {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		counts[w]++
	}

	tags := make([]string, 0, len(counts))
	for w := range counts {
		tags = append(tags, w)
	}
	sort.Slice(tags, func(i, j int) bool {
		if counts[tags[i]] != counts[tags[j]] {
			return counts[tags[i]] > counts[tags[j]]
		}
		return tags[i] < tags[j]
	})
	if len(tags) > MaxTags {
		tags = tags[:MaxTags]
	}
	return tags
}

func isNumeric(w string) bool {
	for _, r := range w {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

var stopwords = toSet(
	// pt-BR
	"para", "como", "mais", "pelo", "pela", "pelos", "pelas", "este", "esta", "estes", "estas",
	"esse", "essa", "esses", "essas", "isso", "isto", "aquele", "aquela", "sobre", "entre",
	"quando", "onde", "também", "muito", "muitos", "muita", "muitas", "ainda", "apenas", "desde",
	"após", "antes", "depois", "seus", "suas", "dele", "dela", "eles", "elas", "nosso", "nossa",
	"qual", "quais", "mesmo", "mesma", "porque", "pois", "cada", "outro", "outra", "outros",
	"outras", "todo", "toda", "todos", "todas", "sendo", "será", "serão", "foram", "está",
	"estão", "pode", "podem", "havia", "fazer", "segundo", "além", "porém", "contudo", "assim",
	"então", "numa", "nessa", "nesse", "neste", "nesta", "desta", "deste", "dessa", "desse",
	"seja", "sejam", "umas", "tinha", "tendo", "houve", "fosse",
	// en
	"that", "this", "with", "from", "have", "been", "were", "which", "their", "there", "about",
	"into", "than", "then", "they", "will", "would", "could", "should", "these", "those", "your",
	"more", "also", "such", "some", "what", "when", "where", "while", "over", "only", "other",
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
