package responseextractor

import (
	"errors"
	"fmt"
	"strings"

	"article-pipeline/internal/models"
)

var ErrMissingContent = errors.New("MISSING_CONTENT")

// DraftFromObject builds the typed draft for a recovered object. News and
// educational drafts must carry a non-empty string content field; resource
// objects are kept as-is in Raw.
func DraftFromObject(contentType models.ContentType, obj map[string]interface{}) (models.ArticleDraft, error) {
	draft := models.ArticleDraft{Raw: obj}

	switch contentType {
	case models.ContentTypeResource:
		draft.Title = stringField(obj, "name")
		draft.Category = stringField(obj, "category")
		draft.Tags = stringSlice(obj["tags"])
		return draft, nil
	case models.ContentTypeNews, models.ContentTypeEducational:
	default:
		return draft, fmt.Errorf("unsupported content type %q", contentType)
	}

	draft.Title = stringField(obj, "title")
	draft.Content = stringField(obj, "content")
	draft.Category = stringField(obj, "category")
	draft.Tags = stringSlice(obj["tags"])

	if contentType == models.ContentTypeNews {
		draft.Excerpt = stringField(obj, "excerpt")
		draft.Sentiment = stringField(obj, "sentiment")
	} else {
		draft.Description = stringField(obj, "description")
		draft.Level = stringField(obj, "level")
	}

	if strings.TrimSpace(draft.Content) == "" {
		return draft, fmt.Errorf("%w: %s draft has no content", ErrMissingContent, contentType)
	}
	return draft, nil
}

func stringField(obj map[string]interface{}, key string) string {
	s, _ := obj[key].(string)
	return s
}

func stringSlice(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}
