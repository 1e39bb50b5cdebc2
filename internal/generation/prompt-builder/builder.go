// internal/generation/prompt-builder/builder.go
package promptbuilder

import (
	"errors"
	"fmt"
	"strings"

	"article-pipeline/internal/models"
)

var ErrUnsupportedContentType = errors.New("UNSUPPORTED_CONTENT_TYPE")

var templates = map[models.ContentType]string{
	models.ContentTypeNews:        newsTemplate,
	models.ContentTypeEducational: educationalTemplate,
	models.ContentTypeResource:    resourceTemplate,
}

// Build renders the prompt for topic. The result depends only on its inputs.
func Build(topic string, contentType models.ContentType) (string, error) {
	tmpl, ok := templates[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedContentType, contentType)
	}
	return strings.ReplaceAll(tmpl, topicPlaceholder, topic) + outputContract, nil
}
