package validation

// TopicMaxLength is the longest accepted topic, in characters.
const TopicMaxLength = 500

// GenerationRequestSchema validates the inbound request body. model accepts
// both tier names and their wire aliases.
var GenerationRequestSchema = MustCompile("generation-request", map[string]interface{}{
	"type":     "object",
	"required": []string{"topic", "type"},
	"properties": map[string]interface{}{
		"topic": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
			"maxLength": TopicMaxLength,
			"pattern":   `\S`,
		},
		"type": map[string]interface{}{
			"type": "string",
			"enum": []string{"news", "educational", "resource"},
		},
		"model": map[string]interface{}{
			"type": "string",
			"enum": []string{"", "base", "standard", "pro", "sonar-base", "sonar", "sonar-pro"},
		},
	},
})

var stringArray = map[string]interface{}{
	"type":  "array",
	"items": map[string]interface{}{"type": "string"},
}

// NewsDraftSchema describes the object a news prompt asks for. Only title and
// content are required; derivable fields may be absent.
var NewsDraftSchema = MustCompile("news-draft", map[string]interface{}{
	"type":     "object",
	"required": []string{"title", "content"},
	"properties": map[string]interface{}{
		"title":     map[string]interface{}{"type": "string"},
		"excerpt":   map[string]interface{}{"type": "string"},
		"content":   map[string]interface{}{"type": "string", "minLength": 1},
		"category":  map[string]interface{}{"type": "string"},
		"sentiment": map[string]interface{}{"type": "string", "enum": []string{"positive", "neutral", "negative"}},
		"tags":      stringArray,
	},
})

var EducationalDraftSchema = MustCompile("educational-draft", map[string]interface{}{
	"type":     "object",
	"required": []string{"title", "content"},
	"properties": map[string]interface{}{
		"title":       map[string]interface{}{"type": "string"},
		"description": map[string]interface{}{"type": "string"},
		"content":     map[string]interface{}{"type": "string", "minLength": 1},
		"category":    map[string]interface{}{"type": "string"},
		"level":       map[string]interface{}{"type": "string", "enum": []string{"iniciante", "intermediario", "avancado"}},
		"tags":        stringArray,
	},
})
