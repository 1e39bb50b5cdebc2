package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	apperrors "article-pipeline/internal/common/errors"
	"article-pipeline/internal/common/logger"
	completionclient "article-pipeline/internal/generation/completion-client"
	"article-pipeline/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test doubles
// ==========================

type fakeCompleter struct {
	mu        sync.Mutex
	text      string
	in, out   int
	citations []string
	err       error
	readyErr  error
	calls     int
	last      completionclient.Request
}

func (f *fakeCompleter) Ready() error { return f.readyErr }

func (f *fakeCompleter) Complete(ctx context.Context, req completionclient.Request) (*models.RawCompletion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.RawCompletion{
		Text:         f.text,
		InputTokens:  f.in,
		OutputTokens: f.out,
		Citations:    f.citations,
	}, nil
}

type captureRecorder struct {
	mu      sync.Mutex
	records []models.GenerationRecord
	err     error
}

func (c *captureRecorder) Record(ctx context.Context, rec models.GenerationRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, rec)
	return c.err
}

var editor = models.Principal{UserID: "user-1", Role: "EDITOR"}

func newOrchestrator(t *testing.T, completer Completer, recorders ...Recorder) *Orchestrator {
	return New(&Config{AllowedRoles: DefaultAllowedRoles, JobTimeout: time.Second}, Deps{
		Completer: completer,
		Recorders: recorders,
	}, logger.NewTestLogger(t))
}

func newsContent() string {
	headings := []string{"O Que Aconteceu", "Reação do Mercado", "Impacto Para Investidores", "Visão dos Analistas", "Próximos Passos"}
	var parts []string
	for _, h := range headings {
		parts = append(parts, "## "+h+"\n\n"+
			"A aprovação do ETF de Bitcoin movimentou o mercado nesta semana com forte volume.\n"+
			"Gestores institucionais ampliaram posições e a liquidez cresceu de forma consistente.\n"+
			"Analistas acompanham os fluxos diários para medir a demanda real pelo produto.")
	}
	return strings.Join(parts, "\n\n")
}

func newsJSON(t *testing.T) string {
	body, err := json.Marshal(map[string]interface{}{
		"title":     "SEC aprova ETF de Bitcoin à vista",
		"excerpt":   "A SEC aprovou o primeiro ETF de Bitcoin à vista.",
		"content":   newsContent(),
		"category":  "regulacao",
		"sentiment": "positive",
		"tags":      []string{"bitcoin", "etf", "sec"},
	})
	require.NoError(t, err)
	return string(body)
}

func codeOf(err error) apperrors.ErrorCode {
	return apperrors.Normalize(err).Code
}

// ==========================
// Scenarios
// ==========================

func TestExecute_NewsArticle(t *testing.T) {
	completer := &fakeCompleter{
		text:      "Aqui está o artigo:\n" + newsJSON(t) + "\nEspero que ajude.",
		in:        1200,
		out:       900,
		citations: []string{"https://www.sec.gov/news"},
	}
	rec := &captureRecorder{}
	o := newOrchestrator(t, completer, rec)

	result, err := o.Execute(context.Background(), editor, models.GenerationRequest{
		Topic:       "Bitcoin ETF approval",
		ContentType: models.ContentTypeNews,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Article)
	require.NotNil(t, result.Validation)

	article := result.Article
	assert.LessOrEqual(t, utf8.RuneCountInString(article.Title), 80)
	h2 := regexp.MustCompile(`(?m)^## `).FindAllString(article.Content, -1)
	assert.GreaterOrEqual(t, len(h2), 4)
	assert.LessOrEqual(t, len(h2), 7)
	assert.NotRegexp(t, `(?m)^# `, article.Content)
	assert.Contains(t, []string{"positive", "neutral", "negative"}, article.Sentiment)

	assert.Equal(t, "sec-aprova-etf-de-bitcoin-a-vista", article.Slug)
	assert.Equal(t, "A SEC aprovou o primeiro ETF de Bitcoin à vista.", article.Excerpt)
	assert.Equal(t, []string{"bitcoin", "etf", "sec"}, article.Tags)
	assert.Equal(t, []string{"https://www.sec.gov/news"}, article.Citations)
	assert.NotEmpty(t, article.ReadTime)

	assert.True(t, result.Validation.Passed, result.Validation.Errors)
	assert.Equal(t, models.ModelTierStandard, result.ModelTier)
	assert.Equal(t, models.ModelTierStandard, completer.last.Tier)
	assert.Contains(t, completer.last.Prompt, "Bitcoin ETF approval")

	require.Len(t, rec.records, 1)
	assert.True(t, rec.records[0].Success)
	assert.Equal(t, result.RequestID, rec.records[0].ID)
	assert.Equal(t, article.Slug, rec.records[0].Slug)
	assert.Equal(t, 1200, rec.records[0].Usage.InputTokens)
	require.NotNil(t, rec.records[0].ValidationScore)
}

func TestExecute_FencedResponseAtHeadingBoundary(t *testing.T) {
	completer := &fakeCompleter{
		text: "```json\n{\"title\":\"X\",\"content\":\"## A\\n\\n## B\\n\\n## C\\n\\n## D\"}\n```",
		in:   10,
		out:  10,
	}
	result, err := newOrchestrator(t, completer).Execute(context.Background(), editor, models.GenerationRequest{
		Topic:       "Ethereum",
		ContentType: models.ContentTypeNews,
	})
	require.NoError(t, err)

	assert.Equal(t, "X", result.Article.Title)
	assert.Equal(t, "## A\n\n## B\n\n## C\n\n## D", result.Article.Content)
	assert.False(t, result.Validation.Has(models.IssueTooFewSections))
	assert.False(t, result.Validation.Has(models.IssueTooManySections))
	assert.Empty(t, result.Article.Citations)
	assert.NotNil(t, result.Article.Citations)
}

func TestExecute_NoObjectInResponse(t *testing.T) {
	completer := &fakeCompleter{
		text: strings.Repeat("Desculpe, não posso gerar esse conteúdo agora. ", 20),
		in:   100,
		out:  40,
	}
	rec := &captureRecorder{}
	_, err := newOrchestrator(t, completer, rec).Execute(context.Background(), editor, models.GenerationRequest{
		Topic:       "Solana",
		ContentType: models.ContentTypeEducational,
	})
	require.Error(t, err)

	stdErr := apperrors.Normalize(err)
	assert.Equal(t, apperrors.ErrCodeParseFailed, stdErr.Code)
	assert.NotEmpty(t, stdErr.Debug)
	assert.LessOrEqual(t, utf8.RuneCountInString(stdErr.Debug), 200)
	assert.Equal(t, 500, stdErr.HTTPStatus())

	require.Len(t, rec.records, 1)
	assert.False(t, rec.records[0].Success)
	assert.Equal(t, "PARSE_FAILED", rec.records[0].ErrorCode)
	assert.Equal(t, 40, rec.records[0].Usage.OutputTokens)
}

func TestExecute_WhitespaceOnlyResponse(t *testing.T) {
	completer := &fakeCompleter{text: "   \n\t ", in: 50, out: 3}
	_, err := newOrchestrator(t, completer).Execute(context.Background(), editor, models.GenerationRequest{
		Topic:       "Solana",
		ContentType: models.ContentTypeNews,
	})
	require.Error(t, err)

	stdErr := apperrors.Normalize(err)
	assert.Equal(t, apperrors.ErrCodeParseFailed, stdErr.Code)
	assert.Equal(t, "   \n\t ", stdErr.Debug)
}

func TestExecute_ProTierCost(t *testing.T) {
	completer := &fakeCompleter{text: newsJSON(t), in: 1000, out: 500}
	result, err := newOrchestrator(t, completer).Execute(context.Background(), editor, models.GenerationRequest{
		Topic:       "Bitcoin halving",
		ContentType: models.ContentTypeNews,
		ModelTier:   "pro",
	})
	require.NoError(t, err)

	assert.Equal(t, 1000, result.Usage.InputTokens)
	assert.Equal(t, 500, result.Usage.OutputTokens)
	assert.InDelta(t, 0.0155, result.Usage.EstimatedCost, 1e-9)
	assert.Equal(t, models.ModelTierPro, completer.last.Tier)
}

// ==========================
// Gates
// ==========================

func TestExecute_GateOrder(t *testing.T) {
	tests := []struct {
		name      string
		principal models.Principal
		readyErr  error
		request   models.GenerationRequest
		want      apperrors.ErrorCode
	}{
		{
			name:      "role checked before configuration",
			principal: models.Principal{UserID: "u", Role: "VIEWER"},
			readyErr:  apperrors.NewConfigMissingError("PERPLEXITY_API_KEY"),
			request:   models.GenerationRequest{},
			want:      apperrors.ErrCodePermissionDenied,
		},
		{
			name:      "empty role",
			principal: models.Principal{UserID: "u"},
			request:   models.GenerationRequest{Topic: "x", ContentType: models.ContentTypeNews},
			want:      apperrors.ErrCodePermissionDenied,
		},
		{
			name:      "configuration checked before input",
			principal: editor,
			readyErr:  apperrors.NewConfigMissingError("PERPLEXITY_API_KEY"),
			request:   models.GenerationRequest{},
			want:      apperrors.ErrCodeConfigMissing,
		},
		{
			name:      "blank topic",
			principal: editor,
			request:   models.GenerationRequest{Topic: "   ", ContentType: models.ContentTypeNews},
			want:      apperrors.ErrCodeInputValidationFailed,
		},
		{
			name:      "topic too long",
			principal: editor,
			request:   models.GenerationRequest{Topic: strings.Repeat("a", 501), ContentType: models.ContentTypeNews},
			want:      apperrors.ErrCodeInputValidationFailed,
		},
		{
			name:      "unknown type",
			principal: editor,
			request:   models.GenerationRequest{Topic: "x", ContentType: "opinion"},
			want:      apperrors.ErrCodeInputValidationFailed,
		},
		{
			name:      "missing type",
			principal: editor,
			request:   models.GenerationRequest{Topic: "x"},
			want:      apperrors.ErrCodeInputValidationFailed,
		},
		{
			name:      "unknown model",
			principal: editor,
			request:   models.GenerationRequest{Topic: "x", ContentType: models.ContentTypeNews, ModelTier: "gpt-4"},
			want:      apperrors.ErrCodeInputValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := &fakeCompleter{readyErr: tt.readyErr, text: "{}"}
			rec := &captureRecorder{}
			_, err := newOrchestrator(t, completer, rec).Execute(context.Background(), tt.principal, tt.request)

			require.Error(t, err)
			assert.Equal(t, tt.want, codeOf(err))
			assert.Equal(t, 0, completer.calls)
			assert.Empty(t, rec.records)
		})
	}
}

func TestAdmit(t *testing.T) {
	tests := []struct {
		name      string
		principal models.Principal
		readyErr  error
		want      apperrors.ErrorCode
	}{
		{"editor with key", editor, nil, ""},
		{"viewer", models.Principal{UserID: "u", Role: "VIEWER"}, apperrors.NewConfigMissingError("PERPLEXITY_API_KEY"), apperrors.ErrCodePermissionDenied},
		{"editor without key", editor, apperrors.NewConfigMissingError("PERPLEXITY_API_KEY"), apperrors.ErrCodeConfigMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := &fakeCompleter{readyErr: tt.readyErr}
			err := newOrchestrator(t, completer).Admit(tt.principal)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.want, codeOf(err))
			assert.Equal(t, 0, completer.calls)
		})
	}
}

func TestExecute_TopicAtLimitAccepted(t *testing.T) {
	completer := &fakeCompleter{text: newsJSON(t)}
	topic := strings.Repeat("é", 500)
	_, err := newOrchestrator(t, completer).Execute(context.Background(), editor, models.GenerationRequest{
		Topic:       topic,
		ContentType: models.ContentTypeNews,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, completer.calls)
}

func TestExecute_ModelAliases(t *testing.T) {
	tests := []struct {
		model string
		want  models.ModelTier
	}{
		{"", models.ModelTierStandard},
		{"sonar-base", models.ModelTierBase},
		{"sonar", models.ModelTierStandard},
		{"sonar-pro", models.ModelTierPro},
		{"base", models.ModelTierBase},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			completer := &fakeCompleter{text: newsJSON(t)}
			result, err := newOrchestrator(t, completer).Execute(context.Background(), editor, models.GenerationRequest{
				Topic:       "Cardano",
				ContentType: models.ContentTypeNews,
				ModelTier:   models.ModelTier(tt.model),
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, completer.last.Tier)
			assert.Equal(t, tt.want, result.ModelTier)
		})
	}
}

// ==========================
// Variants and failures
// ==========================

func TestExecute_ResourcePassthrough(t *testing.T) {
	completer := &fakeCompleter{
		text:      `{"name":"MetaMask","category":"wallet","features":["swap","bridge"],"faq":[{"q":"É seguro?","a":"Sim."}]}`,
		in:        300,
		out:       700,
		citations: []string{"https://metamask.io"},
	}
	result, err := newOrchestrator(t, completer).Execute(context.Background(), editor, models.GenerationRequest{
		Topic:       "MetaMask",
		ContentType: models.ContentTypeResource,
	})
	require.NoError(t, err)

	assert.Nil(t, result.Article)
	assert.Nil(t, result.Validation)
	assert.Equal(t, "MetaMask", result.Resource["name"])
	assert.Equal(t, []interface{}{"swap", "bridge"}, result.Resource["features"])
	assert.Equal(t, []string{"https://metamask.io"}, result.Resource["citations"])
	assert.Equal(t, result.Resource, result.Data())
	assert.Empty(t, completionclient.RecencyFor(completer.last.ContentType))
}

func TestExecute_AdvisoryValidation(t *testing.T) {
	body, _ := json.Marshal(map[string]interface{}{
		"title":   "Curto",
		"content": "Só um parágrafo sem estrutura nenhuma.",
	})
	completer := &fakeCompleter{text: string(body)}

	result, err := newOrchestrator(t, completer).Execute(context.Background(), editor, models.GenerationRequest{
		Topic:       "Polkadot",
		ContentType: models.ContentTypeNews,
	})
	require.NoError(t, err)
	assert.False(t, result.Validation.Passed)
	assert.NotEmpty(t, result.Validation.Errors)
	assert.True(t, strings.HasPrefix(result.Article.Content, "## "))
}

func TestExecute_CleansContentBeforeValidation(t *testing.T) {
	content := "# SEC aprova ETF\n\n" + newsContent() + "\n\n## Fontes\n\n- https://www.sec.gov"
	body, _ := json.Marshal(map[string]interface{}{"title": "SEC aprova ETF", "content": content, "sentiment": "neutral"})

	result, err := newOrchestrator(t, &fakeCompleter{text: string(body)}).Execute(context.Background(), editor,
		models.GenerationRequest{Topic: "ETF", ContentType: models.ContentTypeNews})
	require.NoError(t, err)

	assert.NotContains(t, result.Article.Content, "# SEC aprova ETF")
	assert.NotContains(t, result.Article.Content, "Fontes")
	assert.False(t, result.Validation.Has(models.IssueH1Heading))
	assert.False(t, result.Validation.Has(models.IssueSourcesSection))
}

func TestExecute_MissingContentIsParseFailure(t *testing.T) {
	completer := &fakeCompleter{text: `{"title":"Sem conteúdo"}`}
	_, err := newOrchestrator(t, completer).Execute(context.Background(), editor, models.GenerationRequest{
		Topic:       "Aave",
		ContentType: models.ContentTypeEducational,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeParseFailed, codeOf(err))
}

func TestExecute_UpstreamErrorsPassThrough(t *testing.T) {
	upstream := apperrors.NewUpstreamFailedError(502, errors.New("bad gateway"))
	rec := &captureRecorder{}
	_, err := newOrchestrator(t, &fakeCompleter{err: upstream}, rec).Execute(context.Background(), editor,
		models.GenerationRequest{Topic: "Tron", ContentType: models.ContentTypeNews})

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUpstreamFailed, codeOf(err))
	require.Len(t, rec.records, 1)
	assert.Equal(t, "UPSTREAM_FAILED", rec.records[0].ErrorCode)
	assert.Zero(t, rec.records[0].Usage.EstimatedCost)
}

func TestExecute_RecorderFailureIsNotSurfaced(t *testing.T) {
	failing := &captureRecorder{err: errors.New("redis down")}
	second := &captureRecorder{}
	_, err := newOrchestrator(t, &fakeCompleter{text: newsJSON(t)}, failing, second).Execute(context.Background(), editor,
		models.GenerationRequest{Topic: "XRP", ContentType: models.ContentTypeNews})

	require.NoError(t, err)
	assert.Len(t, failing.records, 1)
	assert.Len(t, second.records, 1)
}

// ==========================
// Through the real completion client
// ==========================

func TestExecute_ThroughCompletionService(t *testing.T) {
	content := newsJSON(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, "sonar-pro", req["model"])
		assert.Equal(t, "day", req["search_recency_filter"])

		resp := map[string]interface{}{
			"choices":   []interface{}{map[string]interface{}{"message": map[string]interface{}{"role": "assistant", "content": "```json\n" + content + "\n```"}}},
			"usage":     map[string]interface{}{"prompt_tokens": 1000, "completion_tokens": 500},
			"citations": []string{"https://example.com/etf"},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := completionclient.New(&completionclient.Config{
		BaseURL:      server.URL,
		APIKey:       "key",
		Timeout:      5 * time.Second,
		SystemPrompt: "system",
	}, logger.NewTestLogger(t))

	result, err := newOrchestrator(t, client).Execute(context.Background(), editor, models.GenerationRequest{
		Topic:       "Bitcoin ETF approval",
		ContentType: models.ContentTypeNews,
		ModelTier:   "sonar-pro",
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.0155, result.Usage.EstimatedCost, 1e-9)
	assert.Equal(t, []string{"https://example.com/etf"}, result.Article.Citations)
	assert.True(t, result.Validation.Passed, fmt.Sprint(result.Validation.Errors))
}

func TestConfig_RoleAllowed(t *testing.T) {
	cfg := &Config{AllowedRoles: DefaultAllowedRoles}
	assert.True(t, cfg.RoleAllowed("ADMIN"))
	assert.True(t, cfg.RoleAllowed("editor"))
	assert.False(t, cfg.RoleAllowed("VIEWER"))
	assert.False(t, cfg.RoleAllowed(""))
}
