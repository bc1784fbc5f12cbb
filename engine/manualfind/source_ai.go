package manualfind

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/UpkeepAI/upkeep-mvp/engine/domain"
)

// SupportPageNote marks results pointing at a manufacturer support page
// rather than a direct PDF. Callers must not download these.
const SupportPageNote = "manufacturer support page, not a direct manual link"

// Completer is the slice of the LLM client the AI source needs.
type Completer interface {
	Enabled() bool
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// AISource asks a language model for a manual URL. The model is prompted
// for a constrained JSON shape; anything it returns is treated as
// untrusted and revalidated before use.
type AISource struct {
	llm Completer
}

// NewAISource creates the AI-assisted lookup strategy.
func NewAISource(llm Completer) *AISource {
	return &AISource{llm: llm}
}

func (s *AISource) Name() string { return "ai" }

type aiManualAnswer struct {
	PrimaryURL             string   `json:"primary_url"`
	AlternativeURLs        []string `json:"alternative_urls"`
	ManufacturerSupportURL string   `json:"manufacturer_support_url"`
	Confidence             float64  `json:"confidence"`
}

const aiSystemPrompt = "You locate official appliance user manuals. Respond with JSON only."

func (s *AISource) Find(ctx context.Context, app domain.Appliance) (domain.SearchResult, error) {
	var zero domain.SearchResult
	if s.llm == nil || !s.llm.Enabled() {
		return zero, fmt.Errorf("ai source: not configured")
	}

	prompt := fmt.Sprintf(
		`Find the official user manual PDF for this appliance:
Brand: %s
Model number: %s
Appliance: %s

Respond with a JSON object:
{"primary_url": "<direct PDF URL or empty>", "alternative_urls": ["<other candidate PDF URLs>"], "manufacturer_support_url": "<support page URL or empty>", "confidence": <0.0-1.0>}`,
		app.Brand, app.ModelNumber, app.Name)

	raw, err := s.llm.Complete(ctx, aiSystemPrompt, prompt)
	if err != nil {
		return zero, fmt.Errorf("ai source: %w", err)
	}

	answer, err := parseAIAnswer(raw)
	if err != nil {
		return zero, fmt.Errorf("ai source: %w", err)
	}

	if AcceptPDFURL(answer.PrimaryURL) {
		return domain.SearchResult{URL: answer.PrimaryURL, Title: defaultTitle(app)}, nil
	}
	for _, alt := range answer.AlternativeURLs {
		if AcceptPDFURL(alt) {
			return domain.SearchResult{URL: alt, Title: defaultTitle(app)}, nil
		}
	}
	if plausibleURL(answer.ManufacturerSupportURL) {
		return domain.SearchResult{
			URL:   answer.ManufacturerSupportURL,
			Title: defaultTitle(app),
			Note:  SupportPageNote,
		}, nil
	}

	return zero, fmt.Errorf("ai source: no usable url in answer")
}

// parseAIAnswer tolerates prose wrapping by extracting the first balanced
// {...} block before unmarshalling.
func parseAIAnswer(raw string) (aiManualAnswer, error) {
	var answer aiManualAnswer
	block := firstJSONObject(raw)
	if block == "" {
		return answer, fmt.Errorf("no json object in completion")
	}
	if err := json.Unmarshal([]byte(block), &answer); err != nil {
		return answer, fmt.Errorf("decode completion: %w", err)
	}
	return answer, nil
}

// firstJSONObject returns the first balanced top-level {...} block, or ""
// when none closes. String contents are skipped so braces inside values
// do not confuse the depth count.
func firstJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
