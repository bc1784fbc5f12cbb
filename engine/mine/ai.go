package mine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/UpkeepAI/upkeep-mvp/engine/domain"
)

// promptTextLimit caps how much manual text goes into the AI prompt.
const promptTextLimit = 4000

// Completer is the slice of the LLM client the AI miner needs.
type Completer interface {
	Enabled() bool
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Miner mines maintenance tasks, optionally consulting a language model.
// The LLM path is intentionally inert for now: the prompt is prepared so
// the integration point exists, but mined output always comes from the
// deterministic regex pass, credential or not.
type Miner struct {
	llm    Completer
	logger *slog.Logger
}

// NewMiner creates a Miner. A nil llm disables the AI path entirely.
func NewMiner(llm Completer, logger *slog.Logger) *Miner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Miner{llm: llm, logger: logger}
}

// Mine extracts maintenance tasks from manual text.
func (m *Miner) Mine(ctx context.Context, text, applianceType string) []domain.TaskCandidate {
	if m.llm != nil && m.llm.Enabled() {
		// AI extraction is prepared but not yet consumed; the regex
		// miner below remains the source of truth for results.
		_ = BuildPrompt(text, applianceType)
		m.logger.Debug("ai mining available, using regex miner", "appliance_type", applianceType)
	}
	return Mine(text)
}

// BuildPrompt renders the extraction prompt for the AI path: appliance
// type plus the leading slice of manual text, asking for name,
// description, frequency, duration, and difficulty per task.
func BuildPrompt(text, applianceType string) string {
	if applianceType == "" {
		applianceType = "Unknown"
	}
	if len(text) > promptTextLimit {
		text = text[:promptTextLimit]
	}
	return fmt.Sprintf(`Extract maintenance tasks from this appliance manual text.
For each maintenance task, provide:
1. Task name (short, clear)
2. Description
3. Frequency (daily, weekly, monthly, quarterly, semi-annual, annual, or as needed)
4. Estimated duration in minutes
5. Difficulty level (easy, medium, hard, or professional)

Appliance type: %s

Manual text:
%s

Return as a structured list. If no maintenance tasks found, return empty list.`, applianceType, text)
}
