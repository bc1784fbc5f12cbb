// Package mine extracts recurring maintenance tasks from manual text.
// Extraction is deterministic regex mining over sentence units; an
// AI-assisted variant exists but defers to the regex miner for its
// actual output.
package mine

import (
	"regexp"
	"strings"

	"github.com/UpkeepAI/upkeep-mvp/engine/domain"
	"github.com/UpkeepAI/upkeep-mvp/pkg/fn"
)

// taskPatterns are the maintenance verb stems, tried in order per
// sentence; the first hit wins and the rest are skipped. Each requires a
// frequency word later in the same sentence.
var taskPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)clean[^.]*?(?:monthly|weekly|daily|quarterly|annually|yearly)`),
	regexp.MustCompile(`(?i)maintain[^.]*?(?:monthly|weekly|daily|quarterly|annually|yearly)`),
	regexp.MustCompile(`(?i)inspect[^.]*?(?:monthly|weekly|daily|quarterly|annually|yearly)`),
	regexp.MustCompile(`(?i)replace[^.]*?(?:monthly|weekly|daily|quarterly|annually|yearly)`),
	regexp.MustCompile(`(?i)filter[^.]*?(?:monthly|weekly|daily|quarterly|annually|yearly)`),
	regexp.MustCompile(`(?i)lubricat[^.]*?(?:monthly|weekly|daily|quarterly|annually|yearly)`),
}

// frequencyKeywords map sentence wording to the canonical recurrence
// classes. Priority order matters: the first keyword found in the
// sentence decides, and sentences whose trigger word is not in this
// list fall back to monthly.
var frequencyKeywords = []struct {
	word string
	freq domain.Frequency
}{
	{"daily", domain.FreqDaily},
	{"weekly", domain.FreqWeekly},
	{"monthly", domain.FreqMonthly},
	{"quarterly", domain.FreqQuarterly},
	{"semi-annual", domain.FreqSemiAnnual},
	{"semi annual", domain.FreqSemiAnnual},
	{"annually", domain.FreqAnnual},
	{"yearly", domain.FreqAnnual},
	{"year", domain.FreqAnnual},
}

var (
	sentenceSplit = regexp.MustCompile(`[.!?]\s+`)
	nameStrip     = regexp.MustCompile(`[^\w\s-]`)
)

const minSentenceLen = 20

// Mine scans free text for maintenance-relevant sentences and returns at
// most domain.MaxTasksPerManual candidates in order of first occurrence.
// Empty input yields an empty list.
func Mine(text string) []domain.TaskCandidate {
	var tasks []domain.TaskCandidate

	for _, sentence := range sentenceSplit.Split(text, -1) {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) < minSentenceLen {
			continue
		}

		for _, pattern := range taskPatterns {
			if !pattern.MatchString(sentence) {
				continue
			}
			tasks = append(tasks, domain.TaskCandidate{
				Name:                taskName(sentence),
				Description:         truncate(sentence, domain.MaxDescriptionLen),
				Frequency:           classifyFrequency(sentence),
				ExtractedFromManual: true,
			})
			break
		}
	}

	tasks = fn.UniqueBy(tasks, domain.TaskCandidate.DedupKey)
	if len(tasks) > domain.MaxTasksPerManual {
		tasks = tasks[:domain.MaxTasksPerManual]
	}
	return tasks
}

// classifyFrequency picks the first frequency keyword present in the
// sentence. Monthly is the default: a trigger pattern can match on a
// frequency word (e.g. a bare "year" inside "yearly") whose exact
// phrasing is not in the keyword list.
func classifyFrequency(sentence string) domain.Frequency {
	lower := strings.ToLower(sentence)
	for _, kw := range frequencyKeywords {
		if strings.Contains(lower, kw.word) {
			return kw.freq
		}
	}
	return domain.FreqMonthly
}

// taskName derives a short name: the first five words, truncated to 47
// chars plus "..." when over the 50-char cap, then stripped to word
// characters, spaces, and hyphens. An empty result falls back to
// "Maintenance Task".
func taskName(sentence string) string {
	words := strings.Fields(sentence)
	if len(words) > 5 {
		words = words[:5]
	}
	name := strings.Join(words, " ")
	if len(name) > domain.MaxTaskNameLen {
		name = name[:47] + "..."
	}
	name = strings.TrimSpace(nameStrip.ReplaceAllString(name, ""))
	if name == "" {
		return "Maintenance Task"
	}
	return name
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
