package mine

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/UpkeepAI/upkeep-mvp/engine/domain"
)

func TestMineEmptyInput(t *testing.T) {
	if got := Mine(""); len(got) != 0 {
		t.Errorf("Mine(\"\") = %d tasks, want 0", len(got))
	}
}

func TestMineFrequencySequence(t *testing.T) {
	text := "Clean the filter monthly. Inspect coils quarterly. Replace filter annually."

	tasks := Mine(text)
	if len(tasks) != 3 {
		t.Fatalf("got %d tasks, want 3", len(tasks))
	}
	want := []domain.Frequency{domain.FreqMonthly, domain.FreqQuarterly, domain.FreqAnnual}
	for i, f := range want {
		if tasks[i].Frequency != f {
			t.Errorf("task %d frequency = %s, want %s", i, tasks[i].Frequency, f)
		}
		if !tasks[i].ExtractedFromManual {
			t.Errorf("task %d not marked as extracted", i)
		}
	}
}

func TestMineDeterministicAndCapped(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&b, "Clean compartment number %02d each monthly. ", i)
	}
	text := b.String()

	first := Mine(text)
	second := Mine(text)

	if len(first) != domain.MaxTasksPerManual {
		t.Errorf("got %d tasks, want cap %d", len(first), domain.MaxTasksPerManual)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated mining of identical input differs")
	}
}

func TestMineDedupesIdenticalSentences(t *testing.T) {
	text := "Clean the filter monthly. Clean the filter monthly. Clean the filter monthly."

	tasks := Mine(text)
	if len(tasks) != 1 {
		t.Fatalf("got %d tasks, want 1", len(tasks))
	}
	if tasks[0].Frequency != domain.FreqMonthly {
		t.Errorf("frequency = %s", tasks[0].Frequency)
	}
}

func TestMineSkipsShortSentences(t *testing.T) {
	// Under the minimum sentence length even though the pattern matches.
	if got := Mine("Clean it monthly. "); len(got) != 0 {
		t.Errorf("short sentence produced %d tasks", len(got))
	}
}

func TestMineIgnoresUnrelatedText(t *testing.T) {
	text := "Congratulations on your purchase. This appliance was designed in Sweden. Enjoy the product."
	if got := Mine(text); len(got) != 0 {
		t.Errorf("unrelated text produced %d tasks", len(got))
	}
}

func TestMinedNamesPassValidation(t *testing.T) {
	text := "Clean the supercalifragilisticexpialidocious refrigerator condenser assembly thoroughly every single monthly. " +
		"Inspect door gasket seals weekly. Lubricate the fan motor bearing yearly."

	for _, task := range Mine(text) {
		if err := domain.ValidateTaskCandidate(task); err != nil {
			t.Errorf("mined task %q fails validation: %v", task.Name, err)
		}
	}
}

func TestTaskNameTruncation(t *testing.T) {
	sentence := "Clean aaaaaaaaaaaaaaaaaaaaaaaaa bbbbbbbbbbbbbbbbbbbbbbbbb ccccc monthly"
	name := taskName(sentence)
	if len(name) > domain.MaxTaskNameLen {
		t.Errorf("name %q exceeds %d chars", name, domain.MaxTaskNameLen)
	}
	if strings.Contains(name, ".") {
		t.Errorf("name %q carries punctuation", name)
	}
}

func TestTaskNameFallback(t *testing.T) {
	if got := taskName("!!! ??? ..."); got != "Maintenance Task" {
		t.Errorf("fallback name = %q", got)
	}
}

func TestClassifyFrequency(t *testing.T) {
	tests := []struct {
		sentence string
		want     domain.Frequency
	}{
		{"clean the lint trap daily", domain.FreqDaily},
		{"inspect hoses weekly", domain.FreqWeekly},
		{"replace the water filter monthly", domain.FreqMonthly},
		{"clean condenser coils quarterly", domain.FreqQuarterly},
		{"descale semi-annually", domain.FreqSemiAnnual},
		{"service the compressor annually", domain.FreqAnnual},
		{"replace anode rod every year", domain.FreqAnnual},
		{"clean as required", domain.FreqMonthly}, // default
	}
	for _, tc := range tests {
		if got := classifyFrequency(tc.sentence); got != tc.want {
			t.Errorf("classifyFrequency(%q) = %s, want %s", tc.sentence, got, tc.want)
		}
	}
}
