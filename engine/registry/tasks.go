package registry

import (
	"context"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/UpkeepAI/upkeep-mvp/engine/domain"
)

// TaskRecord is a persisted maintenance task attached to an appliance.
type TaskRecord struct {
	Name                string     `json:"name"`
	Description         string     `json:"description"`
	Frequency           string     `json:"frequency"`
	ExtractedFromManual bool       `json:"extracted_from_manual"`
	CreatedAt           time.Time  `json:"created_at"`
	NextDue             *time.Time `json:"next_due,omitempty"`
}

// SaveAppliance creates or updates an Appliance node.
func (s *Store) SaveAppliance(ctx context.Context, app domain.Appliance) error {
	sess := s.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	cypher := `MERGE (a:Appliance {id: $id}) SET a += $props`
	_, err := sess.Run(ctx, cypher, map[string]any{
		"id": app.ID,
		"props": map[string]any{
			"id":           app.ID,
			"name":         app.Name,
			"brand":        app.Brand,
			"model_number": app.ModelNumber,
			"type":         app.Type,
		},
	})
	return err
}

// UpsertTasks attaches task candidates to an appliance in one write
// transaction. A task is keyed by the lowercased name plus frequency, so
// re-running extraction for the same manual never duplicates tasks.
// Returns the number of tasks created (as opposed to matched).
func (s *Store) UpsertTasks(ctx context.Context, applianceID string, tasks []domain.TaskCandidate) (int, error) {
	if len(tasks) == 0 {
		return 0, nil
	}
	sess := s.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	now := time.Now().Unix()
	created, err := sess.ExecuteWrite(ctx, func(tx CypherRunner) (any, error) {
		var madeCount int64
		for _, t := range tasks {
			var nextDue any
			if due := t.Frequency.NextDue(time.Unix(now, 0)); !due.IsZero() {
				nextDue = due.Unix()
			}
			cypher := `MATCH (a:Appliance {id: $appliance_id})
			 MERGE (a)-[:HAS_TASK]->(t:Task {key: $key})
			 ON CREATE SET t.created_at = $now, t.made = true
			 ON MATCH SET t.made = false
			 SET t.name = $name,
			     t.description = $description,
			     t.frequency = $frequency,
			     t.extracted_from_manual = $extracted,
			     t.next_due = $next_due
			 RETURN t.made AS made`
			result, err := tx.Run(ctx, cypher, map[string]any{
				"appliance_id": applianceID,
				"key":          strings.ToLower(t.Name) + "|" + string(t.Frequency),
				"name":         t.Name,
				"description":  t.Description,
				"frequency":    string(t.Frequency),
				"extracted":    t.ExtractedFromManual,
				"now":          now,
				"next_due":     nextDue,
			})
			if err != nil {
				return nil, err
			}
			if result.Next(ctx) {
				if made, ok := result.Record().Get("made"); ok {
					if b, ok := made.(bool); ok && b {
						madeCount++
					}
				}
			}
		}
		return madeCount, nil
	})
	if err != nil {
		return 0, err
	}
	n, _ := created.(int64)
	return int(n), nil
}

// TasksFor returns the persisted tasks for an appliance.
func (s *Store) TasksFor(ctx context.Context, applianceID string) ([]TaskRecord, error) {
	sess := s.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	cypher := `MATCH (:Appliance {id: $id})-[:HAS_TASK]->(t:Task) RETURN t ORDER BY t.name`
	result, err := sess.Run(ctx, cypher, map[string]any{"id": applianceID})
	if err != nil {
		return nil, err
	}

	var records []TaskRecord
	for result.Next(ctx) {
		tVal, ok := result.Record().Get("t")
		if !ok {
			continue
		}
		node, ok := tVal.(dbtype.Node)
		if !ok {
			continue
		}
		records = append(records, taskRecordFromProps(node.Props))
	}
	return records, nil
}

func taskRecordFromProps(p map[string]any) TaskRecord {
	r := TaskRecord{
		Name:        strProp(p, "name"),
		Description: strProp(p, "description"),
		Frequency:   strProp(p, "frequency"),
	}
	if v, ok := p["extracted_from_manual"]; ok {
		if b, ok := v.(bool); ok {
			r.ExtractedFromManual = b
		}
	}
	if v, ok := p["created_at"]; ok {
		if ts, ok := v.(int64); ok {
			r.CreatedAt = time.Unix(ts, 0)
		}
	}
	if v, ok := p["next_due"]; ok {
		if ts, ok := v.(int64); ok {
			t := time.Unix(ts, 0)
			r.NextDue = &t
		}
	}
	return r
}
