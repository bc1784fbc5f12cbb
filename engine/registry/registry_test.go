package registry

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/UpkeepAI/upkeep-mvp/engine/domain"
)

type runCall struct {
	cypher string
	params map[string]any
}

type fakeResult struct {
	records []*db.Record
	idx     int
}

func (r *fakeResult) Next(context.Context) bool {
	if r.idx >= len(r.records) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeResult) Record() *db.Record { return r.records[r.idx-1] }

func record(keys []string, values []any) *db.Record {
	return &db.Record{Keys: keys, Values: values}
}

// fakeSession records every statement and replays canned results in
// order, one result per Run call.
type fakeSession struct {
	calls   []runCall
	results []*fakeResult
	closed  bool
}

func (s *fakeSession) Run(_ context.Context, cypher string, params map[string]any) (CypherResult, error) {
	s.calls = append(s.calls, runCall{cypher: cypher, params: params})
	if len(s.results) == 0 {
		return &fakeResult{}, nil
	}
	res := s.results[0]
	s.results = s.results[1:]
	return res, nil
}

func (s *fakeSession) ExecuteWrite(ctx context.Context, work func(tx CypherRunner) (any, error)) (any, error) {
	return work(s)
}

func (s *fakeSession) Close(context.Context) error {
	s.closed = true
	return nil
}

type fakeOpener struct {
	session *fakeSession
	opened  int
}

func (o *fakeOpener) OpenSession(context.Context) CypherSession {
	o.opened++
	return o.session
}

func newFakeStore(results ...*fakeResult) (*Store, *fakeSession) {
	sess := &fakeSession{results: results}
	return NewWithOpener(&fakeOpener{session: sess}), sess
}

func TestManualRecordID(t *testing.T) {
	id := ManualRecordID("https://example.com/manual.pdf")
	if len(id) != 32 {
		t.Errorf("id length = %d, want 32", len(id))
	}
	if id != ManualRecordID("https://example.com/manual.pdf") {
		t.Error("same URL produced different IDs")
	}
	if id == ManualRecordID("https://example.com/other.pdf") {
		t.Error("distinct URLs collided")
	}
}

func TestSaveManual(t *testing.T) {
	store, sess := newFakeStore()
	m := ManualRecord{
		ID:           ManualRecordID("https://example.com/m.pdf"),
		URL:          "https://example.com/m.pdf",
		SourceSite:   "example.com",
		Brand:        "Bosch",
		ModelNumber:  "SHP65T55UC",
		DiscoveredAt: time.Unix(1700000000, 0),
		Status:       StatusFound,
	}
	if err := store.SaveManual(context.Background(), m); err != nil {
		t.Fatalf("SaveManual: %v", err)
	}
	if len(sess.calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(sess.calls))
	}
	call := sess.calls[0]
	if !strings.Contains(call.cypher, "MERGE (n:ManualRecord {id: $id})") {
		t.Errorf("cypher = %q", call.cypher)
	}
	props := call.params["props"].(map[string]any)
	if props["brand"] != "Bosch" || props["status"] != StatusFound {
		t.Errorf("props = %v", props)
	}
	if props["discovered_at"] != int64(1700000000) {
		t.Errorf("discovered_at = %v", props["discovered_at"])
	}
	if _, ok := props["fetched_at"]; ok {
		t.Error("fetched_at set for never-fetched manual")
	}
	if !sess.closed {
		t.Error("session left open")
	}
}

func TestUpdateManualStatus(t *testing.T) {
	store, sess := newFakeStore()
	if err := store.UpdateManualStatus(context.Background(), "abc", StatusFailed, "timeout"); err != nil {
		t.Fatalf("UpdateManualStatus: %v", err)
	}
	p := sess.calls[0].params
	if p["id"] != "abc" || p["status"] != StatusFailed || p["error"] != "timeout" {
		t.Errorf("params = %v", p)
	}
}

func TestFindManualsFilter(t *testing.T) {
	node := dbtype.Node{Props: map[string]any{
		"id": "m1", "url": "https://example.com/m.pdf", "brand": "LG",
		"status": StatusFetched, "discovered_at": int64(1700000000),
		"file_size": int64(2048), "task_count": int64(3),
	}}
	store, sess := newFakeStore(&fakeResult{records: []*db.Record{
		record([]string{"n"}, []any{node}),
	}})

	got, err := store.FindManuals(context.Background(), ManualFilter{Brand: "LG", Status: StatusFetched})
	if err != nil {
		t.Fatalf("FindManuals: %v", err)
	}

	cypher := sess.calls[0].cypher
	if !strings.Contains(cypher, "AND n.brand = $brand") || !strings.Contains(cypher, "AND n.status = $status") {
		t.Errorf("cypher = %q", cypher)
	}
	if strings.Contains(cypher, "model_number") {
		t.Error("unset filter leaked into cypher")
	}

	if len(got) != 1 {
		t.Fatalf("records = %d, want 1", len(got))
	}
	m := got[0]
	if m.ID != "m1" || m.Brand != "LG" || m.FileSize != 2048 || m.TaskCount != 3 {
		t.Errorf("record = %+v", m)
	}
	if m.DiscoveredAt.Unix() != 1700000000 {
		t.Errorf("DiscoveredAt = %v", m.DiscoveredAt)
	}
}

func TestPendingExtraction(t *testing.T) {
	store, sess := newFakeStore(&fakeResult{})
	if _, err := store.PendingExtraction(context.Background(), 25); err != nil {
		t.Fatalf("PendingExtraction: %v", err)
	}
	call := sess.calls[0]
	if !strings.Contains(call.cypher, `{status: "fetched"}`) {
		t.Errorf("cypher = %q", call.cypher)
	}
	if call.params["limit"] != 25 {
		t.Errorf("limit = %v", call.params["limit"])
	}
}

func TestManualStats(t *testing.T) {
	store, _ := newFakeStore(
		&fakeResult{records: []*db.Record{
			record([]string{"status", "cnt"}, []any{"found", int64(4)}),
			record([]string{"status", "cnt"}, []any{"extracted", int64(2)}),
		}},
		&fakeResult{records: []*db.Record{
			record([]string{"src", "cnt"}, []any{"manualslib.com", int64(5)}),
		}},
	)

	stats, err := store.ManualStats(context.Background())
	if err != nil {
		t.Fatalf("ManualStats: %v", err)
	}
	if stats.Total != 6 {
		t.Errorf("Total = %d, want 6", stats.Total)
	}
	if stats.ByStatus["found"] != 4 || stats.ByStatus["extracted"] != 2 {
		t.Errorf("ByStatus = %v", stats.ByStatus)
	}
	if stats.BySource["manualslib.com"] != 5 {
		t.Errorf("BySource = %v", stats.BySource)
	}
}

func TestUpsertTasksCountsCreated(t *testing.T) {
	made := func(b bool) *fakeResult {
		return &fakeResult{records: []*db.Record{record([]string{"made"}, []any{b})}}
	}
	store, sess := newFakeStore(made(true), made(false), made(true))

	tasks := []domain.TaskCandidate{
		{Name: "Clean Lint Filter", Frequency: domain.FreqMonthly, ExtractedFromManual: true},
		{Name: "Inspect vent hose", Frequency: domain.FreqAnnual},
		{Name: "Wipe door seal", Frequency: domain.FreqWeekly},
	}
	created, err := store.UpsertTasks(context.Background(), "app-1", tasks)
	if err != nil {
		t.Fatalf("UpsertTasks: %v", err)
	}
	if created != 2 {
		t.Errorf("created = %d, want 2", created)
	}
	if len(sess.calls) != 3 {
		t.Fatalf("calls = %d, want 3", len(sess.calls))
	}
	if key := sess.calls[0].params["key"]; key != "clean lint filter|monthly" {
		t.Errorf("key = %v", key)
	}
	if sess.calls[0].params["extracted"] != true {
		t.Error("extracted flag dropped")
	}
}

func TestUpsertTasksEmpty(t *testing.T) {
	opener := &fakeOpener{session: &fakeSession{}}
	store := NewWithOpener(opener)
	created, err := store.UpsertTasks(context.Background(), "app-1", nil)
	if err != nil || created != 0 {
		t.Errorf("created = %d, err = %v", created, err)
	}
	if opener.opened != 0 {
		t.Error("session opened for empty task list")
	}
}

func TestTasksFor(t *testing.T) {
	due := time.Now().AddDate(0, 1, 0).Unix()
	node := dbtype.Node{Props: map[string]any{
		"name": "Clean lint filter", "frequency": "monthly",
		"extracted_from_manual": true, "created_at": int64(1700000000),
		"next_due": due,
	}}
	store, _ := newFakeStore(&fakeResult{records: []*db.Record{
		record([]string{"t"}, []any{node}),
	}})

	got, err := store.TasksFor(context.Background(), "app-1")
	if err != nil {
		t.Fatalf("TasksFor: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("records = %d", len(got))
	}
	r := got[0]
	if r.Name != "Clean lint filter" || r.Frequency != "monthly" || !r.ExtractedFromManual {
		t.Errorf("record = %+v", r)
	}
	if r.NextDue == nil || r.NextDue.Unix() != due {
		t.Errorf("NextDue = %v", r.NextDue)
	}
}
