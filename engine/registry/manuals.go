package registry

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// Manual lifecycle statuses.
const (
	StatusFound     = "found"
	StatusFetched   = "fetched"
	StatusExtracted = "extracted"
	StatusFailed    = "failed"
)

// ManualRecord represents a discovered appliance manual PDF.
type ManualRecord struct {
	ID            string     `json:"id"`
	URL           string     `json:"url"`
	SourceSite    string     `json:"source_site"`
	Brand         string     `json:"brand"`
	ModelNumber   string     `json:"model_number"`
	ApplianceID   string     `json:"appliance_id"`
	ApplianceType string     `json:"appliance_type"`
	Title         string     `json:"title"`
	Note          string     `json:"note,omitempty"`
	FileSize      int64      `json:"file_size"`
	DiscoveredAt  time.Time  `json:"discovered_at"`
	FetchedAt     *time.Time `json:"fetched_at,omitempty"`
	ExtractedAt   *time.Time `json:"extracted_at,omitempty"`
	LocalPath     string     `json:"local_path,omitempty"`
	TaskCount     int        `json:"task_count"`
	Status        string     `json:"status"`
	Error         string     `json:"error,omitempty"`
}

// ManualFilter specifies criteria for finding manuals.
type ManualFilter struct {
	Brand       string
	ModelNumber string
	Status      string
}

// ManualStats holds aggregate counts for manual records.
type ManualStats struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
	BySource map[string]int `json:"by_source"`
}

// ManualRecordID produces a deterministic ID from a URL.
func ManualRecordID(url string) string {
	h := sha256.Sum256([]byte(url))
	return fmt.Sprintf("%x", h[:16])
}

// SaveManual creates or updates a ManualRecord node.
func (s *Store) SaveManual(ctx context.Context, m ManualRecord) error {
	sess := s.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	props := map[string]any{
		"id":             m.ID,
		"url":            m.URL,
		"source_site":    m.SourceSite,
		"brand":          m.Brand,
		"model_number":   m.ModelNumber,
		"appliance_id":   m.ApplianceID,
		"appliance_type": m.ApplianceType,
		"title":          m.Title,
		"note":           m.Note,
		"file_size":      m.FileSize,
		"discovered_at":  m.DiscoveredAt.Unix(),
		"local_path":     m.LocalPath,
		"task_count":     m.TaskCount,
		"status":         m.Status,
		"error":          m.Error,
	}
	if m.FetchedAt != nil {
		props["fetched_at"] = m.FetchedAt.Unix()
	}
	if m.ExtractedAt != nil {
		props["extracted_at"] = m.ExtractedAt.Unix()
	}

	cypher := `MERGE (n:ManualRecord {id: $id}) SET n += $props`
	_, err := sess.Run(ctx, cypher, map[string]any{"id": m.ID, "props": props})
	return err
}

// UpdateManualStatus updates the status and error fields of a manual record.
func (s *Store) UpdateManualStatus(ctx context.Context, id, status, errMsg string) error {
	sess := s.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	cypher := `MATCH (n:ManualRecord {id: $id}) SET n.status = $status, n.error = $error`
	_, err := sess.Run(ctx, cypher, map[string]any{"id": id, "status": status, "error": errMsg})
	return err
}

// FindManuals returns manuals matching the given filter.
func (s *Store) FindManuals(ctx context.Context, f ManualFilter) ([]ManualRecord, error) {
	sess := s.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	where := "WHERE 1=1"
	params := map[string]any{}
	if f.Brand != "" {
		where += " AND n.brand = $brand"
		params["brand"] = f.Brand
	}
	if f.ModelNumber != "" {
		where += " AND n.model_number = $model_number"
		params["model_number"] = f.ModelNumber
	}
	if f.Status != "" {
		where += " AND n.status = $status"
		params["status"] = f.Status
	}

	cypher := fmt.Sprintf("MATCH (n:ManualRecord) %s RETURN n", where)
	result, err := sess.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	return collectManualRecords(ctx, result)
}

// PendingExtraction returns manuals with status "fetched" up to the limit.
func (s *Store) PendingExtraction(ctx context.Context, limit int) ([]ManualRecord, error) {
	sess := s.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	cypher := `MATCH (n:ManualRecord {status: "fetched"}) RETURN n LIMIT $limit`
	result, err := sess.Run(ctx, cypher, map[string]any{"limit": limit})
	if err != nil {
		return nil, err
	}
	return collectManualRecords(ctx, result)
}

// ManualStats returns aggregate counts for manual records.
func (s *Store) ManualStats(ctx context.Context) (ManualStats, error) {
	sess := s.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	stats := ManualStats{
		ByStatus: make(map[string]int),
		BySource: make(map[string]int),
	}

	cypher := `MATCH (n:ManualRecord) RETURN n.status AS status, count(n) AS cnt`
	result, err := sess.Run(ctx, cypher, nil)
	if err != nil {
		return stats, err
	}
	for result.Next(ctx) {
		rec := result.Record()
		st, _ := rec.Get("status")
		c, _ := rec.Get("cnt")
		if status, ok := st.(string); ok {
			if cnt, ok := c.(int64); ok {
				stats.ByStatus[status] = int(cnt)
				stats.Total += int(cnt)
			}
		}
	}

	cypher = `MATCH (n:ManualRecord) RETURN n.source_site AS src, count(n) AS cnt`
	result, err = sess.Run(ctx, cypher, nil)
	if err != nil {
		return stats, err
	}
	for result.Next(ctx) {
		rec := result.Record()
		sv, _ := rec.Get("src")
		c, _ := rec.Get("cnt")
		if src, ok := sv.(string); ok {
			if cnt, ok := c.(int64); ok {
				stats.BySource[src] = int(cnt)
			}
		}
	}

	return stats, nil
}

func collectManualRecords(ctx context.Context, result CypherResult) ([]ManualRecord, error) {
	var records []ManualRecord
	for result.Next(ctx) {
		nVal, ok := result.Record().Get("n")
		if !ok {
			continue
		}
		node, ok := nVal.(dbtype.Node)
		if !ok {
			continue
		}
		records = append(records, manualRecordFromProps(node.Props))
	}
	return records, nil
}

func manualRecordFromProps(p map[string]any) ManualRecord {
	m := ManualRecord{
		ID:            strProp(p, "id"),
		URL:           strProp(p, "url"),
		SourceSite:    strProp(p, "source_site"),
		Brand:         strProp(p, "brand"),
		ModelNumber:   strProp(p, "model_number"),
		ApplianceID:   strProp(p, "appliance_id"),
		ApplianceType: strProp(p, "appliance_type"),
		Title:         strProp(p, "title"),
		Note:          strProp(p, "note"),
		LocalPath:     strProp(p, "local_path"),
		Status:        strProp(p, "status"),
		Error:         strProp(p, "error"),
	}
	if v, ok := p["file_size"]; ok {
		if fs, ok := v.(int64); ok {
			m.FileSize = fs
		}
	}
	if v, ok := p["task_count"]; ok {
		if tc, ok := v.(int64); ok {
			m.TaskCount = int(tc)
		}
	}
	if v, ok := p["discovered_at"]; ok {
		if ts, ok := v.(int64); ok {
			m.DiscoveredAt = time.Unix(ts, 0)
		}
	}
	if v, ok := p["fetched_at"]; ok {
		if ts, ok := v.(int64); ok {
			t := time.Unix(ts, 0)
			m.FetchedAt = &t
		}
	}
	if v, ok := p["extracted_at"]; ok {
		if ts, ok := v.(int64); ok {
			t := time.Unix(ts, 0)
			m.ExtractedAt = &t
		}
	}
	return m
}

func strProp(props map[string]any, key string) string {
	if v, ok := props[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
