// Package registry persists discovered manuals and extracted maintenance
// tasks in Neo4j. Manual nodes track a lifecycle (found, fetched,
// extracted, failed) so batch workers can resume where an earlier run
// stopped.
package registry

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
)

// CypherResult is the subset of neo4j.ResultWithContext the store reads.
type CypherResult interface {
	Next(ctx context.Context) bool
	Record() *db.Record
}

// CypherRunner runs a single Cypher statement.
type CypherRunner interface {
	Run(ctx context.Context, cypher string, params map[string]any) (CypherResult, error)
}

// CypherSession is a session that can run statements and write transactions.
type CypherSession interface {
	CypherRunner
	ExecuteWrite(ctx context.Context, work func(tx CypherRunner) (any, error)) (any, error)
	Close(ctx context.Context) error
}

// SessionOpener opens Cypher sessions. Satisfied by driverOpener in
// production and by fakes in tests.
type SessionOpener interface {
	OpenSession(ctx context.Context) CypherSession
}

// Store provides registry operations over a Neo4j database.
type Store struct {
	opener SessionOpener
}

// New creates a Store backed by a Neo4j driver.
func New(driver neo4j.DriverWithContext) *Store {
	return &Store{opener: driverOpener{driver: driver}}
}

// NewWithOpener creates a Store with a custom session opener.
func NewWithOpener(opener SessionOpener) *Store {
	return &Store{opener: opener}
}

type driverOpener struct {
	driver neo4j.DriverWithContext
}

func (o driverOpener) OpenSession(ctx context.Context) CypherSession {
	return driverSession{sess: o.driver.NewSession(ctx, neo4j.SessionConfig{})}
}

type driverSession struct {
	sess neo4j.SessionWithContext
}

func (s driverSession) Run(ctx context.Context, cypher string, params map[string]any) (CypherResult, error) {
	res, err := s.sess.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	return driverResult{res: res}, nil
}

func (s driverSession) ExecuteWrite(ctx context.Context, work func(tx CypherRunner) (any, error)) (any, error) {
	return s.sess.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return work(txRunner{tx: tx})
	})
}

func (s driverSession) Close(ctx context.Context) error {
	return s.sess.Close(ctx)
}

type driverResult struct {
	res neo4j.ResultWithContext
}

func (r driverResult) Next(ctx context.Context) bool { return r.res.Next(ctx) }
func (r driverResult) Record() *db.Record            { return r.res.Record() }

type txRunner struct {
	tx neo4j.ManagedTransaction
}

func (t txRunner) Run(ctx context.Context, cypher string, params map[string]any) (CypherResult, error) {
	res, err := t.tx.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	return driverResult{res: res}, nil
}
