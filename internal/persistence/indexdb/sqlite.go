package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"museumbot/internal/sim/world"
)

// SQLiteIndex is a queryable read model of session history (sessions, audits, scans).
// It is fed asynchronously from the world's audit stream and never affects simulation state.
type SQLiteIndex struct {
	db *sql.DB

	sessionID string

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	// mu guards sends on ch against Close closing it. Senders hold the read side.
	mu     sync.RWMutex
	closed atomic.Bool

	dropAuditTotal   atomic.Uint64
	dropSessionTotal atomic.Uint64
}

type reqKind int

const (
	reqAudit reqKind = iota + 1
	reqSession
	reqFlush
)

type req struct {
	kind reqKind

	audit   world.AuditEntry
	session SessionRow
	done    chan struct{}
}

type SessionRow struct {
	SessionID      string
	WorldID        string
	Seed           int64
	TickRateHz     int
	TuningDigest   string
	ExhibitsDigest string
	StartedAt      time.Time
}

type ScanRow struct {
	ExhibitID   string `json:"exhibit_id"`
	StartedTick uint64 `json:"started_tick"`
	EndedTick   uint64 `json:"ended_tick"` // 0 while running
	Outcome     string `json:"outcome"`    // RUNNING, COMPLETE, CANCELLED
}

type Stats struct {
	QueueDepth       int    `json:"queue_depth"`
	QueueCapacity    int    `json:"queue_capacity"`
	DropAuditTotal   uint64 `json:"drop_audit_total"`
	DropSessionTotal uint64 `json:"drop_session_total"`
}

// OpenSQLite opens (or creates) the index at path. Rows written through this handle are
// tagged with sessionID.
func OpenSQLite(path, sessionID string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if sessionID == "" {
		return nil, fmt.Errorf("empty session id")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db:        db,
		sessionID: sessionID,
		ch:        make(chan req, 16384),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	// NORMAL is a decent durability/perf tradeoff for a secondary index.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			world_id TEXT NOT NULL,
			seed INTEGER NOT NULL,
			tick_rate_hz INTEGER NOT NULL,
			tuning_digest TEXT NOT NULL,
			exhibits_digest TEXT NOT NULL,
			started_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS audits (
			session_id TEXT NOT NULL,
			tick INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			action TEXT NOT NULL,
			exhibit_id TEXT,
			code TEXT,
			reason TEXT,
			raw_json TEXT NOT NULL,
			PRIMARY KEY (session_id, tick, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_audits_action_tick ON audits(action, tick);`,
		`CREATE TABLE IF NOT EXISTS scans (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			exhibit_id TEXT NOT NULL,
			started_tick INTEGER NOT NULL,
			ended_tick INTEGER,
			outcome TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_scans_exhibit ON scans(exhibit_id, outcome);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.mu.Lock()
		s.closed.Store(true)
		close(s.ch)
		s.mu.Unlock()
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) SessionID() string { return s.sessionID }

func (s *SQLiteIndex) WriteAudit(entry world.AuditEntry) error {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqAudit, audit: entry}:
	default:
		// Drop if the indexer falls behind; JSONL logs remain the source of truth.
		s.dropAuditTotal.Add(1)
	}
	return nil
}

func (s *SQLiteIndex) RecordSession(row SessionRow) {
	if s == nil {
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed.Load() {
		return
	}
	if row.SessionID == "" {
		row.SessionID = s.sessionID
	}
	select {
	case s.ch <- req{kind: reqSession, session: row}:
	default:
		s.dropSessionTotal.Add(1)
	}
}

// Flush commits everything queued so far. Queries call it so they observe prior writes.
func (s *SQLiteIndex) Flush(ctx context.Context) error {
	if s == nil {
		return nil
	}
	done := make(chan struct{})
	if err := s.enqueueFlush(ctx, done); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// enqueueFlush holds the read lock only for the send, so Close is not blocked behind the
// wait for the commit.
func (s *SQLiteIndex) enqueueFlush(ctx context.Context, done chan struct{}) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed.Load() {
		close(done)
		return nil
	}
	select {
	case s.ch <- req{kind: reqFlush, done: done}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:       len(s.ch),
		QueueCapacity:    cap(s.ch),
		DropAuditTotal:   s.dropAuditTotal.Load(),
		DropSessionTotal: s.dropSessionTotal.Load(),
	}
}

// RecentScans returns this session's scans, newest first.
func (s *SQLiteIndex) RecentScans(ctx context.Context, limit int) ([]ScanRow, error) {
	if limit <= 0 {
		limit = 50
	}
	if err := s.Flush(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT exhibit_id, started_tick, COALESCE(ended_tick,0), outcome FROM scans WHERE session_id=? ORDER BY id DESC LIMIT ?`,
		s.sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ScanRow
	for rows.Next() {
		var r ScanRow
		var started, ended int64
		if err := rows.Scan(&r.ExhibitID, &started, &ended, &r.Outcome); err != nil {
			return nil, err
		}
		r.StartedTick = uint64(started)
		r.EndedTick = uint64(ended)
		out = append(out, r)
	}
	return out, rows.Err()
}

// CompletedScanCounts counts completed scans per exhibit across all sessions.
func (s *SQLiteIndex) CompletedScanCounts(ctx context.Context) (map[string]int, error) {
	if err := s.Flush(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT exhibit_id, COUNT(*) FROM scans WHERE outcome='COMPLETE' GROUP BY exhibit_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertAudit, _ := s.db.Prepare(`INSERT OR REPLACE INTO audits(session_id,tick,seq,action,exhibit_id,code,reason,raw_json) VALUES(?,?,?,?,?,?,?,?)`)
	insertSession, _ := s.db.Prepare(`INSERT OR REPLACE INTO sessions(session_id,world_id,seed,tick_rate_hz,tuning_digest,exhibits_digest,started_at) VALUES(?,?,?,?,?,?,?)`)
	insertScan, _ := s.db.Prepare(`INSERT INTO scans(session_id,exhibit_id,started_tick,outcome) VALUES(?,?,?,'RUNNING')`)
	closeScan, _ := s.db.Prepare(`UPDATE scans SET ended_tick=?, outcome=? WHERE id=?`)
	defer func() {
		for _, st := range []*sql.Stmt{insertAudit, insertSession, insertScan, closeScan} {
			if st != nil {
				_ = st.Close()
			}
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 500
		commitMaxWait = time.Second

		lastAuditTick uint64
		auditSeq      int
		runningScan   int64 // scans.id of the open scan, 0 if none
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			// If we can't start a tx, we can't do much; sleep a bit.
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	flushIfNeeded := func() {
		if tx == nil {
			return
		}
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}

	ticker := time.NewTicker(commitMaxWait)
	defer ticker.Stop()

	for {
		var r req
		select {
		case rr, ok := <-s.ch:
			if !ok {
				commit()
				return
			}
			r = rr
		case <-ticker.C:
			flushIfNeeded()
			continue
		}

		if r.kind == reqFlush {
			commit()
			close(r.done)
			continue
		}

		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqSession:
			se := r.session
			if insertSession != nil {
				if _, err := tx.Stmt(insertSession).Exec(
					se.SessionID,
					se.WorldID,
					se.Seed,
					se.TickRateHz,
					se.TuningDigest,
					se.ExhibitsDigest,
					se.StartedAt.UTC().Format(time.RFC3339Nano),
				); err != nil {
					rollback()
					continue
				}
				opCount++
			}

		case reqAudit:
			a := r.audit
			if a.Tick != lastAuditTick {
				lastAuditTick = a.Tick
				auditSeq = 0
			}
			seq := auditSeq
			auditSeq++
			raw, _ := json.Marshal(a)
			if insertAudit != nil {
				if _, err := tx.Stmt(insertAudit).Exec(
					s.sessionID,
					int64(a.Tick),
					seq,
					a.Action,
					a.ExhibitID,
					a.Code,
					a.Reason,
					string(raw),
				); err != nil {
					rollback()
					continue
				}
				opCount++
			}

			switch a.Action {
			case "SCAN_START":
				if insertScan == nil {
					break
				}
				res, err := tx.Stmt(insertScan).Exec(s.sessionID, a.ExhibitID, int64(a.Tick))
				if err != nil {
					rollback()
					continue
				}
				runningScan, _ = res.LastInsertId()
				opCount++
			case "SCAN_COMPLETE", "SCAN_CANCEL":
				if closeScan == nil || runningScan == 0 {
					break
				}
				outcome := "COMPLETE"
				if a.Action == "SCAN_CANCEL" {
					outcome = "CANCELLED"
				}
				if _, err := tx.Stmt(closeScan).Exec(int64(a.Tick), outcome, runningScan); err != nil {
					rollback()
					continue
				}
				runningScan = 0
				opCount++
			}
		}
		flushIfNeeded()
	}
}
