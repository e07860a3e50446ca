package main

import (
	"context"
	"path/filepath"

	"museumbot/internal/persistence/indexdb"
	"museumbot/internal/sim/world"
)

type runtimeIndex interface {
	world.AuditLogger
	Close() error
	RecordSession(row indexdb.SessionRow)
	Stats() indexdb.Stats
	RecentScans(ctx context.Context, limit int) ([]indexdb.ScanRow, error)
	CompletedScanCounts(ctx context.Context) (map[string]int, error)
}

// openRuntimeIndex opens the shared scan index under dataDir. The index is a read model only;
// the simulation never reads from it.
func openRuntimeIndex(dataDir, sessionID string, disableDB bool) (runtimeIndex, error) {
	if disableDB {
		return nil, nil
	}
	dbPath := filepath.Join(dataDir, "index", "museum.sqlite")
	return indexdb.OpenSQLite(dbPath, sessionID)
}

type multiAuditLogger struct {
	a world.AuditLogger
	b world.AuditLogger
}

func (m multiAuditLogger) WriteAudit(entry world.AuditEntry) error {
	if m.a != nil {
		_ = m.a.WriteAudit(entry)
	}
	if m.b != nil {
		_ = m.b.WriteAudit(entry)
	}
	return nil
}
