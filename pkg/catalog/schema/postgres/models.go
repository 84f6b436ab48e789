package postgres

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// ObjectDescribe is the stored describe snapshot of one sObject.
type ObjectDescribe struct {
	Name       string
	Label      string
	Custom     bool
	FieldCount int32
	APIVersion string
	Describe   []byte
	SyncedAt   time.Time
}

func (o ObjectDescribe) args() []any {
	return []any{o.Name, o.Label, o.Custom, o.FieldCount, o.APIVersion, o.Describe, o.SyncedAt}
}

// SyncJob tracks one run of the catalog sync.
type SyncJob struct {
	ID             uuid.UUID
	APIVersion     string
	Status         string
	TotalItems     int32
	SucceededItems int32
	FailedItems    int32
	StartedAt      time.Time
	CompletedAt    pgtype.Timestamptz
}

const (
	SyncJobRunning   = "running"
	SyncJobCompleted = "completed"
	SyncJobFailed    = "failed"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS sobject_describes (
	name        TEXT PRIMARY KEY,
	label       TEXT NOT NULL,
	custom      BOOLEAN NOT NULL DEFAULT FALSE,
	field_count INTEGER NOT NULL DEFAULT 0,
	api_version TEXT NOT NULL,
	describe    JSONB NOT NULL,
	synced_at   TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS catalog_sync_jobs (
	id              UUID PRIMARY KEY,
	api_version     TEXT NOT NULL,
	status          TEXT NOT NULL,
	total_items     INTEGER NOT NULL DEFAULT 0,
	succeeded_items INTEGER NOT NULL DEFAULT 0,
	failed_items    INTEGER NOT NULL DEFAULT 0,
	started_at      TIMESTAMPTZ NOT NULL,
	completed_at    TIMESTAMPTZ
);
`

const upsertObjectDescribeSQL = `
INSERT INTO sobject_describes (name, label, custom, field_count, api_version, describe, synced_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (name) DO UPDATE SET
	label       = EXCLUDED.label,
	custom      = EXCLUDED.custom,
	field_count = EXCLUDED.field_count,
	api_version = EXCLUDED.api_version,
	describe    = EXCLUDED.describe,
	synced_at   = EXCLUDED.synced_at`

const getObjectDescribeSQL = `
SELECT name, label, custom, field_count, api_version, describe, synced_at
FROM sobject_describes
WHERE name = $1`

const createSyncJobSQL = `
INSERT INTO catalog_sync_jobs (id, api_version, status, total_items, started_at)
VALUES ($1, $2, $3, $4, $5)`

const completeSyncJobSQL = `
UPDATE catalog_sync_jobs
SET status = $2, succeeded_items = $3, failed_items = $4, completed_at = $5
WHERE id = $1`
