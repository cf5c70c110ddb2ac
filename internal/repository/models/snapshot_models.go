package models

import (
	"database/sql"
	"time"
)

type Snapshot struct {
	ID        int64
	RowCount  int
	CreatedAt time.Time
}

// SnapshotRow mirrors one row of the snapshot_rows table.
type SnapshotRow struct {
	Position          int
	RowID             string
	CustomerName      string
	AccountManager    string
	ServiceType       string
	CompletionDate    string
	NPSScore          sql.NullInt64
	SatisfactionScore sql.NullInt64
}
