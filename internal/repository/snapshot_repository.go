package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/godilite/survey-table/internal/repository/models"
	"github.com/godilite/survey-table/internal/survey"
)

// Schema creates the snapshot tables. It is safe to run on every start.
const Schema = `
CREATE TABLE IF NOT EXISTS survey_snapshots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	row_count INTEGER NOT NULL,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS snapshot_rows (
	snapshot_id INTEGER NOT NULL,
	position INTEGER NOT NULL,
	row_id TEXT NOT NULL,
	customer_name TEXT NOT NULL,
	account_manager TEXT NOT NULL,
	service_type TEXT NOT NULL,
	completion_date TEXT NOT NULL,
	nps_score INTEGER,
	satisfaction_score INTEGER,
	PRIMARY KEY (snapshot_id, position),
	FOREIGN KEY (snapshot_id) REFERENCES survey_snapshots(id) ON DELETE CASCADE
);
`

const defaultKeep = 3

var ErrNoSnapshot = errors.New("no snapshot stored")

type SnapshotRepository struct {
	db   *sql.DB
	keep int
	now  func() time.Time
}

func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db, keep: defaultKeep, now: time.Now}
}

// SaveSnapshot stores rows as the newest snapshot and prunes all but the most
// recent few.
func (r *SnapshotRepository) SaveSnapshot(ctx context.Context, rows []survey.Row) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin SaveSnapshot: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO survey_snapshots (row_count, created_at) VALUES (?, ?)`,
		len(rows), r.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("snapshot id: %w", err)
	}

	const insertRow = `
		INSERT INTO snapshot_rows (
			snapshot_id, position, row_id, customer_name, account_manager,
			service_type, completion_date, nps_score, satisfaction_score
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for i, row := range rows {
		if _, err = tx.ExecContext(ctx, insertRow,
			id, i, row.ID, row.CustomerName, row.AccountManager,
			row.ServiceType, row.CompletionDate,
			nullScore(row.NPSScore), nullScore(row.SatisfactionScore),
		); err != nil {
			return fmt.Errorf("insert snapshot row %d: %w", i, err)
		}
	}

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM snapshot_rows WHERE snapshot_id <= ?`, id-int64(r.keep)); err != nil {
		return fmt.Errorf("prune snapshot rows: %w", err)
	}
	if _, err = tx.ExecContext(ctx,
		`DELETE FROM survey_snapshots WHERE id <= ?`, id-int64(r.keep)); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit SaveSnapshot: %w", err)
	}
	return nil
}

// Latest returns the metadata of the newest snapshot.
func (r *SnapshotRepository) Latest(ctx context.Context) (models.Snapshot, error) {
	const query = `
		SELECT id, row_count, created_at
		FROM survey_snapshots
		ORDER BY id DESC
		LIMIT 1
	`

	var s models.Snapshot
	var createdAt string
	err := r.db.QueryRowContext(ctx, query).Scan(&s.ID, &s.RowCount, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Snapshot{}, ErrNoSnapshot
		}
		return models.Snapshot{}, fmt.Errorf("query Latest: %w", err)
	}
	if t, perr := time.Parse(time.RFC3339Nano, createdAt); perr == nil {
		s.CreatedAt = t
	}
	return s, nil
}

// LatestSnapshot returns the rows of the newest snapshot in their stored order.
func (r *SnapshotRepository) LatestSnapshot(ctx context.Context) ([]survey.Row, error) {
	snap, err := r.Latest(ctx)
	if err != nil {
		return nil, err
	}

	const query = `
		SELECT position, row_id, customer_name, account_manager, service_type,
			completion_date, nps_score, satisfaction_score
		FROM snapshot_rows
		WHERE snapshot_id = ?
		ORDER BY position
	`

	rows, err := r.db.QueryContext(ctx, query, snap.ID)
	if err != nil {
		return nil, fmt.Errorf("query LatestSnapshot: %w", err)
	}
	defer rows.Close()

	results := make([]survey.Row, 0, snap.RowCount)
	for rows.Next() {
		var sr models.SnapshotRow
		if err := rows.Scan(&sr.Position, &sr.RowID, &sr.CustomerName, &sr.AccountManager,
			&sr.ServiceType, &sr.CompletionDate, &sr.NPSScore, &sr.SatisfactionScore); err != nil {
			return nil, fmt.Errorf("scan LatestSnapshot row: %w", err)
		}
		results = append(results, toRow(sr))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate LatestSnapshot: %w", err)
	}
	return results, nil
}

func toRow(sr models.SnapshotRow) survey.Row {
	return survey.Row{
		ID:                sr.RowID,
		CustomerName:      sr.CustomerName,
		AccountManager:    sr.AccountManager,
		ServiceType:       sr.ServiceType,
		CompletionDate:    sr.CompletionDate,
		NPSScore:          scorePtr(sr.NPSScore),
		SatisfactionScore: scorePtr(sr.SatisfactionScore),
	}
}

func nullScore(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func scorePtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
