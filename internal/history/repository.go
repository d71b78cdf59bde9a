package history

import (
	"context"
	"database/sql"
	"time"
)

type Repository interface {
	CreateAcquisition(ctx context.Context, a *Acquisition) error
	GetAcquisition(ctx context.Context, id string) (*Acquisition, error)
	ListAcquisitions(ctx context.Context, limit int) ([]*Acquisition, error)
	ListAcquisitionsBySegment(ctx context.Context, segmentID int) ([]*Acquisition, error)
	UpdateAcquisitionStatus(ctx context.Context, id, status, filename, errorMsg string) error
	CountAcquisitions(ctx context.Context) (int, error)

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) CreateAcquisition(ctx context.Context, a *Acquisition) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO acquisitions (id, segment_id, kind, url, filename, status, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.SegmentID, a.Kind, a.URL, nullString(a.Filename), a.Status, nullString(a.Error),
		a.CreatedAt.Format(time.RFC3339), a.UpdatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) GetAcquisition(ctx context.Context, id string) (*Acquisition, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, segment_id, kind, url, filename, status, error, created_at, updated_at
		FROM acquisitions WHERE id = ?
	`, id)
	return r.scanAcquisition(row)
}

func (r *SQLiteRepository) ListAcquisitions(ctx context.Context, limit int) ([]*Acquisition, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, segment_id, kind, url, filename, status, error, created_at, updated_at
		FROM acquisitions ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAcquisitions(rows)
}

func (r *SQLiteRepository) ListAcquisitionsBySegment(ctx context.Context, segmentID int) ([]*Acquisition, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, segment_id, kind, url, filename, status, error, created_at, updated_at
		FROM acquisitions WHERE segment_id = ? ORDER BY created_at ASC
	`, segmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAcquisitions(rows)
}

func (r *SQLiteRepository) UpdateAcquisitionStatus(ctx context.Context, id, status, filename, errorMsg string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE acquisitions SET status = ?, filename = ?, error = ?, updated_at = ?
		WHERE id = ?
	`, status, nullString(filename), nullString(errorMsg), time.Now().Format(time.RFC3339), id)
	return err
}

func (r *SQLiteRepository) CountAcquisitions(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM acquisitions`).Scan(&count)
	return count, err
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func (r *SQLiteRepository) scanAcquisition(row *sql.Row) (*Acquisition, error) {
	var a Acquisition
	var filename, errMsg sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&a.ID, &a.SegmentID, &a.Kind, &a.URL, &filename, &a.Status, &errMsg, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	a.Filename = filename.String
	a.Error = errMsg.String
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	a.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &a, nil
}

func (r *SQLiteRepository) scanAcquisitions(rows *sql.Rows) ([]*Acquisition, error) {
	acquisitions := []*Acquisition{}
	for rows.Next() {
		var a Acquisition
		var filename, errMsg sql.NullString
		var createdAt, updatedAt string

		if err := rows.Scan(&a.ID, &a.SegmentID, &a.Kind, &a.URL, &filename, &a.Status, &errMsg, &createdAt, &updatedAt); err != nil {
			return nil, err
		}

		a.Filename = filename.String
		a.Error = errMsg.String
		a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		a.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		acquisitions = append(acquisitions, &a)
	}
	return acquisitions, rows.Err()
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
