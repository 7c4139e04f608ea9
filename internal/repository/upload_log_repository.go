package repository

import (
	"context"
	"fmt"

	"github.com/opsconsole/ledgersync/internal/domain"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type uploadLogRepository struct {
	pool *pgxpool.Pool
}

// NewUploadLogRepository wires an upload log repository backed by pgxpool.
func NewUploadLogRepository(pool *pgxpool.Pool) UploadLogRepository {
	return &uploadLogRepository{pool: pool}
}

func (r *uploadLogRepository) Record(ctx context.Context, entry domain.UploadLogEntry) error {
	if r.pool == nil {
		return fmt.Errorf("upload log repository not initialized")
	}

	var rowNumber any
	if entry.RowNumber != nil {
		rowNumber = *entry.RowNumber
	}

	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO upload_logs (file_name, upload_kind, row_number, error_message)
		 VALUES ($1, $2, $3, $4)`,
		entry.FileName,
		entry.UploadKind,
		rowNumber,
		entry.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to record upload log: %w", err)
	}
	return nil
}

func (r *uploadLogRepository) List(ctx context.Context, fileName string, limit int, offset int) ([]domain.UploadLogEntry, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("upload log repository not initialized")
	}

	if limit <= 0 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT id, file_name, upload_kind, row_number, error_message, created_at
		 FROM upload_logs
		 WHERE file_name = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		fileName,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list upload logs: %w", err)
	}
	defer rows.Close()

	logs := []domain.UploadLogEntry{}
	for rows.Next() {
		var (
			entry     domain.UploadLogEntry
			rowNumber pgtype.Int4
			createdAt pgtype.Timestamptz
		)
		if scanErr := rows.Scan(
			&entry.ID,
			&entry.FileName,
			&entry.UploadKind,
			&rowNumber,
			&entry.ErrorMessage,
			&createdAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan upload log: %w", scanErr)
		}

		if rowNumber.Valid {
			value := int(rowNumber.Int32)
			entry.RowNumber = &value
		}
		if createdAt.Valid {
			entry.CreatedAt = createdAt.Time
		}

		logs = append(logs, entry)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate upload logs: %w", rowsErr)
	}

	return logs, nil
}
