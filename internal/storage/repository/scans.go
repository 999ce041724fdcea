package repository

import (
	"context"
	"fmt"

	"github.com/vigilhub/scantrack/internal/models"
)

// CreateScan сохраняет новый запрос на сканирование и возвращает запись целиком
// (идентификатор, статус и дата создания генерируются базой).
func (s *Storage) CreateScan(ctx context.Context, scan models.Scan) (*models.Scan, error) {
	const op = "storage.CreateScan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO scans (owner_uid, target_type, target_value, status)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id, owner_uid, target_type, target_value, status, results, created_at;`
	created := &models.Scan{}
	if err := s.DB.QueryRowContext(ctx, query,
		scan.OwnerUID, scan.TargetType, scan.TargetValue, scan.Status).Scan(
		&created.ID, &created.OwnerUID, &created.TargetType, &created.TargetValue,
		&created.Status, &created.Results, &created.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// ListScansByOwner возвращает сканирования пользователя с пагинацией,
// отсортированные по дате создания по убыванию (новые первыми).
func (s *Storage) ListScansByOwner(ctx context.Context, ownerUID string, limit, offset int) ([]*models.Scan, error) {
	const op = "storage.ListScansByOwner"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, owner_uid, target_type, target_value, status, results, created_at
			  FROM scans
			  WHERE owner_uid = $1
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3;`
	rows, err := s.DB.QueryContext(ctx, query, ownerUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Scan
	for rows.Next() {
		var item models.Scan
		if err = rows.Scan(&item.ID, &item.OwnerUID, &item.TargetType, &item.TargetValue,
			&item.Status, &item.Results, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
