package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/akolesov/lavka-admin/internal/domain/model"
)

// AuthEventRepository — журнал событий аутентификации (таблица auth_events).
type AuthEventRepository interface {
	// Record пишет событие в журнал.
	Record(ctx context.Context, event *model.AuthEvent) error
	// ListRecent возвращает последние события всех пользователей.
	ListRecent(ctx context.Context, limit int) ([]*model.AuthEvent, error)
	// CountDeniedSince возвращает количество отказов с указанного момента.
	CountDeniedSince(ctx context.Context, since time.Time) (int, error)
}

// authEventRepo — реализация AuthEventRepository.
type authEventRepo struct {
	db DBTX
}

// NewAuthEventRepository создаёт репозиторий журнала аутентификации.
func NewAuthEventRepository(db DBTX) AuthEventRepository {
	return &authEventRepo{db: db}
}

const aeColumns = `id, uid, username, event, reason, field, created_at`

func (r *authEventRepo) Record(ctx context.Context, event *model.AuthEvent) error {
	query := `
		INSERT INTO auth_events (id, uid, username, event, reason, field, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		event.ID, event.UID, event.Username, event.Event, event.Reason, event.Field, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("ошибка записи события аутентификации: %w", err)
	}
	return nil
}

func (r *authEventRepo) ListRecent(ctx context.Context, limit int) ([]*model.AuthEvent, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM auth_events
		ORDER BY created_at DESC
		LIMIT $1`, aeColumns)

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки последних событий: %w", err)
	}
	defer rows.Close()

	return scanAuthEvents(rows)
}

func (r *authEventRepo) CountDeniedSince(ctx context.Context, since time.Time) (int, error) {
	query := `SELECT count(*) FROM auth_events WHERE event = 'denied' AND created_at >= $1`

	var count int
	if err := r.db.QueryRow(ctx, query, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("ошибка подсчёта отказов: %w", err)
	}
	return count, nil
}

// scanAuthEvents читает события из rows.
func scanAuthEvents(rows pgx.Rows) ([]*model.AuthEvent, error) {
	var events []*model.AuthEvent
	for rows.Next() {
		event := &model.AuthEvent{}
		if err := rows.Scan(
			&event.ID, &event.UID, &event.Username,
			&event.Event, &event.Reason, &event.Field, &event.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования события: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка обхода результатов: %w", err)
	}
	return events, nil
}
