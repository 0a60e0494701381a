package repository

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/akolesov/lavka-admin/internal/config"
	"github.com/akolesov/lavka-admin/internal/database"
	"github.com/akolesov/lavka-admin/internal/domain/model"
)

// setupTestDB запускает PostgreSQL контейнер, применяет миграции.
// Возвращает pgxpool.Pool; контейнер и пул закрываются через t.Cleanup.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("Пропуск интеграционного теста: TEST_INTEGRATION не установлена")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("lavka_test"),
		postgres.WithUsername("lavka"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Не удалось запустить PostgreSQL контейнер: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Ошибка остановки контейнера: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Не удалось получить host контейнера: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Не удалось получить port контейнера: %v", err)
	}

	// Настраиваем env для config.Load()
	os.Setenv("LA_DB_HOST", host)
	os.Setenv("LA_DB_PORT", port.Port())
	os.Setenv("LA_DB_NAME", "lavka_test")
	os.Setenv("LA_DB_USER", "lavka")
	os.Setenv("LA_DB_PASSWORD", "test-password")
	os.Setenv("LA_DB_SSL_MODE", "disable")
	os.Setenv("LA_MONGO_URI", "mongodb://localhost:27017")
	os.Setenv("LA_IDP_URL", "http://localhost:8080")
	os.Setenv("LA_ASSET_CLOUD_NAME", "test")
	os.Setenv("LA_ASSET_API_KEY", "test")
	os.Setenv("LA_ASSET_API_SECRET", "test")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// Применяем миграции
	if err := database.Migrate(cfg, logger); err != nil {
		t.Fatalf("Ошибка миграций: %v", err)
	}

	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("Ошибка подключения: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	return pool
}

func newEvent(uid, event, reason, field string) *model.AuthEvent {
	return &model.AuthEvent{
		ID:        uuid.New(),
		UID:       uid,
		Username:  "user-" + uid,
		Event:     event,
		Reason:    reason,
		Field:     field,
		CreatedAt: time.Now().UTC(),
	}
}

// TestAuthEventRecordAndList проверяет запись и выборку событий.
func TestAuthEventRecordAndList(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewAuthEventRepository(pool)

	uid := uuid.New().String()

	events := []*model.AuthEvent{
		newEvent(uid, model.AuthEventLogin, "", ""),
		newEvent(uid, model.AuthEventDenied, "field_false", "active"),
		newEvent(uid, model.AuthEventLogout, "", ""),
	}
	for _, e := range events {
		if err := repo.Record(ctx, e); err != nil {
			t.Fatalf("Ошибка записи события %s: %v", e.Event, err)
		}
	}

	recent, err := repo.ListRecent(ctx, 50)
	if err != nil {
		t.Fatalf("Ошибка выборки событий: %v", err)
	}

	var got []*model.AuthEvent
	for _, e := range recent {
		if e.UID == uid {
			got = append(got, e)
		}
	}
	if len(got) != 3 {
		t.Fatalf("Ожидалось 3 события, получено %d", len(got))
	}

	// Denied-событие несёт классификацию отказа
	var denied *model.AuthEvent
	for _, e := range got {
		if e.Event == model.AuthEventDenied {
			denied = e
		}
	}
	if denied == nil {
		t.Fatal("Denied-событие не найдено в выборке")
	}
	if denied.Reason != "field_false" || denied.Field != "active" {
		t.Errorf("Классификация отказа: want field_false/active, got %s/%s", denied.Reason, denied.Field)
	}
}

// TestAuthEventCountDeniedSince проверяет подсчёт отказов за период.
func TestAuthEventCountDeniedSince(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewAuthEventRepository(pool)

	since := time.Now().UTC().Add(-1 * time.Minute)

	if err := repo.Record(ctx, newEvent(uuid.New().String(), model.AuthEventDenied, "record_missing", "")); err != nil {
		t.Fatalf("Ошибка записи события: %v", err)
	}
	if err := repo.Record(ctx, newEvent(uuid.New().String(), model.AuthEventLogin, "", "")); err != nil {
		t.Fatalf("Ошибка записи события: %v", err)
	}

	count, err := repo.CountDeniedSince(ctx, since)
	if err != nil {
		t.Fatalf("Ошибка подсчёта отказов: %v", err)
	}
	if count < 1 {
		t.Errorf("Ожидался хотя бы один отказ, получено %d", count)
	}
}

// TestAuthEventListRecent проверяет выборку последних событий.
func TestAuthEventListRecent(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewAuthEventRepository(pool)

	if err := repo.Record(ctx, newEvent(uuid.New().String(), model.AuthEventLogin, "", "")); err != nil {
		t.Fatalf("Ошибка записи события: %v", err)
	}

	got, err := repo.ListRecent(ctx, 5)
	if err != nil {
		t.Fatalf("Ошибка выборки последних событий: %v", err)
	}
	if len(got) == 0 {
		t.Error("Ожидались события в выборке")
	}
	if len(got) > 5 {
		t.Errorf("Лимит выборки нарушен: %d", len(got))
	}
}
