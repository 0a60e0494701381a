package config

import (
	"log/slog"
	"testing"
	"time"
)

// setEnvs устанавливает переменные окружения на время теста.
func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

// minimalEnvs возвращает минимальный набор обязательных переменных.
func minimalEnvs() map[string]string {
	return map[string]string{
		"LA_MONGO_URI":        "mongodb://localhost:27017",
		"LA_DB_HOST":          "localhost",
		"LA_DB_NAME":          "lavka",
		"LA_DB_USER":          "lavka",
		"LA_DB_PASSWORD":      "secret",
		"LA_IDP_URL":          "https://idp.lavka.lan",
		"LA_ASSET_CLOUD_NAME": "lavka-cloud",
		"LA_ASSET_API_KEY":    "key",
		"LA_ASSET_API_SECRET": "secret",
	}
}

func TestLoad_MinimalConfig(t *testing.T) {
	setEnvs(t, minimalEnvs())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}

	// Проверяем значения по умолчанию
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, ожидается 8080", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, ожидается Info", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, ожидается json", cfg.LogFormat)
	}
	if cfg.MongoDatabase != "lavka" {
		t.Errorf("MongoDatabase = %q, ожидается lavka", cfg.MongoDatabase)
	}
	if cfg.DBPort != 5432 {
		t.Errorf("DBPort = %d, ожидается 5432", cfg.DBPort)
	}
	if cfg.DBSSLMode != "disable" {
		t.Errorf("DBSSLMode = %q, ожидается disable", cfg.DBSSLMode)
	}
	if cfg.IDPRealm != "lavka" {
		t.Errorf("IDPRealm = %q, ожидается lavka", cfg.IDPRealm)
	}
	if cfg.StatsCacheTTL != 60*time.Second {
		t.Errorf("StatsCacheTTL = %v, ожидается 60s", cfg.StatsCacheTTL)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout = %v, ожидается 5s", cfg.ShutdownTimeout)
	}
	if !cfg.SecureCookie {
		t.Error("SecureCookie = false при https IdP, ожидается true")
	}
}

func TestLoad_DerivedJWTURLs(t *testing.T) {
	envs := minimalEnvs()
	envs["LA_IDP_URL"] = "https://idp.lavka.lan/"
	envs["LA_IDP_REALM"] = "shop"
	setEnvs(t, envs)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}

	wantIssuer := "https://idp.lavka.lan/realms/shop"
	if cfg.JWTIssuer != wantIssuer {
		t.Errorf("JWTIssuer = %q, ожидается %q", cfg.JWTIssuer, wantIssuer)
	}

	wantJWKS := "https://idp.lavka.lan/realms/shop/protocol/openid-connect/certs"
	if cfg.JWTJWKSURL != wantJWKS {
		t.Errorf("JWTJWKSURL = %q, ожидается %q", cfg.JWTJWKSURL, wantJWKS)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	required := []string{
		"LA_MONGO_URI", "LA_DB_HOST", "LA_DB_NAME", "LA_DB_USER", "LA_DB_PASSWORD",
		"LA_IDP_URL", "LA_ASSET_CLOUD_NAME", "LA_ASSET_API_KEY", "LA_ASSET_API_SECRET",
	}

	for _, missing := range required {
		t.Run(missing, func(t *testing.T) {
			envs := minimalEnvs()
			envs[missing] = ""
			setEnvs(t, envs)

			if _, err := Load(); err == nil {
				t.Errorf("Load() без %s должен вернуть ошибку", missing)
			}
		})
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"некорректный порт", "LA_PORT", "not-a-number"},
		{"порт вне диапазона", "LA_PORT", "70000"},
		{"некорректный уровень логов", "LA_LOG_LEVEL", "verbose"},
		{"некорректный формат логов", "LA_LOG_FORMAT", "xml"},
		{"некорректный SSL mode", "LA_DB_SSL_MODE", "prefer"},
		{"некорректная длительность", "LA_STATS_CACHE_TTL", "sixty seconds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			envs := minimalEnvs()
			envs[tt.key] = tt.value
			setEnvs(t, envs)

			if _, err := Load(); err == nil {
				t.Errorf("Load() с %s=%q должен вернуть ошибку", tt.key, tt.value)
			}
		})
	}
}

func TestDatabaseDSN(t *testing.T) {
	setEnvs(t, minimalEnvs())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}

	want := "host=localhost port=5432 dbname=lavka user=lavka password=secret sslmode=disable"
	if got := cfg.DatabaseDSN(); got != want {
		t.Errorf("DatabaseDSN() = %q, ожидается %q", got, want)
	}
}
