// Пакет config — загрузка и валидация конфигурации Lavka Admin
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации Lavka Admin.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- MongoDB (реестр администраторов и коллекции магазина) ---

	// URI подключения к MongoDB
	MongoURI string
	// Имя базы данных MongoDB
	MongoDatabase string

	// --- PostgreSQL (аудит аутентификации) ---

	// Хост PostgreSQL
	DBHost string
	// Порт PostgreSQL
	DBPort int
	// Имя базы данных
	DBName string
	// Имя пользователя PostgreSQL
	DBUser string
	// Пароль пользователя PostgreSQL
	DBPassword string
	// Режим SSL: disable, require, verify-ca, verify-full
	DBSSLMode string

	// --- Redis (кэш статистики Dashboard) ---

	// Адрес Redis (host:port)
	RedisAddr string
	// Пароль Redis (опционально)
	RedisPassword string
	// Номер базы Redis
	RedisDB int
	// TTL кэша статистики Dashboard
	StatsCacheTTL time.Duration

	// --- Identity Provider ---

	// Базовый URL Identity Provider (Keycloak-совместимый)
	IDPURL string
	// Имя realm
	IDPRealm string
	// Client ID для Direct Grant (public client панели)
	IDPClientID string
	// Issuer JWT (авто-вычисляется из IDPURL, если не задан)
	JWTIssuer string
	// URL JWKS endpoint (авто-вычисляется из IDPURL, если не задан)
	JWTJWKSURL string
	// Интервал обновления JWKS-ключей
	JWKSRefreshInterval time.Duration

	// --- Asset store (изображения товаров) ---

	// Базовый URL API asset store (например, https://api.cloudinary.com/v1_1)
	AssetStoreURL string
	// Имя облака asset store
	AssetCloudName string
	// API Key asset store
	AssetAPIKey string
	// API Secret asset store (для подписи удаления)
	AssetAPISecret string
	// Пресет загрузки (unsigned upload preset)
	AssetUploadPreset string
	// Корневая папка загрузок
	AssetFolder string

	// --- UI-сессии ---

	// Секрет шифрования UI-сессий (base64, 32 байта)
	SessionSecret string
	// Использовать Secure flag для cookie
	SecureCookie bool

	// --- Мониторинг зависимостей ---

	// Имя группы topologymetrics
	DephealthGroup string
	// Интервал проверки зависимостей
	DephealthCheckInterval time.Duration

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// LA_PORT — порт HTTP-сервера (по умолчанию 8080)
	cfg.Port, err = getEnvInt("LA_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("LA_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("LA_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// LA_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("LA_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("LA_LOG_LEVEL: %w", err)
	}

	// LA_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("LA_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("LA_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- MongoDB ---

	// LA_MONGO_URI — обязательный
	cfg.MongoURI, err = getEnvRequired("LA_MONGO_URI")
	if err != nil {
		return nil, err
	}

	// LA_MONGO_DATABASE — имя базы (по умолчанию lavka)
	cfg.MongoDatabase = getEnvDefault("LA_MONGO_DATABASE", "lavka")

	// --- PostgreSQL ---

	// LA_DB_HOST — обязательный
	cfg.DBHost, err = getEnvRequired("LA_DB_HOST")
	if err != nil {
		return nil, err
	}

	// LA_DB_PORT — порт PostgreSQL (по умолчанию 5432)
	cfg.DBPort, err = getEnvInt("LA_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("LA_DB_PORT: %w", err)
	}

	// LA_DB_NAME — обязательный
	cfg.DBName, err = getEnvRequired("LA_DB_NAME")
	if err != nil {
		return nil, err
	}

	// LA_DB_USER — обязательный
	cfg.DBUser, err = getEnvRequired("LA_DB_USER")
	if err != nil {
		return nil, err
	}

	// LA_DB_PASSWORD — обязательный
	cfg.DBPassword, err = getEnvRequired("LA_DB_PASSWORD")
	if err != nil {
		return nil, err
	}

	// LA_DB_SSL_MODE — режим SSL (по умолчанию disable)
	cfg.DBSSLMode = getEnvDefault("LA_DB_SSL_MODE", "disable")
	validSSLModes := map[string]bool{
		"disable": true, "require": true, "verify-ca": true, "verify-full": true,
	}
	if !validSSLModes[cfg.DBSSLMode] {
		return nil, fmt.Errorf("LA_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}

	// --- Redis ---

	// LA_REDIS_ADDR — адрес Redis (по умолчанию localhost:6379)
	cfg.RedisAddr = getEnvDefault("LA_REDIS_ADDR", "localhost:6379")

	// LA_REDIS_PASSWORD — пароль Redis (опционально)
	cfg.RedisPassword = getEnvDefault("LA_REDIS_PASSWORD", "")

	// LA_REDIS_DB — номер базы Redis (по умолчанию 0)
	cfg.RedisDB, err = getEnvInt("LA_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("LA_REDIS_DB: %w", err)
	}

	// LA_STATS_CACHE_TTL — TTL кэша статистики (по умолчанию 60s)
	cfg.StatsCacheTTL, err = getEnvDuration("LA_STATS_CACHE_TTL", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("LA_STATS_CACHE_TTL: %w", err)
	}

	// --- Identity Provider ---

	// LA_IDP_URL — обязательный
	cfg.IDPURL, err = getEnvRequired("LA_IDP_URL")
	if err != nil {
		return nil, err
	}
	// Убираем trailing slash
	cfg.IDPURL = strings.TrimRight(cfg.IDPURL, "/")

	// LA_IDP_REALM — realm (по умолчанию lavka)
	cfg.IDPRealm = getEnvDefault("LA_IDP_REALM", "lavka")

	// LA_IDP_CLIENT_ID — client_id панели (по умолчанию lavka-admin)
	cfg.IDPClientID = getEnvDefault("LA_IDP_CLIENT_ID", "lavka-admin")

	// LA_JWT_ISSUER — авто-вычисляется из IDPURL, если не задан
	cfg.JWTIssuer = getEnvDefault("LA_JWT_ISSUER",
		fmt.Sprintf("%s/realms/%s", cfg.IDPURL, cfg.IDPRealm))

	// LA_JWT_JWKS_URL — авто-вычисляется из IDPURL, если не задан
	cfg.JWTJWKSURL = getEnvDefault("LA_JWT_JWKS_URL",
		fmt.Sprintf("%s/realms/%s/protocol/openid-connect/certs", cfg.IDPURL, cfg.IDPRealm))

	// LA_JWKS_REFRESH_INTERVAL — интервал обновления JWKS (по умолчанию 1h)
	cfg.JWKSRefreshInterval, err = getEnvDuration("LA_JWKS_REFRESH_INTERVAL", time.Hour)
	if err != nil {
		return nil, fmt.Errorf("LA_JWKS_REFRESH_INTERVAL: %w", err)
	}

	// --- Asset store ---

	// LA_ASSET_STORE_URL — базовый URL API (по умолчанию Cloudinary)
	cfg.AssetStoreURL = strings.TrimRight(
		getEnvDefault("LA_ASSET_STORE_URL", "https://api.cloudinary.com/v1_1"), "/")

	// LA_ASSET_CLOUD_NAME — обязательный
	cfg.AssetCloudName, err = getEnvRequired("LA_ASSET_CLOUD_NAME")
	if err != nil {
		return nil, err
	}

	// LA_ASSET_API_KEY — обязательный
	cfg.AssetAPIKey, err = getEnvRequired("LA_ASSET_API_KEY")
	if err != nil {
		return nil, err
	}

	// LA_ASSET_API_SECRET — обязательный (подпись запросов удаления)
	cfg.AssetAPISecret, err = getEnvRequired("LA_ASSET_API_SECRET")
	if err != nil {
		return nil, err
	}

	// LA_ASSET_UPLOAD_PRESET — пресет загрузки (по умолчанию products_upload)
	cfg.AssetUploadPreset = getEnvDefault("LA_ASSET_UPLOAD_PRESET", "products_upload")

	// LA_ASSET_FOLDER — корневая папка (по умолчанию products)
	cfg.AssetFolder = getEnvDefault("LA_ASSET_FOLDER", "products")

	// --- UI-сессии ---

	// LA_SESSION_SECRET — секрет шифрования сессий (опционально)
	cfg.SessionSecret = getEnvDefault("LA_SESSION_SECRET", "")

	// Secure cookie: true если IdP доступен по https
	cfg.SecureCookie = strings.HasPrefix(cfg.IDPURL, "https")

	// --- Мониторинг зависимостей ---

	// LA_DEPHEALTH_GROUP — группа topologymetrics (по умолчанию lavka)
	cfg.DephealthGroup = getEnvDefault("LA_DEPHEALTH_GROUP", "lavka")

	// LA_DEPHEALTH_CHECK_INTERVAL — интервал проверки зависимостей (по умолчанию 15s)
	cfg.DephealthCheckInterval, err = getEnvDuration("LA_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("LA_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// --- Graceful shutdown ---

	// LA_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("LA_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("LA_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// DatabaseURL возвращает URL подключения к PostgreSQL (для метрик и миграций).
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
