// Пакет idp — клиент провайдера идентификации (Keycloak-совместимый OIDC).
// Admin UI аутентифицирует пользователей через Resource Owner Password
// Credentials grant: форма логина своя, провайдер только проверяет пароль
// и выдаёт токены.
package idp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Ошибки аутентификации, различимые на уровне обработчиков.
var (
	// ErrInvalidCredentials — неверный логин или пароль.
	ErrInvalidCredentials = errors.New("неверные учётные данные")
	// ErrRateLimited — провайдер временно блокирует попытки входа.
	ErrRateLimited = errors.New("слишком много попыток входа")
)

// Client — клиент для взаимодействия с OIDC endpoints провайдера.
// Public client (без client_secret), direct grant.
type Client struct {
	// clientID — OIDC Client ID (по умолчанию "lavka-admin").
	clientID string
	// tokenURL — endpoint выдачи и обновления токенов.
	tokenURL string
	// logoutURL — endpoint backchannel logout (отзыв refresh token).
	logoutURL string
	// issuer — issuer URL для валидации (realm URL).
	issuer string
	// httpClient — HTTP-клиент (с кастомным CA при необходимости).
	httpClient *http.Client
}

// Config — конфигурация клиента провайдера идентификации.
type Config struct {
	// URL — базовый URL провайдера.
	URL string
	// Realm — имя realm.
	Realm string
	// ClientID — OIDC Client ID (public client).
	ClientID string
	// HTTPClient — HTTP-клиент (nil — создаётся новый с Timeout).
	HTTPClient *http.Client
	// Timeout — таймаут HTTP-запросов. Используется при HTTPClient == nil.
	Timeout time.Duration
}

// NewClient создаёт новый клиент провайдера идентификации.
func NewClient(cfg Config) *Client {
	realmURL := fmt.Sprintf("%s/realms/%s", strings.TrimRight(cfg.URL, "/"), cfg.Realm)
	oidcBase := realmURL + "/protocol/openid-connect"

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		clientID:   cfg.ClientID,
		tokenURL:   oidcBase + "/token",
		logoutURL:  oidcBase + "/logout",
		issuer:     realmURL,
		httpClient: httpClient,
	}
}

// Issuer возвращает issuer URL realm (для валидации JWT).
func (c *Client) Issuer() string {
	return c.issuer
}

// TokenResponse — ответ от token endpoint провайдера.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`  //nolint:gosec // G117: структура токена OAuth2
	RefreshToken string `json:"refresh_token"` //nolint:gosec // G117: структура токена OAuth2
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	IDToken      string `json:"id_token"`
}

// tokenError — ошибка от token endpoint провайдера.
type tokenError struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
}

// Principal — личность пользователя, извлечённая из access token.
type Principal struct {
	// UID — стабильный идентификатор пользователя (claim sub).
	UID string
	// Username — preferred_username из JWT.
	Username string
	// Email — email пользователя из JWT.
	Email string
}

// SignIn аутентифицирует пользователя по логину и паролю (direct grant).
// Неверные учётные данные — ErrInvalidCredentials, блокировка — ErrRateLimited.
func (c *Client) SignIn(ctx context.Context, username, password string) (*TokenResponse, error) {
	data := url.Values{
		"grant_type": {"password"},
		"client_id":  {c.clientID},
		"username":   {username},
		"password":   {password},
		"scope":      {"openid profile email"},
	}

	return c.doTokenRequest(ctx, data)
}

// RefreshTokens обновляет access token через refresh token.
// Возвращает новую пару access_token + refresh_token.
func (c *Client) RefreshTokens(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	data := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {c.clientID},
		"refresh_token": {refreshToken},
	}

	return c.doTokenRequest(ctx, data)
}

// SignOut отзывает refresh token через backchannel logout endpoint.
// После отзыва сессия пользователя у провайдера завершена.
func (c *Client) SignOut(ctx context.Context, refreshToken string) error {
	data := url.Values{
		"client_id":     {c.clientID},
		"refresh_token": {refreshToken},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.logoutURL, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req) //nolint:gosec // G704: URL из конфигурации OIDC
	if err != nil {
		return fmt.Errorf("ошибка запроса к logout endpoint: %w", err)
	}
	defer resp.Body.Close()

	// Keycloak отвечает 204 No Content при успешном отзыве
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("logout endpoint вернул статус %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// ParsePrincipal извлекает Principal из payload access token без проверки
// подписи. Подпись уже проверена провайдером при выдаче токена; для API
// валидация выполняется отдельно через JWKS.
func ParsePrincipal(accessToken string) (*Principal, error) {
	parts := strings.Split(accessToken, ".")
	if len(parts) != 3 {
		return nil, errors.New("некорректный формат JWT")
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("ошибка декодирования payload JWT: %w", err)
	}

	var claims struct {
		Sub               string `json:"sub"`
		PreferredUsername string `json:"preferred_username"`
		Email             string `json:"email"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("ошибка парсинга claims JWT: %w", err)
	}

	if claims.Sub == "" {
		return nil, errors.New("JWT без claim sub")
	}

	return &Principal{
		UID:      claims.Sub,
		Username: claims.PreferredUsername,
		Email:    claims.Email,
	}, nil
}

// doTokenRequest выполняет POST-запрос к token endpoint провайдера.
func (c *Client) doTokenRequest(ctx context.Context, data url.Values) (*TokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req) //nolint:gosec // G704: URL из конфигурации OIDC
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса к token endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, ErrRateLimited
		}

		var tokenErr tokenError
		if jsonErr := json.Unmarshal(body, &tokenErr); jsonErr == nil && tokenErr.Error != "" {
			if tokenErr.Error == "invalid_grant" {
				return nil, ErrInvalidCredentials
			}
			return nil, fmt.Errorf("token endpoint error: %s — %s", tokenErr.Error, tokenErr.Description)
		}
		return nil, fmt.Errorf("token endpoint вернул статус %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp TokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("ошибка парсинга token response: %w", err)
	}

	return &tokenResp, nil
}
