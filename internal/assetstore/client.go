// Пакет assetstore — клиент внешнего хранилища изображений товаров
// (Cloudinary-совместимый API). Загрузка — анонимная по upload preset,
// удаление — подписанный запрос (SHA-1 подпись с api_secret).
package assetstore

import (
	"bytes"
	"context"
	"crypto/sha1" //nolint:gosec // G505: подпись API хранилища, не криптография
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client — клиент хранилища изображений.
type Client struct {
	baseURL      string
	cloudName    string
	apiKey       string
	apiSecret    string
	uploadPreset string
	folder       string
	httpClient   *http.Client

	// now — источник времени для подписи (подменяется в тестах).
	now func() time.Time
}

// Config — конфигурация клиента хранилища изображений.
type Config struct {
	// BaseURL — базовый URL API (по умолчанию https://api.cloudinary.com/v1_1).
	BaseURL string
	// CloudName — имя облака.
	CloudName string
	// APIKey — ключ API (для подписанных запросов).
	APIKey string
	// APISecret — секрет API (для подписи).
	APISecret string
	// UploadPreset — preset анонимной загрузки.
	UploadPreset string
	// Folder — папка для загружаемых изображений.
	Folder string
	// HTTPClient — HTTP-клиент (nil — создаётся новый с Timeout).
	HTTPClient *http.Client
	// Timeout — таймаут HTTP-запросов. Используется при HTTPClient == nil.
	Timeout time.Duration
}

// NewClient создаёт клиент хранилища изображений.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		cloudName:    cfg.CloudName,
		apiKey:       cfg.APIKey,
		apiSecret:    cfg.APISecret,
		uploadPreset: cfg.UploadPreset,
		folder:       cfg.Folder,
		httpClient:   httpClient,
		now:          time.Now,
	}
}

// UploadResult — результат загрузки изображения.
type UploadResult struct {
	// SecureURL — HTTPS-URL загруженного изображения.
	SecureURL string `json:"secure_url"`
	// PublicID — идентификатор изображения в хранилище (для удаления).
	PublicID string `json:"public_id"`
	// Format — формат изображения (jpg, png, webp).
	Format string `json:"format"`
	// Bytes — размер файла.
	Bytes int64 `json:"bytes"`
}

// apiError — тело ошибки API хранилища.
type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload загружает изображение через анонимный upload preset.
// filename — имя исходного файла, content — его содержимое.
func (c *Client) Upload(ctx context.Context, filename string, content io.Reader) (*UploadResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания multipart-формы: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("ошибка копирования файла в форму: %w", err)
	}
	if err := mw.WriteField("upload_preset", c.uploadPreset); err != nil {
		return nil, fmt.Errorf("ошибка записи поля формы: %w", err)
	}
	if c.folder != "" {
		if err := mw.WriteField("folder", c.folder); err != nil {
			return nil, fmt.Errorf("ошибка записи поля формы: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("ошибка завершения multipart-формы: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/image/upload", c.baseURL, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса к хранилищу изображений: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if jsonErr := json.Unmarshal(respBody, &apiErr); jsonErr == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("хранилище отклонило загрузку: %s", apiErr.Error.Message)
		}
		return nil, fmt.Errorf("хранилище вернуло статус %d: %s", resp.StatusCode, string(respBody))
	}

	var result UploadResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("ошибка парсинга ответа хранилища: %w", err)
	}

	return &result, nil
}

// Destroy удаляет изображение по public_id подписанным запросом.
// Подпись: SHA-1("public_id=<id>&timestamp=<ts><api_secret>").
func (c *Client) Destroy(ctx context.Context, publicID string) error {
	timestamp := strconv.FormatInt(c.now().Unix(), 10)
	signature := c.sign("public_id=" + publicID + "&timestamp=" + timestamp)

	data := url.Values{
		"public_id": {publicID},
		"timestamp": {timestamp},
		"api_key":   {c.apiKey},
		"signature": {signature},
	}

	endpoint := fmt.Sprintf("%s/%s/image/destroy", c.baseURL, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка запроса к хранилищу изображений: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("хранилище вернуло статус %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Result string `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil && result.Result != "" && result.Result != "ok" && result.Result != "not found" {
		return fmt.Errorf("хранилище отклонило удаление: %s", result.Result)
	}

	return nil
}

// sign вычисляет SHA-1 подпись строки параметров с api_secret.
func (c *Client) sign(params string) string {
	h := sha1.Sum([]byte(params + c.apiSecret)) //nolint:gosec // G401: формат подписи API
	return hex.EncodeToString(h[:])
}

// ThumbURL возвращает URL миниатюры 150x150 (списки в таблицах).
func ThumbURL(secureURL string) string {
	return transformURL(secureURL, "w_150,h_150,c_fill")
}

// MediumURL возвращает URL изображения 400x400 (карточка товара).
func MediumURL(secureURL string) string {
	return transformURL(secureURL, "w_400,h_400,c_fit")
}

// transformURL вставляет параметры трансформации в URL изображения.
// Формат URL: .../image/upload/<transform>/<path>.
func transformURL(secureURL, transform string) string {
	const marker = "/image/upload/"
	idx := strings.Index(secureURL, marker)
	if idx < 0 {
		return secureURL
	}
	return secureURL[:idx+len(marker)] + transform + "/" + secureURL[idx+len(marker):]
}
