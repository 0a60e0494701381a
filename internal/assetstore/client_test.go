package assetstore

import (
	"context"
	"crypto/sha1" //nolint:gosec // проверка формата подписи
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testClient(baseURL string) *Client {
	c := NewClient(Config{
		BaseURL:      baseURL,
		CloudName:    "lavka",
		APIKey:       "key-123",
		APISecret:    "secret-456",
		UploadPreset: "products_upload",
		Folder:       "products",
	})
	c.now = func() time.Time { return time.Unix(1700000000, 0) }
	return c
}

// TestUpload проверяет анонимную загрузку изображения.
func TestUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lavka/image/upload" {
			t.Errorf("Неожиданный путь запроса: %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			t.Fatalf("Ошибка парсинга multipart-формы: %v", err)
		}
		if got := r.FormValue("upload_preset"); got != "products_upload" {
			t.Errorf("upload_preset: want products_upload, got %q", got)
		}
		if got := r.FormValue("folder"); got != "products" {
			t.Errorf("folder: want products, got %q", got)
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("Файл не найден в форме: %v", err)
		}
		defer file.Close()
		if header.Filename != "tomato.jpg" {
			t.Errorf("Имя файла: want tomato.jpg, got %q", header.Filename)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"secure_url": "https://res.example.com/lavka/image/upload/v1/products/tomato.jpg",
			"public_id": "products/tomato",
			"format": "jpg",
			"bytes": 1024
		}`))
	}))
	defer srv.Close()

	client := testClient(srv.URL)

	result, err := client.Upload(context.Background(), "tomato.jpg", strings.NewReader("fake-image-bytes"))
	if err != nil {
		t.Fatalf("Ошибка загрузки: %v", err)
	}
	if result.PublicID != "products/tomato" {
		t.Errorf("PublicID: want products/tomato, got %q", result.PublicID)
	}
	if result.SecureURL == "" {
		t.Error("SecureURL пустой")
	}
}

// TestUploadRejected проверяет обработку отказа хранилища.
func TestUploadRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Upload preset not found"}}`))
	}))
	defer srv.Close()

	client := testClient(srv.URL)

	_, err := client.Upload(context.Background(), "x.jpg", strings.NewReader("data"))
	if err == nil {
		t.Fatal("Ожидалась ошибка загрузки")
	}
	if !strings.Contains(err.Error(), "Upload preset not found") {
		t.Errorf("Ошибка должна содержать сообщение API, получено: %v", err)
	}
}

// TestDestroySignature проверяет подписанный запрос удаления.
func TestDestroySignature(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lavka/image/destroy" {
			t.Errorf("Неожиданный путь запроса: %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("Ошибка парсинга формы: %v", err)
		}

		publicID := r.PostForm.Get("public_id")
		timestamp := r.PostForm.Get("timestamp")
		if publicID != "products/tomato" {
			t.Errorf("public_id: want products/tomato, got %q", publicID)
		}
		if timestamp != "1700000000" {
			t.Errorf("timestamp: want 1700000000, got %q", timestamp)
		}
		if got := r.PostForm.Get("api_key"); got != "key-123" {
			t.Errorf("api_key: want key-123, got %q", got)
		}

		// Пересчитываем подпись на стороне сервера
		sum := sha1.Sum([]byte("public_id=" + publicID + "&timestamp=" + timestamp + "secret-456")) //nolint:gosec
		want := hex.EncodeToString(sum[:])
		if got := r.PostForm.Get("signature"); got != want {
			t.Errorf("signature: want %q, got %q", want, got)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":"ok"}`))
	}))
	defer srv.Close()

	client := testClient(srv.URL)

	if err := client.Destroy(context.Background(), "products/tomato"); err != nil {
		t.Fatalf("Ошибка удаления: %v", err)
	}
}

// TestTransformURLs проверяет вставку трансформаций в URL изображения.
func TestTransformURLs(t *testing.T) {
	src := "https://res.example.com/lavka/image/upload/v1/products/tomato.jpg"

	thumb := ThumbURL(src)
	if want := "https://res.example.com/lavka/image/upload/w_150,h_150,c_fill/v1/products/tomato.jpg"; thumb != want {
		t.Errorf("ThumbURL: want %q, got %q", want, thumb)
	}

	medium := MediumURL(src)
	if !strings.Contains(medium, "w_400,h_400,c_fit") {
		t.Errorf("MediumURL должен содержать трансформацию 400x400, получено: %q", medium)
	}

	// URL без маркера возвращается как есть
	plain := "https://example.com/static/no-image.png"
	if got := ThumbURL(plain); got != plain {
		t.Errorf("URL без маркера должен остаться без изменений, получено: %q", got)
	}
}
