package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestSessionEncryptDecryptRoundTrip проверяет шифрование и дешифрование SessionData.
func TestSessionEncryptDecryptRoundTrip(t *testing.T) {
	sm, err := NewSessionManager("", false)
	if err != nil {
		t.Fatalf("Ошибка создания SessionManager: %v", err)
	}

	original := &SessionData{
		AccessToken:  "test-access-token-12345",
		RefreshToken: "test-refresh-token-67890",
		ExpiresAt:    time.Now().Add(5 * time.Minute).Unix(),
		UID:          "uid-42",
		Username:     "admin",
		Email:        "admin@example.com",
		Role:         "admin",
	}

	encrypted, err := sm.Encrypt(original)
	if err != nil {
		t.Fatalf("Ошибка шифрования: %v", err)
	}

	if encrypted == "" {
		t.Fatal("Зашифрованная строка пустая")
	}

	decrypted, err := sm.Decrypt(encrypted)
	if err != nil {
		t.Fatalf("Ошибка дешифрования: %v", err)
	}

	if decrypted.AccessToken != original.AccessToken {
		t.Errorf("AccessToken: want %q, got %q", original.AccessToken, decrypted.AccessToken)
	}
	if decrypted.RefreshToken != original.RefreshToken {
		t.Errorf("RefreshToken: want %q, got %q", original.RefreshToken, decrypted.RefreshToken)
	}
	if decrypted.ExpiresAt != original.ExpiresAt {
		t.Errorf("ExpiresAt: want %d, got %d", original.ExpiresAt, decrypted.ExpiresAt)
	}
	if decrypted.UID != original.UID {
		t.Errorf("UID: want %q, got %q", original.UID, decrypted.UID)
	}
	if decrypted.Username != original.Username {
		t.Errorf("Username: want %q, got %q", original.Username, decrypted.Username)
	}
	if decrypted.Role != original.Role {
		t.Errorf("Role: want %q, got %q", original.Role, decrypted.Role)
	}
}

// TestSessionManagerWithStringKey проверяет инициализацию с произвольной строкой-ключом.
func TestSessionManagerWithStringKey(t *testing.T) {
	sm, err := NewSessionManager("my-secret-key-for-testing", false)
	if err != nil {
		t.Fatalf("Ошибка создания SessionManager с string-ключом: %v", err)
	}

	data := &SessionData{
		AccessToken: "token123",
		UID:         "uid-1",
		Username:    "user",
		Role:        "admin",
	}

	encrypted, err := sm.Encrypt(data)
	if err != nil {
		t.Fatalf("Ошибка шифрования: %v", err)
	}

	decrypted, err := sm.Decrypt(encrypted)
	if err != nil {
		t.Fatalf("Ошибка дешифрования: %v", err)
	}

	if decrypted.AccessToken != data.AccessToken {
		t.Errorf("AccessToken: want %q, got %q", data.AccessToken, decrypted.AccessToken)
	}
}

// TestSessionDecryptWithWrongKey проверяет, что дешифрование чужим ключом не работает.
func TestSessionDecryptWithWrongKey(t *testing.T) {
	sm1, _ := NewSessionManager("key-one", false)
	sm2, _ := NewSessionManager("key-two", false)

	data := &SessionData{AccessToken: "secret"}
	encrypted, err := sm1.Encrypt(data)
	if err != nil {
		t.Fatalf("Ошибка шифрования: %v", err)
	}

	_, err = sm2.Decrypt(encrypted)
	if err == nil {
		t.Error("Ожидалась ошибка при дешифровании чужим ключом")
	}
}

// TestSessionDecryptGarbage проверяет отказ на повреждённых данных.
func TestSessionDecryptGarbage(t *testing.T) {
	sm, _ := NewSessionManager("key", false)

	tests := []struct {
		name  string
		value string
	}{
		{name: "не base64", value: "!!!не-base64!!!"},
		{name: "слишком короткие данные", value: "YWJj"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := sm.Decrypt(tt.value); err == nil {
				t.Error("Ожидалась ошибка дешифрования")
			}
		})
	}
}

// TestSessionIsExpired проверяет логику проверки истечения токена.
func TestSessionIsExpired(t *testing.T) {
	expired := &SessionData{
		ExpiresAt: time.Now().Add(-1 * time.Minute).Unix(),
	}
	if !expired.IsExpired() {
		t.Error("Ожидалось IsExpired()=true для истёкшего токена")
	}

	// Токен, истекающий через 10 секунд — внутри 30-секундного буфера
	soon := &SessionData{
		ExpiresAt: time.Now().Add(10 * time.Second).Unix(),
	}
	if !soon.IsExpired() {
		t.Error("Ожидалось IsExpired()=true внутри буфера refresh")
	}

	valid := &SessionData{
		ExpiresAt: time.Now().Add(5 * time.Minute).Unix(),
	}
	if valid.IsExpired() {
		t.Error("Ожидалось IsExpired()=false для действующего токена")
	}
}

// TestSessionCookieRoundTrip проверяет установку и чтение session cookie.
func TestSessionCookieRoundTrip(t *testing.T) {
	sm, err := NewSessionManager("cookie-test-key", false)
	if err != nil {
		t.Fatalf("Ошибка создания SessionManager: %v", err)
	}

	data := &SessionData{
		AccessToken: "token",
		UID:         "uid-7",
		Username:    "ivan",
		Role:        "super_admin",
		ExpiresAt:   time.Now().Add(5 * time.Minute).Unix(),
	}

	// Устанавливаем cookie в ResponseRecorder
	rec := httptest.NewRecorder()
	if err := sm.SetSessionCookie(rec, data); err != nil {
		t.Fatalf("Ошибка установки cookie: %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("Ожидался 1 cookie, получено %d", len(cookies))
	}
	cookie := cookies[0]
	if cookie.Name != SessionCookieName {
		t.Errorf("Имя cookie: want %q, got %q", SessionCookieName, cookie.Name)
	}
	if cookie.Path != "/admin" {
		t.Errorf("Path cookie: want /admin, got %q", cookie.Path)
	}
	if !cookie.HttpOnly {
		t.Error("Cookie должен быть HttpOnly")
	}

	// Читаем сессию из запроса с этим cookie
	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(cookie)

	session, err := sm.GetSessionFromRequest(req)
	if err != nil {
		t.Fatalf("Ошибка чтения сессии из запроса: %v", err)
	}
	if session == nil {
		t.Fatal("Сессия не найдена в запросе")
	}
	if session.UID != data.UID {
		t.Errorf("UID: want %q, got %q", data.UID, session.UID)
	}
	if session.Role != data.Role {
		t.Errorf("Role: want %q, got %q", data.Role, session.Role)
	}
}

// TestGetSessionFromRequestNoCookie проверяет, что отсутствие cookie — не ошибка.
func TestGetSessionFromRequestNoCookie(t *testing.T) {
	sm, _ := NewSessionManager("key", false)

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	session, err := sm.GetSessionFromRequest(req)
	if err != nil {
		t.Fatalf("Отсутствие cookie не должно быть ошибкой: %v", err)
	}
	if session != nil {
		t.Error("Ожидалась nil-сессия при отсутствии cookie")
	}
}

// TestClearSessionCookie проверяет удаление session cookie.
func TestClearSessionCookie(t *testing.T) {
	sm, _ := NewSessionManager("key", false)

	rec := httptest.NewRecorder()
	sm.ClearSessionCookie(rec)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("Ожидался 1 cookie, получено %d", len(cookies))
	}
	if cookies[0].MaxAge != -1 {
		t.Errorf("MaxAge: want -1, got %d", cookies[0].MaxAge)
	}
	if cookies[0].Value != "" {
		t.Errorf("Значение cookie должно быть пустым, получено %q", cookies[0].Value)
	}
}
