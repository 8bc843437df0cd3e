// Package api — HTTP-клиент сервера Inbox. Один метод на эндпоинт, одна форма ответа на метод.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"sync"
	"time"
)

// CookieName — cookie, в которой сервер выдаёт токен сессии.
const CookieName = "auth_token"

// Client ходит в API от имени одного пользователя. Токен сессии хранится в самом клиенте
// и отправляется заголовком Cookie, поэтому cookiejar не нужен.
type Client struct {
	baseURL   string
	http      *http.Client
	observers []Observer

	mu    sync.RWMutex
	token string
}

// Option настраивает Client.
type Option func(*Client)

// WithHTTPClient подменяет http.Client (таймауты, транспорт).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithToken задаёт ранее сохранённый токен.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithObserver подписывает наблюдателя на все запросы. Можно передать несколько раз.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

// New создаёт клиента для baseURL вида http://host:port.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token возвращает текущий токен сессии (пустой — не залогинен).
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken заменяет токен сессии.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	raw, _, err := c.do(ctx, method, path, body, "application/json")
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// do выполняет запрос и возвращает тело ответа. Статус >= 400 превращается в *APIError.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) ([]byte, http.Header, error) {
	start := time.Now()
	ev := RequestEvent{Path: path, Method: method}
	defer func() {
		ev.Duration = time.Since(start)
		c.notify(ev)
	}()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		ev.Err = err
		return nil, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if tok := c.Token(); tok != "" {
		req.Header.Set("Cookie", CookieName+"="+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		ev.Err = err
		return nil, nil, err
	}
	defer resp.Body.Close()
	ev.Status = resp.StatusCode

	c.captureToken(resp)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		ev.Err = err
		return nil, nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var eb struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &eb) == nil && eb.Error != "" {
			apiErr.Message = eb.Error
		}
		ev.Err = apiErr
		return nil, nil, apiErr
	}
	return raw, resp.Header, nil
}

// captureToken обновляет токен по Set-Cookie: новое значение — вход, Max-Age=0 — выход.
func (c *Client) captureToken(resp *http.Response) {
	for _, ck := range resp.Cookies() {
		if ck.Name != CookieName {
			continue
		}
		if ck.MaxAge < 0 || ck.Value == "" {
			c.SetToken("")
		} else {
			c.SetToken(ck.Value)
		}
	}
}

func (c *Client) notify(ev RequestEvent) {
	for _, o := range c.observers {
		o.OnRequest(ev)
	}
}

// Health проверяет, что сервер отвечает.
func (c *Client) Health(ctx context.Context) error {
	var out struct {
		OK *bool `json:"ok"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/health", nil, &out); err != nil {
		return err
	}
	if out.OK == nil || !*out.OK {
		return fmt.Errorf("%w: missing ok", ErrMalformedResponse)
	}
	return nil
}

// Register создаёт учётную запись. Сессию не открывает.
func (c *Client) Register(ctx context.Context, in RegisterRequest) (*User, error) {
	var out userEnvelope
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", in, &out); err != nil {
		return nil, err
	}
	return out.get()
}

// Login открывает сессию; токен сохраняется в клиенте.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	var out userEnvelope
	in := map[string]string{"email": email, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", in, &out); err != nil {
		return nil, err
	}
	if c.Token() == "" {
		return nil, errors.New("no auth cookie in response")
	}
	return out.get()
}

// Logout закрывает сессию и забывает токен даже при ошибке сервера.
func (c *Client) Logout(ctx context.Context) error {
	defer c.SetToken("")
	return c.doJSON(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var out userEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return out.get()
}

func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	in := map[string]string{"currentPassword": current, "newPassword": next}
	return c.doJSON(ctx, http.MethodPost, "/api/auth/password", in, nil)
}

// ListBlocks возвращает блоки в серверном порядке.
func (c *Client) ListBlocks(ctx context.Context) ([]Block, error) {
	var out blocksEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/api/blocks", nil, &out); err != nil {
		return nil, err
	}
	return out.get()
}

func (c *Client) GetBlock(ctx context.Context, id string) (*Block, error) {
	var out blockEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/api/blocks/"+id, nil, &out); err != nil {
		return nil, err
	}
	return out.get()
}

func (c *Client) CreateBlock(ctx context.Context, content string) (*Block, error) {
	var out blockEnvelope
	if err := c.doJSON(ctx, http.MethodPost, "/api/blocks", map[string]string{"content": content}, &out); err != nil {
		return nil, err
	}
	return out.get()
}

func (c *Client) UpdateBlock(ctx context.Context, id, content string) (*Block, error) {
	var out blockEnvelope
	if err := c.doJSON(ctx, http.MethodPut, "/api/blocks/"+id, map[string]string{"content": content}, &out); err != nil {
		return nil, err
	}
	return out.get()
}

// DeleteBlock идемпотентен на стороне сервера.
func (c *Client) DeleteBlock(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/blocks/"+id, nil, nil)
}

// Reorder отправляет новые позиции и возвращает итоговый порядок.
func (c *Client) Reorder(ctx context.Context, order []Position) ([]Block, error) {
	if order == nil {
		order = []Position{}
	}
	var out blocksEnvelope
	if err := c.doJSON(ctx, http.MethodPost, "/api/blocks/reorder", map[string]any{"order": order}, &out); err != nil {
		return nil, err
	}
	return out.get()
}

// UploadImage отправляет файл полем file. Пустой contentType — сервер определит тип сам.
func (c *Client) UploadImage(ctx context.Context, filename string, r io.Reader, contentType string) (*Image, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	raw, _, err := c.do(ctx, http.MethodPost, "/api/images", &buf, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}
	var out imageEnvelope
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return out.get()
}

// GetImage возвращает байты и Content-Type изображения.
func (c *Client) GetImage(ctx context.Context, id string) ([]byte, string, error) {
	raw, hdr, err := c.do(ctx, http.MethodGet, "/api/images/"+id, nil, "")
	if err != nil {
		return nil, "", err
	}
	return raw, hdr.Get("Content-Type"), nil
}
