package progress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/cfaprep/cfaprep/internal/question"
)

// maxErrorBody bounds how much of a failed response body is kept in ErrStatus.
const maxErrorBody = 512

// HTTPConfig configures the HTTP client.
type HTTPConfig struct {
	// BaseURL is the service root, e.g. "http://localhost:8080".
	BaseURL string
	// Token is sent as a bearer token when non-empty.
	Token   string
	Timeout time.Duration
	// Transport overrides the underlying round tripper (tests).
	Transport http.RoundTripper
}

// HTTPClient talks to the progress service over its JSON API.
type HTTPClient struct {
	base string
	http *http.Client
}

// NewHTTPClient returns a client for the service at cfg.BaseURL.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url %q: scheme must be http or https", cfg.BaseURL)
	}

	base := &http.Client{Transport: cfg.Transport}
	h := base
	if cfg.Token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		h = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.Token,
			TokenType:   "Bearer",
		}))
	}
	if cfg.Timeout > 0 {
		h.Timeout = cfg.Timeout
	}
	return &HTTPClient{base: strings.TrimRight(u.String(), "/"), http: h}, nil
}

func (c *HTTPClient) ModuleQuestions(ctx context.Context, bookID, moduleID int) ([]question.Raw, error) {
	path := fmt.Sprintf("/api/tests/module/%d/%d", bookID, moduleID)
	return call[[]question.Raw](ctx, c, "module questions", http.MethodGet, path, nil, nil)
}

func (c *HTTPClient) BookQuestions(ctx context.Context, bookID, limit int) ([]question.Raw, error) {
	path := fmt.Sprintf("/api/tests/book/%d", bookID)
	return call[[]question.Raw](ctx, c, "book questions", http.MethodGet, path, limitQuery(limit), nil)
}

func (c *HTTPClient) MockExam(ctx context.Context) ([]question.Raw, error) {
	return call[[]question.Raw](ctx, c, "mock exam", http.MethodGet, "/api/tests/mock-exam", nil, nil)
}

func (c *HTTPClient) BookInfo(ctx context.Context, bookID int) (*BookInfo, error) {
	path := fmt.Sprintf("/api/tests/book-info/%d", bookID)
	return call[*BookInfo](ctx, c, "book info", http.MethodGet, path, nil, nil)
}

func (c *HTTPClient) DueItems(ctx context.Context, limit int) (*DueList, error) {
	return call[*DueList](ctx, c, "due items", http.MethodGet, "/api/errors/review", limitQuery(limit), nil)
}

func (c *HTTPClient) SubmitResult(ctx context.Context, s Submission) (*Result, error) {
	return call[*Result](ctx, c, "submit result", http.MethodPost, "/api/tests/submit", nil, s)
}

func (c *HTTPClient) SubmitReview(ctx context.Context, a ReviewAnswer) (*ReviewAck, error) {
	return call[*ReviewAck](ctx, c, "submit review", http.MethodPost, "/api/errors/mark-reviewed", nil, a)
}

func (c *HTTPClient) History(ctx context.Context, limit int) ([]Result, error) {
	return call[[]Result](ctx, c, "history", http.MethodGet, "/api/tests/history", limitQuery(limit), nil)
}

func (c *HTTPClient) ErrorStats(ctx context.Context) (*ErrorStats, error) {
	return call[*ErrorStats](ctx, c, "error stats", http.MethodGet, "/api/errors/stats", nil, nil)
}

func (c *HTTPClient) Progress(ctx context.Context) (*Overview, error) {
	return call[*Overview](ctx, c, "progress", http.MethodGet, "/api/progress", nil, nil)
}

func limitQuery(limit int) url.Values {
	if limit <= 0 {
		return nil
	}
	return url.Values{"limit": {strconv.Itoa(limit)}}
}

func call[T any](ctx context.Context, c *HTTPClient, op, method, path string, query url.Values, body any) (T, error) {
	var zero T

	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return zero, fmt.Errorf("%s: encode request: %w", op, err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		return zero, &ErrUnavailable{Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return zero, &ErrStatus{Op: op, StatusCode: res.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	var out T
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return zero, fmt.Errorf("%s: decode response: %w", op, err)
	}
	return out, nil
}
