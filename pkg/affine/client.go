package affine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/entrhq/affine-tools/pkg/logging"
)

const (
	// DefaultBaseURL is used when no server URL is configured.
	DefaultBaseURL = "http://localhost:3010"

	// DefaultTimeout bounds a single HTTP exchange.
	DefaultTimeout = 30 * time.Second

	signInPath    = "/api/auth/sign-in"
	workspacesAPI = "/api/docs/workspaces"

	maxErrorBody = 1 << 20 // 1 MB max error body
)

// Config holds what the client needs to reach and authenticate against a server.
type Config struct {
	BaseURL  string
	Email    string
	Password string
	Timeout  time.Duration
}

// Validate reports missing credentials as a ConfigError.
func (c Config) Validate() error {
	var missing []string
	if c.Email == "" {
		missing = append(missing, "email")
	}
	if c.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return &ConfigError{Message: "plugin requires " + strings.Join(missing, " and ")}
	}
	return nil
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger attaches a logger. The client never logs credentials or cookies.
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// Client is an AFFiNE REST client authenticated with a cookie session.
//
// The session is established lazily on the first request and renewed once
// whenever the server answers 401. Concurrent callers that hit an expired
// session share a single sign-in.
type Client struct {
	baseURL    string
	email      string
	password   string
	httpClient *http.Client
	logger     *logging.Logger

	// signInMu serializes sign-ins; mu guards cookies.
	signInMu sync.Mutex
	mu       sync.Mutex
	cookies  string
}

// New creates a client. It fails with a ConfigError when credentials are missing.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		baseURL:  baseURL,
		email:    cfg.Email,
		password: cfg.Password,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized server URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListWorkspaces returns the workspaces the account can access.
func (c *Client) ListWorkspaces(ctx context.Context) ([]Workspace, error) {
	var workspaces []Workspace
	if err := c.get(ctx, workspacesAPI, &workspaces); err != nil {
		return nil, fmt.Errorf("affine.ListWorkspaces: %w", err)
	}
	return workspaces, nil
}

// ListDocs returns the documents of a workspace.
func (c *Client) ListDocs(ctx context.Context, wsID string) ([]DocSummary, error) {
	var docs []DocSummary
	if err := c.get(ctx, docsPath(wsID), &docs); err != nil {
		return nil, fmt.Errorf("affine.ListDocs: %w", err)
	}
	return docs, nil
}

// ReadDoc returns a document's title and markdown body.
func (c *Client) ReadDoc(ctx context.Context, wsID, docID string) (*DocContent, error) {
	var doc DocContent
	if err := c.get(ctx, markdownPath(wsID, docID), &doc); err != nil {
		return nil, fmt.Errorf("affine.ReadDoc: %w", err)
	}
	return &doc, nil
}

// UpdateDoc replaces a document's body with the given markdown.
func (c *Client) UpdateDoc(ctx context.Context, wsID, docID, markdown string) (*UpdateResult, error) {
	var result UpdateResult
	if err := c.doJSON(ctx, http.MethodPut, markdownPath(wsID, docID), updateDocRequest{Markdown: markdown}, &result); err != nil {
		return nil, fmt.Errorf("affine.UpdateDoc: %w", err)
	}
	return &result, nil
}

// CreateDoc creates a document from markdown and returns its identifier.
func (c *Client) CreateDoc(ctx context.Context, wsID, title, markdown string) (*CreateResult, error) {
	var result CreateResult
	if err := c.doJSON(ctx, http.MethodPost, docsPath(wsID), createDocRequest{Title: title, Markdown: markdown}, &result); err != nil {
		return nil, fmt.Errorf("affine.CreateDoc: %w", err)
	}
	return &result, nil
}

func docsPath(wsID string) string {
	return workspacesAPI + "/" + url.PathEscape(wsID) + "/docs"
}

func markdownPath(wsID, docID string) string {
	return docsPath(wsID) + "/" + url.PathEscape(docID) + "/markdown"
}

// SignIn establishes a new session, replacing any cached cookies.
func (c *Client) SignIn(ctx context.Context) error {
	c.signInMu.Lock()
	defer c.signInMu.Unlock()
	return c.signIn(ctx)
}

// signIn must be called with signInMu held.
func (c *Client) signIn(ctx context.Context) error {
	data, err := json.Marshal(signInRequest{Email: c.email, Password: c.password})
	if err != nil {
		return fmt.Errorf("marshal sign-in body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+signInPath, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create sign-in request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	// The session cookies ride on the sign-in response itself, so redirects
	// must not be followed.
	hc := *c.httpClient
	hc.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("sign in: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return &AuthError{StatusCode: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}

	cookies := sessionCookies(resp.Header)
	if cookies == "" {
		return &AuthError{Message: "server returned no session cookies"}
	}

	c.mu.Lock()
	c.cookies = cookies
	c.mu.Unlock()

	c.logger.Infof("signed in to %s", c.baseURL)
	return nil
}

func (c *Client) session() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cookies
}

// renewSession signs in unless another caller already replaced the stale
// cookie while this one waited for the lock. It returns the cookie to use.
func (c *Client) renewSession(ctx context.Context, stale string) (string, error) {
	c.signInMu.Lock()
	defer c.signInMu.Unlock()

	if current := c.session(); current != "" && current != stale {
		return current, nil
	}
	if err := c.signIn(ctx); err != nil {
		return "", err
	}
	return c.session(), nil
}

// request sends an authenticated request, signing in first when there is no
// session and retrying exactly once after re-authenticating on a 401.
func (c *Client) request(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	cookies := c.session()
	if cookies == "" {
		var err error
		if cookies, err = c.renewSession(ctx, ""); err != nil {
			return nil, err
		}
	}

	resp, err := c.send(ctx, method, path, body, cookies)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	resp.Body.Close() //nolint:errcheck // best-effort close

	c.logger.Infof("session rejected on %s %s, signing in again", method, path)
	if cookies, err = c.renewSession(ctx, cookies); err != nil {
		return nil, err
	}
	return c.send(ctx, method, path, body, cookies)
}

func (c *Client) send(ctx context.Context, method, path string, body []byte, cookies string) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Cookie", cookies)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	c.logger.Debugf("%s %s -> %d", method, path, resp.StatusCode)
	return resp, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any) error {
	var body []byte
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		body = data
	}

	resp, err := c.request(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if readErr != nil {
			respBody = nil
		}
		return &APIError{StatusCode: resp.StatusCode, Path: path, Body: strings.TrimSpace(string(respBody))}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}
