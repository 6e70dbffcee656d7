package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/glob"

	"github.com/entrhq/affine-tools/pkg/affine"
)

const (
	// SectionIDAffine is the identifier for the AFFiNE connection section
	SectionIDAffine = "affine"

	// Environment variables that override the stored credentials.
	EnvAffineURL      = "AFFINE_URL"
	EnvAffineEmail    = "AFFINE_EMAIL"
	EnvAffinePassword = "AFFINE_PASSWORD"
)

// AffineSection holds the connection settings for an AFFiNE instance and the
// workspace patterns the tools are allowed to touch.
type AffineSection struct {
	URL               string
	Email             string
	Password          string
	TimeoutSeconds    int
	AllowedWorkspaces []string
	DeniedWorkspaces  []string
	mu                sync.RWMutex
}

// NewAffineSection creates an empty AFFiNE section.
func NewAffineSection() *AffineSection {
	return &AffineSection{}
}

// ID returns the section identifier.
func (s *AffineSection) ID() string {
	return SectionIDAffine
}

// Title returns the section title.
func (s *AffineSection) Title() string {
	return "AFFiNE"
}

// Description returns the section description.
func (s *AffineSection) Description() string {
	return "Server URL and credentials used by the document tools. AFFINE_URL, AFFINE_EMAIL and AFFINE_PASSWORD take precedence over stored values."
}

// Data returns the current configuration data.
func (s *AffineSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]any{
		"affine_url":         s.URL,
		"email":              s.Email,
		"password":           s.Password,
		"timeout_seconds":    s.TimeoutSeconds,
		"allowed_workspaces": append([]string(nil), s.AllowedWorkspaces...),
		"denied_workspaces":  append([]string(nil), s.DeniedWorkspaces...),
	}
}

// SetData updates the configuration from the provided data. Values decoded
// from JSON or YAML are accepted as-is.
func (s *AffineSection) SetData(data map[string]any) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := data["affine_url"].(string); ok {
		s.URL = v
	}
	if v, ok := data["email"].(string); ok {
		s.Email = v
	}
	if v, ok := data["password"].(string); ok {
		s.Password = v
	}

	if raw, ok := data["timeout_seconds"]; ok && raw != nil {
		n, err := toInt(raw)
		if err != nil {
			return fmt.Errorf("timeout_seconds: %w", err)
		}
		s.TimeoutSeconds = n
	}

	if raw, ok := data["allowed_workspaces"]; ok {
		patterns, err := toStrings(raw)
		if err != nil {
			return fmt.Errorf("allowed_workspaces: %w", err)
		}
		s.AllowedWorkspaces = patterns
	}
	if raw, ok := data["denied_workspaces"]; ok {
		patterns, err := toStrings(raw)
		if err != nil {
			return fmt.Errorf("denied_workspaces: %w", err)
		}
		s.DeniedWorkspaces = patterns
	}

	return nil
}

// Validate checks values that can be checked without the environment.
// Missing credentials are reported by Resolve, since the environment may
// supply them.
func (s *AffineSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must not be negative")
	}
	for _, p := range append(append([]string(nil), s.AllowedWorkspaces...), s.DeniedWorkspaces...) {
		if _, err := glob.Compile(p); err != nil {
			return fmt.Errorf("invalid workspace pattern %q: %w", p, err)
		}
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *AffineSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.URL = ""
	s.Email = ""
	s.Password = ""
	s.TimeoutSeconds = 0
	s.AllowedWorkspaces = nil
	s.DeniedWorkspaces = nil
}

// Resolve builds the client configuration from stored values overlaid with
// the process environment.
func (s *AffineSection) Resolve() (affine.Config, error) {
	return s.ResolveWith(os.Getenv)
}

// ResolveWith is Resolve with an explicit environment lookup. A non-empty
// environment value wins over the stored one. Missing credentials yield an
// *affine.ConfigError.
func (s *AffineSection) ResolveWith(getenv func(string) string) (affine.Config, error) {
	s.mu.RLock()
	cfg := affine.Config{
		BaseURL:  s.URL,
		Email:    s.Email,
		Password: s.Password,
	}
	if s.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(s.TimeoutSeconds) * time.Second
	}
	s.mu.RUnlock()

	if getenv != nil {
		if v := getenv(EnvAffineURL); v != "" {
			cfg.BaseURL = v
		}
		if v := getenv(EnvAffineEmail); v != "" {
			cfg.Email = v
		}
		if v := getenv(EnvAffinePassword); v != "" {
			cfg.Password = v
		}
	}

	if err := cfg.Validate(); err != nil {
		return affine.Config{}, err
	}
	return cfg, nil
}

// WorkspacePatterns returns copies of the allow and deny lists.
func (s *AffineSection) WorkspacePatterns() (allowed, denied []string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.AllowedWorkspaces...), append([]string(nil), s.DeniedWorkspaces...)
}

// SetCredentials stores the server URL and credentials.
func (s *AffineSection) SetCredentials(url, email, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.URL = url
	s.Email = email
	s.Password = password
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(n))
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

func toStrings(v any) ([]string, error) {
	switch list := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return append([]string(nil), list...), nil
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected string, got %T", item)
			}
			out = append(out, str)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported type %T", v)
	}
}
