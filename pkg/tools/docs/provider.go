package docs

import (
	"fmt"
	"sync"

	"github.com/entrhq/affine-tools/pkg/affine"
)

// Settings is everything a tool call needs to reach AFFiNE.
type Settings struct {
	Client            affine.Config
	AllowedWorkspaces []string
	DeniedWorkspaces  []string
}

// Resolver produces Settings at call time.
type Resolver func() (Settings, error)

// ClientProvider builds the AFFiNE client on first use and reuses it.
// Resolution failures are returned to the caller and retried on the next call.
type ClientProvider struct {
	resolve Resolver
	opts    []affine.Option

	mu     sync.Mutex
	client *affine.Client
	guard  *WorkspaceGuard
}

// NewClientProvider returns a provider that calls resolve lazily. The
// options are passed to affine.New.
func NewClientProvider(resolve Resolver, opts ...affine.Option) *ClientProvider {
	return &ClientProvider{
		resolve: resolve,
		opts:    opts,
	}
}

// StaticProvider wraps an already constructed client.
func StaticProvider(client *affine.Client, guard *WorkspaceGuard) *ClientProvider {
	return &ClientProvider{client: client, guard: guard}
}

// Get returns the shared client and workspace guard.
func (p *ClientProvider) Get() (*affine.Client, *WorkspaceGuard, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, p.guard, nil
	}
	if p.resolve == nil {
		return nil, nil, &affine.ConfigError{Message: "no configuration source"}
	}

	settings, err := p.resolve()
	if err != nil {
		return nil, nil, err
	}

	guard, err := NewWorkspaceGuard(settings.AllowedWorkspaces, settings.DeniedWorkspaces)
	if err != nil {
		return nil, nil, &affine.ConfigError{Message: err.Error()}
	}

	client, err := affine.New(settings.Client, p.opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("create affine client: %w", err)
	}

	p.client = client
	p.guard = guard
	return client, guard, nil
}
