package docs

import (
	"fmt"

	"github.com/gobwas/glob"
)

// WorkspaceGuard restricts which workspace IDs the tools may address.
// Deny patterns win over allow patterns; with no allow patterns every
// workspace not denied is permitted. A nil guard permits everything.
type WorkspaceGuard struct {
	allowed []glob.Glob
	denied  []glob.Glob
}

// NewWorkspaceGuard compiles the allow and deny glob patterns.
func NewWorkspaceGuard(allowed, denied []string) (*WorkspaceGuard, error) {
	g := &WorkspaceGuard{}

	for _, pattern := range allowed {
		compiled, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid allowed workspace pattern '%s': %w", pattern, err)
		}
		g.allowed = append(g.allowed, compiled)
	}

	for _, pattern := range denied {
		compiled, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid denied workspace pattern '%s': %w", pattern, err)
		}
		g.denied = append(g.denied, compiled)
	}

	return g, nil
}

// IsAllowed reports whether the workspace may be addressed.
func (g *WorkspaceGuard) IsAllowed(workspaceID string) bool {
	if g == nil {
		return true
	}

	for _, pattern := range g.denied {
		if pattern.Match(workspaceID) {
			return false
		}
	}

	if len(g.allowed) == 0 {
		return true
	}

	for _, pattern := range g.allowed {
		if pattern.Match(workspaceID) {
			return true
		}
	}

	return false
}

// Check returns a *ValidationError when the workspace is not allowed.
func (g *WorkspaceGuard) Check(workspaceID string) error {
	if !g.IsAllowed(workspaceID) {
		return &ValidationError{Message: fmt.Sprintf("workspace %q is not allowed by configuration", workspaceID)}
	}
	return nil
}
