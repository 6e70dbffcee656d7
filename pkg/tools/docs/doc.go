// Package docs exposes AFFiNE document operations as agent tools.
//
// Five tools are provided: affine_list_workspaces, affine_list_docs,
// affine_read_doc, affine_update_doc and affine_create_doc. Each decodes its
// XML arguments, validates them, and returns the service response as
// indented JSON text.
//
// The AFFiNE client is not built when the tools are registered. A
// ClientProvider resolves configuration on the first tool call and keeps the
// resulting client for later calls:
//
//	provider := docs.NewClientProvider(func() (docs.Settings, error) {
//		cfg, err := section.Resolve()
//		if err != nil {
//			return docs.Settings{}, err
//		}
//		allowed, denied := section.WorkspacePatterns()
//		return docs.Settings{Client: cfg, AllowedWorkspaces: allowed, DeniedWorkspaces: denied}, nil
//	})
//	registry := tools.NewRegistry()
//	registry.Register(docs.NewToolRegistry(provider).RegisterTools()...)
package docs
