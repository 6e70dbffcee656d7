// Package affine is a small client for the AFFiNE document REST API.
//
// Authentication uses the email/password sign-in endpoint. The session
// cookies it returns are cached on the Client and replayed on every request;
// when the server answers 401 the client signs in again and retries the
// request exactly once.
//
//	c, err := affine.New(affine.Config{
//	    BaseURL:  "http://localhost:3010",
//	    Email:    "agent@example.com",
//	    Password: os.Getenv("AFFINE_PASSWORD"),
//	})
//	docs, err := c.ListDocs(ctx, workspaceID)
//
// Documents are exchanged as markdown strings. UpdateDoc replaces the whole
// body; it does not diff blocks.
package affine
