package affine

// Workspace is a workspace the signed-in account can access.
type Workspace struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
}

// DocSummary describes a document inside a workspace listing.
type DocSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Mode      string `json:"mode"`
	UpdatedAt string `json:"updatedAt"`
}

// DocContent is a document rendered as markdown.
type DocContent struct {
	Title    string `json:"title"`
	Markdown string `json:"markdown"`
}

// UpdateResult is returned after replacing a document body.
type UpdateResult struct {
	Success bool `json:"success"`
}

// CreateResult carries the identifier of a newly created document.
type CreateResult struct {
	DocID string `json:"docId"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateDocRequest struct {
	Markdown string `json:"markdown"`
}

type createDocRequest struct {
	Title    string `json:"title"`
	Markdown string `json:"markdown"`
}
