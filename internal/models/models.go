package models

// Page is one vector store entry: a single page of a source document with its
// extracted text and, where the extractor found one, an image reference.
type Page struct {
	FileName string
	PageNum  int64
	Content  string
	ImageURL string
}

// Match is a search hit with its distance score (lower is closer for L2).
type Match struct {
	Page  Page
	Score float32
}

// SupportedDocument is one entry of the static document catalogue.
type SupportedDocument struct {
	Name string
	Link string
}

// Message is one chat transcript entry.
type Message struct {
	Role    string
	Content string
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
