package search

// Document is a single knowledge-base passage returned by the search
// collaborator. Title may be empty; the assembler substitutes a placeholder.
type Document struct {
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
}
