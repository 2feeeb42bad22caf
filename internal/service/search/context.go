package search

import (
	"fmt"
	"strings"

	searchmodel "github.com/soignetech/itsupport-chatbot/internal/model/search"
)

// Context-assembly caps and placeholders, matching the knowledge base's
// French authoring conventions.
const (
	maxContextDocuments = 3

	labelPlaceholder  = "N/A"
	sourcePlaceholder = "Document sans titre"
)

// BuildContext turns ranked documents into the grounding block handed to the
// generator, plus the parallel source labels shown to the user. At most three
// documents are used, in the retriever's order; nothing is re-sorted. Both
// outputs are empty when no documents were found.
func BuildContext(docs []searchmodel.Document) (string, []string) {
	if len(docs) > maxContextDocuments {
		docs = docs[:maxContextDocuments]
	}
	if len(docs) == 0 {
		return "", nil
	}

	sections := make([]string, 0, len(docs))
	sources := make([]string, 0, len(docs))
	for _, doc := range docs {
		label := doc.Title
		if label == "" {
			label = labelPlaceholder
		}
		sections = append(sections, fmt.Sprintf("[Document: %s]\n%s", label, doc.Content))

		source := doc.Title
		if source == "" {
			source = sourcePlaceholder
		}
		sources = append(sources, source)
	}

	return strings.Join(sections, "\n\n"), sources
}
