package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	searchmodel "github.com/soignetech/itsupport-chatbot/internal/model/search"
)

func TestBuildContextLabelsAndOrder(t *testing.T) {
	docs := []searchmodel.Document{
		{Title: "Password Policy", Content: "Passwords rotate every 90 days."},
		{Content: "Call the helpdesk."},
	}

	contextBlock, sources := BuildContext(docs)

	assert.Equal(t,
		"[Document: Password Policy]\nPasswords rotate every 90 days.\n\n"+
			"[Document: N/A]\nCall the helpdesk.",
		contextBlock)
	assert.Equal(t, []string{"Password Policy", "Document sans titre"}, sources)
}

func TestBuildContextCapsAtThree(t *testing.T) {
	docs := []searchmodel.Document{
		{Title: "a", Content: "1"},
		{Title: "b", Content: "2"},
		{Title: "c", Content: "3"},
		{Title: "d", Content: "4"},
		{Title: "e", Content: "5"},
	}

	contextBlock, sources := BuildContext(docs)

	assert.Equal(t, []string{"a", "b", "c"}, sources)
	assert.NotContains(t, contextBlock, "[Document: d]")
	assert.NotContains(t, contextBlock, "[Document: e]")
}

func TestBuildContextEmpty(t *testing.T) {
	contextBlock, sources := BuildContext(nil)

	assert.Empty(t, contextBlock)
	assert.Empty(t, sources)
}
