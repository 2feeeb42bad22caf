package language_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/soignetech/itsupport-chatbot/internal/language"
)

func TestDetectFrench(t *testing.T) {
	d := language.NewDetector()

	assert.Equal(t, language.French, d.Detect("Comment réinitialiser mon mot de passe?"))
	assert.Equal(t, language.French, d.Detect("Mon imprimante ne fonctionne plus depuis ce matin"))
}

func TestDetectEnglish(t *testing.T) {
	d := language.NewDetector()

	assert.Equal(t, language.English, d.Detect("How do I reset my password?"))
	assert.Equal(t, language.English, d.Detect("The printer is not working"))
}

func TestDetectEmptyDefaultsToEnglish(t *testing.T) {
	d := language.NewDetector()

	assert.Equal(t, language.English, d.Detect(""))
	assert.Equal(t, language.English, d.Detect("   "))
}

func TestDetectDeterministic(t *testing.T) {
	d := language.NewDetector()

	first := d.Detect("Bonjour, mon ordinateur est bloqué")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, d.Detect("Bonjour, mon ordinateur est bloqué"))
	}
}
