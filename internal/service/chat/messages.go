package chat

import "github.com/soignetech/itsupport-chatbot/internal/language"

// Client-facing strings, localized to the detected question language.

func noContextAnswer(lang language.Lang) string {
	if lang == language.French {
		return "Je n'ai pas trouvé d'information pertinente dans ma base de connaissances IT. " +
			"Pouvez-vous reformuler ou contacter le support au poste 5555?"
	}
	return "I couldn't find relevant information in my IT knowledge base. " +
		"Could you rephrase or contact support at extension 5555?"
}

func duplicateMessage(lang language.Lang) string {
	if lang == language.French {
		return "Veuillez attendre quelques secondes avant de soumettre la même question."
	}
	return "Please wait a few seconds before submitting the same question."
}

func busyMessage(lang language.Lang) string {
	if lang == language.French {
		return "Services surchargés. Réessayez dans 30s."
	}
	return "Services busy. Retry in 30s."
}

func upstreamErrorMessage(lang language.Lang) string {
	if lang == language.French {
		return "Erreur du service distant. Réessayez plus tard."
	}
	return "Remote service error. Please retry later."
}

func timeoutMessage(lang language.Lang) string {
	if lang == language.French {
		return "Le service de recherche met trop de temps. Réessayez."
	}
	return "The search service is taking too long. Please retry."
}

func internalMessage(lang language.Lang) string {
	if lang == language.French {
		return "Erreur interne. Réessayez plus tard."
	}
	return "Internal error. Please retry later."
}

func emptyQuestionMessage(lang language.Lang) string {
	if lang == language.French {
		return "La question ne peut pas être vide."
	}
	return "The question cannot be empty."
}

func tooLongMessage(lang language.Lang) string {
	if lang == language.French {
		return "La question est trop longue (500 caractères maximum)."
	}
	return "The question is too long (500 characters maximum)."
}

func suspiciousMessage(lang language.Lang) string {
	if lang == language.French {
		return "Contenu suspect détecté dans la question."
	}
	return "Suspicious content detected in the question."
}
