package analyzer

// getStopWords returns common English function words excluded from theme
// extraction
func getStopWords() map[string]bool {
	words := []string{
		"the", "and", "for", "are", "but", "not", "you", "all", "can", "had",
		"her", "was", "one", "our", "out", "day", "get", "has", "him", "his",
		"how", "its", "may", "new", "now", "old", "see", "two", "way", "who",
		"about", "after", "again", "been", "before", "being", "could", "did",
		"does", "doing", "down", "each", "from", "have", "here", "into",
		"just", "like", "more", "most", "only", "other", "over", "some",
		"such", "than", "that", "them", "then", "there", "these", "they",
		"this", "through", "under", "until", "very", "were", "what", "when",
		"where", "which", "while", "will", "with", "would", "your", "really",
	}

	stopWords := make(map[string]bool)
	for _, word := range words {
		stopWords[word] = true
	}
	return stopWords
}

// getPositiveWords returns the positive-affect lexicon
func getPositiveWords() map[string]bool {
	words := []string{
		"good", "great", "excellent", "amazing", "wonderful", "fantastic",
		"happy", "happiness", "joy", "joyful", "love", "loved", "excited",
		"exciting", "grateful", "gratitude", "proud", "calm", "peaceful",
		"hopeful", "beautiful", "fun", "success", "successful", "accomplished",
		"energized", "optimistic", "blessed", "delighted", "thrilled",
		"content", "relaxed", "inspired", "motivated", "cheerful", "glad",
	}

	positiveWords := make(map[string]bool)
	for _, word := range words {
		positiveWords[word] = true
	}
	return positiveWords
}

// getNegativeWords returns the negative-affect lexicon
func getNegativeWords() map[string]bool {
	words := []string{
		"bad", "terrible", "awful", "horrible", "sad", "sadness", "angry",
		"anger", "hate", "hated", "anxious", "anxiety", "stressed", "stress",
		"worried", "worry", "frustrated", "frustrating", "tired", "exhausted",
		"depressed", "lonely", "afraid", "fear", "upset", "annoyed",
		"disappointed", "miserable", "pain", "hurt", "sick", "fail",
		"failure", "overwhelmed", "gloomy", "nervous",
	}

	negativeWords := make(map[string]bool)
	for _, word := range words {
		negativeWords[word] = true
	}
	return negativeWords
}

// getCategoryKeywords returns the canonical category keyword map: a fixed,
// hand-authored table mapping category archetypes to characteristic
// vocabulary. Keywords are single lower-case words so matching can run
// against a token frequency table.
func getCategoryKeywords() map[string][]string {
	return map[string][]string{
		"Work": {
			"job", "work", "office", "meeting", "project", "boss",
			"colleague", "deadline", "career", "promotion",
		},
		"Personal": {
			"myself", "goals", "habits", "routine", "reflection",
			"growth", "plans", "journal",
		},
		"Family": {
			"family", "mom", "dad", "mother", "father", "sister",
			"brother", "kids", "children", "parents",
		},
		"Health": {
			"health", "exercise", "workout", "gym", "doctor", "sleep",
			"diet", "running", "yoga", "medicine",
		},
		"Travel": {
			"travel", "trip", "flight", "vacation", "hotel", "beach",
			"airport", "journey", "explore", "destination",
		},
		"Finance": {
			"money", "budget", "savings", "salary", "invest", "spending",
			"debt", "bills", "bank", "expenses",
		},
		"Education": {
			"school", "study", "class", "learning", "course", "exam",
			"university", "homework", "teacher", "lecture",
		},
		"Creative": {
			"writing", "painting", "music", "drawing", "design",
			"poetry", "photography", "craft", "song", "sketch",
		},
		"Spiritual": {
			"prayer", "meditation", "faith", "church", "spirit",
			"soul", "worship", "blessing", "scripture",
		},
		"Social": {
			"friends", "party", "dinner", "conversation", "community",
			"gathering", "club", "neighbors", "reunion", "celebration",
		},
	}
}
