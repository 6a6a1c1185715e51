package telemetry

import "strings"

// Sentiment is a coarse keyword-derived signal over free text. Score is
// positive hits minus negative hits; Label buckets the score.
type Sentiment struct {
	Score    int
	Positive int
	Negative int
	Label    string
}

var positiveWords = []string{
	"love", "great", "fun", "awesome", "amazing", "good", "nice",
	"beautiful", "excellent", "addictive", "enjoyed", "best", "cool",
}

var negativeWords = []string{
	"hate", "bad", "boring", "broken", "bug", "buggy", "crash",
	"terrible", "awful", "worst", "unplayable", "refund", "laggy",
}

// Analyze counts positive and negative keyword occurrences across the given
// texts. Matching is case-insensitive on whole words; punctuation adjacent
// to a word is stripped.
func Analyze(texts []string) Sentiment {
	var s Sentiment
	for _, text := range texts {
		for _, word := range strings.Fields(strings.ToLower(text)) {
			word = strings.Trim(word, ".,!?;:\"'()[]")
			if contains(positiveWords, word) {
				s.Positive++
			}
			if contains(negativeWords, word) {
				s.Negative++
			}
		}
	}

	s.Score = s.Positive - s.Negative
	switch {
	case s.Score > 0:
		s.Label = "positive"
	case s.Score < 0:
		s.Label = "negative"
	default:
		s.Label = "neutral"
	}
	return s
}

func contains(words []string, w string) bool {
	for _, candidate := range words {
		if candidate == w {
			return true
		}
	}
	return false
}
