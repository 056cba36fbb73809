// Package index converts transcripts and board OCR text into a flat document
// set with an inverted keyword index.
package index

import (
	"regexp"
	"strings"
)

// minKeywordLen filters out short tokens that carry little signal.
const minKeywordLen = 3

var nonWord = regexp.MustCompile(`[^\w\s]`)

// stopwords is a fixed English stopword list.
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"the", "and", "for", "are", "but", "not", "you", "all", "can", "had",
		"her", "was", "one", "our", "out", "day", "get", "has", "him", "his",
		"how", "its", "may", "new", "now", "old", "see", "two", "who", "boy",
		"did", "she", "use", "way", "will", "this", "that", "with", "have",
		"from", "they", "know", "want", "been", "good", "much", "some", "time",
		"very", "when", "come", "here", "just", "like", "long", "make", "many",
		"over", "such", "take", "than", "them", "well", "were",
	} {
		stopwords[w] = struct{}{}
	}
}

// Keywords extracts index keywords from text: lowercase, punctuation replaced
// by spaces, tokens of at least minKeywordLen characters, stopwords removed.
// The result preserves token order and duplicates.
func Keywords(text string) []string {
	normalized := nonWord.ReplaceAllString(strings.ToLower(text), " ")

	var keywords []string
	for _, token := range strings.Fields(normalized) {
		if len(token) < minKeywordLen {
			continue
		}
		if _, stop := stopwords[token]; stop {
			continue
		}
		keywords = append(keywords, token)
	}
	return keywords
}

// QueryKeywords extracts keywords from a user query. It applies the same
// normalization as indexing so query terms line up with postings; stopwords
// are filtered too, which keeps behavior consistent on both sides.
func QueryKeywords(query string) []string {
	return Keywords(query)
}
