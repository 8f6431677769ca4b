package board

import (
	"strings"
	"unicode"
)

// stopwords are dropped during normalization: articles, pronouns and the
// filler words that transcription tends to inject.
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true,
	"i": true, "we": true, "you": true, "he": true, "she": true,
	"it": true, "they": true, "me": true, "us": true, "them": true,
	"my": true, "our": true, "your": true, "his": true, "her": true, "their": true,
	"um": true, "uh": true, "like": true, "just": true, "so": true,
	"really": true, "very": true, "okay": true, "ok": true, "well": true,
	"yeah": true, "gonna": true, "basically": true, "actually": true,
}

// NormalizedText is the comparison form of a candidate or board item:
// lower-cased, punctuation-trimmed, stopword-free tokens.
type NormalizedText struct {
	tokens []string
	joined string
}

// Normalize produces the comparison form of text. Pure and deterministic;
// an all-stopword or blank input normalizes to the empty form.
func Normalize(text string) NormalizedText {
	fields := strings.Fields(strings.ToLower(text))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tok := strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if tok == "" || stopwords[tok] {
			continue
		}
		tokens = append(tokens, tok)
	}
	return NormalizedText{tokens: tokens, joined: strings.Join(tokens, " ")}
}

// IsEmpty reports whether normalization left no tokens.
func (n NormalizedText) IsEmpty() bool { return len(n.tokens) == 0 }

// Tokens returns the normalized tokens in input order.
func (n NormalizedText) Tokens() []string { return n.tokens }

func (n NormalizedText) String() string { return n.joined }

// tokenSet returns the distinct tokens.
func (n NormalizedText) tokenSet() map[string]bool {
	set := make(map[string]bool, len(n.tokens))
	for _, t := range n.tokens {
		set[t] = true
	}
	return set
}
