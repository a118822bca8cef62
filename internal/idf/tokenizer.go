// Package idf computes per-funder document frequencies and the inverse
// document frequency weights derived from them.
package idf

import (
	"regexp"
	"strings"
)

// wordPattern matches maximal runs of Latin letters, apostrophes and hyphens
// in already case-folded text.
var wordPattern = regexp.MustCompile(`[a-z'-]+`)

// Tokenize splits text into lowercase words. Digits, punctuation other than
// apostrophes and hyphens, and whitespace act as separators. Repeated words
// are kept in order.
func Tokenize(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}
