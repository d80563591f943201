package textmetrics

import (
	"strings"
	"unicode"
)

// Words splits text into word tokens with treebank-style boundaries:
// runs of letters and digits form words, contractions split before the
// apostrophe ("it's" -> "it", "'s"; "don't" -> "do", "n't"), and every
// other non-space rune becomes its own token. The rules are a documented
// heuristic; exact parity with any reference tokenizer is not guaranteed.
func Words(text string) []string {
	var tokens []string
	var buf []rune

	flush := func() {
		if len(buf) == 0 {
			return
		}
		tokens = append(tokens, splitContraction(string(buf))...)
		buf = buf[:0]
	}

	runes := []rune(text)
	for i, r := range runes {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			buf = append(buf, r)
		case r == '\'' && len(buf) > 0 && i+1 < len(runes) && unicode.IsLetter(runes[i+1]):
			// Apostrophe inside a word; contraction handling happens on flush.
			buf = append(buf, r)
		case unicode.IsSpace(r):
			flush()
		default:
			flush()
			tokens = append(tokens, string(r))
		}
	}
	flush()

	return tokens
}

// splitContraction breaks a word at its contraction boundary. Negations
// keep the "n't" suffix together; other contractions split at the last
// apostrophe so the suffix retains it.
func splitContraction(w string) []string {
	if strings.HasSuffix(w, "n't") && len(w) > len("n't") {
		return []string{w[:len(w)-len("n't")], "n't"}
	}
	if i := strings.LastIndexByte(w, '\''); i > 0 && i < len(w)-1 {
		return []string{w[:i], w[i:]}
	}
	return []string{w}
}

// Sentences splits text into sentences on runs of sentence terminators
// followed by whitespace. Text without terminators is a single sentence.
// Like Words, this approximates a reference sentence tokenizer.
func Sentences(text string) []string {
	var sentences []string
	var buf strings.Builder

	terminated := false
	for _, r := range text {
		switch {
		case r == '.' || r == '!' || r == '?':
			buf.WriteRune(r)
			terminated = true
		case terminated && unicode.IsSpace(r):
			if s := strings.TrimSpace(buf.String()); s != "" {
				sentences = append(sentences, s)
			}
			buf.Reset()
			terminated = false
		default:
			terminated = false
			buf.WriteRune(r)
		}
	}
	if s := strings.TrimSpace(buf.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

// Syllables estimates the syllable count of a word by counting transitions
// into vowel groups (a, e, i, o, u, y), discounting a trailing silent "e"
// when more than one syllable was counted, and flooring at one: a word is
// never zero syllables.
func Syllables(word string) int {
	w := strings.ToLower(word)

	count := 0
	prevVowel := false
	for _, r := range w {
		isVowel := strings.ContainsRune("aeiouy", r)
		if isVowel && !prevVowel {
			count++
		}
		prevVowel = isVowel
	}

	if strings.HasSuffix(w, "e") && count > 1 {
		count--
	}
	if count < 1 {
		count = 1
	}
	return count
}
