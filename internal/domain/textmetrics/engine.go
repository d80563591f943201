// Package textmetrics computes objective quality scores for a single
// prompt/response pair: lexical diversity, query coverage, Flesch-Kincaid
// grade, and an n-gram repetition penalty.
//
// The engine is pure and stateless: identical inputs always produce
// identical output, it never returns an error, and concurrent calls are
// safe. Degenerate inputs (empty text, keyword-free prompts) resolve to
// documented numeric defaults instead of failures.
package textmetrics

import (
	"strings"

	"github.com/okian/caliper/internal/domain/model"
)

// Flesch-Kincaid grade formula coefficients.
const (
	fkSentenceWeight = 0.39
	fkSyllableWeight = 11.8
	fkBaseline       = 15.59
)

// shortTextTokenLimit is the token count below which a zero trigram
// repetition score falls back to bigrams. Trigram collisions are
// statistically unlikely on brief outputs even when the text repeats.
const shortTextTokenLimit = 50

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithStopwords replaces the default English stop-word table. The slice is
// copied into an internal set; the Engine never mutates it afterwards.
func WithStopwords(words []string) Option {
	return func(e *Engine) {
		if len(words) > 0 {
			e.stopwords = newStopwordSet(words)
		}
	}
}

// Engine scores responses against the prompts that produced them. The
// stop-word table is fixed at construction time and treated as immutable,
// so a single Engine can be shared across goroutines.
type Engine struct {
	stopwords map[string]struct{}
}

// NewEngine creates an Engine with the default English stop-word table.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		stopwords: defaultStopwords,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Compute scores a response against its prompt. A response that tokenizes
// to zero tokens short-circuits to the canonical all-zero record; empty
// strings are valid input.
func (e *Engine) Compute(prompt, response string) model.MetricRecord {
	tokens := Words(strings.ToLower(response))
	if len(tokens) == 0 {
		return model.MetricRecord{}
	}

	return model.MetricRecord{
		LexicalDiversity:   lexicalDiversity(tokens),
		QueryCoverage:      e.queryCoverage(prompt, tokens),
		FleschKincaidGrade: fleschKincaidGrade(len(Sentences(response)), tokens),
		RepetitionPenalty:  repetitionPenalty(tokens),
	}
}

// lexicalDiversity is the type/token ratio as a percentage. Bounded to
// (0, 100] for non-empty token sequences.
func lexicalDiversity(tokens []string) float64 {
	unique := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		unique[t] = struct{}{}
	}
	return float64(len(unique)) / float64(len(tokens)) * 100.0
}

// queryCoverage is the percentage of prompt keywords (prompt tokens minus
// stop words) that appear in the response. A prompt with no keywords has
// nothing to fail to cover, so coverage is 100.
func (e *Engine) queryCoverage(prompt string, responseTokens []string) float64 {
	keywords := make(map[string]struct{})
	for _, t := range Words(strings.ToLower(prompt)) {
		if _, stop := e.stopwords[t]; !stop {
			keywords[t] = struct{}{}
		}
	}
	if len(keywords) == 0 {
		return 100.0
	}

	responseSet := make(map[string]struct{}, len(responseTokens))
	for _, t := range responseTokens {
		responseSet[t] = struct{}{}
	}

	covered := 0
	for k := range keywords {
		if _, ok := responseSet[k]; ok {
			covered++
		}
	}
	return float64(covered) / float64(len(keywords)) * 100.0
}

// fleschKincaidGrade estimates the reading grade level from sentence length
// and syllable density. Zero detected sentences count as one; the zero-word
// branch is defensive only, the caller already short-circuits empty input.
func fleschKincaidGrade(numSentences int, tokens []string) float64 {
	if numSentences < 1 {
		numSentences = 1
	}
	numWords := len(tokens)
	if numWords == 0 {
		return 0.0
	}

	numSyllables := 0
	for _, t := range tokens {
		numSyllables += Syllables(t)
	}

	return fkSentenceWeight*(float64(numWords)/float64(numSentences)) +
		fkSyllableWeight*(float64(numSyllables)/float64(numWords)) -
		fkBaseline
}

// repetitionPenalty is the percentage of repeated contiguous n-grams.
// Trigrams are tried first; when the trigram score is exactly zero and the
// text is short, bigrams are used instead. The two scales are never
// averaged, the fallback is an explicit two-tier tie-break.
func repetitionPenalty(tokens []string) float64 {
	r3 := ngramRepeatRatio(tokens, 3)
	if r3 > 0.0 || len(tokens) >= shortTextTokenLimit {
		return r3
	}
	return ngramRepeatRatio(tokens, 2)
}

// ngramRepeatRatio returns 100 * (total - unique) / total over contiguous
// n-token windows, or 0 when fewer than n tokens exist.
func ngramRepeatRatio(tokens []string, n int) float64 {
	if len(tokens) < n {
		return 0.0
	}
	total := len(tokens) - n + 1
	unique := make(map[string]struct{}, total)
	for i := 0; i < total; i++ {
		unique[strings.Join(tokens[i:i+n], "\x1f")] = struct{}{}
	}
	return float64(total-len(unique)) / float64(total) * 100.0
}
