// Package mockdata generates synthetic evaluation rows for seeding a
// development database. Responses are synthesized per model profile and
// scored with the real metrics engine, so seeded analytics look like real
// traffic instead of uniform noise.
package mockdata

import (
	"context"
	"crypto/rand"
	"encoding/csv"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"

	"github.com/okian/caliper/internal/domain/textmetrics"
	"github.com/okian/caliper/pkg/logger"
)

// randomFloatDivisor bounds the crypto/rand integer used to derive floats.
const randomFloatDivisor = 1000000

// Sampling grids swept for every model.
var (
	temperatures = []float64{0.1, 0.4, 0.7, 1.0, 1.3}
	topPs        = []float64{0.5, 0.8, 0.95}
)

// csvColumns is the seed file header consumed by the repository seeder.
var csvColumns = []string{
	"prompt", "model", "temperature", "top_p",
	"lexical_diversity", "query_coverage", "flesch_kincaid_grade", "repetition_penalty",
}

// prompts are the questions the synthetic responses answer. Each carries
// enough content words that query coverage varies meaningfully.
var prompts = []string{
	"Why is the sky blue during the day?",
	"Explain how photosynthesis converts sunlight into energy.",
	"What causes ocean tides to rise and fall?",
	"Describe the water cycle from evaporation to rainfall.",
	"How does a computer store information in binary?",
}

// Config controls one generation run.
type Config struct {
	// OutPath is the CSV file to write.
	OutPath string

	// Rows is the number of rows to generate per (model, temperature,
	// top_p) cell.
	Rows int

	// Models lists the model names to sweep. Defaults apply when empty.
	Models []string
}

// Generator produces scored mock rows.
type Generator struct {
	engine   *textmetrics.Engine
	profiles map[string]profile
	logger   logger.Logger
}

// NewGenerator creates a generator with the built-in model profiles.
func NewGenerator() *Generator {
	return &Generator{
		engine:   textmetrics.NewEngine(),
		profiles: defaultProfiles(),
		logger:   logger.Get().Named("mockdata"),
	}
}

// Run generates the configured rows and writes them as a seed CSV.
func (g *Generator) Run(ctx context.Context, cfg Config) (int, error) {
	if cfg.Rows < 1 {
		cfg.Rows = 1
	}
	if len(cfg.Models) == 0 {
		cfg.Models = defaultModels()
	}

	f, err := os.Create(cfg.OutPath)
	if err != nil {
		return 0, fmt.Errorf("mockdata: create output: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvColumns); err != nil {
		return 0, fmt.Errorf("mockdata: write header: %w", err)
	}

	written := 0
	for _, modelName := range cfg.Models {
		prof, ok := g.profiles[modelName]
		if !ok {
			prof = defaultProfile()
		}

		for _, temp := range temperatures {
			for _, topP := range topPs {
				for i := 0; i < cfg.Rows; i++ {
					if err := ctx.Err(); err != nil {
						return written, fmt.Errorf("mockdata: %w", err)
					}

					prompt := prompts[randomIndex(len(prompts))]
					response := prof.synthesize(prompt, temp)
					record := g.engine.Compute(prompt, response)

					row := []string{
						prompt,
						modelName,
						formatFloat(temp),
						formatFloat(topP),
						formatFloat(record.LexicalDiversity),
						formatFloat(record.QueryCoverage),
						formatFloat(record.FleschKincaidGrade),
						formatFloat(record.RepetitionPenalty),
					}
					if err := w.Write(row); err != nil {
						return written, fmt.Errorf("mockdata: write row: %w", err)
					}
					written++
				}
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return written, fmt.Errorf("mockdata: flush: %w", err)
	}

	g.logger.Info(ctx, "wrote mock data",
		logger.String("path", cfg.OutPath),
		logger.Int("rows", written),
	)

	return written, nil
}

// synthesize builds a response whose texture tracks the profile and
// temperature: hotter sampling widens the vocabulary, colder sampling
// repeats the profile's stock phrasing more often.
func (p profile) synthesize(prompt string, temperature float64) string {
	keywords := contentWords(prompt)

	sentences := p.baseSentences + randomIndex(3)
	var b strings.Builder
	for s := 0; s < sentences; s++ {
		// Cold runs restate the same stock sentence; the repetition
		// metric should see real trigram repeats.
		if randomFloat() < p.repetition*(1.5-temperature) {
			b.WriteString(p.stockSentence)
			b.WriteString(" ")
			continue
		}

		length := p.sentenceLength + randomIndex(5)
		words := make([]string, 0, length)
		for wi := 0; wi < length; wi++ {
			// Coverage: sprinkle prompt keywords in proportion to
			// the profile's faithfulness.
			if len(keywords) > 0 && randomFloat() < p.faithfulness {
				words = append(words, keywords[randomIndex(len(keywords))])
				continue
			}

			pool := p.vocabulary
			cutoff := int(float64(len(pool)) * (0.3 + 0.5*temperature))
			if cutoff < 8 {
				cutoff = 8
			}
			if cutoff > len(pool) {
				cutoff = len(pool)
			}
			words = append(words, pool[randomIndex(cutoff)])
		}
		b.WriteString(strings.Join(words, " "))
		b.WriteString(". ")
	}

	return strings.TrimSpace(b.String())
}

// contentWords extracts lower-cased words of at least four letters from the
// prompt so synthesized answers can echo them.
func contentWords(prompt string) []string {
	fields := strings.Fields(strings.ToLower(prompt))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,!?")
		if len(f) >= 4 {
			out = append(out, f)
		}
	}
	return out
}

// randomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func randomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// randomIndex returns a random int in [0, n).
func randomIndex(n int) int {
	if n < 1 {
		return 0
	}
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
