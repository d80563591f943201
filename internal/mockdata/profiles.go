package mockdata

// profile describes one synthetic model's writing habits.
type profile struct {
	// vocabulary is ordered from most to least common; temperature decides
	// how deep into the tail synthesis samples.
	vocabulary []string

	// stockSentence is the phrase the model falls back to when repeating
	// itself.
	stockSentence string

	// faithfulness is the probability a word is echoed from the prompt.
	faithfulness float64

	// repetition scales how often a whole sentence is restated verbatim.
	repetition float64

	baseSentences  int
	sentenceLength int
}

var commonVocabulary = []string{
	"the", "light", "water", "energy", "because", "through", "process",
	"molecules", "particles", "surface", "temperature", "system", "change",
	"different", "larger", "smaller", "amount", "between", "result",
	"absorbs", "reflects", "scatters", "travels", "converts", "produces",
	"atmosphere", "gravity", "pressure", "motion", "frequency", "wavelength",
	"photons", "electrons", "chlorophyll", "condensation", "precipitation",
	"equilibrium", "phenomenon", "interaction", "distribution", "magnitude",
	"oscillation", "refraction", "luminosity", "permeability", "viscosity",
}

// defaultModels returns the model names swept when none are configured.
func defaultModels() []string {
	return []string{"llama3.2", "mistral", "gemma2", "phi3"}
}

func defaultProfiles() map[string]profile {
	return map[string]profile{
		// Verbose, faithful, rarely repeats itself.
		"llama3.2": {
			vocabulary:     commonVocabulary,
			stockSentence:  "The underlying physical process explains this everyday observation.",
			faithfulness:   0.25,
			repetition:     0.05,
			baseSentences:  5,
			sentenceLength: 14,
		},
		// Terse and varied.
		"mistral": {
			vocabulary:     commonVocabulary,
			stockSentence:  "This follows directly from basic physics.",
			faithfulness:   0.2,
			repetition:     0.08,
			baseSentences:  3,
			sentenceLength: 10,
		},
		// Wordy with a tendency to restate its opener.
		"gemma2": {
			vocabulary:     commonVocabulary,
			stockSentence:  "Let us consider the question carefully and examine the key factors involved.",
			faithfulness:   0.15,
			repetition:     0.2,
			baseSentences:  6,
			sentenceLength: 16,
		},
		// Small model: short answers, heavy repetition, drifts off topic.
		"phi3": {
			vocabulary:     commonVocabulary,
			stockSentence:  "The answer is related to the properties of the system.",
			faithfulness:   0.1,
			repetition:     0.35,
			baseSentences:  3,
			sentenceLength: 8,
		},
	}
}

// defaultProfile covers model names without a dedicated profile.
func defaultProfile() profile {
	return profile{
		vocabulary:     commonVocabulary,
		stockSentence:  "The explanation comes down to how the system behaves.",
		faithfulness:   0.2,
		repetition:     0.1,
		baseSentences:  4,
		sentenceLength: 12,
	}
}
