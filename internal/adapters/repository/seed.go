package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/okian/caliper/internal/domain/model"
)

// seedColumns is the expected CSV header for seed files. Column order is
// free; lookup is by name.
var seedColumns = []string{
	"prompt", "model", "temperature", "top_p",
	"lexical_diversity", "query_coverage", "flesch_kincaid_grade", "repetition_penalty",
}

// SeedFromCSV populates an empty store from a CSV snapshot and returns the
// number of inserted rows. It is idempotent across restarts: a non-empty
// store and a missing file both return (0, nil).
func (s *SQLiteStore) SeedFromCSV(ctx context.Context, path string) (int, error) {
	existing, err := s.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSeed, err)
	}
	if existing > 0 {
		return 0, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %w", ErrSeed, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %w", ErrSeed, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, col := range seedColumns {
		if _, ok := index[col]; !ok {
			return 0, fmt.Errorf("%w: missing column %q", ErrSeed, col)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSeed, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO evaluations
			(prompt, model, temperature, top_p,
			 lexical_diversity, query_coverage, flesch_kincaid_grade, repetition_penalty,
			 created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSeed, err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	inserted := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrSeed, err)
		}

		ev, err := parseSeedRow(record, index)
		if err != nil {
			return 0, err
		}

		if _, err := stmt.ExecContext(ctx,
			ev.Prompt, ev.Model, ev.Temperature, ev.TopP,
			ev.LexicalDiversity, ev.QueryCoverage, ev.FleschKincaidGrade, ev.RepetitionPenalty,
			now,
		); err != nil {
			return 0, fmt.Errorf("%w: %w", ErrSeed, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSeed, err)
	}

	return inserted, nil
}

func parseSeedRow(record []string, index map[string]int) (model.Evaluation, error) {
	field := func(name string) (string, error) {
		i := index[name]
		if i >= len(record) {
			return "", fmt.Errorf("%w: row too short for column %q", ErrSeed, name)
		}
		return record[i], nil
	}
	number := func(name string) (float64, error) {
		raw, err := field(name)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: column %q: %w", ErrSeed, name, err)
		}
		return v, nil
	}

	var ev model.Evaluation
	var err error
	if ev.Prompt, err = field("prompt"); err != nil {
		return ev, err
	}
	if ev.Model, err = field("model"); err != nil {
		return ev, err
	}
	if ev.Temperature, err = number("temperature"); err != nil {
		return ev, err
	}
	if ev.TopP, err = number("top_p"); err != nil {
		return ev, err
	}
	if ev.LexicalDiversity, err = number("lexical_diversity"); err != nil {
		return ev, err
	}
	if ev.QueryCoverage, err = number("query_coverage"); err != nil {
		return ev, err
	}
	if ev.FleschKincaidGrade, err = number("flesch_kincaid_grade"); err != nil {
		return ev, err
	}
	if ev.RepetitionPenalty, err = number("repetition_penalty"); err != nil {
		return ev, err
	}
	return ev, nil
}
