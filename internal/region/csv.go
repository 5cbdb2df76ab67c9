package region

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Dataset parsing errors.
var (
	ErrMissingColumn = errors.New("required column missing")
	ErrEmptyDataset  = errors.New("dataset contains no usable rows")
)

const datasetDateLayout = "2006-01-02"

// ParseDatasets merges a mobility CSV (state, date, workplace_mobility, ...)
// and a population CSV (state, population) into validated Region records.
// The latest dated mobility row per state wins. States missing from the
// population table fall back to the mean population of the known states.
// fetchedAt stamps rows whose date column is absent or unparseable.
func ParseDatasets(mobility, population io.Reader, fetchedAt time.Time) ([]Region, error) {
	populations, err := parsePopulations(population)
	if err != nil {
		return nil, fmt.Errorf("population dataset: %w", err)
	}

	latest, err := parseMobility(mobility, fetchedAt)
	if err != nil {
		return nil, fmt.Errorf("mobility dataset: %w", err)
	}
	if len(latest) == 0 {
		return nil, ErrEmptyDataset
	}

	fallback := meanPopulation(populations)

	regions := make([]Region, 0, len(latest))
	for name, row := range latest {
		pop, ok := populations[name]
		if !ok || pop <= 0 {
			pop = fallback
		}
		regions = append(regions, Region{
			ID:          IDFor(name),
			Name:        name,
			Population:  pop,
			MobilityPct: row.mobilityPct,
			LastUpdated: row.observedAt,
		})
	}

	sort.Slice(regions, func(a, b int) bool { return regions[a].Name < regions[b].Name })
	return regions, nil
}

type mobilityRow struct {
	mobilityPct float64
	observedAt  time.Time
}

func parseMobility(r io.Reader, fetchedAt time.Time) (map[string]mobilityRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	stateCol := columnIndex(header, "state")
	mobilityCol := columnIndex(header, "workplace_mobility")
	dateCol := columnIndex(header, "date")
	if stateCol < 0 || mobilityCol < 0 {
		return nil, fmt.Errorf("%w: need state and workplace_mobility", ErrMissingColumn)
	}

	latest := make(map[string]mobilityRow)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if mobilityCol >= len(record) || stateCol >= len(record) {
			continue
		}

		name := CanonicalName(record[stateCol])
		if name == "" {
			continue
		}

		pct, err := parseNumeric(record[mobilityCol])
		if err != nil {
			continue
		}

		observedAt := fetchedAt
		if dateCol >= 0 && dateCol < len(record) {
			if t, err := time.Parse(datasetDateLayout, strings.TrimSpace(record[dateCol])); err == nil {
				observedAt = t
			}
		}

		// Latest dated row per state wins; undated rows keep file order.
		if existing, ok := latest[name]; ok && existing.observedAt.After(observedAt) {
			continue
		}
		latest[name] = mobilityRow{mobilityPct: pct, observedAt: observedAt}
	}

	return latest, nil
}

func parsePopulations(r io.Reader) (map[string]int64, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	stateCol := columnIndex(header, "state")
	popCol := columnIndex(header, "population")
	if stateCol < 0 || popCol < 0 {
		return nil, fmt.Errorf("%w: need state and population", ErrMissingColumn)
	}

	populations := make(map[string]int64)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if stateCol >= len(record) || popCol >= len(record) {
			continue
		}

		name := CanonicalName(record[stateCol])
		if name == "" {
			continue
		}

		value, err := parseNumeric(record[popCol])
		if err != nil || value <= 0 {
			continue
		}
		populations[name] = int64(value)
	}

	return populations, nil
}

func meanPopulation(populations map[string]int64) int64 {
	if len(populations) == 0 {
		return 0
	}
	var sum int64
	for _, p := range populations {
		sum += p
	}
	return sum / int64(len(populations))
}

// parseNumeric extracts a float from a raw dataset cell, tolerating percent
// signs, thousands separators and stray whitespace.
func parseNumeric(raw string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '-', r == '.':
			return r
		default:
			return -1
		}
	}, raw)
	if cleaned == "" {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseFloat(cleaned, 64)
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}
