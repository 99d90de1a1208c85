package catalog

import (
	"embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

//go:embed data/ref.csv data/exercises.csv
var builtinFS embed.FS

const (
	musclesFile   = "ref.csv"
	exercisesFile = "exercises.csv"
)

// Default returns the built-in catalog of RP volume landmarks.
func Default() (*Catalog, error) {
	sub, err := fs.Sub(builtinFS, "data")
	if err != nil {
		return nil, &LoadError{Err: err}
	}
	return loadCSVDir(sub)
}

// LoadFile builds a Catalog from a YAML or TOML document, or from a directory
// holding ref.csv and (optionally) exercises.csv.
func LoadFile(path string) (*Catalog, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &LoadError{Err: fmt.Errorf("opening catalog: %w", err)}
	}
	if info.IsDir() {
		return loadCSVDir(os.DirFS(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Err: fmt.Errorf("reading catalog: %w", err)}
	}

	var doc document
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	case ".toml":
		err = toml.Unmarshal(data, &doc)
	default:
		return nil, &LoadError{Err: fmt.Errorf("unsupported catalog format %q", ext)}
	}
	if err != nil {
		return nil, &LoadError{Err: fmt.Errorf("parsing %s: %w", filepath.Base(path), err)}
	}
	return doc.build()
}

// document is the YAML/TOML shape. Pointer fields distinguish a missing
// threshold from an explicit zero.
type document struct {
	Muscles []struct {
		Name string   `yaml:"name" toml:"name"`
		MV   *float64 `yaml:"mv" toml:"mv"`
		MEV  *float64 `yaml:"mev" toml:"mev"`
		MAV  string   `yaml:"mav" toml:"mav"`
		MRV  *float64 `yaml:"mrv" toml:"mrv"`
	} `yaml:"muscles" toml:"muscles"`
	Exercises []struct {
		Name         string `yaml:"name" toml:"name"`
		TargetMuscle string `yaml:"target_muscle" toml:"target_muscle"`
	} `yaml:"exercises" toml:"exercises"`
}

func (d document) build() (*Catalog, error) {
	muscles := make([]MuscleReference, 0, len(d.Muscles))
	for i, m := range d.Muscles {
		if m.MEV == nil || m.MRV == nil {
			return nil, &LoadError{Err: fmt.Errorf("muscle %d (%q): mev and mrv are required", i, m.Name)}
		}
		muscles = append(muscles, MuscleReference{Name: m.Name, MV: m.MV, MEV: *m.MEV, MAV: m.MAV, MRV: *m.MRV})
	}
	exercises := make([]ExerciseEntry, 0, len(d.Exercises))
	for _, e := range d.Exercises {
		exercises = append(exercises, ExerciseEntry{ExerciseName: e.Name, TargetMuscle: e.TargetMuscle})
	}
	return New(muscles, exercises)
}

func loadCSVDir(fsys fs.FS) (*Catalog, error) {
	f, err := fsys.Open(musclesFile)
	if err != nil {
		return nil, &LoadError{Err: fmt.Errorf("opening %s: %w", musclesFile, err)}
	}
	muscles, err := ParseMusclesCSV(f)
	f.Close()
	if err != nil {
		return nil, err
	}

	var exercises []ExerciseEntry
	f, err = fsys.Open(exercisesFile)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, &LoadError{Err: fmt.Errorf("opening %s: %w", exercisesFile, err)}
	default:
		exercises, err = ParseExercisesCSV(f)
		f.Close()
		if err != nil {
			return nil, err
		}
	}
	return New(muscles, exercises)
}

// ParseMusclesCSV reads a muscle table with a header row. "Body Part" (or
// "name"), "MEV" and "MRV" are required; "MV" and "MAV" are optional and
// blank cells leave them unset. Other columns are ignored.
func ParseMusclesCSV(r io.Reader) ([]MuscleReference, error) {
	records, cols, err := readCSV(r, []string{"body part|name", "mev", "mrv", "?mv", "?mav"})
	if err != nil {
		return nil, err
	}

	muscles := make([]MuscleReference, 0, len(records))
	for i, rec := range records {
		line := i + 2 // 1-based, after header
		name := strings.TrimSpace(rec[cols[0]])
		mev, err := parseThreshold(rec[cols[1]])
		if err != nil {
			return nil, &LoadError{Err: fmt.Errorf("line %d: mev: %w", line, err)}
		}
		mrv, err := parseThreshold(rec[cols[2]])
		if err != nil {
			return nil, &LoadError{Err: fmt.Errorf("line %d: mrv: %w", line, err)}
		}
		m := MuscleReference{Name: name, MEV: mev, MRV: mrv}
		if cell := optionalCell(rec, cols[3]); cell != "" {
			mv, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, &LoadError{Err: fmt.Errorf("line %d: mv: %w", line, err)}
			}
			m.MV = &mv
		}
		m.MAV = optionalCell(rec, cols[4])
		muscles = append(muscles, m)
	}
	return muscles, nil
}

// ParseExercisesCSV reads "Exercise Name" / "Target Muscle" pairs.
func ParseExercisesCSV(r io.Reader) ([]ExerciseEntry, error) {
	records, cols, err := readCSV(r, []string{"exercise name|name", "target muscle|target_muscle"})
	if err != nil {
		return nil, err
	}

	exercises := make([]ExerciseEntry, 0, len(records))
	for _, rec := range records {
		exercises = append(exercises, ExerciseEntry{
			ExerciseName: strings.TrimSpace(rec[cols[0]]),
			TargetMuscle: strings.TrimSpace(rec[cols[1]]),
		})
	}
	return exercises, nil
}

// readCSV returns the data rows and, for each wanted column, its index in
// the header. Alternatives for one column are separated by "|". A leading
// "?" marks a column optional; its index is -1 when absent.
func readCSV(r io.Reader, want []string) ([][]string, []int, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, &LoadError{Err: fmt.Errorf("reading csv: %w", err)}
	}
	if len(records) == 0 {
		return nil, nil, &LoadError{Err: errors.New("csv has no header row")}
	}

	header := records[0]
	cols := make([]int, len(want))
	for i, w := range want {
		optional := strings.HasPrefix(w, "?")
		w = strings.TrimPrefix(w, "?")
		cols[i] = -1
		for _, alt := range strings.Split(w, "|") {
			for j, h := range header {
				if strings.EqualFold(strings.TrimSpace(h), alt) {
					cols[i] = j
				}
			}
			if cols[i] >= 0 {
				break
			}
		}
		if cols[i] < 0 && !optional {
			return nil, nil, &LoadError{Err: fmt.Errorf("csv header is missing column %q", strings.Split(w, "|")[0])}
		}
	}
	return records[1:], cols, nil
}

func optionalCell(rec []string, col int) string {
	if col < 0 || col >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[col])
}

func parseThreshold(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("value is required")
	}
	return strconv.ParseFloat(s, 64)
}
