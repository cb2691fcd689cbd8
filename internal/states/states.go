// Package states loads state history and strategic region files.
package states

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"statemap/internal/utils"
)

const (
	// UnknownOwner is used when neither owner nor controller is set.
	UnknownOwner = "???"
	// DefaultCategory is used when the file has no category.
	DefaultCategory = "wasteland"
)

// ErrEmptyFile is returned by Parse for input holding only whitespace and
// comments.
var ErrEmptyFile = errors.New("empty state file")

// State is one administrative unit and the provinces it owns.
type State struct {
	ID                int
	Provinces         []int
	Manpower          int
	Owner             string
	Category          string
	IndustrialComplex int
	ArmsFactory       int
	Infrastructure    int
	Dockyard          int

	// Pixels is filled in by the raster pass.
	Pixels int
	// Source is the file the state was read from.
	Source string

	defaulted map[Field]bool
}

// Defaulted reports whether f fell back to its default value.
func (s *State) Defaulted(f Field) bool {
	return s.defaulted[f]
}

// DefaultedFields lists every defaulted field in a stable order.
func (s *State) DefaultedFields() []Field {
	out := make([]Field, 0, len(s.defaulted))
	for f, ok := range s.defaulted {
		if ok {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Factories is civilian + military + naval factories.
func (s *State) Factories() int {
	return s.IndustrialComplex + s.ArmsFactory + s.Dockyard
}

// ParseOptions tunes Parse.
type ParseOptions struct {
	// AllowMissingManpower accepts files without manpower (strategic regions).
	AllowMissingManpower bool
}

// Parse extracts a State from the contents of one file. Keys are matched
// case-insensitively and the first occurrence of each key wins.
func Parse(text string, opts ParseOptions) (*State, error) {
	text = stripComments(text)
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyFile
	}

	id, err := required(text, FieldID, idRe, parseInt)
	if err != nil {
		return nil, err
	}
	provinces, err := parseProvinces(text)
	if err != nil {
		return nil, err
	}

	s := &State{
		ID:        id,
		Provinces: provinces,
		defaulted: make(map[Field]bool),
	}

	if opts.AllowMissingManpower {
		s.Manpower, s.defaulted[FieldManpower] = orDefault(text, manpowerRe, parseInt, 0)
	} else {
		s.Manpower, err = required(text, FieldManpower, manpowerRe, parseInt)
		if err != nil {
			return nil, err
		}
	}

	owner, defaulted := orDefault(text, ownerRe, parseTag, "")
	if defaulted {
		owner, defaulted = orDefault(text, controllerRe, parseTag, UnknownOwner)
	}
	s.Owner, s.defaulted[FieldOwner] = owner, defaulted

	s.Category, s.defaulted[FieldCategory] = orDefault(text, categoryRe, parseName, DefaultCategory)
	s.IndustrialComplex, s.defaulted[FieldIndustrialComplex] = orDefault(text, industrialComplexRe, parseInt, 0)
	s.ArmsFactory, s.defaulted[FieldArmsFactory] = orDefault(text, armsFactoryRe, parseInt, 0)
	s.Infrastructure, s.defaulted[FieldInfrastructure] = orDefault(text, infrastructureRe, parseInt, 0)
	s.Dockyard, s.defaulted[FieldDockyard] = orDefault(text, dockyardRe, parseInt, 0)

	return s, nil
}

// Skipped records a file that could not be loaded.
type Skipped struct {
	File string
	Err  error
}

// Set is the result of loading a states directory.
type Set struct {
	byID    map[int]*State
	Skipped []Skipped
	// Empty counts files skipped because they had no content.
	Empty int
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{byID: make(map[int]*State)}
}

// Add stores s, replacing any state with the same id. It reports whether a
// state was replaced.
func (set *Set) Add(s *State) bool {
	_, replaced := set.byID[s.ID]
	set.byID[s.ID] = s
	return replaced
}

// Get returns the state with the given id.
func (set *Set) Get(id int) (*State, bool) {
	s, ok := set.byID[id]
	return s, ok
}

func (set *Set) Len() int {
	return len(set.byID)
}

// States returns all states sorted by id.
func (set *Set) States() []*State {
	out := make([]*State, 0, len(set.byID))
	for _, s := range set.byID {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadDir parses every *.txt file in dir in lexical order. Only an unreadable
// directory is an error; a file that fails to parse is logged and recorded in
// Set.Skipped.
func LoadDir(dir string, opts ParseOptions, logger *zap.Logger) (*Set, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read states directory: %w", err)
	}

	set := NewSet()
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".txt") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		logger.Debug("reading state file", zap.String("file", path))

		text, err := utils.ReadTextFile(path)
		if err != nil {
			logger.Error("failed to read state file", zap.String("file", path), zap.Error(err))
			set.Skipped = append(set.Skipped, Skipped{File: path, Err: err})
			continue
		}

		s, err := Parse(text, opts)
		if errors.Is(err, ErrEmptyFile) {
			set.Empty++
			continue
		}
		if err != nil {
			logger.Error("failed to parse state file",
				zap.String("file", path),
				zap.Error(err),
				zap.String("content", text),
				zap.Stack("trace"),
			)
			set.Skipped = append(set.Skipped, Skipped{File: path, Err: err})
			continue
		}
		s.Source = path
		if prev, ok := set.Get(s.ID); ok {
			logger.Warn("duplicate state id, later file wins",
				zap.Int("state", s.ID),
				zap.String("previous", prev.Source),
				zap.String("file", path),
			)
		}
		set.Add(s)
	}
	return set, nil
}
