// Package definition loads the province id to colour table (definition.csv).
package definition

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"statemap/internal/models"
	"statemap/internal/utils"
)

// ErrMalformedRow is wrapped by every row-level parse failure.
var ErrMalformedRow = errors.New("malformed definition row")

// Table is a bidirectional province id <-> colour lookup.
type Table struct {
	colors    map[int]models.RGB
	provinces map[models.RGB]int
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{
		colors:    make(map[int]models.RGB),
		provinces: make(map[models.RGB]int),
	}
}

// Add registers a province. A row re-using an id or a colour replaces the
// earlier mapping in both directions.
func (t *Table) Add(id int, c models.RGB) {
	if old, ok := t.colors[id]; ok {
		delete(t.provinces, old)
	}
	if oldID, ok := t.provinces[c]; ok {
		delete(t.colors, oldID)
	}
	t.colors[id] = c
	t.provinces[c] = id
}

// Color returns the colour of province id.
func (t *Table) Color(id int) (models.RGB, bool) {
	c, ok := t.colors[id]
	return c, ok
}

// Province returns the province painted with c.
func (t *Table) Province(c models.RGB) (int, bool) {
	id, ok := t.provinces[c]
	return id, ok
}

func (t *Table) Len() int {
	return len(t.colors)
}

// IDs returns all province ids in ascending order.
func (t *Table) IDs() []int {
	ids := make([]int, 0, len(t.colors))
	for id := range t.colors {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Load reads a definition file, trying the usual game text encodings.
func Load(path string) (*Table, error) {
	text, err := utils.ReadTextFile(path)
	if err != nil {
		return nil, err
	}
	table, err := Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// Parse reads `id;R;G;B;...` rows. Extra fields are ignored, blank lines and
// `#` comments are skipped.
func Parse(text string) (*Table, error) {
	table := NewTable()
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		id, c, err := parseRow(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		table.Add(id, c)
	}
	return table, nil
}

func parseRow(line string) (int, models.RGB, error) {
	fields := strings.Split(line, ";")
	if len(fields) < 4 {
		return 0, models.RGB{}, fmt.Errorf("%w: want at least 4 fields, got %d in %q", ErrMalformedRow, len(fields), line)
	}
	id, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return 0, models.RGB{}, fmt.Errorf("%w: id %q in %q", ErrMalformedRow, fields[0], line)
	}
	var channels [3]uint8
	for i := range channels {
		raw := strings.TrimSpace(fields[i+1])
		v, err := strconv.ParseUint(raw, 10, 8)
		if err != nil {
			return 0, models.RGB{}, fmt.Errorf("%w: channel %q in %q", ErrMalformedRow, raw, line)
		}
		channels[i] = uint8(v)
	}
	return id, models.RGB{R: channels[0], G: channels[1], B: channels[2]}, nil
}
