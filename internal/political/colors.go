// Package political reads country colours (common/countries/colors.txt).
package political

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"go.uber.org/zap"

	"statemap/internal/models"
	"statemap/internal/utils"
)

// ErrMalformedColor is wrapped when a colour entry cannot be parsed.
var ErrMalformedColor = errors.New("malformed colour entry")

var (
	commentRe = regexp.MustCompile(`#[^\n]*`)
	headerRe  = regexp.MustCompile(`([A-Za-z0-9_]+)\s*=\s*\{`)
	colorRe   = regexp.MustCompile(`(?i)(?:^|[^\w])color\s*=\s*(rgb|hsv)?\s*\{([^}]*)\}`)
)

// Table maps a country tag to its map colour.
type Table map[string]models.RGB

// Lookup finds tag case-insensitively.
func (t Table) Lookup(tag string) (models.RGB, bool) {
	c, ok := t[strings.ToUpper(tag)]
	return c, ok
}

// Load reads a political colour file.
func Load(path string, logger *zap.Logger) (Table, error) {
	text, err := utils.ReadTextFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(text, logger), nil
}

// Parse reads `TAG = { color = rgb { r g b } }` and `color = hsv { h s v }`
// blocks. Entries that cannot be parsed are logged and skipped.
func Parse(text string, logger *zap.Logger) Table {
	if logger == nil {
		logger = zap.NewNop()
	}
	text = commentRe.ReplaceAllString(text, "")
	table := make(Table)

	pos := 0
	for pos < len(text) {
		loc := headerRe.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			break
		}
		tag := strings.ToUpper(text[pos+loc[2] : pos+loc[3]])
		open := pos + loc[1] - 1
		end := matchBrace(text, open)
		if end < 0 {
			logger.Warn("unterminated political colour block", zap.String("tag", tag))
			break
		}
		body := text[open+1 : end]
		pos = end + 1

		c, err := parseEntry(body)
		if err != nil {
			logger.Warn("skipping political colour entry", zap.String("tag", tag), zap.Error(err))
			continue
		}
		table[tag] = c
	}
	return table
}

// matchBrace returns the index of the brace closing the one at open.
func matchBrace(text string, open int) int {
	depth := 0
	for i := open; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func parseEntry(body string) (models.RGB, error) {
	m := colorRe.FindStringSubmatch(body)
	if m == nil {
		return models.RGB{}, fmt.Errorf("%w: no color key", ErrMalformedColor)
	}
	fields := strings.Fields(m[2])
	if len(fields) != 3 {
		return models.RGB{}, fmt.Errorf("%w: want 3 channels, got %q", ErrMalformedColor, m[2])
	}
	var v [3]float64
	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return models.RGB{}, fmt.Errorf("%w: channel %q", ErrMalformedColor, f)
		}
		v[i] = x
	}

	if strings.EqualFold(m[1], "hsv") {
		return HSVToRGB(v[0], v[1], v[2]), nil
	}
	return models.RGB{R: clampByte(v[0]), G: clampByte(v[1]), B: clampByte(v[2])}, nil
}

// HSVToRGB converts hue, saturation and value normalised to [0,1].
func HSVToRGB(h, s, v float64) models.RGB {
	c := colorful.Hsv(math.Mod(clamp01(h), 1)*360, clamp01(s), clamp01(v))
	return models.RGBFromUnit(c.R, c.G, c.B)
}

func clampByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(v))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
