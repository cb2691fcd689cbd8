package states

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Field names a value extracted from a state file.
type Field string

const (
	FieldID                Field = "id"
	FieldProvinces         Field = "provinces"
	FieldManpower          Field = "manpower"
	FieldOwner             Field = "owner"
	FieldCategory          Field = "category"
	FieldIndustrialComplex Field = "industrial_complex"
	FieldArmsFactory       Field = "arms_factory"
	FieldInfrastructure    Field = "infrastructure"
	FieldDockyard          Field = "dockyard"
)

// ErrMissingField is wrapped when a required key is absent.
var ErrMissingField = errors.New("missing field")

// ErrMalformedField is wrapped when a key is present but cannot be parsed.
var ErrMalformedField = errors.New("malformed field")

var (
	commentRe   = regexp.MustCompile(`#[^\n]*`)
	provincesRe = regexp.MustCompile(`(?is)(?:^|[^\w])provinces\s*=\s*\{([^}]*)\}`)
)

// keyRe matches `key = value` where key is not the tail of a longer
// identifier, so `id` does not match `state_id`.
func keyRe(keys ...string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:^|[^\w])(?:` + strings.Join(keys, "|") + `)\s*=\s*"?([^\s"{}]+)"?`)
}

var (
	idRe                = keyRe("id")
	manpowerRe          = keyRe("manpower")
	ownerRe             = keyRe("owner")
	controllerRe        = keyRe("controller")
	categoryRe          = keyRe("state_category", "category")
	industrialComplexRe = keyRe("industrial_complex")
	armsFactoryRe       = keyRe("arms_factory")
	infrastructureRe    = keyRe("infrastructure")
	dockyardRe          = keyRe("dockyard")
)

// lookup returns the raw value of the first match of re.
func lookup(text string, re *regexp.Regexp) (string, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// required extracts and parses a mandatory key.
func required[T any](text string, field Field, re *regexp.Regexp, parse func(string) (T, error)) (T, error) {
	var zero T
	raw, ok := lookup(text, re)
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrMissingField, field)
	}
	v, err := parse(raw)
	if err != nil {
		return zero, fmt.Errorf("%w: %s = %q", ErrMalformedField, field, raw)
	}
	return v, nil
}

// orDefault extracts and parses an optional key. The second result reports
// whether def was used, either because the key is absent or unparsable.
func orDefault[T any](text string, re *regexp.Regexp, parse func(string) (T, error), def T) (T, bool) {
	raw, ok := lookup(text, re)
	if !ok {
		return def, true
	}
	v, err := parse(raw)
	if err != nil {
		return def, true
	}
	return v, false
}

// parseInt reads a non-negative count. Floats are truncated; values that are
// not finite or do not fit an int are rejected.
func parseInt(raw string) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		// some mods write manpower as a float
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil {
			return 0, err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt || f <= math.MinInt {
			return 0, fmt.Errorf("%q out of range", raw)
		}
		v = int(f)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative value %d", v)
	}
	return v, nil
}

func parseTag(raw string) (string, error) {
	if raw == "" {
		return "", errors.New("empty tag")
	}
	return strings.ToUpper(raw), nil
}

func parseName(raw string) (string, error) {
	if raw == "" {
		return "", errors.New("empty name")
	}
	return strings.ToLower(raw), nil
}

func parseProvinces(text string) ([]int, error) {
	m := provincesRe.FindStringSubmatch(text)
	if m == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, FieldProvinces)
	}
	fields := strings.Fields(m[1])
	ids := make([]int, 0, len(fields))
	for _, f := range fields {
		id, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %s entry %q", ErrMalformedField, FieldProvinces, f)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func stripComments(text string) string {
	return commentRe.ReplaceAllString(text, "")
}
