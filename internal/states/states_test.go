package states

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const historyState = `state={
	id=1
	name="STATE_1" # Corsica
	manpower = 322900

	state_category = town

	history={
		owner = FRA
		buildings = {
			infrastructure = 7
			industrial_complex = 1
			Arms_Factory = 2
			dockyard = 1
			air_base = 1
		}
		add_core_of = FRA
	}

	provinces={
		3838 9851 11804
	}
}
`

func TestParse_HistoryFile(t *testing.T) {
	s, err := Parse(historyState, ParseOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, s.ID)
	assert.Equal(t, []int{3838, 9851, 11804}, s.Provinces)
	assert.Equal(t, 322900, s.Manpower)
	assert.Equal(t, "FRA", s.Owner)
	assert.Equal(t, "town", s.Category)
	assert.Equal(t, 1, s.IndustrialComplex)
	assert.Equal(t, 2, s.ArmsFactory)
	assert.Equal(t, 7, s.Infrastructure)
	assert.Equal(t, 1, s.Dockyard)
	assert.Equal(t, 4, s.Factories())
	assert.Empty(t, s.DefaultedFields())
}

func TestParse_Defaults(t *testing.T) {
	s, err := Parse("id=12\nprovinces = { 12 }\nmanpower=5000\nowner=SOV\n", ParseOptions{})
	require.NoError(t, err)

	assert.Equal(t, 12, s.ID)
	assert.Equal(t, 5000, s.Manpower)
	assert.Equal(t, "SOV", s.Owner)
	assert.Equal(t, 0, s.IndustrialComplex)
	assert.Equal(t, DefaultCategory, s.Category)
	assert.Equal(t, []Field{
		FieldArmsFactory,
		FieldCategory,
		FieldDockyard,
		FieldIndustrialComplex,
		FieldInfrastructure,
	}, s.DefaultedFields())
	assert.False(t, s.Defaulted(FieldOwner))
}

func TestParse_OwnerFallback(t *testing.T) {
	t.Run("controller", func(t *testing.T) {
		s, err := Parse("ID = 3 provinces = { 1 2 } MANPOWER = 10 controller = ger", ParseOptions{})
		require.NoError(t, err)
		assert.Equal(t, "GER", s.Owner)
	})
	t.Run("sentinel", func(t *testing.T) {
		s, err := Parse("id = 3 provinces = { 1 } manpower = 10", ParseOptions{})
		require.NoError(t, err)
		assert.Equal(t, UnknownOwner, s.Owner)
		assert.True(t, s.Defaulted(FieldOwner))
	})
}

func TestParse_Failures(t *testing.T) {
	tests := []struct {
		name string
		text string
		want error
	}{
		{"empty", "  \n\t", ErrEmptyFile},
		{"missing manpower", "id=1 provinces={ 1 }", ErrMissingField},
		{"malformed manpower", "id=1 provinces={ 1 } manpower=lots", ErrMalformedField},
		{"missing id", "provinces={ 1 } manpower=1", ErrMissingField},
		{"missing provinces", "id=1 manpower=1", ErrMissingField},
		{"bad province", "id=1 provinces={ 1 x } manpower=1", ErrMalformedField},
		{"commented out manpower", "id=1 provinces={ 1 } # manpower=1", ErrMissingField},
		{"infinite manpower", "id=1 provinces={ 1 } manpower=inf", ErrMalformedField},
		{"negative infinite manpower", "id=1 provinces={ 1 } manpower=-Inf", ErrMalformedField},
		{"nan manpower", "id=1 provinces={ 1 } manpower=NaN", ErrMalformedField},
		{"huge manpower", "id=1 provinces={ 1 } manpower=1e30", ErrMalformedField},
		{"negative manpower", "id=1 provinces={ 1 } manpower=-5", ErrMalformedField},
		{"negative float manpower", "id=1 provinces={ 1 } manpower=-2.5", ErrMalformedField},
		{"comments only", "# state removed by the mod\n# id=3\n", ErrEmptyFile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text, ParseOptions{})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParse_FloatManpower(t *testing.T) {
	s, err := Parse("id=1 provinces={ 1 } manpower=1234.9 arms_factory=-2", ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1234, s.Manpower)
	assert.Equal(t, 0, s.ArmsFactory)
	assert.True(t, s.Defaulted(FieldArmsFactory))
}

func TestParse_StrategicRegion(t *testing.T) {
	text := "strategic_region={\n\tid=7\n\tname=\"STRATEGICREGION_7\"\n\tprovinces={\n\t\t1 2 3\n\t}\n}\n"

	_, err := Parse(text, ParseOptions{})
	require.ErrorIs(t, err, ErrMissingField)

	s, err := Parse(text, ParseOptions{AllowMissingManpower: true})
	require.NoError(t, err)
	assert.Equal(t, 7, s.ID)
	assert.Equal(t, 0, s.Manpower)
	assert.True(t, s.Defaulted(FieldManpower))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestLoadDir_SkipsBadFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "1-Corsica.txt", historyState)
	writeFile(t, dir, "2-Broken.txt", "state={ id=2 provinces={ 5 } }")
	writeFile(t, dir, "3-Empty.txt", "")
	writeFile(t, dir, "3-Removed.txt", "# removed in 1.9\n#state={ id=3 }\n")
	writeFile(t, dir, "4-Other.txt", "state={ id=4 manpower=100 provinces={ 6 7 } owner=ITA }")
	writeFile(t, dir, "readme.md", "id=9 provinces={ 9 } manpower=1")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.txt"), 0755))

	core, logs := observer.New(zapcore.DebugLevel)
	set, err := LoadDir(dir, ParseOptions{}, zap.New(core))
	require.NoError(t, err)

	assert.Equal(t, 2, set.Len())
	_, ok := set.Get(2)
	assert.False(t, ok)
	require.Len(t, set.Skipped, 1)
	assert.Equal(t, filepath.Join(dir, "2-Broken.txt"), set.Skipped[0].File)
	assert.ErrorIs(t, set.Skipped[0].Err, ErrMissingField)
	assert.Equal(t, 2, set.Empty)

	failures := logs.FilterMessage("failed to parse state file").All()
	require.Len(t, failures, 1)
	fields := failures[0].ContextMap()
	assert.Contains(t, fields["content"], "id=2")
	assert.NotEmpty(t, fields["trace"])

	ids := []int{}
	for _, s := range set.States() {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []int{1, 4}, ids)
}

func TestLoadDir_DuplicateID(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "id=1 provinces={ 1 } manpower=1")
	writeFile(t, dir, "b.txt", "id=1 provinces={ 2 } manpower=2")

	core, logs := observer.New(zapcore.WarnLevel)
	set, err := LoadDir(dir, ParseOptions{}, zap.New(core))
	require.NoError(t, err)

	s, ok := set.Get(1)
	require.True(t, ok)
	assert.Equal(t, 2, s.Manpower)
	assert.Equal(t, 1, logs.FilterMessage("duplicate state id, later file wins").Len())
}

func TestLoadDir_Unreadable(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "missing"), ParseOptions{}, nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
