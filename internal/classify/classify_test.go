package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"statemap/internal/definition"
	"statemap/internal/models"
	"statemap/internal/palette"
	"statemap/internal/political"
	"statemap/internal/states"
)

func mustState(t *testing.T, text string) *states.State {
	t.Helper()
	s, err := states.Parse(text, states.ParseOptions{})
	require.NoError(t, err)
	return s
}

func fixture(t *testing.T) (*definition.Table, []*states.State) {
	t.Helper()
	defs, err := definition.Parse("1;10;0;0\n2;20;0;0\n3;30;0;0\n4;40;0;0\n12;10;20;30\n")
	require.NoError(t, err)
	list := []*states.State{
		mustState(t, "id=1 provinces={ 1 2 } manpower=1000000 owner=GER industrial_complex=4 arms_factory=2"),
		mustState(t, "id=2 provinces={ 3 } manpower=3000000 owner=GER industrial_complex=1 dockyard=1"),
		mustState(t, "id=3 provinces={ 4 99 } manpower=500000 owner=ITA infrastructure=5"),
		mustState(t, "id=12 provinces={ 12 } manpower=5000 owner=SOV"),
	}
	return defs, list
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("2")
	require.NoError(t, err)
	assert.Equal(t, ModePolitical, m)

	m, err = ParseMode("Dockyards")
	require.NoError(t, err)
	assert.Equal(t, ModeDockyards, m)

	for _, bad := range []string{"-1", "11", "rivers"} {
		_, err := ParseMode(bad)
		assert.ErrorIs(t, err, ErrInvalidMode, bad)
	}

	assert.Len(t, Modes(), int(MaxMode)+1)
	assert.Equal(t, "factories", ModeFactories.String())
}

func TestBuild_StatesMode(t *testing.T) {
	defs, list := fixture(t)
	p := palette.New(models.WaterColor)
	p.Ensure(len(list), palette.NewGenerator(1))

	core, logs := observer.New(zapcore.WarnLevel)
	res, err := Build(Input{
		Mode:       ModeStates,
		Definition: defs,
		States:     list,
		Palette:    p,
		Water:      models.WaterColor,
	}, zap.New(core))
	require.NoError(t, err)

	target, ok := res.Replacement[models.RGB{R: 10, G: 20, B: 30}]
	require.True(t, ok)
	assert.Equal(t, 12, target.State)
	assert.Equal(t, p.RGB(3), target.Color)

	assert.Equal(t, res.Replacement[models.RGB{R: 10}].Color, res.Replacement[models.RGB{R: 20}].Color)
	assert.Equal(t, []int{99}, res.MissingProvinces)
	assert.Equal(t, 1, logs.FilterMessage("province not in definition").Len())
	assert.Nil(t, res.Bins)
}

func TestBuild_PaletteTooSmall(t *testing.T) {
	defs, list := fixture(t)
	_, err := Build(Input{Mode: ModeStates, Definition: defs, States: list, Palette: palette.New(models.WaterColor)}, nil)
	assert.ErrorIs(t, err, ErrPaletteTooSmall)
}

func TestBuild_PoliticalUnmappedOwnerIsWater(t *testing.T) {
	defs, list := fixture(t)
	table := political.Table{"GER": {R: 67, G: 74, B: 61}, "ITA": {R: 1, G: 2, B: 3}}

	core, logs := observer.New(zapcore.WarnLevel)
	res, err := Build(Input{
		Mode:       ModePolitical,
		Definition: defs,
		States:     list,
		Political:  table,
		Water:      models.WaterColor,
	}, zap.New(core))
	require.NoError(t, err)

	assert.Equal(t, models.RGB{R: 67, G: 74, B: 61}, res.StateColors[1])
	assert.Equal(t, models.RGB{R: 67, G: 74, B: 61}, res.StateColors[2])
	assert.Equal(t, models.WaterColor, res.StateColors[12])
	assert.Equal(t, []string{"SOV"}, res.UnmappedOwners)
	assert.Equal(t, 1, logs.FilterMessage("owner has no political colour, painting water").Len())

	// the state keeps its provinces so its id can still be labelled
	assert.Equal(t, 12, res.Replacement[models.RGB{R: 10, G: 20, B: 30}].State)
}

func TestBuild_NumericModes(t *testing.T) {
	defs, list := fixture(t)
	res, err := Build(Input{
		Mode:       ModeFactories,
		Definition: defs,
		States:     list,
		Water:      models.WaterColor,
		Steps:      3,
	}, nil)
	require.NoError(t, err)

	require.NotNil(t, res.Bins)
	assert.Equal(t, []float64{0, 3, 6}, res.Bins.Edges)
	assert.Equal(t, 6.0, res.Values[1])
	assert.Equal(t, res.Bins.Colors[2], res.StateColors[1])
	assert.Equal(t, res.Bins.Colors[0], res.StateColors[3])
	assert.True(t, res.Info.Continuous())
}

func TestBuild_DensityBelowOne(t *testing.T) {
	defs, list := fixture(t)
	res, err := Build(Input{
		Mode:       ModeDensity,
		Definition: defs,
		States:     list,
		Pixels:     map[int]int{1: 5_000_000, 2: 7_500_000, 3: 625_000, 12: 10_000},
		Water:      models.WaterColor,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 0.2, 0.4, 0.5, 0.8}, res.Bins.Edges)
	assert.Equal(t, "0.20 - 0.40", res.Bins.Labels[1])
	assert.Equal(t, res.Bins.Colors[1], res.StateColors[1])
	assert.Equal(t, res.Bins.Colors[4], res.StateColors[3])
	assert.NotEqual(t, res.StateColors[1], res.StateColors[3])
}

func TestBuild_ProvinceClaimedTwice(t *testing.T) {
	defs, err := definition.Parse("1;10;0;0")
	require.NoError(t, err)
	list := []*states.State{
		mustState(t, "id=1 provinces={ 1 } manpower=1"),
		mustState(t, "id=2 provinces={ 1 } manpower=1"),
	}
	p := palette.New(models.WaterColor)
	p.Ensure(2, palette.NewGenerator(1))

	res, err := Build(Input{Mode: ModeStates, Definition: defs, States: list, Palette: p}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Replacement[models.RGB{R: 10}].State)
}
