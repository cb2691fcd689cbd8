package palette

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statemap/internal/models"
)

func TestCache_RoundTripExtends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "colors.json")
	g := NewGenerator(11)

	p := New(models.WaterColor)
	p.Ensure(4, g)
	require.NoError(t, p.SaveCache(path, DefaultPastelFactor))

	loaded, err := LoadCache(path, models.WaterColor)
	require.NoError(t, err)
	assert.Equal(t, p.Colors, loaded.Colors)
	assert.Equal(t, models.WaterColor, loaded.Water.RGB())

	assert.Equal(t, 2, loaded.Ensure(6, g))
	assert.Equal(t, p.Colors, loaded.Colors[:4])
}

func TestCache_DropsWater(t *testing.T) {
	path := filepath.Join(t.TempDir(), "colors.json")
	p := New(models.WaterColor)
	p.Colors = []Color{FromRGB(models.WaterColor), {1, 0, 0}}
	require.NoError(t, p.SaveCache(path, DefaultPastelFactor))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"version": 1`)

	loaded, err := LoadCache(path, models.WaterColor)
	require.NoError(t, err)
	assert.Equal(t, []Color{{1, 0, 0}}, loaded.Colors)
}

func TestLoadCache_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadCache(filepath.Join(dir, "missing.json"), models.WaterColor)
	assert.ErrorIs(t, err, os.ErrNotExist)

	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"garbage", "\x80\x04pickle", ErrCacheCorrupt},
		{"version", `{"version": 2, "colors": []}`, ErrCacheVersion},
		{"channel range", `{"version": 1, "colors": [[0.5, 1.5, 0]]}`, ErrCacheCorrupt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			_, err := LoadCache(path, models.WaterColor)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
