package main

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statemap/internal/classify"
	"statemap/internal/version"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestModesCommand(t *testing.T) {
	out, err := execute(t, "modes")
	require.NoError(t, err)
	assert.Contains(t, out, "political")
	assert.Contains(t, out, "dockyards")
	assert.Contains(t, out, "YlOrRd")
	assert.Equal(t, len(classify.Modes())+1, strings.Count(strings.SplitN(out, "\n\n", 2)[0], "\n")+1)
}

func TestChangesCommand(t *testing.T) {
	out, err := execute(t, "changes")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "statemap "+version.Version+"\n"))
	assert.Equal(t, len(version.Changes)+1, strings.Count(out, "\n"))
}

func TestRoot_Version(t *testing.T) {
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, version.Version)
}

func TestRoot_InvalidModeReadsNothing(t *testing.T) {
	// none of these paths exist; the mode check must come first
	_, err := execute(t, "12", "a.bmp", "b.csv", "states", "out.png")
	assert.ErrorIs(t, err, classify.ErrInvalidMode)
}

func TestRoot_WrongArgCount(t *testing.T) {
	_, err := execute(t, "0", "a.bmp")
	assert.Error(t, err)
}

func TestRoot_GeneratesMap(t *testing.T) {
	dir := t.TempDir()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for i := 0; i < len(img.Pix); i += 4 {
		copy(img.Pix[i:], []uint8{10, 20, 30, 0xFF})
	}
	f, err := os.Create(filepath.Join(dir, "provinces.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "definition.csv"), []byte("12;10;20;30;land;false;plains;1\n"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "states"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "states", "12.txt"),
		[]byte("state={ id=12 manpower=5000 history={ owner=SOV } provinces={ 12 } }"), 0644))

	output := filepath.Join(dir, "map.png")
	out, err := execute(t,
		"infrastructure",
		filepath.Join(dir, "provinces.png"),
		filepath.Join(dir, "definition.csv"),
		filepath.Join(dir, "states"),
		output,
		"--no-ids",
		"--log-level", "error",
	)
	require.NoError(t, err)
	assert.Contains(t, out, output)
	assert.FileExists(t, output)
	assert.FileExists(t, filepath.Join(dir, "map_legend.png"))
}
