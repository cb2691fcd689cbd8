package render

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// DefaultFontSize matches the label size of the game's own state maps.
const DefaultFontSize = 10

// LoadFace loads a TrueType/OpenType font by path or by file name from the
// system font directories. When that fails it logs a warning and falls back
// to Go Regular, and to basicfont if even that cannot be built.
func LoadFace(name string, size float64, logger *zap.Logger) font.Face {
	if logger == nil {
		logger = zap.NewNop()
	}
	if size <= 0 {
		size = DefaultFontSize
	}
	if name != "" {
		face, err := loadFontFile(name, size)
		if err == nil {
			return face
		}
		logger.Warn("font not found, using default font", zap.String("font", name), zap.Error(err))
	}
	face, err := goRegular.face(size)
	if err != nil {
		logger.Warn("Go Regular unavailable, using basicfont", zap.Error(err))
		return basicfont.Face7x13
	}
	return face
}

func loadFontFile(name string, size float64) (font.Face, error) {
	path, err := resolveFontPath(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, err
	}
	return newFace(f, size)
}

var errFontNotFound = errors.New("font file not found")

// resolveFontPath returns name when it exists, otherwise searches the usual
// system font directories for a file with that base name.
func resolveFontPath(name string) (string, error) {
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}
	if filepath.IsAbs(name) || strings.ContainsRune(name, os.PathSeparator) {
		return "", errFontNotFound
	}
	for _, dir := range fontDirs() {
		var found string
		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return fs.SkipDir
			}
			if !d.IsDir() && strings.EqualFold(d.Name(), name) {
				found = path
				return fs.SkipAll
			}
			return nil
		})
		if found != "" {
			return found, nil
		}
	}
	return "", errFontNotFound
}

func fontDirs() []string {
	dirs := []string{"/usr/share/fonts", "/usr/local/share/fonts", "/Library/Fonts", "/System/Library/Fonts"}
	if windir := os.Getenv("WINDIR"); windir != "" {
		dirs = append(dirs, filepath.Join(windir, "Fonts"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs,
			filepath.Join(home, ".fonts"),
			filepath.Join(home, ".local", "share", "fonts"),
			filepath.Join(home, "Library", "Fonts"),
		)
	}
	return dirs
}

// fallbackFaces builds Go Regular faces once per size.
type fallbackFaces struct {
	mu    sync.Mutex
	font  *opentype.Font
	err   error
	faces map[float64]font.Face
}

var goRegular fallbackFaces

func (c *fallbackFaces) face(size float64) (font.Face, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.font == nil && c.err == nil {
		c.font, c.err = opentype.Parse(goregular.TTF)
	}
	if c.err != nil {
		return nil, c.err
	}
	if face, ok := c.faces[size]; ok {
		return face, nil
	}
	face, err := newFace(c.font, size)
	if err != nil {
		return nil, err
	}
	if c.faces == nil {
		c.faces = make(map[float64]font.Face)
	}
	c.faces[size] = face
	return face, nil
}

func newFace(f *opentype.Font, size float64) (font.Face, error) {
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}
