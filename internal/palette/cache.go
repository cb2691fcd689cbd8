package palette

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"statemap/internal/models"
	"statemap/internal/utils"
)

// CacheVersion is the schema version written to palette cache files.
const CacheVersion = 1

var (
	// ErrCacheVersion is returned for a cache written with another schema.
	ErrCacheVersion = errors.New("unsupported palette cache version")
	// ErrCacheCorrupt is returned for channels outside [0,1].
	ErrCacheCorrupt = errors.New("corrupt palette cache")
)

type cacheFile struct {
	Version      int     `json:"version"`
	PastelFactor float64 `json:"pastel_factor"`
	Colors       []Color `json:"colors"`
}

// LoadCache reads a palette cache. The water colour is never stored; if an
// older file contains it, it is dropped so it cannot be handed to a state.
// A missing file yields an error wrapping fs.ErrNotExist.
func LoadCache(path string, water models.RGB) (*Palette, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var format cacheFile
	if err := json.Unmarshal(data, &format); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheCorrupt, err)
	}
	if format.Version != CacheVersion {
		return nil, fmt.Errorf("%w: %d", ErrCacheVersion, format.Version)
	}

	p := New(water)
	waterRGB := p.Water.RGB()
	for i, c := range format.Colors {
		for _, ch := range c {
			if ch < 0 || ch > 1 {
				return nil, fmt.Errorf("%w: colour %d channel %v", ErrCacheCorrupt, i, ch)
			}
		}
		if c.RGB() == waterRGB {
			continue
		}
		p.Colors = append(p.Colors, c)
	}
	return p, nil
}

// SaveCache writes the palette without its water colour.
func (p *Palette) SaveCache(path string, pastelFactor float64) error {
	waterRGB := p.Water.RGB()
	colors := make([]Color, 0, len(p.Colors))
	for _, c := range p.Colors {
		if c.RGB() == waterRGB {
			continue
		}
		colors = append(colors, c)
	}

	format := cacheFile{
		Version:      CacheVersion,
		PastelFactor: pastelFactor,
		Colors:       colors,
	}
	data, err := json.MarshalIndent(format, "", "  ")
	if err != nil {
		return err
	}
	return utils.WriteBytesAtomic(path, data)
}
