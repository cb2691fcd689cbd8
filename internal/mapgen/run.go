// Package mapgen drives one map generation run from input files to the
// written PNG outputs.
package mapgen

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"time"

	"go.uber.org/zap"

	"statemap/internal/classify"
	"statemap/internal/definition"
	"statemap/internal/models"
	"statemap/internal/palette"
	"statemap/internal/political"
	"statemap/internal/render"
	"statemap/internal/states"
	"statemap/internal/utils"
)

var (
	ErrStatesDir   = errors.New("states directory not readable")
	ErrDefinition  = errors.New("definition not readable")
	ErrBitmap      = errors.New("provinces bitmap not readable")
	ErrPolitical   = errors.New("political colours not readable")
	ErrUnknownRamp = errors.New("unknown colour ramp")
	ErrOutput      = errors.New("output not written")
)

// Options are the inputs of one run.
type Options struct {
	Mode       classify.Mode
	Provinces  string
	Definition string
	States     string
	Output     string

	// Colors is the palette cache used in states mode. Empty disables it.
	Colors string
	// Political is the country colours file read in political mode.
	Political string

	Font     string
	FontSize float64
	NoIDs    bool

	Steps   int
	Ramp    string
	Workers int
	// Seed fixes the palette generator; 0 is random.
	Seed uint64
	// Regions accepts files without manpower, such as strategic regions.
	Regions bool
}

// DefaultOptions returns the options used when a flag is not given.
func DefaultOptions() Options {
	return Options{
		Colors:    "statemap_colors.json",
		Political: "common/countries/colors.txt",
		Font:      "ARIALN.TTF",
		FontSize:  render.DefaultFontSize,
		Steps:     classify.DefaultSteps,
		Ramp:      palette.DefaultRamp,
	}
}

// Report summarises a finished run.
type Report struct {
	Mode             classify.ModeInfo
	StatesLoaded     int
	StatesSkipped    int
	EmptyFiles       int
	ColorsGenerated  int
	MissingProvinces int
	UnmappedOwners   []string
	WaterPixels      int
	Outputs          []string
	Elapsed          time.Duration
}

// runner owns everything loaded for one run. Nothing is shared between runs.
type runner struct {
	opts   Options
	info   classify.ModeInfo
	ramp   palette.Ramp
	logger *zap.Logger

	defs      *definition.Table
	list      []*states.State
	political political.Table
	img       *image.NRGBA
	palette   *palette.Palette

	report *Report
}

type output struct {
	path    string
	payload []byte
}

// Run loads the inputs, classifies the states, repaints and labels the map
// and renders the legend. Outputs are written only after every stage has
// succeeded, so a failed run leaves at most the palette cache behind.
func Run(ctx context.Context, opts Options, logger *zap.Logger) (*Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	start := time.Now()

	info, ok := classify.Lookup(opts.Mode)
	if !ok {
		return nil, fmt.Errorf("%w: %d (want 0-%d)", classify.ErrInvalidMode, int(opts.Mode), classify.MaxMode)
	}
	rampName := opts.Ramp
	if rampName == "" {
		rampName = palette.DefaultRamp
	}
	ramp, ok := palette.LookupRamp(rampName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRamp, rampName)
	}

	r := &runner{
		opts:   opts,
		info:   info,
		ramp:   ramp,
		logger: logger.With(zap.String("mode", info.Name)),
		report: &Report{Mode: info},
	}

	if err := r.load(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, err := r.classify()
	if err != nil {
		return nil, err
	}
	outputs, err := r.render(ctx, res)
	if err != nil {
		return nil, err
	}
	for _, out := range outputs {
		if err := utils.WriteBytesAtomic(out.path, out.payload); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrOutput, out.path, err)
		}
		r.report.Outputs = append(r.report.Outputs, out.path)
		r.logger.Info("wrote output", zap.String("file", out.path), zap.Int("bytes", len(out.payload)))
	}

	r.report.Elapsed = time.Since(start)
	return r.report, nil
}

func (r *runner) load() error {
	if st, err := os.Stat(r.opts.States); err != nil {
		return fmt.Errorf("%w: %w", ErrStatesDir, err)
	} else if !st.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrStatesDir, r.opts.States)
	}

	set, err := states.LoadDir(r.opts.States, states.ParseOptions{AllowMissingManpower: r.opts.Regions}, r.logger)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStatesDir, err)
	}
	r.list = set.States()
	r.report.StatesLoaded = set.Len()
	r.report.StatesSkipped = len(set.Skipped)
	r.report.EmptyFiles = set.Empty
	r.logger.Info("loaded states",
		zap.Int("states", set.Len()),
		zap.Int("skipped", len(set.Skipped)),
		zap.Int("empty", set.Empty),
	)

	defs, err := definition.Load(r.opts.Definition)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDefinition, err)
	}
	r.defs = defs
	r.logger.Info("loaded definition", zap.Int("provinces", defs.Len()))

	if r.info.Mode == classify.ModePolitical {
		table, err := political.Load(r.opts.Political, r.logger)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrPolitical, err)
		}
		r.political = table
		r.logger.Info("loaded political colours", zap.Int("countries", len(table)))
	}

	img, err := render.DecodeFile(r.opts.Provinces)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBitmap, err)
	}
	r.img = img
	r.logger.Debug("decoded provinces bitmap",
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()),
	)

	if r.info.Mode == classify.ModeStates {
		r.palette = r.loadPalette()
	}
	return nil
}

// loadPalette grows the cached palette to one colour per state. Cache
// problems are never fatal: a broken cache is replaced by a fresh palette.
func (r *runner) loadPalette() *palette.Palette {
	water := models.WaterColor
	path := r.opts.Colors

	p := palette.New(water)
	if path != "" {
		cached, err := palette.LoadCache(path, water)
		switch {
		case err == nil:
			p = cached
			r.logger.Debug("loaded palette cache", zap.String("file", path), zap.Int("colors", p.Len()))
		case errors.Is(err, fs.ErrNotExist):
			r.logger.Info("palette cache not found, starting a new one", zap.String("file", path))
		default:
			r.logger.Warn("palette cache unusable, starting a new one", zap.String("file", path), zap.Error(err))
		}
	}

	gen := palette.NewGenerator(r.opts.Seed)
	generated := p.Ensure(len(r.list), gen)
	r.report.ColorsGenerated = generated
	if generated > 0 {
		r.logger.Info("generated palette colours", zap.Int("generated", generated), zap.Int("total", p.Len()))
		if path != "" {
			if err := p.SaveCache(path, gen.PastelFactor); err != nil {
				r.logger.Warn("failed to save palette cache", zap.String("file", path), zap.Error(err))
			}
		}
	}
	return p
}

func (r *runner) classify() (*classify.Result, error) {
	in := classify.Input{
		Mode:       r.info.Mode,
		Definition: r.defs,
		States:     r.list,
		Palette:    r.palette,
		Political:  r.political,
		Water:      models.WaterColor,
		Steps:      r.opts.Steps,
		Ramp:       r.ramp,
	}
	if r.info.Mode == classify.ModeDensity {
		in.Pixels = classify.PixelsByState(r.defs, r.list, render.Census(r.img))
	}

	res, err := classify.Build(in, r.logger)
	if err != nil {
		return nil, err
	}
	r.report.MissingProvinces = len(res.MissingProvinces)
	r.report.UnmappedOwners = res.UnmappedOwners
	return res, nil
}

func (r *runner) render(ctx context.Context, res *classify.Result) ([]output, error) {
	painted := render.Paint(r.img, res.Replacement, models.WaterColor, !r.opts.NoIDs)
	r.report.WaterPixels = painted.Water
	for _, s := range r.list {
		s.Pixels = painted.Counts[s.ID]
	}

	if !r.opts.NoIDs {
		centroids, err := render.Centroids(ctx, painted.Footprints, painted.Width, r.opts.Workers)
		if err != nil {
			return nil, err
		}
		face := render.LoadFace(r.opts.Font, r.opts.FontSize, r.logger)
		render.DrawLabels(r.img, centroids, face, models.LabelColor)
		r.logger.Debug("drew state labels", zap.Int("labels", len(centroids)))
	}

	mapPNG, err := render.EncodePNG(r.img)
	if err != nil {
		return nil, fmt.Errorf("%w: encode map: %w", ErrOutput, err)
	}
	outputs := []output{{path: r.opts.Output, payload: mapPNG}}

	if res.Bins != nil {
		opts := render.DefaultLegendOptions()
		opts.Title = res.Info.Description
		legendPNG, err := render.EncodePNG(render.RenderLegend(res.Bins, opts))
		if err != nil {
			return nil, fmt.Errorf("%w: encode legend: %w", ErrOutput, err)
		}
		outputs = append(outputs, output{path: render.LegendPath(r.opts.Output), payload: legendPNG})
	}
	return outputs, nil
}
