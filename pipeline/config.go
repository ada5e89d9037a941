package pipeline

import (
	"github.com/pkg/errors"

	"github.com/matte-ai/go-matte/masks"
	"github.com/matte-ai/go-matte/models"
)

// Config is the pipeline's settings surface. It is a plain value: mutated
// only through UpdateConfig and read-only during frame processing, keeping
// the config-change versus geometry-change distinction enforceable.
type Config struct {
	// Threshold is the segmentation score cutoff in [0,1].
	Threshold float32 `json:"threshold" yaml:"threshold"`
	// ContourFilter is the fraction of image area in [0,1] below which a
	// disconnected mask region is discarded; 0 disables filtering.
	ContourFilter float32 `json:"contour_filter" yaml:"contour_filter"`
	// SmoothContour is the mask edge smoothing strength in [0,1]; 0 disables
	// smoothing.
	SmoothContour float32 `json:"smooth_contour" yaml:"smooth_contour"`
	// BackgroundColor is the replacement color as a 24-bit 0xRRGGBB value.
	BackgroundColor uint32 `json:"background_color" yaml:"background_color"`
	// Model selects the active segmentation model.
	Model models.Name `json:"model" yaml:"model"`
	// UseAcceleratedProvider requests the platform's accelerated execution
	// provider instead of the CPU default.
	UseAcceleratedProvider bool `json:"use_accelerated_provider" yaml:"use_accelerated_provider"`
	// ModelDir is the directory holding the model weight files.
	ModelDir string `json:"model_dir" yaml:"model_dir"`
}

// DefaultConfig returns the stock settings: mid threshold, mild contour
// filtering, medium smoothing, black background, SINet on CPU.
func DefaultConfig() Config {
	return Config{
		Threshold:       0.5,
		ContourFilter:   0.05,
		SmoothContour:   0.5,
		BackgroundColor: 0x000000,
		Model:           models.SINet,
		ModelDir:        "models",
	}
}

// Validate range-checks the settings and resolves the model name.
func (c Config) Validate() error {
	if c.Threshold < 0 || c.Threshold > 1 {
		return errors.Errorf("threshold %v outside [0,1]", c.Threshold)
	}
	if c.ContourFilter < 0 || c.ContourFilter > 1 {
		return errors.Errorf("contour filter %v outside [0,1]", c.ContourFilter)
	}
	if c.SmoothContour < 0 || c.SmoothContour > 1 {
		return errors.Errorf("smooth contour %v outside [0,1]", c.SmoothContour)
	}
	if c.BackgroundColor > 0xffffff {
		return errors.Errorf("background color %#x is not a 24-bit RGB value", c.BackgroundColor)
	}
	if _, err := models.Lookup(c.Model); err != nil {
		return err
	}
	return nil
}

// params returns the mask refinement knobs for the current settings.
func (c Config) params() masks.Params {
	return masks.Params{
		Threshold:     c.Threshold,
		ContourFilter: c.ContourFilter,
		SmoothContour: c.SmoothContour,
	}
}

// needsReload reports whether switching from c to next invalidates the
// loaded inference session. Refinement knobs and the background color never
// do; only the model choice and provider preference bind to the session.
func (c Config) needsReload(next Config) bool {
	return c.Model != next.Model ||
		c.UseAcceleratedProvider != next.UseAcceleratedProvider ||
		c.ModelDir != next.ModelDir
}
