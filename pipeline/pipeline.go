package pipeline

import (
	"image"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/matte-ai/go-matte/images"
	"github.com/matte-ai/go-matte/inference"
	"github.com/matte-ai/go-matte/inference/providers"
	"github.com/matte-ai/go-matte/masks"
	"github.com/matte-ai/go-matte/models"
	"github.com/matte-ai/go-matte/profiler"
	"github.com/matte-ai/go-matte/util"
)

// Loader creates an inference engine for a model file. The default loader
// opens an ONNX Runtime session; tests swap in stubs.
type Loader func(modelPath string, backend providers.Backend) (inference.Engine, error)

func defaultLoader(modelPath string, backend providers.Backend) (inference.Engine, error) {
	return inference.NewSession(modelPath, backend)
}

// Option customizes a Pipeline at construction.
type Option func(*Pipeline)

// WithLoader replaces the engine loader.
func WithLoader(loader Loader) Option {
	return func(p *Pipeline) {
		p.loader = loader
	}
}

// WithLogger replaces the pipeline's log entry.
func WithLogger(log *logrus.Entry) Option {
	return func(p *Pipeline) {
		p.log = log
	}
}

// Pipeline turns one raw frame into one output frame: colorspace conversion,
// tensor preprocessing, model inference, mask refinement, and compositing.
// It exclusively owns the inference session, the persistent tensors inside
// it, and both colorspace converters. Renders and reconfigurations are
// serialized by a mutex; each is a short, bounded, blocking section.
//
// Lifecycle state moves on two independent axes. Geometry state: converters
// are built lazily on the first frame of a given (width, height, format) and
// torn down whenever the observed geometry changes. Model state: the session
// is (re)loaded only when the model choice or provider preference changes; a
// failed load leaves the session absent, renders pass frames through, and no
// retry happens until the next reconfiguration.
type Pipeline struct {
	mu sync.Mutex

	cfg        Config
	desc       models.Descriptor
	background images.BackgroundColor

	loader Loader
	engine inference.Engine // nil while unloaded or after a failed load

	toBGR   *images.Converter
	fromBGR *images.Converter

	timings *profiler.Tracker
	log     *logrus.Entry
}

// New creates a pipeline and loads the configured model. A model-load
// failure still returns a usable pipeline: renders pass frames through until
// a reconfiguration succeeds, matching the returned ErrConfiguration.
//
// Arguments:
//   - cfg: The initial settings.
//   - opts: Construction options.
//
// Returns:
//   - *Pipeline: The pipeline, usable even when err is an ErrConfiguration.
//   - error: An error if the settings are invalid or the model failed to
//     load.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, wrapKind(ErrConfiguration, err)
	}

	p := &Pipeline{
		loader:  defaultLoader,
		timings: profiler.NewTracker(),
		log:     logrus.WithField("component", "pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.apply(cfg)
	return p, p.reload()
}

// UpdateConfig applies new settings. Only a change to the model choice,
// provider preference, or model directory reloads the inference session; a
// sticky failed load is also retried here and nowhere else. Refinement knobs
// and the background color take effect on the next render without touching
// the session or the converters.
func (p *Pipeline) UpdateConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return wrapKind(ErrConfiguration, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	reload := p.cfg.needsReload(cfg) || p.engine == nil
	p.apply(cfg)
	if !reload {
		return nil
	}
	return p.reload()
}

// apply installs validated settings and their derived values. Callers hold
// the mutex (or own the pipeline exclusively during construction).
func (p *Pipeline) apply(cfg Config) {
	p.cfg = cfg
	p.background = images.BackgroundColorFromRGB(cfg.BackgroundColor)
	p.desc, _ = models.Lookup(cfg.Model) // validated above
}

// reload replaces the inference session for the current settings. On failure
// the session stays absent until the next reconfiguration.
func (p *Pipeline) reload() error {
	if p.engine != nil {
		if err := p.engine.Close(); err != nil {
			p.log.WithError(err).Warn("closing previous inference session")
		}
		p.engine = nil
	}

	path, err := util.FindModel(p.cfg.ModelDir, p.desc.File)
	if err != nil {
		p.log.WithError(err).Error("model file unavailable")
		return wrapKind(ErrConfiguration, err)
	}

	backend := providers.Default(p.cfg.UseAcceleratedProvider)
	engine, err := p.loader(path, backend)
	if err != nil {
		p.log.WithError(err).WithFields(logrus.Fields{
			"model":   string(p.cfg.Model),
			"backend": string(backend),
		}).Error("loading inference session")
		return wrapKind(ErrConfiguration, err)
	}

	p.engine = engine
	p.log.WithFields(logrus.Fields{
		"model":   string(p.cfg.Model),
		"backend": string(backend),
		"input":   engine.InputSize(),
		"output":  engine.OutputSize(),
	}).Info("inference session ready")
	return nil
}

// Render processes one frame in place: native frame to BGR, tensor
// preprocessing, inference, mask postprocessing, compositing, and back to the
// native layout. On any failure the frame is left unmodified for this cycle
// and the returned error carries the failure kind; the session survives
// transient inference errors.
func (p *Pipeline) Render(frame *images.VideoFrame) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.engine == nil {
		return wrapKind(ErrConfiguration, errors.New("no inference session loaded"))
	}

	if err := p.ensureConverters(frame); err != nil {
		p.log.WithError(err).Warn("frame conversion unavailable")
		return wrapKind(ErrConversion, err)
	}

	stop := p.timings.Start()

	bgr, err := p.toBGR.ToBGR(frame)
	if err != nil {
		p.log.WithError(err).Warn("converting frame to intermediate")
		return wrapKind(ErrConversion, err)
	}
	defer bgr.Close()

	if err := inference.PrepareInput(bgr, p.desc, p.engine); err != nil {
		p.log.WithError(err).Warn("preparing input tensor")
		return wrapKind(ErrInference, err)
	}

	if err := p.engine.Run(); err != nil {
		// Transient by contract: keep the session, skip this frame.
		p.log.WithError(err).Warn("inference run failed")
		return wrapKind(ErrInference, err)
	}

	mask, err := masks.Postprocess(
		p.engine.OutputData(),
		p.engine.OutputSize(),
		p.desc,
		p.cfg.params(),
		image.Pt(frame.Width, frame.Height),
	)
	if err != nil {
		p.log.WithError(err).Warn("postprocessing mask")
		return wrapKind(ErrInference, err)
	}
	defer mask.Close()

	images.CompositeBackground(&bgr, mask, p.background)

	if err := p.fromBGR.FromBGR(bgr, frame); err != nil {
		p.log.WithError(err).Warn("converting frame from intermediate")
		return wrapKind(ErrConversion, err)
	}

	stop()
	return nil
}

// ensureConverters lazily (re)builds both directional converters whenever the
// observed frame geometry differs from the one they were built with. The two
// directions share the frame's geometry, so they are always invalidated and
// rebuilt together.
func (p *Pipeline) ensureConverters(frame *images.VideoFrame) error {
	if p.toBGR != nil && p.toBGR.Matches(frame.Width, frame.Height, frame.Format) {
		return nil
	}

	p.toBGR, p.fromBGR = nil, nil

	to, err := images.NewConverter(images.ToIntermediate, frame.Width, frame.Height, frame.Format)
	if err != nil {
		return err
	}
	from, err := images.NewConverter(images.FromIntermediate, frame.Width, frame.Height, frame.Format)
	if err != nil {
		return err
	}

	p.toBGR, p.fromBGR = to, from
	p.log.WithFields(logrus.Fields{
		"width":  frame.Width,
		"height": frame.Height,
		"format": string(frame.Format),
	}).Info("initialized converters")
	return nil
}

// Timings returns the accumulated render timing summary.
func (p *Pipeline) Timings() profiler.Stats {
	return p.timings.Stats()
}

// Close releases the inference session. Converters hold no native resources.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.toBGR, p.fromBGR = nil, nil
	if p.engine == nil {
		return nil
	}
	err := p.engine.Close()
	p.engine = nil
	return err
}
