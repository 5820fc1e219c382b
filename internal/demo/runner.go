package demo

import (
	"fmt"
	"io"
	"slices"

	"github.com/tidwall/sjson"

	"github.com/amin-mir/gap-buffer/internal/engine/gapbuffer"
	"github.com/amin-mir/gap-buffer/internal/engine/snapshot"
	"github.com/amin-mir/gap-buffer/internal/logging"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Runner executes scenarios and reports each step to an io.Writer.
type Runner struct {
	out     io.Writer
	format  string
	gapSize int
	logger  *logging.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithFormat selects FormatText or FormatJSON output.
func WithFormat(format string) RunnerOption {
	return func(r *Runner) {
		r.format = format
	}
}

// WithGapSize sets the gap size of the buffers the runner creates.
func WithGapSize(n int) RunnerOption {
	return func(r *Runner) {
		r.gapSize = n
	}
}

// WithLogger sets the logger. Growth events are logged at debug.
func WithLogger(l *logging.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner creates a runner writing text output to out.
func NewRunner(out io.Writer, opts ...RunnerOption) *Runner {
	r := &Runner{
		out:     out,
		format:  FormatText,
		gapSize: gapbuffer.DefaultGapSize,
		logger:  logging.Null(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.WithComponent("demo")
	return r
}

// Run applies every step of s to a fresh buffer and returns the final
// logical sequence. It stops at the first step that fails or leaves the
// buffer inconsistent.
func (r *Runner) Run(s Scenario) ([]string, error) {
	if r.format != FormatText && r.format != FormatJSON {
		return nil, fmt.Errorf("unknown format %q", r.format)
	}

	log := r.logger.WithField("scenario", s.Name)
	released := 0
	opts := []gapbuffer.Option[string]{
		gapbuffer.WithGapSize[string](r.gapSize),
		gapbuffer.WithReleaseFunc(func(string) { released++ }),
	}
	if log.Level() <= logging.LogLevelDebug {
		opts = append(opts, gapbuffer.WithObserver[string](gapbuffer.ObserverFuncs{
			Grow: func(oldCap, newCap int) {
				log.WithFields(map[string]any{"old_cap": oldCap, "new_cap": newCap}).Debug("buffer grew")
			},
		}))
	}
	gb := gapbuffer.New(slices.Clone(s.Initial), opts...)

	// Elements still in the buffer are released on every return path.
	defer func() {
		stats := gb.Stats()
		live := gb.Len()
		gb.Release()
		log.WithFields(map[string]any{
			"len":      live,
			"grows":    stats.Grows,
			"moved":    stats.Moved,
			"released": released,
		}).Info("scenario finished")
	}()

	if err := r.report(gb, "initial", ""); err != nil {
		return nil, err
	}

	for i, step := range s.Steps {
		result, err := step.Apply(gb)
		if err != nil {
			return nil, fmt.Errorf("step %d %s: %w", i, step.Name, err)
		}
		if err := gb.CheckInvariants(); err != nil {
			return nil, fmt.Errorf("step %d %s: %w", i, step.Name, err)
		}
		if err := r.report(gb, step.Name, result); err != nil {
			return nil, err
		}
	}

	return gb.Slice(), nil
}

func (r *Runner) report(gb *gapbuffer.GapBuffer[string], name, result string) error {
	if r.format == FormatText {
		label := name
		if result != "" {
			label += " -> " + result
		}
		_, err := fmt.Fprintf(r.out, "%s: %s\n", label, gb)
		return err
	}

	line, err := Record(gb, name, result)
	if err != nil {
		return err
	}
	_, err = io.WriteString(r.out, line+"\n")
	return err
}

// Record encodes one step as a JSON object: the buffer layout plus the
// step name, its result and the logical items.
func Record(gb *gapbuffer.GapBuffer[string], name, result string) (string, error) {
	layout := snapshot.Take(gb)
	doc, err := layout.JSON()
	if err != nil {
		return "", err
	}
	if doc, err = sjson.Set(doc, "step", name); err != nil {
		return "", err
	}
	if doc, err = sjson.Set(doc, "result", result); err != nil {
		return "", err
	}
	return sjson.Set(doc, "items", layout.Items())
}
