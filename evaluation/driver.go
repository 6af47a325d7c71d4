// Package evaluation compares the dumps of an approximate hardware
// simulation with the golden (exact) ones, layer by layer and sample by
// sample, and scores the final layer against the true labels.
package evaluation

import (
	"context"
	"errors"
	"fmt"

	"github.com/ldsec/approxnn/common"
	"github.com/ldsec/approxnn/fixedpoint"
	"go.dedis.ch/onet/v3/log"
	"golang.org/x/sync/errgroup"
)

// Driver evaluates one version tag against the golden tag
type Driver struct {
	Source     common.DumpSource
	Version    string
	Golden     string
	WordBits   int
	Layers     int
	BatchStart int
	Workers    int

	// Labels[i] is the label of sample BatchStart+i, its length is the batch size
	Labels []int
}

// NewDriver builds a Driver from validated settings and the batch labels
func NewDriver(s *common.Settings, src common.DumpSource, labels []int) (*Driver, error) {
	if src == nil {
		return nil, errors.New("evaluation: no dump source")
	}
	batch, err := common.BatchLabels(labels, s.BatchStart, s.BatchCount)
	if err != nil {
		return nil, fmt.Errorf("evaluation: %w", err)
	}
	return &Driver{
		Source:     src,
		Version:    s.Version,
		Golden:     s.Golden,
		WordBits:   s.WordBits,
		Layers:     s.Layers,
		BatchStart: s.BatchStart,
		Workers:    s.Workers,
		Labels:     batch,
	}, nil
}

// partial holds the accumulators of a single sample
type partial struct {
	errs   *ErrorAccumulator
	approx AccuracyEvaluator
	golden AccuracyEvaluator
}

// Run evaluates every (sample, layer) pair of the batch. A missing dump
// aborts the run and no Report is produced; unreadable, undecodable or
// mismatched dumps only degrade the metrics of their unit.
func (d *Driver) Run(ctx context.Context) (*Report, error) {
	if d.Layers <= 0 {
		return nil, fmt.Errorf("evaluation: layers must be > 0 (got %d)", d.Layers)
	}
	if len(d.Labels) == 0 {
		return nil, errors.New("evaluation: empty batch")
	}
	decoder, err := fixedpoint.NewDecoder(d.WordBits)
	if err != nil {
		return nil, err
	}
	workers := d.Workers
	if workers <= 0 {
		workers = 1
	}

	results := make([]*partial, len(d.Labels))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range d.Labels {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p, err := d.evaluateSample(decoder, i)
			if err != nil {
				return err
			}
			results[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// merge in sample order
	errs := NewErrorAccumulator(d.Layers)
	var approx, golden AccuracyEvaluator
	for _, p := range results {
		errs.Merge(p.errs)
		approx.Merge(p.approx)
		golden.Merge(p.golden)
	}

	report := &Report{
		Version:        d.Version,
		Golden:         d.Golden,
		WordBits:       d.WordBits,
		Samples:        len(d.Labels),
		Accuracy:       approx.Accuracy(),
		GoldenAccuracy: golden.Accuracy(),
		EmptyOutputs:   approx.Empty,
		Unscored:       approx.Unscored,
		Layers:         make([]LayerReport, d.Layers),
	}
	for l := 0; l < d.Layers; l++ {
		report.Layers[l] = newLayerReport(errs.Layer(l), d.WordBits)
	}
	log.Lvlf2("version %s: %d samples, accuracy %.2f%% (golden %.2f%%)",
		d.Version, report.Samples, report.Accuracy, report.GoldenAccuracy)
	return report, nil
}

func (d *Driver) evaluateSample(decoder *fixedpoint.Decoder, i int) (*partial, error) {
	sample := d.BatchStart + i
	label := d.Labels[i]
	final := d.Layers - 1
	p := &partial{errs: NewErrorAccumulator(d.Layers)}

	for l := 0; l < d.Layers; l++ {
		approx, approxErr, err := d.load(decoder, d.Version, sample, l)
		if err != nil {
			return nil, err
		}
		golden, goldenErr, err := d.load(decoder, d.Golden, sample, l)
		if err != nil {
			return nil, err
		}

		switch {
		case approxErr != nil:
			log.Warnf("sample %d layer %d: %s skipped: %v", sample, l, d.Version, approxErr)
			p.errs.Skip(l)
		case goldenErr != nil:
			log.Warnf("sample %d layer %d: %s skipped: %v", sample, l, d.Golden, goldenErr)
			p.errs.Skip(l)
		default:
			if err := p.errs.Add(l, approx, golden); err != nil {
				log.Warnf("sample %d: %v, truncated", sample, err)
			}
		}

		if l == final {
			d.score(&p.approx, approx, approxErr, sample, label)
			d.score(&p.golden, golden, goldenErr, sample, label)
		}
	}
	log.Lvl3("sample", sample, "done")
	return p, nil
}

// load reads and decodes one dump. Only a missing dump is returned as err;
// unreadable or undecodable dumps are returned as bad.
func (d *Driver) load(decoder *fixedpoint.Decoder, tag string, sample, layer int) (values []int, bad error, err error) {
	lines, readErr := d.Source.Lines(tag, sample, layer)
	if readErr != nil {
		var missing *common.MissingArtifactError
		if errors.As(readErr, &missing) {
			return nil, nil, readErr
		}
		return nil, readErr, nil
	}
	values, bad = decoder.DecodeLines(lines)
	return values, bad, nil
}

func (d *Driver) score(a *AccuracyEvaluator, output []int, decodeErr error, sample, label int) {
	if decodeErr != nil {
		a.Miss()
		return
	}
	if err := a.Observe(output, label); err != nil {
		log.Warnf("sample %d: %v, not scored", sample, err)
	}
}
