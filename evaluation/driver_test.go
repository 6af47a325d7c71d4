package evaluation

import (
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ldsec/approxnn/common"
	"github.com/ldsec/approxnn/fixedpoint"
	"github.com/pelletier/go-toml"
	"github.com/stretchr/testify/require"
)

// memSource serves dumps from memory, keyed like the file names
type memSource map[string][]string

func key(tag string, sample, layer int) string {
	return fmt.Sprintf("%s/%d/%d", tag, sample, layer)
}

func (m memSource) Lines(tag string, sample, layer int) ([]string, error) {
	lines, ok := m[key(tag, sample, layer)]
	if !ok {
		return nil, &common.MissingArtifactError{Path: key(tag, sample, layer), Tag: tag, Sample: sample, Layer: layer}
	}
	return lines, nil
}

func encode(t *testing.T, values ...int) []string {
	t.Helper()
	d, err := fixedpoint.NewDecoder(8)
	require.NoError(t, err)
	lines := make([]string, len(values))
	for i, v := range values {
		lines[i], err = d.Encode(v)
		require.NoError(t, err)
	}
	return lines
}

// two samples, labels [3, 7]; sample 0 is classified 3, sample 1 is classified 2
func twoSampleSource(t *testing.T) memSource {
	src := memSource{}
	for s := 0; s < 2; s++ {
		src[key("approx", s, 0)] = encode(t, 1, 2, 3, 4)
		src[key("exact", s, 0)] = encode(t, 1, 2, 3, 4)
		src[key("approx", s, 1)] = encode(t, -10, 5)
		src[key("exact", s, 1)] = encode(t, -12, 6)
	}
	src[key("approx", 0, 2)] = encode(t, 0, 0, 0, 90, 0, 0, 0, 10, 0, 0)
	src[key("exact", 0, 2)] = encode(t, 0, 0, 0, 91, 0, 0, 0, 12, 0, 0)
	src[key("approx", 1, 2)] = encode(t, 0, 0, 80, 0, 0, 0, 0, 79, 0, 0)
	src[key("exact", 1, 2)] = encode(t, 0, 0, 78, 0, 0, 0, 0, 79, 0, 0)
	return src
}

func testDriver(src common.DumpSource, workers int) *Driver {
	return &Driver{
		Source:   src,
		Version:  "approx",
		Golden:   "exact",
		WordBits: 8,
		Layers:   3,
		Workers:  workers,
		Labels:   []int{3, 7},
	}
}

func TestDriverRun(t *testing.T) {
	report, err := testDriver(twoSampleSource(t), 1).Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 2, report.Samples)
	require.Equal(t, 50., report.Accuracy)
	// the exact dump of sample 1 peaks at index 7
	require.Equal(t, 100., report.GoldenAccuracy)
	require.Len(t, report.Layers, 3)

	require.Equal(t, 0., report.Layers[0].MED)
	require.Equal(t, 8, report.Layers[0].Count)

	// |-10+12| + |5-6| per sample
	require.InDelta(t, 3./2., report.Layers[1].MED, 1e-12)
	require.InDelta(t, 1.5/256, report.Layers[1].NMED, 1e-12)
	require.InDelta(t, 100*1.5/256, report.Layers[1].NMEDPercent, 1e-12)
	require.Equal(t, 2., report.Layers[1].MaxError)

	// 1 + 2 + 2
	require.InDelta(t, 5./20., report.Layers[2].MED, 1e-12)
	require.Equal(t, 20, report.Layers[2].Count)
}

func TestDriverParallelMatchesSequential(t *testing.T) {
	src := twoSampleSource(t)
	for s := 2; s < 40; s++ {
		for l := 0; l < 3; l++ {
			src[key("approx", s, l)] = encode(t, s%7, -s%5, l)
			src[key("exact", s, l)] = encode(t, s%3, s%5, l, 1)
		}
	}
	labels := make([]int, 40)
	for i := range labels {
		labels[i] = i % 3
	}
	labels[0], labels[1] = 3, 7

	seq := testDriver(src, 1)
	seq.Labels = labels
	par := testDriver(src, 8)
	par.Labels = labels

	a, err := seq.Run(context.Background())
	require.NoError(t, err)
	b, err := par.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, a.Accuracy, b.Accuracy)
	for l := range a.Layers {
		require.Equal(t, a.Layers[l].MED, b.Layers[l].MED)
		require.Equal(t, a.Layers[l].Count, b.Layers[l].Count)
		require.Equal(t, a.Layers[l].Truncated, b.Layers[l].Truncated)
		require.Equal(t, a.Layers[l].Distances, b.Layers[l].Distances)
	}
	require.Equal(t, 38, a.Layers[0].Truncated)
}

func TestDriverMissingGoldenAborts(t *testing.T) {
	for _, workers := range []int{1, 4} {
		src := twoSampleSource(t)
		delete(src, key("exact", 1, 1))

		report, err := testDriver(src, workers).Run(context.Background())
		require.Nil(t, report)
		var missing *common.MissingArtifactError
		require.True(t, errors.As(err, &missing))
		require.Equal(t, "exact", missing.Tag)
		require.Equal(t, 1, missing.Sample)
		require.Equal(t, 1, missing.Layer)
	}
}

func TestDriverDecodeAnomalies(t *testing.T) {
	src := twoSampleSource(t)
	// malformed word in a hidden layer: unit skipped
	src[key("approx", 0, 1)] = []string{"11110110", "0000010x"}
	// empty final layer: not classified
	src[key("approx", 1, 2)] = []string{"", "  "}

	report, err := testDriver(src, 1).Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, report.Layers[1].Skipped)
	require.Equal(t, 2, report.Layers[1].Count)
	require.Equal(t, 1, report.Layers[2].Truncated)
	require.Equal(t, 10, report.Layers[2].Count)
	require.Equal(t, 1, report.EmptyOutputs)
	require.Equal(t, 0, report.Unscored)
	require.Equal(t, 50., report.Accuracy)
}

// writeDumps stores twoSampleSource as files, samples first..first+1
func writeDumps(t *testing.T, src *common.FileSource, first int) {
	t.Helper()
	mem := twoSampleSource(t)
	tags := map[string]string{"approx": "3", "exact": "0"}
	for tag, name := range tags {
		for sample := 0; sample < 2; sample++ {
			for l := 0; l < 3; l++ {
				content := strings.Join(mem[key(tag, sample, l)], "\n") + "\n"
				path := src.Path(name, first+sample, l)
				require.NoError(t, ioutil.WriteFile(path, []byte(content), 0o644))
			}
		}
	}
}

func fileDriver(t *testing.T) (*Driver, *common.FileSource) {
	t.Helper()
	s := common.DefaultSettings()
	s.ApplyOverrides(common.Overrides{RootDir: t.TempDir(), Version: "3", Golden: "0", BatchCount: 2})
	require.NoError(t, s.Validate())
	src := common.NewFileSource(s)
	writeDumps(t, src, 0)

	d, err := NewDriver(s, src, []int{3, 7})
	require.NoError(t, err)
	return d, src
}

func TestDriverOversizedLineIsSkipped(t *testing.T) {
	d, src := fileDriver(t)

	// one 70000 byte word and no newline
	path := src.Path("3", 0, 1)
	require.Equal(t, "mult3_0in_layer1_out.txt", filepath.Base(path))
	require.NoError(t, ioutil.WriteFile(path, []byte(strings.Repeat("0", 70000)), 0o644))

	report, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Layers[1].Skipped)
	require.Equal(t, 2, report.Layers[1].Count)
	require.Equal(t, 50., report.Accuracy)
	require.Equal(t, 0, report.Unscored)
}

func TestDriverUnreadableDumpIsSkipped(t *testing.T) {
	d, src := fileDriver(t)

	// a directory where the final layer dump of sample 0 should be
	path := src.Path("3", 0, 2)
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.Mkdir(path, 0o755))

	report, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Layers[2].Skipped)
	require.Equal(t, 10, report.Layers[2].Count)
	require.Equal(t, 1, report.Unscored)
	require.Equal(t, 0, report.EmptyOutputs)
	// sample 1 is classified 2, label 7
	require.Equal(t, 0., report.Accuracy)
	require.Equal(t, 100., report.GoldenAccuracy)
}

func TestDriverFromFiles(t *testing.T) {
	dir := t.TempDir()
	start := 1
	s := common.DefaultSettings()
	s.ApplyOverrides(common.Overrides{RootDir: dir, Version: "3", Golden: "0", BatchStart: &start, BatchCount: 2})
	require.NoError(t, s.Validate())
	src := common.NewFileSource(s)
	writeDumps(t, src, 1)

	d, err := NewDriver(s, src, []int{9, 3, 7})
	require.NoError(t, err)
	report, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 50., report.Accuracy)

	out := filepath.Join(dir, "report.toml")
	require.NoError(t, report.WriteTOML(out))
	b, err := ioutil.ReadFile(out)
	require.NoError(t, err)
	tree, err := toml.LoadBytes(b)
	require.NoError(t, err)
	require.Equal(t, 50., tree.Get("accuracy_percent"))

	plots := filepath.Join(dir, "plots")
	require.NoError(t, os.Mkdir(plots, 0o755))
	require.NoError(t, report.PlotHistograms(plots))
	_, err = os.Stat(filepath.Join(plots, "3_layer1_error.png"))
	require.NoError(t, err)

	require.NoError(t, os.Remove(src.Path("0", 2, 2)))
	_, err = d.Run(context.Background())
	var missing *common.MissingArtifactError
	require.True(t, errors.As(err, &missing))
	require.Equal(t, src.Path("0", 2, 2), missing.Path)

	_, err = NewDriver(s, src, []int{3, 7})
	require.Error(t, err)
}
