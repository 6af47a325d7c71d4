package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ldsec/approxnn/utils"
)

// MissingArtifactError reports an expected simulation dump that does not exist
type MissingArtifactError struct {
	Path   string
	Tag    string
	Sample int
	Layer  int
}

func (e *MissingArtifactError) Error() string {
	return fmt.Sprintf("missing output of %q for sample %d layer %d: %s", e.Tag, e.Sample, e.Layer, e.Path)
}

// DumpSource supplies the raw lines a simulation wrote for one
// (tag, sample, layer). A missing dump is a *MissingArtifactError.
type DumpSource interface {
	Lines(tag string, sample, layer int) ([]string, error)
}

// FileSource reads dumps from RootDir named after Pattern
type FileSource struct {
	RootDir string
	Pattern string
}

// NewFileSource builds the source described by the settings
func NewFileSource(s *Settings) *FileSource {
	return &FileSource{RootDir: s.RootDir, Pattern: s.Pattern}
}

// Path resolves the dump path of (tag, sample, layer)
func (f *FileSource) Path(tag string, sample, layer int) string {
	return filepath.Join(f.RootDir, Expand(f.Pattern, tag, sample, layer))
}

func (f *FileSource) Lines(tag string, sample, layer int) ([]string, error) {
	path := f.Path(tag, sample, layer)
	lines, err := utils.LoadLines(path)
	if os.IsNotExist(err) {
		return nil, &MissingArtifactError{Path: path, Tag: tag, Sample: sample, Layer: layer}
	}
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// Expand substitutes {version}, {sample} and {layer} in pattern.
// Use layer or sample -1 to leave that placeholder untouched.
func Expand(pattern, tag string, sample, layer int) string {
	pairs := []string{"{version}", tag}
	if sample >= 0 {
		pairs = append(pairs, "{sample}", strconv.Itoa(sample))
	}
	if layer >= 0 {
		pairs = append(pairs, "{layer}", strconv.Itoa(layer))
	}
	return strings.NewReplacer(pairs...).Replace(pattern)
}
