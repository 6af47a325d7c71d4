package utils

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strings"

	"github.com/sbinet/npyio"
)

// LabelHeaderSize is the idx1 header preceding the label bytes
const LabelHeaderSize = 8

// LoadLines loads every line of fname, blank ones included. Lines have no
// length limit.
func LoadLines(fname string) ([]string, error) {
	file, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var output []string
	rd := bufio.NewReader(file)
	for {
		line, err := rd.ReadString('\n')
		if len(line) > 0 {
			line = strings.TrimSuffix(line, "\n")
			output = append(output, strings.TrimSuffix(line, "\r"))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", fname, err)
		}
	}
	return output, nil
}

// LoadLabels reads an idx1 label file, gzip compressed or not, and strips
// its header
func LoadLabels(fname string) ([]int, error) {
	data, err := ioutil.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	if len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b {
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("gzip %s: %w", fname, err)
		}
		var buf bytes.Buffer
		_, err = buf.ReadFrom(zr)
		zr.Close()
		if err != nil {
			return nil, fmt.Errorf("gunzip %s: %w", fname, err)
		}
		data = buf.Bytes()
	}
	if len(data) < LabelHeaderSize {
		return nil, fmt.Errorf("label file %s: %d bytes is shorter than the header", fname, len(data))
	}
	return BytesToLabels(data[LabelHeaderSize:]), nil
}

// BytesToLabels widens raw unsigned label bytes
func BytesToLabels(b []byte) []int {
	labels := make([]int, len(b))
	for i := range b {
		labels[i] = int(b[i])
	}
	return labels
}

// LoadNpy loads a numeric .npy array as a flat float64 slice together
// with its declared shape
func LoadNpy(fname string) ([]float64, []int, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, nil, fmt.Errorf("npy %s: %w", fname, err)
	}
	shape := r.Header.Descr.Shape
	values, err := readNpy(r)
	if err != nil {
		return nil, nil, fmt.Errorf("npy %s: %w", fname, err)
	}
	return values, shape, nil
}

func readNpy(r *npyio.Reader) ([]float64, error) {
	switch r.Header.Descr.Type {
	case "<f8", "f8":
		var v []float64
		err := r.Read(&v)
		return v, err
	case "<f4", "f4":
		var v []float32
		if err := r.Read(&v); err != nil {
			return nil, err
		}
		out := make([]float64, len(v))
		for i := range v {
			out[i] = float64(v[i])
		}
		return out, nil
	case "<i8", "i8":
		var v []int64
		if err := r.Read(&v); err != nil {
			return nil, err
		}
		out := make([]float64, len(v))
		for i := range v {
			out[i] = float64(v[i])
		}
		return out, nil
	case "<i4", "i4":
		var v []int32
		if err := r.Read(&v); err != nil {
			return nil, err
		}
		out := make([]float64, len(v))
		for i := range v {
			out[i] = float64(v[i])
		}
		return out, nil
	case "|u1", "u1":
		var v []uint8
		if err := r.Read(&v); err != nil {
			return nil, err
		}
		out := make([]float64, len(v))
		for i := range v {
			out[i] = float64(v[i])
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported dtype %q", r.Header.Descr.Type)
}

// FloatsToLabels converts float encoded class labels
func FloatsToLabels(a []float64) []int {
	c := make([]int, len(a))
	for i := range a {
		c[i] = int(a[i])
	}
	return c
}
