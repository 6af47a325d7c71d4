// Package fixedpoint decodes the two's-complement binary words written by
// the hardware simulation into signed integers.
package fixedpoint

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxBits is the widest word a Decoder accepts.
const MaxBits = 62

// FormatError reports a malformed binary word.
type FormatError struct {
	Line   int // 1-based, 0 when decoding a single word
	Word   string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("fixedpoint: line %d: %q: %s", e.Line, e.Word, e.Reason)
	}
	return fmt.Sprintf("fixedpoint: %q: %s", e.Word, e.Reason)
}

// Decoder converts words of a fixed bit width.
type Decoder struct {
	Bits int
}

// NewDecoder returns a Decoder for words of the given width.
func NewDecoder(bits int) (*Decoder, error) {
	if bits <= 0 || bits > MaxBits {
		return nil, fmt.Errorf("fixedpoint: word width must be in [1, %d] (got %d)", MaxBits, bits)
	}
	return &Decoder{Bits: bits}, nil
}

// Min is the smallest representable value, -2^(W-1).
func (d *Decoder) Min() int {
	return -(1 << (d.Bits - 1))
}

// Max is the largest representable value, 2^(W-1)-1.
func (d *Decoder) Max() int {
	return 1<<(d.Bits-1) - 1
}

// DecodeWord decodes one word. Surrounding whitespace is ignored, anything
// else that is not exactly Bits characters of '0' or '1' is rejected.
func (d *Decoder) DecodeWord(word string) (int, error) {
	w := strings.TrimSpace(word)
	if len(w) != d.Bits {
		return 0, &FormatError{Word: w, Reason: fmt.Sprintf("expected %d bits, got %d", d.Bits, len(w))}
	}
	for i := 0; i < len(w); i++ {
		if w[i] != '0' && w[i] != '1' {
			return 0, &FormatError{Word: w, Reason: fmt.Sprintf("invalid character %q at position %d", w[i], i)}
		}
	}

	u, err := strconv.ParseUint(w, 2, 64)
	if err != nil {
		return 0, &FormatError{Word: w, Reason: err.Error()}
	}
	v := int(u)
	if w[0] == '1' {
		v -= 1 << d.Bits
	}
	return v, nil
}

// DecodeLines decodes every non-blank line in order. The first malformed
// line stops decoding and is returned as a *FormatError carrying its line
// number.
func (d *Decoder) DecodeLines(lines []string) ([]int, error) {
	values := make([]int, 0, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		v, err := d.DecodeWord(line)
		if err != nil {
			fe := err.(*FormatError)
			fe.Line = i + 1
			return nil, fe
		}
		values = append(values, v)
	}
	return values, nil
}

// Encode is the inverse of DecodeWord.
func (d *Decoder) Encode(v int) (string, error) {
	if v < d.Min() || v > d.Max() {
		return "", fmt.Errorf("fixedpoint: %d not representable in %d bits", v, d.Bits)
	}
	u := uint64(v) & (1<<uint(d.Bits) - 1)
	s := strconv.FormatUint(u, 2)
	return strings.Repeat("0", d.Bits-len(s)) + s, nil
}
