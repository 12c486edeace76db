// Package csvfield encodes and decodes the flat, comma-terminated scalar
// records used for on-device persistence. Each field is written followed by
// a separator; floats carry one decimal place.
package csvfield

import (
	"io"
	"strconv"
	"strings"
)

const separator = ","

var (
	escaper   = strings.NewReplacer("%", "%25", ",", "%2C")
	unescaper = strings.NewReplacer("%2C", ",", "%2c", ",", "%25", "%")
)

// Writer appends fields to an underlying writer and remembers the first error.
type Writer struct {
	w   io.Writer
	err error
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Float writes v with one decimal place.
func (w *Writer) Float(v float64) {
	w.field(strconv.FormatFloat(v, 'f', 1, 64))
}

func (w *Writer) Int(v int) {
	w.field(strconv.Itoa(v))
}

// Text writes s with '%' and ',' escaped so the record stays splittable.
func (w *Writer) Text(s string) {
	w.field(escaper.Replace(s))
}

// Err reports the first write error, if any.
func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) field(s string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, s+separator)
}
