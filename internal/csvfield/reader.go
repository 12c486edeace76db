package csvfield

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Reader yields fields in the order they were written. Missing or
// malformed fields are reported through the ok result so callers can
// substitute defaults field by field.
type Reader struct {
	fields []string
	pos    int
}

// NewReader consumes r entirely.
func NewReader(r io.Reader) (*Reader, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read record: %w", err)
	}
	return Parse(string(b)), nil
}

// Parse splits a record produced by Writer.
func Parse(record string) *Reader {
	record = strings.TrimSpace(record)
	if record == "" {
		return &Reader{}
	}
	record = strings.TrimSuffix(record, separator)
	return &Reader{fields: strings.Split(record, separator)}
}

// Float parses the next field. ok is false when the field is missing or not a number.
func (r *Reader) Float() (float64, bool) {
	s, ok := r.next()
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Int parses the next field. ok is false when the field is missing or not an integer.
func (r *Reader) Int() (int, bool) {
	s, ok := r.next()
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return v, true
}

// Text returns the next field unescaped.
func (r *Reader) Text() (string, bool) {
	s, ok := r.next()
	if !ok {
		return "", false
	}
	return unescaper.Replace(s), true
}

// Remaining reports how many fields have not been consumed.
func (r *Reader) Remaining() int {
	return len(r.fields) - r.pos
}

func (r *Reader) next() (string, bool) {
	if r.pos >= len(r.fields) {
		return "", false
	}
	s := r.fields[r.pos]
	r.pos++
	return s, true
}
