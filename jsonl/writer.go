package jsonl

import (
	"encoding/json"
	"io"

	"github.com/fwojciec/selfeval"
)

// Writer encodes Result records as JSONL.
type Writer struct {
	enc *json.Encoder
}

// NewWriter creates a Writer that writes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{enc: json.NewEncoder(w)}
}

// Write appends a single result line.
func (w *Writer) Write(r selfeval.Result) error {
	return w.enc.Encode(r)
}
