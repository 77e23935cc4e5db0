// Package jsonl provides JSONL file handling for batch cases and results.
package jsonl

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fwojciec/selfeval"
)

// Compile-time interface verification.
var _ selfeval.CaseLoader = (*Loader)(nil)

// maxLineSize bounds a single case line. Candidates are whole LLM generations
// and long-form answers routinely exceed bufio's 64KB default token size.
const maxLineSize = 4 << 20

var errTrailingData = errors.New("unexpected data after case object")

// Loader reads batch cases, one JSON object per line.
type Loader struct{}

// NewLoader creates a new Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads cases from the file at path, or from stdin when path is "-".
func (l *Loader) Load(path string) ([]selfeval.Case, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open cases: %w", err)
		}
		defer f.Close()
		r = f
	}
	return l.Read(r)
}

// Read decodes cases from r. Blank lines are skipped; a malformed line fails
// the whole read with its 1-based line number.
func (l *Loader) Read(r io.Reader) ([]selfeval.Case, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, maxLineSize)

	var cases []selfeval.Case
	n := 0
	for sc.Scan() {
		n++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		c, err := decodeCase(raw)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		cases = append(cases, c)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("line %d: %w", n+1, err)
	}
	return cases, nil
}

func decodeCase(raw []byte) (selfeval.Case, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	var c selfeval.Case
	if err := dec.Decode(&c); err != nil {
		return selfeval.Case{}, err
	}
	if dec.More() {
		return selfeval.Case{}, errTrailingData
	}
	return c, nil
}
