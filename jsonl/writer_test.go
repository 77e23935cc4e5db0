package jsonl_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fwojciec/selfeval"
	"github.com/fwojciec/selfeval/jsonl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_Write(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := jsonl.NewWriter(&buf)

	require.NoError(t, w.Write(selfeval.Result{
		Index:   0,
		Value:   "Jefferson City.",
		Outcome: &selfeval.Outcome{Passed: true, Verdict: selfeval.VerdictYes},
	}))
	require.NoError(t, w.Write(selfeval.Result{
		Index: 1,
		Value: "Paris.",
		Error: "missing validation context",
	}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first selfeval.Result
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NotNil(t, first.Outcome)
	assert.True(t, first.Outcome.Passed)
	assert.Equal(t, selfeval.VerdictYes, first.Outcome.Verdict)
	assert.NotContains(t, lines[0], `"message"`)
	assert.NotContains(t, lines[0], `"error"`)

	assert.Contains(t, lines[1], `"error":"missing validation context"`)
	assert.NotContains(t, lines[1], `"outcome"`)
}
