package cibola

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type parseTestCase struct {
	label string
	input string
	// output is the expected compact serialization on success.
	output string
	// kind, offset and errStr describe the expected failure when kind is
	// set.
	kind   ErrorKind
	offset int
	errStr string
}

func testWithParse(t *testing.T, cases []parseTestCase) {
	t.Helper()

	for _, c := range cases {
		c := c
		t.Run(c.label, func(t *testing.T) {
			t.Parallel()

			v, err := Parse([]byte(c.input))
			if c.kind != 0 {
				requireParseError(t, err, c.kind, c.offset)
				if c.errStr != "" {
					assert.Contains(t, err.Error(), c.errStr)
				}
				return
			}

			require.NoError(t, err)
			got, err := Marshal(&v)
			require.NoError(t, err)
			assert.Equal(t, c.output, string(got))
		})
	}
}

// requireParseError checks err is a *ParseError of kind at offset and returns
// it.
func requireParseError(t *testing.T, err error, kind ErrorKind, offset int) *ParseError {
	t.Helper()
	require.Error(t, err)
	var pe *ParseError
	require.True(t, errors.As(err, &pe), "error wasn't a ParseError: %v", err)
	assert.Equal(t, kind, pe.Kind, "wrong kind: %v", err)
	assert.Equal(t, offset, pe.Offset, "wrong offset: %v", err)
	assert.True(t, errors.Is(err, kind), "errors.Is failed for %v", err)
	return pe
}

func mustParse(t *testing.T, input string) Value {
	t.Helper()
	v, err := Parse([]byte(input))
	require.NoError(t, err, "input: %s", input)
	return v
}
