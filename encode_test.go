package cibola

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeStrings(t *testing.T) {
	t.Parallel()

	cases := []struct {
		label       string
		input       string
		output      string
		escapeASCII string
	}{
		{
			label:       "plain",
			input:       "hello",
			output:      `"hello"`,
			escapeASCII: `"hello"`,
		},
		{
			label:       "quote and backslash",
			input:       "a\"b\\c",
			output:      `"a\"b\\c"`,
			escapeASCII: `"a\"b\\c"`,
		},
		{
			label:       "short escapes",
			input:       "\b\f\n\r\t",
			output:      `"\b\f\n\r\t"`,
			escapeASCII: `"\b\f\n\r\t"`,
		},
		{
			label:       "other controls",
			input:       "\x00\x01\x0b\x1f",
			output:      `"\u0000\u0001\u000b\u001f"`,
			escapeASCII: `"\u0000\u0001\u000b\u001f"`,
		},
		{
			label:       "solidus and DEL stay raw",
			input:       "/\x7f",
			output:      "\"/\x7f\"",
			escapeASCII: "\"/\x7f\"",
		},
		{
			label:       "non-ASCII",
			input:       "é☆😀",
			output:      `"é☆😀"`,
			escapeASCII: `"\u00e9\u2606\ud83d\ude00"`,
		},
		{
			label:       "invalid UTF-8",
			input:       "a\xffb",
			output:      "\"a�b\"",
			escapeASCII: `"a\ufffdb"`,
		},
		{
			label:       "truncated UTF-8",
			input:       "x\xe2\x98",
			output:      "\"x��\"",
			escapeASCII: `"x\ufffd\ufffd"`,
		},
	}

	escaping, err := NewEncoder(Config{EscapeNonASCII: true})
	require.NoError(t, err)

	for _, c := range cases {
		c := c
		t.Run(c.label, func(t *testing.T) {
			t.Parallel()
			v := String(c.input)
			got, err := Marshal(&v)
			require.NoError(t, err)
			assert.Equal(t, c.output, string(got))

			got, err = escaping.Encode(&v)
			require.NoError(t, err)
			assert.Equal(t, c.escapeASCII, string(got))
		})
	}
}

func TestEncodeStringRoundTrip(t *testing.T) {
	t.Parallel()

	input := "a\"b\\c\x01\x1f\b\f\n\r\t/é😀\x7f"
	v := String(input)

	for _, cfg := range []Config{{}, {EscapeNonASCII: true}} {
		out, err := MarshalWithConfig(&v, cfg)
		require.NoError(t, err)
		back, err := Parse(out)
		require.NoError(t, err)
		s, err := back.AsString()
		require.NoError(t, err)
		assert.Equal(t, input, s)
	}
}

func TestEncodeFloats(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input  float64
		output string
	}{
		{input: 0, output: "0.0"},
		{input: math.Copysign(0, -1), output: "-0.0"},
		{input: 100, output: "100.0"},
		{input: 0.1, output: "0.1"},
		{input: -2.5, output: "-2.5"},
		{input: 123456789.125, output: "123456789.125"},
		{input: 1e20, output: "100000000000000000000.0"},
		{input: 1e21, output: "1e+21"},
		{input: 0.000001, output: "0.000001"},
		{input: 1e-7, output: "1e-7"},
		{input: -1e-7, output: "-1e-7"},
		{input: 1.5e-10, output: "1.5e-10"},
		{input: 5e-324, output: "5e-324"},
		{input: math.MaxFloat64, output: "1.7976931348623157e+308"},
	}

	for _, c := range cases {
		v := Float(c.input)
		got, err := Marshal(&v)
		require.NoError(t, err)
		assert.Equal(t, c.output, string(got), "input %v", c.input)

		// Output reparses to the identical float.
		back := mustParse(t, string(got))
		n, err := back.AsNumber()
		require.NoError(t, err)
		assert.Equal(t, FloatNumber, n.Type())
		assert.Equal(t, math.Float64bits(c.input), math.Float64bits(n.Float64()), "input %v", c.input)
	}
}

func TestEncodeUnsupportedFloats(t *testing.T) {
	t.Parallel()

	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		v := Object(Member{Key: "x", Value: Array(Float(f))})
		_, err := Marshal(&v)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnsupportedValue), "error: %v", err)
		assert.Contains(t, err.Error(), `member "x"`)
	}
}

func TestEncodePretty(t *testing.T) {
	t.Parallel()

	v := Object(
		Member{Key: "a", Value: Array(Int(1), Int(2))},
		Member{Key: "b", Value: Object()},
		Member{Key: "c", Value: Object(Member{Key: "d", Value: Null()})},
		Member{Key: "e", Value: Array()},
	)

	cases := []struct {
		label  string
		cfg    Config
		output string
	}{
		{
			label: "default indent",
			cfg:   Config{Pretty: true},
			output: "{\n" +
				"  \"a\": [\n" +
				"    1,\n" +
				"    2\n" +
				"  ],\n" +
				"  \"b\": {},\n" +
				"  \"c\": {\n" +
				"    \"d\": null\n" +
				"  },\n" +
				"  \"e\": []\n" +
				"}",
		},
		{
			label: "indent 4 with CRLF",
			cfg:   Config{Pretty: true, IndentWidth: 4, Newline: "\r\n"},
			output: "{\r\n" +
				"    \"a\": [\r\n" +
				"        1,\r\n" +
				"        2\r\n" +
				"    ],\r\n" +
				"    \"b\": {},\r\n" +
				"    \"c\": {\r\n" +
				"        \"d\": null\r\n" +
				"    },\r\n" +
				"    \"e\": []\r\n" +
				"}",
		},
		{
			label:  "compact",
			cfg:    Config{IndentWidth: 4},
			output: `{"a":[1,2],"b":{},"c":{"d":null},"e":[]}`,
		},
	}

	for _, c := range cases {
		c := c
		t.Run(c.label, func(t *testing.T) {
			t.Parallel()
			got, err := MarshalWithConfig(&v, c.cfg)
			require.NoError(t, err)
			assert.Equal(t, c.output, string(got))

			back := mustParse(t, string(got))
			assert.True(t, v.Equal(&back))
		})
	}
}

func TestEncodePrettyScalar(t *testing.T) {
	t.Parallel()

	v := String("x")
	got, err := MarshalWithConfig(&v, Config{Pretty: true})
	require.NoError(t, err)
	assert.Equal(t, `"x"`, string(got))
}

func TestEncoderAppend(t *testing.T) {
	t.Parallel()

	enc, err := NewEncoder(DefaultConfig())
	require.NoError(t, err)
	v := Array(Bool(true))
	got, err := enc.Append([]byte("prefix:"), &v)
	require.NoError(t, err)
	assert.Equal(t, "prefix:[true]", string(got))
}

func TestInvalidConfig(t *testing.T) {
	t.Parallel()

	cases := []struct {
		label  string
		cfg    Config
		errStr string
	}{
		{label: "negative depth", cfg: Config{MaxDepth: -1}, errStr: "max depth"},
		{label: "negative indent", cfg: Config{IndentWidth: -1}, errStr: "indent width"},
		{label: "indent too wide", cfg: Config{IndentWidth: MaxIndentWidth + 1}, errStr: "indent width"},
		{label: "bad newline", cfg: Config{Newline: "\t"}, errStr: "newline"},
	}

	v := Null()
	for _, c := range cases {
		c := c
		t.Run(c.label, func(t *testing.T) {
			t.Parallel()

			err := c.cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
			assert.Contains(t, err.Error(), c.errStr)

			_, err = NewEncoder(c.cfg)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
			_, err = MarshalWithConfig(&v, c.cfg)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
			_, err = NewParserWithConfig(c.cfg)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
			_, err = ParseWithConfig([]byte(`null`), c.cfg)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultMaxDepth, cfg.MaxDepth)
	assert.False(t, cfg.Pretty)
	assert.False(t, cfg.EscapeNonASCII)
}
