package cibola

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectDuplicateKeys(t *testing.T) {
	t.Parallel()

	v := Object(
		Member{Key: "a", Value: Int(1)},
		Member{Key: "b", Value: Int(2)},
		Member{Key: "a", Value: Int(3)},
	)
	assert.Equal(t, `{"a":3,"b":2}`, v.String())
	assert.Equal(t, 2, v.Len())

	parsed := mustParse(t, `{"a":1,"b":2,"a":3}`)
	assert.True(t, v.Equal(&parsed))
}

func TestLargeObjectDuplicateKeys(t *testing.T) {
	t.Parallel()

	const n = 3 * linearKeyScan
	members := make([]Member, 0, n+1)
	var sb strings.Builder
	sb.WriteByte('{')
	for i := 0; i < n; i++ {
		members = append(members, Member{Key: fmt.Sprintf("k%d", i), Value: Int(int64(i))})
		fmt.Fprintf(&sb, `"k%d":%d,`, i, i)
	}
	members = append(members, Member{Key: "k5", Value: Int(99)})
	sb.WriteString(`"k5":99}`)

	built := Object(members...)
	parsed := mustParse(t, sb.String())

	for _, v := range []*Value{&built, &parsed} {
		assert.Equal(t, n, v.Len())
		got, err := v.Get("k5").AsNumber()
		require.NoError(t, err)
		assert.True(t, got.Equal(NumberFromInt(99)))

		ms, err := v.Members()
		require.NoError(t, err)
		assert.Equal(t, "k5", ms[5].Key)
		assert.Equal(t, "k6", ms[6].Key)
	}
	assert.True(t, built.Equal(&parsed))
}

func TestParserReusesKeyIndex(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	sb.WriteString(`[{`)
	for i := 0; i < 2*linearKeyScan; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, `"k%d":%d`, i, i)
	}
	sb.WriteString(`},{"k0":"x","k1":"y","k0":"z"}]`)

	p := NewParser()
	for i := 0; i < 2; i++ {
		v, err := p.Parse([]byte(sb.String()))
		require.NoError(t, err)
		assert.Equal(t, 2*linearKeyScan, v.Index(0).Len())
		assert.Equal(t, `{"k0":"z","k1":"y"}`, v.Index(1).String())
	}
}

func TestValueEqual(t *testing.T) {
	t.Parallel()

	cases := []struct {
		label string
		a, b  Value
		equal bool
	}{
		{label: "null", a: Null(), b: Null(), equal: true},
		{label: "null vs false", a: Null(), b: Bool(false), equal: false},
		{label: "bools", a: Bool(true), b: Bool(false), equal: false},
		{label: "int vs float", a: Int(1), b: Float(1), equal: false},
		{label: "int vs uint", a: Int(5), b: Uint(5), equal: true},
		{label: "negative int vs uint", a: Int(-1), b: Uint(math.MaxUint64), equal: false},
		{label: "floats", a: Float(0.5), b: Float(0.5), equal: true},
		{label: "strings", a: String("a"), b: String("b"), equal: false},
		{label: "arrays in order", a: Array(Int(1), Int(2)), b: Array(Int(1), Int(2)), equal: true},
		{label: "arrays out of order", a: Array(Int(1), Int(2)), b: Array(Int(2), Int(1)), equal: false},
		{label: "arrays of different length", a: Array(Int(1)), b: Array(Int(1), Int(1)), equal: false},
		{
			label: "objects ignore order",
			a:     Object(Member{"a", Int(1)}, Member{"b", Array()}),
			b:     Object(Member{"b", Array()}, Member{"a", Int(1)}),
			equal: true,
		},
		{
			label: "objects with different keys",
			a:     Object(Member{"a", Int(1)}),
			b:     Object(Member{"b", Int(1)}),
			equal: false,
		},
		{label: "empty array vs object", a: Array(), b: Object(), equal: false},
	}

	for _, c := range cases {
		c := c
		t.Run(c.label, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, c.equal, c.a.Equal(&c.b))
			assert.Equal(t, c.equal, c.b.Equal(&c.a))
		})
	}
}

func TestLargeObjectEqualIgnoresOrder(t *testing.T) {
	t.Parallel()

	const n = 2 * linearKeyScan
	fwd := make([]Member, n)
	rev := make([]Member, n)
	for i := 0; i < n; i++ {
		m := Member{Key: fmt.Sprintf("k%d", i), Value: Int(int64(i))}
		fwd[i] = m
		rev[n-1-i] = m
	}
	a, b := Object(fwd...), Object(rev...)
	assert.True(t, a.Equal(&b))

	rev[0].Value = Int(-1)
	c := Object(rev...)
	assert.False(t, a.Equal(&c))
}

func TestParsedNumbersKeepType(t *testing.T) {
	t.Parallel()

	i := mustParse(t, `1`)
	f := mustParse(t, `1.0`)
	assert.False(t, i.Equal(&f))

	n, err := f.AsNumber()
	require.NoError(t, err)
	assert.Equal(t, FloatNumber, n.Type())
	assert.False(t, n.IsIntegral())
}

func TestBorrowedStrings(t *testing.T) {
	t.Parallel()

	v, err := ParseString(`["abc","a\nb"]`)
	require.NoError(t, err)
	assert.True(t, v.Index(0).Borrowed())
	assert.False(t, v.Index(1).Borrowed())
	s, err := v.Index(1).AsString()
	require.NoError(t, err)
	assert.Equal(t, "a\nb", s)

	c := v.Clone()
	assert.False(t, c.Index(0).Borrowed())
	assert.True(t, c.Equal(&v))

	owned := mustParse(t, `["abc"]`)
	assert.False(t, owned.Index(0).Borrowed())
}

func TestParseCopiesInput(t *testing.T) {
	t.Parallel()

	data := []byte(`{"key":"value"}`)
	v, err := Parse(data)
	require.NoError(t, err)
	for i := range data {
		data[i] = 'x'
	}
	assert.Equal(t, `{"key":"value"}`, v.String())
}

func TestAccessors(t *testing.T) {
	t.Parallel()

	v := mustParse(t, `{"b":true,"n":2.5,"s":"x","a":[null],"o":{}}`)

	b, err := v.Get("b").AsBool()
	require.NoError(t, err)
	assert.True(t, b)

	n, err := v.Get("n").AsNumber()
	require.NoError(t, err)
	assert.Equal(t, 2.5, n.Float64())

	s, err := v.Get("s").AsString()
	require.NoError(t, err)
	assert.Equal(t, "x", s)

	elems, err := v.Get("a").Elements()
	require.NoError(t, err)
	require.Len(t, elems, 1)
	assert.True(t, elems[0].IsNull())

	ms, err := v.Get("o").Members()
	require.NoError(t, err)
	assert.Empty(t, ms)

	assert.Nil(t, v.Get("missing"))
	assert.Nil(t, v.Index(0))
	assert.Nil(t, v.Get("a").Index(1))
	assert.Nil(t, v.Get("a").Index(-1))
	assert.Nil(t, v.Get("a").Get("b"))
	assert.Equal(t, 0, v.Get("s").Len())
	assert.Equal(t, ObjectKind, v.Kind())
}

func TestAccessorKindMismatch(t *testing.T) {
	t.Parallel()

	v := Int(1)
	_, err := v.AsString()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrKindMismatch))
	assert.Contains(t, err.Error(), "value is number, not string")

	_, err = v.AsBool()
	assert.True(t, errors.Is(err, ErrKindMismatch))
	_, err = v.Elements()
	assert.True(t, errors.Is(err, ErrKindMismatch))
	_, err = v.Members()
	assert.True(t, errors.Is(err, ErrKindMismatch))

	s := String("1")
	_, err = s.AsNumber()
	assert.True(t, errors.Is(err, ErrKindMismatch))
}

func TestNumberConversions(t *testing.T) {
	t.Parallel()

	assert.Equal(t, IntNumber, NumberFromUint(5).Type())
	big := NumberFromUint(math.MaxUint64)
	assert.Equal(t, UintNumber, big.Type())
	assert.True(t, big.IsIntegral())

	_, ok := big.Int64()
	assert.False(t, ok)
	u, ok := big.Uint64()
	assert.True(t, ok)
	assert.Equal(t, uint64(math.MaxUint64), u)

	_, ok = NumberFromInt(-1).Uint64()
	assert.False(t, ok)

	i, ok := NumberFromFloat(3).Int64()
	assert.True(t, ok)
	assert.Equal(t, int64(3), i)
	_, ok = NumberFromFloat(3.5).Int64()
	assert.False(t, ok)
	_, ok = NumberFromFloat(1e300).Int64()
	assert.False(t, ok)

	assert.Equal(t, "int", IntNumber.String())
	assert.Equal(t, "float", FloatNumber.String())
	assert.Equal(t, "18446744073709551615", big.String())
}

func TestNumberDecimal(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input  string
		output string
	}{
		{input: `0.1`, output: "0.1"},
		{input: `-42`, output: "-42"},
		{input: `18446744073709551615`, output: "18446744073709551615"},
		{input: `1.5e3`, output: "1500"},
	}
	for _, c := range cases {
		v := mustParse(t, c.input)
		n, err := v.AsNumber()
		require.NoError(t, err)
		d, err := n.Decimal()
		require.NoError(t, err)
		assert.Equal(t, c.output, d.String(), "input %s", c.input)
	}

	_, err := NumberFromFloat(math.NaN()).Decimal()
	assert.True(t, errors.Is(err, ErrUnsupportedValue))
}

func TestValueString(t *testing.T) {
	t.Parallel()

	v := Array(Null(), Bool(false), Float(2.5), String("x"))
	assert.Equal(t, `[null,false,2.5,"x"]`, v.String())

	bad := Array(Float(math.Inf(1)))
	assert.True(t, strings.HasPrefix(bad.String(), "!ERROR("))
	assert.Equal(t, "NaN", NumberFromFloat(math.NaN()).String())

	assert.Equal(t, "object", ObjectKind.String())
	assert.Equal(t, "unknown", Kind(42).String())
}

func TestEncodingJSONInterop(t *testing.T) {
	t.Parallel()

	v := mustParse(t, `{"a":[1,2.5]}`)
	out, err := json.Marshal(&v)
	require.NoError(t, err)
	assert.Equal(t, `{"a":[1,2.5]}`, string(out))

	var wrapper struct {
		Doc Value `json:"doc"`
	}
	err = json.Unmarshal([]byte(`{"doc":{"x":"y"}}`), &wrapper)
	require.NoError(t, err)
	s, err := wrapper.Doc.Get("x").AsString()
	require.NoError(t, err)
	assert.Equal(t, "y", s)

	err = json.Unmarshal([]byte(`{"doc":[1e400]}`), &wrapper)
	var pe *ParseError
	assert.True(t, errors.As(err, &pe))
}
