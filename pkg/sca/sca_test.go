package sca

import (
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `version 3
run Toy1-0-20250114-18:12:45-12345
attr configname Toy1
attr repetition 0
attr network "MultiCell SA"
par **.numUEs 39
scalar net.ue[0].app[0] cbrReceivedThroughput:mean 5000000
scalar net.ue[1].app[0] cbrReceivedThroughput:mean 4.5e6
scalar net.gnb1.cellularNic.mac CNProcDemand:mean 52.5
scalar "net.ue[2].app[0]" 'cbrFrameDelay:mean' 0.012 s
scalar net.ue[3].app[0] cbrReceivedThroughput:mean notanumber
statistic net.ue[0].app[0] cbrRcvdPkt:vector
field count 1200
`

func TestParseReader_Sample(t *testing.T) {
	res, err := ParseReader(strings.NewReader(sample))
	require.NoError(t, err)

	require.Len(t, res.Records, 5)
	assert.Equal(t, 1, res.BadValues)

	assert.Equal(t, Attributes{
		"configname": "Toy1",
		"repetition": "0",
		"network":    "MultiCell SA", // quotes stripped
	}, res.Attrs)

	r0 := res.Records[0]
	assert.Equal(t, "net.ue[0].app[0]", r0.Module)
	assert.Equal(t, "cbrReceivedThroughput:mean", r0.Name)
	assert.Equal(t, 5000000.0, r0.Value)
	assert.Empty(t, r0.Unit)

	// scientific notation
	assert.Equal(t, 4.5e6, res.Records[1].Value)

	// quoted module and name, trailing unit
	r3 := res.Records[3]
	assert.Equal(t, "net.ue[2].app[0]", r3.Module)
	assert.Equal(t, "cbrFrameDelay:mean", r3.Name)
	assert.Equal(t, 0.012, r3.Value)
	assert.Equal(t, "s", r3.Unit)

	// malformed value token: record kept, value NaN
	r4 := res.Records[4]
	assert.Equal(t, "net.ue[3].app[0]", r4.Module)
	assert.True(t, math.IsNaN(r4.Value))

	for i, r := range res.Records {
		t.Logf("record %d: %s", i, r.Line())
	}
}

func TestParseReader_MalformedLinesIgnored(t *testing.T) {
	in := strings.Join([]string{
		"",
		"   ",
		"scalar",                // no tokens at all
		"scalar onlymodule",     // missing name and value
		"scalar mod name",       // missing value
		"attr",                  // missing key
		"garbage line here",     // unknown kind
		"scalar mod name 1.5e3", // the one valid line
	}, "\n")

	res, err := ParseReader(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, 0, res.BadValues)
	assert.Equal(t, 1500.0, res.Records[0].Value)
}

func TestParseReader_DeclaredNaNAndInf(t *testing.T) {
	in := "scalar m delay:mean nan\nscalar m delay:mean inf\nscalar m delay:mean -inf\n"
	res, err := ParseReader(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, res.Records, 3)

	// strconv accepts these spellings; they are declared values, not parse
	// failures.
	assert.True(t, math.IsNaN(res.Records[0].Value))
	assert.True(t, math.IsInf(res.Records[1].Value, 1))
	assert.True(t, math.IsInf(res.Records[2].Value, -1))
	assert.Equal(t, 0, res.BadValues)
}

func TestParseReader_InvalidBytesSkippedNotFatal(t *testing.T) {
	in := "scalar mod\xff\xfe name 2.0\nscalar mod name 3.0\n"
	res, err := ParseReader(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, 3.0, res.Records[1].Value)
}

func TestRecord_Line_RoundTrip(t *testing.T) {
	cases := []Record{
		{Module: "net.ue[0].app[0]", Name: "cbrReceivedThroughput:mean", Value: 5e6},
		{Module: "net.gnb1.cellularNic.mac", Name: "CNProcDemand:mean", Value: 52.5},
		{Module: "a b", Name: "x:mean", Value: -1.5e-3, Unit: "s"},
	}
	for i, want := range cases {
		res, err := ParseReader(strings.NewReader(want.Line()))
		require.NoError(t, err, "case %d", i)
		require.Len(t, res.Records, 1, "case %d", i)
		got := res.Records[0]
		assert.Equal(t, want.Module, got.Module, "case %d", i)
		assert.Equal(t, want.Name, got.Name, "case %d", i)
		assert.InDelta(t, want.Value, got.Value, math.Abs(want.Value)*1e-12, "case %d", i)
	}
}

func TestUnquote_Idempotent(t *testing.T) {
	cases := map[string]string{
		`"quoted"`:   "quoted",
		`'quoted'`:   "quoted",
		`bare`:       "bare",
		`"mismatch'`: `"mismatch'`,
		`"`:          `"`, // single char, below min length
		`""`:         "",
	}
	for in, want := range cases {
		got := unquote(in)
		assert.Equal(t, want, got, "unquote(%q)", in)
		// stripping an already-bare token is a no-op
		assert.Equal(t, got, unquote(got), "unquote(unquote(%q))", in)
	}
}

func TestNumericToken_Examples(t *testing.T) {
	res, err := ParseReader(strings.NewReader("scalar m x 1.5e-3\nscalar m y abc\n"))
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, 0.0015, res.Records[0].Value)
	assert.True(t, math.IsNaN(res.Records[1].Value))
	assert.Equal(t, "y", res.Records[1].Name) // name captured for counting
}

func TestParseFile_Missing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "nope.sca"))
	require.Error(t, err)
}

func TestParseReader_NilReader(t *testing.T) {
	_, err := ParseReader(nil)
	require.ErrorIs(t, err, ErrNilReader)
}
