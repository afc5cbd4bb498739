package sweep

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmelo/scasweep/pkg/sca"
	"github.com/fmelo/scasweep/pkg/types"
)

func file(path string, key types.Dbm, recs ...sca.Record) ParsedFile {
	return ParsedFile{Path: path, Key: key, Resolved: true, Records: recs}
}

func rec(name string, v float64) sca.Record {
	return sca.Record{Module: "net.ue[0].app[0]", Name: name, Value: v}
}

func TestAggregate_GroupsByKey(t *testing.T) {
	files := []ParsedFile{
		file("Pot26/0.sca", 26, rec("cbrReceivedThroughput:mean", 5e6)),
		file("Pot36/0.sca", 36, rec("cbrReceivedThroughput:mean", 7e6)),
	}
	rows := Aggregate(files, DefaultFamilies())
	require.Len(t, rows, 2)

	assert.Equal(t, types.Dbm(26), rows[0].Key)
	assert.Equal(t, types.Dbm(36), rows[1].Key)

	s26, ok := rows[0].Stat(FamilyThroughput)
	require.True(t, ok)
	assert.Equal(t, 5e6, s26.Mean)

	s36, ok := rows[1].Stat(FamilyThroughput)
	require.True(t, ok)
	assert.Equal(t, 7e6, s36.Mean)

	for _, r := range rows {
		t.Logf("key=%s files=%d thp=%v", r.Key, r.Files, r.Stats[FamilyThroughput])
	}
}

func TestAggregate_FiniteGuard(t *testing.T) {
	files := []ParsedFile{
		file("Pot26/0.sca", 26,
			rec("cbrReceivedThroughput:mean", 4e6),
			rec("cbrReceivedThroughput:mean", math.NaN()),
			rec("cbrReceivedThroughput:mean", math.Inf(1)),
			rec("cbrReceivedThroughput:mean", 6e6),
		),
	}
	rows := Aggregate(files, DefaultFamilies())
	require.Len(t, rows, 1)

	s, ok := rows[0].Stat(FamilyThroughput)
	require.True(t, ok)
	assert.Equal(t, 2, s.N)
	assert.Equal(t, 5e6, s.Mean) // NaN/Inf never enter the mean
	assert.Equal(t, 1e7, s.Sum)
}

func TestAggregate_MeanWithinMinMax(t *testing.T) {
	vals := []float64{3.5, 52.5, 17.0, 41.2, 8.8}
	var recs []sca.Record
	mn, mx := vals[0], vals[0]
	for _, v := range vals {
		recs = append(recs, rec("CNProcDemand:mean", v))
		mn = math.Min(mn, v)
		mx = math.Max(mx, v)
	}
	rows := Aggregate([]ParsedFile{file("Pot26/0.sca", 26, recs...)}, DefaultFamilies())
	s, ok := rows[0].Stat(FamilyProcDemand)
	require.True(t, ok)
	assert.GreaterOrEqual(t, s.Mean, mn)
	assert.LessOrEqual(t, s.Mean, mx)
}

func TestAggregate_EmptyFamilyAbsentNotZero(t *testing.T) {
	files := []ParsedFile{
		file("Pot26/0.sca", 26,
			rec("cbrReceivedThroughput:mean", 5e6),
			rec("cbrFrameDelay:mean", math.NaN()), // only a NaN delay sample
		),
	}
	rows := Aggregate(files, DefaultFamilies())
	require.Len(t, rows, 1)

	_, ok := rows[0].Stat(FamilyDelay)
	assert.False(t, ok, "all-NaN family must be absent, not a zero stat")
	_, ok = rows[0].Stat(FamilySINR)
	assert.False(t, ok, "unmatched family must be absent")
}

func TestAggregate_UnresolvedExcluded(t *testing.T) {
	files := []ParsedFile{
		file("Pot26/0.sca", 26, rec("cbrReceivedThroughput:mean", 5e6)),
		{Path: "stray/0.sca", Resolved: false, Records: []sca.Record{rec("cbrReceivedThroughput:mean", 9e6)}},
	}
	rows := Aggregate(files, DefaultFamilies())
	require.Len(t, rows, 1)
	s, _ := rows[0].Stat(FamilyThroughput)
	assert.Equal(t, 5e6, s.Mean) // the stray file contributed nothing

	// ... but it stays in the raw table
	flat := Flatten(files)
	require.Len(t, flat, 2)
	assert.False(t, flat[1].Resolved)
}

func TestAggregate_ActiveUsers(t *testing.T) {
	files := []ParsedFile{
		file("Pot26/0.sca", 26,
			rec("cbrReceivedThroughput:mean", 5e6),
			rec("cbrReceivedThroughput:mean", 0), // idle UE: not active
			rec("cbrReceivedThroughput:mean", 3e6),
		),
		file("Pot26/1.sca", 26,
			rec("cbrReceivedThroughput:mean", 4e6),
		),
	}
	rows := Aggregate(files, DefaultFamilies())
	require.Len(t, rows, 1)
	// 2 active in the first repetition, 1 in the second
	assert.Equal(t, 1.5, rows[0].ActiveUsers.Mean)
	assert.Equal(t, 2, rows[0].Files)
}

func TestAggregate_AmbiguousRecordInMultipleFamilies(t *testing.T) {
	// A name matching both throughput and sinr aliases lands in both; each
	// family aggregates its own subset independently.
	fams := Families{
		FamilyThroughput: {"throughput"},
		FamilySINR:       {"sinr"},
	}
	files := []ParsedFile{
		file("Pot26/0.sca", 26, rec("sinrThroughput:mean", 10)),
	}
	rows := Aggregate(files, fams)
	require.Len(t, rows, 1)
	st, ok := rows[0].Stat(FamilyThroughput)
	require.True(t, ok)
	ss, ok := rows[0].Stat(FamilySINR)
	require.True(t, ok)
	assert.Equal(t, st.Mean, ss.Mean)
}

func TestAggregate_KeepsUnitsAndValues(t *testing.T) {
	files := []ParsedFile{
		file("Pot26/0.sca", 26,
			sca.Record{Module: "m", Name: "cbrFrameDelay:mean", Value: 0.012, Unit: "s"},
			sca.Record{Module: "m", Name: "cbrFrameDelay:mean", Value: 0.018, Unit: "s"},
		),
	}
	rows := Aggregate(files, DefaultFamilies())
	require.Len(t, rows, 1)
	assert.Equal(t, "s", rows[0].Units[FamilyDelay])
	assert.Len(t, rows[0].Values[FamilyDelay], 2)
}

func TestFamilies_Match(t *testing.T) {
	fams := DefaultFamilies()
	assert.True(t, fams.Member("cbrReceivedThroughput:mean", FamilyThroughput))
	assert.True(t, fams.Member("cbrReceivedThroughtput:mean", FamilyThroughput)) // producer typo
	assert.True(t, fams.Member("CNProcDemand:mean", FamilyProcDemand))
	assert.True(t, fams.Member("rsrpSinr", FamilySINR))
	assert.False(t, fams.Member("avgServedBlocksDl:mean", FamilyThroughput))
}
