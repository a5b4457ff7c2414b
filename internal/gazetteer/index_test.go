package gazetteer

import (
	"testing"

	"github.com/ssbor/jobmap/internal/entities"
	"github.com/stretchr/testify/assert"
)

func Test_NormalizeName_FoldsCaseDiacriticsAndWhitespace(t *testing.T) {

	assert.Equal(t, "plzen", NormalizeName("Plzeň"))
	assert.Equal(t, "plzen", NormalizeName("  plzen "))
	assert.Equal(t, "usti nad labem", NormalizeName("Ústí  nad\tLabem"))
	assert.Equal(t, "", NormalizeName("   "))
}

func Test_Lookup_RegionHintWins(t *testing.T) {

	idx := New("testdata/obce_centroids.json")

	coord := idx.Lookup("Březí", "CZ064")
	assert.NotNil(t, coord)
	assert.InDelta(t, 48.8183, coord.Lat, 0.0001)
	assert.InDelta(t, 16.5664, coord.Lon, 0.0001)
}

func Test_Lookup_SingleCandidateResolvesWithoutHint(t *testing.T) {

	idx := New("testdata/obce_centroids.json")

	coord := idx.Lookup("Bor", "")
	assert.NotNil(t, coord)
	assert.InDelta(t, 49.7112, coord.Lat, 0.0001)
}

func Test_Lookup_AmbiguousNamePicksBiasClosestDeterministically(t *testing.T) {

	idx := New("testdata/obce_centroids.json")

	// Březí exists in two regions; the Plzeňský kraj one is closer to
	// the bias point and must win on every call.
	first := idx.Lookup("Březí", "")
	assert.NotNil(t, first)
	assert.Equal(t, "CZ032", regionOf(t, idx, *first))

	for i := 0; i < 5; i++ {
		again := idx.Lookup("brezi", "")
		assert.Equal(t, first, again)
	}
}

func Test_Lookup_UnknownNameAndMissingFileReturnNil(t *testing.T) {

	idx := New("testdata/obce_centroids.json")
	assert.Nil(t, idx.Lookup("Neexistov", ""))
	assert.Nil(t, idx.Lookup("", "CZ032"))

	broken := New("testdata/no_such_file.json")
	assert.Nil(t, broken.Lookup("Plzeň", ""))

	malformed := New("testdata/malformed.json")
	assert.Nil(t, malformed.Lookup("Plzeň", ""))
}

func regionOf(t *testing.T, idx *Index, coord entities.Coordinate) string {
	t.Helper()
	for _, c := range idx.idx.ByName[NormalizeName("Březí")] {
		if c.Lat == coord.Lat && c.Lon == coord.Lon {
			return c.RegionCode
		}
	}
	return ""
}
