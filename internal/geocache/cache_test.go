package geocache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/ssbor/jobmap/internal/entities"
	"github.com/stretchr/testify/assert"
)

func Test_Cache_NegativeEntryIsDistinctFromAbsent(t *testing.T) {

	cache := Open(NewFileStore(filepath.Join(t.TempDir(), "geo.json")))

	_, present := cache.Get("Atlantida, Czechia")
	assert.False(t, present)

	cache.Set("Atlantida, Czechia", nil)
	coord, present := cache.Get("Atlantida, Czechia")
	assert.True(t, present)
	assert.Nil(t, coord)
}

func Test_FileStore_RoundTripPreservesNegatives(t *testing.T) {

	path := filepath.Join(t.TempDir(), "geo.json")
	store := NewFileStore(path)

	cache := Open(store)
	cache.Set("Plzeň, Plzeňský kraj, Czechia", &entities.Coordinate{Lat: 49.7384, Lon: 13.3736})
	cache.Set("Atlantida, Czechia", nil)
	cache.Persist()

	reloaded := Open(store)
	assert.Equal(t, 2, reloaded.Len())

	coord, present := reloaded.Get("Plzeň, Plzeňský kraj, Czechia")
	assert.True(t, present)
	assert.Equal(t, &entities.Coordinate{Lat: 49.7384, Lon: 13.3736}, coord)

	coord, present = reloaded.Get("Atlantida, Czechia")
	assert.True(t, present)
	assert.Nil(t, coord)
}

func Test_Open_ToleratesMissingEmptyAndMalformedStorage(t *testing.T) {

	dir := t.TempDir()

	missing := Open(NewFileStore(filepath.Join(dir, "missing.json")))
	assert.Zero(t, missing.Len())

	emptyPath := filepath.Join(dir, "empty.json")
	assert.NoError(t, os.WriteFile(emptyPath, nil, 0o644))
	assert.Zero(t, Open(NewFileStore(emptyPath)).Len())

	brokenPath := filepath.Join(dir, "broken.json")
	assert.NoError(t, os.WriteFile(brokenPath, []byte("{not json"), 0o644))
	assert.Zero(t, Open(NewFileStore(brokenPath)).Len())
}

type failingStore struct{}

func (failingStore) Load() (map[string]*entities.Coordinate, error) {
	return nil, errors.New("backend down")
}

func (failingStore) Save(map[string]*entities.Coordinate) error {
	return errors.New("backend down")
}

func Test_Persist_SwallowsStoreFailures(t *testing.T) {

	cache := Open(failingStore{})
	cache.Set("Brno, Jihomoravský kraj, Czechia", &entities.Coordinate{Lat: 49.1951, Lon: 16.6068})

	assert.NotPanics(t, cache.Persist)

	// in-memory state stays authoritative
	coord, present := cache.Get("Brno, Jihomoravský kraj, Czechia")
	assert.True(t, present)
	assert.NotNil(t, coord)
}

func Test_SqliteStore_RoundTrip(t *testing.T) {

	store, err := NewSqliteStore(filepath.Join(t.TempDir(), "geo.db"))
	assert.NoError(t, err)
	defer store.Close()

	entries := map[string]*entities.Coordinate{
		"Plzeň, Plzeňský kraj, Czechia": {Lat: 49.7384, Lon: 13.3736},
		"Atlantida, Czechia":            nil,
	}
	assert.NoError(t, store.Save(entries))

	// second save upserts without erroring on existing rows
	entries["Plzeň, Plzeňský kraj, Czechia"] = &entities.Coordinate{Lat: 49.74, Lon: 13.37}
	assert.NoError(t, store.Save(entries))

	loaded, err := store.Load()
	assert.NoError(t, err)
	assert.Len(t, loaded, 2)
	assert.Equal(t, &entities.Coordinate{Lat: 49.74, Lon: 13.37}, loaded["Plzeň, Plzeňský kraj, Czechia"])
	assert.Nil(t, loaded["Atlantida, Czechia"])
}
