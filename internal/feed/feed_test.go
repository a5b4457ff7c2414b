package feed

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssbor/jobmap/internal/entities"
	"github.com/ssbor/jobmap/internal/events"
)

func writeFeed(t *testing.T, dir, tag, content string) {
	require.NoError(t, os.WriteFile(filepath.Join(dir, tag+".json"), []byte(content), 0644))
}

func Test_Store_ReadsOffersField(t *testing.T) {

	dir := t.TempDir()
	writeFeed(t, dir, "jobs", `{
		"summary": {"tag": "jobs", "count": 1},
		"offers": [{"obec": "Bor", "kraj": "CZ032", "zamestnavatel": "Okna s.r.o."}]
	}`)

	doc, err := NewStore(dir).Load("jobs")
	require.NoError(t, err)

	offers := doc.AllOffers()
	require.Len(t, offers, 1)
	assert.Equal(t, "Bor", offers[0].Municipality)
	assert.Equal(t, "jobs", doc.Summary.Tag)
}

func Test_Store_FallsBackToLastOffers(t *testing.T) {

	dir := t.TempDir()
	writeFeed(t, dir, "ridici", `{"last_offers": [{"obec": "Brno"}, {"obec": "Plzeň"}]}`)

	doc, err := NewStore(dir).Load("ridici")
	require.NoError(t, err)
	assert.Len(t, doc.AllOffers(), 2)
}

func Test_Store_ListsTags(t *testing.T) {

	dir := t.TempDir()
	writeFeed(t, dir, "jobs", `{}`)
	writeFeed(t, dir, "ridici", `{}`)

	tags, err := NewStore(dir).Tags()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"jobs", "ridici"}, tags)
}

func Test_Store_MalformedFeedIsAnError(t *testing.T) {

	dir := t.TempDir()
	writeFeed(t, dir, "jobs", `{not json`)

	_, err := NewStore(dir).Load("jobs")
	assert.Error(t, err)
}

type sinkStub struct {
	offers []entities.Offer
}

func (s *sinkStub) SetOffers(offers []entities.Offer) {
	s.offers = offers
}

type syncSink struct {
	mu    sync.Mutex
	loads int
}

func (s *syncSink) SetOffers([]entities.Offer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
}

func (s *syncSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads
}

func Test_Reloader_PushesFreshOffersAndPublishes(t *testing.T) {

	dir := t.TempDir()
	writeFeed(t, dir, "jobs", `{"offers": [{"obec": "Bor"}]}`)

	bus := EventBus.New()
	var published []events.OffersReloaded
	require.NoError(t, bus.Subscribe(events.OffersReloadedTopic, func(e events.OffersReloaded) {
		published = append(published, e)
	}))

	reloader, err := NewReloader(NewStore(dir), bus, "0 6 * * *")
	require.NoError(t, err)
	defer reloader.Stop()

	sink := &sinkStub{}
	reloader.Register("jobs", sink)

	writeFeed(t, dir, "jobs", `{"offers": [{"obec": "Bor"}, {"obec": "Brno"}]}`)
	reloader.reloadAll()

	require.Len(t, sink.offers, 2)
	require.Len(t, published, 1)
	assert.Equal(t, "jobs", published[0].Tag)
	assert.Equal(t, 2, published[0].Count)
}

func Test_Reloader_ScheduleFiresOnlyAfterStart(t *testing.T) {

	dir := t.TempDir()
	writeFeed(t, dir, "jobs", `{"offers": [{"obec": "Bor"}]}`)

	reloader, err := NewReloader(NewStore(dir), EventBus.New(), "@every 10ms")
	require.NoError(t, err)
	defer reloader.Stop()

	sink := &syncSink{}
	time.Sleep(50 * time.Millisecond)
	reloader.Register("jobs", sink)
	assert.Zero(t, sink.count(), "schedule must not fire before Start")

	reloader.Start()
	assert.Eventually(t, func() bool { return sink.count() > 0 },
		time.Second, 10*time.Millisecond)
}

func Test_Reloader_KeepsOldOffersOnBrokenFeed(t *testing.T) {

	dir := t.TempDir()
	writeFeed(t, dir, "jobs", `{"offers": [{"obec": "Bor"}]}`)

	reloader, err := NewReloader(NewStore(dir), EventBus.New(), "0 6 * * *")
	require.NoError(t, err)
	defer reloader.Stop()

	sink := &sinkStub{offers: []entities.Offer{{Municipality: "Bor"}}}
	reloader.Register("jobs", sink)

	writeFeed(t, dir, "jobs", `{broken`)
	reloader.reloadAll()

	assert.Len(t, sink.offers, 1, "a broken reload must not clear the session")
}
