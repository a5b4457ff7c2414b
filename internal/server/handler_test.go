package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssbor/jobmap/internal/entities"
	"github.com/ssbor/jobmap/internal/geocache"
	"github.com/ssbor/jobmap/internal/services"
)

type noopGeocoder struct{}

func (noopGeocoder) Geocode(_ context.Context, _ string) (*entities.Coordinate, error) {
	return nil, nil
}

type noopGazetteer struct{}

func (noopGazetteer) Lookup(_, _ string) *entities.Coordinate { return nil }

type discardStore struct{}

func (discardStore) Load() (map[string]*entities.Coordinate, error) {
	return map[string]*entities.Coordinate{}, nil
}

func (discardStore) Save(map[string]*entities.Coordinate) error { return nil }

func newTestMux(t *testing.T, offers []entities.Offer) *http.ServeMux {
	cache := geocache.Open(discardStore{})
	scheduler, err := services.NewScheduler(EventBus.New(), cache, noopGazetteer{}, noopGeocoder{}, 10, time.Millisecond)
	require.NoError(t, err)

	session := services.NewSession("jobs", offers)
	filter := services.NewDistanceFilter(session, scheduler, noopGazetteer{}, noopGeocoder{}, 3)

	mux := http.NewServeMux()
	NewHandler(map[string]*services.DistanceFilter{"jobs": filter}).RegisterRoutes(mux)
	return mux
}

func testOffer(region, employer string, wage float64) entities.Offer {
	return entities.Offer{
		RegionCode: region,
		District:   "Tachov",
		Profession: "Skladník",
		Employer:   employer,
		WageFrom:   &wage,
		Date:       "2026-08-01",
	}
}

func TestHandler_OffersFiltersByRegion(t *testing.T) {

	mux := newTestMux(t, []entities.Offer{
		testOffer("CZ032", "A", 30000),
		testOffer("CZ064", "B", 30000),
	})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/offers?tag=jobs&region=CZ032", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Count  int    `json:"count"`
		State  string `json:"state"`
		Offers []struct {
			Employer string `json:"zamestnavatel"`
		} `json:"offers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "inactive", resp.State)
	require.Len(t, resp.Offers, 1)
	assert.Equal(t, "A", resp.Offers[0].Employer)
}

func TestHandler_UnknownTagIs404(t *testing.T) {

	mux := newTestMux(t, nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/offers?tag=nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_RegionsCodebook(t *testing.T) {

	mux := newTestMux(t, nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/regions", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var regions []entities.Region
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &regions))
	assert.Len(t, regions, 14)
}
