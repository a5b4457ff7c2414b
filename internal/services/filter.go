package services

import (
	"context"
	"sort"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/ssbor/jobmap/internal/clients/nominatim"
	"github.com/ssbor/jobmap/internal/entities"
	"github.com/ssbor/jobmap/internal/feed"
	"github.com/ssbor/jobmap/internal/gazetteer"
	"github.com/ssbor/jobmap/internal/logger"
)

type FilterState string

const (
	StateInactive FilterState = "inactive"
	StateAwaiting FilterState = "awaiting"
	StatePartial  FilterState = "partial"
	StateBlocked  FilterState = "blocked"
	StateResolved FilterState = "resolved"
)

// Status lines shown next to the offer table.
const (
	statusComputing = "Počítám dojezd…"
	statusBlocked   = "Dojezd se nepodařilo spočítat."
	statusNoOrigin  = "Nepodařilo se najít polohu pro: "
)

type Criteria struct {
	Region     string
	MinWage    *float64
	OriginText string
	RadiusKm   *float64
	Query      string
}

type OfferRow struct {
	entities.Offer
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

type Result struct {
	Offers         []OfferRow
	Total          int
	State          FilterState
	Status         string
	AvgMonthlyWage *float64
	TopEmployers   []feed.Employer
}

// DistanceFilter answers filter requests synchronously with whatever
// distance knowledge the session holds right now, and kicks off background
// resolution whenever the radius criterion needs distances it does not
// have yet. No failure in here ever empties the offer table on its own.
type DistanceFilter struct {
	session   *Session
	scheduler *Scheduler
	gazetteer GazetteerIndex
	geocoder  Geocoder

	originMemo *gocache.Cache
	maxPasses  int
}

func NewDistanceFilter(session *Session, scheduler *Scheduler,
	gazetteer GazetteerIndex, geocoder Geocoder, maxPasses int) *DistanceFilter {

	if maxPasses <= 0 {
		maxPasses = 3
	}
	return &DistanceFilter{
		session:    session,
		scheduler:  scheduler,
		gazetteer:  gazetteer,
		geocoder:   geocoder,
		originMemo: gocache.New(30*time.Minute, time.Hour),
		maxPasses:  maxPasses,
	}
}

func (f *DistanceFilter) SetOffers(offers []entities.Offer) {
	f.session.SetOffers(offers)
}

func (f *DistanceFilter) Apply(ctx context.Context, criteria Criteria) Result {

	originText := strings.TrimSpace(criteria.OriginText)
	radiusActive := criteria.RadiusKm != nil && originText != ""

	var status string

	prevText, origin := f.session.Origin()
	if originText != prevText {
		f.session.SetOrigin(originText, nil)
		origin = nil
	}
	if radiusActive && origin == nil {
		if origin = f.resolveOrigin(ctx, originText); origin != nil {
			f.session.SetOrigin(originText, origin)
		} else {
			status = statusNoOrigin + originText
		}
	}

	rows := f.relevantOffers(criteria)

	state := StateInactive
	if radiusActive && origin != nil {
		rows, state = f.applyRadius(rows, *criteria.RadiusKm)
		switch state {
		case StateAwaiting, StatePartial:
			status = statusComputing
			f.scheduler.ScheduleResolution(context.Background(), f.session)
		case StateBlocked:
			status = statusBlocked
		}
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Date > rows[j].Date })

	return Result{
		Offers:         rows,
		Total:          len(rows),
		State:          state,
		Status:         status,
		AvgMonthlyWage: averageWage(rows),
		TopEmployers:   topEmployers(rows, 5),
	}
}

// relevantOffers applies the region, wage and free-text criteria and
// attaches known distances to the surviving rows.
func (f *DistanceFilter) relevantOffers(criteria Criteria) []OfferRow {

	needle := gazetteer.NormalizeName(criteria.Query)

	matching := lo.Filter(f.session.Offers(), func(o entities.Offer, _ int) bool {
		if criteria.Region != "" && o.RegionCode != criteria.Region && o.RegionID != criteria.Region {
			return false
		}
		if criteria.MinWage != nil {
			wage, ok := o.MonthlyWagePoint()
			if !ok || wage < *criteria.MinWage {
				return false
			}
		}
		if needle != "" && !strings.Contains(gazetteer.NormalizeName(o.SearchText()), needle) {
			return false
		}
		return true
	})

	return lo.Map(matching, func(o entities.Offer, _ int) OfferRow {
		row := OfferRow{Offer: o}
		if d, known := f.session.DistanceFor(o.Key()); known {
			row.DistanceKm = &d
		}
		return row
	})
}

// applyRadius runs the distance state machine over the pre-filtered rows.
// Rows without a known distance are dropped only in the Resolved state;
// everywhere else missing knowledge keeps the row visible.
func (f *DistanceFilter) applyRadius(rows []OfferRow, radiusKm float64) ([]OfferRow, FilterState) {

	known := lo.CountBy(rows, func(r OfferRow) bool { return r.DistanceKm != nil })
	retryEligible := f.session.PassesAttempted() < f.maxPasses || f.session.isResolving()

	switch {
	case known == 0 && retryEligible:
		return rows, StateAwaiting
	case known == 0:
		return rows, StateBlocked
	case known < len(rows) && retryEligible:
		within := lo.Filter(rows, func(r OfferRow, _ int) bool {
			return r.DistanceKm == nil || *r.DistanceKm <= radiusKm
		})
		return within, StatePartial
	default:
		within := lo.Filter(rows, func(r OfferRow, _ int) bool {
			return r.DistanceKm != nil && *r.DistanceKm <= radiusKm
		})
		return within, StateResolved
	}
}

// resolveOrigin turns the origin text into a coordinate, preferring the
// offline index and falling back to the remote geocoder with a country
// suffix. Results, including permanent misses, are memoized; transient
// failures are not, so the next request retries.
func (f *DistanceFilter) resolveOrigin(ctx context.Context, text string) *entities.Coordinate {

	if cached, found := f.originMemo.Get(text); found {
		coord, _ := cached.(*entities.Coordinate)
		return coord
	}

	coord := f.gazetteer.Lookup(text, "")
	if coord == nil {
		var err error
		coord, err = f.geocoder.Geocode(ctx, text+", Czechia")
		if err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeGeocode).
				Warnf("failed to resolve origin %v: %v", text, err)
			if nominatim.IsTransient(err) {
				return nil
			}
		}
	}

	f.originMemo.SetDefault(text, coord)
	return coord
}

func averageWage(rows []OfferRow) *float64 {
	var sum float64
	var count int
	for _, row := range rows {
		if wage, ok := row.MonthlyWagePoint(); ok {
			sum += wage
			count++
		}
	}
	if count == 0 {
		return nil
	}
	avg := sum / float64(count)
	return &avg
}

func topEmployers(rows []OfferRow, limit int) []feed.Employer {

	counts := lo.CountValuesBy(rows, func(r OfferRow) string { return r.Employer })
	delete(counts, "")

	employers := lo.MapToSlice(counts, func(name string, count int) feed.Employer {
		return feed.Employer{Name: name, Count: count}
	})
	sort.Slice(employers, func(i, j int) bool {
		if employers[i].Count != employers[j].Count {
			return employers[i].Count > employers[j].Count
		}
		return employers[i].Name < employers[j].Name
	})

	if len(employers) > limit {
		employers = employers[:limit]
	}
	return employers
}
