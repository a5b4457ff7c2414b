package services

import (
	"context"
	"sort"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/ssbor/jobmap/internal/clients/nominatim"
	"github.com/ssbor/jobmap/internal/entities"
	"github.com/ssbor/jobmap/internal/events"
	"github.com/ssbor/jobmap/internal/geocache"
	"github.com/ssbor/jobmap/internal/logger"
	"github.com/ssbor/jobmap/internal/metrics"
)

type Geocoder interface {
	Geocode(ctx context.Context, query string) (*entities.Coordinate, error)
}

type GazetteerIndex interface {
	Lookup(name, regionHint string) *entities.Coordinate
}

// lookup is one planned geocoding query together with every offer that
// shares it.
type lookup struct {
	query  string
	name   string // municipality name for the offline index
	region string // NUTS3 hint
	keys   []string
}

// Scheduler resolves workplace coordinates for a session in passes. A pass
// first applies everything the cache and the offline index already know,
// then drains the remaining queries against the remote geocoder one by one.
// A transient geocoder failure aborts the pass and pauses remote lookups
// for every session until the cooldown elapses.
type Scheduler struct {
	bus       EventBus.Bus
	cache     *geocache.Cache
	gazetteer GazetteerIndex
	geocoder  Geocoder

	maxLookupsPerPass int
	requestDelay      time.Duration
	throttleCooldown  time.Duration
	forbiddenCooldown time.Duration

	cooldown cooldown
}

func NewScheduler(bus EventBus.Bus, cache *geocache.Cache, gazetteer GazetteerIndex,
	geocoder Geocoder, maxLookupsPerPass int, requestDelay time.Duration) (*Scheduler, error) {

	if maxLookupsPerPass <= 0 {
		return nil, errors.New("max lookups per pass must be greater than zero")
	}

	return &Scheduler{
		bus:               bus,
		cache:             cache,
		gazetteer:         gazetteer,
		geocoder:          geocoder,
		maxLookupsPerPass: maxLookupsPerPass,
		requestDelay:      requestDelay,
		throttleCooldown:  2 * time.Minute,
		forbiddenCooldown: 15 * time.Minute,
	}, nil
}

// SetCooldowns overrides the pauses applied after the remote geocoder
// pushes back with a rate-limit or an access denial.
func (s *Scheduler) SetCooldowns(throttled, forbidden time.Duration) {
	s.throttleCooldown = throttled
	s.forbiddenCooldown = forbidden
}

// ScheduleResolution starts a resolution pass for the session unless one is
// already running. The returned channel closes when the pass ends; the
// boolean reports whether this call started a new pass.
func (s *Scheduler) ScheduleResolution(ctx context.Context, session *Session) (<-chan struct{}, bool) {

	if !session.tryBeginPass() {
		return nil, false
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer session.endPass()
		s.runPass(ctx, session)
	}()
	return done, true
}

func (s *Scheduler) runPass(ctx context.Context, session *Session) {

	start := time.Now()
	_, origin := session.Origin()
	if origin == nil {
		return
	}

	plan := s.buildPlan(session)
	if len(plan) == 0 {
		return
	}

	remaining := s.applyLocal(session, origin, plan)
	s.notify(session, remaining)

	if len(remaining) == 0 {
		s.cache.Persist()
		return
	}

	if s.cooldown.activeAt(time.Now()) {
		log.Infof("geocoding paused, %d queries left unresolved for %v", len(remaining), session.Tag())
		s.cache.Persist()
		return
	}

	if len(remaining) > s.maxLookupsPerPass {
		remaining = remaining[:s.maxLookupsPerPass]
	}
	s.drainRemote(ctx, session, origin, remaining)

	s.cache.Persist()
	metrics.ResolutionPassDuration.Observe(time.Since(start).Seconds())
}

// buildPlan collects the queries of every offer without a known distance,
// deduplicated and ordered by how many offers each query unlocks. Ties
// break on the query text so passes are repeatable. The plan is uncapped;
// the per-pass cap applies only to the network remainder, never to
// cache or gazetteer hits.
func (s *Scheduler) buildPlan(session *Session) []*lookup {

	byQuery := map[string]*lookup{}
	for _, offer := range session.Offers() {
		if _, known := session.DistanceFor(offer.Key()); known {
			continue
		}
		query := offer.GeocodeQuery()
		if query == "" {
			continue
		}

		lk, ok := byQuery[query]
		if !ok {
			lk = &lookup{
				query:  query,
				name:   offer.Municipality,
				region: offer.RegionCode,
			}
			byQuery[query] = lk
		}
		lk.keys = append(lk.keys, offer.Key())
	}

	plan := lo.Values(byQuery)
	sort.Slice(plan, func(i, j int) bool {
		if len(plan[i].keys) != len(plan[j].keys) {
			return len(plan[i].keys) > len(plan[j].keys)
		}
		return plan[i].query < plan[j].query
	})

	return plan
}

// applyLocal settles every planned query the cache or the offline index
// can answer without network and returns the queries still unresolved.
// Offline index hits are written through to the cache.
func (s *Scheduler) applyLocal(session *Session, origin *entities.Coordinate, plan []*lookup) []*lookup {

	var remaining []*lookup
	for _, lk := range plan {

		if coord, known := s.cache.Get(lk.query); known {
			if coord != nil {
				session.setDistances(origin, distancesFor(origin, coord, lk.keys))
			}
			continue
		}

		if coord := s.gazetteer.Lookup(lk.name, lk.region); coord != nil {
			s.cache.Set(lk.query, coord)
			session.setDistances(origin, distancesFor(origin, coord, lk.keys))
			continue
		}

		remaining = append(remaining, lk)
	}
	return remaining
}

// drainRemote sends the unresolved queries to the remote geocoder one by
// one, spacing requests by the configured delay. Permanent failures are
// cached as negative entries so they are never retried; the first transient
// failure aborts the pass and arms the process-wide cooldown.
func (s *Scheduler) drainRemote(ctx context.Context, session *Session,
	origin *entities.Coordinate, remaining []*lookup) {

	for i, lk := range remaining {

		if i > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.requestDelay):
			}
		}

		coord, err := s.geocoder.Geocode(ctx, lk.query)

		if err != nil && nominatim.IsTransient(err) {
			pause := s.throttleCooldown
			if errors.Is(err, nominatim.ErrForbidden) {
				pause = s.forbiddenCooldown
			}
			s.cooldown.extend(time.Now().Add(pause))
			metrics.GeocodeRequests.WithLabelValues("transient").Inc()
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeGeocode).
				Warnf("geocoding of %v hit a transient failure, pausing for %v: %v", lk.query, pause, err)
			return
		}

		switch {
		case err != nil:
			s.cache.Set(lk.query, nil)
			metrics.GeocodeRequests.WithLabelValues("failed").Inc()
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeGeocode).
				Warnf("geocoding failed for %v: %v", lk.query, err)
		case coord == nil:
			s.cache.Set(lk.query, nil)
			metrics.GeocodeRequests.WithLabelValues("negative").Inc()
		default:
			s.cache.Set(lk.query, coord)
			session.setDistances(origin, distancesFor(origin, coord, lk.keys))
			metrics.GeocodeRequests.WithLabelValues("ok").Inc()
		}

		s.cache.Persist()
		s.notify(session, remaining[i+1:])
	}
}

func (s *Scheduler) notify(session *Session, remaining []*lookup) {
	s.bus.Publish(events.DistancesUpdatedTopic, events.DistancesUpdated{
		Tag:       session.Tag(),
		Resolved:  session.ResolvedCount(),
		Remaining: len(remaining),
	})
}

func distancesFor(origin, coord *entities.Coordinate, keys []string) map[string]float64 {
	d := origin.DistanceKm(*coord)
	keyed := make(map[string]float64, len(keys))
	for _, key := range keys {
		keyed[key] = d
	}
	return keyed
}
