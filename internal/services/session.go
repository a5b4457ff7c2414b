package services

import (
	"sync"
	"time"

	"github.com/ssbor/jobmap/internal/entities"
)

// Session holds the mutable state of one offer set: the offers themselves,
// the resolved origin and the distances computed against it. Distances only
// grow while origin and offers stay fixed; replacing either clears them
// synchronously, so a stale distance is never observable.
type Session struct {
	mu sync.Mutex

	tag        string
	offers     []entities.Offer
	originText string
	origin     *entities.Coordinate
	distances  map[string]float64 // offer key -> km from origin

	passesAttempted int
	resolving       bool
}

func NewSession(tag string, offers []entities.Offer) *Session {
	return &Session{
		tag:       tag,
		offers:    offers,
		distances: map[string]float64{},
	}
}

func (s *Session) Tag() string {
	return s.tag
}

// SetOffers replaces the offer set and drops every distance computed for
// the previous one, together with the retry bookkeeping.
func (s *Session) SetOffers(offers []entities.Offer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offers = offers
	s.distances = map[string]float64{}
	s.passesAttempted = 0
}

// SetOrigin replaces the origin. Passing nil coord records that the origin
// text could not be resolved. Distances are cleared in both cases.
func (s *Session) SetOrigin(text string, coord *entities.Coordinate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.originText = text
	s.origin = coord
	s.distances = map[string]float64{}
	s.passesAttempted = 0
}

func (s *Session) Origin() (string, *entities.Coordinate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.originText, s.origin
}

func (s *Session) Offers() []entities.Offer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offers
}

func (s *Session) DistanceFor(offerKey string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.distances[offerKey]
	return d, ok
}

func (s *Session) ResolvedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.distances)
}

func (s *Session) PassesAttempted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.passesAttempted
}

// setDistances stores distances for the given offer keys, but only when the
// session still has the origin the distances were computed against. A pass
// that raced with an origin change writes nothing.
func (s *Session) setDistances(origin *entities.Coordinate, keyed map[string]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.origin != origin {
		return
	}
	for key, d := range keyed {
		s.distances[key] = d
	}
}

// tryBeginPass marks the session as resolving. It returns false when a pass
// is already running, so at most one resolution pass per session is active.
func (s *Session) tryBeginPass() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resolving {
		return false
	}
	s.resolving = true
	s.passesAttempted++
	return true
}

func (s *Session) endPass() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolving = false
}

func (s *Session) isResolving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolving
}

// cooldown tracks a process-wide pause after the geocoding service pushed
// back. It is shared by every session, not per query.
type cooldown struct {
	mu    sync.Mutex
	until time.Time
}

func (c *cooldown) activeAt(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return now.Before(c.until)
}

func (c *cooldown) extend(until time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if until.After(c.until) {
		c.until = until
	}
}
