// Package gazetteer resolves Czech municipality names to coordinates
// from an offline centroid dataset, so that most offers never reach the
// online geocoder.
package gazetteer

import (
	"encoding/json"
	"os"
	"strings"
	"sync"
	"unicode"

	"github.com/ssbor/jobmap/internal/entities"
	"github.com/ssbor/jobmap/internal/logger"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Candidate is one municipality sharing a normalized name.
type Candidate struct {
	Name         string  `json:"n"`
	RegionCode   string  `json:"k"` // NUTS3
	DistrictCode string  `json:"o"`
	DistrictName string  `json:"on"`
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
}

type index struct {
	ByName     map[string][]Candidate `json:"byName"`
	ByNameKraj map[string]Candidate   `json:"byNameKraj"` // key: "name|NUTS3"
}

// Index is the read-only gazetteer. The dataset file is loaded lazily on
// first lookup; concurrent callers share the single load. A missing or
// malformed file degrades to an empty index and lookups return nil.
type Index struct {
	path string
	bias entities.Coordinate

	once sync.Once
	idx  *index
}

func New(path string) *Index {
	return &Index{path: path, bias: entities.BiasPoint}
}

func (g *Index) load() {
	g.idx = &index{}

	raw, err := os.ReadFile(g.path)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeGazetteer).
			Warnf("gazetteer unavailable, falling back to online geocoding: %v", err)
		return
	}

	var parsed index
	if err := json.Unmarshal(raw, &parsed); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeGazetteer).
			Warnf("gazetteer file %v is malformed: %v", g.path, err)
		return
	}

	g.idx = &parsed
	log.Infof("gazetteer loaded: %v names", len(parsed.ByName))
}

// Lookup resolves a place name to a coordinate. With a NUTS3 region hint
// an exact (name, region) entry wins; otherwise the candidate closest to
// the bias point is chosen, ties broken by input order. Returns nil when
// the name is unknown or the index failed to load.
func (g *Index) Lookup(name, regionHint string) *entities.Coordinate {
	g.once.Do(g.load)

	key := NormalizeName(name)
	if key == "" {
		return nil
	}

	if regionHint != "" {
		if c, ok := g.idx.ByNameKraj[key+"|"+regionHint]; ok {
			return &entities.Coordinate{Lat: c.Lat, Lon: c.Lon}
		}
	}

	candidates := g.idx.ByName[key]
	if len(candidates) == 0 {
		return nil
	}

	best := candidates[0]
	bestKm := g.bias.DistanceKm(entities.Coordinate{Lat: best.Lat, Lon: best.Lon})
	for _, c := range candidates[1:] {
		km := g.bias.DistanceKm(entities.Coordinate{Lat: c.Lat, Lon: c.Lon})
		if km < bestKm {
			best, bestKm = c, km
		}
	}
	return &entities.Coordinate{Lat: best.Lat, Lon: best.Lon}
}

var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName folds case, strips diacritics and collapses whitespace,
// matching the normalization used when the dataset was built: "Plzeň"
// and " plzen " land in the same bucket.
func NormalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if folded, _, err := transform.String(foldDiacritics, s); err == nil {
		s = folded
	}
	return strings.Join(strings.Fields(s), " ")
}
