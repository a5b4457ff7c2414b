package entities

import (
	"regexp"
	"strings"
)

// Offer is one job offer from the pre-built feed. Records are treated as
// immutable; the feed has no stable identifier, so Key derives one.
type Offer struct {
	RegionCode     string   `json:"kraj"` // NUTS3, e.g. CZ032
	RegionID       string   `json:"kraj_id"`
	RegionName     string   `json:"kraj_nazev"`
	District       string   `json:"okres"`
	DistrictID     string   `json:"okres_id"`
	Municipality   string   `json:"obec"`
	MunicipalityID string   `json:"obec_id"`
	Locality       string   `json:"lokalita"`
	Profession     string   `json:"profese"`
	CzIsco         string   `json:"cz_isco"`
	WageFrom       *float64 `json:"mzda_od"`
	WageTo         *float64 `json:"mzda_do"`
	Employer       string   `json:"zamestnavatel"`
	Date           string   `json:"datum"`
}

// Key is the composite identity used by the distance map. It is stable
// across reloads of the same dataset but not guaranteed globally unique;
// collisions between offers sharing ISCO, employer, district and date
// are accepted.
func (o Offer) Key() string {
	place := o.District
	if place == "" {
		place = o.Locality
	}
	return strings.Join([]string{o.CzIsco, o.Employer, place, o.Date}, "|")
}

var (
	zipRe   = regexp.MustCompile(`\b\d{5}\b`)
	digitRe = regexp.MustCompile(`\d`)
)

// GeocodeQuery builds the normalized free-text search term for this
// offer's workplace. Offers with identical address fields always produce
// the same string, which doubles as the geo cache key. Address-looking
// locality text is preferred for precision, then municipality+region,
// then progressively coarser fallbacks.
func (o Offer) GeocodeQuery() string {
	regionName := strings.TrimSpace(o.RegionName)
	if regionName == "" {
		regionName = RegionNameByCode(strings.TrimSpace(o.RegionCode))
	}
	municipality := strings.TrimSpace(o.Municipality)
	district := strings.TrimSpace(o.District)
	locality := strings.TrimSpace(o.Locality)

	looksLikeAddress := zipRe.MatchString(locality) || digitRe.MatchString(locality)
	if locality != "" && looksLikeAddress {
		switch {
		case municipality != "" && regionName != "":
			return locality + ", " + municipality + ", " + regionName + ", Czechia"
		case municipality != "":
			return locality + ", " + municipality + ", Czechia"
		case district != "" && regionName != "":
			return locality + ", " + district + ", " + regionName + ", Czechia"
		}
	}

	switch {
	case municipality != "" && regionName != "":
		return municipality + ", " + regionName + ", Czechia"
	case district != "" && regionName != "":
		return district + ", " + regionName + ", Czechia"
	case locality != "":
		return locality + ", Czechia"
	case district != "":
		return district + ", Czechia"
	case regionName != "":
		return regionName + ", Czechia"
	}
	return ""
}

// SearchText is the lowercased haystack for free-text filtering.
func (o Offer) SearchText() string {
	return strings.ToLower(strings.Join([]string{
		o.Profession, o.Employer, o.District, o.Locality, o.RegionName,
	}, " "))
}

// Wage values at or below this threshold are interpreted as Kč per hour
// rather than per month.
const hourlyWageMax = 1000

// 40h/week, ~173.33 hours a month
const hoursPerMonth = 40 * 52.0 / 12

func looksHourly(w *float64) bool {
	return w != nil && *w > 0 && *w <= hourlyWageMax
}

func toMonthly(w float64) float64 {
	if w > 0 && w <= hourlyWageMax {
		return w * hoursPerMonth
	}
	return w
}

// WageIsHourly reports whether either bound of the wage range looks like
// an hourly rate.
func (o Offer) WageIsHourly() bool {
	return looksHourly(o.WageFrom) || looksHourly(o.WageTo)
}

// MonthlyWagePoint reduces the wage range to a single monthly figure:
// the midpoint of both bounds normalized to Kč per month, or whichever
// bound is present. Returns false when the offer carries no wage at all.
func (o Offer) MonthlyWagePoint() (float64, bool) {
	switch {
	case o.WageFrom != nil && o.WageTo != nil:
		return (toMonthly(*o.WageFrom) + toMonthly(*o.WageTo)) / 2, true
	case o.WageFrom != nil:
		return toMonthly(*o.WageFrom), true
	case o.WageTo != nil:
		return toMonthly(*o.WageTo), true
	}
	return 0, false
}
