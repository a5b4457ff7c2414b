package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func wage(v float64) *float64 { return &v }

func Test_GeocodeQuery_IsIdenticalForSameAddressFields(t *testing.T) {

	a := Offer{Municipality: "Plzeň", RegionName: "Plzeňský kraj", Employer: "Firma A"}
	b := Offer{Municipality: "Plzeň", RegionName: "Plzeňský kraj", Employer: "Firma B"}

	assert.Equal(t, a.GeocodeQuery(), b.GeocodeQuery())
	assert.Equal(t, "Plzeň, Plzeňský kraj, Czechia", a.GeocodeQuery())
}

func Test_GeocodeQuery_FallbackChain(t *testing.T) {

	tests := []struct {
		name  string
		offer Offer
		want  string
	}{
		{
			name:  "address-looking locality with municipality and region",
			offer: Offer{Locality: "Náměstí 12, 301 00", Municipality: "Plzeň", RegionName: "Plzeňský kraj"},
			want:  "Náměstí 12, 301 00, Plzeň, Plzeňský kraj, Czechia",
		},
		{
			name:  "municipality plus region name from code",
			offer: Offer{Municipality: "Brno", RegionCode: "CZ064"},
			want:  "Brno, Jihomoravský kraj, Czechia",
		},
		{
			name:  "district plus region",
			offer: Offer{District: "Tachov", RegionName: "Plzeňský kraj"},
			want:  "Tachov, Plzeňský kraj, Czechia",
		},
		{
			name:  "plain locality without digits",
			offer: Offer{Locality: "Stráž pod Ralskem"},
			want:  "Stráž pod Ralskem, Czechia",
		},
		{
			name:  "district only",
			offer: Offer{District: "Domažlice"},
			want:  "Domažlice, Czechia",
		},
		{
			name:  "region alone",
			offer: Offer{RegionCode: "CZ032"},
			want:  "Plzeňský kraj, Czechia",
		},
		{
			name:  "nothing usable",
			offer: Offer{Profession: "kuchař"},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.offer.GeocodeQuery())
		})
	}
}

func Test_Key_PrefersDistrictOverLocality(t *testing.T) {

	o := Offer{CzIsco: "5120", Employer: "Hotel U Lípy", District: "Tachov", Locality: "Bor 123", Date: "2026-08-01"}
	assert.Equal(t, "5120|Hotel U Lípy|Tachov|2026-08-01", o.Key())

	o.District = ""
	assert.Equal(t, "5120|Hotel U Lípy|Bor 123|2026-08-01", o.Key())
}

func Test_MonthlyWagePoint_NormalizesHourlyRates(t *testing.T) {

	hourly := Offer{WageFrom: wage(150)}
	monthly, ok := hourly.MonthlyWagePoint()
	assert.True(t, ok)
	assert.True(t, hourly.WageIsHourly())
	assert.InDelta(t, 26000, monthly, 50)

	ranged := Offer{WageFrom: wage(30000), WageTo: wage(40000)}
	monthly, ok = ranged.MonthlyWagePoint()
	assert.True(t, ok)
	assert.False(t, ranged.WageIsHourly())
	assert.Equal(t, 35000.0, monthly)

	_, ok = Offer{}.MonthlyWagePoint()
	assert.False(t, ok)
}

func Test_DistanceKm_PlzenToBrno(t *testing.T) {

	plzen := Coordinate{Lat: 49.7384, Lon: 13.3736}
	brno := Coordinate{Lat: 49.1951, Lon: 16.6068}

	km := plzen.DistanceKm(brno)
	assert.InDelta(t, 241, km, 5)
	assert.InDelta(t, km, brno.DistanceKm(plzen), 0.001)
	assert.Zero(t, plzen.DistanceKm(plzen))
}
