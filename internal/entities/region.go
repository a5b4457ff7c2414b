package entities

type Region struct {
	Code string `json:"code"` // NUTS3, e.g. CZ032
	Name string `json:"name"`
}

// Regions lists the 14 Czech kraje in feed order.
var Regions = []Region{
	{Code: "CZ010", Name: "Hlavní město Praha"},
	{Code: "CZ020", Name: "Středočeský kraj"},
	{Code: "CZ031", Name: "Jihočeský kraj"},
	{Code: "CZ032", Name: "Plzeňský kraj"},
	{Code: "CZ041", Name: "Karlovarský kraj"},
	{Code: "CZ042", Name: "Ústecký kraj"},
	{Code: "CZ051", Name: "Liberecký kraj"},
	{Code: "CZ052", Name: "Královéhradecký kraj"},
	{Code: "CZ053", Name: "Pardubický kraj"},
	{Code: "CZ063", Name: "Kraj Vysočina"},
	{Code: "CZ064", Name: "Jihomoravský kraj"},
	{Code: "CZ071", Name: "Olomoucký kraj"},
	{Code: "CZ072", Name: "Zlínský kraj"},
	{Code: "CZ080", Name: "Moravskoslezský kraj"},
}

var regionNameByCode = func() map[string]string {
	m := make(map[string]string, len(Regions))
	for _, r := range Regions {
		m[r.Code] = r.Name
	}
	return m
}()

// RegionNameByCode returns the kraj name for a NUTS3 code, or "" when unknown.
func RegionNameByCode(code string) string {
	return regionNameByCode[code]
}
