package countries

const (
	// Placeholder stands in for any display field whose source data is missing.
	Placeholder = "N/A"
	// NoBorders is shown for countries without land borders. It is a real
	// value, distinct from missing data.
	NoBorders = "No land borders"
)

// DisplayRecord is the flat, display-ready view of one country. Every string
// field is either a non-empty value or Placeholder; Flag and CoatOfArms are
// nil when no image is available.
type DisplayRecord struct {
	Name           string  `json:"name"`
	OfficialName   string  `json:"officialName"`
	Capital        string  `json:"capital"`
	Region         string  `json:"region"`
	Subregion      string  `json:"subregion"`
	Area           string  `json:"area"`
	Population     string  `json:"population"`
	Languages      string  `json:"languages"`
	Currencies     string  `json:"currencies"`
	Timezones      string  `json:"timezones"`
	Borders        string  `json:"borders"`
	LatLng         string  `json:"latlng"`
	NativeName     string  `json:"nativeName"`
	TopLevelDomain string  `json:"topLevelDomain"`
	Alpha3Code     string  `json:"alpha3Code"`
	CallingCodes   string  `json:"callingCodes"`
	Flag           *string `json:"flag"`
	CoatOfArms     *string `json:"coatOfArms"`
}
