// Package mls adapts the Cape May County MLS (Paragon RETS) to the property
// service boundary: provider field names, DMQL2 query construction, row
// mapping and the RETS-backed Service.
package mls

import (
	"sort"
	"strings"

	"github.com/yourorg/comps-api/internal/property"
)

// Cape May MLS system field names (StandardNames=0).
const (
	fieldListingID    = "L_ListingID"
	fieldAddress      = "L_Address"
	fieldCity         = "L_City"
	fieldZip          = "L_Zip"
	fieldBedrooms     = "L_Keyword1"
	fieldBathsFull    = "L_Keyword2"
	fieldBathsTotal   = "LM_Dec_13"
	fieldSqft         = "L_SquareFeet"
	fieldYearBuilt    = "LM_Char10_1"
	fieldType         = "L_Type_"
	fieldAskingPrice  = "L_AskingPrice"
	fieldSoldPrice    = "L_SoldPrice"
	fieldStatusDate   = "L_StatusDate"
	fieldStatusCat    = "L_StatusCatID"
	fieldStatus       = "L_Status"
	fieldLat          = "LMD_MP_Latitude"
	fieldLng          = "LMD_MP_Longitude"
	fieldPictureCount = "L_PictureCount"
)

// L_StatusCatID lookup values.
const (
	statusActive = "1"
	statusSold   = "2"
)

// Property classes searched on this MLS.
const (
	classResidential = "RE_1"
	classCondo       = "CT_5"
)

var selectFields = []string{
	fieldListingID, fieldAddress, fieldCity, fieldZip,
	fieldBedrooms, fieldBathsFull, fieldBathsTotal, fieldSqft,
	fieldYearBuilt, fieldType, fieldAskingPrice, fieldSoldPrice,
	fieldStatusDate, fieldStatusCat, fieldStatus,
	fieldLat, fieldLng, fieldPictureCount,
}

// City lookup codes for the Cape May County municipalities this MLS covers.
var cityLookup = map[string]string{
	"Sea Isle City":         "SeaIsleC",
	"Avalon":                "Avalon",
	"Stone Harbor":          "StoneHar",
	"Cape May":              "CapeMay",
	"Cape May Court House":  "CMCrtHse",
	"Cape May Point":        "CapeMyPt",
	"Wildwood":              "Wildwood",
	"Wildwood Crest":        "WildwCrs",
	"North Wildwood":        "NWildwood",
	"Ocean City":            "OceanCty",
	"Upper Township":        "UpperTwp",
	"Middle Township":       "MiddleTp",
	"Lower Township":        "LowerTwp",
	"Dennis Township":       "DennisTp",
	"Woodbine":              "Woodbine",
	"West Cape May":         "WCapeMay",
	"West Wildwood":         "WWldwood",
}

// City-center fallback coordinates, keyed by the decoded city name
// (COMPACT-DECODED returns full names, not lookup codes).
var cityCoords = map[string]property.Coordinates{
	"Sea Isle City":        {Lat: 39.1534, Lng: -74.6929},
	"Avalon":               {Lat: 39.1012, Lng: -74.7177},
	"Stone Harbor":         {Lat: 39.0526, Lng: -74.7608},
	"Cape May":             {Lat: 38.9351, Lng: -74.9060},
	"Cape May Court House": {Lat: 39.0826, Lng: -74.8238},
	"Cape May Point":       {Lat: 38.9376, Lng: -74.9658},
	"Wildwood":             {Lat: 38.9918, Lng: -74.8148},
	"Wildwood Crest":       {Lat: 38.9748, Lng: -74.8238},
	"North Wildwood":       {Lat: 39.0026, Lng: -74.7988},
	"Ocean City":           {Lat: 39.2776, Lng: -74.5746},
	"Upper Township":       {Lat: 39.2048, Lng: -74.7238},
	"Middle Township":      {Lat: 39.0426, Lng: -74.8438},
	"Lower Township":       {Lat: 38.9626, Lng: -74.8838},
	"Dennis Township":      {Lat: 39.1926, Lng: -74.8238},
	"Woodbine":             {Lat: 39.2416, Lng: -74.8128},
	"West Cape May":        {Lat: 38.9398, Lng: -74.9380},
	"West Wildwood":        {Lat: 38.9928, Lng: -74.8268},
}

// LookupCity resolves a city name to its MLS lookup code, case-insensitively.
func LookupCity(city string) (string, bool) {
	if code, ok := cityLookup[city]; ok {
		return code, true
	}
	lower := strings.ToLower(strings.TrimSpace(city))
	for name, code := range cityLookup {
		if strings.ToLower(name) == lower {
			return code, true
		}
	}
	return "", false
}

// allCityCodes returns every known lookup code in a stable order, used by the
// broadening fallback when the subject city is unknown.
func allCityCodes() []string {
	codes := make([]string, 0, len(cityLookup))
	for _, code := range cityLookup {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
