// Package canon normalizes street addresses into stable keys for geocode
// caching and saved-analysis identity.
package canon

import (
	"regexp"
	"strings"
)

var rePunct = regexp.MustCompile(`[^A-Za-z0-9\s]`)

// USPS-style suffix abbreviations, applied after uppercasing.
var suffixes = map[string]string{
	" STREET":    " ST",
	" ROAD":      " RD",
	" AVENUE":    " AVE",
	" BOULEVARD": " BLVD",
	" DRIVE":     " DR",
	" LANE":      " LN",
	" COURT":     " CT",
	" PLACE":     " PL",
	" TERRACE":   " TER",
	" HIGHWAY":   " HWY",
}

// Key builds a stable lowercase key from the address parts. Unit and suite
// designators are stripped so the key identifies the parcel.
func Key(address, city, state, zip string) string {
	line := strings.ToUpper(strings.TrimSpace(address))
	line = stripUnit(line)
	line = rePunct.ReplaceAllString(line, " ")
	for long, short := range suffixes {
		line = strings.ReplaceAll(line, long, short)
	}
	line = collapse(line)

	c := collapse(rePunct.ReplaceAllString(strings.ToUpper(strings.TrimSpace(city)), " "))
	st := strings.ToUpper(strings.TrimSpace(state))
	z := strings.TrimSpace(zip)
	if len(z) > 5 {
		z = z[:5]
	}
	return strings.ToLower(line + "|" + c + "|" + st + "|" + z)
}

func stripUnit(s string) string {
	padded := " " + s + " "
	for _, marker := range []string{" APT ", " UNIT ", " STE ", " SUITE ", " #"} {
		if i := strings.Index(padded, marker); i >= 0 {
			return strings.TrimSpace(padded[:i])
		}
	}
	return strings.TrimSpace(s)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
