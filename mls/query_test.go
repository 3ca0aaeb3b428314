package mls

import (
	"strings"
	"testing"
	"time"

	"github.com/yourorg/comps-api/internal/property"
)

func TestBuildSoldQuery(t *testing.T) {
	subject := property.SubjectProperty{
		City:      "Avalon",
		Bedrooms:  3,
		Bathrooms: 2,
		Sqft:      2000,
	}
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	q := BuildSoldQuery(subject, now)

	for _, want := range []string{
		"(L_City=|Avalon)",
		"(L_StatusCatID=|2)",
		"(L_Keyword1=2-4)",
		"(L_Keyword2=1-3)",
		"(L_SquareFeet=1500-2500)",
		"(L_StatusDate=2026-06-01+)",
	} {
		if !strings.Contains(q, want) {
			t.Errorf("sold query missing %q: %s", want, q)
		}
	}
}

func TestBuildSoldQueryFloorsRangesAtOne(t *testing.T) {
	subject := property.SubjectProperty{City: "Avalon", Bedrooms: 1, Bathrooms: 1}
	q := BuildSoldQuery(subject, time.Now())

	if !strings.Contains(q, "(L_Keyword1=1-2)") {
		t.Errorf("beds range not floored: %s", q)
	}
	if !strings.Contains(q, "(L_Keyword2=1-2)") {
		t.Errorf("baths range not floored: %s", q)
	}
}

func TestBuildSoldQuerySkipsSqftWhenUnknown(t *testing.T) {
	subject := property.SubjectProperty{City: "Avalon", Bedrooms: 3, Bathrooms: 2}
	q := BuildSoldQuery(subject, time.Now())

	if strings.Contains(q, fieldSqft) {
		t.Errorf("sqft condition emitted for zero sqft: %s", q)
	}
}

func TestBuildActiveQuery(t *testing.T) {
	subject := property.SubjectProperty{
		City:      "Stone Harbor",
		Bedrooms:  4,
		Bathrooms: 3,
		Sqft:      2000,
	}

	q := BuildActiveQuery(subject)

	for _, want := range []string{
		"(L_City=|StoneHar)",
		"(L_StatusCatID=|1)",
		"(L_Keyword1=2-6)",
		"(L_Keyword2=1-5)",
		"(L_SquareFeet=1000-3000)",
	} {
		if !strings.Contains(q, want) {
			t.Errorf("active query missing %q: %s", want, q)
		}
	}
	if strings.Contains(q, fieldStatusDate) {
		t.Errorf("active query should not carry a date bound: %s", q)
	}
}

func TestBuildActiveQuerySkipsUnknownDimensions(t *testing.T) {
	subject := property.SubjectProperty{City: "Avalon"}
	q := BuildActiveQuery(subject)

	for _, field := range []string{fieldBedrooms, fieldBathsFull, fieldSqft} {
		if strings.Contains(q, field) {
			t.Errorf("condition emitted for zero-valued %s: %s", field, q)
		}
	}
}

func TestCityConditionUnknownCityBroadensToAll(t *testing.T) {
	cond := cityCondition("Atlantis")

	if !strings.HasPrefix(cond, "(L_City=|") {
		t.Fatalf("unexpected condition shape: %s", cond)
	}
	for _, code := range allCityCodes() {
		if !strings.Contains(cond, "|"+code) {
			t.Errorf("fallback condition missing city code %s: %s", code, cond)
		}
	}
}

func TestLookupCityCaseInsensitive(t *testing.T) {
	for _, name := range []string{"Sea Isle City", "sea isle city", "SEA ISLE CITY", " Sea Isle City "} {
		code, ok := LookupCity(name)
		if !ok || code != "SeaIsleC" {
			t.Errorf("LookupCity(%q) = %q, %v", name, code, ok)
		}
	}
	if _, ok := LookupCity("Springfield"); ok {
		t.Error("unknown city resolved")
	}
}

func TestQueryByListingID(t *testing.T) {
	if got := QueryByListingID("1001"); got != "(L_ListingID=1001)" {
		t.Errorf("QueryByListingID = %q", got)
	}
}

func TestLookupConditionMultiValue(t *testing.T) {
	if got := lookupCondition(fieldCity, "Avalon", "StoneHar"); got != "(L_City=|Avalon,|StoneHar)" {
		t.Errorf("lookupCondition = %q", got)
	}
}
