package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/yourorg/comps-api/internal/property"
	"github.com/yourorg/comps-api/rets"
)

type fakeService struct {
	searchComps func(property.SubjectProperty, property.SearchMode) ([]property.CompResult, error)
	getProperty func(string) (*property.Property, error)
	getPhotos   func(string) ([]string, error)
	geocode     func(string, string) (*property.Coordinates, error)
}

func (f *fakeService) SearchComps(_ context.Context, s property.SubjectProperty, m property.SearchMode) ([]property.CompResult, error) {
	return f.searchComps(s, m)
}

func (f *fakeService) GetProperty(_ context.Context, id string) (*property.Property, error) {
	return f.getProperty(id)
}

func (f *fakeService) GetPropertyPhotos(_ context.Context, id string) ([]string, error) {
	return f.getPhotos(id)
}

func (f *fakeService) GeocodeAddress(_ context.Context, address, city, _, _ string) (*property.Coordinates, error) {
	return f.geocode(address, city)
}

func compResult(id string, score int) property.CompResult {
	return property.CompResult{
		Property:        property.Property{ID: id, City: "Avalon", SalePrice: 800000, Sqft: 1600},
		SimilarityScore: score,
		PricePerSqft:    500,
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v\n%s", err, rec.Body.String())
	}
	return body
}

func compsRouter(svc property.Service) chi.Router {
	r := chi.NewRouter()
	RegisterComps(r, CompsDeps{Service: svc})
	return r
}

func TestCompsSearchPost(t *testing.T) {
	svc := &fakeService{
		searchComps: func(s property.SubjectProperty, m property.SearchMode) ([]property.CompResult, error) {
			if s.City != "Avalon" || m != property.ModeSold {
				t.Errorf("unexpected search: city=%q mode=%q", s.City, m)
			}
			return []property.CompResult{compResult("1001", 95), compResult("1002", 80)}, nil
		},
	}

	body := `{"subject":{"city":"Avalon","bedrooms":3,"bathrooms":2,"sqft":1800}}`
	rec := httptest.NewRecorder()
	compsRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/comps/search", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody(t, rec)
	if resp["ok"] != true || resp["source"] != "live" || resp["count"] != float64(2) {
		t.Errorf("response = %v", resp)
	}
}

func TestCompsSearchActiveMode(t *testing.T) {
	var gotMode property.SearchMode
	svc := &fakeService{
		searchComps: func(_ property.SubjectProperty, m property.SearchMode) ([]property.CompResult, error) {
			gotMode = m
			return nil, nil
		},
	}

	body := `{"subject":{"city":"Avalon"},"mode":"active"}`
	rec := httptest.NewRecorder()
	compsRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/comps/search", strings.NewReader(body)))

	if rec.Code != http.StatusOK || gotMode != property.ModeActive {
		t.Errorf("status = %d, mode = %q", rec.Code, gotMode)
	}
}

func TestCompsSearchRequiresSubjectCity(t *testing.T) {
	rec := httptest.NewRecorder()
	compsRouter(&fakeService{}).ServeHTTP(rec,
		httptest.NewRequest(http.MethodPost, "/comps/search", strings.NewReader(`{"subject":{"bedrooms":3}}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp := decodeBody(t, rec); resp["error"] != "subject_required" {
		t.Errorf("error = %v", resp["error"])
	}
}

func TestCompsSearchRejectsBadJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	compsRouter(&fakeService{}).ServeHTTP(rec,
		httptest.NewRequest(http.MethodPost, "/comps/search", strings.NewReader(`{nope`)))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestCompsSearchMapsReplyErrorToBadGateway(t *testing.T) {
	svc := &fakeService{
		searchComps: func(property.SubjectProperty, property.SearchMode) ([]property.CompResult, error) {
			return nil, &rets.ReplyError{Step: "search", Code: 20206, Text: "Invalid Query Syntax"}
		},
	}

	rec := httptest.NewRecorder()
	compsRouter(svc).ServeHTTP(rec,
		httptest.NewRequest(http.MethodPost, "/comps/search", strings.NewReader(`{"subject":{"city":"Avalon"}}`)))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeBody(t, rec)
	if resp["error"] != "mls_error" || resp["reply_code"] != float64(20206) {
		t.Errorf("response = %v", resp)
	}
}

func TestCompsSearchGetQueryParams(t *testing.T) {
	var got property.SubjectProperty
	svc := &fakeService{
		searchComps: func(s property.SubjectProperty, _ property.SearchMode) ([]property.CompResult, error) {
			got = s
			return nil, nil
		},
	}

	rec := httptest.NewRecorder()
	compsRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/comps/search?city=Avalon&bedrooms=3&bathrooms=2.5&sqft=1800&lat=39.1&lng=-74.7", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got.City != "Avalon" || got.Bedrooms != 3 || got.Bathrooms != 2.5 || got.Sqft != 1800 || got.Lat != 39.1 {
		t.Errorf("parsed subject = %+v", got)
	}
}

func TestCompsCacheKeyBucketsByGeohashCell(t *testing.T) {
	a := property.SubjectProperty{City: "Avalon", Bedrooms: 3, Bathrooms: 2, Sqft: 1800, Lat: 39.10120, Lng: -74.71770}
	b := a
	b.Lat += 0.0001 // same precision-6 cell

	if compsCacheKey(a, property.ModeSold) != compsCacheKey(b, property.ModeSold) {
		t.Error("nearby subjects should share a cache key")
	}
	if compsCacheKey(a, property.ModeSold) == compsCacheKey(a, property.ModeActive) {
		t.Error("modes should not share a cache key")
	}

	noGeo := a
	noGeo.Lat, noGeo.Lng = 0, 0
	if !strings.HasSuffix(compsCacheKey(noGeo, property.ModeSold), ":nogeo") {
		t.Errorf("key = %s", compsCacheKey(noGeo, property.ModeSold))
	}
}

type fakePhotos struct {
	obj *rets.Object
	err error
}

func (f *fakePhotos) GetPhoto(context.Context, string, int) (*rets.Object, error) {
	return f.obj, f.err
}

func TestPhotoProxy(t *testing.T) {
	data := bytes.Repeat([]byte{0xff}, 512)
	r := chi.NewRouter()
	RegisterPhotos(r, PhotosDeps{Photos: &fakePhotos{obj: &rets.Object{Data: data, ContentType: "image/jpeg"}}})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/photos/1001?idx=2", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("content-type = %q", ct)
	}
	if cc := rec.Header().Get("Cache-Control"); !strings.Contains(cc, "max-age=86400") {
		t.Errorf("cache-control = %q", cc)
	}
	if !bytes.Equal(rec.Body.Bytes(), data) {
		t.Error("body mismatch")
	}
}

func TestPhotoProxyMissingPhotoIs404(t *testing.T) {
	r := chi.NewRouter()
	RegisterPhotos(r, PhotosDeps{Photos: &fakePhotos{}})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/photos/1001", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestPhotoProxyUpstreamFailureIs502(t *testing.T) {
	r := chi.NewRouter()
	RegisterPhotos(r, PhotosDeps{Photos: &fakePhotos{err: errors.New("mls down")}})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/photos/1001", nil))
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestPhotoProxyUnconfiguredIs503(t *testing.T) {
	r := chi.NewRouter()
	RegisterPhotos(r, PhotosDeps{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/photos/1001", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestGetProperty(t *testing.T) {
	svc := &fakeService{
		getProperty: func(id string) (*property.Property, error) {
			if id == "1001" {
				return &property.Property{ID: "1001", City: "Avalon"}, nil
			}
			return nil, nil
		},
	}
	r := chi.NewRouter()
	RegisterProperties(r, PropertiesDeps{Service: svc})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/properties/1001", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/properties/9999", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("miss status = %d", rec.Code)
	}
}

func TestGetPropertyPhotosAlwaysReturnsArray(t *testing.T) {
	svc := &fakeService{
		getPhotos: func(string) ([]string, error) { return nil, nil },
	}
	r := chi.NewRouter()
	RegisterProperties(r, PropertiesDeps{Service: svc})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/properties/1001/photos", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeBody(t, rec)
	if _, ok := resp["photos"].([]any); !ok {
		t.Errorf("photos not an array: %v", resp["photos"])
	}
}

func TestGeocode(t *testing.T) {
	svc := &fakeService{
		geocode: func(address, city string) (*property.Coordinates, error) {
			return &property.Coordinates{Lat: 39.1, Lng: -74.7}, nil
		},
	}
	r := chi.NewRouter()
	RegisterProperties(r, PropertiesDeps{Service: svc})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/geocode",
		strings.NewReader(`{"address":"1 Dune Dr","city":"Avalon","state":"NJ","zip":"08202"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/geocode", strings.NewReader(`{"city":"Avalon"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing address status = %d", rec.Code)
	}
}

func TestListingsUnavailableWithoutBackend(t *testing.T) {
	r := chi.NewRouter()
	RegisterListings(r, ListingsDeps{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/listings", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d", rec.Code)
	}
}

type fakeLister struct{ listings []property.Property }

func (f *fakeLister) GetAllActive(context.Context) ([]property.Property, error) {
	return f.listings, nil
}

func TestListings(t *testing.T) {
	r := chi.NewRouter()
	RegisterListings(r, ListingsDeps{Listings: &fakeLister{listings: []property.Property{{ID: "1001"}}}})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/listings", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp := decodeBody(t, rec); resp["count"] != float64(1) {
		t.Errorf("response = %v", resp)
	}
}

func TestAnalysesUnavailableWithoutStore(t *testing.T) {
	r := chi.NewRouter()
	RegisterAnalyses(r, AnalysesDeps{})

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/analyses", nil),
		httptest.NewRequest(http.MethodPost, "/analyses", strings.NewReader(`{}`)),
	} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s %s status = %d", req.Method, req.URL.Path, rec.Code)
		}
	}
}
