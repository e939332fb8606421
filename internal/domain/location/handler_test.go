package location

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/zipmap/zip-api/internal/pkg/kakao"
)

func passThrough(next http.Handler) http.Handler { return next }

func newTestRouter(searcher Searcher) http.Handler {
	h := NewHandler(NewService(&memoryRepo{}, searcher, nil))
	r := chi.NewRouter()
	r.Mount("/places", h.PlaceRoutes(passThrough))
	r.Mount("/locations", h.Routes(passThrough))
	return r
}

func TestHandlerSearchStatuses(t *testing.T) {
	tests := []struct {
		name     string
		searcher Searcher
		path     string
		want     int
	}{
		{name: "ok", searcher: &fakeSearcher{hits: []kakao.Place{{Name: "p"}}}, path: "/places/search?q=p", want: http.StatusOK},
		{name: "missing query", searcher: &fakeSearcher{}, path: "/places/search", want: http.StatusBadRequest},
		{name: "no results", searcher: &fakeSearcher{hits: []kakao.Place{}}, path: "/places/search?q=p", want: http.StatusNotFound},
		{name: "upstream down", searcher: &fakeSearcher{err: &kakao.StatusError{StatusCode: 503}}, path: "/places/search?q=p", want: http.StatusBadGateway},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			newTestRouter(tc.searcher).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tc.path, nil))
			if rr.Code != tc.want {
				t.Fatalf("expected %d, got %d, body=%s", tc.want, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestHandlerResolveValidation(t *testing.T) {
	router := newTestRouter(&fakeSearcher{})

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "valid", body: `{"name":"p","address":"a","latitude":35.8,"longitude":128.7}`, want: http.StatusOK},
		{name: "zero coordinates", body: `{"name":"q","address":"a","latitude":0,"longitude":0}`, want: http.StatusOK},
		{name: "missing latitude", body: `{"name":"p","address":"a","longitude":128.7}`, want: http.StatusUnprocessableEntity},
		{name: "bad latitude", body: `{"name":"p","address":"a","latitude":135,"longitude":128.7}`, want: http.StatusUnprocessableEntity},
		{name: "blank name", body: `{"name":" ","address":"a","latitude":1,"longitude":1}`, want: http.StatusUnprocessableEntity},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/locations", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			if rr.Code != tc.want {
				t.Fatalf("expected %d, got %d, body=%s", tc.want, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestHandlerGetByID(t *testing.T) {
	router := newTestRouter(&fakeSearcher{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/locations/abc", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/locations/7", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}
