package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/zipmap/zip-api/internal/domain/friend"
	"github.com/zipmap/zip-api/internal/domain/location"
	"github.com/zipmap/zip-api/internal/domain/post"
	"github.com/zipmap/zip-api/internal/middleware"
	"github.com/zipmap/zip-api/internal/pkg/jwt"
)

func testRouter(t *testing.T, uploadDir string) chi.Router {
	t.Helper()
	return newRouter(routerConfig{
		AllowedOrigins: []string{"http://localhost:3000"},
		UploadDir:      uploadDir,
		Identity:       middleware.Identity(jwt.NewService("test-secret")),
		Friends:        friend.NewHandler(nil),
		Locations:      location.NewHandler(nil),
		Posts:          post.NewHandler(nil),
	})
}

func TestHealth(t *testing.T) {
	root := testRouter(t, "")

	rr := httptest.NewRecorder()
	root.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	root := testRouter(t, "")

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/friends"},
		{http.MethodPost, "/api/v1/friend-requests"},
		{http.MethodDelete, "/api/v1/friends/requests"},
		{http.MethodGet, "/api/v1/blocks"},
		{http.MethodGet, "/api/v1/places/search?q=cafe"},
		{http.MethodGet, "/api/v1/locations"},
		{http.MethodGet, "/api/v1/posts"},
		{http.MethodPost, "/api/v1/posts/1/like"},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			root.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.path, nil))
			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("expected status 401, got %d", rr.Code)
			}
		})
	}
}

func TestUploadsServedOnlyWithLocalDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "posts"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "posts", "a.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("local", func(t *testing.T) {
		rr := httptest.NewRecorder()
		testRouter(t, dir).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/uploads/posts/a.txt", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rr.Code)
		}
		if rr.Body.String() != "hello" {
			t.Fatalf("unexpected body %q", rr.Body.String())
		}
	})

	t.Run("remote storage", func(t *testing.T) {
		rr := httptest.NewRecorder()
		testRouter(t, "").ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/uploads/posts/a.txt", nil))
		if rr.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rr.Code)
		}
	})
}
