package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zipmap/zip-api/internal/domain/friend"
	"github.com/zipmap/zip-api/internal/domain/location"
	"github.com/zipmap/zip-api/internal/domain/post"
	"github.com/zipmap/zip-api/internal/middleware"
	pkgresponse "github.com/zipmap/zip-api/internal/pkg/response"
)

type routerConfig struct {
	AllowedOrigins []string
	// UploadDir is served under /uploads when set (local storage driver only)
	UploadDir string
	Identity  func(http.Handler) http.Handler

	Friends   *friend.Handler
	Locations *location.Handler
	Posts     *post.Handler
}

func newRouter(rc routerConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.Metrics)
	r.Use(middleware.CORSHandler(rc.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"service": "zip-api",
		})
	})
	r.Handle("/metrics", promhttp.Handler())

	if rc.UploadDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(rc.UploadDir)))
		r.Handle("/uploads/*", fs)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimw.Compress(5))

		r.Mount("/friends", rc.Friends.Routes(rc.Identity))
		r.Mount("/friend-requests", rc.Friends.RequestRoutes(rc.Identity))
		r.Mount("/blocks", rc.Friends.BlockRoutes(rc.Identity))
		r.Mount("/places", rc.Locations.PlaceRoutes(rc.Identity))
		r.Mount("/locations", rc.Locations.Routes(rc.Identity))
		r.Mount("/posts", rc.Posts.Routes(rc.Identity))
		r.Mount("/categories", rc.Posts.CategoryRoutes())
	})

	return r
}
