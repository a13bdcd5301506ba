// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/tcms-go/internal/content"
	"github.com/olegiv/tcms-go/internal/middleware"
)

// uploadsMaxAge is the browser cache lifetime of uploaded files (one week).
const uploadsMaxAge = 7 * 24 * 60 * 60

// MsgContactSent is returned when the public contact form is submitted.
const MsgContactSent = "Your message has been sent successfully. We will get back to you soon."

// RouterConfig holds the settings of the HTTP surface.
type RouterConfig struct {
	Logger         *slog.Logger
	CORS           middleware.CORSConfig
	Security       middleware.SecurityHeadersConfig
	APIRate        float64 // requests per second per client IP, 0 = unlimited
	APIBurst       int
	RequestTimeout time.Duration
	UploadsDir     string // served under /uploads/ when set
}

// NewRouter builds the full HTTP handler: middleware stack, the /api
// routes and the static uploads.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders(cfg.Security))
	r.Use(middleware.CORS(cfg.CORS))

	r.NotFound(routeNotFound)
	r.MethodNotAllowed(routeNotFound)

	if cfg.UploadsDir != "" {
		files := http.StripPrefix(content.UploadsPrefix, http.FileServer(http.Dir(cfg.UploadsDir)))
		r.With(middleware.StaticCache(uploadsMaxAge)).Handle(content.UploadsPrefix+"*", noDirListing(files))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
		if cfg.APIRate > 0 {
			r.Use(middleware.NewRateLimiter(cfg.APIRate, cfg.APIBurst).Middleware())
		}
		r.Use(middleware.Language)

		requireAuth := middleware.RequireAuth(h.tokens)

		r.Get("/health", h.Health)
		r.Get("/health/ready", h.Ready)

		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.NoStore)
			r.With(h.login.Middleware()).Post("/login", h.Login)
			r.With(requireAuth).Get("/me", h.Me)
			r.With(requireAuth).Put("/password", h.ChangePassword)
		})

		r.Route("/news", func(r chi.Router) {
			mountCollection(r, h.Resource(content.News), requireAuth)
			r.Post("/{id}/like", h.LikeNews)
		})
		r.Route("/activities", func(r chi.Router) {
			mountCollection(r, h.Resource(content.Activities), requireAuth)
		})
		r.Route("/destinations", func(r chi.Router) {
			mountCollection(r, h.Resource(content.Destinations), requireAuth)
		})
		r.Route("/virtual-tours", func(r chi.Router) {
			mountCollection(r, h.Resource(content.VirtualTours), requireAuth)
		})

		r.Route("/hero", func(r chi.Router) {
			hero := h.Resource(content.HeroSlides)
			r.Get("/active", hero.ListWhere(map[string]any{"is_active": true}))
			mountCollection(r, hero, requireAuth)
		})

		r.Route("/unesco", func(r chi.Router) {
			r.Get("/", h.Unesco)
			mountSingleton(r, "/content", h.Resource(content.UnescoContent), requireAuth)
			r.Route("/sites", func(r chi.Router) {
				mountCollection(r, h.Resource(content.UnescoSites), requireAuth)
			})
		})

		r.Route("/about", func(r chi.Router) {
			r.Get("/", h.About)
			mountSingleton(r, "/content", h.Resource(content.AboutContent), requireAuth)
			r.Route("/missions", func(r chi.Router) {
				mountCollection(r, h.Resource(content.AboutMissions), requireAuth)
			})
			r.Route("/stats", func(r chi.Router) {
				mountCollection(r, h.Resource(content.AboutStats), requireAuth)
			})
			r.Route("/pillars", func(r chi.Router) {
				mountCollection(r, h.Resource(content.AboutPillars), requireAuth)
			})
			r.Route("/faqs", func(r chi.Router) {
				mountCollection(r, h.Resource(content.AboutFAQs), requireAuth)
			})
		})

		r.Route("/visit-algeria", func(r chi.Router) {
			mountSingleton(r, "/", h.Resource(content.VisitAlgeriaContent), requireAuth)
		})

		r.Route("/contact", func(r chi.Router) {
			contacts := h.Resource(content.Contacts)
			contacts.CreatedMessage = MsgContactSent
			contacts.ReceiptOnly = true
			r.Post("/", contacts.Create)
			r.Group(func(r chi.Router) {
				r.Use(requireAuth, middleware.NoStore)
				r.Get("/", contacts.List)
				r.Get("/{id}", contacts.Get)
				r.Delete("/{id}", contacts.Delete)
			})
		})

		r.Route("/upload", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", h.UploadImage)
			r.Post("/base64", h.UploadBase64)
		})

		r.Get("/translations", h.Languages)
		r.Get("/translations/{lang}", h.Translations)
	})

	return r
}

// mountCollection registers the CRUD routes of a list resource. Reads are
// public, writes require a token.
func mountCollection(r chi.Router, rs *Resource, requireAuth func(http.Handler) http.Handler) {
	r.Get("/", rs.List)
	r.Get("/{id}", rs.Get)
	r.With(requireAuth).Post("/", rs.Create)
	r.With(requireAuth).Put("/{id}", rs.Update)
	r.With(requireAuth).Delete("/{id}", rs.Delete)
}

// mountSingleton registers GET and PUT of a singleton resource.
func mountSingleton(r chi.Router, path string, rs *Resource, requireAuth func(http.Handler) http.Handler) {
	r.Get(path, rs.GetSingleton)
	r.With(requireAuth).Put(path, rs.UpdateSingleton)
}

func routeNotFound(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusNotFound, Response{
		Success: false,
		Message: "Route " + r.URL.RequestURI() + " not found",
	})
}

// noDirListing answers 404 for directory paths instead of listing them.
func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			routeNotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
