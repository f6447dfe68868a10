// Package server implements the HTTP JSON API. Every handler resolves the
// authenticated account from the request context, consults the policy for a
// scope, and attaches that scope to its store queries.
package server

import (
	"net/http"

	"github.com/wolfeidau/medmatch/internal/blob"
	"github.com/wolfeidau/medmatch/internal/store"
)

// Server holds the stores and blob storage behind the API handlers.
type Server struct {
	accounts     store.AccountStore
	profiles     store.ProfileStore
	clinics      store.ClinicStore
	positions    store.PositionStore
	applications store.ApplicationStore
	documents    store.DocumentStore
	blobs        blob.Store
}

// Config carries the dependencies for a Server.
type Config struct {
	Accounts     store.AccountStore
	Profiles     store.ProfileStore
	Clinics      store.ClinicStore
	Positions    store.PositionStore
	Applications store.ApplicationStore
	Documents    store.DocumentStore
	Blobs        blob.Store
}

// New creates a Server over the given stores.
func New(cfg Config) *Server {
	return &Server{
		accounts:     cfg.Accounts,
		profiles:     cfg.Profiles,
		clinics:      cfg.Clinics,
		positions:    cfg.Positions,
		applications: cfg.Applications,
		documents:    cfg.Documents,
		blobs:        cfg.Blobs,
	}
}

// Routes returns the API route table. Callers wrap it with the
// authentication middleware; every handler assumes an account is present on
// the context.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/account", s.getAccount)
	mux.HandleFunc("POST /api/account/role", s.setAccountRole)

	mux.HandleFunc("GET /api/profile", s.getProfile)
	mux.HandleFunc("PUT /api/profile", s.putProfile)

	mux.HandleFunc("GET /api/positions", s.listPositions)
	mux.HandleFunc("POST /api/positions", s.createPosition)
	mux.HandleFunc("GET /api/positions/{id}", s.getPosition)
	mux.HandleFunc("PUT /api/positions/{id}", s.updatePosition)
	mux.HandleFunc("DELETE /api/positions/{id}", s.deletePosition)

	mux.HandleFunc("GET /api/clinic", s.getClinic)
	mux.HandleFunc("PUT /api/clinic", s.updateClinic)
	mux.HandleFunc("GET /api/clinic/positions", s.listClinicPositions)
	mux.HandleFunc("GET /api/clinic/applications", s.listClinicApplications)

	mux.HandleFunc("GET /api/applications", s.listApplications)
	mux.HandleFunc("POST /api/applications", s.createApplication)
	mux.HandleFunc("PUT /api/applications/{id}", s.updateApplication)
	mux.HandleFunc("DELETE /api/applications/{id}", s.withdrawApplication)
	mux.HandleFunc("PUT /api/applications/{id}/status", s.reviewApplication)

	mux.HandleFunc("GET /api/documents", s.listDocuments)
	mux.HandleFunc("POST /api/documents", s.uploadDocument)
	mux.HandleFunc("GET /api/documents/{id}", s.downloadDocument)
	mux.HandleFunc("DELETE /api/documents/{id}", s.deleteDocument)

	mux.HandleFunc("GET /api/admin/users", s.listUsers)
	mux.HandleFunc("PUT /api/admin/users/{id}/role", s.setUserRole)
	mux.HandleFunc("POST /api/admin/users/{id}/promote", s.promoteUser)
	mux.HandleFunc("DELETE /api/admin/users/{id}", s.deleteUser)

	return mux
}
