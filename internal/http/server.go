// Package http exposes the services to the local UI as a JSON API.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"trosak/internal/services"
)

type Server struct {
	http.Server

	categories   *services.CategoryService
	transactions *services.TransactionService
	settings     *services.SettingsService
	backup       *services.BackupService
}

func NewServer(addr string,
	categories *services.CategoryService,
	transactions *services.TransactionService,
	settings *services.SettingsService,
	backup *services.BackupService,
) *Server {
	s := &Server{
		categories:   categories,
		transactions: transactions,
		settings:     settings,
		backup:       backup,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Route("/api", func(api chi.Router) {
		api.Get("/categories", s.listCategories)
		api.Post("/categories", s.createCategory)
		api.Get("/categories/{id}", s.getCategory)
		api.Patch("/categories/{id}", s.updateCategory)
		api.Delete("/categories/{id}", s.deleteCategory)
		api.Get("/categories/{id}/transactions", s.listTransactions)

		api.Post("/transactions", s.createTransaction)
		api.Delete("/transactions/{id}", s.deleteTransaction)

		api.Get("/settings/rates", s.getRates)
		api.Put("/settings/rates", s.putRates)

		api.Get("/backup", s.exportBackup)
		api.Post("/backup", s.importBackup)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	s.Addr = addr
	s.Handler = r
	return s
}
