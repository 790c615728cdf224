// Package schedule exposes jobs and the computed schedule over REST.
package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kilianp07/promanage/core/model"
	"github.com/kilianp07/promanage/core/scheduler"
	"github.com/kilianp07/promanage/pkg/export"
)

// Service is the part of app.Service the API depends on.
type Service interface {
	ListJobs(ctx context.Context) ([]model.Job, error)
	AddJob(ctx context.Context, title string, deadline int, revenue float64) (model.Job, error)
	GenerateSchedule(ctx context.Context) (scheduler.Result, error)
	Labels() export.Labeler
}

// NewRouter builds the root router and mounts the v1 API under /api/v1.
// Requests must include an Authorization header with "Bearer <token>" when
// token is non-empty.
func NewRouter(svc Service, token string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(bearerAuth(token))
		h := handler{svc: svc}
		api.Get("/jobs", h.listJobs)
		api.Post("/jobs", h.addJob)
		api.Get("/jobs/{id}", h.getJob)
		api.Get("/schedule", h.getSchedule)
	})
	return r
}

func bearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type handler struct {
	svc Service
}

// AddJobRequest is the body of POST /jobs.
type AddJobRequest struct {
	Title    string  `json:"title"`
	Deadline int     `json:"deadline"`
	Revenue  float64 `json:"revenue"`
}

// listJobs handles GET /jobs
func (h handler) listJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.svc.ListJobs(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if jobs == nil {
		jobs = []model.Job{}
	}
	writeJSON(w, http.StatusOK, jobs)
}

// getJob handles GET /jobs/{id}
func (h handler) getJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	jobs, err := h.svc.ListJobs(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	for _, j := range jobs {
		if j.ID == id {
			writeJSON(w, http.StatusOK, j)
			return
		}
	}
	http.Error(w, fmt.Sprintf("job %q not found", id), http.StatusNotFound)
}

// addJob handles POST /jobs
func (h handler) addJob(w http.ResponseWriter, r *http.Request) {
	var req AddJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	job, err := h.svc.AddJob(r.Context(), req.Title, req.Deadline, req.Revenue)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", "/api/v1/jobs/"+job.ID)
	writeJSON(w, http.StatusCreated, job)
}

// getSchedule handles GET /schedule?format=json|csv|table
func (h handler) getSchedule(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "csv" && format != "table" {
		http.Error(w, fmt.Sprintf("unsupported format %q", format), http.StatusBadRequest)
		return
	}
	res, err := h.svc.GenerateSchedule(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	doc := export.NewDocument(res, h.svc.Labels(), time.Now().UTC())
	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		err = export.WriteCSV(w, doc)
	case "table":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		err = export.WriteTable(w, doc)
	default:
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		err = export.WriteJSON(w, doc)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, model.ErrInvalidJob) {
		status = http.StatusBadRequest
	}
	http.Error(w, err.Error(), status)
}
