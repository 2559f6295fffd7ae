// Package router wires the HTTP routes and middleware of the service.
package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aanand-mishra/student-records/internal/http/handlers/student"
	"github.com/aanand-mishra/student-records/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// New builds the application router.
//
// Route table:
//
//	GET    /api/students        list all students
//	POST   /api/students        create a student
//	GET    /api/students/{id}   get one student
//	PUT    /api/students/{id}   update a student
//	DELETE /api/students/{id}   delete a student
//	GET    /health              liveness probe
//
// {id} must be a UUID; anything else falls through to 404.
func New(svc service.Students, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)

	idRoute := "/{id:" + student.IDPattern + "}"

	r.Route("/api/students", func(r chi.Router) {
		r.Get("/", student.GetList(svc))
		r.Post("/", student.New(svc))
		r.Get(idRoute, student.GetByID(svc))
		r.Put(idRoute, student.Update(svc))
		r.Delete(idRoute, student.Delete(svc))
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Error("failed to write health check response", slog.String("error", err.Error()))
		}
	})

	return r
}

// RequestLogger logs one line per request once it has been served.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Info("request served",
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}
