package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/DoyleJ11/kalitiri-backend/internal/auth"
	"github.com/DoyleJ11/kalitiri-backend/internal/hub"
	"github.com/DoyleJ11/kalitiri-backend/internal/ws"
)

type Deps struct {
	Hub       *hub.Hub
	Verifier  *auth.Verifier
	Log       *zap.Logger
	WSOrigins []string
}

func SetupRoutes(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(d.Log))

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", CreateSession(d.Hub, d.Log))
		r.Get("/{id}/view", SessionView(d.Hub, d.Verifier))
		r.Post("/{id}/checkpoint", CheckpointSession(d.Hub))
		r.Delete("/{id}", DeleteSession(d.Hub))
	})

	// Public routes
	r.Get("/healthz", Healthz)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", ws.Handler(d.Hub, d.Verifier, d.Log, d.WSOrigins))
	return r
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("took", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
