package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/zahid-01/Running-Tracker/internal/api"
	"github.com/zahid-01/Running-Tracker/internal/auth"
	"github.com/zahid-01/Running-Tracker/internal/config"
	httptransport "github.com/zahid-01/Running-Tracker/internal/transport/http"
)

// newRouter composes the API middleware stack. CORS sits outside auth so
// browser preflights are answered without a bearer token.
func newRouter(cfg config.Config, handler *api.Handler, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	var root http.Handler = mux
	if cfg.AuthEnabled {
		root = auth.NewMiddleware(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer}).Wrap(root)
	}
	root = httptransport.CORS(cfg.CORSOrigin, root)
	return httptransport.RequestLogger(logger.Named("http"), root)
}
