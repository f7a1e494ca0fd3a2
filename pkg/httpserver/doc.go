// Package httpserver runs the two-factor HTTP API with graceful shutdown
// and exposes liveness and readiness checks.
//
// Run blocks until its context is cancelled or SIGINT/SIGTERM arrives, then
// drains in-flight requests within the shutdown timeout. Listener errors
// are joined with ErrStart and drain errors with ErrShutdown.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	r := chi.NewRouter()
//	r.Mount("/health", httpserver.HealthRoutes(log, cfg.CheckTimeout,
//	    httpserver.Check{Name: "redis", Ping: redis.Healthcheck(client)},
//	))
//	err := srv.Run(ctx, r)
package httpserver
