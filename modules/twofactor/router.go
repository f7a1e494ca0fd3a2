package twofactor

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handle returns the module routes:
//
//	POST /begin               {"account"}
//	POST /continue            {"attempt_id", "token"}
//	POST /recover             {"account"}
//	GET  /qr/{attempt_id}     provisioning QR code as PNG
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()
	r.Post("/begin", s.begin)
	r.Post("/continue", s.continueAttempt)
	r.Post("/recover", s.recover)
	r.Get("/qr/{attempt_id}", s.qr)
	return r
}
