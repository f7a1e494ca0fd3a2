package clientip

import (
	"context"
	"log/slog"
	"net/http"
)

type ctxKey struct{}

func WithIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKey{}, ip)
}

// FromContext returns the address stored by Middleware.
func FromContext(ctx context.Context) string {
	ip, _ := ctx.Value(ctxKey{}).(string)
	return ip
}

// Middleware resolves the client address once per request and stores it in
// the request context.
func (res *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithIP(r.Context(), res.IP(r))))
	})
}

// KeyFunc returns the stored address as a rate limit key, resolving it
// when Middleware did not run.
func (res *Resolver) KeyFunc() func(*http.Request) string {
	return func(r *http.Request) string {
		ip := FromContext(r.Context())
		if ip == "" {
			ip = res.IP(r)
		}
		if ip == "" {
			return ""
		}
		return "ip:" + ip
	}
}

// LogExtractor adds client_ip to log records; pass it to
// logger.WithContextExtractors.
func LogExtractor(ctx context.Context) (slog.Attr, bool) {
	if ip := FromContext(ctx); ip != "" {
		return slog.String("client_ip", ip), true
	}
	return slog.Attr{}, false
}
