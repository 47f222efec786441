package middleware

import (
	"net"
	"net/http"

	"github.com/mssola/useragent"

	"sellerflow/pkg/requestcontext"
)

// Device parses the User-Agent header into a normalized "browser/os" string
// and records it with the client IP for audit events.
func Device(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		rawUA := r.Header.Get("User-Agent")
		if rawUA != "" {
			ua := useragent.New(rawUA)
			name, version := ua.Browser()
			device := name + " " + version + "/" + ua.OS()
			ctx = requestcontext.WithUserAgent(ctx, rawUA)
			ctx = requestcontext.WithDevice(ctx, device)
		}

		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			ctx = requestcontext.WithClientIP(ctx, host)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
