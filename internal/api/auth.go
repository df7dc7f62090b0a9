package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"net"
	"net/http"
	"strings"

	"campus_scheduler/internal/config"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

const (
	apiKeyHeaderDefault = "x-api-key"
	permWriteBookings   = "write:bookings"
	permAdminBookings   = "admin:bookings"
	permReadBookings    = "read:bookings"
	clientKeyUnknown    = "unknown"
)

var (
	errMissingAPIKey    = errors.New("missing api key")
	errInvalidAPIKey    = errors.New("invalid api key")
	errPermissionDenied = errors.New("permission denied")
	errRateLimited      = errors.New("rate limit exceeded")
)

// keyRing resolves API keys to configured clients.
type keyRing struct {
	header  string
	clients []config.APIClientKey
}

func newKeyRing(cfg config.APIAuthConfig) *keyRing {
	header := strings.ToLower(strings.TrimSpace(cfg.HeaderAPIKey))
	if header == "" {
		header = apiKeyHeaderDefault
	}
	return &keyRing{header: header, clients: cfg.APIKeys}
}

// lookup compares against every key so the timing does not depend on which one matched.
func (k *keyRing) lookup(apiKey string) (config.APIClientKey, bool) {
	var (
		found  config.APIClientKey
		exists bool
	)
	for _, c := range k.clients {
		if subtle.ConstantTimeCompare([]byte(c.Key), []byte(apiKey)) == 1 {
			found = c
			exists = true
		}
	}
	return found, exists
}

// authorize checks the key and, when required is set, the client's permissions.
// An empty permission list allows everything.
func (k *keyRing) authorize(apiKey, required string) error {
	if apiKey == "" {
		return errMissingAPIKey
	}
	client, ok := k.lookup(apiKey)
	if !ok {
		return errInvalidAPIKey
	}
	if required == "" || len(client.Permissions) == 0 {
		return nil
	}
	for _, p := range client.Permissions {
		if strings.TrimSpace(p) == required {
			return nil
		}
	}
	return errPermissionDenied
}

// HTTPAuth provides API-key auth on mutating routes and per-client rate limiting.
type HTTPAuth struct {
	cfg     config.APIConfig
	keys    *keyRing
	limiter *rateLimiter
}

func NewHTTPAuth(cfg config.APIConfig, limiter *rateLimiter) *HTTPAuth {
	return &HTTPAuth{cfg: cfg, keys: newKeyRing(cfg.Auth), limiter: limiter}
}

func (a *HTTPAuth) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.cfg.Auth.Enabled {
			if required := requiredPermissionHTTP(r); required != "" {
				apiKey := strings.TrimSpace(r.Header.Get(a.keys.header))
				if err := a.keys.authorize(apiKey, required); err != nil {
					statusCode := http.StatusUnauthorized
					if errors.Is(err, errPermissionDenied) {
						statusCode = http.StatusForbidden
					}
					writeError(w, statusCode, err.Error())
					return
				}
			}
		}

		if !a.limiter.Allow(r.Context(), a.clientKey(r)) {
			writeError(w, http.StatusTooManyRequests, errRateLimited.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}

func requiredPermissionHTTP(r *http.Request) string {
	path := r.URL.Path
	switch {
	case r.Method == http.MethodPost && path == "/book":
		return permWriteBookings
	case (r.Method == http.MethodPut || r.Method == http.MethodDelete) && strings.HasPrefix(path, "/booking/"):
		return permWriteBookings
	case r.Method == http.MethodPut && (strings.HasPrefix(path, "/approve/") || strings.HasPrefix(path, "/reject/")):
		return permAdminBookings
	}
	return ""
}

func (a *HTTPAuth) clientKey(r *http.Request) string {
	if apiKey := strings.TrimSpace(r.Header.Get(a.keys.header)); apiKey != "" {
		return apiKey
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return clientKeyUnknown
}

// AuthInterceptor applies the same key ring and limiter to gRPC calls.
// Every ScheduleService method needs read:bookings when auth is on.
type AuthInterceptor struct {
	cfg     *config.APIConfig
	keys    *keyRing
	limiter *rateLimiter
}

func NewAuthInterceptor(cfg *config.APIConfig, limiter *rateLimiter) *AuthInterceptor {
	return &AuthInterceptor{cfg: cfg, keys: newKeyRing(cfg.Auth), limiter: limiter}
}

func (a *AuthInterceptor) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if a.cfg.Auth.Enabled {
			if err := a.checkAuth(ctx, info.FullMethod); err != nil {
				return nil, err
			}
		}
		if !a.limiter.Allow(ctx, a.clientKey(ctx)) {
			return nil, status.Error(codes.ResourceExhausted, errRateLimited.Error())
		}
		return handler(ctx, req)
	}
}

func (a *AuthInterceptor) checkAuth(ctx context.Context, fullMethod string) error {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return status.Error(codes.Unauthenticated, "missing metadata")
	}

	err := a.keys.authorize(first(md.Get(a.keys.header)), requiredPermission(fullMethod))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errPermissionDenied):
		return status.Error(codes.PermissionDenied, err.Error())
	default:
		return status.Error(codes.Unauthenticated, err.Error())
	}
}

func requiredPermission(fullMethod string) string {
	switch fullMethod {
	case ScheduleServiceListBookingsMethod, ScheduleServiceGetOccupiedSlotsMethod:
		return permReadBookings
	default:
		return ""
	}
}

func (a *AuthInterceptor) clientKey(ctx context.Context) string {
	md, _ := metadata.FromIncomingContext(ctx)
	if apiKey := first(md.Get(a.keys.header)); apiKey != "" {
		return apiKey
	}

	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		return p.Addr.String()
	}
	return clientKeyUnknown
}

func first(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	return strings.TrimSpace(vals[0])
}
