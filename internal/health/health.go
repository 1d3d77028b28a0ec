package health

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/sbilibin2017/questlog/internal/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the name reported to gRPC health checks.
const ServiceName = "questlog"

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Checker tracks dependency health for both the HTTP and gRPC surfaces.
type Checker struct {
	pingers map[string]Pinger
	grpc    *health.Server
	timeout time.Duration
}

// NewChecker creates a Checker over the named dependencies. Nil pingers are skipped.
func NewChecker(pingers map[string]Pinger) *Checker {
	c := &Checker{
		pingers: make(map[string]Pinger, len(pingers)),
		grpc:    health.NewServer(),
		timeout: 2 * time.Second,
	}
	for name, p := range pingers {
		if p != nil {
			c.pingers[name] = p
		}
	}
	return c
}

// Check pings every dependency, updates the gRPC serving status and returns
// the per-dependency result ("ok" or the error text).
func (c *Checker) Check(ctx context.Context) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	healthy := true
	result := make(map[string]string, len(c.pingers))
	for name, p := range c.pingers {
		if err := p.PingContext(ctx); err != nil {
			logger.Log.Warnw("health check failed", "dependency", name, "error", err)
			result[name] = err.Error()
			healthy = false
			continue
		}
		result[name] = "ok"
	}

	status := healthpb.HealthCheckResponse_SERVING
	if !healthy {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	c.grpc.SetServingStatus(ServiceName, status)
	c.grpc.SetServingStatus("", status)
	return result, healthy
}

// Handler serves GET /healthz: 200 when all dependencies respond, 503 otherwise.
func (c *Checker) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, healthy := c.Check(r.Context())

		status := "ok"
		code := http.StatusOK
		if !healthy {
			status = "unavailable"
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":       status,
			"dependencies": result,
		})
	}
}

// Register attaches the gRPC health service to srv.
func (c *Checker) Register(srv *grpc.Server) {
	healthpb.RegisterHealthServer(srv, c.grpc)
}

// Watch re-runs Check every interval until ctx is done so gRPC clients see
// fresh status without polling /healthz.
func (c *Checker) Watch(ctx context.Context, interval time.Duration) {
	c.Check(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			c.grpc.Shutdown()
			return
		case <-ticker.C:
			c.Check(ctx)
		}
	}
}

// Serve runs a gRPC server exposing the health service on lis until ctx is done.
func (c *Checker) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer()
	c.Register(srv)

	go func() {
		<-ctx.Done()
		srv.GracefulStop()
	}()

	logger.Log.Infow("starting gRPC health server", "addr", lis.Addr().String())
	return srv.Serve(lis)
}
