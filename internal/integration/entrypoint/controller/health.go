package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// HealthChecker reports whether a dependency is reachable.
type HealthChecker func(ctx context.Context) error

const healthTimeout = 2 * time.Second

type HealthController struct {
	database   HealthChecker
	localStore HealthChecker
}

type HealthResponse struct {
	Status     string `json:"status"`
	Database   string `json:"database"`
	LocalStore string `json:"local_store"`
	Timestamp  string `json:"timestamp"`
}

func NewHealthController(database, localStore HealthChecker) *HealthController {
	return &HealthController{database: database, localStore: localStore}
}

// Check handles GET /health. Both stores are probed in parallel. Only the
// database decides the status code: without the local store the entitlement
// cache is bypassed, which is slower but still correct.
func (h *HealthController) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	resp := HealthResponse{Status: "ok"}
	var g errgroup.Group
	g.Go(func() error { resp.Database = probe(ctx, h.database); return nil })
	g.Go(func() error { resp.LocalStore = probe(ctx, h.localStore); return nil })
	_ = g.Wait()
	resp.Timestamp = time.Now().UTC().Format(time.RFC3339)

	status := http.StatusOK
	if resp.Database != "connected" {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}

func probe(ctx context.Context, check HealthChecker) string {
	if check == nil || check(ctx) != nil {
		return "disconnected"
	}
	return "connected"
}
