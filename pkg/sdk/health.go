package recall

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Health checks the health of all service components.
// A degraded service answers 503 with a regular body, which is returned without error.
func (c *Client) Health(ctx context.Context) (_ HealthStatus, err error) {
	start := time.Now()
	defer func() { c.obs.observe("health", start, err) }()

	var st HealthStatus
	if err = c.do(ctx, http.MethodGet, c.endpoint(nil, "health"), nil, &st, http.StatusServiceUnavailable); err != nil {
		return HealthStatus{}, fmt.Errorf("health: %w", err)
	}
	return st, nil
}

// Ping reports whether the service and all its dependencies are healthy.
func (c *Client) Ping(ctx context.Context) error {
	st, err := c.Health(ctx)
	if err != nil {
		return err
	}
	if st.Status != "ok" {
		return fmt.Errorf("recall: service %s: %v", st.Status, st.Checks)
	}
	return nil
}
