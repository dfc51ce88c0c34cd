package instrumentation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus/push"
)

// Push sends the collected metrics to the configured Pushgateway.
// It is a no-op when instrumentation is disabled, no Pushgateway is
// configured, or metrics are not exported through Prometheus.
func (p *Provider) Push(ctx context.Context) error {
	if !p.enabled || p.config.PushgatewayURL == "" || p.registry == nil {
		return nil
	}

	job := p.config.PushgatewayJob
	if job == "" {
		job = "roomutil"
	}

	pusher := push.New(p.config.PushgatewayURL, job).Gatherer(p.registry)
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", p.config.PushgatewayURL, err)
	}

	slog.Debug("pushed metrics", "component", "instrumentation", "job", job)
	return nil
}
