// Package dispatcher drains the transactional outbox: it polls for due
// events, delivers them over signed HTTP and drives the retry schedule.
// Multiple dispatcher processes may run against the same database; the
// per-row lease bounds double delivery to at-least-once.
package dispatcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dandori-work/fcfs-booking/internal/config"
	"github.com/dandori-work/fcfs-booking/internal/store"
	"github.com/dandori-work/fcfs-booking/internal/store/model"
	"github.com/dandori-work/fcfs-booking/pkg/metrics"
	"github.com/dandori-work/fcfs-booking/pkg/signature"
	"github.com/lthibault/jitterbug/v2"
	"go.uber.org/zap"
)

// retrySchedule spaces the attempts of a failing event. The first retry
// fires after 60s, the last after six hours.
var retrySchedule = []time.Duration{
	60 * time.Second,
	300 * time.Second,
	900 * time.Second,
	3600 * time.Second,
	21600 * time.Second,
}

// leaseSlack keeps a leased row invisible to sibling dispatchers for the
// duration of the HTTP attempt plus a safety margin.
const leaseSlack = 30 * time.Second

// maxStoredErrorLen caps the delivery error persisted on the row.
const maxStoredErrorLen = 1024

type Dispatcher struct {
	store         store.Store
	client        *http.Client
	targetURL     string
	signingSecret []byte
	batchSize     int
	pollInterval  time.Duration
	maxRetries    int
}

func New(s store.Store, cfg *config.Config) *Dispatcher {
	return &Dispatcher{
		store:         s,
		client:        &http.Client{Timeout: cfg.Outbox.HTTPTimeout},
		targetURL:     cfg.Outbox.TargetURL,
		signingSecret: []byte(cfg.Outbox.SigningSecret),
		batchSize:     cfg.Outbox.BatchSize,
		pollInterval:  cfg.Outbox.PollInterval,
		maxRetries:    cfg.Outbox.MaxRetries,
	}
}

// Run polls until the context is cancelled. The poll ticker carries a small
// jitter so concurrent dispatchers do not wake in lockstep.
func (d *Dispatcher) Run(ctx context.Context) error {
	zap.S().Named("dispatcher").Infow("dispatcher started",
		"target_url", d.targetURL,
		"batch_size", d.batchSize,
		"poll_interval", d.pollInterval,
	)

	ticker := jitterbug.New(d.pollInterval, &jitterbug.Norm{Stdev: 100 * time.Millisecond, Mean: 0})
	defer ticker.Stop()

	for {
		processed, err := d.dispatchBatch(ctx)
		if err != nil {
			zap.S().Named("dispatcher").Errorw("batch dispatch failed", "error", err)
		}

		// drain the backlog before going back to sleep
		if processed > 0 && err == nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				continue
			}
		}

		select {
		case <-ctx.Done():
			zap.S().Named("dispatcher").Info("dispatcher stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func (d *Dispatcher) dispatchBatch(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	events, err := d.store.Outbox().DueBatch(ctx, d.batchSize, now)
	if err != nil {
		return 0, err
	}

	processed := 0
	for i := range events {
		event := &events[i]

		leased, err := d.store.Outbox().Lease(ctx, event.ID, now.Add(d.client.Timeout+leaseSlack))
		if err != nil {
			return processed, err
		}
		if !leased {
			// a sibling dispatcher took it
			continue
		}

		if err := d.dispatchOne(ctx, event); err != nil {
			return processed, err
		}
		processed++
	}
	return processed, nil
}

func (d *Dispatcher) dispatchOne(ctx context.Context, event *model.OutboxEvent) error {
	retryable, deliveryErr := d.deliver(ctx, event)
	if deliveryErr == nil {
		metrics.IncreaseOutboxDeliveriesMetric(metrics.DeliveryResultSent)
		zap.S().Named("dispatcher").Infow("event delivered", "event_id", event.EventID, "retry_count", event.RetryCount)
		return d.store.Outbox().MarkSent(ctx, event.ID)
	}

	message := truncateError(deliveryErr)
	retryCount := event.RetryCount + 1

	if !retryable || retryCount > d.maxRetries {
		metrics.IncreaseOutboxDeliveriesMetric(metrics.DeliveryResultParked)
		zap.S().Named("dispatcher").Warnw("event parked",
			"event_id", event.EventID,
			"retry_count", retryCount,
			"retryable", retryable,
			"error", message,
		)
		return d.store.Outbox().Park(ctx, event.ID, retryCount, message)
	}

	nextAttemptAt := time.Now().UTC().Add(retryDelay(retryCount))
	metrics.IncreaseOutboxDeliveriesMetric(metrics.DeliveryResultRetried)
	zap.S().Named("dispatcher").Infow("delivery failed, retry scheduled",
		"event_id", event.EventID,
		"retry_count", retryCount,
		"next_attempt_at", nextAttemptAt,
		"error", message,
	)
	return d.store.Outbox().ScheduleRetry(ctx, event.ID, retryCount, nextAttemptAt, message)
}

// deliver posts the event to the target. It returns a nil error on a 2xx
// response; otherwise the error plus whether the failure is retryable.
// 4xx responses other than 408 and 429 indicate a malformed request that no
// retry can fix.
func (d *Dispatcher) deliver(ctx context.Context, event *model.OutboxEvent) (bool, error) {
	timestamp := time.Now().Unix()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.targetURL, bytes.NewReader(event.Payload))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-Id", event.EventID)
	req.Header.Set("X-Event-Name", event.EventName)
	req.Header.Set("X-Timestamp", fmt.Sprintf("%d", timestamp))
	req.Header.Set("X-Signature", signature.Sign(d.signingSecret, timestamp, event.Payload))

	resp, err := d.client.Do(req)
	if err != nil {
		// transport errors, timeouts, dns failures
		return true, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return false, nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxStoredErrorLen))
	deliveryErr := fmt.Errorf("target returned %d: %s", resp.StatusCode, string(body))

	if resp.StatusCode >= 400 && resp.StatusCode < 500 &&
		resp.StatusCode != http.StatusRequestTimeout && resp.StatusCode != http.StatusTooManyRequests {
		return false, deliveryErr
	}
	return true, deliveryErr
}

// retryDelay maps the attempt number to the schedule, clamping at the tail.
func retryDelay(retryCount int) time.Duration {
	idx := retryCount - 1
	if idx >= len(retrySchedule) {
		idx = len(retrySchedule) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return retrySchedule[idx]
}

func truncateError(err error) string {
	message := err.Error()
	if len(message) > maxStoredErrorLen {
		message = message[:maxStoredErrorLen]
	}
	return message
}
