// Package sagas provides the best-effort cascade executor behind entity
// deletes. Multi-record cascades are not transactional: each step is retried
// a bounded number of times, completed steps are never rolled back, and any
// step that still fails leaves soft garbage for the reconciler to sweep.
package sagas

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Step is one named unit of a cascade. Execute must be idempotent: the
// reconciler re-runs whole cascades against already-deleted records.
type Step struct {
	Name       string
	Execute    func(ctx context.Context) error
	MaxRetries int
	RetryDelay time.Duration
}

// Cascade runs ordered steps best-effort.
type Cascade struct {
	name   string
	steps  []Step
	logger *zap.Logger
}

// NewCascade creates a cascade.
func NewCascade(name string, logger *zap.Logger) *Cascade {
	return &Cascade{name: name, logger: logger}
}

// AddStep appends a step.
func (c *Cascade) AddStep(step Step) *Cascade {
	c.steps = append(c.steps, step)
	return c
}

// Run executes every step in order. A failing step never stops the steps
// after it; the combined failure set is returned at the end so the caller
// can report the delete as partially failed without undoing completed work.
func (c *Cascade) Run(ctx context.Context) error {
	c.logger.Debug("running cascade",
		zap.String("cascade", c.name),
		zap.Int("steps", len(c.steps)),
	)

	var failed []string
	var firstErr error
	for _, step := range c.steps {
		if err := c.runStep(ctx, step); err != nil {
			c.logger.Error("cascade step failed after retries",
				zap.String("cascade", c.name),
				zap.String("step", step.Name),
				zap.Error(err),
			)
			failed = append(failed, step.Name)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("cascade %s: %d of %d steps failed (%v): %w",
			c.name, len(failed), len(c.steps), failed, firstErr)
	}

	c.logger.Debug("cascade completed", zap.String("cascade", c.name))
	return nil
}

func (c *Cascade) runStep(ctx context.Context, step Step) error {
	maxRetries := step.MaxRetries
	if maxRetries == 0 {
		maxRetries = 1
	}
	retryDelay := step.RetryDelay
	if retryDelay == 0 {
		retryDelay = 100 * time.Millisecond
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryDelay):
			}
			c.logger.Debug("retrying cascade step",
				zap.String("cascade", c.name),
				zap.String("step", step.Name),
				zap.Int("attempt", attempt+1),
			)
		}

		if err := step.Execute(ctx); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("step %s failed after %d attempts: %w", step.Name, maxRetries, lastErr)
}
