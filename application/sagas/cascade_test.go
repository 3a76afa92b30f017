package sagas

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCascadeRunsAllSteps(t *testing.T) {
	var order []string
	cascade := NewCascade("delete-book", zap.NewNop()).
		AddStep(Step{Name: "detach-tags", Execute: func(ctx context.Context) error {
			order = append(order, "detach-tags")
			return nil
		}}).
		AddStep(Step{Name: "delete-progress", Execute: func(ctx context.Context) error {
			order = append(order, "delete-progress")
			return nil
		}})

	require.NoError(t, cascade.Run(context.Background()))
	assert.Equal(t, []string{"detach-tags", "delete-progress"}, order)
}

func TestCascadeContinuesPastFailedStep(t *testing.T) {
	var laterRan bool
	cascade := NewCascade("delete-book", zap.NewNop()).
		AddStep(Step{Name: "boom", Execute: func(ctx context.Context) error {
			return errors.New("storage hiccup")
		}}).
		AddStep(Step{Name: "later", Execute: func(ctx context.Context) error {
			laterRan = true
			return nil
		}})

	err := cascade.Run(context.Background())
	require.Error(t, err)
	assert.True(t, laterRan, "steps after a failure must still run")
	assert.Contains(t, err.Error(), "boom")
}

func TestCascadeRetriesStep(t *testing.T) {
	attempts := 0
	cascade := NewCascade("delete-tag", zap.NewNop()).
		AddStep(Step{
			Name:       "flaky",
			MaxRetries: 3,
			RetryDelay: time.Millisecond,
			Execute: func(ctx context.Context) error {
				attempts++
				if attempts < 3 {
					return errors.New("transient")
				}
				return nil
			},
		})

	require.NoError(t, cascade.Run(context.Background()))
	assert.Equal(t, 3, attempts)
}

func TestCascadeHonorsContextDuringRetry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cascade := NewCascade("delete-book", zap.NewNop()).
		AddStep(Step{
			Name:       "never-succeeds",
			MaxRetries: 5,
			RetryDelay: time.Minute,
			Execute: func(ctx context.Context) error {
				return errors.New("down")
			},
		})

	err := cascade.Run(ctx)
	require.Error(t, err)
}
