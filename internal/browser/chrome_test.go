package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	"sjsage522/taglikeworker/logger"
	apperrors "sjsage522/taglikeworker/pkg/errors"

	"github.com/stretchr/testify/assert"
)

func TestSleep(t *testing.T) {
	d := &ChromeDriver{log: logger.Nop()}

	start := time.Now()
	assert.NoError(t, d.Sleep(context.Background(), 20*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := d.Sleep(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCanceledContextSkipsBrowser(t *testing.T) {
	// no browser is attached; a canceled ctx must fail before it is needed
	d := &ChromeDriver{log: logger.Nop()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := d.Navigate(ctx, "https://www.instagram.com/")
	assert.True(t, apperrors.IsNavigation(err))
	assert.True(t, errors.Is(err, context.Canceled))

	err = d.Evaluate(ctx, "1 + 1", nil)
	assert.True(t, apperrors.IsEvaluation(err))

	err = d.ScrollToBottom(ctx)
	assert.True(t, apperrors.IsEvaluation(err))
}
