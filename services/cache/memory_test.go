package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryService(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemoryService()
	m.now = func() time.Time { return now }

	_, err := m.Get("missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	assert.NoError(t, m.Set("a", []byte("1"), time.Minute))
	assert.NoError(t, m.Set("forever", []byte("2"), 0))

	value, err := m.Get("a")
	assert.NoError(t, err)
	assert.Equal(t, []byte("1"), value)

	now = now.Add(time.Minute)
	_, err = m.Get("a")
	assert.ErrorIs(t, err, ErrCacheMiss)

	value, err = m.Get("forever")
	assert.NoError(t, err)
	assert.Equal(t, []byte("2"), value)

	assert.NoError(t, m.Delete("forever"))
	_, err = m.Get("forever")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
