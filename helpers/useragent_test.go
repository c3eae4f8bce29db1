package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandomUserAgent(t *testing.T) {
	for i := 0; i < 10; i++ {
		assert.Contains(t, userAgents, RandomUserAgent())
	}
}
