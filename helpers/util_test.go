package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetSplitPart(t *testing.T) {
	part, err := GetSplitPart("https://www.instagram.com/p/ABC123/", "/", 4)
	assert.NoError(t, err)
	assert.Equal(t, "ABC123", part)

	part, err = GetSplitPart("https://www.instagram.com/p/ABC123/", "/", 5)
	assert.NoError(t, err)
	assert.Equal(t, "", part)

	_, err = GetSplitPart("https://short/", "/", 4)
	assert.Error(t, err)

	_, err = GetSplitPart("a/b", "/", -1)
	assert.Error(t, err)
}
