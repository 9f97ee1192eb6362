package common

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewID(t *testing.T) {
	id1 := NewID("PROD")
	id2 := NewID("PROD")
	assert.True(t, strings.HasPrefix(id1, "PROD"))
	assert.NotEqual(t, id1, id2)
}

func TestSha256HashWithSalt(t *testing.T) {
	h1 := Sha256HashWithSalt("password", "salt")
	h2 := Sha256HashWithSalt("password", "salt")
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
	assert.NotEqual(t, h1, Sha256HashWithSalt("password", "other"))
}

func TestIfEmptyStr(t *testing.T) {
	assert.Equal(t, "fallback", IfEmptyStr("  ", "fallback"))
	assert.Equal(t, "value", IfEmptyStr("value", "fallback"))
}
