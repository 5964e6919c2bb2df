package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHubBindUnbind(t *testing.T) {
	h := NewHub()
	a := &Conn{id: "a"}
	b := &Conn{id: "b"}

	assert.Nil(t, h.Bind("w1", a))
	assert.Nil(t, h.Bind("w1", a))
	assert.Same(t, a, h.Bind("w1", b))

	got, ok := h.Lookup("w1")
	assert.True(t, ok)
	assert.Same(t, b, got)

	// a stale socket must not evict its replacement
	assert.False(t, h.Unbind("w1", a))
	assert.Equal(t, 1, h.Count())

	assert.True(t, h.Unbind("w1", b))
	_, ok = h.Lookup("w1")
	assert.False(t, ok)
	assert.Equal(t, 0, h.Count())
}

func TestHubEvictMissing(t *testing.T) {
	h := NewHub()
	assert.False(t, h.Evict("w1", "deleted"))
}
