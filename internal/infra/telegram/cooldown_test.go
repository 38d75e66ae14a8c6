package telegram

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCooldown_OneUsePerInterval(t *testing.T) {
	c := NewCooldown(time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, c.AllowAt("/subscribe", 1, now))
	assert.False(t, c.AllowAt("/subscribe", 1, now.Add(30*time.Second)))
	assert.True(t, c.AllowAt("/subscribe", 1, now.Add(61*time.Second)))
}

func TestCooldown_Independence(t *testing.T) {
	c := NewCooldown(time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, c.AllowAt("/subscribe", 1, now))
	assert.True(t, c.AllowAt("/subscribe", 2, now))
	assert.True(t, c.AllowAt("/unsubscribe", 1, now))
}

func TestCooldown_Disabled(t *testing.T) {
	c := NewCooldown(0)
	now := time.Now()
	for i := 0; i < 5; i++ {
		assert.True(t, c.AllowAt("/subscribe", 1, now))
	}
}
