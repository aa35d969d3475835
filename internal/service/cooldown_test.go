package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCooldownRemaining(t *testing.T) {
	decidedAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("full cooldown immediately after rejection", func(t *testing.T) {
		remaining := CooldownRemaining(decidedAt, decidedAt, DefaultCooldown)
		assert.Equal(t, 3*time.Hour, remaining)
	})

	t.Run("partial cooldown mid-way", func(t *testing.T) {
		now := decidedAt.Add(1 * time.Hour)
		remaining := CooldownRemaining(decidedAt, now, DefaultCooldown)
		assert.Equal(t, 2*time.Hour, remaining)
	})

	t.Run("zero at exactly the cooldown boundary", func(t *testing.T) {
		now := decidedAt.Add(3 * time.Hour)
		remaining := CooldownRemaining(decidedAt, now, DefaultCooldown)
		assert.Equal(t, time.Duration(0), remaining)
	})

	t.Run("zero after the cooldown has elapsed", func(t *testing.T) {
		now := decidedAt.Add(5 * time.Hour)
		remaining := CooldownRemaining(decidedAt, now, DefaultCooldown)
		assert.Equal(t, time.Duration(0), remaining)
	})

	t.Run("one second before the boundary still waits", func(t *testing.T) {
		now := decidedAt.Add(3*time.Hour - time.Second)
		remaining := CooldownRemaining(decidedAt, now, DefaultCooldown)
		assert.Equal(t, time.Second, remaining)
	})

	t.Run("respects a custom cooldown interval", func(t *testing.T) {
		now := decidedAt.Add(30 * time.Minute)
		remaining := CooldownRemaining(decidedAt, now, time.Hour)
		assert.Equal(t, 30*time.Minute, remaining)
	})
}
