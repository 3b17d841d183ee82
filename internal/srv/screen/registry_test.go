package screen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRegistryFirstMatchWins(t *testing.T) {
	first := &fakeScreensaver{id: "star"}
	second := &fakeScreensaver{id: "star"}
	registry := NewRegistry(first, second)
	registry.Add(&fakeScreensaver{id: "rpi"})

	s, ok := registry.Lookup("star")
	assert.True(t, ok)
	assert.Same(t, first, s)

	_, ok = registry.Lookup("plate")
	assert.False(t, ok)

	assert.Equal(t, []string{"star", "star", "rpi"}, registry.Ids())
}

func TestJulianDay(t *testing.T) {
	day := time.Date(2024, 3, 4, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, JulianDay(day)+1, JulianDay(day.Add(2*time.Minute)))
	assert.Equal(t, 2440588, JulianDay(time.Unix(0, 0).UTC()))
}
