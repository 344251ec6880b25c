package data

import (
	"context"
	"testing"
	"time"

	"marketshare/internal/simulation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCache_GetSet(t *testing.T) {
	c := NewRunCache(time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	run := &Run{ID: "a", Result: &simulation.Result{Sector: "electricity"}}
	c.Set(run)

	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Same(t, run, got)

	_, ok = c.Get("missing")
	assert.False(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok, "expired runs are not returned")
	assert.Equal(t, 1, c.Len())

	assert.Equal(t, 1, c.Sweep())
	assert.Zero(t, c.Len())
}

func TestRunCache_Clear(t *testing.T) {
	c := NewRunCache(0)
	c.Set(&Run{ID: "a"})
	c.Set(&Run{ID: "b"})
	require.Equal(t, 2, c.Len())

	c.Clear()
	assert.Zero(t, c.Len())
}

func TestRunCache_Nil(t *testing.T) {
	var c *RunCache
	c.Set(&Run{ID: "a"})
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
	assert.Zero(t, c.Sweep())
	c.Cleanup(context.Background(), time.Second)
}

func TestRunCache_CleanupStops(t *testing.T) {
	c := NewRunCache(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Cleanup(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup did not stop")
	}
}

func TestScenarioDigest(t *testing.T) {
	a := ScenarioDigest([]byte("name: a"))
	assert.Len(t, a, 64)
	assert.Equal(t, a, ScenarioDigest([]byte("name: a")))
	assert.NotEqual(t, a, ScenarioDigest([]byte("name: b")))
}
