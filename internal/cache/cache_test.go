package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slot struct {
	Date  string   `json:"date"`
	Times []string `json:"times"`
}

func TestJSONHelpers(t *testing.T) {
	c, mr := newTestRedis(t)
	ctx := context.Background()

	var got slot
	ok, err := GetJSON(ctx, c, "availability:1", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	want := slot{Date: "2025-03-10", Times: []string{"09:00", "09:30"}}
	require.NoError(t, SetJSON(ctx, c, "availability:1", want, time.Minute))
	ok, err = GetJSON(ctx, c, "availability:1", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)

	require.NoError(t, mr.Set("availability:2", "[broken"))
	ok, err = GetJSON(ctx, c, "availability:2", &got)
	assert.ErrorIs(t, err, ErrDecode)
	assert.False(t, ok)

	err = SetJSON(ctx, c, "availability:3", make(chan int), time.Minute)
	assert.ErrorContains(t, err, "cache: encode availability:3")
}

func TestNoopCacheAlwaysMisses(t *testing.T) {
	c := NewNoop()
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, c, "k", slot{Date: "x"}, time.Minute))
	var got slot
	ok, err := GetJSON(ctx, c, "k", &got)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.Delete(ctx, "k"))
	assert.NoError(t, c.DeletePrefix(ctx, "k"))
}
