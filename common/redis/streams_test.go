package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishJSONToStream(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	id, err := PublishJSONToStream(ctx, client, "test:stream", 0, map[string]any{"value": 21.5})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	msgs, err := client.XRange(ctx, "test:stream", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, `{"value":21.5}`, msgs[0].Values["data"])
	assert.NotEmpty(t, msgs[0].Values["timestamp"])
}

func TestFormatStreamValue(t *testing.T) {
	cases := map[string]any{
		"abc":   "abc",
		"42":    42,
		"7":     int64(7),
		"20.25": 20.25,
		"true":  true,
		`[1,2]`: []int{1, 2},
	}
	for want, in := range cases {
		got, err := formatStreamValue(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}
