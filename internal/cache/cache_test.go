package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	License   string
	ExpiresAt time.Time
}

func TestDisabled(t *testing.T) {
	ctx := context.Background()
	c, err := New(ctx, Config{})
	require.NoError(t, err)
	assert.False(t, c.Enabled())
	require.NoError(t, c.Set(ctx, "k", entry{License: "X"}, time.Minute))
	var out entry
	found, err := c.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, found)
	require.NoError(t, c.Delete(ctx, "k"))
	require.NoError(t, c.Close())
}

func TestKey(t *testing.T) {
	assert.Equal(t, "license:CERT-1", Key(KeyLicenseVerification, "CERT-1"))
	assert.Equal(t, "license", Key(KeyLicenseVerification))
}

func TestRedis(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("Skipping redis test. Set REDIS_ADDR environment variable")
	}
	ctx := context.Background()
	c, err := New(ctx, Config{Addr: addr, Prefix: "certhouse-test"})
	require.NoError(t, err)
	defer c.Close()

	in := entry{License: "CERT-T1-P1", ExpiresAt: time.Now().Truncate(time.Second)}
	require.NoError(t, c.Set(ctx, "entry", in, time.Minute))
	var out entry
	found, err := c.Get(ctx, "entry", &out)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, in.License, out.License)
	assert.True(t, in.ExpiresAt.Equal(out.ExpiresAt))

	require.NoError(t, c.Delete(ctx, "entry"))
	found, err = c.Get(ctx, "entry", &out)
	require.NoError(t, err)
	assert.False(t, found)
}
