package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRedisSessionStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T) SessionStore {
		_, rdb := newMiniredis(t)
		return NewRedisSessionStore(rdb, "test:session", 0)
	})
}

func TestRedisSessionStoreTTL(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newMiniredis(t)
	st := NewRedisSessionStore(rdb, "test:session", time.Hour)

	_, err := st.InsertIfAbsent(ctx, testSession("TTL001", time.Now()))
	require.NoError(t, err)
	assert.Equal(t, time.Hour, mr.TTL("test:session:TTL001"))

	mr.FastForward(30 * time.Minute)
	_, err = st.Update(ctx, "TTL001", addEntry(1))
	require.NoError(t, err)
	assert.Equal(t, time.Hour, mr.TTL("test:session:TTL001"), "writes refresh the expiry")

	mr.FastForward(2 * time.Hour)
	_, err = st.Find(ctx, "TTL001")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisSessionStoreKeepsKeysWithoutTTL(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newMiniredis(t)
	st := NewRedisSessionStore(rdb, "", 0)

	_, err := st.InsertIfAbsent(ctx, testSession("KEEP01", time.Now()))
	require.NoError(t, err)
	_, err = st.Update(ctx, "KEEP01", addEntry(1))
	require.NoError(t, err)
	assert.True(t, mr.Exists("session:KEEP01"))
	assert.Zero(t, mr.TTL("session:KEEP01"))
}
