package auth

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wdmmg/internal/testutil"
)

// storeFactories builds each RefreshStore implementation against fresh backing state.
func storeFactories(t *testing.T) map[string]func() (RefreshStore, string) {
	return map[string]func() (RefreshStore, string){
		"db": func() (RefreshStore, string) {
			db := testutil.SetupTestDB(t)
			user := testutil.CreateTestUser(t, db)
			return NewDBRefreshStore(db), user.ID
		},
		"redis": func() (RefreshStore, string) {
			mr := miniredis.RunT(t)
			client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { _ = client.Close() })
			return NewRedisRefreshStore(client), "user-1"
		},
	}
}

func TestRefreshStore_ConsumeIsSingleUse(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store, userID := factory()
			ctx := context.Background()

			require.NoError(t, store.Save(ctx, "jti-1", userID, time.Now().Add(time.Hour)))

			got, err := store.Consume(ctx, "jti-1")
			require.NoError(t, err)
			assert.Equal(t, userID, got)

			_, err = store.Consume(ctx, "jti-1")
			assert.ErrorIs(t, err, ErrRefreshTokenNotFound)
		})
	}
}

func TestRefreshStore_UnknownJTI(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store, _ := factory()
			_, err := store.Consume(context.Background(), "missing")
			assert.ErrorIs(t, err, ErrRefreshTokenNotFound)
		})
	}
}

func TestRefreshStore_RevokeUser(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store, userID := factory()
			ctx := context.Background()
			exp := time.Now().Add(time.Hour)

			require.NoError(t, store.Save(ctx, "jti-a", userID, exp))
			require.NoError(t, store.Save(ctx, "jti-b", userID, exp))
			require.NoError(t, store.RevokeUser(ctx, userID))

			_, err := store.Consume(ctx, "jti-a")
			assert.ErrorIs(t, err, ErrRefreshTokenNotFound)
			_, err = store.Consume(ctx, "jti-b")
			assert.ErrorIs(t, err, ErrRefreshTokenNotFound)
		})
	}
}

func TestDBRefreshStore_ExpiredIsNotRedeemable(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateTestUser(t, db)
	store := NewDBRefreshStore(db)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "old", user.ID, time.Now().Add(-time.Minute)))
	_, err := store.Consume(ctx, "old")
	assert.ErrorIs(t, err, ErrRefreshTokenNotFound)
}

func TestRedisRefreshStore_ExpiresWithTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	store := NewRedisRefreshStore(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "jti-ttl", "user-1", time.Now().Add(10*time.Minute)))
	mr.FastForward(11 * time.Minute)

	_, err := store.Consume(ctx, "jti-ttl")
	assert.ErrorIs(t, err, ErrRefreshTokenNotFound)
}

func TestRedisRefreshStore_ConcurrentConsume(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	store := NewRedisRefreshStore(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "race", "user-1", time.Now().Add(time.Hour)))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Consume(ctx, "race"); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}
