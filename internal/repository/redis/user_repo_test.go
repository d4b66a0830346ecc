package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository_SaveGetDelete(t *testing.T) {
	_, client := newTestRedis(t)
	repo := &SessionRepository{Client: client, TTL: time.Hour}
	ctx := context.Background()

	_, err := repo.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrTokenNotFound)

	require.NoError(t, repo.Save(ctx, 1, Session{AccessToken: "a1", RefreshID: "r1"}))
	got, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, &Session{AccessToken: "a1", RefreshID: "r1"}, got)

	// 再次登录覆盖旧会话
	require.NoError(t, repo.Save(ctx, 1, Session{AccessToken: "a2", RefreshID: "r2"}))
	got, err = repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "a2", got.AccessToken)
	assert.Equal(t, "r2", got.RefreshID)

	require.NoError(t, repo.Delete(ctx, 1))
	_, err = repo.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrTokenNotFound)
	require.NoError(t, repo.Delete(ctx, 1))
}

func TestSessionRepository_Extend(t *testing.T) {
	mr, client := newTestRedis(t)
	repo := &SessionRepository{Client: client, TTL: time.Hour}
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, 7, Session{AccessToken: "a", RefreshID: "r"}))
	assert.Equal(t, time.Hour, mr.TTL(sessionKey(7)))

	mr.FastForward(40 * time.Minute)
	assert.Equal(t, 20*time.Minute, mr.TTL(sessionKey(7)))
	require.NoError(t, repo.Extend(ctx, 7))
	assert.Equal(t, time.Hour, mr.TTL(sessionKey(7)))

	mr.FastForward(2 * time.Hour)
	_, err := repo.Get(ctx, 7)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestSessionRepository_Rotate(t *testing.T) {
	mr, client := newTestRedis(t)
	repo := &SessionRepository{Client: client, TTL: time.Hour}
	ctx := context.Background()

	ok, err := repo.Rotate(ctx, 3, "r1", Session{AccessToken: "a2", RefreshID: "r2"})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists(sessionKey(3)))

	require.NoError(t, repo.Save(ctx, 3, Session{AccessToken: "a1", RefreshID: "r1"}))
	mr.FastForward(30 * time.Minute)

	ok, err = repo.Rotate(ctx, 3, "r1", Session{AccessToken: "a2", RefreshID: "r2"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Hour, mr.TTL(sessionKey(3)))

	// 旧 refresh id 不能再用
	ok, err = repo.Rotate(ctx, 3, "r1", Session{AccessToken: "a3", RefreshID: "r3"})
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, &Session{AccessToken: "a2", RefreshID: "r2"}, got)
}

func TestSessionRepository_Unavailable(t *testing.T) {
	mr, client := newTestRedis(t)
	repo := &SessionRepository{Client: client, TTL: time.Hour}
	mr.Close()

	_, err := repo.Get(context.Background(), 1)
	assert.ErrorIs(t, err, ErrRedisUnavailable)
	err = repo.Save(context.Background(), 1, Session{AccessToken: "a"})
	assert.ErrorIs(t, err, ErrRedisUnavailable)
}
