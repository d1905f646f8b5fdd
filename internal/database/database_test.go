package database

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestConnectRequiresAddresses(t *testing.T) {
	_, err := ConnectPostgres("", PoolOptions{})
	require.Error(t, err)

	_, err = ConnectRedis(context.Background(), "", time.Second)
	require.Error(t, err)

	_, err = ConnectNATS("", "progress")
	require.Error(t, err)
}

func TestConnectRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := ConnectRedis(context.Background(), "redis://"+mr.Addr(), 0)
	require.NoError(t, err)
	require.NoError(t, client.Close())

	_, err = ConnectRedis(context.Background(), "::not a url", time.Second)
	require.Error(t, err)
}

func TestConnectRedisFailsWhenServerIsGone(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = ConnectRedis(context.Background(), "redis://"+addr, 200*time.Millisecond)
	require.Error(t, err)
}
