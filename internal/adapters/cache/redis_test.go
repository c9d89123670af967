package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConnectParsesURLAndBareAddress(t *testing.T) {
	client, err := Connect(context.Background(), "redis://:secret@cache.internal:6380/2")
	require.NoError(t, err)
	opts := client.Options()
	require.Equal(t, "cache.internal:6380", opts.Addr)
	require.Equal(t, "secret", opts.Password)
	require.Equal(t, 2, opts.DB)
	require.NoError(t, client.Close())

	client, err = Connect(context.Background(), "localhost:6379")
	require.NoError(t, err)
	require.Equal(t, "localhost:6379", client.Options().Addr)
	require.NoError(t, client.Close())
}

func TestConnectRejectsMalformedURL(t *testing.T) {
	_, err := Connect(context.Background(), "redis://cache.internal:6379/not-a-db")
	require.Error(t, err)
}
