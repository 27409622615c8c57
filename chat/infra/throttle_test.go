package infra

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-gateway/chat/domain"
)

func countingProvider(calls *int32) domain.Provider {
	return domain.ProviderFunc(func(context.Context, []domain.Message) (domain.Reply, error) {
		atomic.AddInt32(calls, 1)
		return domain.Reply{Text: "ok"}, nil
	})
}

func TestThrottled_PassesThroughWithinBurst(t *testing.T) {
	var calls int32
	p := NewThrottled(countingProvider(&calls), 1, 3)

	for i := 0; i < 3; i++ {
		reply, err := p.Generate(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, "ok", reply.Text)
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestThrottled_WaitHonorsContext(t *testing.T) {
	var calls int32
	// 1 token por hora: a segunda chamada teria de esperar.
	p := NewThrottled(countingProvider(&calls), 1.0/3600, 1)

	_, err := p.Generate(context.Background(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Generate(ctx, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "throttled call must not reach the provider")
}
