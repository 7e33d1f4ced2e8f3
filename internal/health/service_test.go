package health

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRedis(t *testing.T) *redis.Client {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	return rdb
}

func TestCollectHealth_EverythingDown(t *testing.T) {
	result := CollectHealth(context.Background(), nil, nil, "")

	assert.Equal(t, "issue", result.Status)
	assert.Equal(t, "disconnected", result.Dependencies["database"].Status)
	assert.Equal(t, "disconnected", result.Dependencies["redis"].Status)
	assert.NotContains(t, result.Dependencies, "frontend")
	assert.Zero(t, result.Traffic.TotalRequests)
	assert.Equal(t, "100", result.Traffic.SuccessRate)
}

func TestCollectHealth_RedisOnly(t *testing.T) {
	rdb := testRedis(t)
	ctx := context.Background()

	result := CollectHealth(ctx, rdb, nil, "")
	assert.Equal(t, "connected", result.Dependencies["redis"].Status)
	assert.NotNil(t, result.Dependencies["redis"].PingMs)
	assert.Equal(t, "disconnected", result.Dependencies["database"].Status)
	// DB is down, so the overall verdict stays "issue"
	assert.Equal(t, "issue", result.Status)

	// first collection seeds the persisted start time
	assert.NoError(t, rdb.Get(ctx, "health:global:start_time").Err())
}

func TestCollectHealth_TrafficAggregation(t *testing.T) {
	rdb := testRedis(t)
	ctx := context.Background()

	seed := map[string]string{
		"health:global:req_total":      "10",
		"health:global:req_errors":     "2",
		"health:global:res_time_total": "150.5",
		"health:global:res_count":      "10",
		"health:global:start_time":     "1000000",
	}
	for k, v := range seed {
		require.NoError(t, rdb.Set(ctx, k, v, 0).Err())
	}

	traffic := CollectHealth(ctx, rdb, nil, "").Traffic
	assert.Equal(t, 10, traffic.TotalRequests)
	assert.Equal(t, 2, traffic.FailedCount)
	assert.Equal(t, 8, traffic.SuccessCount)
	assert.Equal(t, "80.0", traffic.SuccessRate)
	assert.Equal(t, "15.05", traffic.AvgResponseTime)
}
