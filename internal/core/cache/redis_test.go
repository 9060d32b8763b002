package cache

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statsDoc struct {
	Total int64 `json:"total"`
}

func TestCache_GetOrLoadJSON_MissThenSet(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	c := NewWithClient(rdb)
	ctx := context.Background()

	loaded := 0
	load := func(ctx context.Context) (*statsDoc, error) {
		loaded++
		return &statsDoc{Total: 7}, nil
	}

	mock.ExpectGet("k1").RedisNil()
	mock.ExpectSet("k1", []byte(`{"total":7}`), time.Minute).SetVal("OK")

	out, err := GetOrLoadJSON(c, ctx, "k1", time.Minute, load)
	require.NoError(t, err)
	assert.EqualValues(t, 7, out.Total)
	assert.Equal(t, 1, loaded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_GetOrLoadJSON_HitSkipsLoader(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	c := NewWithClient(rdb)
	ctx := context.Background()

	load := func(ctx context.Context) (*statsDoc, error) {
		t.Fatal("loader must not run on cache hit")
		return nil, nil
	}

	mock.ExpectGet("k1").SetVal(`{"total":3}`)

	out, err := GetOrLoadJSON(c, ctx, "k1", time.Minute, load)
	require.NoError(t, err)
	assert.EqualValues(t, 3, out.Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_Generation(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	c := NewWithClient(rdb)
	ctx := context.Background()

	// 没写过的作用域从 0 开始
	mock.ExpectGet("gen:leads:u1").RedisNil()
	assert.EqualValues(t, 0, c.Generation(ctx, "leads:u1"))

	mock.ExpectIncr("gen:leads:u1").SetVal(1)
	c.BumpGeneration(ctx, "leads:u1")

	mock.ExpectGet("gen:leads:u1").SetVal("1")
	assert.EqualValues(t, 1, c.Generation(ctx, "leads:u1"))

	assert.NoError(t, mock.ExpectationsWereMet())
}
