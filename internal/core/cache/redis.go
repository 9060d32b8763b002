package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

type Cache struct {
	RDB *redis.Client
	sf  singleflight.Group
}

func New(addr, pass string, db int) *Cache {
	return &Cache{
		RDB: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}),
	}
}

// NewWithClient 注入现成客户端（测试用 redismock）
func NewWithClient(rdb *redis.Client) *Cache {
	return &Cache{RDB: rdb}
}

func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	// 先读缓存
	if b, err := c.RDB.Get(ctx, key).Bytes(); err == nil {
		return b, nil
	}
	// single flight 合并回源
	v, err, _ := c.sf.Do(key, func() (any, error) {
		b, e := load(ctx)
		if e != nil {
			return nil, e
		}
		_ = c.RDB.Set(ctx, key, b, ttl).Err()
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Generation 读取某作用域的代号；写路径 Bump 之后旧 key 自然失效
func (c *Cache) Generation(ctx context.Context, scope string) int64 {
	n, err := c.RDB.Get(ctx, genKey(scope)).Int64()
	if err != nil {
		return 0
	}
	return n
}

func (c *Cache) BumpGeneration(ctx context.Context, scope string) {
	_ = c.RDB.Incr(ctx, genKey(scope)).Err()
}

func genKey(scope string) string { return fmt.Sprintf("gen:%s", scope) }
