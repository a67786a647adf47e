package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Guard suppresses concurrent duplicate sends. It is a debounce: once the
// ttl passes the key can be taken again even if the first holder is still
// running.
type Guard interface {
	// Acquire takes key for ttl. It returns ErrInProgress when the key is
	// held. The returned release func is safe to call more than once.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// MemoryGuard is a process-local Guard.
type MemoryGuard struct {
	mu   sync.Mutex
	held map[string]memoryLease
	now  func() time.Time
}

type memoryLease struct {
	token   string
	expires time.Time
}

// NewMemoryGuard returns a MemoryGuard. A nil now uses time.Now.
func NewMemoryGuard(now func() time.Time) *MemoryGuard {
	if now == nil {
		now = time.Now
	}
	return &MemoryGuard{held: make(map[string]memoryLease), now: now}
}

func (g *MemoryGuard) Acquire(_ context.Context, key string, ttl time.Duration) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if l, ok := g.held[key]; ok && now.Before(l.expires) {
		return nil, ErrInProgress
	}
	token := uuid.NewString()
	g.held[key] = memoryLease{token: token, expires: now.Add(ttl)}

	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if l, ok := g.held[key]; ok && l.token == token {
			delete(g.held, key)
		}
	}, nil
}

// releaseScript deletes the key only while it still holds our token, so an
// expired lease never removes a newer holder's key.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisGuard shares the guard between instances with SET NX PX.
type RedisGuard struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisGuard returns a RedisGuard storing keys under prefix.
func NewRedisGuard(client redis.UniversalClient, prefix string) *RedisGuard {
	if prefix == "" {
		prefix = "letterdesk:guard:"
	}
	return &RedisGuard{client: client, prefix: prefix}
}

func (g *RedisGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	key = g.prefix + key
	token := uuid.NewString()

	ok, err := g.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("workflow: acquire guard: %w", err)
	}
	if !ok {
		return nil, ErrInProgress
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			_ = releaseScript.Run(context.WithoutCancel(ctx), g.client, []string{key}, token).Err()
		})
	}, nil
}
