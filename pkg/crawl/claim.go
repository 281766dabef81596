package crawl

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/mavcrawl/pkg/artifact"
)

// Claimer grants exclusive in-flight ownership of a coordinate.
type Claimer interface {
	// Claim returns true if the caller now owns c.
	Claim(ctx context.Context, c artifact.Coordinate) (bool, error)
	// Release gives up ownership of c.
	Release(ctx context.Context, c artifact.Coordinate) error
}

// MemoryClaimer coordinates the workers of one process.
type MemoryClaimer struct {
	mu       sync.Mutex
	inFlight map[artifact.Coordinate]struct{}
}

// NewMemoryClaimer returns an empty claimer.
func NewMemoryClaimer() *MemoryClaimer {
	return &MemoryClaimer{inFlight: make(map[artifact.Coordinate]struct{})}
}

func (m *MemoryClaimer) Claim(_ context.Context, c artifact.Coordinate) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.inFlight[c]; ok {
		return false, nil
	}
	m.inFlight[c] = struct{}{}
	return true, nil
}

func (m *MemoryClaimer) Release(_ context.Context, c artifact.Coordinate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inFlight, c)
	return nil
}

// DefaultClaimTTL bounds how long a crashed process can hold a claim.
const DefaultClaimTTL = 10 * time.Minute

// RedisClaimer coordinates crawler processes sharing one store. Claims are
// SET NX keys with a TTL so a crashed owner eventually frees them.
type RedisClaimer struct {
	client redis.Cmdable
	prefix string
	owner  string
	ttl    time.Duration
}

// NewRedisClaimer creates a claimer whose keys are prefix+coordinate and
// whose values name owner (typically the crawl run id).
func NewRedisClaimer(client redis.Cmdable, prefix, owner string, ttl time.Duration) *RedisClaimer {
	if ttl <= 0 {
		ttl = DefaultClaimTTL
	}
	return &RedisClaimer{client: client, prefix: prefix, owner: owner, ttl: ttl}
}

func (r *RedisClaimer) Claim(ctx context.Context, c artifact.Coordinate) (bool, error) {
	return r.client.SetNX(ctx, r.prefix+c.String(), r.owner, r.ttl).Result()
}

// releaseScript deletes KEYS[1] only while it still holds ARGV[1]. A claim
// that outlived its TTL may have been taken by another process.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Release deletes the claim if this claimer still owns it.
func (r *RedisClaimer) Release(ctx context.Context, c artifact.Coordinate) error {
	return releaseScript.Run(ctx, r.client, []string{r.prefix + c.String()}, r.owner).Err()
}

var (
	_ Claimer = (*MemoryClaimer)(nil)
	_ Claimer = (*RedisClaimer)(nil)
)
