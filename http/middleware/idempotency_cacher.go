package middleware

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// idemTTL is how long a response stays paired to its idempotency key.
const idemTTL = 24 * time.Hour

var (
	_ IdempotencyCacher = (*IdemResMap)(nil)
	_ IdempotencyCacher = IdemResRedis{}
)

// An IdempotencyCacher can store responses paired to idempotency keys.
type IdempotencyCacher interface {
	Get(ctx context.Context, key string) (IdemRes, bool)
	Set(ctx context.Context, key string, idemRes IdemRes)

	// SetNX pairs idemRes to key only if key is unpaired, reporting true.
	// Otherwise it returns what key is paired to and false.
	SetNX(ctx context.Context, key string, idemRes IdemRes) (IdemRes, bool)
}

// An IdemResMap keeps idempotent responses in memory.
// Server restarts reset it, so it suits development and tests only.
type IdemResMap struct {
	mu  sync.Mutex
	val map[string]idemResMapVal
}

type idemResMapVal struct {
	IdemRes

	at time.Time
}

// NewIdemResMap constructs an empty *IdemResMap.
func NewIdemResMap() *IdemResMap { return &IdemResMap{val: make(map[string]idemResMapVal)} }

// Get retrieves a copy of the response paired to key.
func (m *IdemResMap) Get(ctx context.Context, key string) (IdemRes, bool) {
	if key == "" || ctx.Err() != nil {
		return IdemRes{}, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.get(key)
}

// Set pairs idemRes to key, evicting expired keys.
func (m *IdemResMap) Set(ctx context.Context, key string, idemRes IdemRes) {
	if ctx.Err() != nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.set(key, idemRes)
}

// SetNX pairs idemRes to key unless a live response already is.
func (m *IdemResMap) SetNX(ctx context.Context, key string, idemRes IdemRes) (IdemRes, bool) {
	if ctx.Err() != nil {
		return idemRes, true
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, ok := m.get(key); ok {
		return prev, false
	}

	m.set(key, idemRes)
	return idemRes, true
}

// get copies out the live response paired to key. The caller must hold the lock.
func (m *IdemResMap) get(key string) (IdemRes, bool) {
	v, ok := m.val[key]
	if !ok || time.Since(v.at) > idemTTL {
		return IdemRes{}, false
	}

	ir := v.IdemRes
	ir.Body = bytes.NewBuffer(append([]byte(nil), v.Body.Bytes()...))
	return ir, true
}

// set evicts expired keys and stores a copy of idemRes. The caller must hold the lock.
func (m *IdemResMap) set(key string, idemRes IdemRes) {
	now := time.Now()
	for k, v := range m.val {
		if now.Sub(v.at) > idemTTL {
			delete(m.val, k)
		}
	}

	at := now
	if prev, ok := m.val[key]; ok {
		at = prev.at
	}

	body := bytes.NewBuffer(nil)
	if idemRes.Body != nil {
		body.Write(idemRes.Body.Bytes())
	}
	idemRes.Body = body

	m.val[key] = idemResMapVal{IdemRes: idemRes, at: at}
}

// An IdemResRedis caches idempotent responses in Redis,
// sharing them across every instance of the web app.
type IdemResRedis struct {
	client *redis.Client
	prefix string
}

// NewRedisCache constructs an IdemResRedis connecting with opts.
// Keys are namespaced under prefix.
func NewRedisCache(opts *redis.Options, prefix string) IdemResRedis {
	return IdemResRedis{client: redis.NewClient(opts), prefix: prefix}
}

// Get retrieves the IdemRes paired to key.
func (i IdemResRedis) Get(ctx context.Context, key string) (IdemRes, bool) {
	b, err := i.client.Get(ctx, i.prefix+key).Bytes()
	if err != nil {
		return IdemRes{}, false
	}

	ir := new(IdemRes)
	if err := ir.GobDecode(b); err != nil {
		return IdemRes{}, false
	}

	return *ir, true
}

// Set pairs idemRes to key for a day.
func (i IdemResRedis) Set(ctx context.Context, key string, idemRes IdemRes) {
	b, err := idemRes.GobEncode()
	if err != nil {
		return
	}

	i.client.Set(ctx, i.prefix+key, b, idemTTL)
}

// SetNX claims key for a day with SETNX.
// When Redis cannot be reached, the request goes through unguarded.
func (i IdemResRedis) SetNX(ctx context.Context, key string, idemRes IdemRes) (IdemRes, bool) {
	b, err := idemRes.GobEncode()
	if err != nil {
		return idemRes, true
	}

	claimed, err := i.client.SetNX(ctx, i.prefix+key, b, idemTTL).Result()
	if err != nil || claimed {
		return idemRes, true
	}

	if prev, ok := i.Get(ctx, key); ok {
		return prev, false
	}

	// Paired, but expired or unreadable since; treat as in flight.
	return IdemRes{}, false
}
