package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultRate is how many requests per second a Visitor may make.
	DefaultRate rate.Limit = 5

	// DefaultBurst is how many requests a Visitor may make at once.
	DefaultBurst = 20

	visitorTTL = time.Hour
)

// A Visitor tracks a rate limiter and last seen time.
type Visitor struct {
	LastSeen time.Time
	Limiter  *rate.Limiter
}

// A Visitors maps a Visitor to an IP address.
//
// A Visitors is safe for concurrent use.
type Visitors struct {
	burst int
	every rate.Limit
	swept time.Time
	val   map[string]Visitor
	sync.Mutex
}

// NewVisitors constructs a *Visitors limiting each IP address
// to every requests per second with bursts of up to burst.
//
// Non-positive values fall back to DefaultRate and DefaultBurst.
func NewVisitors(every rate.Limit, burst int) *Visitors {
	if every <= 0 {
		every = DefaultRate
	}

	if burst <= 0 {
		burst = DefaultBurst
	}

	return &Visitors{
		burst: burst,
		every: every,
		swept: time.Now(),
		val:   make(map[string]Visitor),
	}
}

// Fetch retrieves the Visitor for the given ip creating a new Visitor if not seen.
func (vs *Visitors) Fetch(ip string) Visitor {
	vs.Lock()
	defer vs.Unlock()

	now := time.Now().UTC()
	v, ok := vs.val[ip]
	if !ok {
		v = Visitor{Limiter: rate.NewLimiter(vs.every, vs.burst)}
	}

	v.LastSeen = now
	vs.val[ip] = v
	vs.sweep(now)

	return v
}

// Len reports how many visitors are tracked.
func (vs *Visitors) Len() int {
	vs.Lock()
	defer vs.Unlock()

	return len(vs.val)
}

// sweep deletes visitors unseen in over an hour, at most once a minute.
// The caller must hold the lock.
func (vs *Visitors) sweep(now time.Time) {
	if now.Sub(vs.swept) < time.Minute {
		return
	}

	vs.swept = now
	for ip, v := range vs.val {
		if now.Sub(v.LastSeen) > visitorTTL {
			delete(vs.val, ip)
		}
	}
}

// RateLimit responds 429 to clients, identified by the IP address InjectIPAddress resolved,
// making requests faster than visitors allows.
//
// Cf. https://www.alexedwards.net/blog/how-to-rate-limit-http-requests
func RateLimit(visitors *Visitors) Adapter {
	if visitors == nil {
		return NoopAdapter
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !visitors.Fetch(ipFrom(r)).Limiter.Allow() {
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}

			h.ServeHTTP(w, r)
		})
	}
}
