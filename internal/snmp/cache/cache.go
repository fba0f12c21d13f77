// Package cache implements the SNMP response cache: a Redis-backed
// memoization layer in front of the SNMP Transport keyed on
// device identity + operation + OID set, with TTL expiry and
// invalidation. Grounded on the teacher pack's go-redis/v8 client shape
// (aldrin-isaac-newtron's sonic.AppDBClient) and on
// prometheus/client_golang counter registration (99souls-ariadne's
// telemetry/metrics.PrometheusProvider).
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ymonitor/ymonitor/internal/logging"
	"github.com/ymonitor/ymonitor/internal/model"
	"github.com/ymonitor/ymonitor/internal/snmp"
)

// DefaultTTL is the cache entry lifetime.
const DefaultTTL = 300 * time.Second

const keyPrefix = "ymonitor:snmp:"

var (
	cacheHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ymonitor_snmp_cache_hits_total",
		Help: "SNMP cache hits by operation type.",
	}, []string{"op"})
	cacheMisses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ymonitor_snmp_cache_misses_total",
		Help: "SNMP cache misses by operation type.",
	}, []string{"op"})
)

func init() {
	_ = prometheus.Register(cacheHits)
	_ = prometheus.Register(cacheMisses)
}

// Cache fronts the SNMP Transport with a Redis-backed memoization layer.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
	log interface {
		Warn(string, ...any)
	}
}

// New constructs a Cache against a Redis address, generalizing the
// teacher's NewAppDBClient(addr) constructor.
func New(addr, password string, db int, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		rdb: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}),
		ttl: ttl,
		log: logging.L("snmp.cache"),
	}
}

// Close closes the underlying Redis connection.
func (c *Cache) Close() error { return c.rdb.Close() }

// opType distinguishes the cached operation shape, part of the cache key.
type opType string

const (
	OpGet     opType = "get"
	OpGetNext opType = "getNext"
	OpWalk    opType = "walk"
	OpGetBulk opType = "getBulk"
)

// Key builds the cache key: keyPrefix, the base64url SHA-256 of
// device_ident, ":", then the base64url SHA-256 of
// op_type|sorted(oids) with optional |mr= and |nr= parts.
func Key(deviceIdent string, op opType, oids []string, maxRepetitions, nonRepeaters *uint32) string {
	sorted := append([]string(nil), oids...)
	sort.Strings(sorted)

	var b strings.Builder
	b.WriteString(string(op))
	b.WriteString("|")
	b.WriteString(strings.Join(sorted, ","))
	if maxRepetitions != nil {
		b.WriteString("|mr=")
		b.WriteString(strconv.FormatUint(uint64(*maxRepetitions), 10))
	}
	if nonRepeaters != nil {
		b.WriteString("|nr=")
		b.WriteString(strconv.FormatUint(uint64(*nonRepeaters), 10))
	}

	identHash := sha256.Sum256([]byte(deviceIdent))
	opHash := sha256.Sum256([]byte(b.String()))
	return keyPrefix + base64.RawURLEncoding.EncodeToString(identHash[:]) + ":" + base64.RawURLEncoding.EncodeToString(opHash[:])
}

// cachedEntry is the JSON-serialized payload stored in Redis.
type cachedEntry struct {
	Response snmp.Response `json:"response"`
	SchemaV  int           `json:"schema_v"`
}

const currentSchemaVersion = 1

// Get looks up a cached Response. A false second return means "not
// cached" (miss, malformed entry, or schema mismatch — all evicted).
func (c *Cache) Get(ctx context.Context, key string, op opType) (snmp.Response, bool) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		cacheMisses.WithLabelValues(string(op)).Inc()
		return snmp.Response{}, false
	}

	var entry cachedEntry
	if err := json.Unmarshal(raw, &entry); err != nil || entry.SchemaV != currentSchemaVersion {
		c.log.Warn("evicting malformed snmp cache entry", "key", key, "error", err)
		_ = c.rdb.Del(ctx, key).Err()
		cacheMisses.WithLabelValues(string(op)).Inc()
		return snmp.Response{}, false
	}

	cacheHits.WithLabelValues(string(op)).Inc()
	return entry.Response, true
}

// Set stores a Response under key with the cache's configured TTL.
func (c *Cache) Set(ctx context.Context, key string, resp snmp.Response) error {
	raw, err := json.Marshal(cachedEntry{Response: resp, SchemaV: currentSchemaVersion})
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, raw, c.ttl).Err()
}

// ClearDevice invalidates every cached entry for a device identity,
// scanning rather than using KEYS to avoid an O(N) blocking scan
// against the whole keyspace.
func (c *Cache) ClearDevice(ctx context.Context, deviceIdent string) error {
	identHash := sha256.Sum256([]byte(deviceIdent))
	prefix := keyPrefix + base64.RawURLEncoding.EncodeToString(identHash[:]) + ":*"
	return c.deleteByPattern(ctx, prefix)
}

// InvalidateByOID recomputes Key() for exactly this OID set, without
// bulk parameters, under each op type and deletes those keys. Entries
// cached for other OID sets that contain these OIDs, and entries stored
// with max-repetitions/non-repeaters, are left in place.
func (c *Cache) InvalidateByOID(ctx context.Context, deviceIdent string, oids []string) error {
	for _, op := range []opType{OpGet, OpGetNext, OpWalk, OpGetBulk} {
		key := Key(deviceIdent, op, oids, nil, nil)
		if err := c.rdb.Del(ctx, key).Err(); err != nil && err != redis.Nil {
			return err
		}
	}
	return nil
}

// FetchGet satisfies a Get against transport through the cache: a hit
// returns the memoized Response without touching the network, a miss
// performs the real SNMP get and, on success, populates the cache for
// the next caller. deviceIdent should be stable per device (e.g.
// "hostname:port:version") so entries survive across calls for the
// same device. Callers that need every read to reflect the device's
// current state (the interface/sensor pollers) should keep calling
// transport.Get directly — this wrapper is for bursty, repeatable
// reads like detect_os where staleness up to the cache TTL is an
// acceptable trade for not re-probing the device on every call.
func (c *Cache) FetchGet(ctx context.Context, transport *snmp.Transport, deviceIdent, hostname string, cfg model.SNMPConfig, oids []string) snmp.Response {
	key := Key(deviceIdent, OpGet, oids, nil, nil)
	if resp, ok := c.Get(ctx, key, OpGet); ok {
		return resp
	}

	resp := transport.Get(ctx, hostname, cfg, oids)
	if resp.Success {
		if err := c.Set(ctx, key, resp); err != nil {
			c.log.Warn("failed to cache snmp response", "key", key, "error", err)
		}
	}
	return resp
}

func (c *Cache) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return nil
}
