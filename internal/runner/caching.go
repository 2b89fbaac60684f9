package runner

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/coverspot/core"
	"github.com/huangsam/coverspot/internal/contract"
	"github.com/huangsam/coverspot/schema"
)

// currentCacheVersion defines the version of the cached report schema.
const currentCacheVersion = 1

// cacheTTL is how long a memoized report stays valid.
const cacheTTL = 7 * 24 * time.Hour

// cachedReport returns the memoized report for the request or computes and stores it.
func cachedReport(ctx context.Context, set *schema.RecordSet, fs schema.FilterState, today time.Time, n int, store contract.CacheStore) (*schema.Report, error) {
	if store == nil {
		return core.BuildReport(ctx, set, fs, today, n)
	}
	if err := fs.Validate(); err != nil {
		return nil, err
	}

	key := generateCacheKey(set.Version, fs, today, n)
	if report := checkCacheHit(store, key, time.Now()); report != nil {
		return report, nil
	}
	return computeAndStore(ctx, set, fs, today, n, store, key)
}

// checkCacheHit returns the cached report, or nil on a miss, a version
// mismatch, a stale entry or an undecodable value.
func checkCacheHit(store contract.CacheStore, key string, now time.Time) *schema.Report {
	data, version, ts, err := store.Get(key)
	if err != nil || version != currentCacheVersion {
		return nil
	}
	if now.Sub(time.Unix(ts, 0)) > cacheTTL {
		return nil
	}
	var report schema.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil
	}
	return &report
}

func computeAndStore(ctx context.Context, set *schema.RecordSet, fs schema.FilterState, today time.Time, n int, store contract.CacheStore, key string) (*schema.Report, error) {
	report, err := core.BuildReport(ctx, set, fs, today, n)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(report); err == nil {
		if err := store.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
			contract.LogWarn("Failed to cache report", err)
		}
	}
	return report, nil
}

// generateCacheKey hashes everything that determines a report.
func generateCacheKey(version string, fs schema.FilterState, today time.Time, n int) string {
	filter, _ := json.Marshal(fs)
	key := fmt.Sprintf("%s:%s:%s:%d", version, filter, schema.DateOf(today).Format(time.DateOnly), n)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}
