// Package resource implements the resource controller shared by merge workers.
//
// The controller manages two resource types:
//
//   - Memory: Track and limit arena page memory (non-blocking, fail-fast)
//   - IO: Rate-limit history flushes so the merge log does not saturate shared storage
//
// # Memory Management
//
// Memory tracking uses a weighted semaphore for hard limits and atomic counters
// for usage tracking. AcquireMemory is non-blocking and returns immediately
// with ErrMemoryLimitExceeded if the limit would be exceeded:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 8 << 30,
//	})
//
//	if err := rc.AcquireMemory(pageBytes); err != nil {
//	    // fatal: the arena cannot grow
//	}
//	defer rc.ReleaseMemory(pageBytes)
//
// # IO Rate Limiting
//
// Token bucket rate limiter for history output:
//
//	rc := resource.NewController(resource.Config{
//	    IOLimitBytesPerSec: 64 * 1024 * 1024,
//	})
//	w := resource.NewRateLimitedWriter(ctx, sink, rc)
//
// # Nil Safety
//
// All methods handle nil Controller gracefully - they become no-ops.
package resource
