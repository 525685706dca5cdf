// Package resource implements the Controller that governs memory, scan
// workers and persistence IO across columns.
//
//	┌─────────────────────────────────────────────────────────────┐
//	│                        Controller                           │
//	├─────────────────┬─────────────────┬─────────────────────────┤
//	│  Memory Limit   │  Scan Workers   │  IO Rate Limiter        │
//	│  (fail-fast)    │  (semaphore)    │  (token bucket)         │
//	├─────────────────┼─────────────────┼─────────────────────────┤
//	│  AcquireMemory  │  AcquireWorker  │  AcquireIO              │
//	│  ReleaseMemory  │  TryAcquire-    │  RateLimitedWriter      │
//	│  MemoryUsage    │  Worker         │  RateLimitedReader      │
//	└─────────────────┴─────────────────┴─────────────────────────┘
//
// # Memory
//
// Every column block charges its full-capacity storage on allocation and
// returns it when the column is closed. AcquireMemory never blocks:
//
//	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 30})
//	if err := rc.AcquireMemory(blockBytes); err != nil {
//	    // ErrMemoryLimitExceeded
//	}
//	defer rc.ReleaseMemory(blockBytes)
//
// # Scan Workers
//
// Block scans from every column sharing a controller compete for
// MaxWorkers slots, bounding CPU use when many scans run at once.
//
// # IO
//
// Serialization streams are throttled by a token bucket. Requests larger than
// the bucket are split so a single large block write never fails the wait.
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully; they become no-ops.
package resource
