// AngelaMos | 2026
// dto.go

package admin

import "time"

type PlanStatsResponse struct {
	Month                string         `json:"month"`
	ByTier               map[string]int `json:"byTier"`
	TotalSubscriptions   int            `json:"totalSubscriptions"`
	ActiveUsersThisMonth int            `json:"activeUsersThisMonth"`
	GeneratedAt          time.Time      `json:"generatedAt"`
}

type SystemStatsResponse struct {
	Database DatabaseStatus `json:"database"`
	Redis    RedisStatus    `json:"redis"`
	Runtime  RuntimeStats   `json:"runtime"`
}

type DatabaseStatus struct {
	Healthy bool         `json:"healthy"`
	Stats   *DBPoolStats `json:"stats,omitempty"`
}

type RedisStatus struct {
	Healthy bool            `json:"healthy"`
	Stats   *RedisPoolStats `json:"stats,omitempty"`
}

type DBPoolStats struct {
	MaxOpen      int   `json:"maxOpen"`
	Open         int   `json:"open"`
	InUse        int   `json:"inUse"`
	Idle         int   `json:"idle"`
	WaitCount    int64 `json:"waitCount"`
	WaitMillis   int64 `json:"waitMs"`
	ClosedIdle   int64 `json:"closedIdle"`
	ClosedMaxAge int64 `json:"closedMaxAge"`
}

type RedisPoolStats struct {
	Hits     uint32 `json:"hits"`
	Misses   uint32 `json:"misses"`
	Timeouts uint32 `json:"timeouts"`
	Total    uint32 `json:"total"`
	Idle     uint32 `json:"idle"`
	Stale    uint32 `json:"stale"`
}

type RuntimeStats struct {
	GoVersion  string `json:"goVersion"`
	Goroutines int    `json:"goroutines"`
	CPUs       int    `json:"cpus"`
	HeapBytes  uint64 `json:"heapBytes"`
	SysBytes   uint64 `json:"sysBytes"`
	GCCycles   uint32 `json:"gcCycles"`
}
