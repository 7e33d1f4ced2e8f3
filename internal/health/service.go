package health

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/Brokwise/brokwise-developer/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// DBPinger is optional for the health check. If nil, the database is
// reported as disconnected.
type DBPinger interface {
	Ping() error
}

// CollectResult is the payload for /health/json and the dashboard.
type CollectResult struct {
	Status       string               `json:"status"`
	Runtime      RuntimeInfo          `json:"runtime"`
	Traffic      TrafficInfo          `json:"traffic"`
	Dependencies map[string]DepStatus `json:"dependencies"`
}

type RuntimeInfo struct {
	UptimeSeconds int64      `json:"uptimeSeconds"`
	Memory        MemoryInfo `json:"memory"`
	CPU           CPUInfo    `json:"cpu"`
	Platform      string     `json:"platform"`
	GoVersion     string     `json:"goVersion"`
}

type MemoryInfo struct {
	RSS      int `json:"rss"`
	HeapUsed int `json:"heapUsed"`
}

type CPUInfo struct {
	LoadAvg []string `json:"loadAvg"`
}

type TrafficInfo struct {
	TotalRequests   int         `json:"totalRequests"`
	SuccessCount    int         `json:"successCount"`
	FailedCount     int         `json:"failedCount"`
	SuccessRate     string      `json:"successRate"`
	AvgResponseTime interface{} `json:"avgResponseTime"`
	LastRequest     interface{} `json:"lastRequest"`
}

type DepStatus struct {
	Status string      `json:"status"`
	PingMs interface{} `json:"pingMs"`
}

// CollectHealth gathers dependency status, traffic counters, and runtime
// info. frontendURL may be empty, in which case the frontend dependency is
// omitted entirely rather than reported as down.
func CollectHealth(ctx context.Context, rdb *redis.Client, db DBPinger, frontendURL string) CollectResult {
	result := CollectResult{Dependencies: map[string]DepStatus{}}

	dbDep := pingDatabase(db)
	result.Dependencies["database"] = dbDep

	redisDep, traffic, startTimeMs := pingRedis(ctx, rdb)
	result.Dependencies["redis"] = redisDep
	result.Traffic = traffic
	result.Runtime = collectRuntime(startTimeMs)

	if frontendURL != "" {
		result.Dependencies["frontend"] = pingFrontend(frontendURL)
	}

	if dbDep.Status == "connected" && redisDep.Status == "connected" {
		result.Status = "ok"
	} else {
		result.Status = "issue"
	}
	return result
}

func pingDatabase(db DBPinger) DepStatus {
	if db == nil {
		return DepStatus{Status: "disconnected"}
	}
	start := time.Now()
	if err := db.Ping(); err != nil {
		return DepStatus{Status: "error"}
	}
	ms := time.Since(start).Milliseconds()
	return DepStatus{Status: "connected", PingMs: &ms}
}

// pingRedis checks connectivity and, when up, folds the traffic counters
// written by the stats middleware into a TrafficInfo. It also returns the
// persisted start time (seeding it on first run) so uptime survives restarts
// of stateless instances.
func pingRedis(ctx context.Context, rdb *redis.Client) (DepStatus, TrafficInfo, int64) {
	traffic := TrafficInfo{AvgResponseTime: 0, SuccessRate: "100"}
	startTimeMs := time.Now().UnixMilli()

	if rdb == nil {
		return DepStatus{Status: "disconnected"}, traffic, startTimeMs
	}
	start := time.Now()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return DepStatus{Status: "error"}, traffic, startTimeMs
	}
	ms := time.Since(start).Milliseconds()

	if raw, _ := rdb.Get(ctx, middleware.KeyStartTime).Result(); raw != "" {
		if t, err := strconv.ParseInt(raw, 10, 64); err == nil {
			startTimeMs = t
		}
	} else {
		rdb.Set(ctx, middleware.KeyStartTime, startTimeMs, 0)
	}

	traffic.TotalRequests = intKey(ctx, rdb, middleware.KeyReqTotal)
	traffic.FailedCount = intKey(ctx, rdb, middleware.KeyReqErrors)
	traffic.SuccessCount = traffic.TotalRequests - traffic.FailedCount
	if traffic.TotalRequests > 0 {
		rate := float64(traffic.SuccessCount) / float64(traffic.TotalRequests) * 100
		traffic.SuccessRate = strconv.FormatFloat(rate, 'f', 1, 64)
	}

	timeSumRaw, _ := rdb.Get(ctx, middleware.KeyResTime).Result()
	timeSum, _ := strconv.ParseFloat(timeSumRaw, 64)
	if count := intKey(ctx, rdb, middleware.KeyResCount); count > 0 {
		traffic.AvgResponseTime = strconv.FormatFloat(timeSum/float64(count), 'f', 2, 64)
	}

	if raw, _ := rdb.Get(ctx, middleware.KeyLastReq).Result(); raw != "" {
		var lastReq map[string]interface{}
		_ = json.Unmarshal([]byte(raw), &lastReq)
		traffic.LastRequest = lastReq
	}

	return DepStatus{Status: "connected", PingMs: &ms}, traffic, startTimeMs
}

func intKey(ctx context.Context, rdb *redis.Client, key string) int {
	raw, _ := rdb.Get(ctx, key).Result()
	n, _ := strconv.Atoi(raw)
	return n
}

func collectRuntime(startTimeMs int64) RuntimeInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	uptimeSec := (time.Now().UnixMilli() - startTimeMs) / 1000
	if uptimeSec < 0 {
		uptimeSec = 0
	}
	return RuntimeInfo{
		UptimeSeconds: uptimeSec,
		Memory:        MemoryInfo{RSS: int(m.Alloc / 1024 / 1024), HeapUsed: int(m.HeapInuse / 1024 / 1024)},
		CPU:           CPUInfo{LoadAvg: []string{"0.00", "0.00", "0.00"}},
		Platform:      runtime.GOOS + " (" + runtime.GOARCH + ")",
		GoVersion:     runtime.Version(),
	}
}

func pingFrontend(url string) DepStatus {
	client := &http.Client{Timeout: 3 * time.Second}
	start := time.Now()
	resp, err := client.Get(url)
	if err != nil {
		return DepStatus{Status: "unreachable"}
	}
	defer resp.Body.Close()
	ms := time.Since(start).Milliseconds()
	return DepStatus{Status: "reachable", PingMs: &ms}
}
