package services

import (
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestLogEntry は単一のリクエストログを表します。
type RequestLogEntry struct {
	ID           string        `json:"id"`
	Timestamp    time.Time     `json:"timestamp"`
	Path         string        `json:"path"`
	Method       string        `json:"method"`
	StatusCode   int           `json:"status_code"`
	ResponseTime time.Duration `json:"response_time"`
}

// MonitoringService はAPIのモニタリング機能を提供します。
// ログはプロセス内メモリのみに保持し、プロセス終了とともに消えます。
type MonitoringService struct {
	logs []RequestLogEntry
	mu   sync.RWMutex
}

// NewMonitoringService は新しいMonitoringServiceを生成します。
func NewMonitoringService() *MonitoringService {
	return &MonitoringService{
		logs: make([]RequestLogEntry, 0),
	}
}

// LogRequest はリクエストを記録します。
func (s *MonitoringService) LogRequest(entry RequestLogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, entry)
}

// LoggingMiddleware はリクエスト情報を記録するGinミドルウェアです。
func (s *MonitoringService) LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now().UTC()

		c.Next()

		// 管理系・モニタリング系のパスは記録対象外
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/v1/admin") || strings.HasPrefix(path, "/api/v1/monitoring") {
			return
		}

		s.LogRequest(RequestLogEntry{
			ID:           uuid.New().String(),
			Timestamp:    start,
			Path:         path,
			Method:       c.Request.Method,
			StatusCode:   c.Writer.Status(),
			ResponseTime: time.Since(start),
		})
	}
}

// UsageSummary は指定期間のリクエストを集計した結果です。
type UsageSummary struct {
	TotalRequests int               `json:"total_requests"`
	Endpoints     map[string]int    `json:"endpoints"`
	StatusClasses map[string]int    `json:"status_classes"`
	AvgResponseMs map[string]int64  `json:"avg_response_ms"`
	RecentLogs    []RequestLogEntry `json:"recent_logs"`
}

// GetUsageSummary は直近periodHours時間のログを集計して返します。
func (s *MonitoringService) GetUsageSummary(periodHours int, recentLimit int) UsageSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	since := time.Now().UTC().Add(-time.Duration(periodHours) * time.Hour)

	filtered := make([]RequestLogEntry, 0)
	for _, entry := range s.logs {
		if entry.Timestamp.After(since) {
			filtered = append(filtered, entry)
		}
	}

	endpoints := make(map[string]int)
	statusClasses := map[string]int{
		"2xx": 0,
		"4xx": 0,
		"5xx": 0,
	}
	responseTimeSum := make(map[string]time.Duration)

	for _, entry := range filtered {
		endpoints[entry.Path]++
		responseTimeSum[entry.Path] += entry.ResponseTime
		switch {
		case entry.StatusCode >= 200 && entry.StatusCode < 300:
			statusClasses["2xx"]++
		case entry.StatusCode >= 400 && entry.StatusCode < 500:
			statusClasses["4xx"]++
		case entry.StatusCode >= 500:
			statusClasses["5xx"]++
		}
	}

	avgResponseMs := make(map[string]int64)
	for path, total := range responseTimeSum {
		avgResponseMs[path] = total.Milliseconds() / int64(endpoints[path])
	}

	if recentLimit <= 0 {
		recentLimit = 10
	}
	recent := make([]RequestLogEntry, 0, recentLimit)
	for i := len(filtered) - 1; i >= 0 && len(recent) < recentLimit; i-- {
		recent = append(recent, filtered[i])
	}

	return UsageSummary{
		TotalRequests: len(filtered),
		Endpoints:     endpoints,
		StatusClasses: statusClasses,
		AvgResponseMs: avgResponseMs,
		RecentLogs:    recent,
	}
}
