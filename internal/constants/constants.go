package constants

import "time"

var CacheTTL = struct {
	RecentAnalyses time.Duration
}{
	RecentAnalyses: 10 * time.Minute,
}

var AILimits = struct {
	MaxResponsePreview int
	WSMaxMessageBytes  int64
}{
	MaxResponsePreview: 200,
	WSMaxMessageBytes:  64 * 1024,
}

var CircuitBreakerConfig = struct {
	FailureThreshold    int
	ResetTimeout        time.Duration
	RateLimitTimeout    time.Duration
	HealthCheckInterval time.Duration
	HealthCheckTimeout  time.Duration
}{
	FailureThreshold:    3,
	ResetTimeout:        30 * time.Second,
	RateLimitTimeout:    1 * time.Hour,
	HealthCheckInterval: 10 * time.Minute,
	HealthCheckTimeout:  10 * time.Second,
}

var HTTPConfig = struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}{
	ReadTimeout:     15 * time.Second,
	WriteTimeout:    120 * time.Second,
	ShutdownTimeout: 10 * time.Second,
}

var BatchConfig = struct {
	MaxItems       int
	MaxConcurrency int
}{
	MaxItems:       10,
	MaxConcurrency: 4,
}

var HistoryConfig = struct {
	DefaultLimit int
	MaxLimit     int
}{
	DefaultLimit: 20,
	MaxLimit:     100,
}
