package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// once 保证指标只注册一次；重复注册同名指标会直接 panic。
	once sync.Once

	// HTTPRequestsTotal：累计请求数（Counter），用于算 QPS/错误率。
	//
	// labels：
	// - method：HTTP 方法
	// - route：路由模板（用 pattern 而不是带 slug 的真实 path，避免高基数 label）
	// - status：状态码字符串
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDurationSeconds：请求耗时分布（Histogram），算 P95/P99 用。
	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency distributions.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// HTTPInflightRequests：正在处理中的请求数（Gauge）。
	HTTPInflightRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Current number of in-flight HTTP requests.",
		},
	)

	// LinksCreated：成功创建的短链数。
	LinksCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "links_created_total",
			Help: "Total number of links created.",
		},
	)

	// LinkRedirects：成功跳转次数（只统计返回 302 的）。
	LinkRedirects = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "link_redirects_total",
			Help: "Total number of successful redirects.",
		},
	)

	// LinksSwept：定时清理删除的过期记录数。
	LinksSwept = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "links_swept_total",
			Help: "Total number of expired links removed by cleanup.",
		},
	)

	// CacheOperations：slug 查找缓存的命中情况。
	//
	// labels：
	// - layer：l1（本地）/ l2（redis）/ bloom
	// - result：hit / miss / hit_negative / reject
	CacheOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookup_cache_operations_total",
			Help: "Slug lookup cache operations by layer and result.",
		},
		[]string{"layer", "result"},
	)
)

// Init 注册指标：只允许注册一次（否则 panic: duplicate metrics collector registration）
func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDurationSeconds,
			HTTPInflightRequests,
			LinksCreated,
			LinkRedirects,
			LinksSwept,
			CacheOperations,
		)
	})
}
