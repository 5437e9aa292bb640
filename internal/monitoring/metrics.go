package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 监控指标
type Metrics struct {
	// HTTP 请求指标
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// 诉状指标
	ComplaintsSubmitted *prometheus.CounterVec
	ComplaintsDeleted   prometheus.Counter
	AttachmentsSaved    prometheus.Counter
	AttachmentSize      prometheus.Histogram

	// 管理指标
	LoginAttempts *prometheus.CounterVec
	ExportsTotal  prometheus.Counter
	BackupsTotal  prometheus.Counter

	// 错误指标
	ErrorsTotal *prometheus.CounterVec
}

// NewMetrics 创建监控指标
func NewMetrics() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aparichit_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aparichit_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		ComplaintsSubmitted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aparichit_complaints_submitted_total",
				Help: "Total number of complaints persisted",
			},
			[]string{"category"},
		),

		ComplaintsDeleted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "aparichit_complaints_deleted_total",
				Help: "Total number of complaints deleted",
			},
		),

		AttachmentsSaved: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "aparichit_attachments_saved_total",
				Help: "Total number of attachment files written",
			},
		),

		AttachmentSize: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "aparichit_attachment_size_bytes",
				Help:    "Attachment size in bytes",
				Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
			},
		),

		LoginAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aparichit_login_attempts_total",
				Help: "Total number of admin login attempts",
			},
			[]string{"result"},
		),

		ExportsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "aparichit_exports_total",
				Help: "Total number of export downloads",
			},
		),

		BackupsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "aparichit_backups_total",
				Help: "Total number of backup snapshots written",
			},
		),

		ErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aparichit_errors_total",
				Help: "Total number of errors by component",
			},
			[]string{"component"},
		),
	}
}

// RecordComplaintSubmitted 记录一次成功提交
func (m *Metrics) RecordComplaintSubmitted(category string) {
	m.ComplaintsSubmitted.WithLabelValues(category).Inc()
}

// RecordComplaintDeleted 记录一次删除
func (m *Metrics) RecordComplaintDeleted() {
	m.ComplaintsDeleted.Inc()
}

// RecordAttachment 记录一个附件写入
func (m *Metrics) RecordAttachment(size int64) {
	m.AttachmentsSaved.Inc()
	m.AttachmentSize.Observe(float64(size))
}

// RecordLogin 记录一次登录尝试，result 为 "success" 或 "failure"
func (m *Metrics) RecordLogin(result string) {
	m.LoginAttempts.WithLabelValues(result).Inc()
}

// RecordExport 记录一次导出
func (m *Metrics) RecordExport() {
	m.ExportsTotal.Inc()
}

// RecordBackup 记录一次备份
func (m *Metrics) RecordBackup() {
	m.BackupsTotal.Inc()
}

// RecordError 记录一次错误
func (m *Metrics) RecordError(component string) {
	m.ErrorsTotal.WithLabelValues(component).Inc()
}

// GinMiddleware 返回记录请求指标的 Gin 中间件
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		m.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, endpoint).
			Observe(time.Since(start).Seconds())
	}
}

// HTTPHandler 返回 Prometheus HTTP 处理器
func (m *Metrics) HTTPHandler() http.Handler {
	return promhttp.Handler()
}
