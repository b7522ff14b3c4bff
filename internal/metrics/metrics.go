// Package metrics 维护服务的 Prometheus 指标
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "promo"

// 评估结果标签
const (
	ResultEligible = "eligible"
	ResultRejected = "rejected"
)

// Recorder 指标记录器，零值与 nil 均可安全调用
type Recorder struct {
	registry           *prometheus.Registry
	evaluations        *prometheus.CounterVec
	rejections         *prometheus.CounterVec
	evaluationDuration prometheus.Histogram
	discountAmount     prometheus.Histogram
	redemptions        *prometheus.CounterVec
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
}

// NewRecorder 创建独立注册表的指标记录器
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	r := &Recorder{
		registry: registry,
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coupon_evaluations_total",
			Help:      "Coupon eligibility evaluations by source and result.",
		}, []string{"source", "result"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coupon_rejection_reasons_total",
			Help:      "Reasons reported by rejected coupon evaluations.",
		}, []string{"reason"}),
		evaluationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "coupon_evaluation_duration_seconds",
			Help:      "Time spent evaluating a coupon including rule loading.",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
		discountAmount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "coupon_discount_amount",
			Help:      "Discount amount granted by eligible evaluations.",
			Buckets:   []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
		}),
		redemptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coupon_redemptions_total",
			Help:      "Coupon redemption records by write mode and outcome.",
		}, []string{"mode", "outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.evaluations,
		r.rejections,
		r.evaluationDuration,
		r.discountAmount,
		r.redemptions,
		r.httpRequests,
		r.httpDuration,
	)
	return r
}

// Registry 返回底层注册表
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler 返回指标抓取 handler
func (r *Recorder) Handler() http.Handler {
	if r == nil || r.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// ObserveEvaluation 记录一次评估
func (r *Recorder) ObserveEvaluation(source string, ok bool, reasons []string, discount float64, elapsed time.Duration) {
	if r == nil || r.registry == nil {
		return
	}
	result := ResultRejected
	if ok {
		result = ResultEligible
		r.discountAmount.Observe(discount)
	}
	r.evaluations.WithLabelValues(source, result).Inc()
	for _, reason := range reasons {
		r.rejections.WithLabelValues(reason).Inc()
	}
	r.evaluationDuration.Observe(elapsed.Seconds())
}

// ObserveRedemption 记录一次核销写入
func (r *Recorder) ObserveRedemption(mode, outcome string) {
	if r == nil || r.registry == nil {
		return
	}
	r.redemptions.WithLabelValues(mode, outcome).Inc()
}

// ObserveHTTP 记录一次 HTTP 请求
func (r *Recorder) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if r == nil || r.registry == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
