// Package monitoring 提供预测服务的 Prometheus 指标
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 结果标签
const (
	OutcomeSuccess = "success"
	CacheHit       = "hit"
	CacheMiss      = "miss"
	ResultSaved    = "saved"
	ResultFailed   = "failed"
)

var (
	// PredictionsTotal 按结果统计的预测次数（success 或错误类别）
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookgenre_predictions_total",
			Help: "Total number of prediction requests by outcome",
		},
		[]string{"outcome"},
	)

	// PredictionDuration 编码、缩放与分类的耗时
	PredictionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bookgenre_prediction_duration_seconds",
			Help:    "Time spent encoding, scaling and classifying one submission",
			Buckets: prometheus.ExponentialBuckets(0.00005, 4, 8),
		},
	)

	// PredictionCache 预测缓存命中统计
	PredictionCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookgenre_prediction_cache_total",
			Help: "Prediction cache lookups by result",
		},
		[]string{"result"},
	)

	// PredictedLabels 各类别预测次数
	PredictedLabels = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookgenre_predicted_labels_total",
			Help: "Predicted genre labels",
		},
		[]string{"label"},
	)

	// FeedbackRecords 反馈写入统计
	FeedbackRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookgenre_feedback_records_total",
			Help: "Feedback log appends by result",
		},
		[]string{"result"},
	)
)

// RecordPrediction 记录一次预测的结果与耗时
func RecordPrediction(outcome string, elapsed time.Duration) {
	PredictionsTotal.WithLabelValues(outcome).Inc()
	PredictionDuration.Observe(elapsed.Seconds())
}

// RecordLabel 记录预测出的类别
func RecordLabel(label string) {
	PredictedLabels.WithLabelValues(label).Inc()
}

// RecordCache 记录缓存命中或未命中
func RecordCache(hit bool) {
	if hit {
		PredictionCache.WithLabelValues(CacheHit).Inc()
		return
	}
	PredictionCache.WithLabelValues(CacheMiss).Inc()
}

// RecordFeedback 记录反馈写入结果
func RecordFeedback(err error) {
	if err != nil {
		FeedbackRecords.WithLabelValues(ResultFailed).Inc()
		return
	}
	FeedbackRecords.WithLabelValues(ResultSaved).Inc()
}
