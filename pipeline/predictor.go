package pipeline

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"bookgenre/ml"
	"bookgenre/monitoring"
)

// FallbackGlyph 未登记类别使用的图标
const FallbackGlyph = "📚"

var glyphs = map[string]string{
	"Fantasy":         "🧙‍♂️",
	"Romance":         "💖",
	"Mystery":         "🕵️‍♀️",
	"Science Fiction": "🚀",
	"Nonfiction":      "📘",
	"Horror":          "👻",
	"Comedy":          "😂",
}

// GlyphFor 返回类别对应的图标
func GlyphFor(label string) string {
	if g, ok := glyphs[label]; ok {
		return g
	}
	return FallbackGlyph
}

// Result 单次预测结果
type Result struct {
	Label   string
	Glyph   string
	Encoded EncodedVector
	Scaled  ScaledVector
	Cached  bool
}

// Predictor 串联编码、缩放与分类。工件只读，可被多个 goroutine 共享。
type Predictor struct {
	artifacts *ml.Artifacts
	cache     *lru.Cache[string, string]
	logger    *zap.Logger
}

// NewPredictor 创建预测器；cacheSize <= 0 时不启用缓存
func NewPredictor(artifacts *ml.Artifacts, cacheSize int, logger *zap.Logger) (*Predictor, error) {
	if artifacts == nil {
		return nil, errors.New("artifacts are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Predictor{artifacts: artifacts, logger: logger}
	if cacheSize > 0 {
		cache, err := lru.New[string, string](cacheSize)
		if err != nil {
			return nil, err
		}
		p.cache = cache
	}
	return p, nil
}

// Artifacts 返回预测器使用的工件
func (p *Predictor) Artifacts() *ml.Artifacts {
	return p.artifacts
}

// Predict 执行一次完整的推理流程
func (p *Predictor) Predict(ctx context.Context, raw RawInput) (Result, error) {
	start := time.Now()
	result, err := p.predict(ctx, raw)
	elapsed := time.Since(start)

	if err != nil {
		kind := Kind(err)
		monitoring.RecordPrediction(kind, elapsed)
		fields := []zap.Field{zap.String("kind", kind), zap.Error(err)}
		if IsUserError(err) {
			p.logger.Info("prediction rejected", fields...)
		} else {
			p.logger.Error("prediction failed", fields...)
		}
		return Result{}, err
	}

	monitoring.RecordPrediction(monitoring.OutcomeSuccess, elapsed)
	monitoring.RecordLabel(result.Label)
	p.logger.Debug("prediction complete",
		zap.String("label", result.Label),
		zap.Bool("cached", result.Cached),
		zap.Duration("elapsed", elapsed),
	)
	return result, nil
}

func (p *Predictor) predict(ctx context.Context, raw RawInput) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	encoded, err := Encode(raw, p.artifacts.Schema, p.artifacts.Encoders)
	if err != nil {
		return Result{}, err
	}
	scaled, err := Scale(encoded, p.artifacts.Scaler)
	if err != nil {
		return Result{}, err
	}

	key := cacheKey(scaled)
	if p.cache != nil {
		if label, ok := p.cache.Get(key); ok {
			monitoring.RecordCache(true)
			return Result{Label: label, Glyph: GlyphFor(label), Encoded: encoded, Scaled: scaled, Cached: true}, nil
		}
		monitoring.RecordCache(false)
	}

	label, err := Invoke(scaled, p.artifacts.Model)
	if err != nil {
		return Result{}, err
	}
	if p.cache != nil {
		p.cache.Add(key, label)
	}
	return Result{Label: label, Glyph: GlyphFor(label), Encoded: encoded, Scaled: scaled}, nil
}

func cacheKey(v ScaledVector) string {
	var b strings.Builder
	for i, x := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
	}
	return b.String()
}
