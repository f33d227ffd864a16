package position

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"smclens/internal/candlegen"
	"smclens/internal/confluence"
	"smclens/internal/indicator"
	"smclens/internal/signal"
	"smclens/internal/structure"
	"smclens/pkg/model"
)

func buySignal(confidence float64) signal.Signal {
	return signal.Signal{
		Direction:  confluence.Buy,
		Confidence: confidence,
		Entry:      100,
		StopLoss:   97.5,
		TP1:        105,
		TP2:        106.25,
		TP3:        107.5,
		RR:         "2.50",
	}
}

func TestSize_Wait(t *testing.T) {
	sizing := NewSizer(10000).Size(signal.Wait("flat"))
	assert.Equal(t, Wait(), sizing)
	assert.Zero(t, sizing.PositionSize)
	assert.Zero(t, sizing.RiskAmount)
	assert.Equal(t, RecommendWait, sizing.Recommendation)
}

func TestSize_Buy(t *testing.T) {
	sizing := NewSizer(10000).Size(buySignal(70))

	assert.InDelta(t, 80.0, sizing.PositionSize, 1e-9) // 200 risk / 2.5 stop
	assert.InDelta(t, 8000.0, sizing.PositionSizeUSD, 1e-9)
	assert.InDelta(t, 200.0, sizing.RiskAmount, 1e-9)
	assert.InDelta(t, 2.0, sizing.AccountRiskPercent, 1e-9)
	assert.Equal(t, 2.5, sizing.SLDistance)
	assert.InDelta(t, 1.1, sizing.Expectancy, 1e-9) // 0.6*2.5 - 0.4
	assert.InDelta(t, 0.44, sizing.KellyFraction, 1e-9)
	assert.Equal(t, RecommendStandard, sizing.Recommendation)
}

func TestSize_NeverExceedsTargetRisk(t *testing.T) {
	sizer := NewSizer(12345.67)
	for _, stop := range []float64{99.99, 97.3, 91.1, 50.01} {
		sig := buySignal(80)
		sig.StopLoss = stop
		sizing := sizer.Size(sig)
		assert.LessOrEqual(t, sizing.AccountRiskPercent, 2.0+1e-6, "stop %v", stop)
	}
}

func TestSize_FullTargetRiskAcrossStops(t *testing.T) {
	sizer := NewSizer(10000)
	for i := 1; i <= 500; i++ {
		sig := buySignal(70)
		sig.Entry = 57.31
		sig.StopLoss = sig.Entry - float64(i)*0.0137
		sizing := sizer.Size(sig)
		assert.Equal(t, 2.0, sizing.AccountRiskPercent, "stop %v", sig.StopLoss)
		assert.Equal(t, 200.0, sizing.RiskAmount, "stop %v", sig.StopLoss)
	}
}

func TestSize_FullTargetRiskOnRandomWalks(t *testing.T) {
	calc := indicator.NewCalculator(indicator.DefaultConfig())
	det := structure.NewDetector(structure.DefaultConfig())
	scorer := confluence.NewScorer(confluence.DefaultConfig())
	builder := signal.NewBuilder(signal.DefaultConfig())
	sizer := NewSizer(10000)

	actionable := 0
	for seed := int64(1); seed <= 300; seed++ {
		s := model.NewSeries(candlegen.RandomWalk(150, 60, seed))
		ind := calc.Calculate(s)
		smc := det.Detect(s)
		sig := builder.Build(ind, smc, scorer.Score(ind, smc))
		if !sig.IsActionable() {
			continue
		}
		actionable++
		assert.Equal(t, 2.0, sizer.Size(sig).AccountRiskPercent, "seed %d", seed)
	}
	assert.Positive(t, actionable)
}

func TestSize_CustomWinRate(t *testing.T) {
	sizer := NewSizer(10000)
	sizer.WinRate = 0.5
	sizing := sizer.Size(buySignal(70))
	assert.InDelta(t, 0.75, sizing.Expectancy, 1e-9)
}

func TestRecommend(t *testing.T) {
	tests := []struct {
		confidence float64
		expected   string
	}{
		{30, RecommendAvoid},
		{49.99, RecommendAvoid},
		{50, RecommendSmall},
		{59.9, RecommendSmall},
		{60, RecommendStandard},
		{74.9, RecommendStandard},
		{75, RecommendFull},
		{95, RecommendFull},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, Recommend(tt.confidence), "confidence %v", tt.confidence)
	}
}

func TestCalculateKelly(t *testing.T) {
	assert.InDelta(t, 0.2, CalculateKelly(0.6, 1, 1), 1e-12)
	assert.Equal(t, 0.0, CalculateKelly(0.3, 1, 1))
	assert.Equal(t, 0.0, CalculateKelly(0.6, 2, 0))
}
