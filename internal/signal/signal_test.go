package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smclens/internal/candlegen"
	"smclens/internal/confluence"
	"smclens/internal/indicator"
	"smclens/internal/structure"
	"smclens/pkg/model"
)

func setAt(price, atr float64) indicator.Set {
	ind := indicator.Empty(price)
	ind.ATR = atr
	return ind
}

func scored(dir confluence.Direction, f confluence.Factors) confluence.Score {
	breakdown := []confluence.Contribution{
		{Factor: confluence.FactorTechnical, Score: f.Technical},
		{Factor: confluence.FactorOrderBlock, Score: f.OrderBlock},
	}
	return confluence.Score{Scores: f, TotalScore: f.Sum(), Direction: dir, Confidence: 70, Breakdown: breakdown}
}

func TestWait(t *testing.T) {
	sig := Wait("nothing to do")
	assert.Equal(t, confluence.Wait, sig.Direction)
	assert.Equal(t, "0.00", sig.RR)
	assert.Equal(t, NoSetup, sig.Setup)
	assert.Zero(t, sig.Entry)
	assert.Zero(t, sig.StopLoss)
	assert.False(t, sig.IsActionable())
}

func TestBuild_WaitDirection(t *testing.T) {
	conf := confluence.Score{Direction: confluence.Wait, Confidence: 58, TotalScore: 4, Breakdown: []confluence.Contribution{}}
	sig := NewBuilder(DefaultConfig()).Build(setAt(100, 2), structure.Empty(), conf)

	assert.Equal(t, confluence.Wait, sig.Direction)
	assert.Equal(t, 58.0, sig.Confidence)
	assert.Equal(t, "0.00", sig.RR)
	assert.Zero(t, sig.TP1)
	assert.Contains(t, sig.Reason, "No clear confluence")
}

func TestBuild_Buy(t *testing.T) {
	sig := NewBuilder(DefaultConfig()).Build(setAt(100, 2), structure.Empty(), scored(confluence.Buy, confluence.Factors{Technical: 10}))

	require.Equal(t, confluence.Buy, sig.Direction)
	assert.Equal(t, 100.0, sig.Entry)
	assert.InDelta(t, 97.6, sig.StopLoss, 1e-9)
	assert.InDelta(t, 104.8, sig.TP1, 1e-9)
	assert.InDelta(t, 106.0, sig.TP2, 1e-9)
	assert.InDelta(t, 107.2, sig.TP3, 1e-9)
	assert.Equal(t, "2.50", sig.RR)
	assert.InDelta(t, 2.4, sig.StopLossPct, 1e-9)
	assert.InDelta(t, 6.0, sig.Target2Pct, 1e-9)
	assert.Equal(t, confluence.FactorTechnical, sig.Setup)
	assert.Equal(t, 70.0, sig.Confidence)
}

func TestBuild_StopExtendsPastOrderBlock(t *testing.T) {
	smc := structure.Empty()
	smc.OrderBlocks.Active = []structure.OrderBlock{
		{Kind: structure.BullishOB, Low: 96, High: 97, MitigatedIndex: -1},
		{Kind: structure.BullishOB, Low: 90, High: 91, MitigatedIndex: -1},
		{Kind: structure.BearishOB, Low: 103, High: 104, MitigatedIndex: -1},
	}
	b := NewBuilder(DefaultConfig())

	buy := b.Build(setAt(100, 2), smc, scored(confluence.Buy, confluence.Factors{Technical: 10}))
	// nearest bullish block below: 100 - 96 + 0.4
	assert.InDelta(t, 95.6, buy.StopLoss, 1e-9)
	assert.InDelta(t, 111.0, buy.TP2, 1e-9)

	sell := b.Build(setAt(100, 2), smc, scored(confluence.Sell, confluence.Factors{Technical: -10}))
	// 104 - 100 + 0.4
	assert.InDelta(t, 104.4, sell.StopLoss, 1e-9)
	assert.InDelta(t, 91.2, sell.TP1, 1e-9)
	assert.Equal(t, "2.50", sell.RR)
}

func TestBuild_ZeroATR(t *testing.T) {
	sig := NewBuilder(DefaultConfig()).Build(setAt(100, 0), structure.Empty(), scored(confluence.Sell, confluence.Factors{Technical: -10}))

	assert.Equal(t, confluence.Wait, sig.Direction)
	assert.Equal(t, ReasonLowVolatility, sig.Reason)
	assert.Equal(t, "0.00", sig.RR)
}

func TestReasonPriority(t *testing.T) {
	smc := structure.Empty()
	smc.Bias.Structure = "HH/HL"
	ind := indicator.Empty(100)

	tests := []struct {
		name      string
		direction confluence.Direction
		factors   confluence.Factors
		contains  string
	}{
		{"entry zone first", confluence.Buy, confluence.Factors{SMCZone: 20, CHoCH: 20, OrderBlock: 20}, "bullish SMC entry zone"},
		{"bearish choch", confluence.Sell, confluence.Factors{SMCZone: 15, CHoCH: 15}, "bearish reversal"},
		{"order block", confluence.Buy, confluence.Factors{CHoCH: 10, OrderBlock: 12}, "bullish order block"},
		{"fair value gap", confluence.Sell, confluence.Factors{OrderBlock: 10, FVG: 9}, "bearish fair value gap"},
		{"trend narrative", confluence.Buy, confluence.Factors{FVG: 8, Technical: 10}, "NEUTRAL trend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := confluence.Score{Direction: tt.direction, Scores: tt.factors}
			assert.Contains(t, reason(conf, ind, smc), tt.contains)
		})
	}
}

func TestBuild_Consistency(t *testing.T) {
	calc := indicator.NewCalculator(indicator.DefaultConfig())
	det := structure.NewDetector(structure.DefaultConfig())
	scorer := confluence.NewScorer(confluence.DefaultConfig())
	builder := NewBuilder(DefaultConfig())

	for seed := int64(1); seed <= 40; seed++ {
		s := model.NewSeries(candlegen.RandomWalk(120, 80, seed))
		ind := calc.Calculate(s)
		smc := det.Detect(s)
		sig := builder.Build(ind, smc, scorer.Score(ind, smc))

		switch sig.Direction {
		case confluence.Buy:
			assert.Less(t, sig.TP1, sig.TP2, "seed %d", seed)
			assert.Less(t, sig.TP2, sig.TP3, "seed %d", seed)
			assert.Less(t, sig.StopLoss, sig.Entry, "seed %d", seed)
			assert.NotEqual(t, "0.00", sig.RR, "seed %d", seed)
		case confluence.Sell:
			assert.Greater(t, sig.TP1, sig.TP2, "seed %d", seed)
			assert.Greater(t, sig.TP2, sig.TP3, "seed %d", seed)
			assert.Greater(t, sig.StopLoss, sig.Entry, "seed %d", seed)
			assert.NotEqual(t, "0.00", sig.RR, "seed %d", seed)
		default:
			assert.Equal(t, "0.00", sig.RR, "seed %d", seed)
			assert.Zero(t, sig.Entry, "seed %d", seed)
		}
	}
}
