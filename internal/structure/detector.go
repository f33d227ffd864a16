package structure

import "smclens/pkg/model"

// Config holds structure detection settings
type Config struct {
	SwingLookback      int
	BOSLookback        int // window for the bias override
	OBLookback         int
	FVGSignificance    float64 // fraction of the average range a gap must exceed
	LiquidityTolerance float64 // floor for the relative clustering tolerance
}

// DefaultConfig returns the standard detection settings
func DefaultConfig() Config {
	return Config{
		SwingLookback:      3,
		BOSLookback:        20,
		OBLookback:         20,
		FVGSignificance:    0.3,
		LiquidityTolerance: 0.001,
	}
}

// Detector finds market structure in a candle series
type Detector struct {
	config Config
}

// NewDetector creates a new structure detector
func NewDetector(cfg Config) *Detector {
	return &Detector{config: cfg}
}

// Detect runs every sub-detector over the series. Sparse or pattern-free
// input yields empty collections, never an error.
func (d *Detector) Detect(s *model.Series) Analysis {
	if s.Len() == 0 {
		return Empty()
	}

	swings := FindSwings(s, d.config.SwingLookback)
	breaks := FindBreaks(s, swings)
	reversals := FindReversals(s, swings.All)

	blocks := AnnotateMitigation(s, FindOrderBlocks(s, breaks, d.config.OBLookback))
	gaps := AnnotateFill(s, FindFairValueGaps(s, d.config.FVGSignificance))

	analysis := Analysis{
		Swings:      swings,
		BOS:         breaks,
		CHoCH:       reversals,
		OrderBlocks: groupOrderBlocks(blocks),
		FVGs:        groupFVGs(gaps),
		Liquidity:   FindLiquidity(s, swings, d.config.LiquidityTolerance),
		Bias:        InferBias(s, swings, breaks, reversals, d.config.BOSLookback),
	}
	analysis.Summary = Summary{
		TotalCandles:      s.Len(),
		SwingHighs:        len(swings.Highs),
		SwingLows:         len(swings.Lows),
		ActiveOrderBlocks: len(analysis.OrderBlocks.Active),
		ActiveFVGs:        len(analysis.FVGs.Active),
	}
	return analysis
}
