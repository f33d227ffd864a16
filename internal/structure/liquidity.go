package structure

import (
	"math"
	"sort"

	"smclens/internal/numeric"
	"smclens/pkg/model"
)

const (
	strengthPerMember = 25.0
	minClusterSize    = 2 // singleton clusters are dropped
)

// LiquidityTolerance is the relative distance within which swing prices
// cluster: half the average range as a fraction of the average close,
// never below floor.
func LiquidityTolerance(s *model.Series, floor float64) float64 {
	tol := floor
	avgClose := s.AvgClose(rangeWindow)
	if avgClose > 0 {
		if dynamic := s.AvgRange(rangeWindow) / avgClose * 0.5; dynamic > tol {
			tol = dynamic
		}
	}
	return tol
}

// FindLiquidity clusters swing highs into buy-side zones and swing lows
// into sell-side zones. Only clusters of at least two swings are
// reported; an isolated swing is not a liquidity zone.
func FindLiquidity(s *model.Series, swings Swings, floor float64) Liquidity {
	tol := LiquidityTolerance(s, floor)

	liq := Liquidity{
		BSL: clusterLevels(prices(swings.Highs), tol, BuySideLiquidity),
		SSL: clusterLevels(prices(swings.Lows), tol, SellSideLiquidity),
	}
	liq.All = make([]LiquidityZone, 0, len(liq.BSL)+len(liq.SSL))
	liq.All = append(liq.All, liq.BSL...)
	liq.All = append(liq.All, liq.SSL...)
	return liq
}

type cluster struct {
	sum   float64
	count int
}

func (c *cluster) avg() float64 {
	return c.sum / float64(c.count)
}

// clusterLevels greedily assigns each price to the first cluster whose
// running average is within tol, else opens a new cluster. Only clusters
// with at least two members are reported.
func clusterLevels(levels []float64, tol float64, kind LiquidityKind) []LiquidityZone {
	var clusters []*cluster
	for _, p := range levels {
		joined := false
		for _, c := range clusters {
			avg := c.avg()
			if avg > 0 && math.Abs(p-avg)/avg <= tol {
				c.sum += p
				c.count++
				joined = true
				break
			}
		}
		if !joined {
			clusters = append(clusters, &cluster{sum: p, count: 1})
		}
	}

	zones := []LiquidityZone{}
	for _, c := range clusters {
		if c.count < minClusterSize {
			continue
		}
		zones = append(zones, LiquidityZone{
			Kind:     kind,
			Level:    numeric.Round(c.avg()),
			Strength: math.Min(100, float64(c.count)*strengthPerMember),
			Count:    c.count,
		})
	}

	sort.SliceStable(zones, func(a, b int) bool {
		return zones[a].Strength > zones[b].Strength
	})
	return zones
}

func prices(points []SwingPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Price
	}
	return out
}
