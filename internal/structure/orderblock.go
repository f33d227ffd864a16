package structure

import (
	"math"
	"sort"

	"smclens/internal/numeric"
	"smclens/pkg/model"
)

const (
	blocksPerBreak   = 2
	strengthPerScore = 20.0
)

type blockCandidate struct {
	index int
	score float64
}

// FindOrderBlocks looks back up to lookback candles from every break for
// opposite-coloured candles and keeps the two with the largest
// displacement per unit of candle range. The returned blocks are not yet
// checked for mitigation; see AnnotateMitigation.
func FindOrderBlocks(s *model.Series, breaks []Break, lookback int) []OrderBlock {
	blocks := []OrderBlock{}
	seen := make(map[blockKey]int)

	for _, b := range breaks {
		candidates := make([]blockCandidate, 0, lookback)
		start := b.Index - lookback
		if start < 0 {
			start = 0
		}

		for j := b.Index - 1; j >= start; j-- {
			c := s.Candles[j]
			rng := s.Ranges[j]
			if rng <= 0 {
				continue
			}

			var move float64
			if b.IsBullish() {
				if !c.IsBearish() {
					continue
				}
				move = highest(s.Highs, j+1, b.Index) - c.High
			} else {
				if !c.IsBullish() {
					continue
				}
				move = c.Low - lowest(s.Lows, j+1, b.Index)
			}
			if move <= 0 {
				continue
			}
			candidates = append(candidates, blockCandidate{index: j, score: move / rng})
		}

		// candidates are already in descending index order, so ties keep the most recent
		sort.SliceStable(candidates, func(a, c int) bool {
			return candidates[a].score > candidates[c].score
		})
		if len(candidates) > blocksPerBreak {
			candidates = candidates[:blocksPerBreak]
		}

		for _, cand := range candidates {
			ob := newOrderBlock(s, b, cand)
			key := blockKey{kind: ob.Kind, index: ob.Index}
			if at, ok := seen[key]; ok {
				if ob.Strength > blocks[at].Strength {
					blocks[at] = ob
				}
				continue
			}
			seen[key] = len(blocks)
			blocks = append(blocks, ob)
		}
	}

	sort.SliceStable(blocks, func(a, b int) bool {
		return blocks[a].Index > blocks[b].Index
	})
	return blocks
}

type blockKey struct {
	kind  ZoneKind
	index int
}

func newOrderBlock(s *model.Series, b Break, cand blockCandidate) OrderBlock {
	c := s.Candles[cand.index]
	kind := BullishOB
	if !b.IsBullish() {
		kind = BearishOB
	}
	return OrderBlock{
		Kind:           kind,
		High:           numeric.Round(c.High),
		Low:            numeric.Round(c.Low),
		Midpoint:       numeric.Round((c.High + c.Low) / 2),
		Index:          cand.index,
		Time:           c.Time,
		BreakIndex:     b.Index,
		Strength:       numeric.Round(math.Min(100, cand.score*strengthPerScore)),
		MitigatedIndex: -1,
	}
}

// AnnotateMitigation returns a copy of blocks with mitigation resolved.
// Scanning starts after the break candle; the first candle whose range
// overlaps [low, high] mitigates the block for good.
func AnnotateMitigation(s *model.Series, blocks []OrderBlock) []OrderBlock {
	out := make([]OrderBlock, len(blocks))
	for i, ob := range blocks {
		ob.Mitigated = false
		ob.MitigatedIndex = -1
		for j := ob.BreakIndex + 1; j < s.Len(); j++ {
			if s.Lows[j] <= ob.High && s.Highs[j] >= ob.Low {
				ob.Mitigated = true
				ob.MitigatedIndex = j
				break
			}
		}
		out[i] = ob
	}
	return out
}

// groupOrderBlocks splits blocks by kind and activity
func groupOrderBlocks(blocks []OrderBlock) OrderBlocks {
	g := OrderBlocks{
		All:     blocks,
		Bullish: []OrderBlock{},
		Bearish: []OrderBlock{},
		Active:  []OrderBlock{},
	}
	for _, ob := range blocks {
		if ob.IsBullish() {
			g.Bullish = append(g.Bullish, ob)
		} else {
			g.Bearish = append(g.Bearish, ob)
		}
		if !ob.Mitigated {
			g.Active = append(g.Active, ob)
		}
	}
	return g
}

func highest(values []float64, from, to int) float64 {
	h := math.Inf(-1)
	for i := from; i <= to && i < len(values); i++ {
		if values[i] > h {
			h = values[i]
		}
	}
	return h
}

func lowest(values []float64, from, to int) float64 {
	l := math.Inf(1)
	for i := from; i <= to && i < len(values); i++ {
		if values[i] < l {
			l = values[i]
		}
	}
	return l
}
