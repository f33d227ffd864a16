package engine

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"

	"smclens/pkg/model"
)

// configSeed fingerprints every setting that can change a result
func configSeed(cfg Config) uint64 {
	cfg.CacheSize = 0
	return xxhash.Sum64String(fmt.Sprintf("%+v", cfg))
}

// cacheKey digests the config seed, metadata and every candle field
func (e *Engine) cacheKey(candles []model.Candle, meta model.Metadata) uint64 {
	d := xxhash.New()

	buf := make([]byte, 0, 56)
	buf = binary.LittleEndian.AppendUint64(buf, e.seed)
	_, _ = d.Write(buf)
	_, _ = d.WriteString(meta.Symbol)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(meta.Timeframe)
	_, _ = d.WriteString("\x00")

	for _, c := range candles {
		buf = buf[:0]
		buf = binary.LittleEndian.AppendUint64(buf, uint64(c.Time.UnixNano()))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(c.Open))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(c.High))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(c.Low))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(c.Close))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(c.Volume))
		_, _ = d.Write(buf)
	}
	return d.Sum64()
}
