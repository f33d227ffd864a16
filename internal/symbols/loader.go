// Package symbols resolves the instruments a scan should cover.
package symbols

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"smclens/internal/provider"
	"smclens/pkg/model"
)

// Loader finds instruments from a symbol list or the candle files in a
// set of data directories
type Loader struct {
	dirs []string
}

// NewLoader creates a loader over the given data directories
func NewLoader(dirs ...string) *Loader {
	return &Loader{dirs: dirs}
}

// Parse normalises a comma-separated symbol list. Symbols are trimmed,
// upper-cased and deduplicated in first-seen order.
func Parse(list string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, raw := range strings.Split(list, ",") {
		sym := strings.ToUpper(strings.TrimSpace(raw))
		if sym == "" || seen[sym] {
			continue
		}
		if !isValidSymbol(sym) {
			return nil, fmt.Errorf("invalid symbol %q", raw)
		}
		seen[sym] = true
		out = append(out, sym)
	}
	return out, nil
}

// LoadSymbols pairs each symbol with the timeframe
func (l *Loader) LoadSymbols(symbols []string, timeframe string) []model.Instrument {
	instruments := make([]model.Instrument, len(symbols))
	for i, sym := range symbols {
		instruments[i] = model.Instrument{Symbol: sym, Timeframe: timeframe}
	}
	return instruments
}

// Discover lists the symbols with a SYMBOL_TIMEFRAME candle file in any
// data directory, sorted and deduplicated. Names match exactly, as the
// file provider looks them up.
func (l *Loader) Discover(timeframe string) ([]model.Instrument, error) {
	suffix := "_" + timeframe
	seen := make(map[string]bool)

	for _, dir := range l.dirs {
		entries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", dir, err)
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			name := entry.Name()
			if _, err := provider.FormatOf(name); err != nil {
				continue
			}
			base := strings.TrimSuffix(name, filepath.Ext(name))
			sym, ok := strings.CutSuffix(base, suffix)
			if ok && isValidSymbol(sym) {
				seen[sym] = true
			}
		}
	}

	symbols := make([]string, 0, len(seen))
	for sym := range seen {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	return l.LoadSymbols(symbols, timeframe), nil
}

// isValidSymbol accepts tickers and pair names like BTCUSDT, BRK.B or EUR-USD
func isValidSymbol(symbol string) bool {
	if len(symbol) == 0 || len(symbol) > 20 {
		return false
	}
	for _, c := range symbol {
		if !((c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '.' || c == '-') {
			return false
		}
	}
	return true
}
