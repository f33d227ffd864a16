package provider

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"smclens/pkg/model"
)

// Format is a candle file encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// FormatOf infers the format from a file extension
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unsupported candle file %q: want .json or .csv", path)
}

// FileProvider reads candles from a directory of files named
// SYMBOL_TIMEFRAME.json or SYMBOL_TIMEFRAME.csv (SYMBOL.json and
// SYMBOL.csv are accepted as well)
type FileProvider struct {
	dir string
}

// NewFileProvider creates a provider reading from dir
func NewFileProvider(dir string) *FileProvider {
	return &FileProvider{dir: dir}
}

// Name returns the provider name
func (p *FileProvider) Name() string {
	return "file"
}

// IsAvailable reports whether the data directory exists
func (p *FileProvider) IsAvailable() bool {
	info, err := os.Stat(p.dir)
	return err == nil && info.IsDir()
}

// GetCandles loads the first matching file for the instrument
func (p *FileProvider) GetCandles(ctx context.Context, inst model.Instrument) ([]model.Candle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, path := range p.candidates(inst) {
		candles, err := ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, &ProviderError{Provider: p.Name(), Err: err}
		}
		return candles, nil
	}
	return nil, &ProviderError{
		Provider:  p.Name(),
		Err:       fmt.Errorf("%s in %s: %w", inst, p.dir, ErrNotFound),
		Retryable: true,
	}
}

func (p *FileProvider) candidates(inst model.Instrument) []string {
	bases := []string{inst.Symbol}
	if inst.Timeframe != "" {
		bases = []string{inst.Symbol + "_" + inst.Timeframe, inst.Symbol}
	}

	paths := make([]string, 0, 2*len(bases))
	for _, base := range bases {
		paths = append(paths,
			filepath.Join(p.dir, base+".json"),
			filepath.Join(p.dir, base+".csv"),
		)
	}
	return paths
}

// ReadFile decodes a candle file, picking the format from its extension
func ReadFile(path string) ([]model.Candle, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	candles, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return candles, nil
}

// Decode reads candles in the given format
func Decode(r io.Reader, format Format) ([]model.Candle, error) {
	switch format {
	case FormatJSON:
		return decodeJSON(r)
	case FormatCSV:
		return decodeCSV(r)
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

type jsonCandle struct {
	Time   json.RawMessage `json:"time"`
	Open   float64         `json:"open"`
	High   float64         `json:"high"`
	Low    float64         `json:"low"`
	Close  float64         `json:"close"`
	Volume float64         `json:"volume"`
}

func decodeJSON(r io.Reader) ([]model.Candle, error) {
	var raw []jsonCandle
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("parsing candles: %w", err)
	}

	candles := make([]model.Candle, len(raw))
	for i, c := range raw {
		ts, err := parseTime(strings.Trim(string(c.Time), `"`))
		if err != nil {
			return nil, fmt.Errorf("candle %d: %w", i, err)
		}
		candles[i] = model.Candle{
			Time:   ts,
			Open:   c.Open,
			High:   c.High,
			Low:    c.Low,
			Close:  c.Close,
			Volume: c.Volume,
		}
	}
	return candles, nil
}

var csvColumns = []string{"time", "open", "high", "low", "close", "volume"}

func decodeCSV(r io.Reader) ([]model.Candle, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range csvColumns[:5] {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("missing %q column", name)
		}
	}

	var candles []model.Candle
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		field := func(name string) (string, bool) {
			i, ok := col[name]
			if !ok || i >= len(record) {
				return "", false
			}
			return strings.TrimSpace(record[i]), true
		}

		ts, _ := field("time")
		t, err := parseTime(ts)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		var values [5]float64
		for k, name := range csvColumns[1:] {
			s, ok := field(name)
			if !ok || s == "" {
				if name == "volume" {
					continue
				}
				return nil, fmt.Errorf("line %d: missing %s", line, name)
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: parsing %s: %w", line, name, err)
			}
			values[k] = v
		}

		candles = append(candles, model.Candle{
			Time:   t,
			Open:   values[0],
			High:   values[1],
			Low:    values[2],
			Close:  values[3],
			Volume: values[4],
		})
	}
	return candles, nil
}

// unix timestamps above this are taken as milliseconds
const millisThreshold = 1e11

// parseTime accepts RFC3339 or unix seconds/milliseconds
func parseTime(s string) (time.Time, error) {
	if s == "" || s == "null" {
		return time.Time{}, errors.New("missing time")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognised time %q", s)
	}
	if v > millisThreshold {
		return time.UnixMilli(int64(v)).UTC(), nil
	}
	sec := int64(v)
	return time.Unix(sec, int64((v-float64(sec))*1e9)).UTC(), nil
}
