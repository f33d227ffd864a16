package engine

import (
	"errors"
	"fmt"
	"math"

	"smclens/pkg/model"
)

// ErrInvalidInput matches every *InvalidInputError with errors.Is
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError rejects a candle sequence before any analysis runs.
// Index is -1 when the sequence as a whole is at fault.
type InvalidInputError struct {
	Reason string
	Index  int
	Field  string
}

func (e *InvalidInputError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid input: %s", e.Reason)
	}
	return fmt.Sprintf("invalid input: candle %d %s: %s", e.Index, e.Field, e.Reason)
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Validate checks length, OHLC positivity, volume and time ordering
func Validate(candles []model.Candle, minCandles int) error {
	if len(candles) < minCandles {
		return &InvalidInputError{
			Reason: fmt.Sprintf("need at least %d candles, got %d", minCandles, len(candles)),
			Index:  -1,
		}
	}

	for i, c := range candles {
		fields := [...]struct {
			name  string
			value float64
		}{
			{"open", c.Open},
			{"high", c.High},
			{"low", c.Low},
			{"close", c.Close},
		}
		for _, f := range fields {
			if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
				return &InvalidInputError{Reason: "not a finite number", Index: i, Field: f.name}
			}
			if f.value <= 0 {
				return &InvalidInputError{Reason: "must be positive", Index: i, Field: f.name}
			}
		}

		if math.IsNaN(c.Volume) || math.IsInf(c.Volume, 0) || c.Volume < 0 {
			return &InvalidInputError{Reason: "must be a finite non-negative number", Index: i, Field: "volume"}
		}
		if i > 0 && c.Time.Before(candles[i-1].Time) {
			return &InvalidInputError{Reason: "earlier than the previous candle", Index: i, Field: "time"}
		}
	}
	return nil
}
