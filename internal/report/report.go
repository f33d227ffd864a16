// Package report renders analysis and scan results for the terminal.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"smclens/internal/engine"
	"smclens/internal/scanner"
)

const maxReason = 60

// JSON writes v as indented JSON
func JSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// Analysis writes the signal, risk, confluence, structure and indicator
// tables of one result
func Analysis(w io.Writer, r *engine.Result) error {
	sig := r.Signal
	fmt.Fprintf(w, "%s %s | %d candles | last %s\n\n",
		r.Symbol, r.Timeframe, r.DataPoints, r.Timestamp.UTC().Format(time.RFC3339))

	fmt.Fprintf(w, ">> %s (confidence %.0f%%) %s\n\n", sig.Direction, sig.Confidence, sig.Reason)

	if sig.IsActionable() {
		rows := [][]string{
			{"Setup", sig.Setup},
			{"Entry", price(sig.Entry)},
			{"Stop Loss", fmt.Sprintf("%s (%.2f%%)", price(sig.StopLoss), sig.StopLossPct)},
			{"TP1", fmt.Sprintf("%s (%.2f%%)", price(sig.TP1), sig.Target1Pct)},
			{"TP2", fmt.Sprintf("%s (%.2f%%)", price(sig.TP2), sig.Target2Pct)},
			{"TP3", fmt.Sprintf("%s (%.2f%%)", price(sig.TP3), sig.Target3Pct)},
			{"R:R", sig.RR},
		}
		if err := render(w, []string{"Signal", "Value"}, rows); err != nil {
			return err
		}

		risk := r.Risk
		rows = [][]string{
			{"Position", fmt.Sprintf("%.4f units", risk.PositionSize)},
			{"Notional", fmt.Sprintf("$%.2f", risk.PositionSizeUSD)},
			{"Risk", fmt.Sprintf("$%.2f (%.2f%% of account)", risk.RiskAmount, risk.AccountRiskPercent)},
			{"Expectancy", fmt.Sprintf("%+.2fR", risk.Expectancy)},
			{"Kelly", fmt.Sprintf("%.2f", risk.KellyFraction)},
			{"Recommendation", risk.Recommendation},
		}
		fmt.Fprintln(w)
		if err := render(w, []string{"Risk", "Value"}, rows); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	conf := r.Confluence
	rows := make([][]string, 0, len(conf.Breakdown)+1)
	for _, c := range conf.Breakdown {
		rows = append(rows, []string{c.Factor, fmt.Sprintf("%+.2f", c.Score), c.Note})
	}
	rows = append(rows, []string{"Total", fmt.Sprintf("%+.2f", conf.TotalScore), string(conf.Direction)})
	if err := render(w, []string{"Factor", "Score", "Note"}, rows); err != nil {
		return err
	}

	smc := r.SMC
	rows = [][]string{
		{"Bias", fmt.Sprintf("%s (%s, from %s)", smc.Bias.Direction, smc.Bias.Structure, smc.Bias.Source)},
		{"Swings", fmt.Sprintf("%d highs / %d lows", smc.Summary.SwingHighs, smc.Summary.SwingLows)},
		{"BOS", fmt.Sprintf("%d", len(smc.BOS))},
		{"CHoCH", fmt.Sprintf("%d", len(smc.CHoCH))},
		{"Order Blocks", fmt.Sprintf("%d active of %d", smc.Summary.ActiveOrderBlocks, len(smc.OrderBlocks.All))},
		{"FVGs", fmt.Sprintf("%d active of %d", smc.Summary.ActiveFVGs, len(smc.FVGs.All))},
		{"Liquidity", fmt.Sprintf("%d BSL / %d SSL", len(smc.Liquidity.BSL), len(smc.Liquidity.SSL))},
	}
	fmt.Fprintln(w)
	if err := render(w, []string{"Structure", "Value"}, rows); err != nil {
		return err
	}

	ind := r.Indicators
	rows = [][]string{
		{"Price", price(ind.CurrentPrice)},
		{"EMA 20/50/200", fmt.Sprintf("%s / %s / %s", price(ind.EMA20), price(ind.EMA50), price(ind.EMA200))},
		{"RSI", fmt.Sprintf("%.1f", ind.RSI)},
		{"MACD", fmt.Sprintf("%.4f / %.4f (%s)", ind.MACD.Line, ind.MACD.Signal, ind.MACD.Trending)},
		{"ATR", price(ind.ATR)},
		{"Support / Resistance", fmt.Sprintf("%s / %s", price(ind.Support), price(ind.Resistance))},
		{"Trend", fmt.Sprintf("%s %s", ind.Trend.Strength, ind.Trend.Direction)},
		{"Volatility", string(ind.Volatility)},
	}
	fmt.Fprintln(w)
	return render(w, []string{"Indicator", "Value"}, rows)
}

// Scan writes one row per scanned instrument
func Scan(w io.Writer, rep *scanner.Report) error {
	if len(rep.Results) == 0 {
		fmt.Fprintln(w, "No instruments scanned.")
		return nil
	}

	fmt.Fprintf(w, "Scan %s: %d actionable of %d analysed, %d failed\n\n",
		rep.RunID, rep.Actionable, rep.Analyzed, rep.Failed)

	rows := make([][]string, 0, len(rep.Results))
	for _, res := range rep.Results {
		row := []string{res.Instrument.Symbol, res.Instrument.Timeframe}
		if res.Status != scanner.StatusOK {
			row = append(row, "-", "-", "-", "-", "-", truncate(res.Status+": "+res.Error, maxReason))
			rows = append(rows, row)
			continue
		}

		sig := res.Analysis.Signal
		entry, rr := "-", "-"
		if sig.IsActionable() {
			entry = price(sig.Entry)
			rr = sig.RR
		}
		row = append(row,
			string(sig.Direction),
			fmt.Sprintf("%.0f%%", sig.Confidence),
			entry,
			rr,
			res.Analysis.Risk.Recommendation,
			truncate(sig.Reason, maxReason),
		)
		rows = append(rows, row)
	}

	if err := render(w, []string{"Symbol", "TF", "Signal", "Conf", "Entry", "R:R", "Sizing", "Reason"}, rows); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nScanned %d instruments in %s\n", rep.TotalScanned, rep.ScanTime.Round(time.Millisecond))
	return nil
}

func render(w io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewTable(w, tablewriter.WithHeader(header))
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return fmt.Errorf("rendering table: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("rendering table: %w", err)
	}
	return nil
}

// price formats with more places for sub-unit prices
func price(v float64) string {
	if v != 0 && v < 1 && v > -1 {
		return fmt.Sprintf("%.6f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
