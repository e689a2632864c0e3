package usecase

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"NiftyPulse/internal/domain/models"
	domrepo "NiftyPulse/internal/domain/repository"
	"NiftyPulse/pkg/logger"
	"NiftyPulse/pkg/util"
)

// ImportUseCase loads exchange CSV dumps of index OHLC and VIX history
// into the history store.
type ImportUseCase struct {
	store  domrepo.HistoryStore
	logger *logger.Logger
}

func NewImportUseCase(store domrepo.HistoryStore) *ImportUseCase {
	return &ImportUseCase{store: store}
}

// SetLogger injects a logger.
func (uc *ImportUseCase) SetLogger(l *logger.Logger) { uc.logger = l }

// ImportResult reports how many rows were stored and how many were
// dropped as unparseable or invalid.
type ImportResult struct {
	Rows    int `json:"rows"`
	Skipped int `json:"skipped"`
}

// ImportCSV reads an index OHLC CSV and an optional VIX CSV, joins them
// by trading day, and upserts the merged bars. vixCSV may be nil.
func (uc *ImportUseCase) ImportCSV(ctx context.Context, ohlcCSV, vixCSV io.Reader) (ImportResult, error) {
	var res ImportResult

	bars, skipped, err := parseOHLC(ohlcCSV)
	if err != nil {
		return res, fmt.Errorf("parse ohlc csv: %w", err)
	}
	res.Skipped += skipped

	if vixCSV != nil {
		vix, vskipped, err := parseVIX(vixCSV)
		if err != nil {
			return res, fmt.Errorf("parse vix csv: %w", err)
		}
		res.Skipped += vskipped
		for i := range bars {
			if v, ok := vix[bars[i].Date]; ok {
				bars[i].VIX = v
			}
		}
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	n, err := uc.store.UpsertBars(ctx, bars)
	if err != nil {
		return res, fmt.Errorf("upsert bars: %w", err)
	}
	res.Rows = n
	res.Skipped += len(bars) - n

	if uc.logger != nil {
		uc.logger.Info("csv import complete",
			logger.Int("rows", res.Rows),
			logger.Int("skipped", res.Skipped))
	}
	return res, nil
}

// parseOHLC reads exchange bhavcopy style CSVs. Column order varies
// between downloads, so columns are resolved from the header by name.
func parseOHLC(r io.Reader) ([]models.DailyBar, int, error) {
	rows, cols, err := readCSV(r)
	if err != nil {
		return nil, 0, err
	}
	need := []string{"date", "open", "high", "low", "close"}
	for _, c := range need {
		if _, ok := cols[c]; !ok {
			return nil, 0, fmt.Errorf("missing column %q", c)
		}
	}

	bars := make([]models.DailyBar, 0, len(rows))
	skipped := 0
	for _, rec := range rows {
		day, ok := util.ParseTradingDay(rec[cols["date"]])
		if !ok {
			skipped++
			continue
		}
		bar := models.DailyBar{
			Date:  day,
			Open:  util.ParseFloatDefault(rec[cols["open"]], 0),
			High:  util.ParseFloatDefault(rec[cols["high"]], 0),
			Low:   util.ParseFloatDefault(rec[cols["low"]], 0),
			Close: util.ParseFloatDefault(rec[cols["close"]], 0),
		}
		if bar.Close <= 0 || bar.High < bar.Low {
			skipped++
			continue
		}
		bars = append(bars, bar)
	}
	return bars, skipped, nil
}

// parseVIX reads a VIX history CSV into a close level per trading day.
func parseVIX(r io.Reader) (map[time.Time]float64, int, error) {
	rows, cols, err := readCSV(r)
	if err != nil {
		return nil, 0, err
	}
	dateCol, ok := cols["date"]
	if !ok {
		return nil, 0, fmt.Errorf("missing column %q", "date")
	}
	closeCol, ok := cols["close"]
	if !ok {
		return nil, 0, fmt.Errorf("missing column %q", "close")
	}

	out := make(map[time.Time]float64, len(rows))
	skipped := 0
	for _, rec := range rows {
		day, ok := util.ParseTradingDay(rec[dateCol])
		if !ok {
			skipped++
			continue
		}
		v := util.ParseFloatDefault(rec[closeCol], 0)
		if v <= 0 {
			skipped++
			continue
		}
		out[day] = v
	}
	return out, skipped, nil
}

// readCSV returns data rows plus a lower-cased header name to column
// index map.
func readCSV(r io.Reader) ([][]string, map[string]int, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	all, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(all) < 2 {
		return nil, nil, fmt.Errorf("csv has no data rows")
	}
	cols := make(map[string]int, len(all[0]))
	for i, name := range all[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return all[1:], cols, nil
}
