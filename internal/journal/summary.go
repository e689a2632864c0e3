package journal

import "NiftyPulse/internal/domain/models"

// ClosePnL computes realized P&L for a short option leg. Selling collects
// the entry premium, so profit is entry minus exit times quantity.
func ClosePnL(entryPrice, exitPrice float64, quantity int64) (pnl, pnlPct float64) {
	pnl = (entryPrice - exitPrice) * float64(quantity)
	if entryPrice > 0 {
		pnlPct = (entryPrice - exitPrice) / entryPrice * 100
	}
	return pnl, pnlPct
}

// Summarize aggregates closed trades into a performance summary. Open
// trades are skipped. days is echoed back for the caller's window label.
func Summarize(trades []models.TradeRecord, days int) models.PerformanceSummary {
	s := models.PerformanceSummary{Days: days}

	var holdTotal int64
	for _, t := range trades {
		if !t.Closed() {
			continue
		}
		s.TotalTrades++
		s.TotalPnL += t.RealizedPnL
		holdTotal += t.HoldMinutes

		switch {
		case t.RealizedPnL > 0:
			s.WinningTrades++
			if t.RealizedPnL > s.LargestWin {
				s.LargestWin = t.RealizedPnL
			}
		case t.RealizedPnL < 0:
			s.LosingTrades++
			if t.RealizedPnL < s.LargestLoss {
				s.LargestLoss = t.RealizedPnL
			}
		}

		switch t.EmotionalState {
		case "fear", "panic":
			s.TradesInFear++
		case "greed", "overconfident":
			s.TradesInGreed++
		}
		if t.ExitReason == "gamma_panic" || (t.HoldMinutes > 0 && t.HoldMinutes < panicHoldMins) {
			s.PanicExits++
		}
		if t.IsZeroDTE {
			s.ZeroDTETrades++
		}
	}

	if s.TotalTrades > 0 {
		s.WinRate = float64(s.WinningTrades) / float64(s.TotalTrades) * 100
		s.AvgHoldMins = float64(holdTotal) / float64(s.TotalTrades)
	}
	return s
}
