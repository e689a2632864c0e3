// Package journal grades closed trades from a premium seller's point of
// view. The autopsy walks a fixed rule set over one trade record and
// produces a structured report: favorable or not, letter grades per
// dimension, and the lessons implied by each violated rule.
package journal

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"NiftyPulse/internal/domain/models"
)

// Rule thresholds, expressed in the units the trade record carries.
const (
	lowVIX      = 12.0
	normalVIX   = 15.0
	elevatedVIX = 18.0

	lowIVRank  = 30.0
	highIVRank = 50.0

	safeDeltaMax     = 0.25
	moderateDeltaMax = 0.35
	farOTMDelta      = 0.15

	highGamma    = 0.002
	extremeGamma = 0.003

	panicHoldMins = 30
	instantMins   = 15

	smallLossPct = 20.0
	maxLossPct   = 50.0
	goodWinPct   = 30.0
	greatWinPct  = 50.0
)

// Grade is a letter grade for one dimension of the trade.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

func worse(a, b Grade) Grade {
	order := map[Grade]int{GradeA: 0, GradeB: 1, GradeC: 2, GradeD: 3, GradeF: 4}
	if order[b] > order[a] {
		return b
	}
	return a
}

// MarketConditions judges the selling environment the trade was entered in.
type MarketConditions struct {
	VIXEnvironment string   `json:"vix_environment"`
	IVRankView     string   `json:"iv_rank_assessment"`
	SpotMovePct    float64  `json:"spot_movement"`
	Favorable      bool     `json:"was_favorable"`
	Warnings       []string `json:"warnings"`
}

// TimingAnalysis judges the entry window.
type TimingAnalysis struct {
	Grade            Grade    `json:"entry_timing_grade"`
	ShouldHaveWaited bool     `json:"should_have_waited"`
	Reasons          []string `json:"reasons"`
	Lessons          []string `json:"-"`
}

// PositionQuality judges strike and Greek exposure at entry.
type PositionQuality struct {
	Grade           Grade    `json:"position_grade"`
	StrikeSelection string   `json:"strike_selection"`
	RiskNotes       []string `json:"risk_assessment"`
	Lessons         []string `json:"-"`
}

// ExitAnalysis judges the exit decision against the realized outcome.
type ExitAnalysis struct {
	Grade             Grade    `json:"exit_grade"`
	Optimal           bool     `json:"was_optimal"`
	MissedOpportunity bool     `json:"missed_opportunity"`
	Insights          []string `json:"insights"`
	Lessons           []string `json:"-"`
}

// GreekBehavior describes how delta and gamma played out during the hold.
type GreekBehavior struct {
	DeltaImpact string   `json:"delta_impact"`
	GammaImpact string   `json:"gamma_impact"`
	Insights    []string `json:"insights"`
}

// DisciplineReview judges behavioral factors.
type DisciplineReview struct {
	Grade      Grade    `json:"discipline_grade"`
	Systematic bool     `json:"was_systematic"`
	Insights   []string `json:"insights"`
}

// Autopsy is the full post-trade report.
type Autopsy struct {
	TradeID    string           `json:"trade_id"`
	Winner     bool             `json:"was_winner"`
	Market     MarketConditions `json:"market_conditions"`
	Timing     TimingAnalysis   `json:"timing_analysis"`
	Position   PositionQuality  `json:"position_quality"`
	Exit       ExitAnalysis     `json:"exit_analysis"`
	Greeks     GreekBehavior    `json:"greek_behavior"`
	Discipline DisciplineReview `json:"emotional_factors"`
	WentRight  []string         `json:"what_went_right"`
	WentWrong  []string         `json:"what_went_wrong"`
	Lessons    []string         `json:"lessons"`
	NextTime   []string         `json:"next_time"`
}

// Analyze runs the complete rule set over one closed trade.
func Analyze(t models.TradeRecord) Autopsy {
	a := Autopsy{
		TradeID:    t.TradeID,
		Winner:     t.RealizedPnL > 0,
		Market:     analyzeMarket(t),
		Timing:     analyzeTiming(t),
		Position:   analyzePosition(t),
		Exit:       analyzeExit(t),
		Greeks:     analyzeGreeks(t),
		Discipline: analyzeDiscipline(t),
	}
	compile(&a)
	return a
}

func analyzeMarket(t models.TradeRecord) MarketConditions {
	m := MarketConditions{VIXEnvironment: "Unknown", IVRankView: "Unknown", Favorable: true}

	if t.VIXAtEntry > 0 {
		switch {
		case t.VIXAtEntry < lowVIX:
			m.VIXEnvironment = "Low (dangerous for sellers)"
			m.Favorable = false
			m.Warnings = append(m.Warnings, "VIX was too low, premiums compressed with limited profit potential")
		case t.VIXAtEntry < normalVIX:
			m.VIXEnvironment = "Normal"
		case t.VIXAtEntry < elevatedVIX:
			m.VIXEnvironment = "Elevated (good for sellers)"
		default:
			m.VIXEnvironment = "High (excellent for sellers)"
		}
	}

	if t.VIXAtEntry > 0 && t.VIXAtExit > 0 {
		spikePct := (t.VIXAtExit - t.VIXAtEntry) / t.VIXAtEntry * 100
		if spikePct > 10 {
			m.Warnings = append(m.Warnings, fmt.Sprintf("VIX spiked %.1f%% during the trade", spikePct))
		}
	}

	if t.IVRankAtEntry > 0 {
		switch {
		case t.IVRankAtEntry < lowIVRank:
			m.IVRankView = "Low (<30) - premium risk"
			m.Warnings = append(m.Warnings, "IV rank was low, minimal edge and premiums could collapse further")
		case t.IVRankAtEntry < highIVRank:
			m.IVRankView = "Medium (30-50)"
		default:
			m.IVRankView = "High (>50) - good selling opportunity"
		}
	}

	if t.SpotAtEntry > 0 && t.SpotAtExit > 0 {
		m.SpotMovePct = (t.SpotAtExit - t.SpotAtEntry) / t.SpotAtEntry * 100
		if math.Abs(m.SpotMovePct) > 2 {
			m.Warnings = append(m.Warnings, fmt.Sprintf("large spot movement: %+.2f%%", m.SpotMovePct))
		}
	}

	if t.IsZeroDTE {
		m.Warnings = append(m.Warnings, "0 DTE trade, extreme gamma risk and theta cannot offset it")
	} else if t.DTEAtEntry > 0 && t.DTEAtEntry < 2 {
		m.Warnings = append(m.Warnings, fmt.Sprintf("very close to expiry (%d days), high gamma risk", t.DTEAtEntry))
	}

	if t.HourOfEntry > 0 && t.HourOfEntry < 10 {
		m.Warnings = append(m.Warnings, "entered in the first hour, high volatility window")
	} else if t.HourOfEntry >= 15 {
		m.Warnings = append(m.Warnings, "entered late in the day, limited time for theta to work")
	}

	if t.DayOfWeek == "Monday" || t.DayOfWeek == "Friday" {
		m.Warnings = append(m.Warnings, "traded on "+t.DayOfWeek+", statistically a higher volatility day")
	}

	return m
}

func analyzeTiming(t models.TradeRecord) TimingAnalysis {
	ta := TimingAnalysis{Grade: GradeB}

	if t.HourOfEntry > 0 && t.HourOfEntry < 10 {
		ta.ShouldHaveWaited = true
		ta.Reasons = append(ta.Reasons, "entered during the morning volatility spike")
		ta.Lessons = append(ta.Lessons, "Wait until 10:30 AM for volatility to settle")
		ta.Grade = GradeD
	}

	if t.GammaAtEntry > highGamma && t.HourOfEntry > 0 && t.HourOfEntry < 11 {
		ta.ShouldHaveWaited = true
		ta.Reasons = append(ta.Reasons, "high gamma combined with an early entry")
		ta.Lessons = append(ta.Lessons, "Wait for gamma to cool or spot to stabilize before entering")
	}

	if t.VIXAtEntry > elevatedVIX && t.HourOfEntry > 0 && t.HourOfEntry < 12 {
		ta.ShouldHaveWaited = true
		ta.Reasons = append(ta.Reasons, "VIX was elevated early in the day, a better entry was likely later")
	}

	if t.IsExpiryDay || t.IsZeroDTE {
		if t.HourOfEntry > 0 && t.HourOfEntry < 14 {
			ta.Reasons = append(ta.Reasons, "expiry day trade before 2 PM, the maximum gamma risk window")
			ta.Lessons = append(ta.Lessons, "On expiry day trade only after 2 PM or not at all")
			ta.Grade = GradeF
		} else {
			ta.Reasons = append(ta.Reasons, "expiry day entry after 2 PM, acceptable risk window")
			ta.Grade = GradeB
		}
	}

	if t.IVRankAtEntry > 0 && t.IVRankAtEntry < lowIVRank {
		ta.ShouldHaveWaited = true
		ta.Reasons = append(ta.Reasons, "IV rank under 30, premium too low")
		ta.Lessons = append(ta.Lessons, "Wait for IV rank above 40 for meaningful premium")
	}

	if !ta.ShouldHaveWaited {
		if t.DTEAtEntry >= 3 && t.VIXAtEntry > normalVIX {
			ta.Reasons = append(ta.Reasons, "good entry: sufficient DTE and decent VIX")
			ta.Grade = GradeA
		}
		if t.HourOfEntry >= 11 && t.HourOfEntry <= 14 {
			ta.Reasons = append(ta.Reasons, "entered in stable trading hours (11 AM - 2 PM)")
		}
	}

	return ta
}

func analyzePosition(t models.TradeRecord) PositionQuality {
	q := PositionQuality{Grade: GradeB, StrikeSelection: "Unknown"}

	if t.DeltaAtEntry != 0 {
		absDelta := math.Abs(t.DeltaAtEntry)
		switch {
		case absDelta < farOTMDelta:
			q.StrikeSelection = "Far OTM (delta <0.15) - very safe but low premium"
			q.RiskNotes = append(q.RiskNotes, "conservative strike, low probability of being tested")
		case absDelta < safeDeltaMax:
			q.StrikeSelection = "Safe OTM (delta 0.15-0.25) - good balance"
			q.RiskNotes = append(q.RiskNotes, "optimal strike selection for income generation")
			q.Grade = GradeA
		case absDelta < moderateDeltaMax:
			q.StrikeSelection = "Moderate OTM (delta 0.25-0.35) - higher risk"
			q.RiskNotes = append(q.RiskNotes, "decent premium but higher probability of loss")
		default:
			q.StrikeSelection = "Close to ATM (delta >0.35) - high risk"
			q.RiskNotes = append(q.RiskNotes, "too close to the money, high risk of assignment")
			q.Lessons = append(q.Lessons, "Use wider strikes, target delta below 0.25")
			q.Grade = GradeD
		}
	}

	if t.GammaAtEntry > extremeGamma {
		q.RiskNotes = append(q.RiskNotes, "extremely high gamma, position could explode against you")
		q.Lessons = append(q.Lessons, "Avoid positions with gamma above 0.003")
		q.Grade = GradeF
	} else if t.GammaAtEntry > highGamma {
		q.RiskNotes = append(q.RiskNotes, "high gamma, requires close monitoring")
		q.Lessons = append(q.Lessons, "Consider rolling to wider strikes when gamma is high")
	}

	if t.ThetaAtEntry != 0 && t.DTEAtEntry > 0 && t.DTEAtEntry < 2 && math.Abs(t.ThetaAtEntry) < 10 {
		q.RiskNotes = append(q.RiskNotes, "low theta near expiry, not worth the gamma risk")
		q.Lessons = append(q.Lessons, "Near expiry theta must be substantial to justify the risk")
	}

	if t.Strike > 0 && t.SpotAtEntry > 0 {
		distancePct := math.Abs(t.Strike-t.SpotAtEntry) / t.SpotAtEntry * 100
		switch {
		case distancePct < 1:
			q.RiskNotes = append(q.RiskNotes, fmt.Sprintf("strike too close (%.1f%% from spot)", distancePct))
			q.Lessons = append(q.Lessons, "Maintain at least a 2% buffer from spot")
		case distancePct < 2:
			q.RiskNotes = append(q.RiskNotes, fmt.Sprintf("moderate distance (%.1f%% from spot)", distancePct))
		default:
			q.RiskNotes = append(q.RiskNotes, fmt.Sprintf("safe distance (%.1f%% from spot)", distancePct))
		}
	}

	return q
}

func analyzeExit(t models.TradeRecord) ExitAnalysis {
	e := ExitAnalysis{Grade: GradeB, Optimal: true}

	if t.HoldMinutes > 0 && t.HoldMinutes < panicHoldMins {
		e.Optimal = false
		e.Insights = append(e.Insights, "extremely quick exit (<30 mins), likely panic")
		e.Lessons = append(e.Lessons, "Wait at least 30-60 minutes for noise to settle")
		e.Grade = GradeF
	}

	switch t.EmotionalState {
	case "fear", "panic", "impatient":
		e.Optimal = false
		e.Insights = append(e.Insights, "exit driven by "+t.EmotionalState+", not systematic")
		e.Lessons = append(e.Lessons, "Follow predefined exit rules, not emotions")
		e.Grade = worse(e.Grade, GradeD)
	}

	switch {
	case t.RealizedPnL < 0:
		lossPct := math.Abs(t.RealizedPnLPct)
		switch {
		case lossPct < smallLossPct:
			e.Insights = append(e.Insights, fmt.Sprintf("small loss (%.1f%%), could have been avoided", lossPct))
			if t.ExitReason == "manual" && t.HoldMinutes > 0 && t.HoldMinutes < 60 {
				e.Insights = append(e.Insights, "likely exited during a temporary volatility spike")
				e.Lessons = append(e.Lessons, "Set the stop at 50% loss and give the position breathing room")
			}
		case lossPct < maxLossPct:
			e.Insights = append(e.Insights, fmt.Sprintf("moderate loss (%.1f%%), within acceptable range", lossPct))
			if t.ExitReason == "stop_loss" {
				e.Insights = append(e.Insights, "systematic exit at stop loss, good discipline")
			}
		default:
			e.Insights = append(e.Insights, fmt.Sprintf("large loss (%.1f%%), the stop was too late", lossPct))
			e.Lessons = append(e.Lessons, "Exit at 50% loss maximum for short options")
			e.Grade = GradeF
		}

	case t.RealizedPnL > 0:
		if t.MaxProfit > 0 && t.RealizedPnL < t.MaxProfit*0.7 {
			e.MissedOpportunity = true
			e.Insights = append(e.Insights, fmt.Sprintf("exited early, peak profit was %.1fx the realized", t.MaxProfit/t.RealizedPnL))
			e.Lessons = append(e.Lessons, "Use trailing stops or target 50-70% of max profit")
		}
		switch {
		case t.RealizedPnLPct >= greatWinPct:
			e.Insights = append(e.Insights, fmt.Sprintf("excellent exit at %.1f%% profit", t.RealizedPnLPct))
			e.Grade = GradeA
		case t.RealizedPnLPct >= goodWinPct:
			e.Insights = append(e.Insights, fmt.Sprintf("good exit at %.1f%% profit", t.RealizedPnLPct))
		default:
			e.Insights = append(e.Insights, fmt.Sprintf("small profit (%.1f%%), could have waited", t.RealizedPnLPct))
		}
	}

	if t.ExitReason == "gamma_panic" {
		e.Insights = append(e.Insights, "exited on gamma panic, the position was never properly sized")
		e.Lessons = append(e.Lessons, "If gamma scares you the position is too big or too close")
		e.Grade = worse(e.Grade, GradeD)
	}

	if t.VIXAtExit-t.VIXAtEntry > 1.5 && t.VIXAtEntry > 0 && t.RealizedPnL < 0 {
		e.Insights = append(e.Insights, "right to exit during the VIX spike, avoided a bigger loss")
		e.Grade = GradeA
	}

	return e
}

func analyzeGreeks(t models.TradeRecord) GreekBehavior {
	g := GreekBehavior{DeltaImpact: "Unknown", GammaImpact: "Unknown"}

	if t.DeltaAtEntry != 0 && t.DeltaAtExit != 0 {
		deltaChange := math.Abs(t.DeltaAtExit) - math.Abs(t.DeltaAtEntry)
		switch {
		case deltaChange > 0.10:
			g.DeltaImpact = "Position moved significantly closer to ATM"
			g.Insights = append(g.Insights, "delta increased by more than 0.10, the position was tested")
		case deltaChange > 0.05:
			g.DeltaImpact = "Moderate delta increase"
			g.Insights = append(g.Insights, "position approached ATM and was heading toward the danger zone")
		default:
			g.DeltaImpact = "Delta remained stable"
			g.Insights = append(g.Insights, "strike selection was safe, never seriously threatened")
		}
	}

	switch {
	case t.GammaAtEntry > extremeGamma:
		g.GammaImpact = "Extremely high gamma, position was radioactive"
		g.Insights = append(g.Insights, "gamma above 0.003 means the position can explode in minutes")
	case t.GammaAtEntry > highGamma:
		g.GammaImpact = "High gamma, required constant monitoring"
	case t.GammaAtEntry > 0:
		g.GammaImpact = "Manageable gamma"
	}

	spotMove := t.SpotAtExit - t.SpotAtEntry
	if spotMove != 0 && t.GammaAtEntry > 0 {
		if t.GammaAtEntry*math.Abs(spotMove) > 0.08 {
			g.Insights = append(g.Insights, fmt.Sprintf("spot moved %+.0f points causing a major delta shift", spotMove))
		}
	}

	return g
}

func analyzeDiscipline(t models.TradeRecord) DisciplineReview {
	d := DisciplineReview{Grade: GradeB, Systematic: t.WasPlanned}

	if !t.WasPlanned || t.Source == "broker_app" {
		d.Grade = GradeD
		d.Insights = append(d.Insights, "unplanned trade, likely emotional")
	}

	switch t.EmotionalState {
	case "fear", "panic":
		d.Insights = append(d.Insights, "fear-driven decision making")
		d.Grade = GradeF
	case "greed", "overconfident":
		d.Insights = append(d.Insights, "greed-driven trade, likely oversized or too aggressive")
		d.Grade = worse(d.Grade, GradeD)
	case "calm":
		if t.WasPlanned && t.Source != "broker_app" {
			d.Insights = append(d.Insights, "calm, systematic execution")
			d.Grade = GradeA
		}
	}

	if t.HoldMinutes > 0 && t.HoldMinutes < instantMins {
		d.Insights = append(d.Insights, "exit within 15 minutes means pure panic, no analysis")
	}

	if t.ExitReason == "manual" && t.RealizedPnL < 0 {
		d.Insights = append(d.Insights, "manual exit on a loss, was there a plan?")
	}

	return d
}

func compile(a *Autopsy) {
	if a.Winner {
		a.WentRight = append(a.WentRight, "trade was profitable")
	} else {
		a.WentWrong = append(a.WentWrong, "trade resulted in a loss")
	}

	if !a.Timing.ShouldHaveWaited {
		a.WentRight = append(a.WentRight, "entry timing was good")
	} else {
		a.WentWrong = append(a.WentWrong, "poor entry timing, should have waited")
	}

	if a.Position.Grade == GradeA || a.Position.Grade == GradeB {
		a.WentRight = append(a.WentRight, "strike selection was appropriate")
	} else {
		a.WentWrong = append(a.WentWrong, "strike selection was too aggressive")
	}

	if a.Discipline.Grade == GradeA || a.Discipline.Grade == GradeB {
		a.WentRight = append(a.WentRight, "trade was systematic and planned")
	} else {
		a.WentWrong = append(a.WentWrong, "trade lacked discipline or planning")
	}

	if a.Market.Favorable && (a.Market.VIXEnvironment == "Elevated (good for sellers)" ||
		a.Market.VIXEnvironment == "High (excellent for sellers)") {
		a.WentRight = append(a.WentRight, "sold premium in a favorable VIX environment")
	}
	if !a.Market.Favorable {
		a.WentWrong = append(a.WentWrong, "market conditions were unfavorable for selling")
	}

	a.Lessons = dedupe(append(append(append([]string{}, a.Timing.Lessons...), a.Position.Lessons...), a.Exit.Lessons...))
	a.NextTime = actionItems(a)
}

func actionItems(a *Autopsy) []string {
	var actions []string

	if a.Timing.ShouldHaveWaited {
		actions = append(actions, "TIMING: wait for a 10:30 AM entry, avoid morning volatility")
	}
	if a.Market.IVRankView == "Low (<30) - premium risk" {
		actions = append(actions, "IV: do not sell when IV rank is below 30, wait for expansion above 40")
	}
	if a.Position.Grade == GradeD || a.Position.Grade == GradeF {
		actions = append(actions, "STRIKES: use wider strikes, target delta below 0.25")
	}
	for _, note := range a.Position.RiskNotes {
		if note == "extremely high gamma, position could explode against you" ||
			note == "high gamma, requires close monitoring" {
			actions = append(actions, "GAMMA: never sell options with gamma above 0.0025")
			break
		}
	}
	for _, w := range a.Market.Warnings {
		if strings.Contains(w, "DTE") || strings.Contains(w, "close to expiry") {
			actions = append(actions, "DTE: avoid trading with under 3 DTE, gamma risk is too high")
			break
		}
	}
	if a.Discipline.Grade == GradeD || a.Discipline.Grade == GradeF {
		actions = append(actions, "DISCIPLINE: plan the trade in advance, set stops before entering")
	}
	if a.Exit.Grade != GradeA && a.Exit.Grade != GradeB {
		actions = append(actions, "EXITS: always use a 50% loss stop and a 70% profit target")
	}

	return actions
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
