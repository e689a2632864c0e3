package api

import (
	"encoding/json"
	"net/http"
	"time"

	icache "NiftyPulse/internal/service/cache"
	"NiftyPulse/internal/service/metrics"
	"NiftyPulse/internal/service/ratelimit"
	"NiftyPulse/internal/usecase"
	applogger "NiftyPulse/pkg/logger"
	"NiftyPulse/pkg/util"

	"github.com/labstack/echo/v4"
)

// MarketHandler serves the analysis endpoints over plain net/http, with
// per-client rate limiting and short response caching.
type MarketHandler struct {
	analyze *usecase.AnalyzeUseCase
	history *usecase.HistoryUseCase
	cache   icache.BytesCache
	rl      *ratelimit.Limiter
	l       *applogger.Logger
}

func NewMarketHandler(analyze *usecase.AnalyzeUseCase, history *usecase.HistoryUseCase) *MarketHandler {
	metrics.Register()
	return &MarketHandler{analyze: analyze, history: history, rl: ratelimit.New()}
}

func (h *MarketHandler) SetCache(c icache.BytesCache) { h.cache = c }

// SetLogger injects a structured logger.
func (h *MarketHandler) SetLogger(l *applogger.Logger) { h.l = l }

// RegisterRoutes mounts the plain handlers on the Echo server under /v0.
func (h *MarketHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/v0")
	g.GET("/analyze", echo.WrapHandler(h.Analyze()))
	g.GET("/history", echo.WrapHandler(h.History()))
}

func (h *MarketHandler) Analyze() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		endpoint := "analyze"
		defer func() { metrics.AnalyticsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

		if !h.rl.Allow(r.RemoteAddr+":analyze", 5, 2) {
			if h.l != nil {
				h.l.Warn("market.analyze rate_limited", applogger.String("remote", r.RemoteAddr))
			}
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}

		dte := util.ParseIntDefault(r.URL.Query().Get("dte"), -1)
		window := util.ParseFloatDefault(r.URL.Query().Get("window"), 600)

		cacheKey := "analyze:" + r.URL.Query().Encode()
		if b, ok := h.cached(cacheKey, endpoint); ok {
			h.write(w, endpoint, b)
			return
		}

		res, err := h.analyze.Analyze(r.Context(), usecase.AnalyzeParams{DTE: dte, Window: window})
		if err != nil {
			metrics.AnalyticsErrors.WithLabelValues(endpoint).Inc()
			if h.l != nil {
				h.l.Error("market.analyze error", applogger.Error(err))
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		b, err := json.Marshal(res)
		if err != nil {
			if h.l != nil {
				h.l.Error("market.analyze marshal_error", applogger.Error(err))
			}
			http.Error(w, "encode error", http.StatusInternalServerError)
			return
		}
		h.store(cacheKey, endpoint, b, 5*time.Second)
		h.write(w, endpoint, b)
	}
}

func (h *MarketHandler) History() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		endpoint := "history"
		defer func() { metrics.AnalyticsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

		if !h.rl.Allow(r.RemoteAddr+":history", 5, 2) {
			if h.l != nil {
				h.l.Warn("market.history rate_limited", applogger.String("remote", r.RemoteAddr))
			}
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}

		p := usecase.GetHistoryParams{
			From:  r.URL.Query().Get("from"),
			To:    r.URL.Query().Get("to"),
			Limit: util.ParseIntDefault(r.URL.Query().Get("limit"), 500),
		}

		cacheKey := "history:" + r.URL.Query().Encode()
		if b, ok := h.cached(cacheKey, endpoint); ok {
			h.write(w, endpoint, b)
			return
		}

		bars, err := h.history.GetHistory(r.Context(), p)
		if err != nil {
			metrics.AnalyticsErrors.WithLabelValues(endpoint).Inc()
			if h.l != nil {
				h.l.Error("market.history error", applogger.Error(err))
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		b, err := json.Marshal(bars)
		if err != nil {
			http.Error(w, "encode error", http.StatusInternalServerError)
			return
		}
		h.store(cacheKey, endpoint, b, 60*time.Second)
		h.write(w, endpoint, b)
	}
}

func (h *MarketHandler) cached(key, endpoint string) ([]byte, bool) {
	if h.cache == nil {
		return nil, false
	}
	b, ok, err := h.cache.GetBytes(key)
	if err != nil {
		if h.l != nil {
			h.l.Warn("market."+endpoint+" cache_get_error", applogger.Error(err))
		}
		return nil, false
	}
	if ok && h.l != nil {
		h.l.Debug("market."+endpoint+" cache_hit", applogger.String("key", key))
	}
	return b, ok
}

func (h *MarketHandler) store(key, endpoint string, b []byte, ttl time.Duration) {
	if h.cache == nil {
		return
	}
	if err := h.cache.SetBytes(key, b, ttl); err != nil && h.l != nil {
		h.l.Warn("market."+endpoint+" cache_set_error", applogger.Error(err))
	}
}

func (h *MarketHandler) write(w http.ResponseWriter, endpoint string, b []byte) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(b); err != nil && h.l != nil {
		h.l.Warn("market."+endpoint+" write_error", applogger.Error(err))
	}
}
