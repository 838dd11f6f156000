package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/seenimoa/wheelcommittee/internal/advisor"
	"github.com/seenimoa/wheelcommittee/internal/llm"
	"github.com/seenimoa/wheelcommittee/internal/presenter"
	"github.com/seenimoa/wheelcommittee/pkg/models"
	"github.com/seenimoa/wheelcommittee/pkg/utils"
)

// MsgNoTickers is the 400 message for an empty ticker list.
const MsgNoTickers = "No tickers provided"

// TickersRequest is the body of the batch endpoints. Tickers are taken as
// given; Watchlist is free text filtered to plain 1-5 letter symbols.
type TickersRequest struct {
	Tickers   []string `json:"tickers" validate:"dive,max=16"`
	Watchlist string   `json:"watchlist"`
}

// AnalyzeRequest is the body for POST /api/v1/analyze/{mode}.
type AnalyzeRequest struct {
	TickersRequest
	Account advisor.Account `json:"account"`
}

// ManageRequest is the body for POST /api/v1/manage.
type ManageRequest struct {
	Position advisor.Position `json:"position"`
	Account  advisor.Account  `json:"account"`
}

// MarketView is the rendered strategy view of a batch.
type MarketView struct {
	Mode     models.StrategyMode `json:"mode"`
	Sections []presenter.Section `json:"sections"`
	Text     string              `json:"text"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// bind decodes the JSON body into v, applies defaults and validates it.
func bind(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := defaults.Set(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

// symbols merges the explicit ticker list with the parsed watchlist, drops
// blanks and caps the result.
func (s *Server) symbols(req TickersRequest) []string {
	out := make([]string, 0, len(req.Tickers))
	for _, t := range req.Tickers {
		if t = utils.NormalizeTicker(t); t != "" {
			out = append(out, t)
		}
	}
	out = append(out, utils.ParseWatchlist(req.Watchlist)...)
	return utils.CapTickers(out, s.maxTickers())
}

// bindTickers binds a TickersRequest and writes the 400 itself on failure.
func (s *Server) bindTickers(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	var req TickersRequest
	if err := bind(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	tickers := s.symbols(req)
	if len(tickers) == 0 {
		writeError(w, http.StatusBadRequest, MsgNoTickers)
		return nil, false
	}
	return tickers, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeData(w, map[string]any{
		"status":        "ok",
		"version":       Version,
		"source":        s.market.SourceName(),
		"analysis":      s.advisor != nil,
		"market_status": utils.MarketStatus(time.Now()),
	})
}

func (s *Server) handleQuotes(w http.ResponseWriter, r *http.Request) {
	tickers, ok := s.bindTickers(w, r)
	if !ok {
		return
	}
	writeData(w, s.market.FetchQuotes(r.Context(), tickers))
}

func (s *Server) handleIVRank(w http.ResponseWriter, r *http.Request) {
	tickers, ok := s.bindTickers(w, r)
	if !ok {
		return
	}
	writeData(w, s.market.FetchIVRanks(r.Context(), tickers))
}

func (s *Server) handleMarketData(w http.ResponseWriter, r *http.Request) {
	tickers, ok := s.bindTickers(w, r)
	if !ok {
		return
	}
	writeData(w, s.market.FetchAll(r.Context(), tickers))
}

func (s *Server) handleMarketView(w http.ResponseWriter, r *http.Request) {
	mode, ok := models.ParseStrategyMode(chi.URLParam(r, "mode"))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown mode: "+chi.URLParam(r, "mode"))
		return
	}
	tickers, ok := s.bindTickers(w, r)
	if !ok {
		return
	}

	sections := presenter.Render(mode, tickers, s.market.FetchAll(r.Context(), tickers))
	writeData(w, MarketView{
		Mode:     mode,
		Sections: sections,
		Text:     presenter.Join(sections),
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	mode, ok := models.ParseStrategyMode(chi.URLParam(r, "mode"))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown mode: "+chi.URLParam(r, "mode"))
		return
	}

	var req AnalyzeRequest
	if err := bind(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Account.Prepare(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tickers := s.symbols(req.TickersRequest)
	if len(tickers) == 0 {
		writeError(w, http.StatusBadRequest, MsgNoTickers)
		return
	}

	res, err := s.advisor.Analyze(r.Context(), mode, req.Account, tickers)
	if err != nil {
		status := analyzeStatus(err)
		s.log.Error().Err(err).Str("mode", string(mode)).Int("status", status).Msg("analysis failed")
		writeError(w, status, strings.TrimPrefix(err.Error(), string(mode)+" analysis: "))
		return
	}
	writeData(w, res)
}

func (s *Server) handleManage(w http.ResponseWriter, r *http.Request) {
	var req ManageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := req.Position.Prepare(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Account.Prepare(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.advisor.Manage(r.Context(), req.Position, req.Account)
	if err != nil {
		status := analyzeStatus(err)
		s.log.Error().Err(err).Str("ticker", req.Position.Ticker).Int("status", status).Msg("roll analysis failed")
		writeError(w, status, strings.TrimPrefix(err.Error(), "manage analysis: "))
		return
	}
	writeData(w, res)
}

// analyzeStatus maps an analysis failure to an HTTP status.
func analyzeStatus(err error) int {
	switch {
	case errors.Is(err, advisor.ErrNoTickers):
		return http.StatusBadRequest
	case errors.Is(err, llm.ErrRateLimit):
		return http.StatusTooManyRequests
	case errors.Is(err, llm.ErrNoAPIKey):
		return http.StatusServiceUnavailable
	case errors.Is(err, llm.ErrProviderDown), errors.Is(err, llm.ErrEmptyResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
