package api

import (
	"net/http"

	"github.com/seenimoa/wheelcommittee/internal/config"
)

// ConfigResponse is the running configuration with secrets removed.
type ConfigResponse struct {
	LLM struct {
		Enabled   bool   `json:"enabled"`
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
	} `json:"llm"`
	MarketData config.MarketDataConfig `json:"market_data"`
	API        config.APIConfig        `json:"api"`
	Logging    config.LoggingConfig    `json:"logging"`
}

// handleGetConfig returns the running configuration without API keys.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	var resp ConfigResponse
	resp.LLM.Enabled = s.cfg.LLM.Enabled()
	resp.LLM.Model = s.cfg.LLM.Model
	resp.LLM.MaxTokens = s.cfg.LLM.MaxTokens
	resp.MarketData = s.cfg.MarketData
	resp.API = s.cfg.API
	resp.Logging = s.cfg.Logging
	writeData(w, resp)
}

// handleGetConfigKeys returns the masked status of every API key.
func (s *Server) handleGetConfigKeys(w http.ResponseWriter, r *http.Request) {
	writeData(w, config.CheckAPIKeys(s.cfg))
}
