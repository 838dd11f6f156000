// wheelcommittee: live market data and options-income analysis.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/seenimoa/wheelcommittee/api"
	"github.com/seenimoa/wheelcommittee/internal/advisor"
	"github.com/seenimoa/wheelcommittee/internal/config"
	"github.com/seenimoa/wheelcommittee/internal/logging"
	"github.com/seenimoa/wheelcommittee/internal/metrics"
	"github.com/seenimoa/wheelcommittee/internal/presenter"
	"github.com/seenimoa/wheelcommittee/pkg/models"
	"github.com/seenimoa/wheelcommittee/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger, set by the root command.
var (
	cfg    *config.Config
	logger zerolog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "wheelcommittee",
	Short: "wheelcommittee — live market data for options-income strategies",
	Long: `wheelcommittee fetches quotes, bounded option chains and IV rank from
Yahoo Finance, renders them for the wheel, PMCC and vertical spread
strategies, and optionally asks an LLM committee to plan trades.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; real environment variables win.
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}

		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Logging.Level = level
		}
		logger, err = logging.New(logging.Config{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			Output: cfg.Logging.Output,
		})
		if err != nil {
			return fmt.Errorf("failed to set up logging: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(chainCmd)
	rootCmd.AddCommand(ivrankCmd)
	rootCmd.AddCommand(marketCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(manageCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wheelcommittee %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		rec := metrics.New(reg)

		market := newMarketClient(rec)
		opts := []api.Option{api.WithLogger(logger), api.WithMetrics(rec)}
		if adv, err := newAdvisor(market); err != nil {
			return err
		} else if adv != nil {
			opts = append(opts, api.WithAdvisor(adv))
		} else {
			logger.Warn().Msg("no Anthropic API key configured; analysis endpoints disabled")
		}

		api.Version = version
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return api.NewServer(cfg, market, opts...).ListenAndServe(ctx)
	},
}

// --- Market data commands ---

var quoteCmd = &cobra.Command{
	Use:   "quote [ticker...]",
	Short: "Fetch quotes for one or more tickers",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		tickers := capArgs(args)
		quotes := newMarketClient(nil).FetchQuotes(ctx, tickers)
		for _, t := range distinct(tickers) {
			q := quotes[t]
			if q.Error.Valid {
				fmt.Printf("%-6s error: %s\n", t, q.Error.String)
				continue
			}
			fmt.Printf("%-6s $%s  %s (%s%%)\n", t,
				utils.FormatFixed(q.Price, 2, "N/A"),
				utils.FormatFixed(q.Change, 2, "N/A"),
				utils.FormatFixed(q.ChangePercent, 2, "N/A"))
		}
		return nil
	},
}

var chainCmd = &cobra.Command{
	Use:   "chain [ticker]",
	Short: "Fetch the bounded options chain of a ticker as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()
		return printJSON(newMarketClient(nil).FetchOptionsChain(ctx, args[0]))
	},
}

var ivrankCmd = &cobra.Command{
	Use:   "ivrank [ticker...]",
	Short: "Compute IV rank and percentile for one or more tickers",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		tickers := capArgs(args)
		ranks := newMarketClient(nil).FetchIVRanks(ctx, tickers)
		for _, t := range distinct(tickers) {
			r := ranks[t]
			if r.Error.Valid && !r.CurrentIV.Valid {
				fmt.Printf("%-6s error: %s\n", t, r.Error.String)
				continue
			}
			line := fmt.Sprintf("%-6s IV %s%%  rank %s  pct %s  range %s-%s  (%d obs, %d skipped)",
				t,
				utils.FormatNull(r.CurrentIV),
				utils.FormatNull(r.IVRank),
				utils.FormatNull(r.IVPercentile),
				utils.FormatNull(r.IV52WeekLow),
				utils.FormatNull(r.IV52WeekHigh),
				r.Observations, r.SkippedWindows)
			if r.Error.Valid {
				line += "  " + r.Error.String
			}
			fmt.Println(line)
		}
		return nil
	},
}

var marketCmd = &cobra.Command{
	Use:   "market [ticker...]",
	Short: "Render live market data for a strategy as markdown",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := modeFlag(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		tickers := capArgs(args)
		data := newMarketClient(nil).FetchAll(ctx, tickers)
		fmt.Println(presenter.RenderText(mode, tickers, data))
		return nil
	},
}

func init() {
	marketCmd.Flags().String("mode", "wheel", "strategy view: wheel, pmcc or spreads")
}

// --- Analyze Command ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze [ticker...]",
	Short: "Run the LLM committee analysis over a watchlist",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := modeFlag(cmd)
		if err != nil {
			return err
		}
		adv, err := newAdvisor(newMarketClient(nil))
		if err != nil {
			return err
		}
		if adv == nil {
			return fmt.Errorf("analysis requires an Anthropic API key (ANTHROPIC_API_KEY)")
		}

		account := advisor.DefaultAccount()
		flags := cmd.Flags()
		account.AccountSize, _ = flags.GetFloat64("account-size")
		account.CashAvailable, _ = flags.GetFloat64("cash")
		account.Mode, _ = flags.GetString("account-mode")
		account.TargetDelta, _ = flags.GetFloat64("delta")
		account.TargetDTE, _ = flags.GetInt("dte")
		account.MarketOutlook, _ = flags.GetString("outlook")

		ctx, cancel := commandContext(cmd)
		defer cancel()
		res, err := adv.Analyze(ctx, mode, account, args)
		if err != nil {
			return err
		}

		asJSON, _ := flags.GetBool("json")
		if asJSON {
			return printJSON(res)
		}
		fmt.Println(res.FullAnalysis)
		if res.Truncated {
			fmt.Fprintln(os.Stderr, "warning: response was truncated at the token limit")
		}
		return nil
	},
}

func init() {
	def := advisor.DefaultAccount()
	f := analyzeCmd.Flags()
	f.String("mode", "wheel", "strategy: wheel, pmcc or spreads")
	f.Float64("account-size", def.AccountSize, "account size in dollars")
	f.Float64("cash", def.CashAvailable, "cash available in dollars")
	f.String("account-mode", def.Mode, "cash_secured or margin")
	f.Float64("delta", def.TargetDelta, "target short delta")
	f.Int("dte", def.TargetDTE, "target days to expiration")
	f.String("outlook", def.MarketOutlook, "bullish, neutral or bearish")
	f.Bool("json", false, "print the parsed result as JSON")
}

var manageCmd = &cobra.Command{
	Use:   "manage [ticker]",
	Short: "Ask for a roll, close or hold recommendation on an open option",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		adv, err := newAdvisor(newMarketClient(nil))
		if err != nil {
			return err
		}
		if adv == nil {
			return fmt.Errorf("roll analysis requires an Anthropic API key (ANTHROPIC_API_KEY)")
		}

		flags := cmd.Flags()
		pos := advisor.Position{Ticker: args[0]}
		pos.Type, _ = flags.GetString("type")
		pos.Strike, _ = flags.GetFloat64("strike")
		pos.Expiry, _ = flags.GetString("expiry")
		pos.Premium, _ = flags.GetFloat64("premium")
		pos.Opened, _ = flags.GetString("opened")
		pos.DTE, _ = flags.GetInt("dte")

		ctx, cancel := commandContext(cmd)
		defer cancel()
		res, err := adv.Manage(ctx, pos, advisor.DefaultAccount())
		if err != nil {
			return err
		}

		if asJSON, _ := flags.GetBool("json"); asJSON {
			return printJSON(res)
		}
		fmt.Println(res.FullAnalysis)
		if rr := res.RollRecommendation; rr != nil {
			fmt.Println()
			switch rr.Action {
			case advisor.ActionRoll:
				dte := utils.Dash
				if rr.NewDTE.Valid {
					dte = fmt.Sprint(rr.NewDTE.Int64)
				}
				fmt.Printf("ROLL to $%s %s (%s DTE), net %s: %s\n",
					utils.FormatNull(rr.NewStrike), rr.NewExpiry.String, dte,
					utils.FormatFixed(rr.NetCredit, 2, "N/A"), rr.Rationale)
			case advisor.ActionClose, advisor.ActionHold:
				fmt.Printf("%s: %s\n", rr.Action, rr.Rationale)
			}
		}
		return nil
	},
}

func init() {
	f := manageCmd.Flags()
	f.String("type", "PUT", "position type: PUT or CALL")
	f.Float64("strike", 0, "strike of the open option")
	f.String("expiry", "", "expiration date of the open option (YYYY-MM-DD)")
	f.Float64("premium", 0, "premium received per share")
	f.String("opened", "", "date the position was opened")
	f.Int("dte", 0, "days to expiration remaining")
	f.Bool("json", false, "print the parsed result as JSON")
	_ = manageCmd.MarkFlagRequired("strike")
	_ = manageCmd.MarkFlagRequired("expiry")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  wheelcommittee — System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		fmt.Printf("  Market Status: %s\n", utils.MarketStatus(time.Now()))
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    LLM Model:     %s (analysis %s)\n", cfg.LLM.Model, enabled(cfg.LLM.Enabled()))
		fmt.Printf("    Market Data:   %s (timeout %s)\n", cfg.MarketData.BaseURL, cfg.MarketData.HTTPTimeout)
		fmt.Printf("    Expirations:   nearest + %d\n", cfg.MarketData.ExtraExpirations)
		fmt.Printf("    API Server:    %s\n", cfg.API.Addr())
		fmt.Println()

		fmt.Println("  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "not set"
			if k.IsSet {
				status = fmt.Sprintf("set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-25s %s\n", k.Name+":", status)
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}

// --- helpers ---

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), cfg.API.RequestTimeout)
}

func modeFlag(cmd *cobra.Command) (models.StrategyMode, error) {
	s, _ := cmd.Flags().GetString("mode")
	mode, ok := models.ParseStrategyMode(s)
	if !ok {
		return "", fmt.Errorf("unknown mode %q (want wheel, pmcc or spreads)", s)
	}
	return mode, nil
}

func capArgs(args []string) []string {
	return utils.CapTickers(args, cfg.MarketData.MaxTickers)
}

// distinct normalizes and de-duplicates tickers in argument order.
func distinct(tickers []string) []string {
	seen := make(map[string]bool, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		t = utils.NormalizeTicker(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func enabled(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}
