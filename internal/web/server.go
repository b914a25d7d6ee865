// Package web exposes the station over HTTP: a JSON API for treasury
// reports and swap quotes, plus an SSE stream of persisted report
// snapshots for the dashboard.
package web

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/acme/autocert"

	"github.com/vusdhub/vusd-station/internal/domain"
	"github.com/vusdhub/vusd-station/internal/services/analytics"
)

const snapshotPollInterval = 3 * time.Second

type reportProvider interface {
	Report(ctx context.Context, forceRefresh bool) (*domain.TreasuryReport, error)
}

type quoteProvider interface {
	Estimate(ctx context.Context, amount decimal.Decimal, fromSymbol, toSymbol string) (domain.SwapQuote, error)
}

type snapshotReader interface {
	SnapshotsAfter(index uint64) ([]domain.TreasuryReportRecord, error)
}

// Server exposes HTTP endpoints serving the HTML UI, the JSON API and an
// SSE stream of treasury report snapshots.
type Server struct {
	Addr      string
	Reports   reportProvider
	Quotes    quoteProvider
	Snapshots snapshotReader
}

// NewServer creates a new web server instance.
func NewServer(addr string, reports reportProvider, quotes quoteProvider, snapshots snapshotReader) *Server {
	return &Server{Addr: addr, Reports: reports, Quotes: quotes, Snapshots: snapshots}
}

func (s *Server) mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/treasury", s.handleTreasury)
	mux.HandleFunc("/api/quote", s.handleQuote)
	mux.HandleFunc("/api/ratio/sma", s.handleRatioSMA)
	mux.HandleFunc("/treasury/stream", s.handleTreasuryStream)
	return mux
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	server := &http.Server{
		Addr:              s.Addr,
		Handler:           s.mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StartWithAutoTLS runs an HTTPS server with automatic TLS certificates via ACME.
// It also starts an HTTP server on port 80 to handle ACME HTTP-01 challenges.
func (s *Server) StartWithAutoTLS(ctx context.Context, domains []string, cacheDir string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(domains) == 0 {
		return fmt.Errorf("no domains provided for automatic TLS")
	}
	if cacheDir == "" {
		cacheDir = "cert-cache"
	}

	manager := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(domains...),
		Cache:      autocert.DirCache(cacheDir),
	}

	// HTTP server on port 80 for ACME challenges and HTTP->HTTPS redirects.
	httpSrv := &http.Server{
		Addr:              ":80",
		Handler:           manager.HTTPHandler(nil),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	tlsConfig := manager.TLSConfig()
	tlsConfig.MinVersion = tls.VersionTLS12

	httpsSrv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.mux(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
		TLSConfig:         tlsConfig,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http (acme) server shutdown error: %v", err)
		}
		if err := httpsSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("https server shutdown error: %v", err)
		}
	}()

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http (acme) server error: %v", err)
		}
	}()

	if err := httpsSrv.ListenAndServeTLS("", ""); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type holdingResponse struct {
	Symbol      string `json:"symbol"`
	Balance     string `json:"balance"`
	USDValue    string `json:"usd_value"`
	Approximate bool   `json:"approximate,omitempty"`
}

type treasuryResponse struct {
	Tier1                  []holdingResponse `json:"tier1"`
	Tier2                  []holdingResponse `json:"tier2"`
	TotalValue             string            `json:"total_value"`
	CirculatingSupply      string            `json:"circulating_supply"`
	CollateralizationRatio string            `json:"collateralization_ratio"`
	ExcessValue            string            `json:"excess_value"`
	ComputedAt             time.Time         `json:"computed_at"`
}

func toTreasuryResponse(report *domain.TreasuryReport) treasuryResponse {
	holdings := func(in []domain.TreasuryHolding) []holdingResponse {
		out := make([]holdingResponse, 0, len(in))
		for _, h := range in {
			out = append(out, holdingResponse{
				Symbol:      h.Asset.Symbol,
				Balance:     h.Balance.String(),
				USDValue:    h.USDValue.String(),
				Approximate: h.Approximate,
			})
		}
		return out
	}

	return treasuryResponse{
		Tier1:                  holdings(report.Tier1Holdings),
		Tier2:                  holdings(report.Tier2Holdings),
		TotalValue:             report.TotalValue.String(),
		CirculatingSupply:      report.CirculatingSupply.String(),
		CollateralizationRatio: report.CollateralizationRatio.String(),
		ExcessValue:            report.ExcessValue.String(),
		ComputedAt:             report.ComputedAt,
	}
}

func (s *Server) handleTreasury(w http.ResponseWriter, r *http.Request) {
	if s.Reports == nil {
		http.Error(w, "treasury aggregator not available", http.StatusServiceUnavailable)
		return
	}

	force := r.URL.Query().Get("force") == "true"
	report, err := s.Reports.Report(r.Context(), force)
	if err != nil {
		http.Error(w, "failed to compute treasury report", http.StatusBadGateway)
		log.Printf("treasury report: %v", err)
		return
	}

	writeJSON(w, toTreasuryResponse(report))
}

type quoteResponse struct {
	From         string `json:"from"`
	To           string `json:"to"`
	InputAmount  string `json:"input_amount"`
	OutputAmount string `json:"output_amount"`
	FeeRate      string `json:"fee_rate"`
	FeePercent   string `json:"fee_percent"`
	Direction    string `json:"direction"`
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	if s.Quotes == nil {
		http.Error(w, "swap estimator not available", http.StatusServiceUnavailable)
		return
	}

	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	if from == "" || to == "" {
		http.Error(w, "from and to are required", http.StatusBadRequest)
		return
	}

	amount, err := decimal.NewFromString(q.Get("amount"))
	if err != nil {
		http.Error(w, "invalid amount", http.StatusBadRequest)
		return
	}

	quote, err := s.Quotes.Estimate(r.Context(), amount, from, to)
	if err != nil {
		http.Error(w, "failed to estimate swap", http.StatusBadGateway)
		log.Printf("quote %s->%s: %v", from, to, err)
		return
	}

	writeJSON(w, quoteResponse{
		From:         quote.InputAsset.Symbol,
		To:           quote.OutputAsset.Symbol,
		InputAmount:  quote.InputAmount.String(),
		OutputAmount: quote.OutputAmount.String(),
		FeeRate:      quote.FeeRate.String(),
		FeePercent:   quote.FeePercent(),
		Direction:    string(quote.Direction),
	})
}

func (s *Server) handleRatioSMA(w http.ResponseWriter, r *http.Request) {
	if s.Snapshots == nil {
		http.Error(w, "snapshot store not available", http.StatusServiceUnavailable)
		return
	}

	period := 12
	if p := r.URL.Query().Get("period"); p != "" {
		parsed, err := strconv.Atoi(p)
		if err != nil || parsed < 1 {
			http.Error(w, "invalid period", http.StatusBadRequest)
			return
		}
		period = parsed
	}

	records, err := s.Snapshots.SnapshotsAfter(0)
	if err != nil {
		http.Error(w, "failed to load snapshots", http.StatusInternalServerError)
		log.Printf("ratio sma load: %v", err)
		return
	}

	points := analytics.RatioHistory(records)
	sma, err := analytics.RatioSMA(points, period)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, map[string]any{"period": period, "sma": sma})
}

func (s *Server) handleTreasuryStream(w http.ResponseWriter, r *http.Request) {
	if s.Snapshots == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, "snapshot store not available")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// send a comment heartbeat every 30s so proxies keep connection
	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	pollTicker := time.NewTicker(snapshotPollInterval)
	defer pollTicker.Stop()

	lastIndex := uint64(0)
	sendReports := func() error {
		records, err := s.Snapshots.SnapshotsAfter(lastIndex)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		for _, record := range records {
			payload, err := json.Marshal(toTreasuryResponse(&record.Report))
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "event: treasury\n")
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
			lastIndex = record.Index
		}
		return nil
	}

	if err := sendReports(); err != nil {
		http.Error(w, "failed to load snapshots", http.StatusInternalServerError)
		log.Printf("treasury stream initial load: %v", err)
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case <-pollTicker.C:
			if err := sendReports(); err != nil {
				log.Printf("treasury stream poll err: %v", err)
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write json: %v", err)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

// Minimal treasury dashboard: collateralization gauge + holdings table fed
// by the SSE stream.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>VUSD Station</title>
  <link href="https://fonts.googleapis.com/css2?family=Space+Mono:wght@400;700&display=swap" rel="stylesheet">
  <style>
    :root { --bg:#ffffff; --ink:#111111; --ink-mid:#4d4d4d; --panel:#f6f6f6; }
    * { box-sizing:border-box; }
    body {
      margin:0; min-height:100vh; display:flex; align-items:center; justify-content:center;
      padding:2rem; background:var(--bg); color:var(--ink);
      font-family:'Space Mono','JetBrains Mono',monospace;
    }
    #app {
      width:min(960px, 96vw); background:var(--panel); border:3px solid var(--ink);
      padding:2rem; box-shadow:12px 12px 0 rgba(0,0,0,.15);
      display:flex; flex-direction:column; gap:1.5rem;
    }
    header { display:flex; justify-content:space-between; align-items:center; gap:1rem; }
    h1 { font-size:1rem; text-transform:uppercase; letter-spacing:.2em; margin:0; }
    .status {
      font-size:.65rem; text-transform:uppercase; letter-spacing:.1em;
      border:2px solid var(--ink); padding:.4rem .9rem; background:#fff;
    }
    .ratio {
      border:3px solid var(--ink); padding:1.2rem; background:#fff;
      box-shadow:6px 6px 0 rgba(0,0,0,.12);
    }
    .ratio .label { font-size:.62rem; text-transform:uppercase; letter-spacing:.2em; color:var(--ink-mid); }
    .ratio .value { margin-top:.8rem; font-size:2rem; font-weight:700; }
    .ratio .value.under { color:#d7263d; }
    table { width:100%; border-collapse:collapse; background:#fff; border:2px solid var(--ink); }
    th, td { padding:.6rem .8rem; font-size:.75rem; text-align:left; border-bottom:1px dashed rgba(0,0,0,.2); }
    th { text-transform:uppercase; letter-spacing:.1em; font-size:.6rem; color:var(--ink-mid); }
    td.num { text-align:right; }
    .approx { color:var(--ink-mid); font-style:italic; }
  </style>
</head>
<body>
  <div id="app">
    <header>
      <h1>VUSD Station</h1>
      <div id="sse-status" class="status">Connecting…</div>
    </header>
    <div class="ratio">
      <div class="label">Collateralization ratio</div>
      <div id="ratio" class="value">—</div>
    </div>
    <table>
      <thead><tr><th>Asset</th><th>Balance</th><th>USD value</th></tr></thead>
      <tbody id="holdings"></tbody>
    </table>
  </div>
<script>
const statusEl = document.getElementById('sse-status');
const ratioEl = document.getElementById('ratio');
const holdingsEl = document.getElementById('holdings');

function render(report){
  const ratio = parseFloat(report.collateralization_ratio);
  ratioEl.textContent = ratio.toFixed(4);
  ratioEl.className = 'value' + (ratio < 1 ? ' under' : '');
  holdingsEl.innerHTML = '';
  for(const h of [...report.tier1, ...report.tier2]){
    const row = document.createElement('tr');
    const name = document.createElement('td');
    name.textContent = h.symbol + (h.approximate ? ' *' : '');
    if(h.approximate){ name.className = 'approx'; }
    const bal = document.createElement('td');
    bal.className = 'num';
    bal.textContent = parseFloat(h.balance).toLocaleString();
    const usd = document.createElement('td');
    usd.className = 'num';
    usd.textContent = '$' + parseFloat(h.usd_value).toLocaleString();
    row.append(name, bal, usd);
    holdingsEl.appendChild(row);
  }
}

function connectSSE(){
  const source = new EventSource('/treasury/stream');
  statusEl.textContent = 'Status: receiving data';
  source.addEventListener('treasury', (event) => {
    try{ render(JSON.parse(event.data)); }catch(err){ console.error('payload parse', err); }
  });
  source.addEventListener('error', () => {
    statusEl.textContent = 'Reconnecting…';
    source.close();
    setTimeout(connectSSE, 2000);
  });
}

connectSSE();
</script>
</body>
</html>`
