package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"chauffeur-backend/internal/model"

	"github.com/shopspring/decimal"
)

// rateCacheTTL bounds how stale a fetched rate table may get before the next
// conversion triggers a refresh.
const rateCacheTTL = 30 * time.Minute

// staticRates is the last-resort rate table, relative to JPY. Used when both
// rate providers are unreachable so conversion never fails outright.
var staticRates = map[string]decimal.Decimal{
	"JPY": decimal.NewFromInt(1),
	"USD": decimal.RequireFromString("0.0067"),
	"EUR": decimal.RequireFromString("0.0062"),
	"THB": decimal.RequireFromString("0.22"),
	"CNY": decimal.RequireFromString("0.048"),
	"SGD": decimal.RequireFromString("0.0091"),
}

// currencySymbols maps supported display currencies to their prefix symbol.
var currencySymbols = map[string]string{
	"JPY": "¥",
	"USD": "$",
	"EUR": "€",
	"THB": "฿",
	"CNY": "CN¥",
	"SGD": "S$",
}

// zeroDecimalCurrencies are displayed without fractional digits.
var zeroDecimalCurrencies = map[string]bool{
	"JPY": true,
	"THB": true,
}

// CurrencyService converts and formats amounts for quote display. Conversion
// is display-only; stored amounts stay in the base currency.
type CurrencyService interface {
	Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error)
	Format(amount decimal.Decimal, currency string) string
	Rates(ctx context.Context) map[string]decimal.Decimal
	SupportedCurrencies() []string
}

type currencyService struct {
	client     *http.Client
	primaryURL string
	backupURL  string

	mu        sync.Mutex
	rates     map[string]decimal.Decimal
	fetchedAt time.Time
}

// NewCurrencyService wires a service against two rate providers. Empty URLs
// disable fetching and the static table is used directly.
func NewCurrencyService(primaryURL, backupURL string) CurrencyService {
	return &currencyService{
		client:     &http.Client{Timeout: 10 * time.Second},
		primaryURL: primaryURL,
		backupURL:  backupURL,
	}
}

// Convert translates an amount between currencies through the base-relative
// rate table: converted = amount * rate[to] / rate[from].
func (s *currencyService) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)
	if from == to {
		return amount, nil
	}

	rates := s.currentRates(ctx)
	fromRate, okFrom := rates[from]
	toRate, okTo := rates[to]
	if !okFrom || !okTo {
		return decimal.Zero, fmt.Errorf("unsupported currency pair %s/%s", from, to)
	}
	if fromRate.IsZero() {
		return decimal.Zero, fmt.Errorf("invalid zero rate for %s", from)
	}

	return amount.Mul(toRate).Div(fromRate), nil
}

// Format renders an amount with the currency's symbol. Zero-decimal
// currencies round to whole units; everything else shows two decimals.
func (s *currencyService) Format(amount decimal.Decimal, currency string) string {
	currency = strings.ToUpper(currency)
	symbol, ok := currencySymbols[currency]
	if !ok {
		symbol = currency + " "
	}

	if zeroDecimalCurrencies[currency] {
		return symbol + groupThousands(amount.Round(0).StringFixed(0))
	}
	return symbol + groupThousands(amount.StringFixed(2))
}

func (s *currencyService) Rates(ctx context.Context) map[string]decimal.Decimal {
	rates := s.currentRates(ctx)
	out := make(map[string]decimal.Decimal, len(rates))
	for code, rate := range rates {
		out[code] = rate
	}
	return out
}

func (s *currencyService) SupportedCurrencies() []string {
	return []string{"JPY", "USD", "EUR", "THB", "CNY", "SGD"}
}

// currentRates returns the cached table, refreshing it when stale. Fetch
// failures fall back to the static table without poisoning the cache, so a
// later call retries the providers.
func (s *currencyService) currentRates(ctx context.Context) map[string]decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rates != nil && time.Since(s.fetchedAt) < rateCacheTTL {
		return s.rates
	}

	for _, url := range []string{s.primaryURL, s.backupURL} {
		if url == "" {
			continue
		}
		rates, err := s.fetchRates(ctx, url)
		if err != nil {
			log.Printf("currency: rate fetch from %s failed: %v", url, err)
			continue
		}
		s.rates = rates
		s.fetchedAt = time.Now()
		return s.rates
	}

	return staticRates
}

func (s *currencyService) fetchRates(ctx context.Context, url string) (map[string]decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Rates map[string]json.Number `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	if len(body.Rates) == 0 {
		return nil, fmt.Errorf("empty rate table")
	}

	rates := map[string]decimal.Decimal{model.BaseCurrency: decimal.NewFromInt(1)}
	for _, code := range []string{"USD", "EUR", "THB", "CNY", "SGD"} {
		raw, ok := body.Rates[code]
		if !ok {
			// Partial tables keep the static rate for the missing code
			rates[code] = staticRates[code]
			continue
		}
		rate, err := decimal.NewFromString(raw.String())
		if err != nil || !rate.IsPositive() {
			rates[code] = staticRates[code]
			continue
		}
		rates[code] = rate
	}
	return rates, nil
}

// groupThousands inserts comma separators into the integer part of a decimal
// string produced by StringFixed.
func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i:]
	}

	if len(intPart) > 3 {
		var b strings.Builder
		lead := len(intPart) % 3
		if lead > 0 {
			b.WriteString(intPart[:lead])
		}
		for i := lead; i < len(intPart); i += 3 {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(intPart[i : i+3])
		}
		intPart = b.String()
	}

	out := intPart + fracPart
	if neg {
		out = "-" + out
	}
	return out
}
