package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
)

// newStaticCurrencyService has no provider URLs, so every conversion uses the
// static fallback table.
func newStaticCurrencyService() CurrencyService {
	return NewCurrencyService("", "")
}

func TestConvertIdentity(t *testing.T) {
	svc := newStaticCurrencyService()

	got, err := svc.Convert(context.Background(), d("46000"), "JPY", "JPY")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(d("46000")) {
		t.Errorf("identity conversion = %s, want 46000", got)
	}
}

func TestConvertUsesStaticRates(t *testing.T) {
	svc := newStaticCurrencyService()

	got, err := svc.Convert(context.Background(), d("10000"), "JPY", "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 10000 x 0.0067 / 1
	if !got.Equal(d("67")) {
		t.Errorf("converted = %s, want 67", got)
	}
}

func TestConvertCrossRate(t *testing.T) {
	svc := newStaticCurrencyService()

	// USD -> THB goes through the JPY-relative table: 100 x 0.22 / 0.0067
	got, err := svc.Convert(context.Background(), d("100"), "USD", "THB")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := d("100").Mul(d("0.22")).Div(d("0.0067"))
	if !got.Equal(want) {
		t.Errorf("converted = %s, want %s", got, want)
	}
}

func TestConvertUnsupportedCurrency(t *testing.T) {
	svc := newStaticCurrencyService()

	if _, err := svc.Convert(context.Background(), d("100"), "JPY", "XXX"); err == nil {
		t.Fatal("expected error for unsupported currency")
	}
}

func TestFormatZeroDecimalCurrencies(t *testing.T) {
	svc := newStaticCurrencyService()

	tests := []struct {
		amount   string
		currency string
		want     string
	}{
		{"46000", "JPY", "¥46,000"},
		{"46000.75", "JPY", "¥46,001"}, // rounds to whole yen
		{"1234567", "JPY", "¥1,234,567"},
		{"990", "THB", "฿990"},
		{"1500.4", "THB", "฿1,500"},
	}
	for _, tt := range tests {
		if got := svc.Format(d(tt.amount), tt.currency); got != tt.want {
			t.Errorf("Format(%s, %s) = %q, want %q", tt.amount, tt.currency, got, tt.want)
		}
	}
}

func TestFormatTwoDecimalCurrencies(t *testing.T) {
	svc := newStaticCurrencyService()

	tests := []struct {
		amount   string
		currency string
		want     string
	}{
		{"308.2", "USD", "$308.20"},
		{"1234.5", "EUR", "€1,234.50"},
		{"42", "SGD", "S$42.00"},
	}
	for _, tt := range tests {
		if got := svc.Format(d(tt.amount), tt.currency); got != tt.want {
			t.Errorf("Format(%s, %s) = %q, want %q", tt.amount, tt.currency, got, tt.want)
		}
	}
}

func TestFormatUnknownCurrencyFallsBackToCode(t *testing.T) {
	svc := newStaticCurrencyService()

	if got := svc.Format(d("100"), "AUD"); got != "AUD 100.00" {
		t.Errorf("Format = %q, want AUD 100.00", got)
	}
}

func TestGroupThousands(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0"},
		{"999", "999"},
		{"1000", "1,000"},
		{"46000", "46,000"},
		{"1234567.89", "1,234,567.89"},
		{"-46000", "-46,000"},
	}
	for _, tt := range tests {
		if got := groupThousands(tt.in); got != tt.want {
			t.Errorf("groupThousands(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRatesAlwaysIncludeBase(t *testing.T) {
	svc := newStaticCurrencyService()

	rates := svc.Rates(context.Background())
	base, ok := rates["JPY"]
	if !ok {
		t.Fatal("rate table missing JPY base")
	}
	if !base.Equal(decimal.NewFromInt(1)) {
		t.Errorf("JPY base rate = %s, want 1", base)
	}
}
