package bot

import (
	"testing"

	"github.com/solman/solbot/internal/gateway"
)

func TestTruncateAddress(t *testing.T) {
	tests := []struct {
		addr   string
		length int
		want   string
	}{
		{"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", 6, "EPjFWd...yTDt1v"},
		{"short", 6, "short"},
		{"twelve_chars", 6, "twelve_chars"},
		{"fourteen-chars", 6, "fourte...-chars"},
	}
	for _, tt := range tests {
		if got := truncateAddress(tt.addr, tt.length); got != tt.want {
			t.Errorf("truncateAddress(%q, %d) = %q, want %q", tt.addr, tt.length, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"20m57.369032128s", "20m 57s"},
		{"1h30m45.123s", "1h 30m 45s"},
		{"45s", "45s"},
		{"2h0m0s", "2h"},
		{"0s", "0s"},
		{"", "Unknown"},
		{"Unknown", "Unknown"},
		{"not-a-duration", "not-a-duration"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.0000001707, "0.0000001707"},
		{1.5, "1.5"},
		{0, "0"},
		{123, "123"},
		{-0.12, "-0.12"},
		{0.1000000000, "0.1"},
	}
	for _, tt := range tests {
		if got := formatPrice(tt.in); got != tt.want {
			t.Errorf("formatPrice(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTxDisplay(t *testing.T) {
	if got := txDisplay(""); got != "N/A" {
		t.Errorf("txDisplay(\"\") = %q, want N/A", got)
	}
	got := txDisplay("abcdefghijklmnop")
	want := "[abcdef...klmnop](https://solscan.io/tx/abcdefghijklmnop)"
	if got != want {
		t.Errorf("txDisplay = %q, want %q", got, want)
	}
}

func TestEscapeMarkdown(t *testing.T) {
	got := escapeMarkdown("user_name [x]*")
	want := "user\\_name \\[x\\]\\*"
	if got != want {
		t.Errorf("escapeMarkdown = %q, want %q", got, want)
	}
}

func TestPositionsKeyboardPagination(t *testing.T) {
	positions := []gateway.Position{
		{TokenMint: "MintA"},
		{TokenMint: "MintB"},
	}

	t.Run("single page has no nav row", func(t *testing.T) {
		kb := positionsKeyboard(positions, 0, 1)
		if kb == nil {
			t.Fatal("expected a keyboard with sell buttons")
		}
		if len(kb.InlineKeyboard) != 2 {
			t.Errorf("rows = %d, want 2 sell rows", len(kb.InlineKeyboard))
		}
	})

	t.Run("first of three pages has only next", func(t *testing.T) {
		kb := positionsKeyboard(positions, 0, 3)
		nav := kb.InlineKeyboard[len(kb.InlineKeyboard)-1]
		if len(nav) != 1 || *nav[0].CallbackData != "positions_1" {
			t.Errorf("nav row = %+v, want single Next -> positions_1", nav)
		}
	})

	t.Run("middle page has prev and next", func(t *testing.T) {
		kb := positionsKeyboard(positions, 1, 3)
		nav := kb.InlineKeyboard[len(kb.InlineKeyboard)-1]
		if len(nav) != 2 {
			t.Fatalf("nav buttons = %d, want 2", len(nav))
		}
		if *nav[0].CallbackData != "positions_0" || *nav[1].CallbackData != "positions_2" {
			t.Errorf("nav = [%s %s], want [positions_0 positions_2]",
				*nav[0].CallbackData, *nav[1].CallbackData)
		}
	})

	t.Run("last page has only prev", func(t *testing.T) {
		kb := positionsKeyboard(positions, 2, 3)
		nav := kb.InlineKeyboard[len(kb.InlineKeyboard)-1]
		if len(nav) != 1 || *nav[0].CallbackData != "positions_1" {
			t.Errorf("nav row = %+v, want single Prev -> positions_1", nav)
		}
	})
}
