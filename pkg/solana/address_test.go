package solana

import (
	"reflect"
	"strings"
	"testing"
)

const (
	// USDC mint, 44 characters, decodes to 32 bytes.
	usdcMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	// Wrapped SOL mint, 43 characters.
	wsolMint = "So11111111111111111111111111111111111111112"
	// System program id: 32 '1' characters decode to 32 zero bytes.
	systemProgram = "11111111111111111111111111111111"
)

func TestIsValid(t *testing.T) {
	v := NewValidator(0, 0)

	tests := []struct {
		name string
		addr string
		want bool
	}{
		{"usdc mint", usdcMint, true},
		{"wrapped sol mint", wsolMint, true},
		{"all-ones system program", systemProgram, true},
		{"empty", "", false},
		{"too short", usdcMint[:31], false},
		{"too long", usdcMint + "A", false},
		{"contains zero", "0" + usdcMint[1:], false},
		{"contains capital O", "O" + usdcMint[1:], false},
		{"contains capital I", "I" + usdcMint[1:], false},
		{"contains lowercase l", "l" + usdcMint[1:], false},
		{"contains space", usdcMint[:20] + " " + usdcMint[21:], false},
		// Correct alphabet and length but wrong decoded size.
		{"decodes to 44 bytes", strings.Repeat("1", 44), false},
		{"decodes to short value", strings.Repeat("2", 32), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.IsValid(tt.addr); got != tt.want {
				t.Errorf("IsValid(%q) = %v, want %v", tt.addr, got, tt.want)
			}
		})
	}
}

func TestIsValidCustomBounds(t *testing.T) {
	v := NewValidator(43, 44)

	if v.IsValid(systemProgram) {
		t.Error("32-char address should fail a 43-char minimum")
	}
	if !v.IsValid(usdcMint) {
		t.Error("44-char address should pass a 43-44 bound")
	}
}

func TestExtractAll(t *testing.T) {
	v := NewValidator(0, 0)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "dedup and first-occurrence order",
			text: "abc " + usdcMint + " xyz " + usdcMint + " " + wsolMint,
			want: []string{usdcMint, wsolMint},
		},
		{
			name: "no addresses",
			text: "just some chat about tokens",
			want: nil,
		},
		{
			name: "address at start and end",
			text: usdcMint + " mid " + wsolMint,
			want: []string{usdcMint, wsolMint},
		},
		{
			name: "address embedded in a longer run does not match",
			text: "x" + usdcMint + "y",
			want: nil,
		},
		{
			name: "invalid neighbours are ignored",
			text: "l" + usdcMint[1:] + " " + usdcMint,
			want: []string{usdcMint},
		},
		{
			name: "punctuation delimits",
			text: "buy (" + usdcMint + ")," + wsolMint + "!",
			want: []string{usdcMint, wsolMint},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.ExtractAll(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractAll(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
