package services

import "testing"

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect float64
	}{
		{"brazilian currency", "R$ 1.234,56", 1234.56},
		{"plain comma decimal", "10,00", 10.0},
		{"plain number", "50", 50.0},
		{"dot decimal", "7.5", 7.5},
		{"thousands with comma decimal", "1.234.567,89", 1234567.89},
		{"symbol no space", "R$99,90", 99.90},
		{"empty", "", 0.0},
		{"spaces only", "   ", 0.0},
		{"nan literal", "NaN", 0.0},
		{"garbage", "abc", 0.0},
		{"lone symbol", "R$", 0.0},
		{"lone dot", ".", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCurrency(tt.input)
			if got != tt.expect {
				t.Errorf("ParseCurrency(%q) = %v, want %v", tt.input, got, tt.expect)
			}
		})
	}
}

func TestParseCurrencyChecked_MalformedFlag(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		wantOK bool
	}{
		{"blank is fine", "", true},
		{"valid value", "12,50", true},
		{"garbage is flagged", "n/d", false},
		{"symbol only is flagged", "R$", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := parseCurrencyChecked(tt.input)
			if ok != tt.wantOK {
				t.Errorf("parseCurrencyChecked(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
		})
	}
}
