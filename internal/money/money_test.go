package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestIsSettled(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		want   bool
	}{
		{name: "zero", amount: "0", want: true},
		{name: "below epsilon", amount: "0.005", want: true},
		{name: "negative below epsilon", amount: "-0.005", want: true},
		{name: "one cent", amount: "0.01", want: false},
		{name: "negative one cent", amount: "-0.01", want: false},
		{name: "large", amount: "500", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := decimal.RequireFromString(tt.amount)
			if got := IsSettled(d); got != tt.want {
				t.Errorf("IsSettled(%s) = %v, want %v", tt.amount, got, tt.want)
			}
		})
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		total string
		n     int
		want  []string
	}{
		{name: "even split", total: "30.00", n: 3, want: []string{"10.00", "10.00", "10.00"}},
		{name: "remainder distributed", total: "100.00", n: 3, want: []string{"33.34", "33.33", "33.33"}},
		{name: "two-cent remainder", total: "0.05", n: 3, want: []string{"0.02", "0.02", "0.01"}},
		{name: "single participant", total: "12.34", n: 1, want: []string{"12.34"}},
		{name: "negative with remainder", total: "-100.00", n: 3, want: []string{"-33.34", "-33.33", "-33.33"}},
		{name: "negative even split", total: "-30.00", n: 2, want: []string{"-15.00", "-15.00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total := decimal.RequireFromString(tt.total)
			shares := Split(total, tt.n)
			if len(shares) != len(tt.want) {
				t.Fatalf("Split() returned %d shares, want %d", len(shares), len(tt.want))
			}
			sum := Sum(shares...)
			if !sum.Equal(total) {
				t.Errorf("shares sum = %s, want %s", Format(sum), tt.total)
			}
			for i, w := range tt.want {
				if Format(shares[i]) != w {
					t.Errorf("share %d = %s, want %s", i, Format(shares[i]), w)
				}
			}
		})
	}

	if got := Split(decimal.RequireFromString("10"), 0); got != nil {
		t.Errorf("Split with n=0 = %v, want nil", got)
	}
}

func TestParse(t *testing.T) {
	d, err := Parse("12.345")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if Format(d) != "12.35" {
		t.Errorf("Parse rounded = %s, want 12.35", Format(d))
	}

	if _, err := Parse("not-a-number"); err == nil {
		t.Error("Parse() expected error for malformed input")
	}
}
