package core

import (
	"reflect"
	"testing"
)

func TestToDBColumnName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"trade_date", "trade_date"},
		{"Trade Date", "trade_date"},
		{"  Net Amount ", "net_amount"},
		{"SYMBOL", "symbol"},
	}

	for _, tt := range tests {
		if got := toDBColumnName(tt.input); got != tt.want {
			t.Errorf("toDBColumnName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseBinding(t *testing.T) {
	tests := []struct {
		input   string
		want    Binding
		wantErr bool
	}{
		{input: "0:account", want: Binding{Table: 0, Shape: "account"}},
		{input: "1:transaction", want: Binding{Table: 1, Shape: "transaction"}},
		{input: " 2 : transaction ", want: Binding{Table: 2, Shape: "transaction"}},
		{input: "account", wantErr: true},
		{input: "1:", wantErr: true},
		{input: "x:account", wantErr: true},
		{input: "-1:account", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBinding(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseBinding(%q) = %+v, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseBinding(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseBinding(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseBindings(t *testing.T) {
	got, err := ParseBindings([]string{"0:account", "1:transaction"})
	if err != nil {
		t.Fatalf("ParseBindings() error = %v", err)
	}
	want := []Binding{{0, "account"}, {1, "transaction"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseBindings() = %+v, want %+v", got, want)
	}

	if _, err := ParseBindings([]string{"0:account", "bad"}); err == nil {
		t.Error("ParseBindings() with a bad entry returned nil error")
	}
}
