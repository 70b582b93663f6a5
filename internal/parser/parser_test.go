package parser

import (
	"errors"
	"reflect"
	"testing"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		filename string
		wantName string
		wantErr  bool
	}{
		{"5702_20240315.pdf", "Isracard", false},
		{"current_account_operations.pdf", "Bank Hapoalim", false},
		{"current_account_operations_march.pdf", "Bank Hapoalim", false},
		{"unknown_statement.pdf", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			p, err := Detect(tt.filename)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, ErrUnrecognizedFormat) {
					t.Errorf("error should wrap ErrUnrecognizedFormat, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Name() != tt.wantName {
				t.Errorf("got parser %q, want %q", p.Name(), tt.wantName)
			}
		})
	}
}

// Parsing must be a pure function of its input: repeated invocations on
// the same pages yield identical results.
func TestParseDeterminism(t *testing.T) {
	pages := []string{
		"עסקות שחויבו בחשבון\n15/03/24 סופר מרקט 100.00 102.50\n16/03/24 בית קפה 30.00 30.70",
	}
	p := &IsracardParser{}

	first, err := p.Parse(pages, "5702_20240315.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := p.Parse(pages, "5702_20240315.pdf")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %+v vs %+v", i, first, again)
		}
	}
}
