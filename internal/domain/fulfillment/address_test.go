package fulfillment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatAddressLines(t *testing.T) {
	tests := []struct {
		name    string
		address string
		want    []string
	}{
		{
			name:    "single line",
			address: "742 Evergreen Terrace",
			want:    []string{"742 Evergreen Terrace"},
		},
		{
			name:    "three parts",
			address: "742 Evergreen Terrace, Springfield, OR 97403",
			want:    []string{"742 Evergreen Terrace", "Springfield", "OR 97403"},
		},
		{
			name:    "extra parts are folded into the last line",
			address: "Suite 5, 1 Main St, Springfield, OR 97403, USA",
			want:    []string{"Suite 5", "1 Main St", "Springfield, OR 97403, USA"},
		},
		{
			name:    "blank parts are dropped",
			address: " 1 Main St ,, Springfield ,",
			want:    []string{"1 Main St", "Springfield"},
		},
		{
			name:    "empty address",
			address: "   ",
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAddressLines(tt.address))
		})
	}
}

func TestExtractPostalCode(t *testing.T) {
	tests := []struct {
		name    string
		address string
		want    string
		found   bool
	}{
		{"five digits", "1 Main St, Springfield, OR 97403", "97403", true},
		{"zip plus four", "1 Main St, Springfield, OR 97403-1234", "97403-1234", true},
		{"first match wins", "12345 Long Rd, Town 54321", "12345", true},
		{"longer digit runs are ignored", "Account 1234567, Springfield", "", false},
		{"no postal code", "10 Downing Street, London SW1A 2AA", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractPostalCode(tt.address)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
