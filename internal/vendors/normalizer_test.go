package vendors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain vendor passes through uppercased",
			input: "Netflix.com",
			want:  "NETFLIX.COM",
		},
		{
			name:  "strips debit card prefix",
			input: "DEBIT CARD PURCHASE NETFLIX.COM",
			want:  "NETFLIX.COM",
		},
		{
			name:  "strips recurring payment prefix",
			input: "RECURRING PAYMENT SPOTIFY USA",
			want:  "SPOTIFY USA",
		},
		{
			name:  "longest prefix wins over shorter",
			input: "ACH PAYMENT JCPL ELECTRIC",
			want:  "JCPL ELECTRIC",
		},
		{
			name:  "strips trailing reference number",
			input: "AMAZON.COM 123456789",
			want:  "AMAZON.COM",
		},
		{
			name:  "short trailing digits are kept",
			input: "STORE 42",
			want:  "STORE 42",
		},
		{
			name:  "strips trailing MM/DD",
			input: "COMCAST CABLE 01/15",
			want:  "COMCAST CABLE",
		},
		{
			name:  "reference then date both stripped",
			input: "COMCAST CABLE 01/15 9938271",
			want:  "COMCAST CABLE",
		},
		{
			name:  "collapses internal whitespace",
			input: "  SPOTIFY   USA  ",
			want:  "SPOTIFY USA",
		},
		{
			name:  "prefix plus trailing noise",
			input: "DEBIT CARD PURCHASE NETFLIX.COM 880123456",
			want:  "NETFLIX.COM",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
		{
			name:  "pure boilerplate reduces to empty",
			input: "ACH DEBIT 12345678",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"DEBIT CARD PURCHASE NETFLIX.COM 880123456",
		"AUTOMATIC PAYMENT ACH DEBIT POWER CO",
		"COMCAST CABLE 123456 01/15",
		"visa spotify usa 02/28",
		"plain vendor",
		"",
	}

	for _, input := range inputs {
		once := Normalize(input)
		twice := Normalize(once)
		assert.Equal(t, once, twice, "Normalize not idempotent for %q", input)
	}
}
