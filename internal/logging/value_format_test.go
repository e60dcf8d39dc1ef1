package logging

import (
	"errors"
	"log/slog"
	"testing"
	"time"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name  string
		value slog.Value
		want  string
	}{
		{"plain string", slog.StringValue("youtube"), "youtube"},
		{"string with spaces", slog.StringValue("Never Gonna Give You Up"), "Never Gonna Give You Up"},
		{"empty string", slog.StringValue(""), `""`},
		{"padded string", slog.StringValue(" x"), `" x"`},
		{"equals sign", slog.StringValue("a=b"), `"a=b"`},
		{"confidence", slog.Float64Value(0.87345), "0.873"},
		{"percent", slog.Float64Value(42.5), "42.5"},
		{"duration", slog.DurationValue(1234567 * time.Microsecond), "1.235s"},
		{"paths", slog.AnyValue([]string{"/out/a.m4a", "/out/b.m4a"}), "/out/a.m4a, /out/b.m4a"},
		{"error", slog.AnyValue(errors.New("HTTP 403")), "HTTP 403"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatValue(tt.value); got != tt.want {
				t.Fatalf("formatValue = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAttrStringDoesNotQuote(t *testing.T) {
	if got := attrString(slog.StringValue("")); got != "" {
		t.Fatalf("attrString = %q", got)
	}
	if got := attrString(slog.Int64Value(7)); got != "7" {
		t.Fatalf("attrString = %q", got)
	}
}
