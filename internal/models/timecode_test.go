package models

import "testing"

func TestToTimecode(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		want    string
	}{
		{"zero", 0, "00:00"},
		{"seconds only", 5, "00:05"},
		{"minutes and seconds", 125, "02:05"},
		{"fractional truncated", 125.9, "02:05"},
		{"just under an hour", 3599, "59:59"},
		{"exactly one hour", 3600, "01:00:00"},
		{"hours", 3725, "01:02:05"},
		{"double digit hours", 36610, "10:10:10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToTimecode(tt.seconds); got != tt.want {
				t.Errorf("ToTimecode(%v) = %q, want %q", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestParseTimecode(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"02:05", 125, false},
		{"01:02:05", 3725, false},
		{"00:00", 0, false},
		{"42", 42, false},
		{"xx:05", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimecode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTimecode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseTimecode(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestTimecodeRoundTrip(t *testing.T) {
	for _, s := range []int{0, 1, 59, 60, 61, 125, 3599, 3600, 3725, 86399} {
		got, err := ParseTimecode(ToTimecode(float64(s)))
		if err != nil {
			t.Fatalf("round trip %d: %v", s, err)
		}
		if got != s {
			t.Errorf("round trip %d: got %d", s, got)
		}
	}
}

func TestDocumentMetaMatches(t *testing.T) {
	point := DocumentMeta{Type: DocTypeBoard, T: Float(100)}
	if !point.Matches(101) {
		t.Error("point doc t=100 should match ts=101")
	}
	if point.Matches(103) {
		t.Error("point doc t=100 should not match ts=103")
	}

	ranged := DocumentMeta{Type: DocTypeASR, TStart: Float(90), TEnd: Float(110)}
	for _, ts := range []float64{90, 100, 110} {
		if !ranged.Matches(ts) {
			t.Errorf("range doc [90,110] should match ts=%v", ts)
		}
	}
	if ranged.Matches(111) {
		t.Error("range doc [90,110] should not match ts=111")
	}
}
