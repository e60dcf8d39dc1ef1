package logging

import "testing"

func TestNewProgressSamplerDefaults(t *testing.T) {
	for _, size := range []float64{0, -3} {
		if s := NewProgressSampler(size); s.bucketSize != 10 || s.lastBucket != -1 {
			t.Fatalf("NewProgressSampler(%v) = %+v", size, s)
		}
	}
}

func TestProgressSamplerNil(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog(50, "Download (audio)") {
		t.Fatal("nil sampler should always log")
	}
	s.Reset()
}

func TestProgressSamplerBuckets(t *testing.T) {
	s := NewProgressSampler(10)
	steps := []struct {
		percent float64
		label   string
		want    bool
	}{
		{0, "Download (audio)", true},
		{4, "Download (audio)", false},
		{9.9, "Download (audio)", false},
		{10, "Download (audio)", true},
		{15, "Download (audio)", false},
		{55, "Download (audio)", true},
		{120, "Download (audio)", true},
		{100, "Download (audio)", false},
		{5, "Download (video)", true},
		{-1, "Download (video)", false},
	}
	for i, step := range steps {
		if got := s.ShouldLog(step.percent, step.label); got != step.want {
			t.Fatalf("step %d (%v %q): got %v want %v", i, step.percent, step.label, got, step.want)
		}
	}
	s.Reset()
	if !s.ShouldLog(0, "Download (video)") {
		t.Fatal("expected log after reset")
	}
}
