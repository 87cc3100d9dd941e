package textsim

import (
	"math"
	"testing"
)

func TestNormalizeContent(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lower-cases", "Runs GREAT", "runs great"},
		{"strips punctuation", "Works!!! (mostly), 60fps.", "works mostly 60fps"},
		{"keeps underscores", "turnip_driver v24", "turnip_driver v24"},
		{"collapses whitespace", "a   b\t\tc\n\nd", "a b c d"},
		{"trims", "   padded   ", "padded"},
		{"empty", "", ""},
		{"only punctuation", "!?.,;", ""},
		{"keeps non-ascii letters", "Café Émulateur", "café émulateur"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeContent(tt.input); got != tt.want {
				t.Errorf("NormalizeContent(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCalculateSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "runs at full speed", "runs at full speed", 1.0},
		{"disjoint", "alpha beta", "gamma delta", 0.0},
		{"word order ignored", "full speed runs", "runs full speed", 1.0},
		{"repeated words penalized", "spam spam spam", "spam", 1.0 / 3.0},
		{"both empty", "", "", 1.0},
		{"left empty", "", "something", 0.0},
		{"right empty", "something", "", 0.0},
		// {a:1,b:1,c:1} vs {a:1,b:1,d:1}: intersection 2, union 4
		{"partial overlap", "a b c", "a b d", 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("CalculateSimilarity(%q, %q) = %.4f, want %.4f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCalculateSimilarity_Symmetric(t *testing.T) {
	a := NormalizeContent("Game runs well with Vulkan, minor audio crackle")
	b := NormalizeContent("Game runs well with OpenGL, audio crackle")
	if CalculateSimilarity(a, b) != CalculateSimilarity(b, a) {
		t.Error("similarity should be symmetric")
	}
}

func TestCalculateSimilarity_NearDuplicateAboveThreshold(t *testing.T) {
	base := "tested on snapdragon 8 gen 2 with turnip drivers runs at a stable 60 fps with no graphical issues at all"
	edited := base + " really"
	if got := CalculateSimilarity(NormalizeContent(base), NormalizeContent(edited)); got <= 0.9 {
		t.Errorf("near duplicate similarity = %.3f, want > 0.9", got)
	}
}
