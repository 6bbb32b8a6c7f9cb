package category

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in     string
		want   Category
		wantOK bool
	}{
		{"coding", Coding, true},
		{"  Homelab ", Homelab, true},
		{"", Any, true},
		{"gardening", Category("gardening"), false},
		{"Gardening", Category("Gardening"), false},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Parse(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestAllOrder(t *testing.T) {
	want := []Category{Homelab, Coding, Personal, Learning, Creative}
	got := All()
	if len(got) != len(want) {
		t.Fatalf("expected %d categories, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("All()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestKnown(t *testing.T) {
	if Known(Any) {
		t.Error("the all filter is not a note category")
	}
	if !Known(Creative) {
		t.Error("creative should be known")
	}
	if Known("misc") {
		t.Error("misc should not be known")
	}
}

func TestLabel(t *testing.T) {
	if Any.Label() != "all" {
		t.Errorf("Any.Label() = %q", Any.Label())
	}
	if Learning.Label() != "learning" {
		t.Errorf("Learning.Label() = %q", Learning.Label())
	}
}
