package scrape

import "testing"

func TestParseEuropeanNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"2 798,32", 2798.32},
		{"613,47", 613.47},
		{"1.234,56", 1234.56},
		{"70", 70},
		{"70,5", 70.5},
		{"2798.32", 2798.32},
		{"2 798,32", 2798.32},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEuropeanNumber(tt.in)
			if err != nil {
				t.Fatalf("ParseEuropeanNumber(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseEuropeanNumber(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseEuropeanNumberRejectsJunk(t *testing.T) {
	for _, in := range []string{"", "abc", ",", "1,2,3"} {
		if _, err := ParseEuropeanNumber(in); err == nil {
			t.Errorf("ParseEuropeanNumber(%q) should fail", in)
		}
	}
}

func TestExtractEuroAmount(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		floor float64
		want  float64
		ok    bool
	}{
		{
			name:  "price before euro sign",
			text:  "Napoleon 20 Francs Prix de vente 613,47 € TTC",
			floor: 10,
			want:  613.47,
			ok:    true,
		},
		{
			name:  "thousands with space",
			text:  "Krugerrand 2 798,32 € per coin",
			floor: 10,
			want:  2798.32,
			ok:    true,
		},
		{
			name:  "price after euro sign",
			text:  "price: € 1 234,56 today",
			floor: 10,
			want:  1234.56,
			ok:    true,
		},
		{
			name:  "small incidental numbers rejected",
			text:  "quantity 3 € shipping 5 €",
			floor: 10,
			ok:    false,
		},
		{
			name:  "first plausible amount wins past spurious ones",
			text:  "lot of 2 € ... price 645,10 €",
			floor: 10,
			want:  645.10,
			ok:    true,
		},
		{
			name:  "no euro sign",
			text:  "price 613.47 USD",
			floor: 10,
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractEuroAmount(tt.text, tt.floor)
			if ok != tt.ok {
				t.Fatalf("ExtractEuroAmount() ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("ExtractEuroAmount() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractEuroAmountAfter(t *testing.T) {
	text := "Gold spot 81,20 € per gram. Silver spot price per gram 0,95 € today."

	got, ok := ExtractEuroAmountAfter(text, "Silver spot", 0.1)
	if !ok {
		t.Fatal("expected a silver price after the anchor")
	}
	if got != 0.95 {
		t.Errorf("got %v, want 0.95", got)
	}

	if _, ok := ExtractEuroAmountAfter(text, "Platinum", 0.1); ok {
		t.Error("missing anchor should yield no amount")
	}
}
