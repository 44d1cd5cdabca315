package keyword

import "testing"

func TestMatchesSubstringCaseInsensitive(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		keywords []string
		expected bool
	}{
		{"substring inside word", "golden retriever info", []string{"retriever"}, true},
		{"case insensitive", "My GOLDEN Retriever has allergies", []string{"golden"}, true},
		{"hyphenated slug", "https://x.com/dog-care/yorkshire-terrier-diet", []string{"yorkshire-terrier"}, true},
		{"no match", "Cat nutrition basics", []string{"dog", "puppy", "canine"}, false},
		{"empty text", "", []string{"dog"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFilter(tt.keywords)
			if got := f.Matches(tt.text); got != tt.expected {
				t.Errorf("Matches(%q) = %v; want %v", tt.text, got, tt.expected)
			}
		})
	}
}

func TestMatchesWithDogBank(t *testing.T) {
	f := NewFilter(DogKeywords)

	if !f.Matches("https://www.merckvetmanual.com/dog-owners/bloat") {
		t.Error("expected dog URL to match the bank")
	}
	if f.Matches("Feline diabetes management") {
		t.Error("expected cat page not to match the bank")
	}
}

func TestNewFilterNormalizesKeywords(t *testing.T) {
	f := NewFilter([]string{"  Husky  ", ""})
	if !f.Matches("Siberian husky grooming") {
		t.Error("expected trimmed, lowered keyword to match")
	}
}
