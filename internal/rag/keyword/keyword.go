package keyword

import "strings"

// Filter is a pure predicate over a fixed keyword bank. Matching is
// case-insensitive substring containment, not word-boundary tokenization:
// "huskies" matches the keyword "husky"-adjacent entry "huskies" but also
// any URL slug that embeds it. The pipeline applies it twice, once to URLs
// before fetching and once to fetched page content.
type Filter struct {
	keywords []string
}

func NewFilter(keywords []string) *Filter {
	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			lowered = append(lowered, kw)
		}
	}
	return &Filter{keywords: lowered}
}

func (f *Filter) Matches(text string) bool {
	lowered := strings.ToLower(text)
	for _, kw := range f.keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// DogKeywords is the fixed domain bank: general canine terms plus popular
// breeds and their common synonyms, pre-enumerated because URL slugs use
// hyphenated breed names ("yorkshire-terrier") while page prose uses the
// colloquial forms ("yorkie").
var DogKeywords = []string{
	"dog", "dogs", "canine", "puppy", "puppies", "k9", "hound", "pooch", "pooches", "mutt", "mutts",
	"pup", "canids", "doggy", "doggo",
	"labrador", "labrador-retriever", "lab", "labs",
	"german-shepherd", "shepherd",
	"golden-retriever", "golden",
	"beagle", "beagles",
	"bulldog", "bulldogs", "english-bulldog", "french-bulldog",
	"poodle", "poodles",
	"rottweiler", "rottweilers",
	"yorkshire-terrier", "yorkie", "yorkies",
	"boxer", "boxers",
	"dachshund", "dachshunds", "sausage-dog",
	"siberian-husky", "husky", "huskies",
	"doberman", "dobermans", "dobie",
	"shih-tzu", "shih-tzus",
	"chihuahua", "chihuahuas",
	"great-dane", "great-danes",
	"pomeranian", "pomeranians",
	"border-collie", "collie", "collies",
	"mastiff", "mastiffs",
	"cocker-spaniel", "spaniel", "spaniels",
	"dalmatian", "dalmatians",
	"boston-terrier", "boston-terriers",
	"australian-shepherd", "aussie", "aussies",
	"bernese-mountain-dog", "bernese",
}
