package bot

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/abdulachik/skyposter/internal/source"
)

// ErrUnknownBot is returned for a preset name that does not exist.
var ErrUnknownBot = errors.New("unknown bot")

// ZenFallbackCaption is posted when no quote can be fetched.
const ZenFallbackCaption = "Breathe. You’re doing just fine. 🌿"

// Preset describes one image bot: which account it posts as, what it
// searches for and how it captions.
type Preset struct {
	Name     string
	Account  string
	Category string
	Filter   *source.Filter
	Alt      string

	// QuoteCaption captions posts with a quote, falling back to FallbackCaption.
	QuoteCaption    bool
	FallbackCaption string

	pick func(rng *rand.Rand) string
}

// Query draws a search query.
func (p Preset) Query(rng *rand.Rand) source.Query {
	return source.Query{
		Term:     p.pick(rng),
		Category: p.Category,
		Filter:   p.Filter,
	}
}

var (
	soloCatTags = []string{
		"cute cat",
		"sleeping kitten",
		"majestic cat portrait",
		"fluffy cat indoors",
		"closeup kitten",
		"cyberpunk cat",
	}
	multiCatTags = []string{
		"group of cats",
		"funny cat party",
		"many kittens",
		"cats in nature",
		"cats playing",
	}
	zenPrompts = []string{
		"nature landscape",
		"calm forest",
		"sunrise over mountains",
		"peaceful lake",
		"zen garden",
		"misty morning hills",
		"minimal nature",
		"a path in nature",
		"calm ocean waves",
	}
)

var presets = map[string]Preset{
	"catsaday": {
		Name:    "catsaday",
		Account: "catsaday",
		pick: func(rng *rand.Rand) string {
			// Half the posts show one cat, half a group.
			if randFloat(rng) < 0.5 {
				return choose(rng, soloCatTags)
			}
			return choose(rng, multiCatTags)
		},
	},
	"chickenaday": {
		Name:     "chickenaday",
		Account:  "chickenaday",
		Category: "animals",
		Filter:   source.NewFilter(source.FilterConfig{Include: []string{"chicken", "rooster", "hen", "chick"}}),
		pick: func(*rand.Rand) string {
			return "chicken"
		},
	},
	"zenbites": {
		Name:            "zenbites",
		Account:         "zenbites",
		QuoteCaption:    true,
		FallbackCaption: ZenFallbackCaption,
		pick: func(rng *rand.Rand) string {
			return choose(rng, zenPrompts)
		},
	},
}

// Lookup returns the named preset.
func Lookup(name string) (Preset, error) {
	p, ok := presets[strings.ToLower(name)]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %q (available: %s)", ErrUnknownBot, name, strings.Join(Names(), ", "))
	}
	return p, nil
}

// Names lists preset names in sorted order.
func Names() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func choose(rng *rand.Rand, items []string) string {
	if rng == nil {
		return items[rand.IntN(len(items))]
	}
	return items[rng.IntN(len(items))]
}

func randFloat(rng *rand.Rand) float64 {
	if rng == nil {
		return rand.Float64()
	}
	return rng.Float64()
}
