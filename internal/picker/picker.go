// package picker generates Lotto 6/45 number sets.
//
// Strategies draw on an archive of past winning numbers (frequent, rare,
// hot) or pure randomness. Every generated set is sorted and contains
// distinct numbers in 1..45.
package picker

import (
	"fmt"
	"math/rand"
	"sort"
	"time"
)

// Play modes for a single game.
const (
	ModeAuto   = "auto"   // site picks all six
	ModeSemi   = "semi"   // three fixed, site picks the rest
	ModeManual = "manual" // all six fixed
)

// Number sources for generated picks.
const (
	SourceRandom   = "random"
	SourceFrequent = "frequent"
	SourceRare     = "rare"
	SourceHot      = "hot"
	SourceMixed    = "mixed"
)

// GameNumbers is how many numbers a full game needs.
const GameNumbers = 6

// SemiNumbers is how many numbers a semi-auto game fixes.
const SemiNumbers = 3

// MaxNumber is the highest ball in Lotto 6/45.
const MaxNumber = 45

// Picker generates number sets from an archive and a random source.
type Picker struct {
	archive *Archive
	rng     *rand.Rand
}

// New creates a Picker. A nil rng gets a time-seeded source. A nil archive
// behaves like an empty one, so archive-backed sources fall back to random
// picks.
func New(archive *Archive, rng *rand.Rand) *Picker {
	if archive == nil {
		archive = NewArchive(nil)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Picker{archive: archive, rng: rng}
}

// Generate returns count distinct sorted numbers using the named source.
func (p *Picker) Generate(source string, count int) ([]int, error) {
	if count < 1 || count > GameNumbers {
		return nil, fmt.Errorf("pick count must be between 1 and %d, got %d", GameNumbers, count)
	}

	switch source {
	case SourceRandom, "":
		return p.random(count, nil), nil
	case SourceFrequent:
		return p.fill(p.archive.MostFrequent(count), count), nil
	case SourceRare:
		return p.fill(p.archive.LeastFrequent(count), count), nil
	case SourceHot:
		return p.fill(p.archive.Hot(10), count), nil
	case SourceMixed:
		return p.mixed(count), nil
	default:
		return nil, fmt.Errorf("unknown number source %q", source)
	}
}

// NumbersFor resolves the picks for one configured game slot.
//
// Explicit numbers win when their count matches the mode (three for semi,
// six for manual); otherwise a fresh set is generated from the slot's
// source. Auto mode always resolves to an empty set.
func (p *Picker) NumbersFor(mode, source string, explicit []int) ([]int, error) {
	switch mode {
	case ModeAuto:
		return nil, nil
	case ModeSemi:
		if len(explicit) == SemiNumbers && distinct(explicit) {
			return sortedCopy(explicit), nil
		}
		return p.Generate(source, SemiNumbers)
	case ModeManual:
		if len(explicit) == GameNumbers && distinct(explicit) {
			return sortedCopy(explicit), nil
		}
		return p.Generate(source, GameNumbers)
	default:
		return nil, fmt.Errorf("unknown play mode %q", mode)
	}
}

// mixed takes three hot and two rare numbers, topped up with randoms.
func (p *Picker) mixed(count int) []int {
	seen := map[int]bool{}
	var picks []int

	take := func(pool []int, limit int) {
		for _, n := range pool {
			if limit == 0 {
				return
			}
			if !seen[n] && len(picks) < count {
				seen[n] = true
				picks = append(picks, n)
				limit--
			}
		}
	}

	take(p.archive.Hot(10), 3)
	take(p.archive.LeastFrequent(GameNumbers), 2)

	picks = append(picks, p.random(count-len(picks), seen)...)
	sort.Ints(picks)
	return picks
}

// fill pads an archive-derived list with randoms up to count.
func (p *Picker) fill(base []int, count int) []int {
	seen := map[int]bool{}
	var picks []int
	for _, n := range base {
		if !seen[n] && len(picks) < count {
			seen[n] = true
			picks = append(picks, n)
		}
	}
	picks = append(picks, p.random(count-len(picks), seen)...)
	sort.Ints(picks)
	return picks
}

// random draws count distinct numbers not present in exclude.
func (p *Picker) random(count int, exclude map[int]bool) []int {
	if count <= 0 {
		return nil
	}

	var pool []int
	for n := 1; n <= MaxNumber; n++ {
		if !exclude[n] {
			pool = append(pool, n)
		}
	}
	p.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	picks := append([]int(nil), pool[:count]...)
	sort.Ints(picks)
	return picks
}

func distinct(nums []int) bool {
	seen := map[int]bool{}
	for _, n := range nums {
		if seen[n] {
			return false
		}
		seen[n] = true
	}
	return true
}

func sortedCopy(nums []int) []int {
	out := append([]int(nil), nums...)
	sort.Ints(out)
	return out
}
