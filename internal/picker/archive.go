package picker

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"sort"
)

// Draw is one past winning draw.
type Draw struct {
	Round   int    `json:"round"`
	Numbers []int  `json:"numbers"`
	Date    string `json:"date"`
}

// Archive holds past winning draws used by the statistics-based sources.
type Archive struct {
	draws []Draw
}

// NewArchive wraps a slice of draws.
func NewArchive(draws []Draw) *Archive {
	return &Archive{draws: draws}
}

// LoadArchive reads a winning-numbers JSON file. When the file is missing a
// sample archive is generated and written so the statistics sources have
// something to work with, matching the original tool's behavior.
func LoadArchive(path string) (*Archive, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		archive := sampleArchive()
		if out, merr := json.MarshalIndent(archive.draws, "", "  "); merr == nil {
			// Best effort; the in-memory sample works either way.
			_ = os.WriteFile(path, out, 0644)
		}
		return archive, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read winning numbers: %w", err)
	}

	var draws []Draw
	if err := json.Unmarshal(data, &draws); err != nil {
		return nil, fmt.Errorf("failed to parse winning numbers: %w", err)
	}

	return &Archive{draws: draws}, nil
}

// Len returns the number of archived draws.
func (a *Archive) Len() int { return len(a.draws) }

// MostFrequent returns the count most drawn numbers across the archive.
func (a *Archive) MostFrequent(count int) []int {
	return a.rank(a.draws, count, false)
}

// LeastFrequent returns the count least drawn numbers across the archive.
func (a *Archive) LeastFrequent(count int) []int {
	return a.rank(a.draws, count, true)
}

// Hot returns the six most drawn numbers over the last recent draws.
func (a *Archive) Hot(recent int) []int {
	draws := a.draws
	if len(draws) > recent {
		draws = draws[len(draws)-recent:]
	}
	return a.rank(draws, GameNumbers, false)
}

func (a *Archive) rank(draws []Draw, count int, ascending bool) []int {
	freq := map[int]int{}
	for _, d := range draws {
		for _, n := range d.Numbers {
			freq[n]++
		}
	}

	var nums []int
	for n := range freq {
		nums = append(nums, n)
	}
	sort.Slice(nums, func(i, j int) bool {
		if freq[nums[i]] != freq[nums[j]] {
			if ascending {
				return freq[nums[i]] < freq[nums[j]]
			}
			return freq[nums[i]] > freq[nums[j]]
		}
		return nums[i] < nums[j]
	})

	if len(nums) > count {
		nums = nums[:count]
	}
	return nums
}

// sampleArchive builds fifty synthetic draws. Seeded so repeated cold starts
// produce the same statistics.
func sampleArchive() *Archive {
	rng := rand.New(rand.NewSource(645))
	draws := make([]Draw, 0, 50)

	for i := 0; i < 50; i++ {
		pool := rng.Perm(MaxNumber)
		numbers := make([]int, GameNumbers)
		for j := 0; j < GameNumbers; j++ {
			numbers[j] = pool[j] + 1
		}
		sort.Ints(numbers)

		draws = append(draws, Draw{
			Round:   1000 + i,
			Numbers: numbers,
			Date:    fmt.Sprintf("2024-%02d-%02d", (i%12)+1, (i%28)+1),
		})
	}

	return &Archive{draws: draws}
}
