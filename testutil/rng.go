package testutil

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/hupe1980/starscan/model"
)

var (
	planetClasses = []string{"Icy body", "Rocky body", "High metal content world", "Water world", "Earth-like world", "Ammonia world"}
	starClasses   = []string{"M (Red dwarf) Star", "K (Yellow-Orange) Star", "G (White-Yellow) Star", "F (White) Star"}
	atmospheres   = []string{"", "Thin Ammonia", "Thin Carbon dioxide", "Thin Water", "Nitrogen"}
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Perm returns a pseudo-random permutation of [0,n).
func (r *RNG) Perm(n int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Perm(n)
}

// Systems generates n procedurally named systems in sector, spread over a
// 1000 ly cube anchored at the origin. Every system has one star and up to
// five planets orbiting it, some with moons.
func (r *RNG) Systems(sector string, n int) []model.System {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.System, 0, n)
	for i := range n {
		mass := fmt.Sprintf("%c%c-%c", 'A'+r.rand.Intn(26), 'A'+r.rand.Intn(26), 'A'+r.rand.Intn(8))
		name := fmt.Sprintf("%s %s %c%d-%d", sector, mass, 'a'+r.rand.Intn(8), r.rand.Intn(10), i)

		bodies := []model.Body{
			{Type: "Star", SubType: starClasses[r.rand.Intn(len(starClasses))], Parent: model.NoParent},
		}
		for p := range r.rand.Intn(6) {
			g := r.rand.Float64() * 3
			temp := 50 + r.rand.Float64()*500
			planet := model.Body{
				Name:        fmt.Sprintf("%s %d", name, p+1),
				Type:        "Planet",
				SubType:     planetClasses[r.rand.Intn(len(planetClasses))],
				Atmosphere:  atmospheres[r.rand.Intn(len(atmospheres))],
				Gravity:     &g,
				Temperature: &temp,
				Parent:      0,
			}
			bodies = append(bodies, planet)
			if r.rand.Intn(3) == 0 {
				mg := g / 4
				bodies = append(bodies, model.Body{
					Name:    fmt.Sprintf("%s %d a", name, p+1),
					Type:    "Planet",
					SubType: planetClasses[r.rand.Intn(len(planetClasses))],
					Gravity: &mg,
					Parent:  len(bodies) - 1,
				})
			}
		}

		out = append(out, model.System{
			Name: name,
			ID64: r.rand.Uint64() >> 1,
			Coords: model.Coordinate{
				X: r.rand.Float64() * 1000,
				Y: r.rand.Float64() * 1000,
				Z: r.rand.Float64() * 1000,
			},
			Bodies: bodies,
		})
	}
	return out
}
