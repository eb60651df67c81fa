// Copyright (c) 2024, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package batchrand

import (
	"golang.org/x/exp/rand"
)

// golden-ratio increment used to decorrelate nearby seeds
const seedMix = 0x9E3779B97F4A7C15

// Seeder hands out per-instance episode seeds from a main generator.
type Seeder struct {
	Seed uint64 `desc:"main seed"`

	rng *rand.Rand
}

// NewSeeder returns a seeder driven by the given main seed.
func NewSeeder(seed uint64) *Seeder {
	return &Seeder{Seed: seed, rng: rand.New(rand.NewSource(seed))}
}

// Next draws n fresh episode seeds.
func (sd *Seeder) Next(n int) []uint64 {
	seeds := make([]uint64, n)
	for i := range seeds {
		seeds[i] = sd.rng.Uint64()
	}
	return seeds
}

// EpisodeSeeds derives n instance seeds for a given episode index directly
// from the main seed, independent of any previously drawn episodes.
func EpisodeSeeds(seed uint64, episode, n int) []uint64 {
	r := rand.New(rand.NewSource(seed ^ (uint64(episode+1) * seedMix)))
	seeds := make([]uint64, n)
	for i := range seeds {
		seeds[i] = r.Uint64()
	}
	return seeds
}
