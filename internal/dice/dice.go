// Package dice implements the stat-and-skill check used for crafting
// rolls: a pool of exploding d10s sized by stat + skill + bonus dice,
// of which only the best few are kept, measured against a difficulty.
// A positive result is the success margin, a negative one the failure
// margin.
package dice

import (
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/packetdancer/arx/internal/model"
)

// defaultKeep is the number of kept dice every roll starts from. The
// higher it is, the less a skilled character stands out.
const defaultKeep = 2

// explodeVal is the face value at which a die rolls again and adds.
const explodeVal = 10

// Roller performs checks against an internal random source. Safe for
// concurrent use.
type Roller struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRoller creates a Roller with a randomly seeded source.
func NewRoller() *Roller {
	return &Roller{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeededRoller creates a Roller with a deterministic source.
func NewSeededRoller(seed uint64) *Roller {
	return &Roller{rng: rand.New(rand.NewPCG(seed, seed))}
}

// Roll performs a single check for the actor: roll stat+skill+bonus
// exploding d10s, keep the best dice, apply any critical multiplier,
// subtract difficulty. The sign convention matches what the crafting
// quality resolver expects.
func (r *Roller) Roll(actor *model.Character, stat, skill string, difficulty, bonusDice int32) int32 {
	statVal := actor.Stat(stat)
	skillVal := actor.Skill(skill)

	keep := int32(defaultKeep)
	if statVal > 0 {
		keep = 1 + statVal/2
	}
	keep += skillVal
	if keep < 1 {
		keep = 1
	}

	pool := statVal + skillVal + bonusDice
	if pool < 0 {
		pool = 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rolls := make([]int32, pool)
	for i := range rolls {
		rolls[i] = r.explode(r.d10())
	}
	slices.Sort(rolls)
	if int32(len(rolls)) > keep {
		rolls = rolls[int32(len(rolls))-keep:]
	}

	var result int32
	for _, die := range rolls {
		result += die
	}

	mult := r.critMultiplier()
	if difficulty > 0 {
		result = int32(float64(result) * mult)
		result -= difficulty
	} else {
		// Negative difficulty accumulates before the crit applies,
		// which makes invested difficulty reduction worth more.
		result -= difficulty
		result = int32(float64(result) * mult)
	}
	return result
}

// IntN draws a uniform value in [0, n) from the roller's source.
func (r *Roller) IntN(n int32) int32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Int32N(n)
}

func (r *Roller) d10() int32 {
	return r.rng.Int32N(10) + 1
}

// explode keeps rolling while dice land on the explode value.
func (r *Roller) explode(die int32) int32 {
	total := die
	for die >= explodeVal {
		die = r.d10()
		total += die
	}
	return total
}

// critMultiplier rolls the 1-in-20 critical table.
func (r *Roller) critMultiplier() float64 {
	roll := r.rng.Int32N(100) + 1
	switch {
	case roll > 5:
		return 1
	case roll > 4:
		return 1.5
	case roll > 3:
		return 1.75
	case roll > 2:
		return 2
	case roll > 1:
		return 2.25
	default:
		return 2.5
	}
}
