package payment

import (
	"math/rand"
	"sync"
)

// Outcome supplies the gateway's random draws, each in [0, 1).
type Outcome interface {
	Sample() float64
}

type randOutcome struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRandOutcome returns a seeded source that is safe for concurrent settles.
func NewRandOutcome(seed int64) Outcome {
	return &randOutcome{r: rand.New(rand.NewSource(seed))}
}

func (o *randOutcome) Sample() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.r.Float64()
}
