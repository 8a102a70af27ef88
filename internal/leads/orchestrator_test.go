package leads

import (
	"sync"
	"testing"

	"dealership_crm_backend/platform/logger"
)

// The guard itself is what these tests pin down: one slot per sweep
// kind, released on completion.

func newGuardOnlyOrchestrator() *Orchestrator {
	return NewOrchestrator(nil, nil, logger.New("development"))
}

func TestMarkRunningSingleFlight(t *testing.T) {
	o := newGuardOnlyOrchestrator()

	if !o.markRunning(sweepDistribution) {
		t.Fatal("first mark must succeed")
	}
	if o.markRunning(sweepDistribution) {
		t.Fatal("second mark while running must be refused")
	}
	// A different sweep kind has its own slot.
	if !o.markRunning(sweepPromotion) {
		t.Fatal("promotion slot must be independent")
	}

	o.markComplete(sweepDistribution)
	if !o.markRunning(sweepDistribution) {
		t.Fatal("slot must reopen after completion")
	}
}

func TestMarkRunningUnderContention(t *testing.T) {
	o := newGuardOnlyOrchestrator()

	const attempts = 50
	wins := make(chan bool, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wins <- o.markRunning(sweepPromotion)
		}()
	}
	wg.Wait()
	close(wins)

	winners := 0
	for won := range wins {
		if won {
			winners++
		}
	}
	if winners != 1 {
		t.Fatalf("%d concurrent triggers won the slot, want exactly 1", winners)
	}
}
