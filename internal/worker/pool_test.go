package worker

import (
	"sync/atomic"
	"testing"
)

func TestPoolRunsAllJobs(t *testing.T) {
	p := NewPool(4)
	var ran int64
	for i := 0; i < 100; i++ {
		p.Submit(func() { atomic.AddInt64(&ran, 1) })
	}
	p.Stop()
	if ran != 100 {
		t.Fatalf("ran = %d, want 100", ran)
	}
}
