package parallel

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestPool_Run(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		n       int
	}{
		{"single item", 4, 1},
		{"fewer items than workers", 4, 3},
		{"many items", 3, 100},
		{"default workers", 0, 50},
		{"nothing", 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPool(tt.workers)
			defer p.Close()

			seen := make([]atomic.Int32, tt.n)
			p.Run(tt.n, func(i int) { seen[i].Add(1) })
			for i := range seen {
				if got := seen[i].Load(); got != 1 {
					t.Errorf("item %d ran %d times, want 1", i, got)
				}
			}
		})
	}
}

func TestPool_Workers(t *testing.T) {
	p := NewPool(3)
	defer p.Close()
	if p.Workers() != 3 {
		t.Errorf("Workers() = %d, want 3", p.Workers())
	}

	d := NewPool(-1)
	defer d.Close()
	if d.Workers() < 1 {
		t.Errorf("Workers() = %d for the default pool", d.Workers())
	}
}

func TestPool_Stealing(t *testing.T) {
	p := NewPool(2)
	defer p.Close()

	// Items 0 and 2 land on the first worker; the slow first item must not
	// keep the second worker idle.
	var done atomic.Int32
	start := time.Now()
	p.Run(4, func(i int) {
		if i == 0 {
			time.Sleep(50 * time.Millisecond)
		}
		done.Add(1)
	})
	if done.Load() != 4 {
		t.Fatalf("ran %d items, want 4", done.Load())
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Run took %v", elapsed)
	}
}

func TestPool_RunAfterClose(t *testing.T) {
	p := NewPool(2)
	p.Close()
	p.Close()

	ran := 0
	p.Run(5, func(int) { ran++ })
	if ran != 5 {
		t.Errorf("ran %d items after Close, want 5", ran)
	}
}
