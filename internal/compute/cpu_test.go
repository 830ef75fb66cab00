package compute

import (
	"runtime"
	"sync/atomic"
	"testing"
)

func TestDispatchVisitsEveryElementOnce(t *testing.T) {
	backends := []Backend{
		NewCPUBackend(),
		NewCPUBackendWorkers(1),
		NewCPUBackendWorkers(3),
		NewCUDABackend(),
	}

	for _, b := range backends {
		for _, n := range []int{0, 1, 15, 16, 17, 1000} {
			hits := make([]int32, n)
			b.Dispatch(n, func(i int) {
				atomic.AddInt32(&hits[i], 1)
			})
			for i, h := range hits {
				if h != 1 {
					t.Fatalf("%s n=%d: element %d visited %d times", b.Name(), n, i, h)
				}
			}
		}
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"", "auto", "cpu", "serial", "cuda"} {
		if ByName(name, 2) == nil {
			t.Errorf("ByName(%q) returned nil", name)
		}
	}
	if ByName("opencl", 2) != nil {
		t.Error("expected nil for unknown backend")
	}
}

func TestByNameHonorsWorkers(t *testing.T) {
	for _, name := range []string{"auto", "cpu"} {
		cpu, ok := ByName(name, 3).(*CPUBackend)
		if !ok {
			t.Fatalf("%s: expected the CPU backend", name)
		}
		if cpu.Workers() != 3 {
			t.Errorf("%s: workers = %d, want 3", name, cpu.Workers())
		}
	}
	if w := ByName("cpu", 0).(*CPUBackend).Workers(); w != runtime.NumCPU() {
		t.Errorf("unset workers = %d, want %d", w, runtime.NumCPU())
	}
	if w := ByName("cuda", 5).(*CUDABackend).cpu.Workers(); w != 5 {
		t.Errorf("device fallback workers = %d, want 5", w)
	}
}

func TestAutoSelectFallsBackToCPU(t *testing.T) {
	b := AutoSelectBackend(2)
	if !b.Available() {
		t.Errorf("auto-selected backend %s is not available", b.Name())
	}
}
