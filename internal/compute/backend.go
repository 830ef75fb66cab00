package compute

// Backend executes batched kernels over flattened buffers.
type Backend interface {
	Name() string
	Available() bool
	// Dispatch runs kernel(i) for every i in [0, n). Elements must not depend
	// on each other; Dispatch returns once all of them have completed.
	Dispatch(n int, kernel func(i int))
	Cleanup()
}

// AutoSelectBackend prefers a device backend and falls back to a CPU
// backend with the given number of workers (all CPUs when workers < 1).
func AutoSelectBackend(workers int) Backend {
	cuda := newCUDAFallback(workers)
	if cuda.Available() {
		return cuda
	}
	return cuda.cpu
}

// ByName returns the backend for a configuration value: "auto", "cpu",
// "serial" or "cuda". CPU execution uses workers goroutines, or every CPU
// when workers < 1. Unknown names return nil.
func ByName(name string, workers int) Backend {
	switch name {
	case "", "auto":
		return AutoSelectBackend(workers)
	case "cpu":
		return cpuWorkers(workers)
	case "serial":
		return NewCPUBackendWorkers(1)
	case "cuda":
		return newCUDAFallback(workers)
	}
	return nil
}

func cpuWorkers(workers int) *CPUBackend {
	if workers < 1 {
		return NewCPUBackend()
	}
	return NewCPUBackendWorkers(workers)
}
