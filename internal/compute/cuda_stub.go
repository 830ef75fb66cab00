package compute

// CUDABackend stands in for a device backend. No device kernels ship with this
// module, so it reports itself unavailable and runs kernels on the CPU.
type CUDABackend struct {
	cpu *CPUBackend
}

func NewCUDABackend() *CUDABackend {
	return newCUDAFallback(0)
}

func newCUDAFallback(workers int) *CUDABackend {
	return &CUDABackend{cpu: cpuWorkers(workers)}
}

func (c *CUDABackend) Name() string    { return "cuda (not available)" }
func (c *CUDABackend) Available() bool { return false }
func (c *CUDABackend) Cleanup()        {}

func (c *CUDABackend) Dispatch(n int, kernel func(i int)) {
	c.cpu.Dispatch(n, kernel)
}
