// Package compute provides execution backends for batched contact evaluation.
//
// [ByName] resolves a configured backend; "auto" picks the best available:
//
//   - CUDA: device execution (stub in this build, falls back to CPU)
//   - CPU: chunked goroutines over the element range
//
// # Batched Evaluation
//
// A backend runs one kernel invocation per collision element:
//
//	backend := compute.ByName("auto", workers)
//	backend.Dispatch(len(ids), func(i int) { ... })
//
// Kernels must only write to slot i of their output buffers.
package compute
