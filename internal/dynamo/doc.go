// Package dynamo provides the shared primitives of the contact-force core.
//
// The package defines the read-only views a contact law consumes and the
// errors raised while a simulation is being configured:
//
//   - [Particles]: position, velocity, angular velocity, radius, mass
//   - [Walls]: facet normal, velocity, rotation center and rotation velocity
//   - [InteractProps]: effective constants of a material pair
//   - [PBC]: periodic boundary correction
//
// # Thread Safety
//
// Implementations of the views must tolerate concurrent readers. Nothing in
// a contact law writes through them; accumulation goes through
// [github.com/san-kum/demsim/internal/accum].
package dynamo
