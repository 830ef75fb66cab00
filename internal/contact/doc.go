// Package contact implements the contact laws of the engine.
//
// Each law is written once as a pure kernel over primitive inputs and is
// driven either per pair through [Model.Calculate], reading entity state from
// the accessor views bound by [Model.SetSystem], or for every collision of one
// kind through [Model.CalculateBatch] over flat [Buffers]. Both drivers call
// the same kernel, so they agree exactly.
//
// Evaluation writes only the record of the pair. Forces reach entities
// through [Consolidate], which adds them to an [accum.Accumulator].
package contact
