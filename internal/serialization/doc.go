// Package serialization saves and loads named float64 matrices in the
// SafeTensors format.
//
//	Format Structure:
//	  [8 bytes: Header Size (uint64 LE)]
//	  [Header: JSON object, tensor name -> {dtype, shape, data_offsets}]
//	  [Tensor data: little-endian float64, row-major, sorted by name]
//
// Every tensor is written as dtype "F64" with a two-dimensional shape. The
// optional "__metadata__" entry holds string key/value pairs; the writer
// adds a SHA-256 of the data section under ChecksumKey and the reader
// verifies it when present.
//
// Example usage:
//
//	// Save
//	err := serialization.WriteSafeTensors("model.safetensors", stateDict, map[string]string{
//	    "activation": "tanh",
//	})
//
//	// Load
//	stateDict, metadata, err := serialization.ReadSafeTensors("model.safetensors")
package serialization
