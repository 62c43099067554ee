package serialization

import (
	"fmt"
	"sort"
	"strings"
)

// Validation limits for resource protection.
const (
	MaxHeaderSize    = 1 << 20 // 1MB - maximum header size
	MaxTensorCount   = 1024    // Maximum number of tensors in a file
	MaxTensorNameLen = 256     // Maximum tensor name length
)

// TensorMeta describes where a tensor lives in the data section.
type TensorMeta struct {
	Name   string // Tensor name (e.g., "W1")
	Offset int64  // Offset in the data section
	Size   int64  // Size in bytes
}

// ValidateTensorOffsets checks for overlapping tensor offsets and out-of-bounds access.
func ValidateTensorOffsets(tensors []TensorMeta, dataSize int64) error {
	if len(tensors) > MaxTensorCount {
		return &ValidationError{
			Type:    "too_many_tensors",
			Details: fmt.Sprintf("got %d, max %d", len(tensors), MaxTensorCount),
			Err:     ErrUnsupportedTensor,
		}
	}

	sorted := make([]TensorMeta, len(tensors))
	copy(sorted, tensors)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})

	for i, t := range sorted {
		if t.Offset < 0 || t.Size < 0 {
			return &ValidationError{
				Type:    "negative_offset",
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset=%d, size=%d (negative values not allowed)", t.Offset, t.Size),
				Err:     ErrNegativeOffset,
			}
		}

		if t.Offset+t.Size > dataSize {
			return &ValidationError{
				Type:    "out_of_bounds",
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset %d + size %d > data_size %d", t.Offset, t.Size, dataSize),
				Err:     ErrOutOfBounds,
			}
		}

		if i < len(sorted)-1 {
			next := sorted[i+1]
			if t.Offset+t.Size > next.Offset {
				return &ValidationError{
					Type:    "offset_overlap",
					Tensor:  t.Name,
					Tensor2: next.Name,
					Details: fmt.Sprintf("regions [%d-%d] and [%d-%d] overlap",
						t.Offset, t.Offset+t.Size, next.Offset, next.Offset+next.Size),
					Err: ErrOffsetOverlap,
				}
			}
		}
	}

	return nil
}

// ValidateTensorName rejects empty, oversized and path-like names.
func ValidateTensorName(name string) error {
	if name == "" || len(name) > MaxTensorNameLen {
		return &ValidationError{
			Type:    "invalid_name",
			Tensor:  name,
			Details: fmt.Sprintf("length %d not in [1, %d]", len(name), MaxTensorNameLen),
			Err:     ErrInvalidTensorName,
		}
	}
	if name == metadataKey {
		return &ValidationError{
			Type:    "invalid_name",
			Tensor:  name,
			Details: "reserved for metadata",
			Err:     ErrInvalidTensorName,
		}
	}
	if strings.ContainsAny(name, "/\\\x00") || strings.Contains(name, "..") {
		return &ValidationError{
			Type:    "invalid_name",
			Tensor:  name,
			Details: "contains a path separator, '..' or a null byte",
			Err:     ErrInvalidTensorName,
		}
	}
	return nil
}
