package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/gonum/mat"
)

const (
	metadataKey = "__metadata__"
	dtypeF64    = "F64"
	f64Size     = 8
)

// SafeTensorHeader represents a tensor in the SafeTensors header.
type SafeTensorHeader struct {
	DType       string   `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// WriteSafeTensors writes matrices to a SafeTensors file, creating parent
// directories as needed.
//
// Tensors are written in alphabetical order by name.
func WriteSafeTensors(path string, stateDict map[string]*mat.Dense, metadata map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	//nolint:gosec // G304: File path comes from user input, which is expected for frame dumps
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := WriteTo(file, stateDict, metadata); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// WriteTo writes a state dictionary in SafeTensors format to w.
//
// The same tensor count and header size limits as ReadFrom apply, so
// anything WriteTo accepts can be read back.
func WriteTo(w io.Writer, stateDict map[string]*mat.Dense, metadata map[string]string) error {
	if len(stateDict) > MaxTensorCount {
		return &ValidationError{
			Type:    "too_many_tensors",
			Details: fmt.Sprintf("got %d, max %d", len(stateDict), MaxTensorCount),
			Err:     ErrUnsupportedTensor,
		}
	}

	// Sort tensor names alphabetically (SafeTensors requirement)
	tensorNames := make([]string, 0, len(stateDict))
	for name := range stateDict {
		if err := ValidateTensorName(name); err != nil {
			return err
		}
		tensorNames = append(tensorNames, name)
	}
	sort.Strings(tensorNames)

	header := make(map[string]any, len(tensorNames)+1)
	var data []byte
	for _, name := range tensorNames {
		m := stateDict[name]
		rows, cols := m.Dims()
		start := int64(len(data))
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				data = binary.LittleEndian.AppendUint64(data, math.Float64bits(m.At(i, j)))
			}
		}

		header[name] = SafeTensorHeader{
			DType:       dtypeF64,
			Shape:       []int64{int64(rows), int64(cols)},
			DataOffsets: [2]int64{start, int64(len(data))},
		}
	}

	meta := make(map[string]string, len(metadata)+1)
	for k, v := range metadata {
		meta[k] = v
	}
	meta[ChecksumKey] = ComputeChecksum(data)
	header[metadataKey] = meta

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	if len(headerJSON) > MaxHeaderSize {
		return fmt.Errorf("%w: %d bytes, max %d", ErrHeaderTooLarge, len(headerJSON), MaxHeaderSize)
	}

	// Write header size (8 bytes, little-endian uint64)
	if err := binary.Write(w, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write tensor data: %w", err)
	}
	return nil
}
