package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"
)

// ReadSafeTensors loads every tensor and the metadata from a SafeTensors file.
func ReadSafeTensors(path string) (map[string]*mat.Dense, map[string]string, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for frame dumps
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ReadFrom(file)
}

// ReadFrom parses a SafeTensors stream.
//
// Only two-dimensional F64 tensors are supported. The data section checksum
// is verified when the metadata carries one.
func ReadFrom(r io.Reader) (map[string]*mat.Dense, map[string]string, error) {
	var headerSize uint64
	if err := binary.Read(r, binary.LittleEndian, &headerSize); err != nil {
		return nil, nil, fmt.Errorf("failed to read header size: %w", err)
	}
	if headerSize > MaxHeaderSize {
		return nil, nil, fmt.Errorf("%w: %d bytes, max %d", ErrHeaderTooLarge, headerSize, MaxHeaderSize)
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerJSON); err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(headerJSON, &raw); err != nil {
		return nil, nil, fmt.Errorf("failed to parse header: %w", err)
	}

	metadata := map[string]string{}
	if m, ok := raw[metadataKey]; ok {
		if err := json.Unmarshal(m, &metadata); err != nil {
			return nil, nil, fmt.Errorf("failed to parse metadata: %w", err)
		}
		delete(raw, metadataKey)
	}

	headers := make(map[string]SafeTensorHeader, len(raw))
	metas := make([]TensorMeta, 0, len(raw))
	for name, msg := range raw {
		if err := ValidateTensorName(name); err != nil {
			return nil, nil, err
		}
		var h SafeTensorHeader
		if err := json.Unmarshal(msg, &h); err != nil {
			return nil, nil, fmt.Errorf("failed to parse tensor %q: %w", name, err)
		}
		if err := checkTensorHeader(name, h); err != nil {
			return nil, nil, err
		}
		headers[name] = h
		metas = append(metas, TensorMeta{
			Name:   name,
			Offset: h.DataOffsets[0],
			Size:   h.DataOffsets[1] - h.DataOffsets[0],
		})
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read tensor data: %w", err)
	}
	if err := ValidateTensorOffsets(metas, int64(len(data))); err != nil {
		return nil, nil, err
	}
	if sum, ok := metadata[ChecksumKey]; ok {
		if err := ValidateChecksum(data, sum); err != nil {
			return nil, nil, err
		}
	}

	stateDict := make(map[string]*mat.Dense, len(headers))
	for name, h := range headers {
		rows, cols := int(h.Shape[0]), int(h.Shape[1])
		buf := data[h.DataOffsets[0]:h.DataOffsets[1]]
		values := make([]float64, rows*cols)
		for i := range values {
			values[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*f64Size:]))
		}
		stateDict[name] = mat.NewDense(rows, cols, values)
	}
	return stateDict, metadata, nil
}

// checkTensorHeader verifies dtype, rank and that the byte range matches the shape.
func checkTensorHeader(name string, h SafeTensorHeader) error {
	if h.DType != dtypeF64 {
		return &ValidationError{
			Type:    "unsupported_dtype",
			Tensor:  name,
			Details: fmt.Sprintf("dtype %q, want %s", h.DType, dtypeF64),
			Err:     ErrUnsupportedTensor,
		}
	}
	if len(h.Shape) != 2 || h.Shape[0] <= 0 || h.Shape[1] <= 0 {
		return &ValidationError{
			Type:    "unsupported_shape",
			Tensor:  name,
			Details: fmt.Sprintf("shape %v, want two positive dims", h.Shape),
			Err:     ErrUnsupportedTensor,
		}
	}
	if want := h.Shape[0] * h.Shape[1] * f64Size; h.DataOffsets[1]-h.DataOffsets[0] != want {
		return &ValidationError{
			Type:    "size_mismatch",
			Tensor:  name,
			Details: fmt.Sprintf("data_offsets %v hold %d bytes, shape needs %d", h.DataOffsets, h.DataOffsets[1]-h.DataOffsets[0], want),
			Err:     ErrOutOfBounds,
		}
	}
	return nil
}
