package arena

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// Hibernated column layout: three per-node columns followed by the free list.
const (
	columnLeft = iota
	columnRight
	columnLive
	columnGaps

	hibernatedColumns
	nodeColumns = columnGaps
)

// uint32ByteSize is the number of bytes in a uint32.
const uint32ByteSize = 4

// Block encodings, stored in the first byte of every compressed column.
const (
	blockRaw byte = iota
	blockLZ4
)

// ErrCorruptColumn is returned when a hibernated column cannot be restored.
var ErrCorruptColumn = errors.New("corrupt hibernated column")

// compressUInt32Slice compresses a slice of uint32-s with LZ4. Incompressible
// input is stored raw.
func compressUInt32Slice(data []uint32) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	buf := new(bytes.Buffer)

	err := binary.Write(buf, binary.LittleEndian, data)
	if err != nil {
		return nil, fmt.Errorf("encode column: %w", err)
	}

	compressed := make([]byte, 1+lz4.CompressBlockBound(buf.Len()))

	written, err := lz4.CompressBlock(buf.Bytes(), compressed[1:], nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}

	if written == 0 {
		raw := make([]byte, 1+buf.Len())
		raw[0] = blockRaw
		copy(raw[1:], buf.Bytes())

		return raw, nil
	}

	compressed[0] = blockLZ4

	return compressed[:1+written], nil
}

// decompressUInt32Slice restores a column produced by compressUInt32Slice.
// result must be preallocated with the original length.
func decompressUInt32Slice(data []byte, result []uint32) error {
	if len(result) == 0 {
		return nil
	}

	if len(data) == 0 {
		return fmt.Errorf("%w: empty block for %d values", ErrCorruptColumn, len(result))
	}

	decoded := make([]byte, len(result)*uint32ByteSize)

	switch data[0] {
	case blockRaw:
		if copy(decoded, data[1:]) != len(decoded) {
			return fmt.Errorf("%w: short raw block", ErrCorruptColumn)
		}
	case blockLZ4:
		n, err := lz4.UncompressBlock(data[1:], decoded)
		if err != nil {
			return fmt.Errorf("lz4 uncompress: %w", err)
		}

		if n != len(decoded) {
			return fmt.Errorf("%w: got %d bytes instead of %d", ErrCorruptColumn, n, len(decoded))
		}
	default:
		return fmt.Errorf("%w: unknown block encoding %d", ErrCorruptColumn, data[0])
	}

	err := binary.Read(bytes.NewReader(decoded), binary.LittleEndian, result)
	if err != nil {
		return fmt.Errorf("decode column: %w", err)
	}

	return nil
}

func compressColumns(columns [hibernatedColumns][]uint32) ([hibernatedColumns][]byte, error) {
	var (
		packed [hibernatedColumns][]byte
		errs   [hibernatedColumns]error
	)

	wg := &sync.WaitGroup{}
	wg.Add(len(columns))

	for idx, column := range columns {
		go func(colIdx int, col []uint32) {
			defer wg.Done()

			packed[colIdx], errs[colIdx] = compressUInt32Slice(col)
		}(idx, column)
	}

	wg.Wait()

	return packed, errors.Join(errs[:]...)
}

func decompressColumns(packed [hibernatedColumns][]byte, columns [hibernatedColumns][]uint32) error {
	var errs [hibernatedColumns]error

	wg := &sync.WaitGroup{}
	wg.Add(len(columns))

	for idx := range columns {
		go func(colIdx int) {
			defer wg.Done()

			errs[colIdx] = decompressUInt32Slice(packed[colIdx], columns[colIdx])
		}(idx)
	}

	wg.Wait()

	return errors.Join(errs[:]...)
}
