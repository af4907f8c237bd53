// Package replay parses recorded-session containers (.osr files) into a
// monotonic timeline of device samples.
//
// The container is a little-endian binary header (game mode, format version,
// length-prefixed strings including the target sequence's MD5 digest)
// followed by an LZMA-compressed frame stream. Each frame carries the time
// delta since the previous frame and the absolute pointer position; absolute
// frame times are rebuilt here by cumulative summation, which is what makes
// the resulting timeline monotonically non-decreasing.
package replay

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ulikunitz/xz/lzma"

	"github.com/aimdrift/aimdrift/internal/domain/model"
)

const (
	stringMarkerEmpty   = 0x00
	stringMarkerPresent = 0x0b
	maxStringLen        = 1 << 20
	maxFrameDataLen     = 1 << 28
	frameFieldCount     = 4
)

// Session is a parsed recorded session.
type Session struct {
	Mode          byte
	Version       int32
	BeatmapDigest string // MD5 hex of the target-sequence source
	Player        string
	ReplayDigest  string
	Timeline      []model.DeviceSample
}

// ParseFile reads a session container from disk.
func ParseFile(path string) (*Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a session container. A truncated header or frame stream is
// an error; individual malformed frames inside an intact stream are skipped.
func Parse(r io.Reader) (*Session, error) {
	br := bufio.NewReader(r)
	s := &Session{}

	var err error
	if s.Mode, err = br.ReadByte(); err != nil {
		return nil, fmt.Errorf("%w: game mode: %w", ErrTruncated, err)
	}
	if err = binary.Read(br, binary.LittleEndian, &s.Version); err != nil {
		return nil, fmt.Errorf("%w: format version: %w", ErrTruncated, err)
	}
	if s.BeatmapDigest, err = readString(br); err != nil {
		return nil, fmt.Errorf("beatmap digest: %w", err)
	}
	if s.Player, err = readString(br); err != nil {
		return nil, fmt.Errorf("player name: %w", err)
	}
	if s.ReplayDigest, err = readString(br); err != nil {
		return nil, fmt.Errorf("replay digest: %w", err)
	}

	// Hit counts (6 x uint16), score, max combo, perfect flag, mods.
	if err = skip(br, 6*2+4+2+1+4); err != nil {
		return nil, fmt.Errorf("%w: score block: %w", ErrTruncated, err)
	}
	// Lifebar graph, stored as a string.
	if _, err = readString(br); err != nil {
		return nil, fmt.Errorf("lifebar graph: %w", err)
	}
	// Session timestamp (int64 ticks).
	if err = skip(br, 8); err != nil {
		return nil, fmt.Errorf("%w: timestamp: %w", ErrTruncated, err)
	}

	var dataLen int32
	if err = binary.Read(br, binary.LittleEndian, &dataLen); err != nil {
		return nil, fmt.Errorf("%w: frame data length: %w", ErrTruncated, err)
	}
	if dataLen < 0 || dataLen > maxFrameDataLen {
		return nil, fmt.Errorf("%w: frame data length %d", ErrMalformed, dataLen)
	}

	compressed := make([]byte, dataLen)
	if _, err = io.ReadFull(br, compressed); err != nil {
		return nil, fmt.Errorf("%w: frame data: %w", ErrTruncated, err)
	}
	frames, err := decompressFrames(compressed)
	if err != nil {
		return nil, err
	}

	s.Timeline = buildTimeline(frames)
	return s, nil
}

// decompressFrames inflates the classic-LZMA frame payload.
func decompressFrames(compressed []byte) ([]byte, error) {
	lr, err := lzma.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("%w: lzma header: %w", ErrMalformed, err)
	}
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, fmt.Errorf("%w: lzma stream: %w", ErrMalformed, err)
	}
	return data, nil
}

// buildTimeline rebuilds absolute sample times from the frame stream
// "dt|x|y|keys,...". Frames with a negative delta (the trailing RNG-seed
// frame and any out-of-order junk) are dropped so the cumulative sum only
// ever grows; the aligner's early exit depends on that.
func buildTimeline(data []byte) []model.DeviceSample {
	var timeline []model.DeviceSample
	var t int64

	for _, frame := range strings.Split(string(data), ",") {
		parts := strings.Split(frame, "|")
		if len(parts) != frameFieldCount {
			continue
		}
		dt, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil || dt < 0 {
			continue
		}
		x, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			continue
		}
		y, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			continue
		}
		t += dt
		timeline = append(timeline, model.DeviceSample{Time: t, X: x, Y: y})
	}

	return timeline
}

// readString decodes a marker-prefixed string: 0x00 for absent, 0x0b
// followed by a ULEB128 byte length for present.
func readString(br *bufio.Reader) (string, error) {
	marker, err := br.ReadByte()
	if err != nil {
		return "", fmt.Errorf("%w: string marker: %w", ErrTruncated, err)
	}
	switch marker {
	case stringMarkerEmpty:
		return "", nil
	case stringMarkerPresent:
		n, err := binary.ReadUvarint(br)
		if err != nil {
			return "", fmt.Errorf("%w: string length: %w", ErrTruncated, err)
		}
		if n > maxStringLen {
			return "", fmt.Errorf("%w: string length %d", ErrMalformed, n)
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(br, buf); err != nil {
			return "", fmt.Errorf("%w: string body: %w", ErrTruncated, err)
		}
		return string(buf), nil
	default:
		return "", fmt.Errorf("%w: string marker 0x%02x", ErrMalformed, marker)
	}
}

func skip(br *bufio.Reader, n int) error {
	_, err := io.CopyN(io.Discard, br, int64(n))
	return err
}
