package replay_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/ulikunitz/xz/lzma"

	replay "github.com/aimdrift/aimdrift/internal/adapters/replay"
	. "github.com/smartystreets/goconvey/convey"
)

// writeString encodes a marker-prefixed, ULEB128-length string.
func writeString(buf *bytes.Buffer, s string) {
	if s == "" {
		buf.WriteByte(0x00)
		return
	}
	buf.WriteByte(0x0b)
	buf.Write(binary.AppendUvarint(nil, uint64(len(s))))
	buf.WriteString(s)
}

// buildContainer assembles a minimal session container around the given
// frame stream.
func buildContainer(t *testing.T, digest, player, frames string) []byte {
	t.Helper()
	var buf bytes.Buffer

	buf.WriteByte(0) // game mode
	_ = binary.Write(&buf, binary.LittleEndian, int32(20240101))
	writeString(&buf, digest)
	writeString(&buf, player)
	writeString(&buf, "0123456789abcdef0123456789abcdef")
	buf.Write(make([]byte, 6*2+4+2+1+4)) // hit counts, score, combo, perfect, mods
	writeString(&buf, "")                // lifebar graph
	_ = binary.Write(&buf, binary.LittleEndian, int64(638000000000000000))

	var compressed bytes.Buffer
	w, err := lzma.NewWriter(&compressed)
	if err != nil {
		t.Fatalf("lzma writer: %v", err)
	}
	if _, err := w.Write([]byte(frames)); err != nil {
		t.Fatalf("compress frames: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close lzma writer: %v", err)
	}
	_ = binary.Write(&buf, binary.LittleEndian, int32(compressed.Len()))
	buf.Write(compressed.Bytes())

	return buf.Bytes()
}

func TestParse(t *testing.T) {
	Convey("Given a session container", t, func() {
		Convey("When parsing a well-formed container", func() {
			raw := buildContainer(t, "feedfacefeedfacefeedfacefeedface", "player one",
				"0|100.5|200.25|0,16|110|210|0,17|120|220|5")
			s, err := replay.Parse(bytes.NewReader(raw))

			Convey("Then header fields come through", func() {
				So(err, ShouldBeNil)
				So(s.BeatmapDigest, ShouldEqual, "feedfacefeedfacefeedfacefeedface")
				So(s.Player, ShouldEqual, "player one")
			})

			Convey("And frame times accumulate monotonically", func() {
				So(s.Timeline, ShouldHaveLength, 3)
				So(s.Timeline[0].Time, ShouldEqual, 0)
				So(s.Timeline[1].Time, ShouldEqual, 16)
				So(s.Timeline[2].Time, ShouldEqual, 33)
				So(s.Timeline[0].X, ShouldEqual, 100.5)
				So(s.Timeline[0].Y, ShouldEqual, 200.25)
			})
		})

		Convey("When the stream carries a negative-delta trailer frame", func() {
			raw := buildContainer(t, "feedfacefeedfacefeedfacefeedface", "p",
				"10|1|2|0,10|3|4|0,-12345|0|0|1234567")
			s, err := replay.Parse(bytes.NewReader(raw))

			Convey("Then the trailer is dropped", func() {
				So(err, ShouldBeNil)
				So(s.Timeline, ShouldHaveLength, 2)
				So(s.Timeline[1].Time, ShouldEqual, 20)
			})
		})

		Convey("When frames are malformed", func() {
			raw := buildContainer(t, "feedfacefeedfacefeedfacefeedface", "p",
				"10|1|2|0,not-a-frame,10|x|2|0,10|5|6|0")
			s, err := replay.Parse(bytes.NewReader(raw))

			Convey("Then bad frames are skipped, good ones kept", func() {
				So(err, ShouldBeNil)
				So(s.Timeline, ShouldHaveLength, 2)
				So(s.Timeline[1].X, ShouldEqual, 5)
			})
		})

		Convey("When the container is truncated", func() {
			raw := buildContainer(t, "feedfacefeedfacefeedfacefeedface", "p", "0|1|2|0")
			_, err := replay.Parse(bytes.NewReader(raw[:10]))

			Convey("Then parsing fails with a truncation error", func() {
				So(err, ShouldNotBeNil)
				So(err, ShouldWrap, replay.ErrTruncated)
			})
		})

		Convey("When a string marker is invalid", func() {
			raw := []byte{0, 1, 0, 0, 0, 0x7f}
			_, err := replay.Parse(bytes.NewReader(raw))

			Convey("Then parsing fails with a malformed error", func() {
				So(err, ShouldNotBeNil)
				So(err, ShouldWrap, replay.ErrMalformed)
			})
		})
	})
}
