package app_test

import (
	"bytes"
	"context"
	"crypto/md5" //nolint:gosec // fixtures mirror the content-addressing scheme
	"encoding/binary"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/ulikunitz/xz/lzma"

	app "github.com/aimdrift/aimdrift/internal/app"
	"github.com/aimdrift/aimdrift/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

const fixtureSource = "[HitObjects]\n256,192,1000,1,0\n300,200,2000,1,0\n"

func writeReplayString(buf *bytes.Buffer, s string) {
	if s == "" {
		buf.WriteByte(0x00)
		return
	}
	buf.WriteByte(0x0b)
	buf.Write(binary.AppendUvarint(nil, uint64(len(s))))
	buf.WriteString(s)
}

// writeReplay drops a minimal session container into dir, recorded against
// the source content identified by digest.
func writeReplay(t *testing.T, dir, name, digest, frames string) {
	t.Helper()
	var buf bytes.Buffer

	buf.WriteByte(0)
	_ = binary.Write(&buf, binary.LittleEndian, int32(20240101))
	writeReplayString(&buf, digest)
	writeReplayString(&buf, "fixture player")
	writeReplayString(&buf, "00000000000000000000000000000000")
	buf.Write(make([]byte, 6*2+4+2+1+4))
	writeReplayString(&buf, "")
	_ = binary.Write(&buf, binary.LittleEndian, int64(0))

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

	if err := os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o600); err != nil {
		t.Fatalf("write replay fixture: %v", err)
	}
}

func TestService_Run(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatalf("init logger: %v", err)
	}

	Convey("Given a library and a matching recorded session", t, func() {
		libraryDir := t.TempDir()
		replaysDir := t.TempDir()

		sourcePath := filepath.Join(libraryDir, "fixture.osu")
		So(os.WriteFile(sourcePath, []byte(fixtureSource), 0o600), ShouldBeNil)
		sum := md5.Sum([]byte(fixtureSource)) //nolint:gosec // see above
		digest := hex.EncodeToString(sum[:])

		// Frames land at t=1000 and t=2000, a few units off each target.
		writeReplay(t, replaysDir, "session.osr", digest,
			"1000|258|190|0,1000|305|205|0")

		newService := func(opts ...app.Option) *app.Service {
			base := []app.Option{
				app.WithLibraryDir(libraryDir),
				app.WithReplaysDir(replaysDir),
				app.WithArea(512, 384),
				app.WithCloudPath(""),
			}
			svc, err := app.New(append(base, opts...)...)
			So(err, ShouldBeNil)
			return svc
		}

		Convey("When running the analysis", func() {
			svc := newService()
			defer func() {
				_ = svc.Close()
			}()
			report, err := svc.Run(context.Background())

			Convey("Then both targets contribute deviations", func() {
				So(err, ShouldBeNil)
				So(report.InsufficientData, ShouldBeFalse)
				So(report.Samples, ShouldEqual, 2)
				So(report.MeanDX, ShouldEqual, 3.5)
				So(report.MeanDY, ShouldEqual, 1.5)
			})

			Convey("And the one-to-one area keeps units equal", func() {
				So(report.MeanDXMM, ShouldEqual, 3.5)
				So(report.MeanDYMM, ShouldEqual, 1.5)
				So(report.Adjustment, ShouldNotBeNil)
				So(report.Adjustment.DXMM, ShouldEqual, -3.5)
			})
		})

		Convey("When a session's digest matches nothing in the library", func() {
			writeReplay(t, replaysDir, "orphan.osr", "ffffffffffffffffffffffffffffffff",
				"1000|258|190|0")
			svc := newService()
			defer func() {
				_ = svc.Close()
			}()
			report, err := svc.Run(context.Background())

			Convey("Then the orphan is skipped, not fatal", func() {
				So(err, ShouldBeNil)
				So(report.Samples, ShouldEqual, 2)
			})
		})

		Convey("When a cloud path is configured", func() {
			cloud := filepath.Join(t.TempDir(), "cloud.png")
			svc := newService(app.WithCloudPath(cloud))
			defer func() {
				_ = svc.Close()
			}()
			_, err := svc.Run(context.Background())

			Convey("Then the image lands on disk", func() {
				So(err, ShouldBeNil)
				_, statErr := os.Stat(cloud)
				So(statErr, ShouldBeNil)
			})
		})

		Convey("When sessions are already present", func() {
			svc := newService()
			defer func() {
				_ = svc.Close()
			}()

			Convey("Then WaitForSessions returns immediately", func() {
				So(svc.WaitForSessions(context.Background()), ShouldBeNil)
			})
		})
	})

	Convey("Given invalid pipeline parameters", t, func() {
		Convey("When the area is missing", func() {
			_, err := app.New(
				app.WithLibraryDir(t.TempDir()),
				app.WithReplaysDir(t.TempDir()),
			)

			Convey("Then construction fails fast", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When the inclusion radius is negative", func() {
			_, err := app.New(
				app.WithLibraryDir(t.TempDir()),
				app.WithReplaysDir(t.TempDir()),
				app.WithArea(100, 100),
				app.WithIncludeRadius(-1),
			)

			Convey("Then construction fails fast", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
