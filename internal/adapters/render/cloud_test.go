package render_test

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	render "github.com/aimdrift/aimdrift/internal/adapters/render"
	"github.com/aimdrift/aimdrift/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWriteCloud(t *testing.T) {
	Convey("Given a set of deviation vectors", t, func() {
		vectors := []model.DeviationVector{
			{DX: 10, DY: -5}, {DX: -20, DY: 30}, {DX: 0, DY: 0}, {DX: 75, DY: 60},
		}

		Convey("When rendering to a file", func() {
			path := filepath.Join(t.TempDir(), "cloud.png")
			err := render.WriteCloud(path, vectors)

			Convey("Then a decodable square PNG is produced", func() {
				So(err, ShouldBeNil)
				f, err := os.Open(path)
				So(err, ShouldBeNil)
				defer f.Close()
				img, err := png.Decode(f)
				So(err, ShouldBeNil)
				So(img.Bounds().Dx(), ShouldEqual, img.Bounds().Dy())
				So(img.Bounds().Dx(), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When the vector set is empty", func() {
			path := filepath.Join(t.TempDir(), "cloud.png")
			err := render.WriteCloud(path, nil)

			Convey("Then nothing is written and it is not an error", func() {
				So(err, ShouldBeNil)
				_, statErr := os.Stat(path)
				So(os.IsNotExist(statErr), ShouldBeTrue)
			})
		})

		Convey("When the output directory does not exist", func() {
			err := render.WriteCloud(filepath.Join(t.TempDir(), "missing", "cloud.png"), vectors)

			Convey("Then the error is surfaced", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
