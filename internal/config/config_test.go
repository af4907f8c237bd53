package config_test

import (
	"testing"

	"github.com/aimdrift/aimdrift/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.ReplaysDir, convey.ShouldEqual, "Replays")
			convey.So(cfg.MaxDeltaMS, convey.ShouldEqual, 80)
			convey.So(cfg.IncludeRadius, convey.ShouldEqual, 80)
			convey.So(cfg.AdjustThresholdMM, convey.ShouldEqual, 0.25)
			convey.So(cfg.CloudPath, convey.ShouldEqual, "aim_bias_map.png")
			convey.So(cfg.IndexPath, convey.ShouldBeEmpty)
			convey.So(cfg.MetricsAddr, convey.ShouldBeEmpty)
		})
	})
}
