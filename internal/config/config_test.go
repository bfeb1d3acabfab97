package config_test

import (
	"context"
	"testing"

	"github.com/okian/voidframe/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.TrackingPath, convey.ShouldEqual, "data/tracking.json")
			convey.So(cfg.PlaysPath, convey.ShouldEqual, "data/plays.json")
			convey.So(cfg.OutputDir, convey.ShouldEqual, "outputs")
			convey.So(cfg.DatabasePath, convey.ShouldEqual, "voidframe.db")
			convey.So(cfg.MinSampleSize, convey.ShouldEqual, 20)
			convey.So(cfg.NearestK, convey.ShouldEqual, 2)
			convey.So(cfg.Filter, convey.ShouldEqual, "base")
			convey.So(cfg.WinProbMin, convey.ShouldEqual, 0.20)
			convey.So(cfg.WinProbMax, convey.ShouldEqual, 0.80)
			convey.So(cfg.Seed, convey.ShouldEqual, 42)
			convey.So(cfg.TestFraction, convey.ShouldEqual, 0.2)
			convey.So(cfg.AccuracyFloor, convey.ShouldEqual, 0.65)
			convey.So(cfg.Weeks, convey.ShouldBeEmpty)
		})
	})
}
