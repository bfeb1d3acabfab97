package config_test

import (
	"context"
	"os"
	"testing"

	"github.com/okian/voidframe/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.OutputDir, convey.ShouldEqual, "outputs")
				convey.So(cfg.MinSampleSize, convey.ShouldEqual, 20)
				convey.So(cfg.NearestK, convey.ShouldEqual, 2)
				convey.So(cfg.Seed, convey.ShouldEqual, 42)
				convey.So(cfg.TestFraction, convey.ShouldEqual, 0.2)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("VOIDFRAME_SEED", "7")
			_ = os.Setenv("VOIDFRAME_NEAREST_K", "3")
			_ = os.Setenv("VOIDFRAME_MIN_SAMPLE_SIZE", "15")
			_ = os.Setenv("VOIDFRAME_FILTER", "neutral")
			_ = os.Setenv("VOIDFRAME_OUTPUT_DIR", "/tmp/out")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Seed, convey.ShouldEqual, 7)
				convey.So(cfg.NearestK, convey.ShouldEqual, 3)
				convey.So(cfg.MinSampleSize, convey.ShouldEqual, 15)
				convey.So(cfg.Filter, convey.ShouldEqual, "neutral")
				convey.So(cfg.OutputDir, convey.ShouldEqual, "/tmp/out")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
tracking_path: "week1/tracking.json"
plays_path: "week1/plays.json"
nearest_k: 3
nearest_k_man: 1
min_sample_size: 10
test_fraction: 0.3
filter: "neutral"
win_prob_min: 0.25
win_prob_max: 0.75
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("VOIDFRAME_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.TrackingPath, convey.ShouldEqual, "week1/tracking.json")
				convey.So(cfg.PlaysPath, convey.ShouldEqual, "week1/plays.json")
				convey.So(cfg.NearestK, convey.ShouldEqual, 3)
				convey.So(cfg.NearestKMan, convey.ShouldEqual, 1)
				convey.So(cfg.MinSampleSize, convey.ShouldEqual, 10)
				convey.So(cfg.TestFraction, convey.ShouldEqual, 0.3)
				convey.So(cfg.Filter, convey.ShouldEqual, "neutral")
				convey.So(cfg.WinProbMin, convey.ShouldEqual, 0.25)
				convey.So(cfg.WinProbMax, convey.ShouldEqual, 0.75)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
nearest_k: 3
min_sample_size: 10
seed: 99
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("VOIDFRAME_CONFIG", tmpFile)
			_ = os.Setenv("VOIDFRAME_SEED", "7") // env wins over file
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Seed, convey.ShouldEqual, 7)           // overridden by env
				convey.So(cfg.NearestK, convey.ShouldEqual, 3)       // from file
				convey.So(cfg.MinSampleSize, convey.ShouldEqual, 10) // from file
			})
		})

		convey.Convey("When loading config with partial YAML file", func() {
			yamlContent := `
nearest_k: 4
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("VOIDFRAME_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should merge with defaults for missing fields", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.NearestK, convey.ShouldEqual, 4)       // from file
				convey.So(cfg.MinSampleSize, convey.ShouldEqual, 20) // from defaults
				convey.So(cfg.Seed, convey.ShouldEqual, 42)          // from defaults
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			invalidYaml := `invalid: yaml: content: [`
			tmpFile := createTempConfigFile(invalidYaml)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("VOIDFRAME_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("VOIDFRAME_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("VOIDFRAME_NEAREST_K", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err, convey.ShouldWrap, config.ErrLoadConfig)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestConfigLoaderValidation(t *testing.T) {
	convey.Convey("Given config validation rules", t, func() {
		ctx := context.Background()

		convey.Convey("When output_dir is empty", func() {
			_ = os.Setenv("VOIDFRAME_OUTPUT_DIR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
				convey.So(err.Error(), convey.ShouldContainSubstring, "output_dir must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When min_sample_size is below one", func() {
			_ = os.Setenv("VOIDFRAME_MIN_SAMPLE_SIZE", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "min_sample_size")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When nearest_k is below one", func() {
			_ = os.Setenv("VOIDFRAME_NEAREST_K", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "nearest_k")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When test_fraction is out of range", func() {
			_ = os.Setenv("VOIDFRAME_TEST_FRACTION", "1.5")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "test_fraction")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"VOIDFRAME_CONFIG",
		"VOIDFRAME_OUTPUT_DIR",
		"VOIDFRAME_MIN_SAMPLE_SIZE",
		"VOIDFRAME_NEAREST_K",
		"VOIDFRAME_SEED",
		"VOIDFRAME_FILTER",
		"VOIDFRAME_TEST_FRACTION",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "voidframe-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
