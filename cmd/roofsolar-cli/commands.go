package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/chrissnell/roofsolar/internal/report"
	"github.com/chrissnell/roofsolar/pkg/config"
	"github.com/chrissnell/roofsolar/pkg/shading"
	"github.com/chrissnell/roofsolar/pkg/solar"
)

type location struct {
	lat, lng, tz float64
}

func (l *location) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&l.lat, "lat", 0, "Latitude in decimal degrees, north positive")
	cmd.Flags().Float64Var(&l.lng, "lng", 0, "Longitude in decimal degrees, east positive")
	cmd.Flags().Float64Var(&l.tz, "tz", 0, "Clock offset from UTC in hours (default: round(lng/15))")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")
}

// clock is --tz when given, otherwise the nominal zone of --lng
func (l *location) clock(cmd *cobra.Command) float64 {
	if cmd.Flags().Changed("tz") {
		return l.tz
	}
	return solar.LongitudeTimezone(l.lng)
}

func positionCmd() *cobra.Command {
	var (
		loc location
		at  string
	)

	cmd := &cobra.Command{
		Use:   "position",
		Short: "Compute the sun's elevation and azimuth",
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := time.Now()
			if at != "" {
				var err error
				if t, err = time.Parse(time.RFC3339, at); err != nil {
					return fmt.Errorf("--time must be RFC 3339: %w", err)
				}
			}
			pos, err := solar.CalculatePosition(loc.lat, loc.lng, t, loc.clock(cmd))
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), pos)
		},
	}

	loc.register(cmd)
	cmd.Flags().StringVar(&at, "time", "", "Instant in RFC 3339 (default: now)")
	return cmd
}

func tiltCmd() *cobra.Command {
	var (
		lat   float64
		month int
	)

	cmd := &cobra.Command{
		Use:   "tilt",
		Short: "Recommend a fixed panel tilt and azimuth",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tilt, err := solar.OptimalTilt(lat)
			if month != 0 {
				tilt, err = solar.OptimalTiltForMonth(lat, month)
			}
			if err != nil {
				return err
			}
			azimuth, err := solar.OptimalAzimuth(lat)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), map[string]float64{"tilt": tilt, "azimuth": azimuth})
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude in decimal degrees")
	cmd.Flags().IntVar(&month, "month", 0, "Month 1-12 for a seasonal tilt (default: annual)")
	_ = cmd.MarkFlagRequired("lat")
	return cmd
}

func hourlyCmd() *cobra.Command {
	var (
		loc        location
		date       string
		dailyTotal float64
		avgTemp    float64
	)

	cmd := &cobra.Command{
		Use:   "hourly",
		Short: "Spread a daily irradiance total over 24 hourly samples",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := solar.CheckLocation(loc.lat, loc.lng); err != nil {
				return err
			}
			params := solar.DefaultSynthesisParams()
			params.TimezoneOffset = loc.clock(cmd)
			params.AverageTemperature = avgTemp

			d, err := solar.ParseDate(date, params.TimezoneOffset)
			if err != nil {
				return fmt.Errorf("--date: %w", err)
			}

			hours, err := solar.SynthesizeHourlyIrradiance(loc.lat, loc.lng, d, dailyTotal, params)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), hours)
		},
	}

	loc.register(cmd)
	cmd.Flags().StringVar(&date, "date", "", "Day to synthesize, YYYY-MM-DD")
	cmd.Flags().Float64Var(&dailyTotal, "daily-total", 0, "Daily irradiance total, kWh/m²")
	cmd.Flags().Float64Var(&avgTemp, "avg-temperature", 15, "Daily mean temperature, °C")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("daily-total")
	return cmd
}

func estimateCmd() *cobra.Command {
	var (
		class  string
		height float64
	)

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "List typical obstacles for an urban, suburban or rural site",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := shading.ParseClassification(class)
			if err != nil {
				return err
			}
			obstacles, err := shading.EstimateObstacles(c, height)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), obstacles)
		},
	}

	cmd.Flags().StringVar(&class, "classification", "", "urban, suburban or rural")
	cmd.Flags().Float64Var(&height, "building-height", 0, "Typical nearby building height in meters (default: per classification)")
	_ = cmd.MarkFlagRequired("classification")
	return cmd
}

func shadingCmd() *cobra.Command {
	var (
		loc           location
		width, depth  float64
		obstaclesFile string
		class         string
	)

	cmd := &cobra.Command{
		Use:   "shading",
		Short: "Run the annual shading analysis for a roof",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var obstacles []shading.Obstacle
			switch {
			case obstaclesFile != "":
				data, err := os.ReadFile(obstaclesFile)
				if err != nil {
					return err
				}
				if err := yaml.Unmarshal(data, &obstacles); err != nil {
					return fmt.Errorf("parsing %s: %w", obstaclesFile, err)
				}
			case class != "":
				c, err := shading.ParseClassification(class)
				if err != nil {
					return err
				}
				if obstacles, err = shading.EstimateObstacles(c, 0); err != nil {
					return err
				}
			}

			params := shading.DefaultAnalysisParams()
			tz := loc.clock(cmd)
			params.TimezoneOffset = &tz
			analysis, err := shading.AnalyzeAnnualShading(loc.lat, loc.lng, obstacles, shading.Footprint{Width: width, Depth: depth}, params)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), analysis)
		},
	}

	loc.register(cmd)
	cmd.Flags().Float64Var(&width, "width", 10, "Roof width (east-west), meters")
	cmd.Flags().Float64Var(&depth, "depth", 10, "Roof depth (north-south), meters")
	cmd.Flags().StringVar(&obstaclesFile, "obstacles", "", "YAML or JSON file with a list of obstacles")
	cmd.Flags().StringVar(&class, "classification", "", "Estimate obstacles for urban, suburban or rural surroundings")
	cmd.MarkFlagsMutuallyExclusive("obstacles", "classification")
	return cmd
}

func reportCmd() *cobra.Command {
	var (
		cfgFile string
		site    string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build the full report for a site in a YAML configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.NewYAMLProvider(cfgFile).LoadConfig()
			if err != nil {
				return err
			}
			s, ok := config.FindSite(cfg.Sites, site)
			if !ok {
				return fmt.Errorf("%s: %w", site, config.ErrSiteNotFound)
			}
			r, err := report.Build(s, cfg.Analysis, time.Now())
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), r)
		},
	}

	cmd.Flags().StringVar(&cfgFile, "config", "config.yaml", "YAML configuration file")
	cmd.Flags().StringVar(&site, "site", "", "Site name")
	_ = cmd.MarkFlagRequired("site")
	return cmd
}
