package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"reflect"

	"github.com/chrissnell/roofsolar/pkg/config"
	_ "modernc.org/sqlite"
)

func main() {
	var (
		yamlFile   = flag.String("yaml", "", "Path to YAML configuration file")
		sqliteFile = flag.String("sqlite", "", "Path to SQLite configuration file")
	)
	flag.Parse()

	if *yamlFile == "" || *sqliteFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -yaml <config.yaml> -sqlite <config.db>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	fmt.Println("Configuration Comparison Test")
	fmt.Println("===========================")

	fmt.Printf("Loading YAML configuration: %s\n", *yamlFile)
	yamlConfig, err := config.NewYAMLProvider(*yamlFile).LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading YAML config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Loading SQLite configuration: %s\n", *sqliteFile)
	sqliteProvider, err := config.NewSQLiteProvider(*sqliteFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating SQLite provider: %v\n", err)
		os.Exit(1)
	}
	defer sqliteProvider.Close()

	sqliteConfig, err := sqliteProvider.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading SQLite config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nComparison Results:")
	fmt.Println("==================")

	mismatches := 0
	if reflect.DeepEqual(yamlConfig.Server, sqliteConfig.Server) {
		fmt.Println("✓ Server configuration matches")
	} else {
		fmt.Printf("✗ Server differs: YAML=%+v, SQLite=%+v\n", yamlConfig.Server, sqliteConfig.Server)
		mismatches++
	}

	if reflect.DeepEqual(yamlConfig.Analysis.AnalysisParams(), sqliteConfig.Analysis.AnalysisParams()) &&
		reflect.DeepEqual(yamlConfig.Analysis.SynthesisParams(0), sqliteConfig.Analysis.SynthesisParams(0)) {
		fmt.Println("✓ Analysis overrides match")
	} else {
		fmt.Println("✗ Analysis overrides differ")
		mismatches++
	}

	fmt.Printf("\nSites - YAML: %d, SQLite: %d\n", len(yamlConfig.Sites), len(sqliteConfig.Sites))
	for _, ys := range yamlConfig.Sites {
		ss, ok := config.FindSite(sqliteConfig.Sites, ys.Name)
		if !ok {
			fmt.Printf("✗ Site %s is missing from SQLite\n", ys.Name)
			mismatches++
			continue
		}
		if diffs := compareSites(ys, ss); len(diffs) > 0 {
			fmt.Printf("✗ Site %s differs\n", ys.Name)
			for _, d := range diffs {
				fmt.Printf("  %s\n", d)
			}
			mismatches++
			continue
		}
		fmt.Printf("✓ Site %s matches\n", ys.Name)
	}

	fmt.Println("\nTest completed!")
	if mismatches > 0 {
		os.Exit(1)
	}
}

func compareSites(yaml, sqlite config.SiteData) []string {
	const tolerance = 0.000001
	var diffs []string

	floats := []struct {
		name       string
		yaml, sqlt float64
	}{
		{"latitude", yaml.Latitude, sqlite.Latitude},
		{"longitude", yaml.Longitude, sqlite.Longitude},
		{"altitude", yaml.Altitude, sqlite.Altitude},
		{"timezone", yaml.Timezone(), sqlite.Timezone()},
		{"roof width", yaml.RoofWidth, sqlite.RoofWidth},
		{"roof depth", yaml.RoofDepth, sqlite.RoofDepth},
		{"building height", yaml.BuildingHeight, sqlite.BuildingHeight},
	}
	for _, f := range floats {
		if math.Abs(f.yaml-f.sqlt) >= tolerance {
			diffs = append(diffs, fmt.Sprintf("%s: YAML=%g, SQLite=%g", f.name, f.yaml, f.sqlt))
		}
	}

	if yaml.Classification != sqlite.Classification {
		diffs = append(diffs, fmt.Sprintf("classification: YAML='%s', SQLite='%s'", yaml.Classification, sqlite.Classification))
	}
	if len(yaml.Obstacles) != len(sqlite.Obstacles) || (len(yaml.Obstacles) > 0 && !reflect.DeepEqual(yaml.Obstacles, sqlite.Obstacles)) {
		diffs = append(diffs, fmt.Sprintf("obstacles: YAML=%d, SQLite=%d (or contents differ)", len(yaml.Obstacles), len(sqlite.Obstacles)))
	}
	if len(yaml.MonthlyIrradiance) != len(sqlite.MonthlyIrradiance) {
		diffs = append(diffs, fmt.Sprintf("monthly irradiance: YAML=%d, SQLite=%d", len(yaml.MonthlyIrradiance), len(sqlite.MonthlyIrradiance)))
	}
	if (yaml.PVPotential == nil) != (sqlite.PVPotential == nil) {
		diffs = append(diffs, "pv potential present in only one source")
	}
	return diffs
}
