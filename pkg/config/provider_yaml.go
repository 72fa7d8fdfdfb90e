package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/chrissnell/roofsolar/pkg/shading"
	"github.com/chrissnell/roofsolar/pkg/solar"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	config, err := ParseYAML(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", y.filename, err)
	}

	y.config = config
	return config, nil
}

// ParseYAML converts a YAML document into configuration data
func ParseYAML(data []byte) (*ConfigData, error) {
	var yamlConfig struct {
		Server   ServerYAML   `yaml:"server,omitempty"`
		Analysis AnalysisYAML `yaml:"analysis,omitempty"`
		Sites    []SiteYAML   `yaml:"sites"`
	}

	if err := yaml.Unmarshal(data, &yamlConfig); err != nil {
		return nil, err
	}

	config := &ConfigData{
		Server: ServerData{
			ListenAddr:  yamlConfig.Server.ListenAddr,
			Port:        yamlConfig.Server.Port,
			TLSCertPath: yamlConfig.Server.TLSCertPath,
			TLSKeyPath:  yamlConfig.Server.TLSKeyPath,
			EnableCORS:  yamlConfig.Server.EnableCORS,
		},
		Analysis: AnalysisData(yamlConfig.Analysis),
		Sites:    make([]SiteData, len(yamlConfig.Sites)),
	}

	for i, site := range yamlConfig.Sites {
		config.Sites[i] = SiteData{
			Name:              site.Name,
			Latitude:          site.Latitude,
			Longitude:         site.Longitude,
			Altitude:          site.Altitude,
			TimezoneOffset:    site.TimezoneOffset,
			RoofWidth:         site.Roof.Width,
			RoofDepth:         site.Roof.Depth,
			Classification:    site.Classification,
			BuildingHeight:    site.BuildingHeight,
			Obstacles:         site.Obstacles,
			MonthlyIrradiance: site.MonthlyIrradiance,
		}

		if site.PVPotential != nil {
			config.Sites[i].PVPotential = &solar.PVPotential{
				YearlyOutput:     site.PVPotential.YearlyOutput,
				MonthlyOutput:    site.PVPotential.MonthlyOutput,
				PerformanceRatio: site.PVPotential.PerformanceRatio,
				OptimalTilt:      site.PVPotential.OptimalTilt,
				OptimalAzimuth:   site.PVPotential.OptimalAzimuth,
			}
		}
	}

	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

func (y *YAMLProvider) loaded() (*ConfigData, error) {
	if y.config == nil {
		if _, err := y.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return y.config, nil
}

// GetServer returns the HTTP listener configuration
func (y *YAMLProvider) GetServer() (*ServerData, error) {
	c, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return &c.Server, nil
}

// GetAnalysis returns the analysis overrides
func (y *YAMLProvider) GetAnalysis() (*AnalysisData, error) {
	c, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return &c.Analysis, nil
}

// GetSites returns the configured sites
func (y *YAMLProvider) GetSites() ([]SiteData, error) {
	c, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return c.Sites, nil
}

// IsReadOnly returns true since YAML files are read-only through this interface
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

// YAML-specific structs with dashed keys
type ServerYAML struct {
	ListenAddr  string `yaml:"listen-addr,omitempty"`
	Port        int    `yaml:"port,omitempty"`
	TLSCertPath string `yaml:"tls-cert,omitempty"`
	TLSKeyPath  string `yaml:"tls-key,omitempty"`
	EnableCORS  bool   `yaml:"enable-cors,omitempty"`
}

type AnalysisYAML struct {
	CellSize                *float64 `yaml:"cell-size,omitempty"`
	MinElevation            *float64 `yaml:"min-elevation,omitempty"`
	CriticalLoss            *float64 `yaml:"critical-loss,omitempty"`
	HighAnnualLoss          *float64 `yaml:"high-annual-loss,omitempty"`
	WinterSummerRatio       *float64 `yaml:"winter-summer-ratio,omitempty"`
	TallTreeHeight          *float64 `yaml:"tall-tree-height,omitempty"`
	BuildingProximityFactor *float64 `yaml:"building-proximity-factor,omitempty"`
	ExcellentSiteLoss       *float64 `yaml:"excellent-site-loss,omitempty"`
	TemperatureAmplitude    *float64 `yaml:"temperature-amplitude,omitempty"`
	MinTemperatureHour      *float64 `yaml:"min-temperature-hour,omitempty"`
	TimezoneOffset          *float64 `yaml:"timezone-offset,omitempty"`
}

type SiteYAML struct {
	Name              string                          `yaml:"name"`
	Latitude          float64                         `yaml:"latitude"`
	Longitude         float64                         `yaml:"longitude"`
	Altitude          float64                         `yaml:"altitude,omitempty"`
	TimezoneOffset    *float64                        `yaml:"timezone-offset,omitempty"`
	Roof              RoofYAML                        `yaml:"roof"`
	Classification    string                          `yaml:"classification,omitempty"`
	BuildingHeight    float64                         `yaml:"building-height,omitempty"`
	Obstacles         []shading.Obstacle              `yaml:"obstacles,omitempty"`
	MonthlyIrradiance []solar.MonthlyIrradianceRecord `yaml:"monthly-irradiance,omitempty"`
	PVPotential       *PVPotentialYAML                `yaml:"pv-potential,omitempty"`
}

type RoofYAML struct {
	Width float64 `yaml:"width"`
	Depth float64 `yaml:"depth"`
}

type PVPotentialYAML struct {
	YearlyOutput     float64   `yaml:"yearly-output"`
	MonthlyOutput    []float64 `yaml:"monthly-output,omitempty"`
	PerformanceRatio float64   `yaml:"performance-ratio"`
	OptimalTilt      float64   `yaml:"optimal-tilt,omitempty"`
	OptimalAzimuth   float64   `yaml:"optimal-azimuth,omitempty"`
}
