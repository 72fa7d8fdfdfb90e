package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/chrissnell/roofsolar/pkg/shading"
	"github.com/chrissnell/roofsolar/pkg/solar"
)

// Default listener for the HTTP API
const (
	DefaultListenAddr = "0.0.0.0"
	DefaultPort       = 8080
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetServer() (*ServerData, error)
	GetAnalysis() (*AnalysisData, error)
	GetSites() ([]SiteData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Server   ServerData   `json:"server"`
	Analysis AnalysisData `json:"analysis"`
	Sites    []SiteData   `json:"sites"`
}

// ServerData holds the HTTP listener configuration
type ServerData struct {
	ListenAddr  string `json:"listen_addr,omitempty"`
	Port        int    `json:"port,omitempty"`
	TLSCertPath string `json:"tls_cert_path,omitempty"`
	TLSKeyPath  string `json:"tls_key_path,omitempty"`
	EnableCORS  bool   `json:"enable_cors,omitempty"`
}

// Address is the host:port to listen on with defaults filled in
func (s ServerData) Address() string {
	addr := s.ListenAddr
	if addr == "" {
		addr = DefaultListenAddr
	}
	port := s.Port
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(addr, strconv.Itoa(port))
}

// TLSEnabled reports whether both halves of a key pair were configured
func (s ServerData) TLSEnabled() bool {
	return s.TLSCertPath != "" && s.TLSKeyPath != ""
}

// AnalysisData overrides the analyzer and synthesizer constants. A nil field
// keeps the built-in default.
type AnalysisData struct {
	CellSize                *float64 `json:"cell_size,omitempty"`
	MinElevation            *float64 `json:"min_elevation,omitempty"`
	CriticalLoss            *float64 `json:"critical_loss,omitempty"`
	HighAnnualLoss          *float64 `json:"high_annual_loss,omitempty"`
	WinterSummerRatio       *float64 `json:"winter_summer_ratio,omitempty"`
	TallTreeHeight          *float64 `json:"tall_tree_height,omitempty"`
	BuildingProximityFactor *float64 `json:"building_proximity_factor,omitempty"`
	ExcellentSiteLoss       *float64 `json:"excellent_site_loss,omitempty"`
	TemperatureAmplitude    *float64 `json:"temperature_amplitude,omitempty"`
	MinTemperatureHour      *float64 `json:"min_temperature_hour,omitempty"`
	TimezoneOffset          *float64 `json:"timezone_offset,omitempty"`
}

func override(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

// AnalysisParams returns the analyzer defaults with the configured overrides applied
func (a AnalysisData) AnalysisParams() shading.AnalysisParams {
	p := shading.DefaultAnalysisParams()
	override(&p.CellSize, a.CellSize)
	override(&p.MinElevation, a.MinElevation)
	override(&p.CriticalLoss, a.CriticalLoss)
	override(&p.HighAnnualLoss, a.HighAnnualLoss)
	override(&p.WinterSummerRatio, a.WinterSummerRatio)
	override(&p.TallTreeHeight, a.TallTreeHeight)
	override(&p.BuildingProximityFactor, a.BuildingProximityFactor)
	override(&p.ExcellentSiteLoss, a.ExcellentSiteLoss)
	if a.TimezoneOffset != nil {
		tz := *a.TimezoneOffset
		p.TimezoneOffset = &tz
	}
	return p
}

// SynthesisParams returns the synthesizer defaults with the configured overrides
// applied. Without a configured timezone hours are read on the nominal clock of
// longitude.
func (a AnalysisData) SynthesisParams(longitude float64) solar.SynthesisParams {
	p := solar.DefaultSynthesisParams()
	p.TimezoneOffset = solar.LongitudeTimezone(longitude)
	override(&p.TemperatureAmplitude, a.TemperatureAmplitude)
	override(&p.MinTemperatureHour, a.MinTemperatureHour)
	override(&p.TimezoneOffset, a.TimezoneOffset)
	return p
}

// SiteData describes one named roof
type SiteData struct {
	Name              string                          `json:"name"`
	Latitude          float64                         `json:"latitude"`
	Longitude         float64                         `json:"longitude"`
	Altitude          float64                         `json:"altitude,omitempty"`
	TimezoneOffset    *float64                        `json:"timezone_offset,omitempty"`
	RoofWidth         float64                         `json:"roof_width"`
	RoofDepth         float64                         `json:"roof_depth"`
	Classification    string                          `json:"classification,omitempty"`
	BuildingHeight    float64                         `json:"building_height,omitempty"`
	Obstacles         []shading.Obstacle              `json:"obstacles,omitempty"`
	MonthlyIrradiance []solar.MonthlyIrradianceRecord `json:"monthly_irradiance,omitempty"`
	PVPotential       *solar.PVPotential              `json:"pv_potential,omitempty"`
}

// Timezone is the site's clock offset, or the nominal zone of its longitude
// when none was configured
func (s SiteData) Timezone() float64 {
	if s.TimezoneOffset != nil {
		return *s.TimezoneOffset
	}
	return solar.LongitudeTimezone(s.Longitude)
}

// Footprint is the site's roof outline
func (s SiteData) Footprint() shading.Footprint {
	return shading.Footprint{Width: s.RoofWidth, Depth: s.RoofDepth}
}

// Validate checks a site before it is served. A site without surveyed
// obstacles needs a classification so obstacles can be estimated.
func (s SiteData) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("site has no name: %w", solar.ErrInvalidInput)
	}
	if err := solar.CheckLocation(s.Latitude, s.Longitude); err != nil {
		return fmt.Errorf("site %s: %w", s.Name, err)
	}
	if s.TimezoneOffset != nil {
		if err := solar.CheckRange("timezone", *s.TimezoneOffset, -12, 14); err != nil {
			return fmt.Errorf("site %s: %w", s.Name, err)
		}
	}
	if err := solar.CheckRange("altitude", s.Altitude, -500, 9000); err != nil {
		return fmt.Errorf("site %s: %w", s.Name, err)
	}
	if err := s.Footprint().Validate(); err != nil {
		return fmt.Errorf("site %s: %w", s.Name, err)
	}
	if err := shading.ValidateObstacles(s.Obstacles); err != nil {
		return fmt.Errorf("site %s: %w", s.Name, err)
	}
	if len(s.Obstacles) == 0 {
		if _, err := shading.ParseClassification(s.Classification); err != nil {
			return fmt.Errorf("site %s: no obstacles and %w", s.Name, err)
		}
	}
	for _, r := range s.MonthlyIrradiance {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("site %s: %w", s.Name, err)
		}
	}
	if s.PVPotential != nil {
		if err := s.PVPotential.Validate(); err != nil {
			return fmt.Errorf("site %s: %w", s.Name, err)
		}
	}
	return nil
}

// ValidateConfig checks every site and rejects duplicate names
func ValidateConfig(c *ConfigData) error {
	seen := make(map[string]bool, len(c.Sites))
	for _, s := range c.Sites {
		if err := s.Validate(); err != nil {
			return err
		}
		if seen[s.Name] {
			return fmt.Errorf("site %s is defined more than once: %w", s.Name, solar.ErrInvalidInput)
		}
		seen[s.Name] = true
	}
	return nil
}

// FindSite returns the site with the given name
func FindSite(sites []SiteData, name string) (SiteData, bool) {
	for _, s := range sites {
		if s.Name == name {
			return s, true
		}
	}
	return SiteData{}, false
}
