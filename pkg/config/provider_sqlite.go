package config

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/chrissnell/roofsolar/pkg/shading"
	"github.com/chrissnell/roofsolar/pkg/solar"
)

// ErrSiteNotFound is returned when a named site does not exist
var ErrSiteNotFound = errors.New("site not found")

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// DB exposes the connection for schema migrations
func (s *SQLiteProvider) DB() *sql.DB {
	return s.db
}

// LoadConfig loads the complete configuration from SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := &ConfigData{}

	server, err := s.GetServer()
	if err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}
	config.Server = *server

	analysis, err := s.GetAnalysis()
	if err != nil {
		return nil, fmt.Errorf("failed to load analysis config: %w", err)
	}
	config.Analysis = *analysis

	sites, err := s.GetSites()
	if err != nil {
		return nil, fmt.Errorf("failed to load sites: %w", err)
	}
	config.Sites = sites

	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// GetServer returns the HTTP listener configuration. A missing row yields defaults.
func (s *SQLiteProvider) GetServer() (*ServerData, error) {
	query := `
		SELECT listen_addr, port, tls_cert_path, tls_key_path, enable_cors
		FROM server_configs
		WHERE id = 1
	`

	var listenAddr, certPath, keyPath sql.NullString
	var port sql.NullInt64
	var enableCORS bool

	err := s.db.QueryRow(query).Scan(&listenAddr, &port, &certPath, &keyPath, &enableCORS)
	if errors.Is(err, sql.ErrNoRows) {
		return &ServerData{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query server config: %w", err)
	}

	server := &ServerData{
		ListenAddr:  listenAddr.String,
		TLSCertPath: certPath.String,
		TLSKeyPath:  keyPath.String,
		EnableCORS:  enableCORS,
	}
	if port.Valid {
		server.Port = int(port.Int64)
	}
	return server, nil
}

// GetAnalysis returns the analysis overrides. NULL columns keep the defaults.
func (s *SQLiteProvider) GetAnalysis() (*AnalysisData, error) {
	query := `
		SELECT cell_size, min_elevation, critical_loss, high_annual_loss,
		       winter_summer_ratio, tall_tree_height, building_proximity_factor,
		       excellent_site_loss, temperature_amplitude, min_temperature_hour,
		       timezone_offset
		FROM analysis_configs
		WHERE id = 1
	`

	cols := make([]sql.NullFloat64, 11)
	dest := make([]interface{}, len(cols))
	for i := range cols {
		dest[i] = &cols[i]
	}

	err := s.db.QueryRow(query).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return &AnalysisData{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis config: %w", err)
	}

	return &AnalysisData{
		CellSize:                floatPtr(cols[0]),
		MinElevation:            floatPtr(cols[1]),
		CriticalLoss:            floatPtr(cols[2]),
		HighAnnualLoss:          floatPtr(cols[3]),
		WinterSummerRatio:       floatPtr(cols[4]),
		TallTreeHeight:          floatPtr(cols[5]),
		BuildingProximityFactor: floatPtr(cols[6]),
		ExcellentSiteLoss:       floatPtr(cols[7]),
		TemperatureAmplitude:    floatPtr(cols[8]),
		MinTemperatureHour:      floatPtr(cols[9]),
		TimezoneOffset:          floatPtr(cols[10]),
	}, nil
}

const siteColumns = `
	id, name, latitude, longitude, altitude, timezone_offset, roof_width, roof_depth,
	classification, building_height,
	pv_yearly_output, pv_monthly_output, pv_performance_ratio, pv_optimal_tilt, pv_optimal_azimuth
`

// GetSites returns every site ordered by name
func (s *SQLiteProvider) GetSites() ([]SiteData, error) {
	rows, err := s.db.Query(`SELECT ` + siteColumns + ` FROM sites ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sites: %w", err)
	}
	defer rows.Close()

	var ids []int64
	var sites []SiteData
	for rows.Next() {
		id, site, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
		sites = append(sites, site)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sites: %w", err)
	}
	rows.Close()

	for i := range sites {
		if err := s.loadSiteChildren(ids[i], &sites[i]); err != nil {
			return nil, err
		}
	}

	return sites, nil
}

// GetSite returns one site by name
func (s *SQLiteProvider) GetSite(name string) (*SiteData, error) {
	row := s.db.QueryRow(`SELECT `+siteColumns+` FROM sites WHERE name = ?`, name)

	id, site, err := scanSite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", name, ErrSiteNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadSiteChildren(id, &site); err != nil {
		return nil, err
	}
	return &site, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSite(r rowScanner) (int64, SiteData, error) {
	var id int64
	var site SiteData
	var classification, monthlyOutput sql.NullString
	var tz, buildingHeight, yearly, ratio, tilt, azimuth sql.NullFloat64

	err := r.Scan(
		&id, &site.Name, &site.Latitude, &site.Longitude, &site.Altitude, &tz,
		&site.RoofWidth, &site.RoofDepth, &classification, &buildingHeight,
		&yearly, &monthlyOutput, &ratio, &tilt, &azimuth,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, SiteData{}, err
	}
	if err != nil {
		return 0, SiteData{}, fmt.Errorf("failed to scan site row: %w", err)
	}

	site.TimezoneOffset = floatPtr(tz)
	site.Classification = classification.String
	site.BuildingHeight = buildingHeight.Float64

	if yearly.Valid {
		site.PVPotential = &solar.PVPotential{
			YearlyOutput:     yearly.Float64,
			PerformanceRatio: ratio.Float64,
			OptimalTilt:      tilt.Float64,
			OptimalAzimuth:   azimuth.Float64,
		}
		if monthlyOutput.Valid && monthlyOutput.String != "" {
			if err := json.Unmarshal([]byte(monthlyOutput.String), &site.PVPotential.MonthlyOutput); err != nil {
				return 0, SiteData{}, fmt.Errorf("site %s: bad pv_monthly_output: %w", site.Name, err)
			}
		}
	}

	return id, site, nil
}

func (s *SQLiteProvider) loadSiteChildren(siteID int64, site *SiteData) error {
	rows, err := s.db.Query(`
		SELECT category, height, distance, azimuth, width, description
		FROM site_obstacles
		WHERE site_id = ?
		ORDER BY position
	`, siteID)
	if err != nil {
		return fmt.Errorf("failed to query obstacles for site %s: %w", site.Name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var o shading.Obstacle
		var category string
		var description sql.NullString
		if err := rows.Scan(&category, &o.Height, &o.Distance, &o.Azimuth, &o.Width, &description); err != nil {
			return fmt.Errorf("failed to scan obstacle row: %w", err)
		}
		o.Category = shading.Category(category)
		o.Description = description.String
		site.Obstacles = append(site.Obstacles, o)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read obstacles for site %s: %w", site.Name, err)
	}

	irrRows, err := s.db.Query(`
		SELECT month, irradiance, temperature
		FROM site_monthly_irradiance
		WHERE site_id = ?
		ORDER BY month
	`, siteID)
	if err != nil {
		return fmt.Errorf("failed to query irradiance for site %s: %w", site.Name, err)
	}
	defer irrRows.Close()

	for irrRows.Next() {
		var r solar.MonthlyIrradianceRecord
		if err := irrRows.Scan(&r.Month, &r.Irradiance, &r.Temperature); err != nil {
			return fmt.Errorf("failed to scan irradiance row: %w", err)
		}
		site.MonthlyIrradiance = append(site.MonthlyIrradiance, r)
	}
	return irrRows.Err()
}

// IsReadOnly returns false; SQLite configuration can be written with SaveConfig
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveConfig replaces the stored configuration with configData
func (s *SQLiteProvider) SaveConfig(configData *ConfigData) error {
	if err := ValidateConfig(configData); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.clearExistingConfig(tx); err != nil {
		return fmt.Errorf("failed to clear existing config: %w", err)
	}

	if err := s.insertServerConfig(tx, &configData.Server); err != nil {
		return fmt.Errorf("failed to insert server config: %w", err)
	}

	if err := s.insertAnalysisConfig(tx, &configData.Analysis); err != nil {
		return fmt.Errorf("failed to insert analysis config: %w", err)
	}

	for i := range configData.Sites {
		if err := s.insertSite(tx, &configData.Sites[i]); err != nil {
			return fmt.Errorf("failed to insert site %s: %w", configData.Sites[i].Name, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteProvider) clearExistingConfig(tx *sql.Tx) error {
	queries := []string{
		"DELETE FROM site_monthly_irradiance",
		"DELETE FROM site_obstacles",
		"DELETE FROM sites",
		"DELETE FROM analysis_configs",
		"DELETE FROM server_configs",
	}

	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteProvider) insertServerConfig(tx *sql.Tx, server *ServerData) error {
	query := `
		INSERT INTO server_configs (id, listen_addr, port, tls_cert_path, tls_key_path, enable_cors)
		VALUES (1, ?, ?, ?, ?, ?)
	`
	var port sql.NullInt64
	if server.Port != 0 {
		port = sql.NullInt64{Int64: int64(server.Port), Valid: true}
	}
	_, err := tx.Exec(query,
		nullString(server.ListenAddr), port,
		nullString(server.TLSCertPath), nullString(server.TLSKeyPath), server.EnableCORS,
	)
	return err
}

func (s *SQLiteProvider) insertAnalysisConfig(tx *sql.Tx, a *AnalysisData) error {
	query := `
		INSERT INTO analysis_configs (
			id, cell_size, min_elevation, critical_loss, high_annual_loss,
			winter_summer_ratio, tall_tree_height, building_proximity_factor,
			excellent_site_loss, temperature_amplitude, min_temperature_hour,
			timezone_offset
		) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := tx.Exec(query,
		nullFloatPtr(a.CellSize), nullFloatPtr(a.MinElevation), nullFloatPtr(a.CriticalLoss),
		nullFloatPtr(a.HighAnnualLoss), nullFloatPtr(a.WinterSummerRatio), nullFloatPtr(a.TallTreeHeight),
		nullFloatPtr(a.BuildingProximityFactor), nullFloatPtr(a.ExcellentSiteLoss),
		nullFloatPtr(a.TemperatureAmplitude), nullFloatPtr(a.MinTemperatureHour),
		nullFloatPtr(a.TimezoneOffset),
	)
	return err
}

func (s *SQLiteProvider) insertSite(tx *sql.Tx, site *SiteData) error {
	var yearly, ratio, tilt, azimuth sql.NullFloat64
	var monthly sql.NullString
	if p := site.PVPotential; p != nil {
		yearly = sql.NullFloat64{Float64: p.YearlyOutput, Valid: true}
		ratio = sql.NullFloat64{Float64: p.PerformanceRatio, Valid: true}
		tilt = sql.NullFloat64{Float64: p.OptimalTilt, Valid: true}
		azimuth = sql.NullFloat64{Float64: p.OptimalAzimuth, Valid: true}
		if len(p.MonthlyOutput) > 0 {
			encoded, err := json.Marshal(p.MonthlyOutput)
			if err != nil {
				return err
			}
			monthly = sql.NullString{String: string(encoded), Valid: true}
		}
	}

	result, err := tx.Exec(`
		INSERT INTO sites (
			name, latitude, longitude, altitude, timezone_offset, roof_width, roof_depth,
			classification, building_height,
			pv_yearly_output, pv_monthly_output, pv_performance_ratio, pv_optimal_tilt, pv_optimal_azimuth
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		site.Name, site.Latitude, site.Longitude, site.Altitude, nullFloatPtr(site.TimezoneOffset), site.RoofWidth, site.RoofDepth,
		nullString(site.Classification), nullFloat64(site.BuildingHeight),
		yearly, monthly, ratio, tilt, azimuth,
	)
	if err != nil {
		return err
	}

	siteID, err := result.LastInsertId()
	if err != nil {
		return err
	}

	for i, o := range site.Obstacles {
		_, err := tx.Exec(`
			INSERT INTO site_obstacles (site_id, position, category, height, distance, azimuth, width, description)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, siteID, i, string(o.Category), o.Height, o.Distance, o.Azimuth, o.Width, nullString(o.Description))
		if err != nil {
			return fmt.Errorf("obstacle %d: %w", i, err)
		}
	}

	for _, r := range site.MonthlyIrradiance {
		_, err := tx.Exec(`
			INSERT INTO site_monthly_irradiance (site_id, month, irradiance, temperature)
			VALUES (?, ?, ?, ?)
		`, siteID, r.Month, r.Irradiance, r.Temperature)
		if err != nil {
			return fmt.Errorf("irradiance for month %d: %w", r.Month, err)
		}
	}

	return nil
}

// Helper functions for handling nullable fields
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullFloat64(f float64) sql.NullFloat64 {
	if f == 0 {
		return sql.NullFloat64{Valid: false}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}

func nullFloatPtr(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{Valid: false}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
