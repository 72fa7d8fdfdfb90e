package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/chrissnell/roofsolar/internal/constants"
	"github.com/chrissnell/roofsolar/internal/log"
	"github.com/chrissnell/roofsolar/internal/report"
	"github.com/chrissnell/roofsolar/pkg/config"
	"github.com/chrissnell/roofsolar/pkg/responseformat"
	"github.com/chrissnell/roofsolar/pkg/shading"
	"github.com/chrissnell/roofsolar/pkg/solar"
)

// maxBodyBytes bounds request bodies; an obstacle list is never this large
const maxBodyBytes = 1 << 20

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller, formatter *responseformat.Formatter) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  formatter,
	}
}

// fail writes err and records it against the request's log entry
func (h *Handlers) fail(w http.ResponseWriter, req *http.Request, err error) {
	noteError(w, err)
	status, werr := h.formatter.WriteError(w, req, err)
	if werr != nil {
		h.controller.logger.Errorf("error writing %d response: %v", status, werr)
	}
}

func (h *Handlers) respond(w http.ResponseWriter, req *http.Request, data any) {
	if err := h.formatter.WriteResponse(w, req, data); err != nil {
		h.controller.logger.Errorf("error writing response for %s: %v", req.URL.Path, err)
	}
}

// queryFloat parses a numeric query parameter. A missing parameter yields def
// unless required is set.
func queryFloat(req *http.Request, name string, def float64, required bool) (float64, error) {
	raw := req.URL.Query().Get(name)
	if raw == "" {
		if required {
			return 0, &solar.InputError{Field: name, Constraint: "is required"}
		}
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a number: %w", name, raw, solar.ErrInvalidInput)
	}
	return v, nil
}

// decodeBody reads a JSON request body into dst
func decodeBody(w http.ResponseWriter, req *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("malformed request body: %v: %w", err, solar.ErrInvalidInput)
	}
	return nil
}

// GetPosition returns the sun's position for a place and instant
func (h *Handlers) GetPosition(w http.ResponseWriter, req *http.Request) {
	lat, err := queryFloat(req, "lat", 0, true)
	if err != nil {
		h.fail(w, req, err)
		return
	}
	lng, err := queryFloat(req, "lng", 0, true)
	if err != nil {
		h.fail(w, req, err)
		return
	}
	tz, err := queryFloat(req, "tz", solar.LongitudeTimezone(lng), false)
	if err != nil {
		h.fail(w, req, err)
		return
	}

	at := h.controller.now()
	if raw := req.URL.Query().Get("time"); raw != "" {
		at, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			h.fail(w, req, fmt.Errorf("time=%q is not RFC 3339: %w", raw, solar.ErrInvalidInput))
			return
		}
	}

	pos, err := solar.CalculatePosition(lat, lng, at, tz)
	if err != nil {
		h.fail(w, req, err)
		return
	}
	h.respond(w, req, pos)
}

// TiltResponse is the recommended fixed panel orientation
type TiltResponse struct {
	Tilt    float64 `json:"tilt"`
	Azimuth float64 `json:"azimuth"`
	Month   int     `json:"month,omitempty"`
}

// GetTilt returns the annual optimum tilt, or the month's when month is given
func (h *Handlers) GetTilt(w http.ResponseWriter, req *http.Request) {
	lat, err := queryFloat(req, "lat", 0, true)
	if err != nil {
		h.fail(w, req, err)
		return
	}

	var resp TiltResponse
	if raw := req.URL.Query().Get("month"); raw != "" {
		month, err := strconv.Atoi(raw)
		if err != nil {
			h.fail(w, req, fmt.Errorf("month=%q is not an integer: %w", raw, solar.ErrInvalidInput))
			return
		}
		resp.Month = month
		resp.Tilt, err = solar.OptimalTiltForMonth(lat, month)
		if err != nil {
			h.fail(w, req, err)
			return
		}
	} else {
		resp.Tilt, err = solar.OptimalTilt(lat)
		if err != nil {
			h.fail(w, req, err)
			return
		}
	}

	resp.Azimuth, err = solar.OptimalAzimuth(lat)
	if err != nil {
		h.fail(w, req, err)
		return
	}
	h.respond(w, req, resp)
}

// HourlyRequest asks for the intraday curve of one day
type HourlyRequest struct {
	Latitude           float64  `json:"lat"`
	Longitude          float64  `json:"lng"`
	Date               string   `json:"date"`
	DailyTotal         float64  `json:"daily_total"`
	AverageTemperature float64  `json:"avg_temperature"`
	TimezoneOffset     *float64 `json:"tz,omitempty"`
}

// HourlyResponse is a synthesized day
type HourlyResponse struct {
	Date       string                                    `json:"date"`
	Daylight   solar.DaylightWindow                      `json:"daylight"`
	Hours      [solar.HoursPerDay]solar.HourlyIrradiance `json:"hours"`
	DailyTotal float64                                   `json:"daily_total"`
}

// PostHourly synthesizes 24 hourly irradiance and temperature samples
func (h *Handlers) PostHourly(w http.ResponseWriter, req *http.Request) {
	var body HourlyRequest
	if err := decodeBody(w, req, &body); err != nil {
		h.fail(w, req, err)
		return
	}

	if err := solar.CheckLocation(body.Latitude, body.Longitude); err != nil {
		h.fail(w, req, err)
		return
	}

	params := h.controller.analysis.SynthesisParams(body.Longitude)
	params.AverageTemperature = body.AverageTemperature
	if body.TimezoneOffset != nil {
		params.TimezoneOffset = *body.TimezoneOffset
	}

	date, err := solar.ParseDate(body.Date, params.TimezoneOffset)
	if err != nil {
		h.fail(w, req, err)
		return
	}

	hours, err := solar.SynthesizeHourlyIrradiance(body.Latitude, body.Longitude, date, body.DailyTotal, params)
	if err != nil {
		h.fail(w, req, err)
		return
	}
	day, err := solar.Daylight(body.Latitude, body.Longitude, date, params.TimezoneOffset)
	if err != nil {
		h.fail(w, req, err)
		return
	}

	h.respond(w, req, HourlyResponse{
		Date:       body.Date,
		Daylight:   day,
		Hours:      hours,
		DailyTotal: solar.DailyTotal(hours),
	})
}

// ShadingRequest describes one roof and its surroundings. Without obstacles the
// classification is used to estimate them.
type ShadingRequest struct {
	Latitude       float64            `json:"lat"`
	Longitude      float64            `json:"lng"`
	Obstacles      []shading.Obstacle `json:"obstacles"`
	Roof           shading.Footprint  `json:"roof"`
	Classification string             `json:"classification,omitempty"`
	BuildingHeight float64            `json:"building_height,omitempty"`
	TimezoneOffset *float64           `json:"tz,omitempty"`
}

// PostShading runs the annual shading analysis
func (h *Handlers) PostShading(w http.ResponseWriter, req *http.Request) {
	var body ShadingRequest
	if err := decodeBody(w, req, &body); err != nil {
		h.fail(w, req, err)
		return
	}

	obstacles := body.Obstacles
	if len(obstacles) == 0 && body.Classification != "" {
		class, err := shading.ParseClassification(body.Classification)
		if err != nil {
			h.fail(w, req, err)
			return
		}
		if obstacles, err = shading.EstimateObstacles(class, body.BuildingHeight); err != nil {
			h.fail(w, req, err)
			return
		}
	}

	params := h.controller.analysis.AnalysisParams()
	if body.TimezoneOffset != nil {
		params.TimezoneOffset = body.TimezoneOffset
	}

	analysis, err := shading.AnalyzeAnnualShading(body.Latitude, body.Longitude, obstacles, body.Roof, params)
	if err != nil {
		h.fail(w, req, err)
		return
	}
	h.respond(w, req, analysis)
}

// EstimateRequest selects an obstacle template
type EstimateRequest struct {
	Classification string  `json:"classification"`
	BuildingHeight float64 `json:"building_height"`
}

// PostEstimateObstacles returns typical obstacles for a kind of neighbourhood
func (h *Handlers) PostEstimateObstacles(w http.ResponseWriter, req *http.Request) {
	var body EstimateRequest
	if err := decodeBody(w, req, &body); err != nil {
		h.fail(w, req, err)
		return
	}

	class, err := shading.ParseClassification(body.Classification)
	if err != nil {
		h.fail(w, req, err)
		return
	}
	obstacles, err := shading.EstimateObstacles(class, body.BuildingHeight)
	if err != nil {
		h.fail(w, req, err)
		return
	}
	h.respond(w, req, obstacles)
}

// SiteSummary is a configured site as listed by GetSites
type SiteSummary struct {
	Name           string  `json:"name"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	TimezoneOffset float64 `json:"timezone_offset"`
	Obstacles      int     `json:"obstacles"`
	Classification string  `json:"classification,omitempty"`
}

// GetSites lists the configured sites
func (h *Handlers) GetSites(w http.ResponseWriter, req *http.Request) {
	summaries := make([]SiteSummary, 0, len(h.controller.sites))
	for _, s := range h.controller.sites {
		summaries = append(summaries, SiteSummary{
			Name:           s.Name,
			Latitude:       s.Latitude,
			Longitude:      s.Longitude,
			TimezoneOffset: s.Timezone(),
			Obstacles:      len(s.Obstacles),
			Classification: s.Classification,
		})
	}
	h.respond(w, req, summaries)
}

// GetSiteReport runs every calculation for one configured site
func (h *Handlers) GetSiteReport(w http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["name"]

	site, ok := h.controller.findSite(name)
	if !ok {
		err := fmt.Errorf("site %q: %w", name, config.ErrSiteNotFound)
		noteError(w, err)
		if werr := h.formatter.WriteStatus(w, req, http.StatusNotFound, responseformat.ErrorBody{Error: err.Error()}); werr != nil {
			h.controller.logger.Errorf("error writing 404 response: %v", werr)
		}
		return
	}

	r, err := report.Build(site, h.controller.analysis, h.controller.now())
	if err != nil {
		if !errors.Is(err, solar.ErrInvalidInput) {
			log.Errorf("report for site %s failed: %v", name, err)
		}
		h.fail(w, req, err)
		return
	}
	h.respond(w, req, r)
}

// GetHTTPLogs returns the most recent requests, oldest first
func (h *Handlers) GetHTTPLogs(w http.ResponseWriter, req *http.Request) {
	h.respond(w, req, log.GetHTTPLogBuffer().Entries())
}

// HealthResponse reports liveness
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Sites   int    `json:"sites"`
}

// GetHealth reports that the server is up
func (h *Handlers) GetHealth(w http.ResponseWriter, req *http.Request) {
	h.respond(w, req, HealthResponse{
		Status:  "ok",
		Version: constants.Version,
		Sites:   len(h.controller.sites),
	})
}
