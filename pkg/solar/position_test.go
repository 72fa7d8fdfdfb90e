package solar

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestCalculatePosition(t *testing.T) {
	tests := []struct {
		name         string
		time         time.Time
		latitude     float64
		longitude    float64
		tz           float64
		elevation    float64
		elevationTol float64
		azimuth      float64
		azimuthTol   float64
	}{
		{
			// Solar noon falls ~7.5 minutes after 12:00 UTC on this date
			name:         "Equator at March equinox, solar noon",
			time:         time.Date(2024, 3, 20, 12, 7, 0, 0, time.UTC),
			latitude:     0,
			longitude:    0,
			elevation:    90,
			elevationTol: 1.0,
			azimuth:      -1, // undefined near the zenith
		},
		{
			name:         "Copenhagen summer solstice, solar noon",
			time:         time.Date(2024, 6, 21, 11, 10, 0, 0, time.UTC),
			latitude:     55.6,
			longitude:    12.6,
			elevation:    57.84,
			elevationTol: 0.5,
			azimuth:      180,
			azimuthTol:   2,
		},
		{
			name:         "Same instant on a CEST clock",
			time:         time.Date(2024, 6, 21, 13, 10, 0, 0, time.FixedZone("CEST", 2*3600)),
			latitude:     55.6,
			longitude:    12.6,
			tz:           2,
			elevation:    57.84,
			elevationTol: 0.5,
			azimuth:      180,
			azimuthTol:   2,
		},
		{
			name:         "Sydney winter solstice, solar noon faces north",
			time:         time.Date(2024, 6, 21, 2, 0, 0, 0, time.UTC),
			latitude:     -33.87,
			longitude:    151.21,
			elevation:    32.7,
			elevationTol: 1.0,
			azimuth:      0,
			azimuthTol:   3,
		},
		{
			name:         "Copenhagen midnight in winter",
			time:         time.Date(2024, 12, 21, 23, 0, 0, 0, time.UTC),
			latitude:     55.6,
			longitude:    12.6,
			elevation:    -57.8,
			elevationTol: 1.5,
			azimuth:      -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, err := CalculatePosition(tt.latitude, tt.longitude, tt.time, tt.tz)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if math.Abs(pos.Elevation-tt.elevation) > tt.elevationTol {
				t.Errorf("Elevation = %.3f, expected %.2f ±%.2f", pos.Elevation, tt.elevation, tt.elevationTol)
			}

			if tt.azimuth >= 0 && AngularDistance(pos.Azimuth, tt.azimuth) > tt.azimuthTol {
				t.Errorf("Azimuth = %.3f, expected %.1f ±%.1f", pos.Azimuth, tt.azimuth, tt.azimuthTol)
			}
		})
	}
}

func TestEquinoxElevationMatchesDeclination(t *testing.T) {
	pos, err := CalculatePosition(0, 0, time.Date(2024, 3, 20, 12, 7, 0, 0, time.UTC), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := 90 - math.Abs(pos.Declination)
	if math.Abs(pos.Elevation-expected) > 2 {
		t.Errorf("Elevation = %.3f, expected ~%.3f (90 - |declination|)", pos.Elevation, expected)
	}
}

func TestPositionInvariants(t *testing.T) {
	latitudes := []float64{-90, -66.5, -33.87, 0, 23.4, 55.6, 78.2, 90}
	longitudes := []float64{-180, -122.3, 0, 12.6, 151.21, 180}
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, lat := range latitudes {
		for _, lng := range longitudes {
			// Step 5 days and 7 hours so every hour of the day is visited
			for ts := start; ts.Year() == 2023; ts = ts.Add(5*24*time.Hour + 7*time.Hour) {
				pos, err := CalculatePosition(lat, lng, ts, 0)
				if err != nil {
					t.Fatalf("lat=%v lng=%v %v: unexpected error: %v", lat, lng, ts, err)
				}

				if pos.Zenith != 90-pos.Elevation {
					t.Fatalf("lat=%v lng=%v %v: zenith %.6f != 90 - elevation %.6f", lat, lng, ts, pos.Zenith, pos.Elevation)
				}
				if pos.Azimuth < 0 || pos.Azimuth >= 360 || math.IsNaN(pos.Azimuth) {
					t.Fatalf("lat=%v lng=%v %v: azimuth %.6f outside [0, 360)", lat, lng, ts, pos.Azimuth)
				}
				if pos.Elevation < -90 || pos.Elevation > 90 || math.IsNaN(pos.Elevation) {
					t.Fatalf("lat=%v lng=%v %v: elevation %.6f outside [-90, 90]", lat, lng, ts, pos.Elevation)
				}
			}
		}
	}
}

func TestMorningEastAfternoonWest(t *testing.T) {
	morning, err := CalculatePosition(47.6, -122.3, time.Date(2024, 6, 21, 16, 0, 0, 0, time.UTC), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	afternoon, err := CalculatePosition(47.6, -122.3, time.Date(2024, 6, 21, 23, 0, 0, 0, time.UTC), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if morning.Azimuth <= 0 || morning.Azimuth >= 180 {
		t.Errorf("morning azimuth = %.1f, expected in the eastern half", morning.Azimuth)
	}
	if afternoon.Azimuth <= 180 {
		t.Errorf("afternoon azimuth = %.1f, expected in the western half", afternoon.Azimuth)
	}
	if morning.HourAngle >= 0 || afternoon.HourAngle <= 0 {
		t.Errorf("hour angles = (%.1f, %.1f), expected negative then positive", morning.HourAngle, afternoon.HourAngle)
	}
}

func TestCalculatePositionInvalidInput(t *testing.T) {
	valid := time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		latitude  float64
		longitude float64
		time      time.Time
		tz        float64
		field     string
	}{
		{name: "NaN latitude", latitude: math.NaN(), longitude: 0, time: valid, field: "latitude"},
		{name: "latitude above 90", latitude: 90.5, longitude: 0, time: valid, field: "latitude"},
		{name: "infinite longitude", latitude: 0, longitude: math.Inf(1), time: valid, field: "longitude"},
		{name: "longitude below -180", latitude: 0, longitude: -181, time: valid, field: "longitude"},
		{name: "unset timestamp", latitude: 0, longitude: 0, time: time.Time{}, field: "timestamp"},
		{name: "timezone out of range", latitude: 0, longitude: 0, time: valid, tz: 15, field: "timezone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CalculatePosition(tt.latitude, tt.longitude, tt.time, tt.tz)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}

			var inputErr *InputError
			if !errors.As(err, &inputErr) {
				t.Fatalf("expected *InputError, got %T", err)
			}
			if inputErr.Field != tt.field {
				t.Errorf("Field = %q, expected %q", inputErr.Field, tt.field)
			}
		})
	}
}

func TestNormalizeAzimuth(t *testing.T) {
	tests := []struct {
		in, expected float64
	}{
		{0, 0},
		{360, 0},
		{-90, 270},
		{725, 5},
		{-1e-15, 0},
	}

	for _, tt := range tests {
		got := NormalizeAzimuth(tt.in)
		if got < 0 || got >= 360 || math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("NormalizeAzimuth(%v) = %v, expected %v", tt.in, got, tt.expected)
		}
	}
}

func TestLongitudeTimezone(t *testing.T) {
	tests := []struct {
		longitude float64
		want      float64
	}{
		{151.21, 10},
		{-75, -5},
		{12.6, 1},
		{180, 12},
		{-180, -12},
	}
	for _, tt := range tests {
		if got := LongitudeTimezone(tt.longitude); got != tt.want {
			t.Errorf("LongitudeTimezone(%v) = %v, want %v", tt.longitude, got, tt.want)
		}
	}
}

func TestParseDateKeepsCalendarDay(t *testing.T) {
	d, err := ParseDate("2024-03-01", -5)
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if y, m, day := ClockTime(d, -5).Date(); y != 2024 || m != time.March || day != 1 {
		t.Errorf("clock date = %d-%02d-%02d, want 2024-03-01", y, m, day)
	}
	if want := time.Date(2024, time.March, 1, 5, 0, 0, 0, time.UTC); !d.Equal(want) {
		t.Errorf("ParseDate = %v, want %v", d.UTC(), want)
	}

	_, err = ParseDate("01/03/2024", 0)
	var inputErr *InputError
	if !errors.As(err, &inputErr) || inputErr.Field != "date" {
		t.Errorf("bad layout: got %v, want date InputError", err)
	}

	if _, err := ParseDate("2024-03-01", 20); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("timezone 20: got %v, want ErrInvalidInput", err)
	}
}
