package solar

import (
	"math"
	"time"
)

// SolarConstant is the mean extraterrestrial irradiance, W/m²
const SolarConstant = 1361.0

// ClearSky is a clear-sky irradiance estimate, W/m²
type ClearSky struct {
	GHI float64 `json:"ghi"`
	DNI float64 `json:"dni"`
	DHI float64 `json:"dhi"`
}

// ClearSkyIrradiance estimates cloudless-sky irradiance for a sun position with
// a simplified Ineichen-Perez model: Kasten-Young air mass, a fixed Linke
// turbidity of 2 and an altitude correction in meters. It returns zeros when
// the sun is at or below the horizon.
func ClearSkyIrradiance(pos Position, date time.Time, altitude float64) ClearSky {
	if !pos.AboveHorizon() {
		return ClearSky{}
	}

	n := float64(date.YearDay())
	zenith := pos.Zenith

	// Extraterrestrial radiation, adjusted for the Earth-Sun distance
	g0 := SolarConstant * (1 + 0.033*math.Cos(degToRad(360.0*(n-3)/365.0)))

	const (
		linkeTurbidity = 2.0
		normalization  = 0.7
		extinction     = 0.027
	)

	airMass := 1.0 / (math.Cos(degToRad(zenith)) + 0.50572*math.Pow(96.07995-zenith, -1.6364))
	dni := g0 * normalization * math.Exp(-extinction*airMass*linkeTurbidity*math.Exp(-altitude/8000.0))

	// Seasonal diffuse fraction
	fh := 0.1 + 0.05*math.Sin(math.Pi*(n-100)/365.0)
	dhi := fh * g0 * math.Sin(degToRad(zenith))

	return ClearSky{
		GHI: dni*math.Cos(degToRad(zenith)) + dhi,
		DNI: dni,
		DHI: dhi,
	}
}
