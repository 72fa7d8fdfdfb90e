package shading

import (
	"time"

	"github.com/chrissnell/roofsolar/pkg/solar"
)

// ShadedYield is a PV potential record with the analysis losses applied
type ShadedYield struct {
	YearlyOutput     float64   `json:"yearly_output"`
	YearlyLoss       float64   `json:"yearly_loss"`
	MonthlyOutput    []float64 `json:"monthly_output,omitempty"`
	PerformanceRatio float64   `json:"performance_ratio"`
}

// AdjustYield scales the yearly output by the annual loss and each monthly output
// by the loss of the season that month falls in
func AdjustYield(p solar.PVPotential, a *Analysis) (ShadedYield, error) {
	if err := p.Validate(); err != nil {
		return ShadedYield{}, err
	}

	remaining := 1 - a.AnnualLoss/100
	y := ShadedYield{
		YearlyOutput:     p.YearlyOutput * remaining,
		YearlyLoss:       p.YearlyOutput - p.YearlyOutput*remaining,
		PerformanceRatio: p.PerformanceRatio * remaining,
	}

	if len(p.MonthlyOutput) > 0 {
		y.MonthlyOutput = make([]float64, len(p.MonthlyOutput))
		for i, out := range p.MonthlyOutput {
			season := SeasonOf(a.Latitude, time.Month(i+1))
			y.MonthlyOutput[i] = out * (1 - a.SeasonalLosses[season]/100)
		}
	}

	return y, nil
}
