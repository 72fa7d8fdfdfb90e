package shading

import "fmt"

// Recommend applies the fixed threshold rules to a finished analysis. The order
// of the returned suggestions follows the order the rules are checked in. An
// analysis with no usable samples gets only the obstacle rules and a note.
func Recommend(a *Analysis, obstacles []Obstacle, params AnalysisParams) []string {
	recs := []string{}

	if a.NotAssessed {
		recs = append(recs, fmt.Sprintf(
			"The sun was never above %.0f° at any sample time, so shading could not be assessed: check the timezone the sample hours are read on.",
			params.MinElevation))
	}

	if !a.NotAssessed && a.AnnualLoss > params.HighAnnualLoss {
		recs = append(recs, fmt.Sprintf(
			"Annual shading loss is %.1f%%: consider moving the panels to a less shaded part of the roof or evaluating removal of the worst obstacles.",
			a.AnnualLoss))
	}

	winter, summer := a.SeasonalLosses[Winter], a.SeasonalLosses[Summer]
	if !a.NotAssessed && winter > params.WinterSummerRatio*summer {
		recs = append(recs, fmt.Sprintf(
			"Winter shading (%.1f%%) is more than %.0fx summer shading (%.1f%%): a steeper panel tilt helps the array clear low winter obstructions.",
			winter, params.WinterSummerRatio, summer))
	}

	for _, o := range obstacles {
		if o.Category == CategoryTree && o.Height > params.TallTreeHeight {
			recs = append(recs, fmt.Sprintf(
				"Consider pruning %s: trees taller than %.0f m cast long shadows for much of the year.",
				o.Label(), params.TallTreeHeight))
		}
	}

	for _, o := range obstacles {
		if o.Category == CategoryBuilding && o.Distance < params.BuildingProximityFactor*o.Height {
			recs = append(recs, fmt.Sprintf(
				"%s is closer than %.0fx its own height: consider elevated mounting to lift the panels out of its shadow.",
				o.Label(), params.BuildingProximityFactor))
		}
	}

	if !a.NotAssessed && a.AnnualLoss < params.ExcellentSiteLoss {
		recs = append(recs, fmt.Sprintf(
			"Annual shading loss is only %.1f%%: this is an excellent site and no mitigation is needed.",
			a.AnnualLoss))
	}

	return recs
}
