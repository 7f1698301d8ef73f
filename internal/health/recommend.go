package health

import (
	"fmt"

	"github.com/afroash/moss-monitor/internal/models"
)

// Recommend returns the maintenance advisories for a label. The water and
// shade advisories interpolate the relevant current reading value. Pure
// lookup: no side effects, no randomness.
func Recommend(label models.HealthLabel, reading *models.Reading) []string {
	switch label {
	case models.LabelNeedsWater:
		return []string{
			"Activate automatic misting system",
			"Check water reservoir levels",
			"Verify sprinkler system functionality",
			fmt.Sprintf("Current moisture: %.0f (target: 600-750)", reading.Moisture),
		}
	case models.LabelNeedsShade:
		return []string{
			"Adjust building ventilation",
			"Consider temporary shading solutions",
			"Check air conditioning efficiency",
			fmt.Sprintf("Current light: %.0f lux (optimal: 300-800)", reading.Light),
		}
	case models.LabelNeedsAttention:
		return []string{
			"Schedule maintenance inspection",
			"Check all sensor calibrations",
			"Examine moss growth patterns",
			"Review environmental control systems",
		}
	default:
		return []string{
			"Continue current maintenance schedule",
			"Monitor sensor readings",
			"System operating optimally",
		}
	}
}
