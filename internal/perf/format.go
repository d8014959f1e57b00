package perf

import (
	"fmt"
	"time"

	"github.com/vinhnx/vtagent-sub002/pkg/models"
)

func formatRateRec(role models.Role, rate float64) string {
	return fmt.Sprintf("improve reliability for %s workers (current success rate: %.1f%%)", role, rate*100)
}

func formatSpeedRec(role models.Role, avg time.Duration) string {
	return fmt.Sprintf("reduce completion time for %s workers (current average: %s)", role, avg.Round(time.Millisecond))
}
