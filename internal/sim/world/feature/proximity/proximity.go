package proximity

import (
	"math"

	modelpkg "museumbot/internal/sim/world/kernel/model"
)

// FindNearestWithin returns the id of the exhibit closest to pos whose distance is
// strictly less than maxDistance. On equal distances the earlier exhibit wins.
func FindNearestWithin(exhibits []modelpkg.Exhibit, pos modelpkg.Vec3, maxDistance float64) (string, bool) {
	best := -1
	bestDist := math.Inf(1)
	for i := range exhibits {
		d := modelpkg.Distance(pos, exhibits[i].Pos)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	if best < 0 || !(bestDist < maxDistance) {
		return "", false
	}
	return exhibits[best].ID, true
}

func IsWithin(e modelpkg.Exhibit, pos modelpkg.Vec3, threshold float64) bool {
	return modelpkg.Distance(pos, e.Pos) < threshold
}
