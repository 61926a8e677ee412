package helper

import (
	"github.com/paulmach/orb/geo"

	"Spatialynk-App/internal/domain/model"
)

// DistanceKm は2地点間の大円距離を計算する (km)
func DistanceKm(p1, p2 model.Location) float64 {
	return geo.DistanceHaversine(p1.ToPoint(), p2.ToPoint()) / 1000
}

// DistanceFromLocationKm は地点からPOIまでの距離 (km)。POIに座標が無ければ false
func DistanceFromLocationKm(origin model.Location, poi *model.POIInfo) (float64, bool) {
	loc, ok := poi.Coordinates()
	if !ok {
		return 0, false
	}
	return DistanceKm(origin, loc), true
}
