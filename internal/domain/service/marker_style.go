package service

import (
	"fmt"
	"strings"

	"Spatialynk-App/internal/domain/model"
)

// MarkerStyleFor レベルとカテゴリからマーカーの色・アイコンを決める
// レベル0はカテゴリの部分一致（大文字小文字無視）、レベル1以上はレベル固定
func MarkerStyleFor(level model.Level, category string) model.MarkerStyle {
	if level == model.LevelPlace {
		return categoryStyle(category)
	}
	if style, ok := model.LevelMarkerStyles[level]; ok {
		return style
	}
	return model.DefaultMarkerStyle
}

func categoryStyle(category string) model.MarkerStyle {
	if category == "" {
		return model.DefaultMarkerStyle
	}
	lower := strings.ToLower(category)
	for _, entry := range model.CategoryMarkerStyles {
		if strings.Contains(lower, entry.Keyword) {
			return entry.Style
		}
	}
	return model.DefaultMarkerStyle
}

// MarkerSubtitle レベルごとのサブタイトル
func MarkerSubtitle(level model.Level, poi *model.POIInfo) string {
	switch level {
	case model.LevelPlace:
		if poi.Details.Category == "" {
			return "Place"
		}
		return poi.Details.Category
	case model.LevelVenue:
		return fmt.Sprintf("%d places", intOrZero(poi.Details.NumPOIs))
	case model.LevelDistrict:
		return fmt.Sprintf("%d venues", intOrZero(poi.Details.NumVenues))
	case model.LevelRegion:
		return fmt.Sprintf("%d districts", intOrZero(poi.Details.NumDistricts))
	}
	return ""
}

// BuildMarker 座標付きPOIをマーカーに変換する。座標が無ければ false
func BuildMarker(level model.Level, poi *model.POIInfo) (model.Marker, bool) {
	loc, ok := poi.Coordinates()
	if !ok {
		return model.Marker{}, false
	}
	style := MarkerStyleFor(level, poi.Details.Category)
	return model.Marker{
		ID:          poi.POIID,
		Coordinates: loc,
		Title:       poi.Name,
		Subtitle:    MarkerSubtitle(level, poi),
		TintColor:   style.Color,
		SystemImage: style.Icon,
	}, true
}

// BuildMarkers 座標付きPOIのみをマーカーに変換する（座標なしは黙って除外）
func BuildMarkers(level model.Level, pois []model.POIInfo) []model.Marker {
	markers := make([]model.Marker, 0, len(pois))
	for i := range pois {
		if m, ok := BuildMarker(level, &pois[i]); ok {
			markers = append(markers, m)
		}
	}
	return markers
}

func intOrZero(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}
