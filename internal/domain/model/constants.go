package model

// レベルごとの既定ズーム
const (
	ZoomLevelPlace    = 16
	ZoomLevelVenue    = 15
	ZoomLevelDistrict = 13
	ZoomLevelRegion   = 11

	// ZoomRecenterUser 現在地へ戻る際のズーム
	ZoomRecenterUser = 15
	// ZoomInitialUser 現在地が分かっている場合の初期ズーム
	ZoomInitialUser = 14
	// ZoomInitialDefault 現在地が分からない場合の初期ズーム
	ZoomInitialDefault = 12

	// ZoomFitMin / ZoomFitMax 全体表示時のズーム範囲
	ZoomFitMin = 10
	ZoomFitMax = 16
)

// ZoomForLevel レベルごとの既定ズームを返す
func ZoomForLevel(level Level) int {
	switch level {
	case LevelPlace:
		return ZoomLevelPlace
	case LevelVenue:
		return ZoomLevelVenue
	case LevelDistrict:
		return ZoomLevelDistrict
	case LevelRegion:
		return ZoomLevelRegion
	}
	return ZoomInitialUser
}

// MarkerStyle マーカーの色とアイコン
type MarkerStyle struct {
	Color string
	Icon  string
}

// DefaultMarkerStyle カテゴリに一致しない場合のマーカー
var DefaultMarkerStyle = MarkerStyle{Color: "#0E6DE8", Icon: "mappin.circle.fill"}

// CategoryMarkerStyles レベル0のカテゴリ別マーカー（部分一致・大文字小文字無視）
// 照合は先頭から順に行う
var CategoryMarkerStyles = []struct {
	Keyword string
	Style   MarkerStyle
}{
	{"cafe", MarkerStyle{Color: "#8B4513", Icon: "cup.and.saucer.fill"}},
	{"restaurant", MarkerStyle{Color: "#FF6347", Icon: "fork.knife"}},
	{"shopping_mall", MarkerStyle{Color: "#9370DB", Icon: "cart.fill"}},
	{"park", MarkerStyle{Color: "#32CD32", Icon: "leaf.fill"}},
	{"cinema", MarkerStyle{Color: "#FF1493", Icon: "film.fill"}},
	{"gym", MarkerStyle{Color: "#FF8C00", Icon: "figure.run"}},
}

// LevelMarkerStyles レベル1以上のマーカー（レベル0の色とも互いにも重ならない）
var LevelMarkerStyles = map[Level]MarkerStyle{
	LevelVenue:    {Color: "#6A5ACD", Icon: "building.2.fill"},
	LevelDistrict: {Color: "#DAA520", Icon: "map.fill"},
	LevelRegion:   {Color: "#2E8B57", Icon: "globe.americas.fill"},
}
