package model

// CameraPosition 地図カメラの中心座標とズーム
type CameraPosition struct {
	Coordinates Location `json:"coordinates"`
	Zoom        int      `json:"zoom"`
}

// Marker 地図上に描画するマーカー
type Marker struct {
	ID          string   `json:"id"`
	Coordinates Location `json:"coordinates"`
	Title       string   `json:"title"`
	Subtitle    string   `json:"subtitle"`
	TintColor   string   `json:"tint_color"`
	SystemImage string   `json:"system_image"`
}

// MapState 地図ナビゲーションの状態
type MapState string

const (
	// MapStateEmpty 現在レベルに座標付きPOIが無い
	MapStateEmpty MapState = "empty"
	// MapStatePositioned カーソルが有効なPOIを指している
	MapStatePositioned MapState = "positioned"
)

// LevelSummary レベル選択ボタン用の情報
type LevelSummary struct {
	Level    Level  `json:"level"`
	Name     string `json:"name"`
	Count    int    `json:"count"`
	Selected bool   `json:"selected"`
}

// MapView 画面描画に必要な地図の状態一式
// FocusedDistanceKm は現在地が不明な場合は省略する
type MapView struct {
	State             MapState       `json:"state"`
	CurrentLevel      Level          `json:"current_level"`
	CurrentIndex      int            `json:"current_index"`
	Total             int            `json:"total"`
	Camera            CameraPosition `json:"camera"`
	Markers           []Marker       `json:"markers"`
	Focused           *POIInfo       `json:"focused,omitempty"`
	FocusedDistanceKm *float64       `json:"focused_distance_km,omitempty"`
	Levels            []LevelSummary `json:"levels"`
	EmptyMessage      string         `json:"empty_message,omitempty"`
}
