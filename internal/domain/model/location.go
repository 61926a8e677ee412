package model

import (
	"fmt"

	"github.com/paulmach/orb"
)

// DefaultLocation 位置情報が取得できない場合のシミュレーション用座標（シンガポール中心部）
var DefaultLocation = Location{Latitude: 1.3521, Longitude: 103.8198}

// Location 緯度経度を表す値型
type Location struct {
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
}

// Validate 緯度経度が有効範囲内かチェック
func (l Location) Validate() error {
	if l.Latitude < -90 || l.Latitude > 90 {
		return fmt.Errorf("緯度は-90から90の範囲で指定してください: %f", l.Latitude)
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		return fmt.Errorf("経度は-180から180の範囲で指定してください: %f", l.Longitude)
	}
	return nil
}

// ToPoint Location を orb.Point に変換（orb は [lng, lat] の順）
func (l Location) ToPoint() orb.Point {
	return orb.Point{l.Longitude, l.Latitude}
}

// LocationFromPoint orb.Point から Location を作成
func LocationFromPoint(p orb.Point) Location {
	return Location{
		Latitude:  p.Lat(),
		Longitude: p.Lon(),
	}
}
