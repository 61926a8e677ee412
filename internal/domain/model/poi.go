package model

import (
	"fmt"

	"github.com/goccy/go-json"
)

// POIInfo 推薦対象のスポット（レベルにより個別スポット・施設・地区・地域を表す）
// score は同一レスポンス・同一レベル内の順位付けにのみ意味を持つ
type POIInfo struct {
	POIID       string       `json:"poi_id" validate:"required"`
	Name        string       `json:"name"`
	Score       float64      `json:"score"`
	Price       string       `json:"price,omitempty"`
	Type        string       `json:"type"`
	Details     POIDetails   `json:"details"`
	Explanation *Explanation `json:"explanation,omitempty"`
}

// POIDetails レベル依存の属性
type POIDetails struct {
	Category     string     `json:"category,omitempty"`
	Price        string     `json:"price,omitempty"`
	Popularity   Popularity `json:"popularity,omitempty"`
	Region       string     `json:"region,omitempty"`
	NumPOIs      *int       `json:"num_pois,omitempty" validate:"omitempty,min=0"`
	NumVenues    *int       `json:"num_venues,omitempty" validate:"omitempty,min=0"`
	NumDistricts *int       `json:"num_districts,omitempty" validate:"omitempty,min=0"`
	Textual      string     `json:"textual,omitempty"`
	Latitude     *float64   `json:"latitude,omitempty" validate:"omitempty,min=-90,max=90"`
	Longitude    *float64   `json:"longitude,omitempty" validate:"omitempty,min=-180,max=180"`
}

// Coordinates 緯度経度が両方存在する場合のみ位置を返す
func (p *POIInfo) Coordinates() (Location, bool) {
	if p.Details.Latitude == nil || p.Details.Longitude == nil {
		return Location{}, false
	}
	return Location{Latitude: *p.Details.Latitude, Longitude: *p.Details.Longitude}, true
}

// HasCoordinates 地図に配置可能か
func (p *POIInfo) HasCoordinates() bool {
	_, ok := p.Coordinates()
	return ok
}

// Popularity 数値・文字列どちらでも返ってくる人気度
type Popularity string

// UnmarshalJSON 数値または文字列を受け付ける
func (p *Popularity) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = Popularity(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("popularityは数値または文字列である必要があります: %s", string(data))
	}
	*p = Popularity(n.String())
	return nil
}

// ConfidenceIndicator 推薦理由の確度
type ConfidenceIndicator string

const (
	ConfidenceStrong    ConfidenceIndicator = "strong"
	ConfidenceGood      ConfidenceIndicator = "good"
	ConfidencePotential ConfidenceIndicator = "potential"
)

// Explanation サーバーが生成した推薦理由
// クライアント側では変更しない
type Explanation struct {
	POIID               string              `json:"poi_id"`
	POIName             string              `json:"poi_name,omitempty"`
	HumanExplanation    string              `json:"human_explanation"`
	TopFactors          []string            `json:"top_factors"`
	Score               float64             `json:"score,omitempty"`
	ConfidenceIndicator ConfidenceIndicator `json:"confidence_indicator,omitempty" validate:"omitempty,oneof=strong good potential"`
	ScoreBreakdown      map[string]float64  `json:"score_breakdown,omitempty"`
	ReasonFlags         map[string]bool     `json:"reason_flags,omitempty"`
}

// ReasonFlags GET /explain/flags のレスポンス
type ReasonFlags struct {
	UserID      string          `json:"user_id" validate:"required"`
	POIID       string          `json:"poi_id" validate:"required"`
	Flags       map[string]bool `json:"flags"`
	ActiveFlags []string        `json:"active_flags"`
}
