package model

// RecommendationRequest POST /recommend のリクエスト
type RecommendationRequest struct {
	UserID              string    `json:"userId"`
	Prompt              string    `json:"prompt"`
	CurrentLocation     *Location `json:"currentLocation,omitempty"`
	IncludeExplanations *bool     `json:"includeExplanations,omitempty"`
}

// RecommendationResponse 1回の検索結果
// 各レベルの配列はサーバーが返した関連度の降順を保持する
type RecommendationResponse struct {
	Success         bool                 `json:"success"`
	UserID          string               `json:"userId"`
	Prompt          string               `json:"prompt"`
	Recommendations LevelRecommendations `json:"recommendations"`
	Explanations    LevelExplanations    `json:"explanations"`
}

// LevelRecommendations レベルごとのPOI配列
type LevelRecommendations struct {
	Level0 []POIInfo `json:"level_0" validate:"dive"`
	Level1 []POIInfo `json:"level_1" validate:"dive"`
	Level2 []POIInfo `json:"level_2" validate:"dive"`
	Level3 []POIInfo `json:"level_3,omitempty" validate:"dive"`
}

// ByLevel 指定レベルの配列を返す（範囲外は nil）
func (r LevelRecommendations) ByLevel(level Level) []POIInfo {
	switch level {
	case LevelPlace:
		return r.Level0
	case LevelVenue:
		return r.Level1
	case LevelDistrict:
		return r.Level2
	case LevelRegion:
		return r.Level3
	}
	return nil
}

// LevelExplanations レベルごとの推薦理由配列
// POI配列と長さは一致しない場合があるため poi_id で突き合わせる
type LevelExplanations struct {
	Level0 []Explanation `json:"level_0,omitempty" validate:"dive"`
	Level1 []Explanation `json:"level_1,omitempty" validate:"dive"`
	Level2 []Explanation `json:"level_2,omitempty" validate:"dive"`
	Level3 []Explanation `json:"level_3,omitempty" validate:"dive"`
}

// ByLevel 指定レベルの配列を返す（範囲外は nil）
func (e LevelExplanations) ByLevel(level Level) []Explanation {
	switch level {
	case LevelPlace:
		return e.Level0
	case LevelVenue:
		return e.Level1
	case LevelDistrict:
		return e.Level2
	case LevelRegion:
		return e.Level3
	}
	return nil
}

// HealthStatus GET /health のレスポンス
type HealthStatus struct {
	Status          string `json:"status" validate:"required"`
	FrameworkLoaded bool   `json:"framework_loaded"`
	TotalUsers      int    `json:"total_users"`
	TotalPOIsLevel0 int    `json:"total_pois_level_0"`
	TotalPOIsLevel1 int    `json:"total_pois_level_1,omitempty"`
	TotalPOIsLevel2 int    `json:"total_pois_level_2,omitempty"`
	TotalPOIsLevel3 int    `json:"total_pois_level_3,omitempty"`
}

// RegisterUserRequest POST /add_user のリクエスト
type RegisterUserRequest struct {
	UserID    string   `json:"user_id"`
	Interests []string `json:"interests"`
}

// RegisterUserResponse POST /add_user のレスポンス
type RegisterUserResponse struct {
	Success bool   `json:"success"`
	UserID  string `json:"user_id"`
	Idx     int    `json:"idx"`
	Message string `json:"message"`
}

// ExplainRequest POST /explain のリクエスト
type ExplainRequest struct {
	UserID          string    `json:"user_id"`
	POIID           string    `json:"poi_id"`
	Level           Level     `json:"level"`
	CurrentLocation *Location `json:"current_location,omitempty"`
}
