package model

import "time"

// UserProfile users テーブルの行（参照のみ）
type UserProfile struct {
	UserID    string   `json:"user_id"`
	AuthID    string   `json:"auth_id"`
	Role      string   `json:"role"`
	IsActive  bool     `json:"is_active"`
	Interests []string `json:"interests"`
}

// ParsedRole role カラムを Role に変換（無効化されたユーザーは未登録扱い）
func (u *UserProfile) ParsedRole() Role {
	if u == nil || !u.IsActive {
		return RoleUnregistered
	}
	return ParseRole(u.Role)
}

// SearchHistory search_history テーブルの行
type SearchHistory struct {
	ID          int64     `json:"id,omitempty"`
	UserID      string    `json:"user_id"`
	SearchQuery string    `json:"search_query"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// POIStatus pois テーブルの承認状態
type POIStatus string

const (
	POIStatusPending  POIStatus = "pending"
	POIStatusActive   POIStatus = "active"
	POIStatusRejected POIStatus = "rejected"
)

// SearchTermCount 検索語の出現回数
type SearchTermCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// PopularPOI 人気スポット
type PopularPOI struct {
	Name       string  `json:"name"`
	Popularity float64 `json:"popularity"`
	Category   string  `json:"category"`
	District   string  `json:"district"`
}

// PlatformAnalytics 管理者向け集計
type PlatformAnalytics struct {
	TotalUsers  int               `json:"total_users"`
	TotalPOIs   int               `json:"total_pois"`
	TopSearches []SearchTermCount `json:"top_searches"`
	PopularPOIs []PopularPOI      `json:"popular_pois"`
}
