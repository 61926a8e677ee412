package model

// Role ユーザーの役割
type Role int

const (
	// RoleUnregistered 未ログイン（ゲスト）
	RoleUnregistered Role = iota
	// RoleFreeUser 一般ユーザー
	RoleFreeUser
	// RoleBusiness 店舗オーナー
	RoleBusiness
	// RoleAdmin 管理者
	RoleAdmin
)

// ParseRole users.role カラムの値を Role に変換
// 未知の値は未登録扱い
func ParseRole(s string) Role {
	switch s {
	case "free_user":
		return RoleFreeUser
	case "business":
		return RoleBusiness
	case "admin":
		return RoleAdmin
	}
	return RoleUnregistered
}

func (r Role) String() string {
	switch r {
	case RoleUnregistered:
		return "unregistered"
	case RoleFreeUser:
		return "free_user"
	case RoleBusiness:
		return "business"
	case RoleAdmin:
		return "admin"
	}
	return "unregistered"
}

// CanGeneratePrompts 推薦検索を実行できるか
func (r Role) CanGeneratePrompts() bool {
	switch r {
	case RoleFreeUser:
		return true
	case RoleUnregistered, RoleBusiness, RoleAdmin:
		return false
	}
	return false
}

// CanViewAnalytics 分析画面を閲覧できるか
func (r Role) CanViewAnalytics() bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleUnregistered, RoleFreeUser, RoleBusiness:
		return false
	}
	return false
}

// SavesSearchHistory 検索履歴を保存するか（ゲストは保存しない）
func (r Role) SavesSearchHistory() bool {
	switch r {
	case RoleFreeUser, RoleBusiness, RoleAdmin:
		return true
	case RoleUnregistered:
		return false
	}
	return false
}

// Tabs 役割ごとに表示するタブ
func (r Role) Tabs() []string {
	switch r {
	case RoleUnregistered, RoleFreeUser:
		return []string{"Home", "Map", "Saved POIs", "Profile"}
	case RoleBusiness:
		return []string{"Dashboard", "My Shops"}
	case RoleAdmin:
		return []string{"Dashboard", "Users", "Approvals", "Analytics"}
	}
	return nil
}
