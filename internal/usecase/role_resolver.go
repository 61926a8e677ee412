package usecase

import (
	"context"

	"Spatialynk-App/internal/domain/model"
	"Spatialynk-App/internal/domain/repository"
	"Spatialynk-App/internal/logging"
)

// RoleResolver ユーザーIDから役割を判定する
type RoleResolver struct {
	users repository.UsersRepository
}

func NewRoleResolver(users repository.UsersRepository) *RoleResolver {
	return &RoleResolver{users: users}
}

// Resolve 役割とプロフィール（取得できた場合）を返す
//
// ユーザーIDが空なら未登録。プロフィールが取得できない場合は一般ユーザーとして扱い、
// 無効化されたユーザーは未登録扱いにする。
func (r *RoleResolver) Resolve(ctx context.Context, userID string) (model.Role, *model.UserProfile) {
	if userID == "" {
		return model.RoleUnregistered, nil
	}
	if r.users == nil {
		return model.RoleFreeUser, nil
	}

	profile, err := r.users.GetByUserID(ctx, userID)
	if err != nil {
		logging.Warn().Err(err).Str("user_id", userID).Msg("ユーザー情報を取得できないため一般ユーザーとして扱います")
		return model.RoleFreeUser, nil
	}
	if profile == nil {
		logging.Warn().Str("user_id", userID).Msg("ユーザー情報が見つからないため一般ユーザーとして扱います")
		return model.RoleFreeUser, nil
	}
	return profile.ParsedRole(), profile
}
