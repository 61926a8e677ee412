package usecase

import "errors"

var (
	// ErrPermissionDenied ユーザーの役割では実行できない操作
	ErrPermissionDenied = errors.New("この操作を実行する権限がありません")
	// ErrEmptyPrompt 検索語が空
	ErrEmptyPrompt = errors.New("検索語を入力してください")
	// ErrAnalyticsUnavailable 集計用のデータベース接続が設定されていない
	ErrAnalyticsUnavailable = errors.New("集計機能は利用できません")
)
