package service

import "errors"

var (
	// ErrEmptyLevel 現在レベルに座標付きのPOIが無い
	ErrEmptyLevel = errors.New("現在のレベルに地図表示できるPOIがありません")
	// ErrNoUserLocation 現在地が未取得
	ErrNoUserLocation = errors.New("現在地が取得されていません")
	// ErrStaleResponse より新しい検索が発行済みのためレスポンスを破棄した
	ErrStaleResponse = errors.New("新しい検索が発行されたためレスポンスを破棄しました")
)
