package model

import (
	"fmt"
	"time"
)

// InteractionType ユーザー操作の種別
type InteractionType string

const (
	InteractionView   InteractionType = "view"
	InteractionClick  InteractionType = "click"
	InteractionVisit  InteractionType = "visit"
	InteractionExpand InteractionType = "expand"
	InteractionOther  InteractionType = "other"
)

// Valid 定義済みの種別か
func (t InteractionType) Valid() bool {
	switch t {
	case InteractionView, InteractionClick, InteractionVisit, InteractionExpand, InteractionOther:
		return true
	}
	return false
}

// ParseInteractionType 文字列から種別を解析
func ParseInteractionType(s string) (InteractionType, error) {
	t := InteractionType(s)
	if !t.Valid() {
		return "", fmt.Errorf("interaction_typeは view, click, visit, expand, other のいずれかを指定してください: %q", s)
	}
	return t, nil
}

// InteractionRequest POST /interaction のリクエスト
type InteractionRequest struct {
	UserID          string          `json:"user_id"`
	POIID           string          `json:"poi_id"`
	InteractionType InteractionType `json:"interaction_type"`
	Value           *float64        `json:"value,omitempty"`
	Timestamp       *time.Time      `json:"timestamp,omitempty"`
}

// InteractionAck POST /interaction のレスポンス
type InteractionAck struct {
	OK     bool   `json:"ok"`
	UserID string `json:"user_id"`
	POIID  string `json:"poi_id"`
}
