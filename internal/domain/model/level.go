package model

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidLevel 粒度レベルが 0..3 の範囲外
var ErrInvalidLevel = errors.New("レベルは0から3の範囲で指定してください")

// Level 推薦の粒度レベル
type Level int

const (
	// LevelPlace 個別のスポット
	LevelPlace Level = iota
	// LevelVenue エリア・施設（モール等）
	LevelVenue
	// LevelDistrict 地区
	LevelDistrict
	// LevelRegion 地域
	LevelRegion
)

// LevelCount レベルの総数
const LevelCount = 4

// AllLevels 全レベルを昇順で返す
func AllLevels() []Level {
	return []Level{LevelPlace, LevelVenue, LevelDistrict, LevelRegion}
}

// Valid レベルが有効範囲内か
func (l Level) Valid() bool {
	return l >= LevelPlace && l <= LevelRegion
}

// Name 画面表示用のレベル名
func (l Level) Name() string {
	switch l {
	case LevelPlace:
		return "Individual Places"
	case LevelVenue:
		return "Venues & Malls"
	case LevelDistrict:
		return "Districts"
	case LevelRegion:
		return "Regions"
	}
	return fmt.Sprintf("Level %d", int(l))
}

// ParseLevel 文字列からレベルを解析
func ParseLevel(s string) (Level, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
	l := Level(n)
	if !l.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidLevel, n)
	}
	return l, nil
}
