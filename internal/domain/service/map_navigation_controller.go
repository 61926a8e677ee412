package service

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/paulmach/orb"

	"Spatialynk-App/internal/domain/helper"
	"Spatialynk-App/internal/domain/model"
)

// fitZoomReferenceDelta 全体表示でズーム14に対応する緯度経度の幅
const fitZoomReferenceDelta = 0.01

// MapNavigationController 選択レベルの推薦結果を地図のカメラ・マーカーに変換する
//
// レベルはストアの選択レベルに追従する。カーソルは座標付きPOIだけを並べた配列の添字で、
// 配列が空でない限り 0 <= currentIndex < len を満たす。
type MapNavigationController struct {
	store *RecommendationStore

	mu           sync.Mutex
	state        model.MapState
	currentLevel model.Level
	currentIndex int
	camera       model.CameraPosition
}

// NewMapNavigationController ストアを購読するコントローラを作成
func NewMapNavigationController(store *RecommendationStore) *MapNavigationController {
	c := &MapNavigationController{
		store:  store,
		state:  model.MapStateEmpty,
		camera: InitialCamera(store.UserLocation()),
	}
	store.Subscribe(c.onStoreEvent)
	c.enterLevel(store.SelectedLevel())
	return c
}

// InitialCamera 現在地があればそこを、無ければ既定の座標を中心にする
func InitialCamera(userLocation *model.Location) model.CameraPosition {
	if userLocation != nil {
		return model.CameraPosition{Coordinates: *userLocation, Zoom: model.ZoomInitialUser}
	}
	return model.CameraPosition{Coordinates: model.DefaultLocation, Zoom: model.ZoomInitialDefault}
}

func (c *MapNavigationController) onStoreEvent(event StoreEvent) {
	switch event {
	case EventRecommendationsReplaced, EventRecommendationsCleared, EventLevelChanged:
		c.enterLevel(c.store.SelectedLevel())
	}
}

// SwitchLevel レベルを切り替える
// ストアの選択レベルを更新し、その通知でカーソルとカメラを再計算する
func (c *MapNavigationController) SwitchLevel(level model.Level) error {
	if !level.Valid() {
		return fmt.Errorf("%w: %d", model.ErrInvalidLevel, int(level))
	}
	return c.store.SetSelectedLevel(level)
}

// enterLevel 座標付きPOIがあれば先頭にカーソルを置きカメラを移動する
// 空の場合はカメラを動かさない
func (c *MapNavigationController) enterLevel(level model.Level) {
	c.mu.Lock()
	located := c.locatedPOIs(level)
	c.currentLevel = level
	c.currentIndex = 0

	if len(located) == 0 {
		c.state = model.MapStateEmpty
		c.mu.Unlock()
		if selected := c.store.SelectedPOI(); selected != nil {
			c.store.SetSelectedPOI(level, nil)
		}
		return
	}

	c.state = model.MapStatePositioned
	focused := located[0]
	c.centerOnLocked(&focused)
	c.mu.Unlock()

	c.store.SetSelectedPOI(level, &focused)
}

// Next 次のPOIへ移動（末尾の次は先頭）
func (c *MapNavigationController) Next() (*model.POIInfo, error) {
	return c.page(1)
}

// Prev 前のPOIへ移動（先頭の前は末尾）
func (c *MapNavigationController) Prev() (*model.POIInfo, error) {
	return c.page(-1)
}

func (c *MapNavigationController) page(step int) (*model.POIInfo, error) {
	c.mu.Lock()
	located := c.locatedPOIs(c.currentLevel)
	n := len(located)
	if n == 0 {
		c.state = model.MapStateEmpty
		c.currentIndex = 0
		c.mu.Unlock()
		return nil, ErrEmptyLevel
	}
	if c.currentIndex < 0 || c.currentIndex >= n {
		c.currentIndex = 0
	}

	c.state = model.MapStatePositioned
	c.currentIndex = (c.currentIndex + step + n) % n
	focused := located[c.currentIndex]
	c.centerOnLocked(&focused)
	level := c.currentLevel
	c.mu.Unlock()

	c.store.SetSelectedPOI(level, &focused)
	return &focused, nil
}

// FitAll 現在レベルの座標付きPOI全体が収まるようにカメラを移動する
func (c *MapNavigationController) FitAll() (model.CameraPosition, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	located := c.locatedPOIs(c.currentLevel)
	if len(located) == 0 {
		return c.camera, ErrEmptyLevel
	}

	first, _ := located[0].Coordinates()
	bound := orb.Bound{Min: first.ToPoint(), Max: first.ToPoint()}
	for i := 1; i < len(located); i++ {
		loc, _ := located[i].Coordinates()
		bound = bound.Extend(loc.ToPoint())
	}

	maxDelta := math.Max(bound.Top()-bound.Bottom(), bound.Right()-bound.Left())
	c.camera = model.CameraPosition{
		Coordinates: model.LocationFromPoint(bound.Center()),
		Zoom:        FitZoom(maxDelta),
	}
	return c.camera, nil
}

// FitZoom 範囲の最大幅（度）からズームを求め、[ZoomFitMin, ZoomFitMax] に収める
// 幅が0の場合（POIが1件、または同一地点）は最大ズーム
func FitZoom(maxDelta float64) int {
	if maxDelta <= 0 || math.IsNaN(maxDelta) {
		return model.ZoomFitMax
	}
	zoom := math.Floor(14 - math.Log2(maxDelta/fitZoomReferenceDelta))
	if zoom < model.ZoomFitMin {
		return model.ZoomFitMin
	}
	if zoom > model.ZoomFitMax {
		return model.ZoomFitMax
	}
	return int(zoom)
}

// RecenterOnUser 現在地へカメラを移動する（カーソル・状態には影響しない）
func (c *MapNavigationController) RecenterOnUser() (model.CameraPosition, error) {
	loc := c.store.UserLocation()
	if loc == nil {
		return c.Camera(), ErrNoUserLocation
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.camera = model.CameraPosition{Coordinates: *loc, Zoom: model.ZoomRecenterUser}
	return c.camera, nil
}

// Markers 現在レベルのマーカー一覧
func (c *MapNavigationController) Markers() []model.Marker {
	level := c.CurrentLevel()
	return BuildMarkers(level, c.store.RecommendationsByLevel(level))
}

func (c *MapNavigationController) State() model.MapState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *MapNavigationController) CurrentLevel() model.Level {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentLevel
}

func (c *MapNavigationController) CurrentIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentIndex
}

func (c *MapNavigationController) Camera() model.CameraPosition {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.camera
}

// View 画面描画に必要な状態一式を返す
func (c *MapNavigationController) View() model.MapView {
	c.mu.Lock()
	defer c.mu.Unlock()

	pois := c.store.RecommendationsByLevel(c.currentLevel)
	located := withCoordinates(pois)

	view := model.MapView{
		State:        c.state,
		CurrentLevel: c.currentLevel,
		CurrentIndex: c.currentIndex,
		Total:        len(located),
		Camera:       c.camera,
		Markers:      BuildMarkers(c.currentLevel, pois),
	}
	for _, level := range model.AllLevels() {
		view.Levels = append(view.Levels, model.LevelSummary{
			Level:    level,
			Name:     level.Name(),
			Count:    len(c.store.RecommendationsByLevel(level)),
			Selected: level == c.currentLevel,
		})
	}
	if c.state == model.MapStatePositioned && c.currentIndex < len(located) {
		focused := located[c.currentIndex]
		view.Focused = &focused
		if user := c.store.UserLocation(); user != nil {
			if km, ok := helper.DistanceFromLocationKm(*user, &focused); ok {
				view.FocusedDistanceKm = &km
			}
		}
	} else {
		view.EmptyMessage = EmptyStateMessage(c.currentLevel)
	}
	return view
}

// EmptyStateMessage 座標付きPOIが無いレベルで表示する文言
func EmptyStateMessage(level model.Level) string {
	return fmt.Sprintf("No %s recommendations yet.\nSearch for places to see them on the map!", strings.ToLower(level.Name()))
}

func (c *MapNavigationController) centerOnLocked(poi *model.POIInfo) {
	loc, ok := poi.Coordinates()
	if !ok {
		return
	}
	c.camera = model.CameraPosition{Coordinates: loc, Zoom: model.ZoomForLevel(c.currentLevel)}
}

func (c *MapNavigationController) locatedPOIs(level model.Level) []model.POIInfo {
	return withCoordinates(c.store.RecommendationsByLevel(level))
}

// withCoordinates 座標付きのPOIだけを元の順序で返す
func withCoordinates(pois []model.POIInfo) []model.POIInfo {
	located := make([]model.POIInfo, 0, len(pois))
	for i := range pois {
		if pois[i].HasCoordinates() {
			located = append(located, pois[i])
		}
	}
	return located
}
