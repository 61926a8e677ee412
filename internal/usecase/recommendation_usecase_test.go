package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Spatialynk-App/internal/domain/model"
	"Spatialynk-App/internal/domain/service"
)

type searchFixture struct {
	client    *fakeClient
	store     *service.RecommendationStore
	history   *fakeHistory
	snapshots *fakeSnapshots
	usecase   RecommendationUseCase
}

func newSearchFixture() *searchFixture {
	f := &searchFixture{
		client: &fakeClient{
			responses: map[string]*model.RecommendationResponse{
				"first":  responseFor("first", "f1", "f2"),
				"second": responseFor("second", "s1"),
			},
			gates: map[string]chan struct{}{},
		},
		store:     service.NewRecommendationStore(),
		history:   &fakeHistory{},
		snapshots: &fakeSnapshots{},
	}
	f.usecase = NewRecommendationUseCase(f.client, f.store, NewRoleResolver(profiles()), f.history, f.snapshots)
	return f
}

func TestSearch_成功(t *testing.T) {
	f := newSearchFixture()
	f.store.SetUserLocation(&model.DefaultLocation)

	result, err := f.usecase.Search(context.Background(), "free", "  first ")
	require.NoError(t, err)

	assert.Equal(t, "free_user", result.Role)
	assert.NotEmpty(t, result.RequestID)
	assert.Equal(t, [model.LevelCount]int{2, 0, 0, 0}, result.State.LevelCounts)
	assert.False(t, result.State.Loading)
	assert.Equal(t, "first", f.store.CurrentPrompt())

	require.Len(t, f.client.recommendCalls, 1)
	call := f.client.recommendCalls[0]
	assert.Equal(t, "first", call.Prompt)
	require.NotNil(t, call.CurrentLocation)
	assert.Equal(t, model.DefaultLocation, *call.CurrentLocation)

	require.Len(t, f.client.registerCalls, 1)
	assert.Equal(t, []string{"cafe"}, f.client.registerCalls[0].Interests)
	require.Len(t, f.history.created, 1)
	assert.Equal(t, "first", f.history.created[0].SearchQuery)
	require.Len(t, f.snapshots.saved, 1)
}

func TestSearch_ユーザー登録は一度だけ(t *testing.T) {
	f := newSearchFixture()
	ctx := context.Background()

	_, err := f.usecase.Search(ctx, "free", "first")
	require.NoError(t, err)
	_, err = f.usecase.Search(ctx, "free", "second")
	require.NoError(t, err)

	assert.Len(t, f.client.registerCalls, 1)
}

func TestSearch_権限(t *testing.T) {
	f := newSearchFixture()
	ctx := context.Background()

	for _, userID := range []string{"", "business", "admin", "inactive"} {
		_, err := f.usecase.Search(ctx, userID, "first")
		assert.ErrorIs(t, err, ErrPermissionDenied, userID)
	}
	_, err := f.usecase.Search(ctx, "free", "   ")
	assert.ErrorIs(t, err, ErrEmptyPrompt)
	assert.Empty(t, f.client.recommendCalls)
}

func TestSearch_失敗時は既存の結果を残す(t *testing.T) {
	f := newSearchFixture()
	ctx := context.Background()
	_, err := f.usecase.Search(ctx, "free", "first")
	require.NoError(t, err)

	f.client.err = &model.RequestError{Operation: "fetch recommendations", StatusCode: 500}
	_, err = f.usecase.Search(ctx, "free", "second")

	var reqErr *model.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, 2, f.store.TotalRecommendationsCount())
	assert.Equal(t, "Failed to fetch recommendations with status: 500", f.store.Error())
	assert.False(t, f.store.Loading())
	assert.Len(t, f.history.created, 1)
}

func TestSearch_副作用の失敗は無視する(t *testing.T) {
	f := newSearchFixture()
	f.client.regErr = errors.New("register down")
	f.history.err = errors.New("history down")
	f.snapshots.err = errors.New("firestore down")

	result, err := f.usecase.Search(context.Background(), "free", "first")

	require.NoError(t, err)
	assert.Equal(t, 2, result.State.TotalCount)
}

func TestSearch_古いレスポンスは破棄される(t *testing.T) {
	f := newSearchFixture()
	gate := make(chan struct{})
	f.client.gates["first"] = gate
	ctx := context.Background()

	var (
		wg       sync.WaitGroup
		firstErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = f.usecase.Search(ctx, "free", "first")
	}()

	// 1件目がリクエスト番号を取得するまで待つ
	require.Eventually(t, func() bool { return f.store.LatestSequence() == 1 }, time.Second, time.Millisecond)

	_, err := f.usecase.Search(ctx, "free", "second")
	require.NoError(t, err)

	close(gate)
	wg.Wait()

	assert.ErrorIs(t, firstErr, service.ErrStaleResponse)
	assert.Equal(t, "second", f.store.CurrentPrompt())
	pois := f.store.RecommendationsByLevel(model.LevelPlace)
	require.Len(t, pois, 1)
	assert.Equal(t, "s1", pois[0].POIID)
	assert.Len(t, f.history.created, 1)
}

func TestRestoreLatest(t *testing.T) {
	f := newSearchFixture()
	ctx := context.Background()

	restored, err := f.usecase.RestoreLatest(ctx, "free")
	require.NoError(t, err)
	assert.False(t, restored)

	f.snapshots.latest = &model.RecommendationSnapshot{SnapshotID: "snap_1", UserID: "free", Response: *responseFor("saved", "r1")}
	restored, err = f.usecase.RestoreLatest(ctx, "free")
	require.NoError(t, err)
	assert.True(t, restored)
	assert.Equal(t, "saved", f.store.CurrentPrompt())
	assert.Equal(t, 1, f.store.TotalRecommendationsCount())
}

func TestRecentHistory(t *testing.T) {
	f := newSearchFixture()
	ctx := context.Background()
	_, err := f.usecase.Search(ctx, "free", "first")
	require.NoError(t, err)
	_, err = f.usecase.Search(ctx, "free", "second")
	require.NoError(t, err)

	histories, err := f.usecase.RecentHistory(ctx, "free", 0)
	require.NoError(t, err)
	require.Len(t, histories, 2)
	assert.Equal(t, "second", histories[0].SearchQuery)

	_, err = f.usecase.RecentHistory(ctx, "", 10)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestReasonFlags(t *testing.T) {
	f := newSearchFixture()

	flags, err := f.usecase.ReasonFlags(context.Background(), "free", "a", model.LevelPlace)
	require.NoError(t, err)
	assert.Equal(t, []string{"near_you"}, flags.ActiveFlags)

	_, err = f.usecase.ReasonFlags(context.Background(), "", "a", model.LevelPlace)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}
