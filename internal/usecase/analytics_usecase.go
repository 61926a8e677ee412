package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"Spatialynk-App/internal/domain/model"
	"Spatialynk-App/internal/domain/repository"
)

const (
	analyticsSampleSize = 100
	analyticsTopN       = 5
)

type AnalyticsUseCase interface {
	// GetPlatformAnalytics 管理者向けの集計を返す
	GetPlatformAnalytics(ctx context.Context, userID string) (*model.PlatformAnalytics, error)
}

type analyticsUseCaseImpl struct {
	repo  repository.AnalyticsRepository
	roles *RoleResolver
}

// NewAnalyticsUseCase repo は nil 可（その場合 ErrAnalyticsUnavailable）
func NewAnalyticsUseCase(repo repository.AnalyticsRepository, roles *RoleResolver) AnalyticsUseCase {
	return &analyticsUseCaseImpl{repo: repo, roles: roles}
}

func (u *analyticsUseCaseImpl) GetPlatformAnalytics(ctx context.Context, userID string) (*model.PlatformAnalytics, error) {
	role, _ := u.roles.Resolve(ctx, userID)
	if !role.CanViewAnalytics() {
		return nil, fmt.Errorf("%w: role=%s", ErrPermissionDenied, role)
	}
	if u.repo == nil {
		return nil, ErrAnalyticsUnavailable
	}

	users, err := u.repo.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	pois, err := u.repo.CountPOIsByStatus(ctx, model.POIStatusActive)
	if err != nil {
		return nil, err
	}
	queries, err := u.repo.GetRecentSearchQueries(ctx, analyticsSampleSize)
	if err != nil {
		return nil, err
	}
	popular, err := u.repo.GetPopularPOIs(ctx, analyticsTopN)
	if err != nil {
		return nil, err
	}
	if popular == nil {
		popular = []model.PopularPOI{}
	}

	return &model.PlatformAnalytics{
		TotalUsers:  users,
		TotalPOIs:   pois,
		TopSearches: TopSearchTerms(queries, analyticsTopN),
		PopularPOIs: popular,
	}, nil
}

// TopSearchTerms 大文字小文字を区別せずに検索語を数え、多い順に n 件返す（同数は語の昇順）
func TopSearchTerms(queries []string, n int) []model.SearchTermCount {
	counts := make(map[string]int)
	for _, q := range queries {
		term := strings.ToLower(strings.TrimSpace(q))
		if term == "" {
			continue
		}
		counts[term]++
	}

	terms := make([]model.SearchTermCount, 0, len(counts))
	for term, count := range counts {
		terms = append(terms, model.SearchTermCount{Term: term, Count: count})
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Count != terms[j].Count {
			return terms[i].Count > terms[j].Count
		}
		return terms[i].Term < terms[j].Term
	})
	if len(terms) > n {
		terms = terms[:n]
	}
	return terms
}
