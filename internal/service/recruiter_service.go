package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/skillproof/skillproof-api/internal/dto"
	"github.com/skillproof/skillproof-api/internal/repository"
)

// RecruiterService answers recruiter queries over the verified skill ledger.
type RecruiterService interface {
	SearchStudents(ctx context.Context, query dto.StudentSearchRequest) ([]dto.StudentSearchResult, error)
}

type recruiterService struct {
	users    repository.UserRepository
	cache    *redis.Client
	cacheTTL time.Duration
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewRecruiterService builds the recruiter search service. The cache client
// may be nil, in which case every query hits the database.
func NewRecruiterService(userRepo repository.UserRepository, cache *redis.Client, ttl time.Duration, validate *validator.Validate, logger zerolog.Logger) RecruiterService {
	return &recruiterService{
		users:    userRepo,
		cache:    cache,
		cacheTTL: ttl,
		validate: validate,
		logger:   logger.With().Str("component", "recruiter_service").Logger(),
	}
}

func (s *recruiterService) SearchStudents(ctx context.Context, query dto.StudentSearchRequest) ([]dto.StudentSearchResult, error) {
	if err := s.validate.Struct(query); err != nil {
		return nil, err
	}

	skill := strings.ToLower(strings.TrimSpace(query.Skill))
	// The threshold must round-trip exactly: rounding it here would serve one
	// query's cached results to a different query.
	cacheKey := fmt.Sprintf("recruiter:search:%s:%s", skill, strconv.FormatFloat(query.MinScore, 'f', -1, 64))

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var results []dto.StudentSearchResult
			if unmarshalErr := json.Unmarshal([]byte(cached), &results); unmarshalErr == nil {
				s.logger.Debug().Str("skill", skill).Msg("search cache hit")
				return results, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read search cache")
		}
	}

	users, err := s.users.SearchStudentsBySkill(ctx, skill, query.MinScore)
	if err != nil {
		return nil, err
	}

	results := dto.NewStudentSearchResultSlice(users)

	if s.cache != nil {
		if payload, err := json.Marshal(results); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store search cache")
			}
		}
	}

	return results, nil
}
