package usecase_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"freelance-marketplace-backend/internal/domain"
	"freelance-marketplace-backend/internal/geo"
	"freelance-marketplace-backend/internal/usecase"
	"freelance-marketplace-backend/pkg/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock Repositories
type MockProfileRepo struct {
	mock.Mock
}

func (m *MockProfileRepo) ListAll(ctx context.Context) ([]domain.CandidateProfile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CandidateProfile), args.Error(1)
}

type MockCityRepo struct {
	mock.Mock
}

func (m *MockCityRepo) ListAll(ctx context.Context) ([]domain.CityRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CityRecord), args.Error(1)
}

func (m *MockCityRepo) UpdateCoords(ctx context.Context, id int64, lat, lng float64) error {
	return m.Called(ctx, id, lat, lng).Error(0)
}

type MockClientRequestRepo struct {
	mock.Mock
}

func (m *MockClientRequestRepo) GetByID(ctx context.Context, id int64) (*domain.ClientRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClientRequest), args.Error(1)
}

// noProvider fails the test if the pipeline ever reaches the external
// geocoder.
type noProvider struct{ t *testing.T }

func (p noProvider) Geocode(context.Context, string, string) (*geo.Coordinates, error) {
	p.t.Error("unexpected external geocoding call")
	return nil, nil
}

func newResolver(t *testing.T) *geo.Resolver {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return geo.NewResolver(noProvider{t}, geo.NewCache(nil), new(MockCityRepo), logger, 3)
}

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }
func i64p(v int64) *int64   { return &v }

func parisTable() []domain.CityRecord {
	return []domain.CityRecord{
		{ID: 1, Name: "Paris", CountryCode: "FR", Lat: fp(48.8566), Lng: fp(2.3522)},
		{ID: 2, Name: "Lyon", CountryCode: "FR", Lat: fp(45.7640), Lng: fp(4.8357)},
	}
}

func goExpertCriteria() domain.RequestCriteria {
	return domain.RequestCriteria{
		Kind:   domain.KindMission,
		CityID: i64p(1),
		Remote: false,
		TJMMin: fp(400),
		TJMMax: fp(600),
		Skills: []domain.SkillRequirement{
			{Name: "Go", Level: domain.LevelExpert, Weight: 5},
		},
	}
}

func newUsecase(profiles []domain.CandidateProfile, cities []domain.CityRecord, t *testing.T, limit int) domain.ShortlistUsecase {
	profileRepo := new(MockProfileRepo)
	profileRepo.On("ListAll", mock.Anything).Return(profiles, nil)
	cityRepo := new(MockCityRepo)
	cityRepo.On("ListAll", mock.Anything).Return(cities, nil)
	return usecase.NewShortlistUsecase(profileRepo, cityRepo, new(MockClientRequestRepo), newResolver(t), validator.New(), limit)
}

func TestComputePerfectCandidate(t *testing.T) {
	candidate := domain.CandidateProfile{
		UserID:           uuid.New(),
		City:             "Paris",
		Country:          "FR",
		SmallDayRate:     fp(450),
		HighDayRate:      fp(550),
		DeclaredServices: []domain.SkillEvidence{{Name: "Go", Level: "expert"}},
	}
	uc := newUsecase([]domain.CandidateProfile{candidate}, parisTable(), t, 10)

	result, err := uc.Compute(context.Background(), goExpertCriteria(), domain.DefaultWeights())
	require.NoError(t, err)
	require.Len(t, result, 1)

	top := result[0]
	assert.Equal(t, candidate.UserID, top.UserID)
	assert.Equal(t, 100, top.Score)
	assert.Equal(t, 100, top.Details.Skills)
	assert.Equal(t, 100, top.Details.TJM)
	assert.Equal(t, 100, top.Details.Telework)
	assert.Equal(t, 100, top.Details.Availability)
	assert.Equal(t, "available now", top.Details.AvailabilityText)
	require.Len(t, top.Details.SkillBreakdown, 1)
	assert.Equal(t, 100, top.Details.SkillBreakdown[0].Match)
}

func TestComputeFiltersZeroSkillCandidates(t *testing.T) {
	match := domain.CandidateProfile{
		UserID:           uuid.New(),
		DeclaredServices: []domain.SkillEvidence{{Name: "Go", Level: "junior"}},
	}
	noEvidence := domain.CandidateProfile{
		UserID:       uuid.New(),
		SmallDayRate: fp(500),
	}
	uc := newUsecase([]domain.CandidateProfile{noEvidence, match}, nil, t, 10)

	criteria := domain.RequestCriteria{
		Remote: true,
		Skills: []domain.SkillRequirement{{Name: "Go", Level: domain.LevelExpert, Weight: 5}},
	}
	result, err := uc.Compute(context.Background(), criteria, domain.DefaultWeights())
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, match.UserID, result[0].UserID)
}

func TestComputeCapsAtLimit(t *testing.T) {
	profiles := make([]domain.CandidateProfile, 14)
	for i := range profiles {
		profiles[i] = domain.CandidateProfile{
			UserID:           uuid.New(),
			DeclaredServices: []domain.SkillEvidence{{Name: "Go", Level: "expert"}},
		}
	}
	uc := newUsecase(profiles, nil, t, 10)

	criteria := domain.RequestCriteria{
		Remote: true,
		Skills: []domain.SkillRequirement{{Name: "Go", Level: domain.LevelExpert, Weight: 5}},
	}
	result, err := uc.Compute(context.Background(), criteria, domain.DefaultWeights())
	require.NoError(t, err)
	assert.Len(t, result, 10)
}

func TestComputeWeightPrioritySort(t *testing.T) {
	// Better skills but worse rate fit vs. the reverse. With skills carrying
	// the dominant weight, the stronger skill match must rank first even
	// though the other candidate's aggregate could compete.
	strongSkills := domain.CandidateProfile{
		UserID:           uuid.New(),
		SmallDayRate:     fp(900),
		HighDayRate:      fp(950),
		DeclaredServices: []domain.SkillEvidence{{Name: "Go", Level: "expert"}},
	}
	strongRate := domain.CandidateProfile{
		UserID:           uuid.New(),
		SmallDayRate:     fp(450),
		HighDayRate:      fp(550),
		DeclaredServices: []domain.SkillEvidence{{Name: "Go", Level: "junior"}},
	}
	uc := newUsecase([]domain.CandidateProfile{strongRate, strongSkills}, nil, t, 10)

	criteria := domain.RequestCriteria{
		Remote: true,
		TJMMin: fp(400),
		TJMMax: fp(600),
		Skills: []domain.SkillRequirement{{Name: "Go", Level: domain.LevelExpert, Weight: 5}},
	}
	weights := domain.Weights{Skills: 5, TJM: 1, Telework: 1, Availability: 1}

	result, err := uc.Compute(context.Background(), criteria, weights)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, strongSkills.UserID, result[0].UserID)
	assert.Equal(t, strongRate.UserID, result[1].UserID)
}

func TestComputeZeroWeightAxisIgnoredInSort(t *testing.T) {
	cheap := domain.CandidateProfile{
		UserID:           uuid.New(),
		SmallDayRate:     fp(450),
		HighDayRate:      fp(550),
		DeclaredServices: []domain.SkillEvidence{{Name: "Go", Level: "junior"}},
	}
	skilled := domain.CandidateProfile{
		UserID:           uuid.New(),
		SmallDayRate:     fp(900),
		HighDayRate:      fp(950),
		DeclaredServices: []domain.SkillEvidence{{Name: "Go", Level: "expert"}},
	}
	uc := newUsecase([]domain.CandidateProfile{cheap, skilled}, nil, t, 10)

	criteria := domain.RequestCriteria{
		Remote: true,
		TJMMin: fp(400),
		TJMMax: fp(600),
		Skills: []domain.SkillRequirement{{Name: "Go", Level: domain.LevelExpert, Weight: 5}},
	}
	weights := domain.Weights{Skills: 1, TJM: 0, Telework: 0, Availability: 0}

	result, err := uc.Compute(context.Background(), criteria, weights)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, skilled.UserID, result[0].UserID)
}

func TestComputeExpertiseZeroesRateAndTelework(t *testing.T) {
	// Rate far outside the budget and no telework data: neither may count
	// against an expertise request, even when the caller supplies weights.
	candidate := domain.CandidateProfile{
		UserID:           uuid.New(),
		SmallDayRate:     fp(5000),
		HighDayRate:      fp(6000),
		DeclaredServices: []domain.SkillEvidence{{Name: "Go", Level: "expert"}},
	}
	uc := newUsecase([]domain.CandidateProfile{candidate}, nil, t, 10)

	criteria := domain.RequestCriteria{
		Kind:   domain.KindExpertise,
		Remote: true,
		TJMMin: fp(400),
		TJMMax: fp(600),
		Skills: []domain.SkillRequirement{{Name: "Go", Level: domain.LevelExpert, Weight: 5}},
	}
	result, err := uc.Compute(context.Background(), criteria, domain.DefaultWeights())
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, 100, result[0].Score)
}

func TestComputeAllWeightsZero(t *testing.T) {
	candidate := domain.CandidateProfile{
		UserID:           uuid.New(),
		DeclaredServices: []domain.SkillEvidence{{Name: "Go", Level: "expert"}},
	}
	uc := newUsecase([]domain.CandidateProfile{candidate}, nil, t, 10)

	criteria := domain.RequestCriteria{
		Remote: true,
		Skills: []domain.SkillRequirement{{Name: "Go", Level: domain.LevelExpert, Weight: 5}},
	}
	result, err := uc.Compute(context.Background(), criteria, domain.Weights{})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, 0, result[0].Score)
}

func TestComputeEmptyCriteriaRejected(t *testing.T) {
	uc := newUsecase(nil, nil, t, 10)

	_, err := uc.Compute(context.Background(), domain.RequestCriteria{Remote: true}, domain.DefaultWeights())
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Code)
}

func TestComputeNegativeWeightRejected(t *testing.T) {
	uc := newUsecase(nil, nil, t, 10)

	criteria := domain.RequestCriteria{
		Remote: true,
		Skills: []domain.SkillRequirement{{Name: "Go", Level: domain.LevelExpert, Weight: 5}},
	}
	_, err := uc.Compute(context.Background(), criteria, domain.Weights{Skills: -1})
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Code)
}

func TestComputeRepoFailure(t *testing.T) {
	profileRepo := new(MockProfileRepo)
	profileRepo.On("ListAll", mock.Anything).Return(nil, errors.New("db down"))
	cityRepo := new(MockCityRepo)
	cityRepo.On("ListAll", mock.Anything).Return([]domain.CityRecord{}, nil)
	uc := usecase.NewShortlistUsecase(profileRepo, cityRepo, new(MockClientRequestRepo), newResolver(t), validator.New(), 10)

	_, err := uc.Compute(context.Background(), goExpertCriteria(), domain.DefaultWeights())
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 500, appErr.Code)
}

func TestComputeFromClientRequest(t *testing.T) {
	requestRepo := new(MockClientRequestRepo)
	profileRepo := new(MockProfileRepo)
	cityRepo := new(MockCityRepo)
	uc := usecase.NewShortlistUsecase(profileRepo, cityRepo, requestRepo, newResolver(t), validator.New(), 10)

	t.Run("Should return 404 when the request does not exist", func(t *testing.T) {
		requestRepo.On("GetByID", mock.Anything, int64(99)).Return(nil, nil).Once()
		_, err := uc.ComputeFromClientRequest(context.Background(), 99)
		require.Error(t, err)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, 404, appErr.Code)
	})

	t.Run("Should zero rate and telework weights for expertise requests", func(t *testing.T) {
		candidate := domain.CandidateProfile{
			UserID: uuid.New(),
			// Rate far outside the budget: with EXPERTISE semantics it must
			// not matter.
			SmallDayRate:     fp(5000),
			HighDayRate:      fp(6000),
			DeclaredServices: []domain.SkillEvidence{{Name: "Go", Level: "expert"}},
		}
		requestRepo.On("GetByID", mock.Anything, int64(1)).Return(&domain.ClientRequest{
			ID:           1,
			Kind:         domain.KindExpertise,
			LocationMode: "REMOTE",
			TJMMin:       fp(400),
			TJMMax:       fp(600),
			Technologies: []domain.RequestTechnology{
				{Name: "Go", Level: "expert", Weight: 5},
			},
		}, nil).Once()
		profileRepo.On("ListAll", mock.Anything).Return([]domain.CandidateProfile{candidate}, nil).Once()
		cityRepo.On("ListAll", mock.Anything).Return([]domain.CityRecord{}, nil).Once()

		result, err := uc.ComputeFromClientRequest(context.Background(), 1)
		require.NoError(t, err)
		require.Len(t, result, 1)
		// skills=1.0 w5, availability=1.0 w2; rate and telework carry no
		// weight so the aggregate stays at 100.
		assert.Equal(t, 100, result[0].Score)
	})

	t.Run("Should apply stored weights and parse technology levels", func(t *testing.T) {
		candidate := domain.CandidateProfile{
			UserID:           uuid.New(),
			DeclaredServices: []domain.SkillEvidence{{Name: "Go", Level: "senior"}},
		}
		requestRepo.On("GetByID", mock.Anything, int64(2)).Return(&domain.ClientRequest{
			ID:           2,
			Kind:         domain.KindMission,
			LocationMode: "REMOTE",
			Technologies: []domain.RequestTechnology{
				{Name: "Go", Level: "senior", Weight: 3},
			},
			SkillsWeight:       fp(10),
			TJMWeight:          fp(0),
			TeleworkWeight:     fp(0),
			AvailabilityWeight: fp(0),
		}, nil).Once()
		profileRepo.On("ListAll", mock.Anything).Return([]domain.CandidateProfile{candidate}, nil).Once()
		cityRepo.On("ListAll", mock.Anything).Return([]domain.CityRecord{}, nil).Once()

		result, err := uc.ComputeFromClientRequest(context.Background(), 2)
		require.NoError(t, err)
		require.Len(t, result, 1)
		assert.Equal(t, 100, result[0].Score)
		require.Len(t, result[0].Details.SkillBreakdown, 1)
		assert.Equal(t, domain.LevelSenior, result[0].Details.SkillBreakdown[0].Requested)
	})
}
