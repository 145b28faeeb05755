package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Randysweatpants/GambleBotAPI/internal/config"
	"github.com/Randysweatpants/GambleBotAPI/internal/models"
)

// MockProvider is a testify mock for the odds provider.
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) FetchOdds(ctx context.Context, sport string) ([]models.Event, error) {
	args := m.Called(ctx, sport)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Event), args.Error(1)
}

func (m *MockProvider) Close() error {
	return nil
}

func testEngineConfig() *config.Config {
	return &config.Config{
		Engine: config.EngineConfig{
			Bankroll:         1000,
			CorrelationDecay: 0.90,
			KellyCap:         0.15,
			KellyFraction:    0.5,
			OverroundMin:     0.98,
			OverroundMax:     1.10,
			MaxPoolSize:      150,
			DefaultMinEV:     0.02,
			DefaultMaxLegs:   3,
			DefaultTopN:      5,
			WindowMinutes:    240,
		},
	}
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// coinflipEvent builds an event with a single h2h market priced at +104 both
// sides, which devigs to a 2% edge per side.
func coinflipEvent(id string, commence time.Time) models.Event {
	return models.Event{
		ID:           id,
		SportKey:     "basketball_nba",
		CommenceTime: commence,
		HomeTeam:     "Home " + id,
		AwayTeam:     "Away " + id,
		Bookmakers: []models.Bookmaker{
			{
				Key:   "draftkings",
				Title: "DraftKings",
				Markets: []models.Market{
					{
						Key: models.MarketMoneyline,
						Outcomes: []models.Outcome{
							{Name: "Home " + id, Price: 104},
							{Name: "Away " + id, Price: 104},
						},
					},
				},
			},
		},
	}
}

func TestScanEndToEnd(t *testing.T) {
	soon := time.Now().Add(1 * time.Hour)
	events := []models.Event{
		coinflipEvent("e1", soon),
		coinflipEvent("e2", soon),
		coinflipEvent("e3", time.Now().Add(10*time.Hour)), // outside window
	}

	provider := &MockProvider{}
	provider.On("FetchOdds", mock.Anything, "basketball_nba").Return(events, nil)

	svc := NewScanService(provider, testEngineConfig(), quietLogger(), nil)

	result, err := svc.Scan(context.Background(), ScanRequest{Sport: "basketball_nba"})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, 2, result.Events, "event outside window should be excluded")
	assert.Equal(t, 4, result.PoolSize)
	require.NotEmpty(t, result.Parlays)

	for _, p := range result.Parlays {
		assert.GreaterOrEqual(t, p.Valuation.ExpectedValue, 0.02)
	}

	require.Len(t, result.Formatted, len(result.Parlays))
	assert.Contains(t, result.Summary, "BASKETBALL_NBA")

	provider.AssertExpectations(t)
}

func TestScanHonorsTopN(t *testing.T) {
	soon := time.Now().Add(1 * time.Hour)
	events := []models.Event{
		coinflipEvent("e1", soon),
		coinflipEvent("e2", soon),
		coinflipEvent("e3", soon),
	}

	provider := &MockProvider{}
	provider.On("FetchOdds", mock.Anything, "basketball_nba").Return(events, nil)

	svc := NewScanService(provider, testEngineConfig(), quietLogger(), nil)

	result, err := svc.Scan(context.Background(), ScanRequest{
		Sport: "basketball_nba",
		TopN:  1,
	})
	require.NoError(t, err)
	assert.Len(t, result.Parlays, 1)
}

func TestScanRequiresSport(t *testing.T) {
	svc := NewScanService(&MockProvider{}, testEngineConfig(), quietLogger(), nil)

	_, err := svc.Scan(context.Background(), ScanRequest{})
	assert.Error(t, err)
}

func TestScanPropagatesProviderError(t *testing.T) {
	provider := &MockProvider{}
	provider.On("FetchOdds", mock.Anything, "icehockey_nhl").
		Return(nil, errors.New("upstream down"))

	svc := NewScanService(provider, testEngineConfig(), quietLogger(), nil)

	_, err := svc.Scan(context.Background(), ScanRequest{Sport: "icehockey_nhl"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream down")
}

func TestScanRestrictsBooks(t *testing.T) {
	soon := time.Now().Add(1 * time.Hour)
	dk := coinflipEvent("e1", soon)
	fd := coinflipEvent("e2", soon)
	fd.Bookmakers[0].Key = "fanduel"

	provider := &MockProvider{}
	provider.On("FetchOdds", mock.Anything, "basketball_nba").
		Return([]models.Event{dk, fd}, nil)

	svc := NewScanService(provider, testEngineConfig(), quietLogger(), nil)

	result, err := svc.Scan(context.Background(), ScanRequest{
		Sport: "basketball_nba",
		Books: []string{"fanduel"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Events)
	assert.Equal(t, 2, result.PoolSize)
}

// captureBroadcaster records scan results pushed through the broadcaster.
type captureBroadcaster struct {
	results []*ScanResult
}

func (c *captureBroadcaster) BroadcastScan(result *ScanResult) {
	c.results = append(c.results, result)
}

func TestScanNotifiesBroadcaster(t *testing.T) {
	soon := time.Now().Add(1 * time.Hour)
	provider := &MockProvider{}
	provider.On("FetchOdds", mock.Anything, "basketball_nba").
		Return([]models.Event{coinflipEvent("e1", soon), coinflipEvent("e2", soon)}, nil)

	svc := NewScanService(provider, testEngineConfig(), quietLogger(), nil)
	broadcaster := &captureBroadcaster{}
	svc.SetBroadcaster(broadcaster)

	result, err := svc.Scan(context.Background(), ScanRequest{Sport: "basketball_nba"})
	require.NoError(t, err)

	require.Len(t, broadcaster.results, 1, "every completed scan must be pushed")
	assert.Equal(t, result, broadcaster.results[0])
}

func TestScanFailureSkipsBroadcast(t *testing.T) {
	provider := &MockProvider{}
	provider.On("FetchOdds", mock.Anything, "basketball_nba").
		Return(nil, errors.New("upstream down"))

	svc := NewScanService(provider, testEngineConfig(), quietLogger(), nil)
	broadcaster := &captureBroadcaster{}
	svc.SetBroadcaster(broadcaster)

	_, err := svc.Scan(context.Background(), ScanRequest{Sport: "basketball_nba"})
	require.Error(t, err)
	assert.Empty(t, broadcaster.results)
}

// narrowEdgeEvent prices both sides at +101, which devigs to a two-leg
// cross-event EV of about 0.0100: above zero but below the 0.02 default.
func narrowEdgeEvent(id string, commence time.Time) models.Event {
	e := coinflipEvent(id, commence)
	for i := range e.Bookmakers[0].Markets[0].Outcomes {
		e.Bookmakers[0].Markets[0].Outcomes[i].Price = 101
	}
	return e
}

func TestScanZeroMinEVIsHonored(t *testing.T) {
	soon := time.Now().Add(1 * time.Hour)
	events := []models.Event{
		narrowEdgeEvent("e1", soon),
		narrowEdgeEvent("e2", soon),
	}

	provider := &MockProvider{}
	provider.On("FetchOdds", mock.Anything, "basketball_nba").Return(events, nil)

	svc := NewScanService(provider, testEngineConfig(), quietLogger(), nil)

	// Default threshold (0.02) excludes the thin edges.
	result, err := svc.Scan(context.Background(), ScanRequest{Sport: "basketball_nba"})
	require.NoError(t, err)
	assert.Empty(t, result.Parlays)

	// An explicit 0.0 threshold keeps them.
	zero := 0.0
	result, err = svc.Scan(context.Background(), ScanRequest{
		Sport: "basketball_nba",
		MinEV: &zero,
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Parlays)
	for _, p := range result.Parlays {
		assert.GreaterOrEqual(t, p.Valuation.ExpectedValue, 0.0)
		assert.Less(t, p.Valuation.ExpectedValue, 0.02)
	}
}

func TestFilterUpcoming(t *testing.T) {
	now := time.Now()
	events := []models.Event{
		{ID: "past", CommenceTime: now.Add(-time.Hour)},
		{ID: "soon", CommenceTime: now.Add(time.Hour)},
		{ID: "far", CommenceTime: now.Add(48 * time.Hour)},
	}

	kept := FilterUpcoming(events, now, 4*time.Hour)
	require.Len(t, kept, 1)
	assert.Equal(t, "soon", kept[0].ID)
}
