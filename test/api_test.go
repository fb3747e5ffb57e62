package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/2beens/calorietracker/internal/calories"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type messageResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Username string `json:"username"`
}

func (s *IntegrationTestSuite) do(ctx context.Context, method, path string, body any, dst any) int {
	t := s.T()

	var reqBody io.Reader
	if body != nil {
		bodyJson, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(bodyJson)
	}

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, reqBody)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if dst != nil {
		require.NoError(t, json.Unmarshal(respBytes, dst), string(respBytes))
	}
	return resp.StatusCode
}

func workout(username string, duration float64) map[string]any {
	return map[string]any{
		"username":   username,
		"gender":     "female",
		"age":        34,
		"height":     "166",
		"weight":     58.5,
		"duration":   duration,
		"heart_rate": 120,
		"body_temp":  40.2,
	}
}

func (s *IntegrationTestSuite) TestRegisterAndLogin() {
	t := s.T()
	ctx := context.Background()
	username := gofakeit.Username()
	creds := map[string]string{"username": username, "password": "secret"}

	var resp messageResponse
	require.Equal(t, http.StatusCreated, s.do(ctx, http.MethodPost, "/api/register", creds, &resp))
	assert.Equal(t, "Registration successful", resp.Message)

	assert.Equal(t, http.StatusBadRequest, s.do(ctx, http.MethodPost, "/api/register", creds, &resp))
	assert.Equal(t, "User already exists", resp.Message)

	require.Equal(t, http.StatusOK, s.do(ctx, http.MethodPost, "/api/login", creds, &resp))
	assert.Equal(t, username, resp.Username)

	creds["password"] = "wrong"
	assert.Equal(t, http.StatusUnauthorized, s.do(ctx, http.MethodPost, "/api/login", creds, &resp))
	creds["username"] = username + "-ghost"
	assert.Equal(t, http.StatusNotFound, s.do(ctx, http.MethodPost, "/api/login", creds, &resp))

	var count int
	require.NoError(t, s.DB.QueryRow(`SELECT COUNT(*) FROM app_user WHERE username = $1`, username).Scan(&count))
	assert.Equal(t, 1, count)
}

func (s *IntegrationTestSuite) TestPredictHistoryStatistics() {
	t := s.T()
	ctx := context.Background()
	username := gofakeit.Username()

	var predictResp calories.PredictResponse
	require.Equal(t, http.StatusOK, s.do(ctx, http.MethodPost, "/api/predict", workout(username, 20), &predictResp))
	// base 50 + tree0 (duration 20 < 25) 10 + tree1 (female) -1.5
	assert.Equal(t, 58.5, predictResp.CaloriesBurnt)
	assert.Equal(t, 1, predictResp.Prediction.ID)

	// above the threshold: f(30) = 50 + 30 - 1.5, plus 2 per extra minute
	require.Equal(t, http.StatusOK, s.do(ctx, http.MethodPost, "/api/predict", workout(username, 40), &predictResp))
	assert.Equal(t, 98.5, predictResp.CaloriesBurnt)
	assert.Equal(t, 2, predictResp.Prediction.ID)

	var historyResp calories.HistoryResponse
	require.Equal(t, http.StatusOK, s.do(ctx, http.MethodGet, "/api/history/"+username, nil, &historyResp))
	require.Len(t, historyResp.History, 2)
	assert.Equal(t, 166.0, historyResp.History[0].Height)
	assert.Equal(t, 40.0, historyResp.History[1].Duration)

	var statsResp calories.StatisticsResponse
	require.Equal(t, http.StatusOK, s.do(ctx, http.MethodGet, "/api/statistics/"+username, nil, &statsResp))
	assert.Equal(t, 2, statsResp.Statistics.TotalPredictions)
	assert.Equal(t, 157.0, statsResp.Statistics.TotalCalories)
	assert.Equal(t, 78.5, statsResp.Statistics.AvgCalories)
	assert.Equal(t, 30.0, statsResp.Statistics.AvgDuration)

	var msgResp messageResponse
	require.Equal(t, http.StatusOK, s.do(ctx, http.MethodDelete, "/api/history/"+username, nil, &msgResp))
	require.Equal(t, http.StatusOK, s.do(ctx, http.MethodGet, "/api/history/"+username, nil, &historyResp))
	assert.Empty(t, historyResp.History)
}

func (s *IntegrationTestSuite) TestPredictInvalidInputLeavesNoRecord() {
	t := s.T()
	ctx := context.Background()
	username := gofakeit.Username()

	w := workout(username, 20)
	w["gender"] = "F"
	var msgResp messageResponse
	assert.Equal(t, http.StatusBadRequest, s.do(ctx, http.MethodPost, "/api/predict", w, &msgResp))
	assert.False(t, msgResp.Success)

	var count int
	require.NoError(t, s.DB.QueryRow(`SELECT COUNT(*) FROM prediction WHERE username = $1`, username).Scan(&count))
	assert.Zero(t, count)
}

func (s *IntegrationTestSuite) TestConcurrentPredictionsGetDistinctIDs() {
	t := s.T()
	ctx := context.Background()
	username := gofakeit.Username()

	const n = 20
	var wg sync.WaitGroup
	ids := make(chan int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := s.predictID(ctx, workout(username, float64(5+i)))
			if assert.NoError(t, err) {
				ids <- id
			}
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := map[int]bool{}
	for id := range ids {
		assert.False(t, seen[id], fmt.Sprintf("duplicate id %d", id))
		seen[id] = true
	}
	assert.Len(t, seen, n)
	for id := 1; id <= n; id++ {
		assert.True(t, seen[id], "missing id %d", id)
	}
}

// predictID is safe to call from goroutines other than the test's.
func (s *IntegrationTestSuite) predictID(ctx context.Context, body map[string]any) (int, error) {
	bodyJson, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, serverEndpoint+"/api/predict", bytes.NewReader(bodyJson))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	var predictResp calories.PredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&predictResp); err != nil {
		return 0, err
	}
	return predictResp.Prediction.ID, nil
}
