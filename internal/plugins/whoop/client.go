package whoop

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/alcove-dev/alcove/internal/core/domain"
	"github.com/alcove-dev/alcove/internal/plugins"
)

// DefaultBaseURL is the WHOOP developer API endpoint.
const DefaultBaseURL = "https://api.prod.whoop.com"

// collectionPageSize is the per-page record limit for collection endpoints.
const collectionPageSize = 25

// profile is the authenticated user's basic profile.
type profile struct {
	UserID    int64  `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// recoveryRecord is one daily recovery measurement.
type recoveryRecord struct {
	CycleID   int64     `json:"cycle_id"`
	CreatedAt time.Time `json:"created_at"`
	Score     struct {
		RecoveryScore    float64 `json:"recovery_score"`
		RestingHeartRate float64 `json:"resting_heart_rate"`
		HRVMilli         float64 `json:"hrv_rmssd_milli"`
		SkinTempCelsius  float64 `json:"skin_temp_celsius"`
		SpO2Percentage   float64 `json:"spo2_percentage"`
	} `json:"score"`
}

// sleepRecord is one sleep activity.
type sleepRecord struct {
	ID        string    `json:"id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	CreatedAt time.Time `json:"created_at"`
	Score     struct {
		SleepEfficiencyPercentage float64 `json:"sleep_efficiency_percentage"`
		StageSummary              struct {
			TotalInBedMilli         float64 `json:"total_in_bed_milli"`
			TotalAwakeMilli         float64 `json:"total_awake_milli"`
			TotalLightSleepMilli    float64 `json:"total_light_sleep_milli"`
			TotalSlowWaveSleepMilli float64 `json:"total_slow_wave_sleep_milli"`
			TotalREMSleepMilli      float64 `json:"total_rem_sleep_milli"`
			TotalSleepMilli         float64 `json:"total_sleep_milli"`
			TotalSleepNeedScore     float64 `json:"total_sleep_need_score"`
		} `json:"stage_summary"`
	} `json:"score"`
}

// workoutRecord is one workout activity.
type workoutRecord struct {
	ID      int64     `json:"id"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	SportID int64     `json:"sport_id"`
	Score   struct {
		Strain           float64 `json:"strain"`
		AverageHeartRate float64 `json:"average_heart_rate"`
		MaxHeartRate     float64 `json:"max_heart_rate"`
		Kilojoule        float64 `json:"kilojoule"`
	} `json:"score"`
}

// collectionPage is the shared paginated collection envelope.
type collectionPage[T any] struct {
	Records   []T    `json:"records"`
	NextToken string `json:"next_token"`
}

// client talks to the WHOOP developer API with bearer authentication
// and request pacing.
type client struct {
	http    *http.Client
	baseURL string
	auth    plugins.Authenticator
	limiter *plugins.RateLimiter
}

func newClient(auth plugins.Authenticator, baseURL string) *client {
	return &client{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
		auth:    auth,
		limiter: plugins.NewRateLimiter(plugins.WhoopRateLimit),
	}
}

// get performs one authenticated request and decodes the JSON response.
func (c *client) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	token, err := c.auth.Token(ctx, "whoop")
	if err != nil {
		return err
	}

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: whoop request: %w", domain.ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
			c.limiter.RecordRateLimitError(retryAfter)
		}
		return plugins.ClassifyStatus(resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// profile fetches the authenticated user's basic profile.
func (c *client) profile(ctx context.Context) (*profile, error) {
	var p profile
	if err := c.get(ctx, "/developer/v1/user/profile/basic", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// collect pages through one collection endpoint over the given window.
func collect[T any](ctx context.Context, c *client, path string, start, end time.Time) ([]T, error) {
	var records []T
	nextToken := ""
	for {
		params := url.Values{}
		params.Set("start", start.UTC().Format(time.RFC3339))
		params.Set("end", end.UTC().Format(time.RFC3339))
		params.Set("limit", strconv.Itoa(collectionPageSize))
		if nextToken != "" {
			params.Set("nextToken", nextToken)
		}

		var page collectionPage[T]
		if err := c.get(ctx, path, params, &page); err != nil {
			return nil, err
		}
		records = append(records, page.Records...)

		if page.NextToken == "" {
			return records, nil
		}
		nextToken = page.NextToken
	}
}
