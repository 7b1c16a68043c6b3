// services/optimizer_client.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"team-pairing-system/matchup"
	"team-pairing-system/pairing"
	"team-pairing-system/utils"

	"github.com/google/uuid"
)

// ErrOptimizerDisabled is returned when no OPTIMIZER_URL is configured.
var ErrOptimizerDisabled = errors.New("optimizer is not configured")

// OptimizerClient calls the external pairing optimizer.
type OptimizerClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

// OptimizeRequest is the context the optimizer searches over.
type OptimizeRequest struct {
	GameID  int               `json:"game_id"`
	Players []OptimizerPlayer `json:"players"`
	Armies  []pairing.Army    `json:"armies"`
	Matrix  map[string]string `json:"matrix"`
}

type OptimizerPlayer struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// SolutionSlot is one game of a candidate solution.
type SolutionSlot struct {
	GameNo     int           `json:"game_no"`
	PlayerID   *int          `json:"player_id,omitempty"`
	PlayerName string        `json:"player_name"`
	ArmyIndex  *int          `json:"army_index,omitempty"`
	Faction    string        `json:"faction"`
	State      matchup.State `json:"state"`
	Expected   *float64      `json:"expected"`
}

// Solution is a ranked full assignment.
type Solution struct {
	TotalExpected float64        `json:"total_expected"`
	Slots         []SolutionSlot `json:"slots"`
}

func NewOptimizerClient(baseURL, token string, timeout time.Duration) *OptimizerClient {
	return &OptimizerClient{
		BaseURL: baseURL,
		Token:   token,
		Client:  utils.NewHTTPClient(timeout),
	}
}

// Enabled reports whether a base URL is configured.
func (c *OptimizerClient) Enabled() bool {
	return c != nil && c.BaseURL != ""
}

// Optimize asks for ranked solutions for one game.
func (c *OptimizerClient) Optimize(ctx context.Context, req OptimizeRequest) ([]Solution, error) {
	if !c.Enabled() {
		return nil, ErrOptimizerDisabled
	}
	endpoint, err := url.JoinPath(c.BaseURL, "games", strconv.Itoa(req.GameID), "optimize")
	if err != nil {
		return nil, fmt.Errorf("failed to build optimizer URL: %w", err)
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	if c.Token != "" {
		httpReq.Header.Set("X-Service-Token", c.Token)
	}

	resp, err := c.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call optimizer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		utils.Log.WithField("status", resp.StatusCode).Warnf("⚠️  [OPTIMIZER] game %d: %s", req.GameID, string(body))
		return nil, fmt.Errorf("optimizer returned status %d: %s", resp.StatusCode, string(body))
	}

	var out struct {
		Solutions []Solution `json:"solutions"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode optimizer response: %w", err)
	}
	if out.Solutions == nil {
		out.Solutions = []Solution{}
	}
	return out.Solutions, nil
}
