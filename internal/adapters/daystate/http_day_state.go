package daystate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HTTPDayState fetches the opaque stop-state token from the day/trip CRUD
// service that owns stop data. The engine compares tokens for equality only.
type HTTPDayState struct {
	session *http.Client
	baseURL string
}

func NewHTTPDayState(baseURL string) (*HTTPDayState, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("day state base URL is empty")
	}

	return &HTTPDayState{
		session: &http.Client{Timeout: 5 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (d *HTTPDayState) CurrentToken(ctx context.Context, dayID string) (string, error) {
	endpoint := fmt.Sprintf("%s/days/%s/state-token", d.baseURL, dayID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("day state: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.session.Do(req)
	if err != nil {
		return "", fmt.Errorf("day state: fetch token for day %s: %w", dayID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("day state: unexpected status %d for day %s", resp.StatusCode, dayID)
	}

	var decoded struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("day state: decode token response: %w", err)
	}

	return decoded.Token, nil
}

// Static always answers with a fixed token. Used in tests and in deployments
// without a day-state collaborator.
type Static struct {
	Token string
}

func (s Static) CurrentToken(ctx context.Context, dayID string) (string, error) {
	return s.Token, nil
}
