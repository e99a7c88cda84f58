// Package ems fetches the shift roster from the EMS HTTP API.
package ems

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/oldtora/ppshiftsbot/internal/domain"
)

const fetchTimeout = 30 * time.Second

// Client pulls roster rows from the EMS API. When no real API is configured
// (empty or placeholder base URL) it serves a built-in mock roster so the bot
// is usable during development.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

// NewClient creates an EMS API client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: fetchTimeout},
	}
}

// Mock reports whether the client serves mock data instead of a real API.
func (c *Client) Mock() bool {
	return c.baseURL == "" || strings.Contains(c.baseURL, "example.com")
}

// FetchRoster returns the current roster. Any transport, status or decode
// problem is returned as an error; the caller keeps the previous roster in
// that case.
func (c *Client) FetchRoster(ctx context.Context) ([]domain.RosterRow, error) {
	if c.Mock() {
		return MockRoster(), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/shifts", nil)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch roster: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch roster: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch roster: read body: %w", err)
	}
	rows, err := decodeRoster(body)
	if err != nil {
		return nil, fmt.Errorf("fetch roster: %w", err)
	}
	return rows, nil
}

// wireShift tolerates the field-name variants the EMS API has been seen to
// produce. ShiftType may arrive as a bare number.
type wireShift struct {
	Date      string `json:"date"`
	DateDDMM  string `json:"date_ddmm"`
	FIO       string `json:"fio"`
	Name      string `json:"name"`
	ShiftType any    `json:"shift_type"`
	Shift     any    `json:"shift"`
	Location  string `json:"location"`
	Place     string `json:"place"`
}

func decodeRoster(body []byte) ([]domain.RosterRow, error) {
	var raw []wireShift

	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
	} else {
		var wrapper struct {
			Shifts []wireShift `json:"shifts"`
		}
		if err := json.Unmarshal(body, &wrapper); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		raw = wrapper.Shifts
	}

	rows := make([]domain.RosterRow, 0, len(raw))
	for _, w := range raw {
		rows = append(rows, domain.RosterRow{
			Date:      firstNonEmpty(w.DateDDMM, w.Date),
			Person:    firstNonEmpty(w.FIO, w.Name),
			ShiftType: firstNonEmpty(asString(w.ShiftType), asString(w.Shift)),
			Location:  firstNonEmpty(w.Location, w.Place),
		})
	}
	return rows, nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == math.Trunc(t) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
