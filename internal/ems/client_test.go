package ems

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchRoster_ArrayResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/shifts", r.URL.Path)
		assert.Equal(t, "Bearer sekret", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[
			{"date_ddmm": "11-02", "fio": "John Smith", "shift_type": "D", "location": "SK"},
			{"date": "2025-02-12", "name": "Anna Brown", "shift": 8, "place": "FD"}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sekret")
	rows, err := c.FetchRoster(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "11-02", rows[0].Date)
	assert.Equal(t, "John Smith", rows[0].Person)
	assert.Equal(t, "D", rows[0].ShiftType)
	assert.Equal(t, "SK", rows[0].Location)

	// Alternate field names and a numeric shift type are tolerated.
	assert.Equal(t, "2025-02-12", rows[1].Date)
	assert.Equal(t, "Anna Brown", rows[1].Person)
	assert.Equal(t, "8", rows[1].ShiftType)
	assert.Equal(t, "FD", rows[1].Location)
}

func TestFetchRoster_WrappedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"shifts": [{"date_ddmm": "13-02", "fio": "Anna Brown", "shift_type": "M", "location": "MT"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	rows, err := c.FetchRoster(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Anna Brown", rows[0].Person)
}

func TestFetchRoster_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.FetchRoster(context.Background())
	assert.Error(t, err)
}

func TestFetchRoster_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"shifts": nope`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.FetchRoster(context.Background())
	assert.Error(t, err)
}

func TestFetchRoster_MockFallback(t *testing.T) {
	for _, base := range []string{"", "https://ems-api.example.com"} {
		c := NewClient(base, "")
		assert.True(t, c.Mock())

		rows, err := c.FetchRoster(context.Background())
		require.NoError(t, err)
		assert.NotEmpty(t, rows)
	}
}
