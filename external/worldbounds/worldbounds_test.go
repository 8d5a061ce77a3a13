package worldbounds_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geodata-ops/firepipe/external/worldbounds"
	"github.com/geodata-ops/firepipe/pipeline"
)

const worldGeoJSON = `{
	"type": "FeatureCollection",
	"features": [
		{
			"type": "Feature",
			"properties": {"COUNTRY": "Brazil"},
			"geometry": {"type": "Polygon", "coordinates": [[[-60, -10], [-50, -10], [-50, 0], [-60, 0], [-60, -10]]]}
		},
		{
			"type": "Feature",
			"properties": {"COUNTRY": "Peru"},
			"geometry": {"type": "MultiPolygon", "coordinates": [[[[-80, -15], [-70, -15], [-70, -5], [-80, -5], [-80, -15]]]]}
		},
		{
			"type": "Feature",
			"properties": {"COUNTRY": "Argentina"},
			"geometry": {"type": "Polygon", "coordinates": [[[-70, -40], [-60, -40], [-60, -30], [-70, -30], [-70, -40]]]}
		}
	]
}`

func TestFetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(worldGeoJSON))
	}))
	defer ts.Close()

	c := worldbounds.New(ts.URL)
	boundaries, err := c.Fetch(context.Background(), []string{"Brazil", "Peru", "Bolivia"})
	require.NoError(t, err)

	require.Len(t, boundaries, 2)
	assert.Equal(t, "Brazil", boundaries[0].Country)
	assert.Equal(t, "Peru", boundaries[1].Country)
}

func TestFetchCaseSensitiveMatch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(worldGeoJSON))
	}))
	defer ts.Close()

	c := worldbounds.New(ts.URL)
	boundaries, err := c.Fetch(context.Background(), []string{"brazil", "PERU"})
	require.NoError(t, err)
	assert.Empty(t, boundaries)
}

func TestFetchNoMatches(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(worldGeoJSON))
	}))
	defer ts.Close()

	c := worldbounds.New(ts.URL)
	boundaries, err := c.Fetch(context.Background(), []string{"Atlantis"})
	require.NoError(t, err, "zero matches is not an error")
	assert.Empty(t, boundaries)
}

func TestFetchServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := worldbounds.New(ts.URL)
	_, err := c.Fetch(context.Background(), []string{"Brazil"})
	require.Error(t, err)

	var fetchErr *pipeline.FetchError
	assert.True(t, errors.As(err, &fetchErr), "expected a FetchError, got %v", err)
}

func TestFetchBadGeometryType(t *testing.T) {
	body := `{
		"type": "FeatureCollection",
		"features": [
			{
				"type": "Feature",
				"properties": {"COUNTRY": "Bolivia"},
				"geometry": {"type": "Point", "coordinates": [-65, -17]}
			}
		]
	}`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer ts.Close()

	c := worldbounds.New(ts.URL)
	_, err := c.Fetch(context.Background(), []string{"Bolivia"})
	require.Error(t, err)

	var geomErr *pipeline.GeometryError
	require.True(t, errors.As(err, &geomErr), "expected a GeometryError, got %v", err)
	assert.Equal(t, "Bolivia", geomErr.Subject)
}

func TestFetchInvalidBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not geojson"))
	}))
	defer ts.Close()

	c := worldbounds.New(ts.URL)
	_, err := c.Fetch(context.Background(), []string{"Brazil"})
	require.Error(t, err)

	var fetchErr *pipeline.FetchError
	assert.True(t, errors.As(err, &fetchErr), "expected a FetchError, got %v", err)
}
