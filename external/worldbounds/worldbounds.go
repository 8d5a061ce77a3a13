package worldbounds

import (
	"context"
	"io"
	"net/http"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/geodata-ops/firepipe/pipeline"
	"github.com/geodata-ops/firepipe/schema"
)

const (
	logPrefix  = "worldbounds"
	sourceName = "country boundaries"

	defaultURL = "https://hub.arcgis.com/datasets/esri::world-countries-generalized.geojson"

	countryProperty = "COUNTRY"
)

// Client - interface to fetch world country boundaries
type Client interface {
	Fetch(ctx context.Context, keep []string) ([]schema.Boundary, error)
}

type client struct {
	url        string
	httpClient *http.Client
}

// New - new boundary client; an empty url keeps the world-countries default
func New(url string) Client {
	u := defaultURL
	if url != "" {
		u = url
	}

	return &client{
		url:        u,
		httpClient: http.DefaultClient,
	}
}

// Fetch - download the world-countries GeoJSON and keep only features whose
// COUNTRY property exactly matches an entry of keep. Zero matches is an
// empty result, not an error.
func (c *client) Fetch(ctx context.Context, keep []string) ([]schema.Boundary, error) {
	log.WithFields(log.Fields{
		"prefix": logPrefix,
		"url":    c.url,
	}).Info("fetching country boundaries")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if nil != err {
		return nil, &pipeline.FetchError{Source: sourceName, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if nil != err {
		return nil, &pipeline.FetchError{Source: sourceName, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &pipeline.FetchError{
			Source: sourceName,
			Err:    errors.Errorf("unexpected response status %s", resp.Status),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if nil != err {
		return nil, &pipeline.FetchError{Source: sourceName, Err: err}
	}

	collection, err := geojson.UnmarshalFeatureCollection(body)
	if nil != err {
		return nil, &pipeline.FetchError{
			Source: sourceName,
			Err:    errors.Wrap(err, "decode geojson"),
		}
	}

	wanted := make(map[string]struct{}, len(keep))
	for _, name := range keep {
		wanted[name] = struct{}{}
	}

	boundaries := []schema.Boundary{}
	for _, feature := range collection.Features {
		name, ok := feature.Properties[countryProperty].(string)
		if !ok {
			continue
		}
		if _, ok := wanted[name]; !ok {
			continue
		}

		switch feature.Geometry.(type) {
		case orb.Polygon, orb.MultiPolygon:
		default:
			return nil, &pipeline.GeometryError{
				Subject: name,
				Err:     errors.Errorf("unexpected geometry type %s", feature.Geometry.GeoJSONType()),
			}
		}

		boundaries = append(boundaries, schema.Boundary{
			Country:  name,
			Geometry: feature.Geometry,
		})
	}

	log.WithFields(log.Fields{
		"prefix": logPrefix,
		"count":  len(boundaries),
	}).Debug("retained country boundaries")

	return boundaries, nil
}
