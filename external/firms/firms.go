package firms

import (
	"context"
	"encoding/csv"
	"io"
	"net/http"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/geodata-ops/firepipe/pipeline"
	"github.com/geodata-ops/firepipe/schema"
)

const (
	logPrefix  = "firms"
	sourceName = "fire data"

	defaultURL = "https://firms.modaps.eosdis.nasa.gov/data/active_fire/modis-c6.1/csv/MODIS_C6_1_South_America_7d.csv"

	latitudeColumn  = "latitude"
	longitudeColumn = "longitude"
)

// Client - interface to fetch the active-fire feed
type Client interface {
	Fetch(ctx context.Context) (*schema.FeatureSet, error)
}

type client struct {
	url        string
	httpClient *http.Client
}

// New - new fire feed client; an empty url keeps the NASA MODIS default
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

// Fetch - download the fire CSV and attach one point geometry per row.
// Every column beyond latitude/longitude is passed through unmodified.
func (c *client) Fetch(ctx context.Context) (*schema.FeatureSet, error) {
	log.WithFields(log.Fields{
		"prefix": logPrefix,
		"url":    c.url,
	}).Info("fetching fire data")

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

	return parse(resp.Body)
}

func parse(r io.Reader) (*schema.FeatureSet, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if nil != err {
		return nil, &pipeline.FetchError{
			Source: sourceName,
			Err:    errors.Wrap(err, "read csv header"),
		}
	}

	latIdx, lonIdx := -1, -1
	for i, name := range header {
		switch name {
		case latitudeColumn:
			latIdx = i
		case longitudeColumn:
			lonIdx = i
		}
	}
	if latIdx == -1 {
		return nil, &pipeline.SchemaError{
			Source: sourceName,
			Err:    errors.Errorf("missing required column %q", latitudeColumn),
		}
	}
	if lonIdx == -1 {
		return nil, &pipeline.SchemaError{
			Source: sourceName,
			Err:    errors.Errorf("missing required column %q", longitudeColumn),
		}
	}

	points := []schema.FirePoint{}
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if nil != err {
			return nil, &pipeline.FetchError{
				Source: sourceName,
				Err:    errors.Wrapf(err, "read csv row %d", row+1),
			}
		}
		row++

		lat, err := strconv.ParseFloat(record[latIdx], 64)
		if nil != err {
			return nil, &pipeline.SchemaError{
				Source: sourceName,
				Err:    errors.Errorf("row %d: invalid %s value %q", row, latitudeColumn, record[latIdx]),
			}
		}
		lon, err := strconv.ParseFloat(record[lonIdx], 64)
		if nil != err {
			return nil, &pipeline.SchemaError{
				Source: sourceName,
				Err:    errors.Errorf("row %d: invalid %s value %q", row, longitudeColumn, record[lonIdx]),
			}
		}

		attributes := make(map[string]string, len(header))
		for i, name := range header {
			attributes[name] = record[i]
		}

		points = append(points, schema.FirePoint{
			Latitude:   lat,
			Longitude:  lon,
			Point:      orb.Point{lon, lat},
			Attributes: attributes,
		})
	}

	log.WithFields(log.Fields{
		"prefix": logPrefix,
		"count":  len(points),
	}).Debug("parsed fire records")

	return &schema.FeatureSet{
		Columns: header,
		Points:  points,
	}, nil
}
