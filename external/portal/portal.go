package portal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/geodata-ops/firepipe/schema"
)

const (
	logPrefix = "portal"

	// ItemType - the portal item type of a hosted feature layer
	ItemType = "Feature Service"

	countryProperty = "COUNTRY"
)

var errNotAuthenticated = errors.New("no session token, call GenerateToken first")

// Item - a portal content item
type Item struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
	URL   string `json:"url"`
}

// Portal - the logical portal operations consumed by the publisher. The wire
// protocol behind them belongs to the portal and stays inside this package.
type Portal interface {
	GenerateToken(ctx context.Context) error
	SearchItemByTitle(ctx context.Context, title string) (*Item, error)
	OverwriteItem(ctx context.Context, item *Item, set *schema.FeatureSet) error
	CreateLayer(ctx context.Context, title string, set *schema.FeatureSet) error
}

type client struct {
	baseURL    string
	username   string
	password   string
	token      string
	httpClient *http.Client
}

// New - new portal client for the given connection parameters
func New(baseURL, username, password string) Portal {
	return &client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		username:   username,
		password:   password,
		httpClient: http.DefaultClient,
	}
}

type apiError struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details"`
}

type tokenResponse struct {
	Token string    `json:"token"`
	Error *apiError `json:"error"`
}

type searchResponse struct {
	Results []Item    `json:"results"`
	Error   *apiError `json:"error"`
}

type mutationResponse struct {
	Success bool      `json:"success"`
	ID      string    `json:"id"`
	Error   *apiError `json:"error"`
}

// GenerateToken - exchange the configured credentials for a session token
func (c *client) GenerateToken(ctx context.Context) error {
	log.WithFields(log.Fields{
		"prefix":   logPrefix,
		"portal":   c.baseURL,
		"username": c.username,
	}).Info("authenticating to portal")

	form := url.Values{
		"username": {c.username},
		"password": {c.password},
		"referer":  {c.baseURL},
		"f":        {"json"},
	}

	var resp tokenResponse
	if err := c.post(ctx, "/sharing/rest/generateToken", form, &resp); nil != err {
		return err
	}
	if resp.Error != nil {
		return errors.Errorf("generate token: %s", resp.Error.Message)
	}
	if resp.Token == "" {
		return errors.New("generate token: empty token in response")
	}

	c.token = resp.Token

	return nil
}

// SearchItemByTitle - find a feature-layer item whose title exactly matches.
// Returns nil when no such item exists.
func (c *client) SearchItemByTitle(ctx context.Context, title string) (*Item, error) {
	if c.token == "" {
		return nil, errNotAuthenticated
	}

	query := url.Values{
		"q":     {`title:"` + title + `" AND type:"` + ItemType + `"`},
		"token": {c.token},
		"f":     {"json"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/sharing/rest/search?"+query.Encode(), nil)
	if nil != err {
		return nil, err
	}

	httpResp, err := c.httpClient.Do(req)
	if nil != err {
		return nil, err
	}
	defer httpResp.Body.Close()

	var resp searchResponse
	if err := decode(httpResp, &resp); nil != err {
		return nil, err
	}
	if resp.Error != nil {
		return nil, errors.Errorf("search: %s", resp.Error.Message)
	}

	// the portal search is fuzzy, insist on an exact title
	for i, item := range resp.Results {
		if item.Title == title && item.Type == ItemType {
			return &resp.Results[i], nil
		}
	}

	return nil, nil
}

// OverwriteItem - replace the data of an existing hosted layer in place,
// preserving the item's identity
func (c *client) OverwriteItem(ctx context.Context, item *Item, set *schema.FeatureSet) error {
	if c.token == "" {
		return errNotAuthenticated
	}

	log.WithFields(log.Fields{
		"prefix": logPrefix,
		"item":   item.ID,
		"count":  set.Len(),
	}).Info("updating existing layer")

	body, err := featurePayload(set)
	if nil != err {
		return err
	}

	form := url.Values{
		"token": {c.token},
		"f":     {"json"},
		"text":  {body},
	}

	var resp mutationResponse
	if err := c.post(ctx, "/sharing/rest/content/items/"+item.ID+"/overwrite", form, &resp); nil != err {
		return err
	}
	if resp.Error != nil {
		return errors.Errorf("overwrite item %s: %s", item.ID, resp.Error.Message)
	}
	if !resp.Success {
		return errors.Errorf("overwrite item %s: portal reported failure", item.ID)
	}

	return nil
}

// CreateLayer - publish the dataset as a brand-new hosted feature layer
func (c *client) CreateLayer(ctx context.Context, title string, set *schema.FeatureSet) error {
	if c.token == "" {
		return errNotAuthenticated
	}

	log.WithFields(log.Fields{
		"prefix": logPrefix,
		"title":  title,
		"count":  set.Len(),
	}).Info("creating a new feature layer")

	body, err := featurePayload(set)
	if nil != err {
		return err
	}

	form := url.Values{
		"token": {c.token},
		"f":     {"json"},
		"title": {title},
		"type":  {ItemType},
		"text":  {body},
	}

	var resp mutationResponse
	if err := c.post(ctx, "/sharing/rest/content/users/"+c.username+"/addItem", form, &resp); nil != err {
		return err
	}
	if resp.Error != nil {
		return errors.Errorf("create layer: %s", resp.Error.Message)
	}
	if !resp.Success {
		return errors.New("create layer: portal reported failure")
	}

	return nil
}

func (c *client) post(ctx context.Context, path string, form url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if nil != err {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if nil != err {
		return err
	}
	defer resp.Body.Close()

	return decode(resp, out)
}

func decode(resp *http.Response, out interface{}) error {
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return errors.Errorf("unexpected response status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); nil != err {
		return errors.Wrap(err, "decode portal response")
	}

	return nil
}

// featurePayload - encode the dataset as a GeoJSON feature collection. The
// source columns pass through as properties; the attributed country is added
// under the boundary dataset's own property name.
func featurePayload(set *schema.FeatureSet) (string, error) {
	collection := geojson.NewFeatureCollection()
	for _, point := range set.Points {
		feature := geojson.NewFeature(point.Point)
		for name, value := range point.Attributes {
			feature.Properties[name] = value
		}
		if point.Country != "" {
			feature.Properties[countryProperty] = point.Country
		}
		collection.Append(feature)
	}

	body, err := json.Marshal(collection)
	if nil != err {
		return "", errors.Wrap(err, "encode feature collection")
	}

	return string(body), nil
}
