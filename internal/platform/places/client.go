// Package places talks to the external place-data provider that supplies
// venue details, including the free-text weekly hours lines the hours parser
// consumes.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/diaperpal/diaperpal-api/pkg/config"
)

// Details is the subset of a place details response the API cares about.
type Details struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Location         LatLng   `json:"location"`
	WeekdayText      []string `json:"weekday_text"`
}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Client interface {
	GetDetails(ctx context.Context, placeID string) (*Details, error)
}

type httpClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewClient(cfg config.PlacesConfig) Client {
	return &httpClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

// detailsResponse mirrors the provider wire shape before mapping to Details.
type detailsResponse struct {
	Status string `json:"status"`
	Result struct {
		PlaceID          string `json:"place_id"`
		Name             string `json:"name"`
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location LatLng `json:"location"`
		} `json:"geometry"`
		OpeningHours struct {
			WeekdayText []string `json:"weekday_text"`
		} `json:"opening_hours"`
	} `json:"result"`
}

func (c *httpClient) GetDetails(ctx context.Context, placeID string) (*Details, error) {
	endpoint := fmt.Sprintf("%s/details/json?place_id=%s&fields=name,formatted_address,geometry,opening_hours&key=%s",
		c.baseURL, url.QueryEscape(placeID), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("places provider: unexpected status %s", res.Status)
	}

	var dr detailsResponse
	if err := json.Unmarshal(body, &dr); err != nil {
		return nil, fmt.Errorf("places provider: decode response: %w", err)
	}
	if dr.Status != "OK" {
		return nil, fmt.Errorf("places provider: status %q", dr.Status)
	}

	return &Details{
		PlaceID:          dr.Result.PlaceID,
		Name:             dr.Result.Name,
		FormattedAddress: dr.Result.FormattedAddress,
		Location:         dr.Result.Geometry.Location,
		WeekdayText:      dr.Result.OpeningHours.WeekdayText,
	}, nil
}
