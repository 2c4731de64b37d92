// Package openmeteo implements the HTTP client for the Open-Meteo historical
// archive API.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/clima-cdmx/archivador/internal/config"
	"github.com/clima-cdmx/archivador/internal/domain/entity"
	"github.com/clima-cdmx/archivador/pkg/util/exception"
	"github.com/clima-cdmx/archivador/pkg/util/logger"
)

const moduleName = "openmeteo"

// HourlyVariables is the fixed set of hourly variables requested from the
// archive API, in request order.
var HourlyVariables = []string{
	"temperature_2m",
	"relative_humidity_2m",
	"dewpoint_2m",
	"pressure_msl",
	"precipitation",
	"wind_speed_10m",
	"wind_gusts_10m",
	"wind_direction_10m",
	"weathercode",
}

// ArchiveParams describes one archive request.
type ArchiveParams struct {
	Latitude  float64
	Longitude float64
	// StartDate and EndDate are inclusive, formatted YYYY-MM-DD.
	StartDate string
	EndDate   string
	// Timezone is passed to the API so timestamps come back local.
	Timezone string
}

// Values renders the request parameters as a URL query.
func (p ArchiveParams) Values() url.Values {
	v := url.Values{}
	v.Set("latitude", strconv.FormatFloat(p.Latitude, 'f', -1, 64))
	v.Set("longitude", strconv.FormatFloat(p.Longitude, 'f', -1, 64))
	v.Set("start_date", p.StartDate)
	v.Set("end_date", p.EndDate)
	v.Set("hourly", strings.Join(HourlyVariables, ","))
	v.Set("timezone", p.Timezone)
	return v
}

// Client calls the Open-Meteo archive API.
type Client struct {
	endpoint string
	client   *http.Client
}

// NewClient creates a Client for the given endpoint. A non-positive timeout
// falls back to 60 seconds; full-range archive responses are large.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// NewClientFromConfig builds a Client from the application configuration.
func NewClientFromConfig(cfg *config.Config) *Client {
	return NewClient(
		cfg.Archivador.Request.APIEndpoint,
		time.Duration(cfg.Archivador.Request.TimeoutSeconds)*time.Second,
	)
}

// FetchArchive performs the archive request and decodes the response.
// A non-success HTTP status yields a KindHTTP PipelineError carrying the
// status code and response body; network and decode failures yield
// KindUnexpected errors.
func (c *Client) FetchArchive(ctx context.Context, params ArchiveParams) (*entity.ArchiveResponse, error) {
	reqURL := fmt.Sprintf("%s?%s", c.endpoint, params.Values().Encode())
	logger.Infof("Fetching historical weather data: %s to %s", params.StartDate, params.EndDate)
	logger.Debugf("Archive request URL: %s", reqURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, exception.NewUnexpectedError(moduleName, "failed to create API request", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, exception.NewUnexpectedError(moduleName, "API call failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		bodyString := strings.TrimSpace(string(bodyBytes))
		return nil, exception.NewHTTPError(moduleName, resp.StatusCode, bodyString)
	}

	var archive entity.ArchiveResponse
	if err := json.NewDecoder(resp.Body).Decode(&archive); err != nil {
		return nil, exception.NewUnexpectedError(moduleName, "failed to decode API response", err)
	}

	if err := archive.Hourly.Validate(); err != nil {
		return nil, exception.NewUnexpectedError(moduleName, "malformed hourly arrays in API response", err)
	}

	logger.Debugf("Fetched %d hourly records from archive API.", archive.Hourly.Len())
	return &archive, nil
}

// ResolveEndDate returns the configured end date, defaulting to yesterday in
// loc when the configuration leaves it empty.
func ResolveEndDate(configured string, loc *time.Location, now time.Time) string {
	if configured != "" {
		return configured
	}
	return now.In(loc).AddDate(0, 0, -1).Format("2006-01-02")
}
