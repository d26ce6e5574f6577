package ingestion

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/floatchat/floatchat/internal/protocol"
)

// erddapColumns is the tabledap projection requested from the feed.
const erddapColumns = "platform_number,latitude,longitude,time,pres,temp,psal,oxygen,ph,chla"

// Client fetches recent ARGO observations from an ERDDAP tabledap endpoint.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient creates an ERDDAP client. baseURL points at the dataset's .csv
// export, e.g. https://erddap.ifremer.fr/erddap/tabledap/ArgoFloats.csv
func NewClient(baseURL string, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 2 * time.Minute},
		log:     logger,
	}
}

// FetchRecent downloads and parses observations newer than since.
func (c *Client) FetchRecent(ctx context.Context, since time.Time) ([]protocol.ObservationMessage, error) {
	url := fmt.Sprintf(`%s?%s&time>=%s&orderBy("time")`,
		c.baseURL, erddapColumns, since.UTC().Format(time.RFC3339))

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build ERDDAP request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ERDDAP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ERDDAP request failed: status %d", resp.StatusCode)
	}

	observations, err := ParseCSV(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ERDDAP response: %w", err)
	}

	c.log.Info().Int("observations", len(observations)).Time("since", since).Msg("fetched ERDDAP data")
	return observations, nil
}

// ParseCSV decodes an ERDDAP CSV export into observation messages. Rows
// without a platform number or a parseable position are skipped, as are NaN
// and blank measurement cells.
func ParseCSV(r io.Reader) ([]protocol.ObservationMessage, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("missing CSV header: %w", err)
	}
	index := map[string]int{}
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	field := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		v := strings.TrimSpace(row[i])
		if v == "NaN" {
			return ""
		}
		return v
	}
	floatField := func(row []string, name string) *float64 {
		v := field(row, name)
		if v == "" {
			return nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil
		}
		return &f
	}

	now := time.Now().UTC()
	var observations []protocol.ObservationMessage
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed records are dropped; anything else is an I/O
			// failure that would repeat forever, so stop reading.
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}

		floatID := field(row, "platform_number")
		lat := floatField(row, "latitude")
		lon := floatField(row, "longitude")
		if floatID == "" || lat == nil || lon == nil {
			continue
		}

		ts := now
		if raw := field(row, "time"); raw != "" {
			if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
				ts = parsed
			}
		}

		obs := protocol.ObservationMessage{
			FloatID:     floatID,
			Latitude:    *lat,
			Longitude:   *lon,
			Temperature: floatField(row, "temp"),
			Salinity:    floatField(row, "psal"),
			Pressure:    floatField(row, "pres"),
			Oxygen:      floatField(row, "oxygen"),
			PH:          floatField(row, "ph"),
			Chlorophyll: floatField(row, "chla"),
			Timestamp:   ts,
			Source:      protocol.SourceERDDAP,
			ReceivedAt:  now,
		}
		if obs.Pressure != nil {
			obs.Depth = *obs.Pressure
		}

		observations = append(observations, obs)
	}

	return observations, nil
}
