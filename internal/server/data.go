package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/floatchat/floatchat/internal/cache"
	"github.com/floatchat/floatchat/internal/database"
)

type floatResponse struct {
	FloatID     string   `json:"float_id"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Depth       float64  `json:"depth"`
	Temperature *float64 `json:"temperature"`
	Salinity    *float64 `json:"salinity"`
	Pressure    *float64 `json:"pressure"`
	Oxygen      *float64 `json:"oxygen"`
	PH          *float64 `json:"ph"`
	Chlorophyll *float64 `json:"chlorophyll"`
	Timestamp   string   `json:"timestamp"`
	Status      string   `json:"status"`
	DataQuality string   `json:"data_quality"`
}

func toFloatResponse(rec *database.FloatRecord) floatResponse {
	return floatResponse{
		FloatID:     rec.FloatID,
		Latitude:    rec.Latitude,
		Longitude:   rec.Longitude,
		Depth:       rec.Depth,
		Temperature: rec.Temperature,
		Salinity:    rec.Salinity,
		Pressure:    rec.Pressure,
		Oxygen:      rec.Oxygen,
		PH:          rec.PH,
		Chlorophyll: rec.Chlorophyll,
		Timestamp:   rec.Timestamp.UTC().Format(time.RFC3339),
		Status:      rec.Status,
		DataQuality: rec.DataQuality,
	}
}

// latLonBox bounds one query region. Named regions may need more than one box
// when they cross the antimeridian.
type latLonBox struct {
	latMin, latMax float64
	lonMin, lonMax float64
}

// namedRegions maps API region names to bounding boxes, matching the basin
// partitions used for aggregation.
var namedRegions = map[string][]latLonBox{
	"indian_ocean":   {{latMin: -30, latMax: 30, lonMin: 20, lonMax: 120}},
	"atlantic_ocean": {{latMin: -60, latMax: 60, lonMin: -60, lonMax: 20}},
	"pacific_ocean": {
		{latMin: -60, latMax: 60, lonMin: 120, lonMax: 180},
		{latMin: -60, latMax: 60, lonMin: -180, lonMax: -60},
	},
}

// regionBoxes resolves the region or lat/lon bound parameters of a request.
// Returns nil boxes when no spatial filter is present, and ok=false for an
// unknown region name.
func regionBoxes(r *http.Request) (boxes []latLonBox, ok bool) {
	if name := r.URL.Query().Get("region"); name != "" {
		boxes, found := namedRegions[name]
		return boxes, found
	}

	latMin := queryFloat(r, "lat_min")
	latMax := queryFloat(r, "lat_max")
	lonMin := queryFloat(r, "lon_min")
	lonMax := queryFloat(r, "lon_max")
	if latMin != nil && latMax != nil && lonMin != nil && lonMax != nil {
		return []latLonBox{{latMin: *latMin, latMax: *latMax, lonMin: *lonMin, lonMax: *lonMax}}, true
	}
	return nil, true
}

// handleListFloats lists active floats, optionally restricted to a named
// region or a lat/lon box given by lat_min, lat_max, lon_min, lon_max.
func (s *Server) handleListFloats(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 500)
	if limit < 1 || limit > 5000 {
		limit = 500
	}

	boxes, ok := regionBoxes(r)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "unknown region")
		return
	}

	var (
		floats []database.FloatRecord
		err    error
	)
	if len(boxes) > 0 {
		for _, b := range boxes {
			var part []database.FloatRecord
			part, err = s.db.FloatsInBox(r.Context(), b.latMin, b.latMax, b.lonMin, b.lonMax, limit)
			if err != nil {
				break
			}
			floats = append(floats, part...)
		}
		if len(floats) > limit {
			floats = floats[:limit]
		}
	} else {
		floats, err = s.db.ActiveFloats(r.Context())
		if err == nil && len(floats) > limit {
			floats = floats[:limit]
		}
	}
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list floats")
		s.writeError(w, http.StatusInternalServerError, "failed to list floats")
		return
	}

	out := make([]floatResponse, 0, len(floats))
	for i := range floats {
		out = append(out, toFloatResponse(&floats[i]))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"count":  len(out),
		"floats": out,
	})
}

func (s *Server) handleGetFloat(w http.ResponseWriter, r *http.Request) {
	rec, err := s.db.GetFloatRecord(r.Context(), r.PathValue("id"))
	if err != nil {
		s.log.Error().Err(err).Msg("failed to get float")
		s.writeError(w, http.StatusInternalServerError, "failed to get float")
		return
	}
	if rec == nil {
		s.writeError(w, http.StatusNotFound, "float not found")
		return
	}
	s.writeJSON(w, http.StatusOK, toFloatResponse(rec))
}

type statisticsResponse struct {
	TotalFloats  int               `json:"total_floats"`
	ActiveFloats int               `json:"active_floats"`
	Regions      []regionStatistic `json:"regions"`
	GeneratedAt  string            `json:"generated_at"`
}

type regionStatistic struct {
	Region         string   `json:"region"`
	Day            string   `json:"day"`
	AvgTemperature *float64 `json:"avg_temperature"`
	AvgSalinity    *float64 `json:"avg_salinity"`
	AvgOxygen      *float64 `json:"avg_oxygen"`
	SampleCount    int      `json:"sample_count"`
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	var cached statisticsResponse
	if s.cache.GetJSON(r.Context(), cache.StatisticsKey, &cached) {
		s.writeJSON(w, http.StatusOK, cached)
		return
	}

	total, active, err := s.db.CountFloats(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("failed to count floats")
		s.writeError(w, http.StatusInternalServerError, "failed to compute statistics")
		return
	}

	summaries, err := s.db.LatestRegionalSummaries(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("failed to load regional summaries")
		s.writeError(w, http.StatusInternalServerError, "failed to compute statistics")
		return
	}

	resp := statisticsResponse{
		TotalFloats:  total,
		ActiveFloats: active,
		Regions:      make([]regionStatistic, 0, len(summaries)),
		GeneratedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	for _, sum := range summaries {
		resp.Regions = append(resp.Regions, regionStatistic{
			Region:         sum.Region,
			Day:            sum.Day.UTC().Format("2006-01-02"),
			AvgTemperature: sum.AvgTemperature,
			AvgSalinity:    sum.AvgSalinity,
			AvgOxygen:      sum.AvgOxygen,
			SampleCount:    sum.SampleCount,
		})
	}

	s.cache.SetJSON(r.Context(), cache.StatisticsKey, resp, cache.StatisticsTTL)
	s.writeJSON(w, http.StatusOK, resp)
}

type mapPoint struct {
	FloatID     string   `json:"float_id"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Temperature *float64 `json:"temperature"`
	Salinity    *float64 `json:"salinity"`
	Status      string   `json:"status"`
}

// handleVizMap returns the compact point set map widgets plot.
func (s *Server) handleVizMap(w http.ResponseWriter, r *http.Request) {
	boxes, ok := regionBoxes(r)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "unknown region")
		return
	}

	var (
		floats []database.FloatRecord
		err    error
	)
	if len(boxes) > 0 {
		for _, b := range boxes {
			var part []database.FloatRecord
			part, err = s.db.FloatsInBox(r.Context(), b.latMin, b.latMax, b.lonMin, b.lonMax, 5000)
			if err != nil {
				break
			}
			floats = append(floats, part...)
		}
	} else {
		floats, err = s.db.ActiveFloats(r.Context())
	}
	if err != nil {
		s.log.Error().Err(err).Msg("failed to load map points")
		s.writeError(w, http.StatusInternalServerError, "failed to load map points")
		return
	}

	points := make([]mapPoint, 0, len(floats))
	for i := range floats {
		points = append(points, mapPoint{
			FloatID:     floats[i].FloatID,
			Latitude:    floats[i].Latitude,
			Longitude:   floats[i].Longitude,
			Temperature: floats[i].Temperature,
			Salinity:    floats[i].Salinity,
			Status:      floats[i].Status,
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"count":  len(points),
		"points": points,
	})
}

type timeseriesPointResponse struct {
	Day   string  `json:"day"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// handleVizTimeseries returns daily averages of one parameter, optionally
// bounded by days and a lat/lon box.
func (s *Server) handleVizTimeseries(w http.ResponseWriter, r *http.Request) {
	parameter := r.URL.Query().Get("parameter")
	if parameter == "" {
		parameter = "temperature"
	}
	days := queryInt(r, "days", 30)
	if days < 0 {
		days = 30
	}

	boxes, ok := regionBoxes(r)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "unknown region")
		return
	}
	// A timeseries is a single daily-average curve, so a multi-box region
	// cannot be expressed as one query.
	if len(boxes) > 1 {
		s.writeError(w, http.StatusBadRequest, "region spans the antimeridian; use explicit lat/lon bounds")
		return
	}
	var latMin, latMax, lonMin, lonMax *float64
	if len(boxes) == 1 {
		b := boxes[0]
		latMin, latMax, lonMin, lonMax = &b.latMin, &b.latMax, &b.lonMin, &b.lonMax
	}

	points, err := s.db.ParameterTimeseries(r.Context(), parameter, days,
		latMin, latMax, lonMin, lonMax)
	if err != nil {
		if errors.Is(err, database.ErrInvalidFilter) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.log.Error().Err(err).Msg("failed to load timeseries")
		s.writeError(w, http.StatusInternalServerError, "failed to load timeseries")
		return
	}

	out := make([]timeseriesPointResponse, 0, len(points))
	for _, p := range points {
		out = append(out, timeseriesPointResponse{
			Day:   p.Day.UTC().Format("2006-01-02"),
			Value: p.Value,
			Count: p.Count,
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"parameter": parameter,
		"days":      days,
		"points":    out,
	})
}
