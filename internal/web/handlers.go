package web

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"onestat/internal/stats"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleScenarios(w http.ResponseWriter, r *http.Request) {
	router := r.URL.Query().Get("router")

	scenarios, err := s.db.ListScenarios(router)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	type scenarioResponse struct {
		ID         int64  `json:"id"`
		Router     string `json:"router"`
		Area       string `json:"area"`
		RngSeed    int    `json:"rng_seed"`
		SourceFile string `json:"source_file"`
		ImportedAt string `json:"imported_at"`
		StatCount  int    `json:"stat_count"`
	}

	response := []scenarioResponse{}
	for _, sc := range scenarios {
		count, err := s.db.CountStatsForScenario(sc.ID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		response = append(response, scenarioResponse{
			ID:         sc.ID,
			Router:     sc.Router,
			Area:       sc.Area,
			RngSeed:    sc.RngSeed,
			SourceFile: sc.SourceFile,
			ImportedAt: sc.ImportedAt,
			StatCount:  count,
		})
	}

	writeJSON(w, response)
}

func (s *Server) handleScenario(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/scenarios/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "invalid scenario id", http.StatusBadRequest)
		return
	}

	scenario, err := s.db.GetScenario(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "scenario not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	scenarioStats, err := s.db.StatsForScenario(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	type statResponse struct {
		Name  string  `json:"name"`
		Value float64 `json:"value"`
	}
	type scenarioDetailResponse struct {
		ID         int64          `json:"id"`
		Router     string         `json:"router"`
		Area       string         `json:"area"`
		RngSeed    int            `json:"rng_seed"`
		SourceFile string         `json:"source_file"`
		ImportedAt string         `json:"imported_at"`
		Stats      []statResponse `json:"stats"`
	}

	response := scenarioDetailResponse{
		ID:         scenario.ID,
		Router:     scenario.Router,
		Area:       scenario.Area,
		RngSeed:    scenario.RngSeed,
		SourceFile: scenario.SourceFile,
		ImportedAt: scenario.ImportedAt,
		Stats:      []statResponse{},
	}
	for _, st := range scenarioStats {
		response.Stats = append(response.Stats, statResponse{Name: st.Name, Value: st.Value})
	}

	writeJSON(w, response)
}

func (s *Server) handleAggregate(w http.ResponseWriter, r *http.Request) {
	router := r.URL.Query().Get("router")
	area := r.URL.Query().Get("area")
	stat := r.URL.Query().Get("stat")
	if stat == "" {
		stat = "delivery_prob"
	}
	if router == "" || area == "" {
		http.Error(w, "router and area are required", http.StatusBadRequest)
		return
	}

	samples, err := s.db.StatSamples(router, area, stat)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(samples) == 0 {
		http.Error(w, "no samples for this router/area/stat", http.StatusNotFound)
		return
	}

	mean, err := stats.Mean(samples)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	sd, err := stats.StdDev(samples)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	ci, err := stats.CI95(len(samples), sd)
	if err != nil {
		// Sample size outside the t-table; the caller sent a valid query
		// that the statistics cannot answer.
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	type aggregateResponse struct {
		Router      string    `json:"router"`
		Area        string    `json:"area"`
		Stat        string    `json:"stat"`
		SampleCount int       `json:"sample_count"`
		Mean        float64   `json:"mean"`
		StdDev      float64   `json:"std_dev"`
		CI95        float64   `json:"ci95"`
		Samples     []float64 `json:"samples"`
	}

	writeJSON(w, aggregateResponse{
		Router:      router,
		Area:        area,
		Stat:        stat,
		SampleCount: len(samples),
		Mean:        mean,
		StdDev:      sd,
		CI95:        ci,
		Samples:     samples,
	})
}
