package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"unicode/utf8"

	"github.com/samber/lo"

	"github.com/jusunglee/romanization/internal/metrics"
	"github.com/jusunglee/romanization/internal/numerals"
	"github.com/jusunglee/romanization/internal/readings"
	"github.com/jusunglee/romanization/internal/systems"
	"github.com/jusunglee/romanization/internal/tables"
	"github.com/jusunglee/romanization/internal/web/middleware"
)

// MaxTextBytes bounds the request body of every romanization endpoint.
const MaxTextBytes = 64 << 10

type RomanizeHandler struct {
	registry *systems.Registry
	log      *slog.Logger
}

func NewRomanizeHandler(registry *systems.Registry, log *slog.Logger) *RomanizeHandler {
	return &RomanizeHandler{registry: registry, log: log}
}

type romanizeRequest struct {
	System   string   `json:"system"`
	Readings []string `json:"readings,omitempty"`
	Text     string   `json:"text"`
}

type romanizeResponse struct {
	System string `json:"system"`
	Text   string `json:"text"`
	Result string `json:"result"`
}

type readingResponse struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type characterResponse struct {
	Character string            `json:"character"`
	Readings  []readingResponse `json:"readings"`
}

type readingsResponse struct {
	System     string              `json:"system"`
	Text       string              `json:"text"`
	Flatten    string              `json:"flatten"`
	First      string              `json:"first"`
	Characters []characterResponse `json:"characters"`
}

type numeralResponse struct {
	Value   string `json:"value"`
	Decimal string `json:"decimal"`
	Unit    string `json:"unit,omitempty"`
}

type numeralsResponse struct {
	System   string            `json:"system"`
	Text     string            `json:"text"`
	Result   string            `json:"result"`
	Numerals []numeralResponse `json:"numerals"`
}

type systemResponse struct {
	Name     string   `json:"name"`
	Readings []string `json:"readings"`
	Numerals bool     `json:"numerals"`
}

// system decodes the request and builds the system it names. When fallback
// is empty and the request names no system, the script of the text decides.
// It writes the error response itself and returns nil on failure.
func (h *RomanizeHandler) system(w http.ResponseWriter, r *http.Request, fallback systems.Kind) (*romanizeRequest, systems.System) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxTextBytes)

	var req romanizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "text too large")
			return nil, nil
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return nil, nil
	}

	kind := fallback
	if req.System != "" {
		k, err := systems.ParseKind(req.System)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return nil, nil
		}
		kind = k
	}
	if kind == "" {
		k, ok := systems.DetectScript(req.Text)
		if !ok {
			writeError(w, http.StatusBadRequest, "no system given and none matches the text")
			return nil, nil
		}
		kind = k
	}

	runes := utf8.RuneCountInString(req.Text)
	middleware.Annotate(r.Context(), string(kind), runes)

	types, err := systems.ParseReadingTypes(kind, req.Readings)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, nil
	}

	s, err := h.registry.Get(r.Context(), systems.Config{Kind: kind, Readings: types})
	if err != nil {
		h.log.ErrorContext(r.Context(), "getting system", "system", kind, "error", err)
		// Missing tables mean the store was never imported into.
		if tables.IsNotFound(err) {
			writeError(w, http.StatusServiceUnavailable, "character tables for "+string(kind)+" are not loaded")
			return nil, nil
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil, nil
	}

	metrics.RomanizedCharacters.WithLabelValues(string(kind)).Add(float64(runes))
	return &req, s
}

// Romanize handles POST /api/v1/romanize.
func (h *RomanizeHandler) Romanize(w http.ResponseWriter, r *http.Request) {
	req, s := h.system(w, r, "")
	if s == nil {
		return
	}
	metrics.RomanizationsTotal.WithLabelValues(string(s.Kind()), "first").Inc()

	writeJSON(w, http.StatusOK, romanizeResponse{
		System: string(s.Kind()),
		Text:   req.Text,
		Result: s.Process(req.Text),
	})
}

// Readings handles POST /api/v1/readings.
func (h *RomanizeHandler) Readings(w http.ResponseWriter, r *http.Request) {
	req, s := h.system(w, r, "")
	if s == nil {
		return
	}
	rs, ok := s.(systems.ReadingsSystem)
	if !ok {
		writeError(w, http.StatusBadRequest, "system "+string(s.Kind())+" has no readings")
		return
	}
	metrics.RomanizationsTotal.WithLabelValues(string(s.Kind()), "readings").Inc()

	res := rs.ProcessWithReadings(req.Text)
	chars := lo.Map(res.Characters, func(c readings.Character, _ int) characterResponse {
		return characterResponse{
			Character: c.Character,
			Readings: lo.Map(c.Readings, func(rd readings.Reading, _ int) readingResponse {
				return readingResponse{Type: systems.ReadingTypeName(s.Kind(), rd.Type), Value: rd.Value}
			}),
		}
	})

	writeJSON(w, http.StatusOK, readingsResponse{
		System:     string(s.Kind()),
		Text:       req.Text,
		Flatten:    res.Flatten(),
		First:      res.First(),
		Characters: chars,
	})
}

// Numerals handles POST /api/v1/numerals.
func (h *RomanizeHandler) Numerals(w http.ResponseWriter, r *http.Request) {
	req, s := h.system(w, r, systems.KindAtticNumerals)
	if s == nil {
		return
	}
	ns, ok := s.(systems.NumeralSystem)
	if !ok {
		writeError(w, http.StatusBadRequest, "system "+string(s.Kind())+" has no numerals")
		return
	}
	metrics.RomanizationsTotal.WithLabelValues(string(s.Kind()), "numerals").Inc()

	found := []numeralResponse{}
	result := ns.ProcessNumeralsInText(req.Text, func(v numerals.Value) string {
		unit, _ := v.Unit()
		found = append(found, numeralResponse{
			Value:   v.Number().RatString(),
			Decimal: systems.DecimalFormat(v),
			Unit:    string(unit),
		})
		return systems.DecimalFormat(v)
	})

	writeJSON(w, http.StatusOK, numeralsResponse{
		System:   string(s.Kind()),
		Text:     req.Text,
		Result:   result,
		Numerals: found,
	})
}

// Systems handles GET /api/v1/systems.
func (h *RomanizeHandler) Systems(w http.ResponseWriter, r *http.Request) {
	data := lo.Map(systems.Kinds(), func(k systems.Kind, _ int) systemResponse {
		names := lo.Keys(systems.ReadingTypeNames(k))
		sort.Strings(names)
		return systemResponse{Name: string(k), Readings: names, Numerals: systems.HasNumerals(k)}
	})
	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}
