package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"

	"github.com/teemow/calbot/internal/assistant"
	"github.com/teemow/calbot/internal/calendar"
	"github.com/teemow/calbot/internal/logging"
	"github.com/teemow/calbot/internal/slotlock"
)

// StatusMessage is returned by GET /.
const StatusMessage = "API is running."

// maxBodyBytes caps request bodies of the JSON endpoints.
const maxBodyBytes = 64 << 10

// StatusResponse is the body of GET /.
type StatusResponse struct {
	Message string `json:"message"`
}

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Input string `json:"input"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}

// API serves the calendar endpoints and the assistant.
type API struct {
	sc *ServerContext
}

// NewAPI creates the handlers for sc.
func NewAPI(sc *ServerContext) *API {
	return &API{sc: sc}
}

// Register adds the API routes to mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", a.handleStatus)
	mux.HandleFunc("GET /check", a.handleCheck)
	mux.HandleFunc("POST /book", a.handleBook)
	mux.HandleFunc("POST /ask", a.handleAsk)
}

func (a *API) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Message: StatusMessage})
}

// handleCheck answers GET /check?date=YYYY-MM-DD&start_hour=H&end_hour=H.
func (a *API) handleCheck(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	date, start, end, err := parseSlot(q.Get("date"), q.Get("start_hour"), q.Get("end_hour"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	free, err := a.sc.Backend().CheckFree(r.Context(), date, start, end)
	if err != nil {
		a.backendError(w, r, "availability check failed", err)
		return
	}
	writeJSON(w, http.StatusOK, calendar.CheckResponse{Available: free})
}

// handleBook answers POST /book. The slot is locked, checked and only then
// reserved, so a busy slot answers booked=false.
func (a *API) handleBook(w http.ResponseWriter, r *http.Request) {
	var req calendar.BookRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	date, err := civil.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", req.Date))
		return
	}
	if !(assistant.HourRange{Start: req.StartHour, End: req.EndHour}).Valid() {
		writeError(w, http.StatusBadRequest, calendar.ErrInvalidRange)
		return
	}
	booked, err := a.sc.BookSlot(r.Context(), date, req.StartHour, req.EndHour, req.Summary)
	if err != nil {
		if errors.Is(err, slotlock.ErrLocked) {
			writeError(w, http.StatusConflict, err)
			return
		}
		a.backendError(w, r, "booking failed", err)
		return
	}
	writeJSON(w, http.StatusOK, calendar.BookResponse{Booked: booked})
}

// handleAsk runs one utterance through the pipeline and returns its state.
func (a *API) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Input) == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("input is required"))
		return
	}

	writeJSON(w, http.StatusOK, a.sc.Pipeline().Run(r.Context(), req.Input))
}

func (a *API) backendError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if errors.Is(err, calendar.ErrInvalidRange) {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	a.sc.Logger().Error(msg,
		logging.Operation(r.Method+" "+r.URL.Path),
		logging.Err(err))
	writeError(w, http.StatusBadGateway, fmt.Errorf("%s", msg))
}

// parseSlot validates the query parameters of /check.
func parseSlot(dateStr, startStr, endStr string) (civil.Date, int, int, error) {
	date, err := civil.ParseDate(dateStr)
	if err != nil {
		return civil.Date{}, 0, 0, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", dateStr)
	}
	start, err := strconv.Atoi(startStr)
	if err != nil {
		return civil.Date{}, 0, 0, fmt.Errorf("invalid start_hour %q", startStr)
	}
	end, err := strconv.Atoi(endStr)
	if err != nil {
		return civil.Date{}, 0, 0, fmt.Errorf("invalid end_hour %q", endStr)
	}
	if !(assistant.HourRange{Start: start, End: end}).Valid() {
		return civil.Date{}, 0, 0, calendar.ErrInvalidRange
	}
	return date, start, end, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}
