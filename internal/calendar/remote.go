package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// Wire types of the calbot calendar HTTP API, shared by RemoteClient and
// the server handlers.
type (
	// CheckResponse is the body of GET /check.
	CheckResponse struct {
		Available bool `json:"available"`
	}

	// BookRequest is the body of POST /book.
	BookRequest struct {
		Date      string `json:"date"`
		StartHour int    `json:"start_hour"`
		EndHour   int    `json:"end_hour"`
		Summary   string `json:"summary,omitempty"`
	}

	// BookResponse is the body returned by POST /book.
	BookResponse struct {
		Booked bool `json:"booked"`
	}
)

// Client-side views of the responses. A missing key decodes to nil and is
// rejected instead of being read as false.
type (
	checkResult struct {
		Available *bool `json:"available"`
	}

	bookResult struct {
		Booked *bool `json:"booked"`
	}
)

// RemoteClient is a Backend served by another calbot over HTTP.
type RemoteClient struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// NewRemoteClient creates a client for the API at baseURL. A nil httpClient
// uses one with the given timeout.
func NewRemoteClient(baseURL string, httpClient *http.Client, timeout time.Duration) (*RemoteClient, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid remote calendar URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("remote calendar URL must be http or https, got %q", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &RemoteClient{baseURL: u, httpClient: httpClient}, nil
}

// Name implements Backend.
func (r *RemoteClient) Name() string {
	return BackendRemote
}

// CheckFree asks GET /check.
func (r *RemoteClient) CheckFree(ctx context.Context, date civil.Date, startHour, endHour int) (bool, error) {
	if _, _, err := SlotBounds(date, startHour, endHour, time.UTC); err != nil {
		return false, err
	}

	q := url.Values{}
	q.Set("date", date.String())
	q.Set("start_hour", strconv.Itoa(startHour))
	q.Set("end_hour", strconv.Itoa(endHour))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint("/check")+"?"+q.Encode(), nil)
	if err != nil {
		return false, fmt.Errorf("failed to build check request: %w", err)
	}

	var resp checkResult
	if err := r.do(req, &resp); err != nil {
		return false, fmt.Errorf("failed to check availability: %w", err)
	}
	if resp.Available == nil {
		return false, fmt.Errorf("failed to check availability: %w: missing \"available\"", ErrInvalidResponse)
	}
	return *resp.Available, nil
}

// Reserve posts to /book.
func (r *RemoteClient) Reserve(ctx context.Context, date civil.Date, startHour, endHour int, title string) (bool, error) {
	if _, _, err := SlotBounds(date, startHour, endHour, time.UTC); err != nil {
		return false, err
	}

	body, err := json.Marshal(BookRequest{
		Date:      date.String(),
		StartHour: startHour,
		EndHour:   endHour,
		Summary:   title,
	})
	if err != nil {
		return false, fmt.Errorf("failed to encode booking: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint("/book"), bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("failed to build book request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp bookResult
	if err := r.do(req, &resp); err != nil {
		return false, fmt.Errorf("failed to book slot: %w", err)
	}
	if resp.Booked == nil {
		return false, fmt.Errorf("failed to book slot: %w: missing \"booked\"", ErrInvalidResponse)
	}
	return *resp.Booked, nil
}

func (r *RemoteClient) endpoint(path string) string {
	return r.baseURL.String() + path
}

func (r *RemoteClient) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %d %s", ErrRemoteStatus, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return nil
}
