package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Client is the typed HTTP client for the booking API.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   15 * time.Second,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path, token string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return &APIError{Status: resp.StatusCode, Detail: normalizeDetail(resp.StatusCode, raw)}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges credentials for a bearer token, then loads the profile.
// A profile fetch failure is not fatal: the caller gets a minimal non-admin
// user so login still succeeds.
func (c *Client) Login(ctx context.Context, username, password string) (string, User, error) {
	form := url.Values{"username": {username}, "password": {password}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", User{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", User{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return "", User{}, &APIError{Status: resp.StatusCode, Detail: normalizeDetail(resp.StatusCode, raw)}
	}
	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", User{}, err
	}

	user, err := c.Me(ctx, tok.AccessToken)
	if err != nil {
		user = User{Username: username, IsAdmin: false}
	}
	return tok.AccessToken, user, nil
}

func (c *Client) Register(ctx context.Context, username, email, password string) (User, error) {
	form := url.Values{"username": {username}, "email": {email}, "password": {password}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/register",
		strings.NewReader(form.Encode()))
	if err != nil {
		return User{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return User{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return User{}, &APIError{Status: resp.StatusCode, Detail: normalizeDetail(resp.StatusCode, raw)}
	}
	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return User{}, err
	}
	return user, nil
}

func (c *Client) Me(ctx context.Context, token string) (User, error) {
	var user User
	err := c.do(ctx, http.MethodGet, "/users/me/", token, nil, &user)
	return user, err
}

func (c *Client) Services(ctx context.Context) ([]Service, error) {
	var services []Service
	err := c.do(ctx, http.MethodGet, "/services/", "", nil, &services)
	return services, err
}

func (c *Client) CreateService(ctx context.Context, token string, req CreateServiceRequest) (Service, error) {
	var svc Service
	err := c.do(ctx, http.MethodPost, "/services/", token, req, &svc)
	return svc, err
}

func (c *Client) PublicSettings(ctx context.Context) (Settings, error) {
	var s Settings
	err := c.do(ctx, http.MethodGet, "/settings/", "", nil, &s)
	return s, err
}

func (c *Client) AdminSettings(ctx context.Context, token string) (Settings, error) {
	var s Settings
	err := c.do(ctx, http.MethodGet, "/admin/settings/", token, nil, &s)
	return s, err
}

func (c *Client) UpdateSettings(ctx context.Context, token string, s Settings) (Settings, error) {
	var updated Settings
	err := c.do(ctx, http.MethodPut, "/admin/settings/", token, s, &updated)
	return updated, err
}

func (c *Client) CreateAppointment(ctx context.Context, req CreateAppointmentRequest) (Appointment, error) {
	var appt Appointment
	err := c.do(ctx, http.MethodPost, "/appointments/", "", req, &appt)
	return appt, err
}

func (c *Client) AppointmentsWithDetails(ctx context.Context, token string) ([]Appointment, error) {
	var appts []Appointment
	err := c.do(ctx, http.MethodGet, "/appointments-with-details/", token, nil, &appts)
	return appts, err
}

func (c *Client) ClientAppointments(ctx context.Context, phone string) ([]Appointment, error) {
	var appts []Appointment
	err := c.do(ctx, http.MethodGet, "/client-appointments/"+url.PathEscape(phone), "", nil, &appts)
	return appts, err
}

// AllAppointments queries the admin history. Empty status (or "all") and
// empty dates are omitted from the query string.
func (c *Client) AllAppointments(ctx context.Context, token, status, dateFrom, dateTo string) ([]Appointment, error) {
	q := url.Values{}
	if status != "" && status != "all" {
		q.Set("status", status)
	}
	if dateFrom != "" {
		q.Set("date_from", dateFrom)
	}
	if dateTo != "" {
		q.Set("date_to", dateTo)
	}
	path := "/admin/all-appointments/"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var appts []Appointment
	err := c.do(ctx, http.MethodGet, path, token, nil, &appts)
	return appts, err
}

func (c *Client) UpdateAppointmentStatus(ctx context.Context, token string, id int64, status string) (Appointment, error) {
	var appt Appointment
	path := fmt.Sprintf("/appointments/%d/status", id)
	err := c.do(ctx, http.MethodPut, path, token, map[string]string{"status": status}, &appt)
	return appt, err
}

func (c *Client) Clients(ctx context.Context, token string) ([]ClientRecord, error) {
	var clients []ClientRecord
	err := c.do(ctx, http.MethodGet, "/clients/", token, nil, &clients)
	return clients, err
}

func (c *Client) Statistics(ctx context.Context, token string) (Statistics, error) {
	var stats Statistics
	err := c.do(ctx, http.MethodGet, "/statistics/", token, nil, &stats)
	return stats, err
}
