package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rigaku-tools/machine-fleet-backend/internal/models"
)

// Sentinel errors for responses the caller branches on.
var (
	ErrUnauthorized = fmt.Errorf("authentication required")
	ErrForbidden    = fmt.Errorf("admin privileges required")
	ErrNotFound     = fmt.Errorf("resource not found")
)

// Tube is the client-side view of a machine tube.
type Tube struct {
	TubeIndex        int
	TubeType         models.TubeType
	PurgingConnected bool
	ShutterExists    bool
}

// Location is the client-side view of a machine site.
type Location struct {
	Country   string
	City      string
	Latitude  float64
	Longitude float64
}

// HistoryPoint is one efficiency sample for charting.
type HistoryPoint struct {
	Time  time.Time
	Value int
}

// Machine is the dashboard view model. Temperature and Efficiency are
// derived client-side; the API does not report telemetry.
type Machine struct {
	ID             uint
	Name           string
	Model          models.ModelType
	Status         models.MachineStatus
	PlcVersion     string
	AcsVersion     string
	TubesNumber    int
	Tubes          []Tube
	Owner          string
	TeamviewerName string
	Location       Location
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	Temperature    float64
	Efficiency     int
	History        []HistoryPoint
}

// Client talks to the fleet-management API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// NewClient creates a client for the given base URL, e.g.
// "http://localhost:8080/api".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// SetToken installs the bearer token used for authenticated calls.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Register creates an account and returns the resulting session.
func (c *Client) Register(ctx context.Context, email, password string) (*Session, error) {
	return c.authenticate(ctx, "/auth/register", models.RegisterRequest{Email: email, Password: password})
}

// Login authenticates and returns the resulting session.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	return c.authenticate(ctx, "/auth/login", models.LoginRequest{Email: email, Password: password})
}

func (c *Client) authenticate(ctx context.Context, path string, payload interface{}) (*Session, error) {
	var resp models.AuthResponse
	if err := c.do(ctx, http.MethodPost, path, payload, &resp); err != nil {
		return nil, err
	}

	c.token = resp.Token
	return &Session{
		Token:                 resp.Token,
		Username:              resp.Username,
		Email:                 resp.Email,
		IsAdmin:               resp.IsAdmin,
		RequirePasswordChange: resp.RequirePasswordChange,
		ExpiresAt:             resp.ExpiresAt,
	}, nil
}

// ForgotPassword requests a password reset email. The server answer is the
// same whether or not the account exists.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	var resp models.MessageResponse
	if err := c.do(ctx, http.MethodPost, "/auth/forgot-password", models.ForgotPasswordRequest{Email: email}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ChangePassword changes the authenticated account's password. The current
// password may be empty during the forced-change flow.
func (c *Client) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	payload := models.ChangePasswordRequest{
		CurrentPassword: currentPassword,
		NewPassword:     newPassword,
	}
	return c.do(ctx, http.MethodPost, "/auth/change-password", payload, nil)
}

// GetMachines fetches the full fleet.
func (c *Client) GetMachines(ctx context.Context) ([]Machine, error) {
	var dtos []models.MachineDto
	if err := c.do(ctx, http.MethodGet, "/machines", nil, &dtos); err != nil {
		return nil, err
	}
	return mapMachines(dtos), nil
}

// GetMachineByID fetches one machine. A missing id yields ErrNotFound.
func (c *Client) GetMachineByID(ctx context.Context, id uint) (*Machine, error) {
	var dto models.MachineDto
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/machines/%d", id), nil, &dto); err != nil {
		return nil, err
	}
	m := mapMachine(dto)
	return &m, nil
}

// GetMachineByName fetches one machine by its unique name.
func (c *Client) GetMachineByName(ctx context.Context, name string) (*Machine, error) {
	var dto models.MachineDto
	if err := c.do(ctx, http.MethodGet, "/machines/by-name/"+url.PathEscape(name), nil, &dto); err != nil {
		return nil, err
	}
	m := mapMachine(dto)
	return &m, nil
}

// GetMachinesByStatus fetches all machines in the given status.
func (c *Client) GetMachinesByStatus(ctx context.Context, status models.MachineStatus) ([]Machine, error) {
	var dtos []models.MachineDto
	if err := c.do(ctx, http.MethodGet, "/machines/by-status/"+url.PathEscape(string(status)), nil, &dtos); err != nil {
		return nil, err
	}
	return mapMachines(dtos), nil
}

// GetMachinesByLocation fetches machines by country and, optionally, city.
func (c *Client) GetMachinesByLocation(ctx context.Context, country, city string) ([]Machine, error) {
	params := url.Values{"country": {country}}
	if city != "" {
		params.Set("city", city)
	}
	var dtos []models.MachineDto
	if err := c.do(ctx, http.MethodGet, "/machines/by-location?"+params.Encode(), nil, &dtos); err != nil {
		return nil, err
	}
	return mapMachines(dtos), nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	}

	if resp.StatusCode >= 400 {
		var msg models.MessageResponse
		if err := json.NewDecoder(resp.Body).Decode(&msg); err == nil && msg.Message != "" {
			return fmt.Errorf("server rejected request: %s", msg.Message)
		}
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func mapMachines(dtos []models.MachineDto) []Machine {
	machines := make([]Machine, 0, len(dtos))
	for _, dto := range dtos {
		machines = append(machines, mapMachine(dto))
	}
	return machines
}

func mapMachine(dto models.MachineDto) Machine {
	tubes := make([]Tube, 0, len(dto.Tubes))
	for _, t := range dto.Tubes {
		tubes = append(tubes, Tube{
			TubeIndex:        t.TubeIndex,
			TubeType:         t.TubeType,
			PurgingConnected: t.PurgingConnected,
			ShutterExists:    t.ShutterExists,
		})
	}

	m := Machine{
		ID:             dto.ID,
		Name:           dto.Name,
		Model:          dto.Model,
		Status:         dto.Status,
		PlcVersion:     dto.PlcVersion,
		AcsVersion:     dto.AcsVersion,
		TubesNumber:    dto.TubesNumber,
		Tubes:          tubes,
		Owner:          dto.Owner,
		TeamviewerName: dto.TeamviewerName,
		Location: Location{
			Country:   dto.Location.Country,
			City:      dto.Location.City,
			Latitude:  dto.Location.Latitude,
			Longitude: dto.Location.Longitude,
		},
		CreatedAt: dto.CreatedAt,
		UpdatedAt: dto.UpdatedAt,
	}
	m.Temperature, m.Efficiency = deriveTelemetry(m.Name, m.Status)
	return m
}

// deriveTelemetry synthesizes stable per-machine telemetry from the name and
// the current status, so the dashboard has gauges to render without a
// telemetry feed. Same name and status always produce the same numbers.
func deriveTelemetry(name string, status models.MachineStatus) (temperature float64, efficiency int) {
	h := fnv.New32a()
	h.Write([]byte(name))
	seed := h.Sum32()

	switch status {
	case models.StatusRunning:
		return 55 + float64(seed%25), 85 + int(seed%15)
	case models.StatusIdle:
		return 30 + float64(seed%10), 30 + int(seed%20)
	case models.StatusMaintenance:
		return 25 + float64(seed%5), 10 + int(seed%10)
	case models.StatusError:
		return 80 + float64(seed%15), 0
	default:
		return 0, 0
	}
}
