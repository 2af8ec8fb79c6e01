package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/vikascool786/mezbaani-desktop/models"
)

const defaultBaseURL = "https://vitsolutions24x7.com/mezbaani/api"

var (
	// ErrUnauthorized means the remote rejected the bearer token. The local
	// session row is not touched here; the caller decides.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidPayload means a remote response did not have the expected
	// shape. Such a sync is aborted, never partially applied.
	ErrInvalidPayload = errors.New("invalid API response")
)

// APIClient talks to the remote Mezbaani REST service. Every response
// envelope is normalized here: the sync engine only ever sees typed slices.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

var (
	apiClient     *APIClient
	apiClientOnce sync.Once
)

// GetAPIClient returns the singleton client configured from the
// environment.
func GetAPIClient() *APIClient {
	apiClientOnce.Do(func() {
		baseURL := os.Getenv("POS_API_BASE_URL")
		if baseURL == "" {
			baseURL = defaultBaseURL
		}
		apiClient = NewAPIClient(baseURL)
	})
	return apiClient
}

// NewAPIClient builds a client against baseURL. Tests point this at an
// httptest server.
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Money unmarshals remote monetary fields that arrive either as JSON
// numbers or as decimal strings ("450.00").
type Money float64

func (m *Money) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*m = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("money %q: %w", s, err)
		}
		*m = Money(f)
		return nil
	}
	if string(data) == "null" {
		*m = 0
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*m = Money(f)
	return nil
}

// LoginResult is the POST /auth/login response.
type LoginResult struct {
	Token string    `json:"token"`
	User  LoginUser `json:"user"`
}

type LoginUser struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	RoleName     string `json:"roleName"`
	RestaurantID string `json:"restaurantId"`
}

// DashboardTablePayload is one row of the remote dashboard snapshot.
type DashboardTablePayload struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Section         string `json:"section"`
	Seats           int    `json:"seats"`
	Status          string `json:"status"`
	IsOccupied      bool   `json:"isOccupied"`
	Duration        string `json:"duration"`
	CustomerName    string `json:"customerName"`
	Amount          Money  `json:"amount"`
	ReservationTime string `json:"reservationTime"`
}

// OrderPayload is an order as the remote service serializes it, nested
// items included.
type OrderPayload struct {
	ID            string             `json:"id"`
	Status        string             `json:"status"`
	OrderNumber   string             `json:"orderNumber"`
	Subtotal      Money              `json:"subtotal"`
	TaxAmount     Money              `json:"taxAmount"`
	Total         Money              `json:"total"`
	DiscountType  *string            `json:"discountType"`
	DiscountValue *Money             `json:"discountValue"`
	ServiceCharge Money              `json:"serviceCharge"`
	GstPercent    Money              `json:"gstPercent"`
	OpenedAt      string             `json:"openedAt"`
	ClosedAt      *string            `json:"closedAt"`
	CreatedAt     string             `json:"createdAt"`
	UpdatedAt     string             `json:"updatedAt"`
	RestaurantID  string             `json:"restaurantId"`
	TableID       string             `json:"tableId"`
	UserID        string             `json:"userId"`
	Items         []OrderItemPayload `json:"items"`
}

// NormalizedDiscount defaults a missing discount to FLAT 0, matching what
// the remote stores for orders created without one.
func (p *OrderPayload) NormalizedDiscount() (string, float64) {
	if p.DiscountType == nil && p.DiscountValue == nil {
		return models.DiscountTypeFlat, 0
	}
	discountType := models.DiscountTypeFlat
	if p.DiscountType != nil {
		discountType = *p.DiscountType
	}
	var value float64
	if p.DiscountValue != nil {
		value = float64(*p.DiscountValue)
	}
	return discountType, value
}

type OrderItemPayload struct {
	OrderID           string `json:"orderId"`
	MenuItemID        string `json:"menuItemId"`
	Quantity          int    `json:"quantity"`
	OriginalQuantity  int    `json:"originalQuantity"`
	QuantityPrinted   int    `json:"quantityPrinted"`
	QuantityServed    int    `json:"quantityServed"`
	QuantityCancelled int    `json:"quantityCancelled"`
	CreatedAt         string `json:"createdAt"`
	UpdatedAt         string `json:"updatedAt"`
}

/* ----------------------------------
   AUTH
----------------------------------- */

func (ac *APIClient) Login(phone, password string) (*LoginResult, error) {
	body := map[string]string{"phone": phone, "password": password}
	var result LoginResult
	if err := ac.call(http.MethodPost, "/auth/login", "", body, &result); err != nil {
		return nil, err
	}
	if result.Token == "" {
		return nil, fmt.Errorf("%w: login response missing token", ErrInvalidPayload)
	}
	return &result, nil
}

/* ----------------------------------
   MASTER COLLECTIONS
----------------------------------- */

func (ac *APIClient) FetchRoles(token string) ([]models.Role, error) {
	var envelope struct {
		Roles []models.Role `json:"roles"`
	}
	if err := ac.call(http.MethodGet, "/roles", token, nil, &envelope); err != nil {
		return nil, err
	}
	if envelope.Roles == nil {
		return nil, fmt.Errorf("%w: roles missing", ErrInvalidPayload)
	}
	return envelope.Roles, nil
}

// FetchRestaurants: this endpoint returns a bare array.
func (ac *APIClient) FetchRestaurants(token string) ([]models.Restaurant, error) {
	var restaurants []models.Restaurant
	if err := ac.call(http.MethodGet, "/restaurants", token, nil, &restaurants); err != nil {
		return nil, err
	}
	if restaurants == nil {
		return nil, fmt.Errorf("%w: restaurants missing", ErrInvalidPayload)
	}
	return restaurants, nil
}

func (ac *APIClient) FetchTables(token, restaurantID string) ([]models.Table, error) {
	var envelope struct {
		Tables []models.Table `json:"tables"`
	}
	path := "/tables/" + restaurantID
	if err := ac.call(http.MethodGet, path, token, nil, &envelope); err != nil {
		return nil, err
	}
	if envelope.Tables == nil {
		return nil, fmt.Errorf("%w: tables missing", ErrInvalidPayload)
	}
	return envelope.Tables, nil
}

func (ac *APIClient) FetchDashboardTables(token, restaurantID string) ([]DashboardTablePayload, error) {
	var envelope struct {
		Tables []DashboardTablePayload `json:"tables"`
	}
	path := "/dashboard/tables/" + restaurantID
	if err := ac.call(http.MethodGet, path, token, nil, &envelope); err != nil {
		return nil, err
	}
	if envelope.Tables == nil {
		return nil, fmt.Errorf("%w: dashboard tables missing", ErrInvalidPayload)
	}
	return envelope.Tables, nil
}

func (ac *APIClient) FetchMenuCategories(token string) ([]models.MenuCategory, error) {
	var envelope struct {
		Categories []models.MenuCategory `json:"categories"`
	}
	if err := ac.call(http.MethodGet, "/menu-categories", token, nil, &envelope); err != nil {
		return nil, err
	}
	if envelope.Categories == nil {
		return nil, fmt.Errorf("%w: categories missing", ErrInvalidPayload)
	}
	return envelope.Categories, nil
}

func (ac *APIClient) FetchMenuItems(token string) ([]models.MenuItem, error) {
	var envelope struct {
		Items []models.MenuItem `json:"items"`
	}
	if err := ac.call(http.MethodGet, "/menu-items", token, nil, &envelope); err != nil {
		return nil, err
	}
	if envelope.Items == nil {
		return nil, fmt.Errorf("%w: items missing", ErrInvalidPayload)
	}
	return envelope.Items, nil
}

/* ----------------------------------
   ORDERS
----------------------------------- */

// FetchOrders: bare array.
func (ac *APIClient) FetchOrders(token string) ([]OrderPayload, error) {
	var orders []OrderPayload
	if err := ac.call(http.MethodGet, "/orders", token, nil, &orders); err != nil {
		return nil, err
	}
	if orders == nil {
		return nil, fmt.Errorf("%w: orders missing", ErrInvalidPayload)
	}
	return orders, nil
}

// FetchOrderByTable returns (nil, nil) on 404: a vacant table is an
// expected outcome, not an error.
func (ac *APIClient) FetchOrderByTable(token, tableID string) (*OrderPayload, error) {
	var order OrderPayload
	err := ac.call(http.MethodGet, "/orders/table/"+tableID, token, nil, &order)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (ac *APIClient) FetchOrderByID(token, orderID string) (*OrderPayload, error) {
	var order OrderPayload
	if err := ac.call(http.MethodGet, "/orders/"+orderID, token, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (ac *APIClient) CreateOrder(token string, body interface{}) error {
	return ac.call(http.MethodPost, "/orders", token, body, nil)
}

func (ac *APIClient) UpdateOrder(token, orderID string, body interface{}) error {
	return ac.call(http.MethodPut, "/orders/"+orderID, token, body, nil)
}

func (ac *APIClient) UpdateOrderItemStatus(token, orderID, menuItemID string, body interface{}) error {
	path := "/order-items/status/" + orderID + "/" + menuItemID
	return ac.call(http.MethodPut, path, token, body, nil)
}

/* ----------------------------------
   BILLING
----------------------------------- */

func (ac *APIClient) GenerateBill(token, orderID string) error {
	return ac.call(http.MethodPost, "/bill/"+orderID+"/generate", token, nil, nil)
}

func (ac *APIClient) RecordPayment(token, orderID string, amount float64, method string) error {
	body := map[string]interface{}{
		"amount": amount,
		"method": method,
	}
	return ac.call(http.MethodPost, "/payment/"+orderID+"/pay", token, body, nil)
}

func (ac *APIClient) FetchBill(token, orderID string) (json.RawMessage, error) {
	var bill json.RawMessage
	if err := ac.call(http.MethodGet, "/orders/"+orderID+"/bill", token, nil, &bill); err != nil {
		return nil, err
	}
	return bill, nil
}

/* ----------------------------------
   TRANSPORT
----------------------------------- */

var errNotFound = errors.New("not found")

func (ac *APIClient) call(method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, ac.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := ac.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case res.StatusCode == http.StatusNotFound:
		return errNotFound
	case res.StatusCode < 200 || res.StatusCode >= 300:
		var apiErr struct {
			Message string `json:"message"`
		}
		raw, _ := io.ReadAll(res.Body)
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Message)
		}
		return fmt.Errorf("%s %s: status %d", method, path, res.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}
