// Package kitchenowl is a thin client for the KitchenOwl shopping-list API.
//
// All calls are scoped to one household. The shopping list is either the one
// configured explicitly or the first list of the household; its id is looked
// up once and reused for the lifetime of the Client. Requests are never
// retried. When enabled, a circuit breaker fails calls fast while the API is
// returning transport errors or 5xx replies.
package kitchenowl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/nadzzz/owlskill/internal/config"
	"github.com/nadzzz/owlskill/internal/metrics"
)

// maxResponseBytes caps how much of a reply body is read.
const maxResponseBytes = 4 << 20

// ErrNoShoppingList is returned when the household has no shopping list, or
// the configured list is not one of them.
var ErrNoShoppingList = errors.New("no shopping list found")

// Item is one entry on a shopping list.
type Item struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ShoppingList is a household shopping list with its current items.
type ShoppingList struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// RemoveResult reports how many list entries matched a name and how many of
// those were deleted.
type RemoveResult struct {
	Matched int
	Removed int
}

// Partial reports whether some, but not all, matching entries were removed.
func (r RemoveResult) Partial() bool {
	return r.Removed > 0 && r.Removed < r.Matched
}

// APIError is a non-2xx reply from the KitchenOwl API.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("kitchenowl %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Client talks to one KitchenOwl household.
type Client struct {
	baseURL     string
	apiKey      string
	householdID string
	configured  string // shopping list id from config, may be empty
	http        *http.Client
	breaker     *gobreaker.CircuitBreaker // nil when disabled

	mu     sync.Mutex
	listID string // memoized after the first successful lookup
}

// New creates a client from config.
func New(cfg config.KitchenOwlConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL:     strings.TrimRight(cfg.APIURL, "/"),
		apiKey:      cfg.APIKey,
		householdID: cfg.HouseholdID,
		configured:  cfg.ShoppingListID,
		http:        &http.Client{Timeout: timeout},
	}
	if cfg.Breaker.Enabled {
		c.breaker = newBreaker(cfg.Breaker)
	}
	return c
}

func newBreaker(cfg config.BreakerConfig) *gobreaker.CircuitBreaker {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "kitchenowl",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			// A 4xx or a caller hanging up is not an outage.
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			var apiErr *APIError
			return errors.As(err, &apiErr) && apiErr.StatusCode < 500
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			metrics.BreakerState.Set(float64(to))
		},
	})
}

// Healthy reports whether calls are currently let through to the API.
func (c *Client) Healthy() bool {
	return c.breaker == nil || c.breaker.State() != gobreaker.StateOpen
}

// ShoppingLists returns all shopping lists of the household, with items.
func (c *Client) ShoppingLists(ctx context.Context) ([]ShoppingList, error) {
	var lists []ShoppingList
	path := "/household/" + c.householdID + "/shoppinglist"
	if err := c.do(ctx, "shopping_lists", http.MethodGet, path, nil, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

// ListID returns the id of the shopping list the skill works on.
func (c *Client) ListID(ctx context.Context) (string, error) {
	return c.resolveListID(ctx, nil)
}

// resolveListID returns the memoized list id, resolving it on first use.
// lists, when non-nil, is a fresh ShoppingLists result that saves a request.
func (c *Client) resolveListID(ctx context.Context, lists []ShoppingList) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.listID != "" {
		return c.listID, nil
	}
	if c.configured != "" {
		c.listID = c.configured
		return c.listID, nil
	}
	if lists == nil {
		var err error
		if lists, err = c.ShoppingLists(ctx); err != nil {
			return "", fmt.Errorf("resolving shopping list: %w", err)
		}
	}
	if len(lists) == 0 {
		return "", fmt.Errorf("%w in household %s", ErrNoShoppingList, c.householdID)
	}
	c.listID = strconv.FormatInt(lists[0].ID, 10)
	slog.Debug("resolved shopping list", "list_id", c.listID, "name", lists[0].Name)
	return c.listID, nil
}

// currentList fetches the selected shopping list.
func (c *Client) currentList(ctx context.Context) (*ShoppingList, error) {
	lists, err := c.ShoppingLists(ctx)
	if err != nil {
		return nil, err
	}
	id, err := c.resolveListID(ctx, lists)
	if err != nil {
		return nil, err
	}
	for i := range lists {
		if strconv.FormatInt(lists[i].ID, 10) == id {
			return &lists[i], nil
		}
	}
	return nil, fmt.Errorf("%w: list %s is not in household %s", ErrNoShoppingList, id, c.householdID)
}

// ListItems returns the names of the items on the shopping list, in API order.
func (c *Client) ListItems(ctx context.Context) ([]string, error) {
	list, err := c.currentList(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(list.Items))
	for _, it := range list.Items {
		names = append(names, it.Name)
	}
	return names, nil
}

// AddItem puts an item on the shopping list by name. KitchenOwl creates the
// item if it doesn't know it yet.
func (c *Client) AddItem(ctx context.Context, name string) error {
	id, err := c.ListID(ctx)
	if err != nil {
		return err
	}
	body := map[string]string{"name": name}
	return c.do(ctx, "add_item", http.MethodPost, "/shoppinglist/"+id+"/add-item-by-name", body, nil)
}

// RemoveItem deletes every entry whose name equals name, ignoring case.
// A failed delete does not stop the remaining ones; an error is returned
// only if the list could not be read or nothing at all could be deleted.
func (c *Client) RemoveItem(ctx context.Context, name string) (RemoveResult, error) {
	ids, err := c.CheckItem(ctx, name)
	if err != nil {
		return RemoveResult{}, err
	}
	id, err := c.ListID(ctx)
	if err != nil {
		return RemoveResult{}, err
	}

	res := RemoveResult{Matched: len(ids)}
	var lastErr error
	for _, itemID := range ids {
		body := map[string]int64{"item_id": itemID}
		if err := c.do(ctx, "remove_item", http.MethodDelete, "/shoppinglist/"+id+"/item", body, nil); err != nil {
			slog.Warn("removing item failed", "item", name, "item_id", itemID, "error", err)
			lastErr = err
			continue
		}
		res.Removed++
	}
	if res.Matched > 0 && res.Removed == 0 {
		return res, fmt.Errorf("removing %q: %w", name, lastErr)
	}
	return res, nil
}

// CheckItem returns the ids of the entries whose name equals name, ignoring case.
func (c *Client) CheckItem(ctx context.Context, name string) ([]int64, error) {
	list, err := c.currentList(ctx)
	if err != nil {
		return nil, err
	}
	var ids []int64
	for _, it := range list.Items {
		if strings.EqualFold(it.Name, name) {
			ids = append(ids, it.ID)
		}
	}
	return ids, nil
}

// do sends one request and decodes a JSON reply into out (if non-nil).
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: marshalling body: %w", op, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: creating request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	data, err := c.send(req)
	metrics.UpstreamDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	metrics.UpstreamRequestsTotal.WithLabelValues(op, resultCode(err)).Inc()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	slog.Debug("kitchenowl request", "op", op, "method", method, "path", path, "duration", time.Since(start))

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decoding response: %w", op, err)
	}
	return nil
}

// send runs the exchange, through the breaker when one is configured.
func (c *Client) send(req *http.Request) ([]byte, error) {
	if c.breaker == nil {
		return c.exchange(req)
	}
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.exchange(req)
	})
	data, _ := out.([]byte)
	return data, err
}

// exchange performs the HTTP round trip and reads the reply body.
func (c *Client) exchange(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := string(data)
		if len(msg) > 512 {
			msg = msg[:512]
		}
		return nil, &APIError{
			Method:     req.Method,
			Path:       req.URL.Path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(msg),
		}
	}
	return data, nil
}

// resultCode is the metrics label for the outcome of one request.
func resultCode(err error) string {
	if err == nil {
		return "2xx"
	}
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return strconv.Itoa(apiErr.StatusCode)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "open"
	default:
		return "error"
	}
}
