package inventoryapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockdesk/internal/config"
	"github.com/mamadbah2/stockdesk/internal/domain/models"
)

// ErrUnexpectedBody is returned when the backend answers with something that is not JSON.
var ErrUnexpectedBody = errors.New("backend response is not JSON")

const (
	actionItems         = "items"
	actionUsers         = "users"
	actionHistory       = "history"
	actionMonthlySeries = "statsMonthlySeries"
	actionItemByCode    = "item"
	actionAddItem       = "addItem"
	actionUpdateItem    = "updateItem"
	actionDeleteItem    = "deleteItem"
	actionAddUser       = "addUser"
	actionLog           = "log"
	actionUpdateHistory = "updateHistory"
)

// APIClient is a resty-backed client for the spreadsheet action endpoint.
// Reads are GET requests and writes POST a JSON body; both carry the action
// name and API key as query parameters. Nothing is retried.
type APIClient struct {
	httpClient *resty.Client
	endpoint   string
	logger     *zap.Logger
}

// NewClient builds a backend client using the provided configuration values.
func NewClient(cfg config.BackendConfig, logger *zap.Logger) *APIClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	restyClient := resty.New()
	restyClient.
		SetQueryParam("key", cfg.APIKey).
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout)

	return &APIClient{
		httpClient: restyClient,
		endpoint:   cfg.BaseURL,
		logger:     logger,
	}
}

// ListItems fetches the full item table.
func (c *APIClient) ListItems(ctx context.Context) ([]models.Item, error) {
	rows, err := fetchList[wireItem](ctx, c, actionItems, "items")
	if err != nil {
		return nil, err
	}
	items := make([]models.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.model())
	}
	return items, nil
}

// ListUsers fetches the full user table.
func (c *APIClient) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := fetchList[wireUser](ctx, c, actionUsers, "users")
	if err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.model())
	}
	return users, nil
}

// ListHistory fetches every recorded movement.
func (c *APIClient) ListHistory(ctx context.Context) ([]models.HistoryRecord, error) {
	rows, err := fetchList[wireHistory](ctx, c, actionHistory, "history")
	if err != nil {
		return nil, err
	}
	history := make([]models.HistoryRecord, 0, len(rows))
	for _, row := range rows {
		history = append(history, row.model())
	}
	return history, nil
}

// MonthlySeries fetches the backend's precomputed in/out series.
func (c *APIClient) MonthlySeries(ctx context.Context) ([]models.MonthlySeriesPoint, error) {
	rows, err := fetchList[wireSeriesPoint](ctx, c, actionMonthlySeries, "series")
	if err != nil {
		return nil, err
	}
	series := make([]models.MonthlySeriesPoint, 0, len(rows))
	for _, row := range rows {
		series = append(series, row.model())
	}
	return series, nil
}

// ItemByCode asks the backend for a single item. The boolean is false when the backend does not know the code.
func (c *APIClient) ItemByCode(ctx context.Context, code string) (models.Item, bool, error) {
	body, err := c.read(ctx, actionItemByCode, map[string]string{"code": code})
	if err != nil {
		return models.Item{}, false, err
	}

	raw, err := extractObject(actionItemByCode, body, "item")
	if err != nil {
		return models.Item{}, false, fmt.Errorf("%s: %w", actionItemByCode, err)
	}
	if raw == nil {
		return models.Item{}, false, nil
	}

	list, _ := decodeEach[wireItem]([]json.RawMessage{raw})
	if len(list) == 0 || list[0].Code == "" {
		return models.Item{}, false, nil
	}
	return list[0].model(), true, nil
}

// AddItem creates a new item.
func (c *APIClient) AddItem(ctx context.Context, item models.Item) error {
	return c.write(ctx, actionAddItem, item)
}

// UpdateItem replaces the item identified by item.Code.
func (c *APIClient) UpdateItem(ctx context.Context, item models.Item) error {
	return c.write(ctx, actionUpdateItem, item)
}

// DeleteItem removes the item with the given code.
func (c *APIClient) DeleteItem(ctx context.Context, code string) error {
	return c.write(ctx, actionDeleteItem, map[string]string{"code": code})
}

// AddUser creates a new user.
func (c *APIClient) AddUser(ctx context.Context, user models.User) error {
	return c.write(ctx, actionAddUser, user)
}

// LogMovement records a stock movement; the backend adjusts stock.
func (c *APIClient) LogMovement(ctx context.Context, req models.MovementRequest) error {
	return c.write(ctx, actionLog, req)
}

// UpdateHistory edits the history row identified by record.RowNumber.
func (c *APIClient) UpdateHistory(ctx context.Context, record models.HistoryRecord) error {
	return c.write(ctx, actionUpdateHistory, record)
}

func fetchList[T any](ctx context.Context, c *APIClient, action, key string) ([]T, error) {
	body, err := c.read(ctx, action, nil)
	if err != nil {
		return nil, err
	}

	list, err := extractList(action, body, key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}

	rows, skipped := decodeEach[T](list)
	if skipped > 0 {
		c.logger.Warn("skipped malformed rows", zap.String("action", action), zap.Int("skipped", skipped))
	}
	return rows, nil
}

func (c *APIClient) read(ctx context.Context, action string, params map[string]string) ([]byte, error) {
	start := time.Now()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("action", action).
		SetQueryParams(params).
		Get(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", action, err)
	}

	c.logger.Debug("backend read",
		zap.String("action", action),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, fmt.Errorf("fetch %s: backend responded with status %d", action, resp.StatusCode())
	}

	return resp.Body(), nil
}

func (c *APIClient) write(ctx context.Context, action string, payload any) error {
	start := time.Now()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("action", action).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(c.endpoint)
	if err != nil {
		return fmt.Errorf("send %s: %w", action, err)
	}

	c.logger.Debug("backend write",
		zap.String("action", action),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("send %s: backend responded with status %d", action, resp.StatusCode())
	}

	var result writeResult
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return fmt.Errorf("send %s: %w", action, ErrUnexpectedBody)
	}

	if !result.OK {
		message := result.Error
		if message == "" {
			message = "unknown error"
		}
		return &models.BackendError{Action: action, Message: message}
	}

	return nil
}
