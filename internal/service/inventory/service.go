package inventory

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/stockdesk/internal/domain/models"
	"github.com/mamadbah2/stockdesk/internal/service/directory"
)

var (
	// ErrValidation marks local input rejected before any backend call.
	ErrValidation = errors.New("invalid input")
	// ErrUnrecognizedPayload is returned when a scanned payload carries no code.
	ErrUnrecognizedPayload = errors.New("unrecognized scan payload")
	// ErrInvalidCredentials is returned when a user id and pin do not match.
	ErrInvalidCredentials = errors.New("invalid user id or pin")
)

// Source reads the collections that make up a snapshot.
type Source interface {
	ListItems(ctx context.Context) ([]models.Item, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	ListHistory(ctx context.Context) ([]models.HistoryRecord, error)
	MonthlySeries(ctx context.Context) ([]models.MonthlySeriesPoint, error)
}

// Writer performs backend mutations and single-item lookups.
type Writer interface {
	ItemByCode(ctx context.Context, code string) (models.Item, bool, error)
	AddItem(ctx context.Context, item models.Item) error
	UpdateItem(ctx context.Context, item models.Item) error
	DeleteItem(ctx context.Context, code string) error
	AddUser(ctx context.Context, user models.User) error
	LogMovement(ctx context.Context, req models.MovementRequest) error
	UpdateHistory(ctx context.Context, record models.HistoryRecord) error
}

// Backend is everything the service needs from the data store.
type Backend interface {
	Source
	Writer
}

// ScanResult is the outcome of resolving a scanned label.
type ScanResult struct {
	Payload models.ScanPayload `json:"payload"`
	Found   bool               `json:"found"`
	Item    *models.Item       `json:"item,omitempty"`
	User    *models.User       `json:"user,omitempty"`
}

// Service owns the application snapshot. It starts empty, is replaced
// wholesale by every successful reload and is never patched locally.
type Service struct {
	backend Backend
	logger  *zap.Logger
	now     func() time.Time

	mu       sync.RWMutex
	snapshot models.Snapshot

	subMu       sync.Mutex
	subscribers map[int]chan models.Snapshot
	nextSubID   int
}

// NewService wires the state controller on top of a backend.
func NewService(backend Backend, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		backend:     backend,
		logger:      logger,
		now:         time.Now,
		snapshot:    emptySnapshot(),
		subscribers: make(map[int]chan models.Snapshot),
	}
}

func emptySnapshot() models.Snapshot {
	return models.Snapshot{
		Items:         []models.Item{},
		Users:         []models.User{},
		History:       []models.HistoryRecord{},
		MonthlySeries: []models.MonthlySeriesPoint{},
	}
}

// Snapshot returns the current snapshot. Callers must treat it as read-only.
func (s *Service) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Reload fetches every collection and swaps the snapshot in one step. If any
// fetch fails the previous snapshot stays in place. Concurrent reloads are
// not coalesced; whichever finishes last wins.
func (s *Service) Reload(ctx context.Context) (models.Snapshot, error) {
	next := emptySnapshot()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := s.backend.ListItems(gctx)
		if err != nil {
			return fmt.Errorf("load items: %w", err)
		}
		next.Items = items
		return nil
	})
	g.Go(func() error {
		users, err := s.backend.ListUsers(gctx)
		if err != nil {
			return fmt.Errorf("load users: %w", err)
		}
		next.Users = users
		return nil
	})
	g.Go(func() error {
		history, err := s.backend.ListHistory(gctx)
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}
		next.History = history
		return nil
	})
	g.Go(func() error {
		series, err := s.backend.MonthlySeries(gctx)
		if err != nil {
			return fmt.Errorf("load monthly series: %w", err)
		}
		next.MonthlySeries = series
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Warn("snapshot reload failed", zap.Error(err))
		return models.Snapshot{}, err
	}

	next.LoadedAt = s.now().UTC()

	s.mu.Lock()
	s.snapshot = next
	s.mu.Unlock()

	s.logger.Info("snapshot reloaded",
		zap.Int("items", len(next.Items)),
		zap.Int("users", len(next.Users)),
		zap.Int("history", len(next.History)))

	s.publish(next)
	return next, nil
}

// Subscribe registers for snapshot replacements. Slow listeners only see the
// latest snapshot. The returned func unsubscribes and closes the channel.
func (s *Service) Subscribe() (<-chan models.Snapshot, func()) {
	ch := make(chan models.Snapshot, 1)

	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subscribers, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
}

func (s *Service) publish(snap models.Snapshot) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for _, ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

// FindItem looks an item up in the current snapshot.
func (s *Service) FindItem(code string) (models.Item, bool) {
	return directory.FindItem(s.Snapshot().Items, code)
}

// FindUser looks a user up in the current snapshot.
func (s *Service) FindUser(id string) (models.User, bool) {
	return directory.FindUser(s.Snapshot().Users, id)
}

// Authenticate checks a user id and pin against the current snapshot.
func (s *Service) Authenticate(id, pin string) (models.User, error) {
	user, ok := s.FindUser(strings.TrimSpace(id))
	if !ok || user.PIN == "" || subtle.ConstantTimeCompare([]byte(user.PIN), []byte(pin)) != 1 {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// LookupScan decodes a scanned label and resolves it against the snapshot.
// Items missing from the snapshot are looked up on the backend.
func (s *Service) LookupScan(ctx context.Context, raw string) (ScanResult, error) {
	payload, ok := models.DecodePayload(raw)
	if !ok {
		return ScanResult{}, ErrUnrecognizedPayload
	}

	result := ScanResult{Payload: payload}
	switch payload.Kind {
	case models.ScanUser:
		if user, found := s.FindUser(payload.Code); found {
			public := user.Public()
			result.User = &public
			result.Found = true
		}
	default:
		if item, found := s.FindItem(payload.Code); found {
			result.Item = &item
			result.Found = true
			return result, nil
		}
		item, found, err := s.backend.ItemByCode(ctx, payload.Code)
		if err != nil {
			return ScanResult{}, fmt.Errorf("lookup item %s: %w", payload.Code, err)
		}
		if found {
			result.Item = &item
			result.Found = true
		}
	}

	return result, nil
}

// AddItem validates and creates an item, then reloads.
func (s *Service) AddItem(ctx context.Context, item models.Item) error {
	item, err := normalizeItem(item)
	if err != nil {
		return err
	}
	return s.mutate(ctx, "addItem", func(ctx context.Context) error {
		return s.backend.AddItem(ctx, item)
	})
}

// UpdateItem validates and replaces an item, then reloads.
func (s *Service) UpdateItem(ctx context.Context, item models.Item) error {
	item, err := normalizeItem(item)
	if err != nil {
		return err
	}
	return s.mutate(ctx, "updateItem", func(ctx context.Context) error {
		return s.backend.UpdateItem(ctx, item)
	})
}

// DeleteItem removes an item, then reloads.
func (s *Service) DeleteItem(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("%w: code is required", ErrValidation)
	}
	return s.mutate(ctx, "deleteItem", func(ctx context.Context) error {
		return s.backend.DeleteItem(ctx, code)
	})
}

// AddUser validates and creates a user, then reloads.
func (s *Service) AddUser(ctx context.Context, user models.User) error {
	user.ID = strings.TrimSpace(user.ID)
	user.Name = strings.TrimSpace(user.Name)
	user.Role = models.ParseRole(string(user.Role))
	if user.ID == "" {
		return fmt.Errorf("%w: id is required", ErrValidation)
	}
	if user.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if strings.TrimSpace(user.PIN) == "" {
		return fmt.Errorf("%w: pin is required", ErrValidation)
	}
	return s.mutate(ctx, "addUser", func(ctx context.Context) error {
		return s.backend.AddUser(ctx, user)
	})
}

// LogMovement validates and records a stock movement, then reloads.
func (s *Service) LogMovement(ctx context.Context, req models.MovementRequest) error {
	req.UserID = strings.TrimSpace(req.UserID)
	req.Code = strings.TrimSpace(req.Code)
	req.Unit = strings.TrimSpace(req.Unit)

	if req.UserID == "" {
		return fmt.Errorf("%w: user is required", ErrValidation)
	}
	if req.Code == "" {
		return fmt.Errorf("%w: code is required", ErrValidation)
	}
	if err := validateQty(req.Qty); err != nil {
		return err
	}
	mt, ok := models.ParseMovementType(string(req.Type))
	if !ok {
		return fmt.Errorf("%w: type must be IN or OUT", ErrValidation)
	}
	req.Type = mt

	return s.mutate(ctx, "log", func(ctx context.Context) error {
		return s.backend.LogMovement(ctx, req)
	})
}

// UpdateHistory validates and edits a history row, then reloads.
func (s *Service) UpdateHistory(ctx context.Context, record models.HistoryRecord) error {
	record.Code = strings.TrimSpace(record.Code)
	if record.RowNumber <= 0 {
		return fmt.Errorf("%w: row number must be positive", ErrValidation)
	}
	if record.Code == "" {
		return fmt.Errorf("%w: code is required", ErrValidation)
	}
	if err := validateQty(record.Qty); err != nil {
		return err
	}
	mt, ok := models.ParseMovementType(string(record.Type))
	if !ok {
		return fmt.Errorf("%w: type must be IN or OUT", ErrValidation)
	}
	record.Type = mt

	return s.mutate(ctx, "updateHistory", func(ctx context.Context) error {
		return s.backend.UpdateHistory(ctx, record)
	})
}

// mutate runs a backend write and reloads the snapshot after it succeeds.
// A failed write leaves the snapshot untouched. A failed reload after a
// successful write is logged and the write still counts as done.
func (s *Service) mutate(ctx context.Context, action string, write func(context.Context) error) error {
	if err := write(ctx); err != nil {
		s.logger.Warn("backend write failed", zap.String("action", action), zap.Error(err))
		return err
	}

	if _, err := s.Reload(ctx); err != nil {
		s.logger.Warn("reload after write failed", zap.String("action", action), zap.Error(err))
	}
	return nil
}

func normalizeItem(item models.Item) (models.Item, error) {
	item.Code = strings.TrimSpace(item.Code)
	item.Name = strings.TrimSpace(item.Name)
	if item.Code == "" {
		return item, fmt.Errorf("%w: code is required", ErrValidation)
	}
	if strings.Contains(item.Code, "|") {
		return item, fmt.Errorf("%w: code must not contain '|'", ErrValidation)
	}
	if !finite(item.Price) || item.Price < 0 {
		return item, fmt.Errorf("%w: price must be zero or more", ErrValidation)
	}
	if !finite(item.Stock) || !finite(item.Min) || item.Min < 0 {
		return item, fmt.Errorf("%w: stock and min must be numbers, min zero or more", ErrValidation)
	}
	return item, nil
}

func validateQty(qty float64) error {
	if !finite(qty) || qty <= 0 {
		return fmt.Errorf("%w: quantity must be a positive number", ErrValidation)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
