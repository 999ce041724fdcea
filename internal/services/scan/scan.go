// Package services содержит бизнес-логику для управления запросами на сканирование и кешированием.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"regexp"
	"time"

	"github.com/vigilhub/scantrack/internal/models"
)

// ErrInvalidTarget возвращается, если значение цели не соответствует её типу.
var ErrInvalidTarget = errors.New("invalid scan target")

// DefaultListLimit — размер страницы списка по умолчанию.
const DefaultListLimit = 50

// Доменное имя: метки из букв, цифр и дефисов, разделенные точками,
// последняя метка не короче двух символов.
var domainPattern = regexp.MustCompile(`^([a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}$`)

// ScanRepository определяет методы для работы со сканированиями в хранилище.
type ScanRepository interface {
	// CreateScan добавляет новый запрос на сканирование и возвращает созданную запись.
	CreateScan(ctx context.Context, scan models.Scan) (*models.Scan, error)
	// ListScansByOwner возвращает сканирования пользователя с пагинацией,
	// новые первыми.
	ListScansByOwner(ctx context.Context, ownerUID string, limit, offset int) ([]*models.Scan, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// ScanService реализует бизнес-логику работы со сканированиями, включая кеширование.
type ScanService struct {
	repo  ScanRepository
	cache Cache
	log   *slog.Logger
}

// NewScanService создает новый экземпляр ScanService.
func NewScanService(repo ScanRepository, cache Cache, log *slog.Logger) *ScanService {
	return &ScanService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Create создает новый запрос на сканирование для пользователя.
// Значение цели проверяется по её типу: для ip — разбор адреса,
// для domain — соответствие формату доменного имени. Запись создаётся
// со статусом pending и пустыми результатами.
func (s *ScanService) Create(ctx context.Context, ownerUID string, req models.DummyScan) (*models.Scan, error) {
	if err := validateTarget(req.TargetType, req.TargetValue); err != nil {
		return nil, err
	}

	scan := models.Scan{
		OwnerUID:    ownerUID,
		TargetType:  req.TargetType,
		TargetValue: req.TargetValue,
		Status:      models.ScanStatusPending,
	}

	created, err := s.repo.CreateScan(ctx, scan)
	if err != nil {
		return nil, err
	}

	s.log.Info("created new scan", slog.String("id", created.ID))

	cacheKey := listCacheKey(ownerUID)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate scan list cache", slog.String("key", cacheKey), slog.Any("err", err))
	}

	return created, nil
}

// List возвращает сканирования пользователя, новые первыми.
// Первая страница со значениями по умолчанию кешируется; кеш
// инвалидируется при создании нового сканирования этим пользователем.
func (s *ScanService) List(ctx context.Context, ownerUID string, limit, offset int) ([]*models.Scan, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	useCache := limit == DefaultListLimit && offset == 0
	cacheKey := listCacheKey(ownerUID)

	if useCache {
		var cached []*models.Scan
		found, err := s.cache.Get(cacheKey, &cached)
		if err != nil {
			s.log.Warn("failed to read scan list cache", slog.String("key", cacheKey), slog.Any("err", err))
		}
		if found {
			return cached, nil
		}
	}

	scans, err := s.repo.ListScansByOwner(ctx, ownerUID, limit, offset)
	if err != nil {
		return nil, err
	}

	if useCache {
		if err := s.cache.Set(cacheKey, scans, time.Hour); err != nil {
			s.log.Warn("failed to cache scan list", slog.String("key", cacheKey), slog.Any("err", err))
		}
	}
	return scans, nil
}

func listCacheKey(ownerUID string) string {
	return fmt.Sprintf("scans:%s", ownerUID)
}

func validateTarget(targetType, targetValue string) error {
	switch targetType {
	case models.TargetTypeIP:
		if net.ParseIP(targetValue) == nil {
			return fmt.Errorf("%w: %q is not a valid ip address", ErrInvalidTarget, targetValue)
		}
	case models.TargetTypeDomain:
		if len(targetValue) > 253 || !domainPattern.MatchString(targetValue) {
			return fmt.Errorf("%w: %q is not a valid domain name", ErrInvalidTarget, targetValue)
		}
	default:
		return fmt.Errorf("%w: unknown target type %q", ErrInvalidTarget, targetType)
	}
	return nil
}
