package transaction

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"walletd/internal/models"
	"walletd/internal/repositories"
	"walletd/internal/utils/pagination"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
)

// HistoryQuery holds the raw filters of a history request. Zero values mean
// the defaults: page 1, limit 10, newest first, no status or date filter.
type HistoryQuery struct {
	Page   int
	Limit  int
	Order  string
	Status string
	From   string
	To     string
}

type service struct {
	repo    repositories.TransactionRepository
	cache   HistoryCache
	metrics MetricsCollector
}

// NewService creates a new transaction history service
func NewService(repo repositories.TransactionRepository, cache HistoryCache, metrics MetricsCollector) Service {
	if repo == nil {
		panic("repo is required")
	}
	if cache == nil {
		panic("cache is required")
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &service{repo: repo, cache: cache, metrics: metrics}
}

func (s *service) GetHistory(ctx context.Context, walletID string, q HistoryQuery) (*models.HistoryPage, error) {
	nq, err := normalize(q)
	if err != nil {
		return nil, err
	}

	hash := nq.hash()
	page, found, err := s.cache.GetHistoryPage(ctx, walletID, hash)
	if err != nil {
		zap.L().Warn("history cache read failed", zap.String("wallet_id", walletID), zap.Error(err))
	}
	if found {
		s.metrics.RecordCacheHit(CacheNameHistory)
		return page, nil
	}
	s.metrics.RecordCacheMiss(CacheNameHistory)

	entries, total, err := s.repo.GetHistory(ctx, walletID, nq.filter())
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	if entries == nil {
		entries = []models.LedgerEntry{}
	}

	page = &models.HistoryPage{
		Data: entries,
		Meta: nq.params.Meta(total),
	}
	if err := s.cache.SetHistoryPage(ctx, walletID, hash, page); err != nil {
		zap.L().Warn("failed to cache history page", zap.String("wallet_id", walletID), zap.Error(err))
	}
	return page, nil
}

type normalizedQuery struct {
	params pagination.Params
	order  string
	status models.PaymentStatus
	from   *time.Time
	to     *time.Time
}

func normalize(q HistoryQuery) (*normalizedQuery, error) {
	if q.Page == 0 {
		q.Page = DefaultPage
	}
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	if q.Page < 1 {
		return nil, ErrInvalidPagination.WithMessage("page must be at least 1")
	}
	if q.Limit < 1 || q.Limit > MaxLimit {
		return nil, ErrInvalidPagination.WithMessage("limit must be between 1 and %d", MaxLimit)
	}

	nq := &normalizedQuery{
		params: pagination.New(q.Page, q.Limit),
		order:  OrderDesc,
	}

	if q.Order != "" {
		switch order := strings.ToUpper(q.Order); order {
		case OrderAsc, OrderDesc:
			nq.order = order
		default:
			return nil, ErrInvalidRange.WithMessage("order must be ASC or DESC")
		}
	}

	if q.Status != "" {
		status := models.PaymentStatus(strings.ToUpper(q.Status))
		if !status.Valid() {
			return nil, ErrInvalidRange.WithMessage("unknown status %q", q.Status)
		}
		nq.status = status
	}

	if q.To != "" && q.From == "" {
		return nil, ErrInvalidRange.WithMessage("to requires from")
	}
	if q.From != "" {
		from, _, err := parseDate(q.From)
		if err != nil {
			return nil, ErrInvalidRange.WithMessage("invalid from date %q", q.From)
		}
		nq.from = &from
	}
	if q.To != "" {
		to, dateOnly, err := parseDate(q.To)
		if err != nil {
			return nil, ErrInvalidRange.WithMessage("invalid to date %q", q.To)
		}
		if dateOnly {
			to = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		nq.to = &to
	}
	if nq.from != nil && nq.to != nil && nq.from.After(*nq.to) {
		return nil, ErrInvalidRange.WithMessage("from must not be after to")
	}

	return nq, nil
}

// parseDate accepts YYYY-MM-DD or RFC3339 and reports which one it got.
func parseDate(s string) (time.Time, bool, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t.UTC(), true, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false, err
	}
	return t.UTC(), false, nil
}

func (nq *normalizedQuery) filter() repositories.HistoryFilter {
	return repositories.HistoryFilter{
		Status:    nq.status,
		From:      nq.from,
		To:        nq.to,
		Ascending: nq.order == OrderAsc,
		Limit:     nq.params.Limit,
		Offset:    nq.params.Offset,
	}
}

// hash identifies the query in the history cache. Equivalent requests hash
// the same because it is computed after defaults and normalization.
func (nq *normalizedQuery) hash() string {
	var b strings.Builder
	b.WriteString(string(nq.status))
	b.WriteByte('|')
	if nq.from != nil {
		b.WriteString(nq.from.Format(time.RFC3339Nano))
	}
	b.WriteByte('|')
	if nq.to != nil {
		b.WriteString(nq.to.Format(time.RFC3339Nano))
	}
	b.WriteByte('|')
	b.WriteString(nq.order)
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(nq.params.Page))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(nq.params.Limit))
	return strconv.FormatUint(xxhash.Sum64String(b.String()), 16)
}

type noopMetrics struct{}

func (noopMetrics) RecordCacheHit(string)  {}
func (noopMetrics) RecordCacheMiss(string) {}
