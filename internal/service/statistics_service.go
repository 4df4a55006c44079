package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/metrics"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/model"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/phase"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/repository"
	"gorm.io/gorm"
)

// Statistics summarizes the workflow for dashboards and the phase
// distribution gauge.
type Statistics struct {
	RequestsByPhase   map[string]int64           `json:"requests_by_phase"`
	TotalByCostCenter map[string]decimal.Decimal `json:"total_by_cost_center"`
	ActiveOrders      int64                      `json:"active_orders"`
	PendingEvents     int64                      `json:"pending_events"`
	// AvgApprovalLatencySeconds is the mean time from request creation
	// to an approving decision, zero when nothing was approved yet.
	AvgApprovalLatencySeconds float64   `json:"avg_approval_latency_seconds"`
	GeneratedAt               time.Time `json:"generated_at"`
}

// StatisticsService computes workflow statistics.
type StatisticsService interface {
	Collect(ctx context.Context) (*Statistics, error)
}

// statisticsService is the default implementation.
type statisticsService struct {
	db *gorm.DB
}

// NewStatisticsService creates a statistics service.
func NewStatisticsService(db *gorm.DB) StatisticsService {
	return &statisticsService{db: db}
}

// Collect gathers the current statistics and refreshes the phase
// distribution metrics.
func (s *statisticsService) Collect(ctx context.Context) (*Statistics, error) {
	db := s.db.WithContext(ctx)

	requests := repository.NewRequestRepository(db)
	byPhase, err := requests.CountByPhase()
	if err != nil {
		return nil, fmt.Errorf("failed to count requests by phase: %w", err)
	}
	// expose zero for phases with no requests so the gauge resets
	for _, p := range phase.All() {
		if _, ok := byPhase[string(p)]; !ok {
			byPhase[string(p)] = 0
		}
	}
	for name, count := range byPhase {
		metrics.UpdateRequestsByPhase(name, float64(count))
	}

	type ccRow struct {
		CostCenter string
		Total      decimal.Decimal
	}
	var ccRows []ccRow
	if err := db.Model(&model.PurchaseRequestModel{}).
		Select("cost_center, sum(total_value) as total").
		Group("cost_center").
		Scan(&ccRows).Error; err != nil {
		return nil, fmt.Errorf("failed to sum totals by cost center: %w", err)
	}
	byCostCenter := make(map[string]decimal.Decimal, len(ccRows))
	for _, row := range ccRows {
		byCostCenter[row.CostCenter] = row.Total
	}

	var activeOrders int64
	if err := db.Model(&model.PurchaseOrderModel{}).
		Where("status = ?", "active").
		Count(&activeOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count active orders: %w", err)
	}

	var pendingEvents int64
	if err := db.Model(&model.EventModel{}).
		Where("status = ?", "pending").
		Count(&pendingEvents).Error; err != nil {
		return nil, fmt.Errorf("failed to count pending events: %w", err)
	}

	latency, err := s.avgApprovalLatency(db)
	if err != nil {
		return nil, err
	}

	return &Statistics{
		RequestsByPhase:           byPhase,
		TotalByCostCenter:         byCostCenter,
		ActiveOrders:              activeOrders,
		PendingEvents:             pendingEvents,
		AvgApprovalLatencySeconds: latency,
		GeneratedAt:               time.Now(),
	}, nil
}

// avgApprovalLatency averages decision latency in Go rather than SQL;
// date arithmetic is not portable between postgres and sqlite.
func (s *statisticsService) avgApprovalLatency(db *gorm.DB) (float64, error) {
	type latencyRow struct {
		DecidedAt   time.Time
		RequestedAt time.Time
	}
	var rows []latencyRow
	err := db.Model(&model.ApprovalHistoryModel{}).
		Select("approval_history.created_at as decided_at, purchase_requests.created_at as requested_at").
		Joins("JOIN purchase_requests ON purchase_requests.id = approval_history.request_id").
		Where("approval_history.approved = ?", true).
		Scan(&rows).Error
	if err != nil {
		return 0, fmt.Errorf("failed to load approval latencies: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	var total time.Duration
	for _, row := range rows {
		total += row.DecidedAt.Sub(row.RequestedAt)
	}
	return (total / time.Duration(len(rows))).Seconds(), nil
}
