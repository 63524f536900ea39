package service

import (
	"cmp"
	"context"
	"fmt"
	"net/url"
	"slices"
	"time"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/client"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SampleNotice is shown whenever placeholder figures replace backend data
const SampleNotice = "Using sample data - API connection failed."

const topItemsLimit = 5

var weekdayNames = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// SalesAnalyticsView is the analytics tab of the sales history page
type SalesAnalyticsView struct {
	Range        string               `json:"range"`
	Orders       int                  `json:"orders"`
	TotalSales   decimal.Decimal      `json:"total_sales"`
	TotalItems   int                  `json:"total_items"`
	AverageOrder decimal.Decimal      `json:"average_order"`
	Weekday      []model.PeriodBucket `json:"weekday"`
	Hourly       []model.PeriodBucket `json:"hourly"`
	TopItems     []model.ItemRanking  `json:"top_items"`
	UsingSample  bool                 `json:"using_sample_data"`
	Notice       string               `json:"notice,omitempty"`
}

// BackendReport passes the backend's own aggregates through unchanged
type BackendReport struct {
	Dashboard client.Result[map[string]any] `json:"dashboard"`
	Stats     client.Result[map[string]any] `json:"stats"`
	TopItems  client.Result[map[string]any] `json:"top_items"`
}

type StatisticsService interface {
	Dashboard(ctx context.Context, tab Tab) model.DashboardStats
	SalesAnalytics(ctx context.Context, tab Tab, rangeName string) SalesAnalyticsView
	BackendReport(ctx context.Context, tab Tab, period string) BackendReport
}

type statisticsService struct {
	threshold int
	log       *zap.Logger
	now       func() time.Time
}

func NewStatisticsService(lowStockThreshold int, log *zap.Logger) StatisticsService {
	if log == nil {
		log = zap.NewNop()
	}
	if lowStockThreshold <= 0 {
		lowStockThreshold = model.DefaultLowStockThreshold
	}
	return &statisticsService{threshold: lowStockThreshold, log: log, now: time.Now}
}

// load fetches items and sales, substituting sample data for whichever fails
func (s *statisticsService) load(ctx context.Context, tab Tab) (items []model.Item, sales []model.Sale, sample bool) {
	sampleItems, sampleSales := SampleData(s.now())

	items, err := allItems(ctx, tab)
	if err != nil {
		s.log.Info("items unavailable, using sample data", zap.Error(err))
		items, sample = sampleItems, true
	}

	list, err := tab.Backend.Sales.List(ctx, url.Values{}).Unwrap()
	if err != nil {
		s.log.Info("sales unavailable, using sample data", zap.Error(err))
		return items, sampleSales, true
	}
	return items, list.Sales, sample
}

func sumSales(sales []model.Sale) decimal.Decimal {
	total := decimal.Zero
	for _, sale := range sales {
		total = total.Add(sale.TotalAmount)
	}
	return total
}

// GrowthRate compares two totals as a percentage with one decimal; growth from
// nothing counts as 100
func GrowthRate(current, previous decimal.Decimal) string {
	if previous.IsZero() {
		if current.IsPositive() {
			return "100"
		}
		return "0"
	}
	return current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).StringFixed(1)
}

func (s *statisticsService) Dashboard(ctx context.Context, tab Tab) model.DashboardStats {
	now := s.now()
	items, sales, sample := s.load(ctx, tab)

	stats := model.DashboardStats{
		TotalItems:    len(items),
		LowStockItems: make([]model.Item, 0),
		TotalSales:    sumSales(sales),
		SalesCount:    len(sales),
		UsingSample:   sample,
	}
	if sample {
		stats.Notice = SampleNotice
	}
	for _, item := range items {
		if item.IsLowStock(s.threshold) {
			stats.LowStockItems = append(stats.LowStockItems, item)
		}
	}
	stats.LowStockCount = len(stats.LowStockItems)

	today := salesBetween(sales, startOfDay(now), startOfDay(now).AddDate(0, 0, 1))
	if !sample {
		if daily, err := tab.Backend.Sales.Daily(ctx, now.Format(time.DateOnly)).Unwrap(); err == nil {
			today = daily.Sales
		}
	}
	stats.TodayTotal = sumSales(today)
	stats.TodayCount = len(today)

	stats.Weekly = weeklyBuckets(sales, now)
	stats.Monthly = monthlyBuckets(sales, now)
	stats.Categories = categoryShares(items)
	stats.TopItems = topItems(sales, topItemsLimit)

	current := sumSales(salesBetween(sales, startOfDay(now).AddDate(0, 0, -29), startOfDay(now).AddDate(0, 0, 1)))
	previous := sumSales(salesBetween(sales, startOfDay(now).AddDate(0, 0, -59), startOfDay(now).AddDate(0, 0, -29)))
	stats.GrowthRate = GrowthRate(current, previous)
	return stats
}

// weeklyBuckets covers the last seven days, oldest first, labelled Sun..Sat
func weeklyBuckets(sales []model.Sale, now time.Time) []model.PeriodBucket {
	buckets := make([]model.PeriodBucket, 0, 7)
	for i := 6; i >= 0; i-- {
		day := startOfDay(now).AddDate(0, 0, -i)
		daySales := salesBetween(sales, day, day.AddDate(0, 0, 1))
		buckets = append(buckets, model.PeriodBucket{
			Label: day.Weekday().String()[:3],
			Sales: sumSales(daySales),
			Count: len(daySales),
		})
	}
	return buckets
}

// monthlyBuckets covers the twelve calendar months ending with the current one
func monthlyBuckets(sales []model.Sale, now time.Time) []model.PeriodBucket {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	buckets := make([]model.PeriodBucket, 0, 12)
	for i := 11; i >= 0; i-- {
		month := first.AddDate(0, -i, 0)
		monthSales := salesBetween(sales, month, month.AddDate(0, 1, 0))
		buckets = append(buckets, model.PeriodBucket{
			Label: month.Month().String()[:3],
			Sales: sumSales(monthSales),
			Count: len(monthSales),
		})
	}
	return buckets
}

// categoryShares counts items per category; uncategorized items count as "Other"
func categoryShares(items []model.Item) []model.CategoryShare {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, item := range items {
		name := item.Category
		if name == "" {
			name = "Other"
		}
		if _, ok := counts[name]; !ok {
			order = append(order, name)
		}
		counts[name]++
	}

	shares := make([]model.CategoryShare, 0, len(order))
	for _, name := range order {
		shares = append(shares, model.CategoryShare{
			Name:       name,
			Value:      counts[name],
			Percentage: fmt.Sprintf("%.1f", float64(counts[name])*100/float64(len(items))),
		})
	}
	return shares
}

func topItems(sales []model.Sale, limit int) []model.ItemRanking {
	byID := make(map[int64]*model.ItemRanking)
	for _, sale := range sales {
		for _, l := range sale.Items {
			r, ok := byID[l.ItemID]
			if !ok {
				r = &model.ItemRanking{ItemID: l.ItemID, Name: l.Name, Revenue: decimal.Zero}
				byID[l.ItemID] = r
			}
			r.SoldQuantity += l.Quantity
			r.Revenue = r.Revenue.Add(l.LineTotal())
		}
	}

	ranked := make([]model.ItemRanking, 0, len(byID))
	for _, r := range byID {
		if r.SoldQuantity > 0 {
			ranked = append(ranked, *r)
		}
	}
	slices.SortFunc(ranked, func(a, b model.ItemRanking) int {
		if c := cmp.Compare(b.SoldQuantity, a.SoldQuantity); c != 0 {
			return c
		}
		return cmp.Compare(a.ItemID, b.ItemID)
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func (s *statisticsService) SalesAnalytics(ctx context.Context, tab Tab, rangeName string) SalesAnalyticsView {
	now := s.now()
	from, to, bounded := period(rangeName, now)
	if !bounded {
		rangeName = RangeAll
	}

	view := SalesAnalyticsView{Range: rangeName}
	list, err := tab.Backend.Sales.List(ctx, url.Values{}).Unwrap()
	all := list.Sales
	if err != nil {
		s.log.Info("sales unavailable, using sample data", zap.Error(err))
		_, all = SampleData(now)
		view.UsingSample = true
		view.Notice = SampleNotice
	}
	sales := all
	if bounded {
		sales = salesBetween(all, from, to)
	}

	view.Orders = len(sales)
	view.TotalSales = sumSales(sales)
	view.AverageOrder = decimal.Zero
	if len(sales) > 0 {
		view.AverageOrder = view.TotalSales.Div(decimal.NewFromInt(int64(len(sales)))).Round(2)
	}

	view.Weekday = make([]model.PeriodBucket, 7)
	for i, name := range weekdayNames {
		view.Weekday[i] = model.PeriodBucket{Label: name, Sales: decimal.Zero}
	}
	view.Hourly = make([]model.PeriodBucket, 24)
	for h := range view.Hourly {
		view.Hourly[h] = model.PeriodBucket{Label: fmt.Sprintf("%d:00", h), Sales: decimal.Zero}
	}
	for _, sale := range sales {
		view.TotalItems += sale.ItemsSold()
		at := sale.CreatedAt.In(now.Location())
		wd := &view.Weekday[at.Weekday()]
		wd.Sales = wd.Sales.Add(sale.TotalAmount)
		wd.Count++
		hr := &view.Hourly[at.Hour()]
		hr.Sales = hr.Sales.Add(sale.TotalAmount)
		hr.Count++
	}
	view.TopItems = topItems(sales, topItemsLimit)
	return view
}

func (s *statisticsService) BackendReport(ctx context.Context, tab Tab, period string) BackendReport {
	return BackendReport{
		Dashboard: tab.Backend.Analytics.Dashboard(ctx, period),
		Stats:     tab.Backend.Sales.Stats(ctx, period),
		TopItems:  tab.Backend.Sales.TopItems(ctx, topItemsLimit, period),
	}
}
