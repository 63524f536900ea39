package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/cart"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/client"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/metrics"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/receipt"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/spreadsheet"
	ws "github.com/Daveman-1/BookstoreFrontEnd/internal/websocket"
	"github.com/Daveman-1/BookstoreFrontEnd/pkg/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ErrOutOfStock = errors.New("item is out of stock or already at its stock limit")

// DTOs
type CartItemRequest struct {
	ItemID int64 `json:"item_id" binding:"required,gt=0"`
}

type CartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type CheckoutRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required,oneof=cash card mobile_money"`
	CustomerName  string `json:"customer_name" binding:"max=100"`
	CustomerPhone string `json:"customer_phone" binding:"max=30"`
	Notes         string `json:"notes" binding:"max=500"`
}

type VoidRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CartView is the cart panel of the sell screen
type CartView struct {
	Lines []CartLineView  `json:"lines"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

type CartLineView struct {
	cart.Line
	LineTotal decimal.Decimal `json:"line_total"`
}

type HistoryQuery struct {
	Search    string
	Range     string // today, yesterday, week, month or all
	StartDate string // YYYY-MM-DD; with EndDate overrides Range
	EndDate   string
	StaffID   int64 // only this staff member's sales when set
	Sort      string
	Page      pagination.Params
}

// HistoryView is the records tab of the sales history page
type HistoryView struct {
	pagination.Page[SaleRow]
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalOrders  int             `json:"total_orders"`
}

// SaleRow is a sale with its derived item count
type SaleRow struct {
	model.Sale
	ItemsSold int `json:"items_sold"`
}

// ExportFile is a generated download
type ExportFile struct {
	Name string
	Data []byte
}

type SalesService interface {
	Cart(tabID string) CartView
	AddToCart(ctx context.Context, tab Tab, req CartItemRequest) (CartView, error)
	SetQuantity(tabID string, itemID int64, quantity int) CartView
	RemoveFromCart(tabID string, itemID int64) CartView
	ClearCart(tabID string) CartView
	Checkout(ctx context.Context, tab Tab, req CheckoutRequest) (model.Sale, error)
	History(ctx context.Context, tab Tab, q HistoryQuery) (HistoryView, error)
	GetSale(ctx context.Context, tab Tab, id int64) (model.Sale, error)
	Void(ctx context.Context, tab Tab, id int64, req VoidRequest) error
	Receipt(ctx context.Context, tab Tab, saleID int64) (ExportFile, error)
	ReceiptHTML(ctx context.Context, tab Tab, saleID int64) (string, error)
	ExportSales(ctx context.Context, tab Tab, detailed bool, q HistoryQuery) (ExportFile, error)
}

type salesService struct {
	carts    *cart.Registry
	receipts *receipt.Generator
	hub      Publisher
	metrics  *metrics.Metrics
	log      *zap.Logger
	now      func() time.Time
}

func NewSalesService(carts *cart.Registry, receipts *receipt.Generator, hub Publisher, m *metrics.Metrics, log *zap.Logger) SalesService {
	if log == nil {
		log = zap.NewNop()
	}
	return &salesService{
		carts:    carts,
		receipts: receipts,
		hub:      publisherOrNop(hub),
		metrics:  m,
		log:      log,
		now:      time.Now,
	}
}

func viewOf(c *cart.Cart) CartView {
	lines := c.Lines()
	view := CartView{Lines: make([]CartLineView, 0, len(lines)), Count: c.Count(), Total: c.Total()}
	for _, l := range lines {
		view.Lines = append(view.Lines, CartLineView{Line: l, LineTotal: l.Total()})
	}
	return view
}

func (s *salesService) Cart(tabID string) CartView {
	return viewOf(s.carts.Get(tabID))
}

// AddToCart fetches the item's current stock and adds one unit
func (s *salesService) AddToCart(ctx context.Context, tab Tab, req CartItemRequest) (CartView, error) {
	item, err := tab.Backend.Items.Get(ctx, req.ItemID).Unwrap()
	if err != nil {
		return CartView{}, err
	}
	c := s.carts.Get(tab.ID)
	if !c.Add(item) {
		return viewOf(c), ErrOutOfStock
	}
	return viewOf(c), nil
}

func (s *salesService) SetQuantity(tabID string, itemID int64, quantity int) CartView {
	c := s.carts.Get(tabID)
	c.SetQuantity(itemID, quantity)
	return viewOf(c)
}

func (s *salesService) RemoveFromCart(tabID string, itemID int64) CartView {
	c := s.carts.Get(tabID)
	c.Remove(itemID)
	return viewOf(c)
}

func (s *salesService) ClearCart(tabID string) CartView {
	c := s.carts.Get(tabID)
	c.Clear()
	return viewOf(c)
}

// Checkout records the tab's cart as a sale and tells other tabs about it
func (s *salesService) Checkout(ctx context.Context, tab Tab, req CheckoutRequest) (model.Sale, error) {
	c := s.carts.Get(tab.ID)
	sale, err := c.Checkout(ctx, tab.Backend.Sales, req.PaymentMethod, cart.Customer{
		Name:  req.CustomerName,
		Phone: req.CustomerPhone,
		Notes: req.Notes,
	})
	if errors.Is(err, cart.ErrEmptyCart) || errors.Is(err, cart.ErrCheckoutInProgress) {
		return model.Sale{}, err
	}
	s.metrics.ObserveCheckout(req.PaymentMethod, err == nil)
	if err != nil {
		s.log.Warn("checkout failed", zap.String("tab", tab.ID), zap.Error(err))
		return model.Sale{}, err
	}

	if sale.StaffName == "" {
		sale.StaffName = tab.Session.DisplayName(ctx)
	}
	s.log.Info("sale completed",
		zap.Int64("sale_id", sale.ID),
		zap.String("payment_method", sale.PaymentMethod),
		zap.String("total", sale.TotalAmount.StringFixed(2)),
	)
	s.hub.Publish(ws.Event{
		Type:       ws.EventSaleCompleted,
		Permission: model.PermViewSalesHistory,
		Data: map[string]any{
			"sale_id":        sale.ID,
			"total_amount":   sale.TotalAmount,
			"items_sold":     sale.ItemsSold(),
			"payment_method": sale.PaymentMethod,
		},
	})
	return sale, nil
}

// fetchSales loads the sales the query asks for: an explicit date range goes to
// the backend's range endpoint, everything else is filtered locally
func (s *salesService) fetchSales(ctx context.Context, tab Tab, q HistoryQuery) ([]model.Sale, error) {
	if q.StartDate != "" && q.EndDate != "" {
		list, err := tab.Backend.Sales.ByDateRange(ctx, q.StartDate, q.EndDate).Unwrap()
		if err != nil {
			return nil, err
		}
		return list.Sales, nil
	}

	var (
		list client.SaleList
		err  error
	)
	if q.StaffID > 0 {
		list, err = tab.Backend.Sales.ByStaff(ctx, q.StaffID, url.Values{}).Unwrap()
	} else {
		list, err = tab.Backend.Sales.List(ctx, url.Values{}).Unwrap()
	}
	if err != nil {
		return nil, err
	}
	if from, to, ok := period(q.Range, s.now()); ok {
		return salesBetween(list.Sales, from, to), nil
	}
	return list.Sales, nil
}

func matchesSale(sale model.Sale, term string) bool {
	if term == "" {
		return true
	}
	if strings.Contains(strconv.FormatInt(sale.ID, 10), term) {
		return true
	}
	term = strings.ToLower(term)
	for _, l := range sale.Items {
		if strings.Contains(strings.ToLower(l.Name), term) {
			return true
		}
	}
	return false
}

func sortSales(sales []model.Sale, key string) {
	var order func(a, b model.Sale) int
	switch key {
	case "date_oldest":
		order = func(a, b model.Sale) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case "amount":
		order = func(a, b model.Sale) int { return b.TotalAmount.Cmp(a.TotalAmount) }
	case "amount_lowest":
		order = func(a, b model.Sale) int { return a.TotalAmount.Cmp(b.TotalAmount) }
	case "id":
		order = func(a, b model.Sale) int { return cmp.Compare(a.ID, b.ID) }
	case "id_desc":
		order = func(a, b model.Sale) int { return cmp.Compare(b.ID, a.ID) }
	default:
		order = func(a, b model.Sale) int { return b.CreatedAt.Compare(a.CreatedAt) }
	}
	slices.SortStableFunc(sales, order)
}

func (s *salesService) History(ctx context.Context, tab Tab, q HistoryQuery) (HistoryView, error) {
	sales, err := s.fetchSales(ctx, tab, q)
	if err != nil {
		return HistoryView{}, err
	}

	term := strings.TrimSpace(q.Search)
	rows := make([]SaleRow, 0, len(sales))
	revenue := decimal.Zero
	filtered := make([]model.Sale, 0, len(sales))
	for _, sale := range sales {
		if matchesSale(sale, term) {
			filtered = append(filtered, sale)
		}
	}
	sortSales(filtered, q.Sort)
	for _, sale := range filtered {
		revenue = revenue.Add(sale.TotalAmount)
		rows = append(rows, SaleRow{Sale: sale, ItemsSold: sale.ItemsSold()})
	}

	if q.Page.Limit == 0 {
		q.Page = pagination.New(pagination.DefaultPage, pagination.DefaultLimit)
	}
	return HistoryView{
		Page:         pagination.Apply(rows, q.Page),
		TotalRevenue: revenue,
		TotalOrders:  len(rows),
	}, nil
}

func (s *salesService) GetSale(ctx context.Context, tab Tab, id int64) (model.Sale, error) {
	return tab.Backend.Sales.Get(ctx, id).Unwrap()
}

func (s *salesService) Void(ctx context.Context, tab Tab, id int64, req VoidRequest) error {
	_, err := tab.Backend.Sales.Void(ctx, id, strings.TrimSpace(req.Reason)).Unwrap()
	return err
}

// storeDetails never fails: receipts print with the default header when the
// settings cannot be loaded
func storeDetails(ctx context.Context, tab Tab, log *zap.Logger) model.StoreDetails {
	details, err := tab.Backend.Store.Get(ctx).Unwrap()
	if err != nil {
		log.Debug("using default store details", zap.Error(err))
		return model.DefaultStoreDetails()
	}
	return details
}

func (s *salesService) Receipt(ctx context.Context, tab Tab, saleID int64) (ExportFile, error) {
	sale, err := tab.Backend.Sales.Get(ctx, saleID).Unwrap()
	if err != nil {
		return ExportFile{}, err
	}
	pdf, err := s.receipts.PDF(ctx, sale, storeDetails(ctx, tab, s.log))
	if err != nil {
		return ExportFile{}, fmt.Errorf("render receipt %d: %w", saleID, err)
	}
	return ExportFile{Name: receipt.FileName(sale.ID), Data: pdf}, nil
}

func (s *salesService) ReceiptHTML(ctx context.Context, tab Tab, saleID int64) (string, error) {
	sale, err := tab.Backend.Sales.Get(ctx, saleID).Unwrap()
	if err != nil {
		return "", err
	}
	return s.receipts.HTML(sale, storeDetails(ctx, tab, s.log))
}

func (s *salesService) ExportSales(ctx context.Context, tab Tab, detailed bool, q HistoryQuery) (ExportFile, error) {
	sales, err := s.fetchSales(ctx, tab, q)
	if err != nil {
		return ExportFile{}, err
	}
	sortSales(sales, q.Sort)

	now := s.now()
	if !detailed {
		data, err := spreadsheet.ExportSales(sales)
		if err != nil {
			return ExportFile{}, fmt.Errorf("export sales: %w", err)
		}
		return ExportFile{Name: spreadsheet.FileName("sales", now), Data: data}, nil
	}

	var dateRange *spreadsheet.DateRange
	if q.StartDate != "" && q.EndDate != "" {
		from, errFrom := time.ParseInLocation(time.DateOnly, q.StartDate, now.Location())
		to, errTo := time.ParseInLocation(time.DateOnly, q.EndDate, now.Location())
		if errFrom != nil || errTo != nil {
			return ExportFile{}, &ValidationError{Message: "Dates must use the YYYY-MM-DD format"}
		}
		dateRange = &spreadsheet.DateRange{Start: from, End: to.AddDate(0, 0, 1).Add(-time.Nanosecond)}
	}
	data, err := spreadsheet.ExportDetailedSales(sales, dateRange)
	if err != nil {
		return ExportFile{}, fmt.Errorf("export detailed sales: %w", err)
	}
	return ExportFile{Name: spreadsheet.DetailedSalesFileName(dateRange, now), Data: data}, nil
}
