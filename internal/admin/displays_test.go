package admin

import (
	"testing"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestStockStatus(t *testing.T) {
	cases := []struct {
		stock int
		want  enums.StockStatus
		label string
	}{
		{0, enums.StockStatusOut, "Out of Stock"},
		{1, enums.StockStatusLow, "Low Stock"},
		{5, enums.StockStatusLow, "Low Stock"},
		{6, enums.StockStatusIn, "In Stock"},
	}
	for _, tc := range cases {
		got := StockStatus(tc.stock)
		if got.Status != tc.want || got.Label != tc.label {
			t.Fatalf("stock %d: got %+v", tc.stock, got)
		}
	}
}

func TestItemsSummary(t *testing.T) {
	items := []models.OrderItem{
		{ProductName: "Tee", Quantity: 2},
		{ProductName: "Socks", Quantity: 1},
		{ProductName: "Cap", Quantity: 3},
	}
	want := "• 2x Tee\n• 1x Socks\n• 3x Cap"
	if got := ItemsSummary(items); got != want {
		t.Fatalf("got %q want %q", got, want)
	}

	items = append(items, models.OrderItem{ProductName: "Scarf", Quantity: 1}, models.OrderItem{ProductName: "Belt", Quantity: 1})
	want += "\n• ... and 2 more items"
	if got := ItemsSummary(items); got != want {
		t.Fatalf("got %q want %q", got, want)
	}

	if got := ItemsSummary(nil); got != "" {
		t.Fatalf("expected empty summary, got %q", got)
	}
}

func TestStatusBadge(t *testing.T) {
	cases := map[enums.OrderStatus]string{
		enums.OrderStatusPending:    "#ffeaa7",
		enums.OrderStatusProcessing: "#74b9ff",
		enums.OrderStatusShipped:    "#a29bfe",
		enums.OrderStatusDelivered:  "#00b894",
		enums.OrderStatusCancelled:  "#fab1a0",
		"mystery":                   "#ddd",
	}
	for status, color := range cases {
		if got := StatusBadge(status); got.Color != color {
			t.Fatalf("%s: got %s want %s", status, got.Color, color)
		}
	}
	if got := StatusBadge(enums.OrderStatusShipped).Label; got != "Shipped" {
		t.Fatalf("unexpected label %q", got)
	}
}

func TestCountsAndLinks(t *testing.T) {
	if ItemsCount(1) != "1 item" || ItemsCount(3) != "3 items" || ItemsCount(0) != "0 items" {
		t.Fatal("unexpected items count rendering")
	}
	if ProductCount(1) != "1 product" || ProductCount(7) != "7 products" {
		t.Fatal("unexpected product count rendering")
	}

	if got := LinkFor(models.OrderItem{ProductName: "Tee"}); got.Label != "No product" || got.URL != "" {
		t.Fatalf("unexpected link for deleted product %+v", got)
	}
	id := uuid.New()
	got := LinkFor(models.OrderItem{ProductID: &id, ProductName: "Tee"})
	if got.Label != "Tee" || got.URL != "/admin/products/"+id.String() {
		t.Fatalf("unexpected link %+v", got)
	}
}

func TestCustomerNameAndMoney(t *testing.T) {
	if got := CustomerName(models.Order{FirstName: "Ada", LastName: "Lovelace"}); got != "Ada Lovelace" {
		t.Fatalf("got %q", got)
	}
	if got := CustomerName(models.Order{Email: "a@example.com"}); got != "a@example.com" {
		t.Fatalf("got %q", got)
	}
	if got := MoneyLabel(decimal.RequireFromString("25.5")); got != "$25.50" {
		t.Fatalf("got %q", got)
	}
	if got := MoneyLabel(decimal.RequireFromString("1250")); got != "$1,250.00" {
		t.Fatalf("got %q", got)
	}
}
