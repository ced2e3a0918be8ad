package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"umuhinzilink/internal/domain/model"

	"github.com/tealeg/xlsx"
)

const (
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	CSVContentType  = "text/csv"

	timeLayout = "2006-01-02 15:04:05"
)

var (
	productHeaders = []string{"ID", "Name", "Category", "Quantity", "Unit", "UnitPrice", "Status", "Location", "Negotiable", "CreatedAt"}
	orderHeaders   = []string{"ID", "Product", "Buyer", "Seller", "Quantity", "TotalPrice", "Status", "Paid", "CreatedAt"}
)

func productRow(p model.Product) []string {
	return []string{
		p.ID,
		p.Name,
		p.Category,
		strconv.FormatInt(p.Quantity, 10),
		p.MeasurementUnit,
		p.UnitPrice.StringFixed(2),
		string(p.ProductStatus),
		p.Location,
		strconv.FormatBool(p.IsNegotiable),
		formatTime(p.CreatedAt),
	}
}

func orderRow(o model.Order) []string {
	return []string{
		o.ID,
		o.Product.Name,
		o.Buyer.Names,
		sellerName(o.Product),
		strconv.FormatInt(o.Quantity, 10),
		o.TotalPrice.StringFixed(2),
		string(o.Status),
		strconv.FormatBool(o.IsPaid),
		formatTime(o.CreatedAt),
	}
}

// ProductsXLSXは商品一覧をExcelにする
func ProductsXLSX(w io.Writer, products []model.Product) error {
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, productRow(p))
	}
	return writeXLSX(w, "Products", productHeaders, rows)
}

// OrdersXLSXは注文一覧をExcelにする
func OrdersXLSX(w io.Writer, orders []model.Order) error {
	rows := make([][]string, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, orderRow(o))
	}
	return writeXLSX(w, "Orders", orderHeaders, rows)
}

func OrdersCSV(w io.Writer, orders []model.Order) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(orderHeaders); err != nil {
		return err
	}
	for _, o := range orders {
		if err := cw.Write(orderRow(o)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ProductsCSV(w io.Writer, products []model.Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(productHeaders); err != nil {
		return err
	}
	for _, p := range products {
		if err := cw.Write(productRow(p)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeXLSX(w io.Writer, name string, headers []string, rows [][]string) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(name)
	if err != nil {
		return err
	}

	headerRow := sheet.AddRow()
	for _, h := range headers {
		headerRow.AddCell().SetValue(h)
	}
	for _, r := range rows {
		row := sheet.AddRow()
		for _, v := range r {
			row.AddCell().SetValue(v)
		}
	}
	return file.Write(w)
}

func sellerName(p model.OrderProduct) string {
	switch {
	case p.Farmer != nil:
		return p.Farmer.User.Names
	case p.Supplier != nil:
		return p.Supplier.User.Names
	}
	return ""
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeLayout)
}
