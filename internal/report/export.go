package report

import (
	"fmt"
	"io"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"github.com/plantee/storefront/internal/domain"
)

const OrdersSheet = "Orders"

var orderColumns = []string{
	"Order ID", "Order Number", "Created At", "Status", "Customer", "Email", "Address",
	"Plant ID", "Plant", "Quantity", "Unit Price", "Order Total",
}

func axis(col, row int) string {
	return fmt.Sprintf("%c%d", 'A'+col, row)
}

// WriteOrdersXLSX writes one row per order line. plants maps plant ids to
// catalog records; lines whose plant has been deleted keep the id only.
func WriteOrdersXLSX(w io.Writer, orders []domain.Order, plants map[string]domain.Plant) error {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", OrdersSheet)

	for i, name := range orderColumns {
		f.SetCellValue(OrdersSheet, axis(i, 1), name)
	}
	row := 2
	for _, o := range orders {
		for _, it := range o.Items {
			plantName := it.Name
			if p, ok := plants[it.Plant]; ok {
				plantName = p.Name
			}
			values := []interface{}{
				o.ID,
				fmt.Sprintf("%d", o.OrderNumber),
				o.CreatedAt.UTC().Format(time.RFC3339),
				o.Status,
				o.User.Name,
				o.User.Email,
				o.User.Address,
				it.Plant,
				plantName,
				it.Quantity,
				it.Price,
				o.TotalAmount,
			}
			for col, v := range values {
				f.SetCellValue(OrdersSheet, axis(col, row), v)
			}
			row++
		}
	}
	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "write orders workbook")
	}
	return nil
}

type contactRow struct {
	ID        string `csv:"id"`
	Name      string `csv:"name"`
	Email     string `csv:"email"`
	Message   string `csv:"message"`
	CreatedAt string `csv:"created_at"`
}

// WriteContactsCSV writes contact messages as CSV with a header row.
func WriteContactsCSV(w io.Writer, msgs []domain.ContactMessage) error {
	rows := make([]*contactRow, 0, len(msgs))
	for _, m := range msgs {
		rows = append(rows, &contactRow{
			ID:        m.ID,
			Name:      m.Name,
			Email:     m.Email,
			Message:   m.Message,
			CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return errors.Wrap(err, "write contacts csv")
	}
	return nil
}
