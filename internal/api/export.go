package api

import (
	"fmt"
	"net/http"
	"time"

	"touragency/internal/models"
	"touragency/internal/session"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Bookings"

var exportHeaders = []string{"Booking ID", "Tour", "Destination", "Price", "Status", "Booked at"}

func (s *HTTPServer) handleExportBookings(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	bookings, err := s.svc.Bookings.ListBookingsForUser(r.Context(), sess.UserID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	f, err := buildBookingsWorkbook(bookings)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("bookings_%s.xlsx", time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err := f.Write(w); err != nil {
		s.requestLogger(r).Error().Err(err).Msg("write workbook")
	}
}

// buildBookingsWorkbook lays out one row per booking under a styled header.
func buildBookingsWorkbook(bookings []*models.BookingView) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		f.Close()
		return nil, err
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(exportSheet, cell, h)
		_ = f.SetCellStyle(exportSheet, cell, cell, headerStyle)
	}
	_ = f.SetColWidth(exportSheet, "A", "A", 12)
	_ = f.SetColWidth(exportSheet, "B", "C", 30)
	_ = f.SetColWidth(exportSheet, "D", "F", 18)

	for i, b := range bookings {
		row := i + 2
		values := []interface{}{
			b.ID,
			b.TourTitle,
			b.Destination,
			b.Price,
			b.Status,
			b.BookingDate.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	return f, nil
}
