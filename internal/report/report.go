// Package report renders closing reports and monthly backup documents.
package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"zencontrol/internal/catalog"
	"zencontrol/internal/models"
)

const (
	closingTitle   = "Relatório de Fechamento - Massagens"
	backupTitleFmt = "Backup Mensal Automático - %s"
	notAvailable   = "N/A"
	displayDate    = "02/01/2006"
)

// ErrInvalidFilter reports a malformed closing report filter.
var ErrInvalidFilter = errors.New("invalid report filter")

var (
	closingColumns = []string{"Data", "Hora", "Hóspede", "Apto / PV", "Tipo", "Massagista", "Valor"}
	backupColumns  = []string{"Cliente", "Apto", "Tel", "Tipo", "Data", "Hora", "Hotel"}
)

// Filter selects bookings for a closing report. Empty fields match everything
// except the date range, which defaults to the current month up to today.
type Filter struct {
	StartDate  string       `json:"start_date"`
	EndDate    string       `json:"end_date"`
	ProviderID string       `json:"provider_id,omitempty"`
	Hotel      models.Hotel `json:"hotel,omitempty"`
}

// Generator writes report documents into a directory.
type Generator struct {
	dir       string
	catalog   *catalog.Catalog
	newWriter func() Writer
	logger    zerolog.Logger
	now       func() time.Time
}

func NewGenerator(dir string, cat *catalog.Catalog, logger zerolog.Logger) *Generator {
	return &Generator{
		dir:       dir,
		catalog:   cat,
		newWriter: NewExcelizeWriter,
		logger:    logger.With().Str("component", "report").Logger(),
		now:       time.Now,
	}
}

// Result describes a generated document.
type Result struct {
	Path  string `json:"path"`
	Rows  int    `json:"rows"`
	Title string `json:"title"`
}

// Closing writes the closing report for bookings matching f.
func (g *Generator) Closing(f Filter, bookings []models.Booking, providers []models.Provider) (*Result, error) {
	f = f.withDefaults(g.now())
	start, err := models.ParseDate(f.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: start_date: %v", ErrInvalidFilter, err)
	}
	end, err := models.ParseDate(f.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: end_date: %v", ErrInvalidFilter, err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end_date before start_date", ErrInvalidFilter)
	}

	selected := SelectBookings(bookings, start, end, f.ProviderID, f.Hotel)
	names := providerNames(providers)

	title := []string{
		closingTitle,
		fmt.Sprintf("Período: %s a %s", start.Format(displayDate), end.Format(displayDate)),
	}
	if f.ProviderID != "" {
		title = append(title, "Massagista: "+lookup(names, f.ProviderID))
	}
	if f.Hotel != "" {
		title = append(title, "Hotel: "+string(f.Hotel))
	}

	rows := make([][]any, 0, len(selected))
	for _, b := range selected {
		rows = append(rows, g.closingRow(&b, names))
	}

	path := filepath.Join(g.dir, fmt.Sprintf("fechamento_massagens_%s.xlsx", f.StartDate))
	if err := g.write(path, title, closingColumns, rows); err != nil {
		return nil, err
	}

	g.logger.Info().Str("path", path).Int("rows", len(rows)).Msg("Closing report generated")
	return &Result{Path: path, Rows: len(rows), Title: closingTitle}, nil
}

// MonthlyBackup writes the backup document for bookings dated within month.
// With no such bookings nothing is written and the result is nil.
func (g *Generator) MonthlyBackup(month time.Time, bookings []models.Booking) (*Result, error) {
	start := models.StartOfMonth(month)
	end := start.AddDate(0, 1, -1)
	selected := SelectBookings(bookings, start, end, "", "")
	if len(selected) == 0 {
		g.logger.Info().Str("month", models.MonthKey(month)).Msg("No bookings to back up")
		return nil, nil
	}

	title := fmt.Sprintf(backupTitleFmt, start.Format("01/2006"))
	rows := make([][]any, 0, len(selected))
	for _, b := range selected {
		phone := b.Phone
		if phone == "" {
			phone = "-"
		}
		svc := notAvailable
		if s, ok := g.catalog.Get(b.ServiceID); ok {
			svc = s.Name
		}
		day, _ := b.Day()
		rows = append(rows, []any{b.ClientName, b.Unit, phone, svc, day.Format(displayDate), b.Time, string(b.Hotel)})
	}

	path := filepath.Join(g.dir, fmt.Sprintf("backup_massagens_%s.xlsx", start.Format("2006_01")))
	if err := g.write(path, []string{title}, backupColumns, rows); err != nil {
		return nil, err
	}

	g.logger.Info().Str("path", path).Int("rows", len(rows)).Msg("Monthly backup generated")
	return &Result{Path: path, Rows: len(rows), Title: title}, nil
}

func (g *Generator) closingRow(b *models.Booking, names map[string]string) []any {
	day, _ := b.Day()

	svcName, value := notAvailable, notAvailable
	if s, ok := g.catalog.Get(b.ServiceID); ok {
		svcName = s.Name
		value = PriceLabel(s.Price, b.IsDone())
	}

	return []any{
		day.Format(displayDate),
		b.Time,
		b.ClientName,
		b.Unit + " / " + string(b.PointOfSale),
		svcName,
		lookup(names, b.ProviderID),
		value,
	}
}

func (g *Generator) write(path string, title, columns []string, rows [][]any) error {
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	w := g.newWriter()
	defer w.Close()

	if err := w.AddSheet("Relatório"); err != nil {
		return err
	}
	if err := w.WriteTitle(title...); err != nil {
		return err
	}
	if err := w.WriteHeader(columns); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.WriteRow(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	if err := w.SaveToFile(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// SelectBookings returns bookings dated within [start, end] that match the
// optional provider and hotel, ordered by date then time.
func SelectBookings(bookings []models.Booking, start, end time.Time, providerID string, hotel models.Hotel) []models.Booking {
	var out []models.Booking
	for _, b := range bookings {
		day, err := b.Day()
		if err != nil || day.Before(start) || day.After(end) {
			continue
		}
		if providerID != "" && b.ProviderID != providerID {
			continue
		}
		if hotel != "" && b.Hotel != hotel {
			continue
		}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out
}

// PriceLabel formats a price as "R$ 150.00", suffixed for completed bookings.
func PriceLabel(price float64, done bool) string {
	label := fmt.Sprintf("R$ %.2f", price)
	if done {
		label += " (Conc.)"
	}
	return label
}

func (f Filter) withDefaults(now time.Time) Filter {
	if f.StartDate == "" {
		f.StartDate = models.StartOfMonth(now).Format(models.DateLayout)
	}
	if f.EndDate == "" {
		f.EndDate = now.Format(models.DateLayout)
	}
	return f
}

func providerNames(providers []models.Provider) map[string]string {
	names := make(map[string]string, len(providers))
	for _, p := range providers {
		names[p.ID] = p.Name
	}
	return names
}

func lookup(names map[string]string, id string) string {
	if n, ok := names[id]; ok {
		return n
	}
	return notAvailable
}
