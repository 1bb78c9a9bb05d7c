package mirror

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"zencontrol/internal/catalog"
	"zencontrol/internal/models"
)

// Column counts of the positional row layouts.
const (
	bookingColumns  = 15
	providerColumns = 5
)

const (
	labelDone           = "Concluída"
	labelPending        = "Pendente"
	labelPhoto          = "Imagem Anexada"
	labelUnknownSvc     = "Desconhecido"
	labelUnknownMasseur = "Desconhecida"
)

// Codec converts collections to and from spreadsheet rows.
type Codec struct {
	catalog *catalog.Catalog
	logger  *zerolog.Logger
	now     func() time.Time
}

func NewCodec(cat *catalog.Catalog, logger *zerolog.Logger) *Codec {
	return &Codec{catalog: cat, logger: logger, now: time.Now}
}

// EncodeBookings renders one row per booking:
// id, date, time, client, unit, hotel, phone, service, price, provider,
// provider id, point of sale, status label, creator, photo flag.
func (c *Codec) EncodeBookings(bookings []models.Booking, providers []models.Provider) [][]any {
	names := make(map[string]string, len(providers))
	for _, p := range providers {
		names[p.ID] = p.Name
	}

	rows := make([][]any, 0, len(bookings))
	for i := range bookings {
		b := &bookings[i]

		serviceName, price := labelUnknownSvc, float64(0)
		if s, ok := c.catalog.Get(b.ServiceID); ok {
			serviceName, price = s.Name, s.Price
		}
		providerName, ok := names[b.ProviderID]
		if !ok {
			providerName = labelUnknownMasseur
		}
		status := labelPending
		if b.IsDone() {
			status = labelDone
		}
		photo := ""
		if b.PhotoRef != "" {
			photo = labelPhoto
		}

		rows = append(rows, []any{
			b.ID, b.Date, b.Time, b.ClientName, b.Unit, string(b.Hotel), b.Phone,
			serviceName, price, providerName, b.ProviderID, string(b.PointOfSale),
			status, b.CreatedBy, photo,
		})
	}
	return rows
}

// EncodeProviders renders id, name, shift start, shift end, JSON weekday array.
func (c *Codec) EncodeProviders(providers []models.Provider) [][]any {
	rows := make([][]any, 0, len(providers))
	for _, p := range providers {
		days := p.ExcludedWeekdays
		if days == nil {
			days = []int{}
		}
		encoded, _ := json.Marshal(days)
		rows = append(rows, []any{p.ID, p.Name, p.ShiftStart, p.ShiftEnd, string(encoded)})
	}
	return rows
}

// DecodeBookings parses booking rows. Rows without an identifier are skipped.
// Photos are not mirrored and creation time is set to now.
func (c *Codec) DecodeBookings(rows [][]any) []models.Booking {
	now := c.now()
	out := make([]models.Booking, 0, len(rows))
	for i, row := range rows {
		row = pad(row, bookingColumns)
		id := cellString(row[0])
		if id == "" {
			continue
		}

		serviceName := cellString(row[7])
		service, ok := c.catalog.ByName(serviceName)
		if !ok {
			service = c.catalog.First()
			c.logger.Warn().Int("row", i).Str("service", serviceName).
				Msg("Unknown service name in remote row, using default")
		}

		status := models.StatusPending
		if cellString(row[12]) == labelDone {
			status = models.StatusDone
		}

		out = append(out, models.Booking{
			ID:          id,
			Date:        dateCell(row[1]),
			Time:        models.NormalizeClock(cellString(row[2])),
			ClientName:  cellString(row[3]),
			Unit:        cellString(row[4]),
			Hotel:       models.Hotel(cellString(row[5])),
			Phone:       cellString(row[6]),
			ServiceID:   service.ID,
			ProviderID:  cellString(row[10]),
			PointOfSale: models.PointOfSale(cellString(row[11])),
			Status:      status,
			CreatedBy:   cellString(row[13]),
			CreatedAt:   now,
		})
	}
	return out
}

// DecodeProviders parses provider rows. Rows without an identifier are skipped.
func (c *Codec) DecodeProviders(rows [][]any) []models.Provider {
	out := make([]models.Provider, 0, len(rows))
	for i, row := range rows {
		row = pad(row, providerColumns)
		id := cellString(row[0])
		if id == "" {
			continue
		}

		days, err := weekdaysCell(row[4])
		if err != nil {
			c.logger.Warn().Err(err).Int("row", i).Str("provider_id", id).
				Msg("Invalid weekday list in remote row, treating as none")
		}

		out = append(out, models.Provider{
			ID:               id,
			Name:             cellString(row[1]),
			ShiftStart:       models.NormalizeClock(cellString(row[2])),
			ShiftEnd:         models.NormalizeClock(cellString(row[3])),
			ExcludedWeekdays: days,
		})
	}
	return out
}

func pad(row []any, n int) []any {
	if len(row) >= n {
		return row
	}
	out := make([]any, n)
	copy(out, row)
	return out
}

func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}

// dateCell keeps the date part of ISO datetimes produced for date-typed cells.
func dateCell(v any) string {
	s := cellString(v)
	if len(s) > 10 && s[10] == 'T' {
		return s[:10]
	}
	return s
}

func weekdaysCell(v any) ([]int, error) {
	var raw []int
	switch t := v.(type) {
	case []any:
		for _, d := range t {
			if f, ok := d.(float64); ok {
				raw = append(raw, int(f))
			}
		}
	default:
		s := cellString(v)
		if s == "" {
			return []int{}, nil
		}
		if err := json.Unmarshal([]byte(s), &raw); err != nil {
			return []int{}, err
		}
	}
	return models.NormalizeWeekdays(raw), nil
}
