package mirror

import (
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zencontrol/internal/catalog"
	"zencontrol/internal/models"
)

var fixedNow = time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC)

func newTestCodec() *Codec {
	logger := zerolog.New(io.Discard)
	c := NewCodec(catalog.Default(), &logger)
	c.now = func() time.Time { return fixedNow }
	return c
}

func TestCodec_EncodeBookings(t *testing.T) {
	c := newTestCodec()
	providers := []models.Provider{{ID: "p1", Name: "Carla"}}
	bookings := []models.Booking{
		{
			ID: "a", Date: "2024-02-05", Time: "10:00", ClientName: "Ana", Unit: "101",
			Hotel: models.HotelVilageInn, Phone: "5511999", ServiceID: "3", ProviderID: "p1",
			PointOfSale: models.PointOfSaleReception, Status: models.StatusDone,
			CreatedBy: "Recepção", PhotoRef: "blob:1",
		},
		{ID: "b", ServiceID: "gone", ProviderID: "ghost", Status: models.StatusPending},
	}

	rows := c.EncodeBookings(bookings, providers)
	require.Len(t, rows, 2)

	assert.Equal(t, []any{
		"a", "2024-02-05", "10:00", "Ana", "101", "Vilage Inn", "5511999",
		"Massagem com Velas", float64(200), "Carla", "p1", "Recepção",
		"Concluída", "Recepção", "Imagem Anexada",
	}, rows[0])

	assert.Len(t, rows[1], bookingColumns)
	assert.Equal(t, "Desconhecido", rows[1][7])
	assert.Equal(t, float64(0), rows[1][8])
	assert.Equal(t, "Desconhecida", rows[1][9])
	assert.Equal(t, "Pendente", rows[1][12])
	assert.Equal(t, "", rows[1][14])
}

func TestCodec_DecodeBookings(t *testing.T) {
	c := newTestCodec()
	rows := [][]any{
		{"a", "2024-02-05T03:00:00.000Z", "10:00", "Ana", float64(101), "Vilage Inn", float64(5511999),
			"Combo 02", float64(250), "Carla", "p1", "Reserva", "Concluída", "Admin", "Imagem Anexada"},
		{"b", "2024-02-06", "9:05", "Bia", "202", "Thermas Resort", "", "Nome antigo", 0, "X", "p2", "Recepção", "Pendente", "Recepção"},
		{"", "2024-02-07"},
	}

	got := c.DecodeBookings(rows)
	require.Len(t, got, 2)

	a := got[0]
	assert.Equal(t, "a", a.ID)
	assert.Equal(t, "2024-02-05", a.Date)
	assert.Equal(t, "101", a.Unit)
	assert.Equal(t, "5511999", a.Phone)
	assert.Equal(t, "11", a.ServiceID)
	assert.Equal(t, models.PointOfSaleReservation, a.PointOfSale)
	assert.Equal(t, models.StatusDone, a.Status)
	assert.Equal(t, "", a.PhotoRef)
	assert.Equal(t, fixedNow, a.CreatedAt)

	b := got[1]
	assert.Equal(t, "1", b.ServiceID, "unknown service name falls back to the first entry")
	assert.Equal(t, models.StatusPending, b.Status)
	assert.Equal(t, models.HotelThermasResort, b.Hotel)
	assert.Equal(t, "09:05", b.Time)
}

func TestCodec_Providers(t *testing.T) {
	c := newTestCodec()
	providers := []models.Provider{
		{ID: "p1", Name: "Carla", ShiftStart: "08:00", ShiftEnd: "18:00", ExcludedWeekdays: []int{0, 6}},
		{ID: "p2", Name: "Dani", ShiftStart: "10:00", ShiftEnd: "20:00"},
	}

	rows := c.EncodeProviders(providers)
	assert.Equal(t, []any{"p1", "Carla", "08:00", "18:00", "[0,6]"}, rows[0])
	assert.Equal(t, "[]", rows[1][4])

	back := c.DecodeProviders(rows)
	require.Len(t, back, 2)
	assert.Equal(t, providers[0], back[0])
	assert.Equal(t, []int{}, back[1].ExcludedWeekdays)

	odd := c.DecodeProviders([][]any{
		{"p3", "Eva", "08:00", "12:00", "[3,3,9]"},
		{"p4", "Fê", "08:00", "12:00", "not json"},
		{"p5", "Gi"},
	})
	require.Len(t, odd, 3)
	assert.Equal(t, []int{3}, odd[0].ExcludedWeekdays)
	assert.Equal(t, []int{}, odd[1].ExcludedWeekdays)
	assert.Equal(t, "", odd[2].ShiftStart)
}
