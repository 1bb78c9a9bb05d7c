package report

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"zencontrol/internal/catalog"
	"zencontrol/internal/models"
)

func newTestGenerator(t *testing.T) *Generator {
	t.Helper()
	g := NewGenerator(t.TempDir(), catalog.Default(), zerolog.Nop())
	g.now = func() time.Time { return time.Date(2024, 2, 20, 9, 0, 0, 0, time.UTC) }
	return g
}

var testProviders = []models.Provider{{ID: "p1", Name: "Carla"}, {ID: "p2", Name: "Dani"}}

var testBookings = []models.Booking{
	{ID: "c", Date: "2024-02-10", Time: "14:00", ClientName: "Caio", Unit: "303", Hotel: models.HotelVilageInn,
		ServiceID: "3", ProviderID: "p1", PointOfSale: models.PointOfSaleReception, Status: models.StatusDone},
	{ID: "a", Date: "2024-02-01", Time: "10:00", ClientName: "Ana", Unit: "101", Hotel: models.HotelVilageInn,
		ServiceID: "1", ProviderID: "p1", PointOfSale: models.PointOfSaleReservation, Status: models.StatusPending},
	{ID: "b", Date: "2024-02-05", Time: "11:00", ClientName: "Bia", Unit: "202", Hotel: models.HotelThermasResort,
		ServiceID: "8", ProviderID: "p2", PointOfSale: models.PointOfSaleReception, Status: models.StatusPending},
	{ID: "old", Date: "2024-01-31", Time: "09:00", ClientName: "Edu", Unit: "404", Hotel: models.HotelGoldenPark,
		ServiceID: "unknown", ProviderID: "gone", PointOfSale: models.PointOfSaleReception},
}

func cell(t *testing.T, f *excelize.File, axis string) string {
	t.Helper()
	v, err := f.GetCellValue("Relatório", axis)
	require.NoError(t, err)
	return v
}

func TestSelectBookings(t *testing.T) {
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)

	all := SelectBookings(testBookings, start, end, "", "")
	require.Len(t, all, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{all[0].ID, all[1].ID, all[2].ID})

	assert.Len(t, SelectBookings(testBookings, start, end, "p1", ""), 2)
	assert.Len(t, SelectBookings(testBookings, start, end, "p1", models.HotelThermasResort), 0)
	assert.Len(t, SelectBookings(testBookings, start, end, "", models.HotelThermasResort), 1)
}

func TestPriceLabel(t *testing.T) {
	assert.Equal(t, "R$ 150.00", PriceLabel(150, false))
	assert.Equal(t, "R$ 80.00 (Conc.)", PriceLabel(80, true))
}

func TestGenerator_Closing(t *testing.T) {
	g := newTestGenerator(t)

	res, err := g.Closing(Filter{ProviderID: "p1"}, testBookings, testProviders)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Rows)
	assert.FileExists(t, res.Path)
	assert.Contains(t, res.Path, "fechamento_massagens_2024-02-01.xlsx")

	f, err := excelize.OpenFile(res.Path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, "Relatório de Fechamento - Massagens", cell(t, f, "A1"))
	assert.Equal(t, "Período: 01/02/2024 a 20/02/2024", cell(t, f, "A2"))
	assert.Equal(t, "Massagista: Carla", cell(t, f, "A3"))
	assert.Equal(t, "Data", cell(t, f, "A5"))
	assert.Equal(t, "01/02/2024", cell(t, f, "A6"))
	assert.Equal(t, "101 / Reserva", cell(t, f, "D6"))
	assert.Equal(t, "R$ 150.00", cell(t, f, "G6"))
	assert.Equal(t, "Massagem com Velas", cell(t, f, "E7"))
	assert.Equal(t, "R$ 200.00 (Conc.)", cell(t, f, "G7"))
}

func TestGenerator_ClosingUnknownReferences(t *testing.T) {
	g := newTestGenerator(t)

	res, err := g.Closing(Filter{StartDate: "2024-01-01", EndDate: "2024-01-31"}, testBookings, testProviders)
	require.NoError(t, err)
	require.Equal(t, 1, res.Rows)

	f, err := excelize.OpenFile(res.Path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, "N/A", cell(t, f, "E5"))
	assert.Equal(t, "N/A", cell(t, f, "F5"))
	assert.Equal(t, "N/A", cell(t, f, "G5"))
}

func TestGenerator_ClosingBadDate(t *testing.T) {
	g := newTestGenerator(t)
	_, err := g.Closing(Filter{StartDate: "01/02/2024"}, testBookings, testProviders)
	assert.ErrorIs(t, err, ErrInvalidFilter)

	_, err = g.Closing(Filter{StartDate: "2024-02-10", EndDate: "2024-02-01"}, testBookings, testProviders)
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestGenerator_MonthlyBackup(t *testing.T) {
	g := newTestGenerator(t)

	res, err := g.MonthlyBackup(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), testBookings)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 1, res.Rows)
	assert.Equal(t, "Backup Mensal Automático - 01/2024", res.Title)
	assert.Contains(t, res.Path, "backup_massagens_2024_01.xlsx")

	f, err := excelize.OpenFile(res.Path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, "Cliente", cell(t, f, "A3"))
	assert.Equal(t, "Edu", cell(t, f, "A4"))
	assert.Equal(t, "-", cell(t, f, "C4"))
	assert.Equal(t, "31/01/2024", cell(t, f, "E4"))

	none, err := g.MonthlyBackup(time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), testBookings)
	require.NoError(t, err)
	assert.Nil(t, none)
}
