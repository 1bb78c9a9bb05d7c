package mirror

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsClient reads and writes the two row ranges of a spreadsheet directly.
type SheetsClient struct {
	values         valuesAPI
	spreadsheetID  string
	bookingsRange  string
	providersRange string
	codec          *Codec
}

// valuesAPI is the subset of the Sheets values service used by the client.
type valuesAPI interface {
	BatchGet(ctx context.Context, spreadsheetID string, ranges []string) ([]*sheets.ValueRange, error)
	BatchClear(ctx context.Context, spreadsheetID string, ranges []string) error
	BatchUpdate(ctx context.Context, spreadsheetID string, data []*sheets.ValueRange) error
}

// NewSheetsClient authenticates with a service-account credentials file.
func NewSheetsClient(ctx context.Context, credentialsFile, spreadsheetID, bookingsRange, providersRange string, codec *Codec) (*SheetsClient, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &SheetsClient{
		values:         &sheetsValues{srv: srv},
		spreadsheetID:  spreadsheetID,
		bookingsRange:  bookingsRange,
		providersRange: providersRange,
		codec:          codec,
	}, nil
}

func (c *SheetsClient) Pull(ctx context.Context) (*Snapshot, error) {
	ranges, err := c.values.BatchGet(ctx, c.spreadsheetID, []string{c.bookingsRange, c.providersRange})
	if err != nil {
		return nil, fmt.Errorf("%w: pull: %v", ErrRemoteSync, err)
	}
	if len(ranges) != 2 {
		return nil, fmt.Errorf("%w: pull: expected 2 ranges, got %d", ErrRemoteSync, len(ranges))
	}

	return &Snapshot{
		Bookings:  c.codec.DecodeBookings(toRows(ranges[0])),
		Providers: c.codec.DecodeProviders(toRows(ranges[1])),
	}, nil
}

// Push clears both ranges and rewrites them from the snapshot.
func (c *SheetsClient) Push(ctx context.Context, snap Snapshot) error {
	if err := c.values.BatchClear(ctx, c.spreadsheetID, []string{c.bookingsRange, c.providersRange}); err != nil {
		return fmt.Errorf("%w: clear: %v", ErrRemoteSync, err)
	}

	data := []*sheets.ValueRange{
		{Range: c.bookingsRange, Values: c.codec.EncodeBookings(snap.Bookings, snap.Providers)},
		{Range: c.providersRange, Values: c.codec.EncodeProviders(snap.Providers)},
	}
	if err := c.values.BatchUpdate(ctx, c.spreadsheetID, data); err != nil {
		return fmt.Errorf("%w: update: %v", ErrRemoteSync, err)
	}
	return nil
}

func toRows(vr *sheets.ValueRange) [][]any {
	if vr == nil {
		return nil
	}
	return vr.Values
}

type sheetsValues struct {
	srv *sheets.Service
}

func (v *sheetsValues) BatchGet(ctx context.Context, spreadsheetID string, ranges []string) ([]*sheets.ValueRange, error) {
	resp, err := v.srv.Spreadsheets.Values.BatchGet(spreadsheetID).
		Ranges(ranges...).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return resp.ValueRanges, nil
}

func (v *sheetsValues) BatchClear(ctx context.Context, spreadsheetID string, ranges []string) error {
	_, err := v.srv.Spreadsheets.Values.BatchClear(spreadsheetID, &sheets.BatchClearValuesRequest{
		Ranges: ranges,
	}).Context(ctx).Do()
	return err
}

func (v *sheetsValues) BatchUpdate(ctx context.Context, spreadsheetID string, data []*sheets.ValueRange) error {
	_, err := v.srv.Spreadsheets.Values.BatchUpdate(spreadsheetID, &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}).Context(ctx).Do()
	return err
}
