// Package sheets appends registration exports to a Google spreadsheet.
package sheets

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"

	"github.com/International-Combat-Archery-Alliance/registration-client/slices"
)

type Client struct {
	srv           *sheetsv4.Service
	spreadsheetID string
}

// New authenticates with a service account key file. Extra options are
// passed through to the Sheets service.
func New(ctx context.Context, serviceAccountJSONPath string, spreadsheetID string, opts ...option.ClientOption) (*Client, error) {
	if serviceAccountJSONPath != "" {
		opts = append([]option.ClientOption{
			option.WithCredentialsFile(serviceAccountJSONPath),
			option.WithScopes(sheetsv4.SpreadsheetsScope),
		}, opts...)
	}

	srv, err := sheetsv4.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &Client{srv: srv, spreadsheetID: spreadsheetID}, nil
}

func (c *Client) SpreadsheetID() string { return c.spreadsheetID }

// AppendTable writes rows to the tab named sheet, creating the tab and
// writing header first when the tab is new or empty.
func (c *Client) AppendTable(ctx context.Context, sheet string, header []string, rows [][]string) error {
	sheet = sheetTitle(sheet)

	if err := c.ensureSheet(ctx, sheet); err != nil {
		return err
	}

	existing, err := c.readAll(ctx, sheet)
	if err != nil {
		return err
	}

	values := make([][]interface{}, 0, len(rows)+1)
	if len(existing) == 0 {
		values = append(values, toRow(header))
	}
	values = append(values, slices.Map(rows, toRow)...)
	if len(values) == 0 {
		return nil
	}

	return c.appendRows(ctx, sheet, values)
}

func (c *Client) ensureSheet(ctx context.Context, sheet string) error {
	ss, err := c.srv.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet %q: %w", c.spreadsheetID, err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == sheet {
			return nil
		}
	}

	_, err = c.srv.Spreadsheets.BatchUpdate(c.spreadsheetID, &sheetsv4.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsv4.Request{
			{AddSheet: &sheetsv4.AddSheetRequest{Properties: &sheetsv4.SheetProperties{Title: sheet}}},
		},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to add sheet %q: %w", sheet, err)
	}
	return nil
}

func (c *Client) readAll(ctx context.Context, sheet string) ([][]interface{}, error) {
	resp, err := c.srv.Spreadsheets.Values.Get(c.spreadsheetID, a1Range(sheet)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return resp.Values, nil
}

func (c *Client) appendRows(ctx context.Context, sheet string, rows [][]interface{}) error {
	vr := &sheetsv4.ValueRange{Values: rows}
	_, err := c.srv.Spreadsheets.Values.Append(c.spreadsheetID, a1Range(sheet), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append to sheet %q: %w", sheet, err)
	}
	return nil
}

func a1Range(sheet string) string {
	return fmt.Sprintf("'%s'!A:Z", strings.ReplaceAll(sheet, "'", "''"))
}

// Tab titles are capped at 100 characters.
func sheetTitle(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "Registrations"
	}
	if r := []rune(s); len(r) > 100 {
		return string(r[:100])
	}
	return s
}

func toRow(cells []string) []interface{} {
	out := make([]interface{}, len(cells))
	for i, c := range cells {
		out[i] = c
	}
	return out
}
