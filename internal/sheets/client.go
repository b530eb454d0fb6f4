// Package sheets publishes output tables to a remote Google
// spreadsheet: chunked value writes, formatting, range protection and
// document sharing.
package sheets

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// IsTransient reports whether a remote error is a server-side failure
// worth retrying. Everything else (not-found, permission denied, bad
// request) propagates immediately.
func IsTransient(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code >= 500
	}
	return false
}

// api is the slice of the remote spreadsheet surface the publisher
// needs. Tests substitute a fake.
type api interface {
	sheetID(ctx context.Context, title string) (int64, error)
	clear(ctx context.Context, title string) error
	update(ctx context.Context, rangeA1 string, values [][]interface{}) error
	batchUpdate(ctx context.Context, reqs []*sheets.Request) error
	setPermission(ctx context.Context, role string) error
}

// Client talks to one spreadsheet document through the Sheets and
// Drive APIs.
type Client struct {
	spreadsheetID string
	sheets        *sheets.Service
	drive         *drive.Service
}

// NewClient builds a client from service-account credentials JSON.
func NewClient(ctx context.Context, spreadsheetID string, credentials []byte) (*Client, error) {
	ss, err := sheets.NewService(ctx, option.WithCredentialsJSON(credentials))
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}
	ds, err := drive.NewService(ctx, option.WithCredentialsJSON(credentials))
	if err != nil {
		return nil, fmt.Errorf("creating drive service: %w", err)
	}
	return &Client{spreadsheetID: spreadsheetID, sheets: ss, drive: ds}, nil
}

// sheetID returns the numeric id of the worksheet named title,
// creating it when absent.
func (c *Client) sheetID(ctx context.Context, title string) (int64, error) {
	doc, err := c.sheets.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("fetching spreadsheet: %w", err)
	}
	for _, s := range doc.Sheets {
		if s.Properties.Title == title {
			return s.Properties.SheetId, nil
		}
	}

	resp, err := c.sheets.Spreadsheets.BatchUpdate(c.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: title},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("creating worksheet %q: %w", title, err)
	}
	return resp.Replies[0].AddSheet.Properties.SheetId, nil
}

func (c *Client) clear(ctx context.Context, title string) error {
	_, err := c.sheets.Spreadsheets.Values.
		Clear(c.spreadsheetID, fmt.Sprintf("'%s'", title), &sheets.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clearing %q: %w", title, err)
	}
	return nil
}

func (c *Client) update(ctx context.Context, rangeA1 string, values [][]interface{}) error {
	_, err := c.sheets.Spreadsheets.Values.
		Update(c.spreadsheetID, rangeA1, &sheets.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("writing %s: %w", rangeA1, err)
	}
	return nil
}

func (c *Client) batchUpdate(ctx context.Context, reqs []*sheets.Request) error {
	_, err := c.sheets.Spreadsheets.
		BatchUpdate(c.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{Requests: reqs}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("applying batch update: %w", err)
	}
	return nil
}

// setPermission sets the link-sharing role on the document: "writer"
// opens it for edits, "reader" locks it back down.
func (c *Client) setPermission(ctx context.Context, role string) error {
	_, err := c.drive.Permissions.Create(c.spreadsheetID, &drive.Permission{
		Type: "anyone",
		Role: role,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("setting %s permission: %w", role, err)
	}
	return nil
}
