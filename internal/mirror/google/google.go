// Package google mirrors contribution records to a Google spreadsheet,
// one year-named tab per settlement year.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/ellinstar/offering-app/internal/core"
	"github.com/ellinstar/offering-app/internal/mirror"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const sheetBase = "Records"

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string

	mu          sync.Mutex
	knownSheets map[string]bool
}

var _ mirror.RecordAppender = (*Client)(nil)

// New creates a Sheets client from service account credentials, given
// either inline JSON or a file path.
func New(ctx context.Context, spreadsheetID, credentialsFile, credentialsJSON string) (*Client, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	var creds []byte
	switch {
	case strings.TrimSpace(credentialsJSON) != "":
		creds = []byte(credentialsJSON)
	case strings.TrimSpace(credentialsFile) != "":
		b, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		creds = b
	default:
		return nil, errors.New("missing service account credentials")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		knownSheets:   make(map[string]bool),
	}, nil
}

// Append writes one record to the tab for its year, creating the tab on
// first use. Returns the updated range as the row reference.
func (c *Client) Append(ctx context.Context, r core.ContributionRecord) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	sheetName := yearSheetName(r.Year)
	if err := c.ensureSheet(ctx, sheetName); err != nil {
		return "", err
	}

	vr := &gsheet.ValueRange{Values: [][]any{{
		r.Date, r.WeekEnd, r.Type, r.Person, r.Amount,
	}}}

	resp, err := c.svc.Spreadsheets.Values.
		Append(c.spreadsheetID, fmt.Sprintf("%s!A:E", sheetName), vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", sheetName, err)
	}

	ref := sheetName
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	return ref, nil
}

// ensureSheet creates the year tab with a header row when it does not exist
// yet. Known tabs are remembered to avoid a metadata round trip per append.
func (c *Client) ensureSheet(ctx context.Context, sheetName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.knownSheets[sheetName] {
		return nil
	}

	meta, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet metadata: %w", err)
	}
	for _, s := range meta.Sheets {
		if s.Properties != nil {
			c.knownSheets[s.Properties.Title] = true
		}
	}
	if c.knownSheets[sheetName] {
		return nil
	}

	_, err = c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: sheetName},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("create sheet %s: %w", sheetName, err)
	}

	header := &gsheet.ValueRange{Values: [][]any{{"Date", "Week End", "Type", "Person", "Amount"}}}
	_, err = c.svc.Spreadsheets.Values.
		Update(c.spreadsheetID, fmt.Sprintf("%s!A1:E1", sheetName), header).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write header for sheet %s: %w", sheetName, err)
	}

	slog.InfoContext(ctx, "Created mirror sheet", "sheet", sheetName)
	c.knownSheets[sheetName] = true
	return nil
}

func yearSheetName(year int) string {
	return fmt.Sprintf("%d %s", year, sheetBase)
}
