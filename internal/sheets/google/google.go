package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"boatshare/internal/core"
	applog "boatshare/internal/log"
	ports "boatshare/internal/sheets"
)

var _ ports.BoatExporter = (*Client)(nil)

// Client mirrors boat proposals into one sheet of a Google spreadsheet.
// Row lookup and write are one critical section: the worker exports from
// the event consumer and the periodic loop at the same time.
type Client struct {
	mu            sync.Mutex
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *applog.Logger
}

// NewClient builds a client from explicit API options. Tests point it at a
// fake endpoint; production code goes through NewFromEnv.
func NewClient(ctx context.Context, spreadsheetID, sheetName string, logger *applog.Logger, opts ...goption.ClientOption) (*Client, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(sheetName) == "" {
		sheetName = "Boats"
	}
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		logger:        logger.WithComponent(applog.ComponentSheets),
	}, nil
}

// NewFromEnv authenticates with a service account taken from
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS, in that order.
func NewFromEnv(ctx context.Context, spreadsheetID, sheetName string, logger *applog.Logger) (*Client, error) {
	creds, err := serviceAccountCredentials()
	if err != nil {
		return nil, err
	}
	return NewClient(ctx, spreadsheetID, sheetName, logger,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
}

func serviceAccountCredentials() ([]byte, error) {
	if inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); inline != "" {
		return []byte(inline), nil
	}
	path := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if path == "" {
		path = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if path == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return data, nil
}

func (c *Client) readIDs(ctx context.Context) ([][]any, error) {
	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

func (c *Client) writeRow(ctx context.Context, rng string, row []any) error {
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}

// ExportBoat writes the boat into its existing row, or into the first free
// row when it has not been exported before. The header is written on first use.
func (c *Client) ExportBoat(ctx context.Context, b core.Boat) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	ids, err := c.readIDs(ctx)
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		if err := c.writeRow(ctx, rowRange(c.sheetName, 1), header); err != nil {
			return "", fmt.Errorf("write header: %w", err)
		}
	}

	row := findRow(ids, b.ID)
	if row == -1 {
		row = nextRow(ids)
	}

	ref := rowRange(c.sheetName, row)
	if err := c.writeRow(ctx, ref, boatRow(b)); err != nil {
		return "", err
	}

	c.logger.InfoContext(ctx, "Boat exported to sheet",
		applog.FieldBoatID, b.ID,
		applog.FieldSheetsRef, ref)
	return ref, nil
}

// RemoveBoat clears the boat's row. A boat that was never exported is not
// an error.
func (c *Client) RemoveBoat(ctx context.Context, id string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	ids, err := c.readIDs(ctx)
	if err != nil {
		return err
	}
	row := findRow(ids, id)
	if row == -1 {
		return nil
	}

	ref := rowRange(c.sheetName, row)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, ref, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", ref, err)
	}

	c.logger.InfoContext(ctx, "Boat removed from sheet",
		applog.FieldBoatID, id,
		applog.FieldSheetsRef, ref)
	return nil
}
