// Package sheets exports post drafts to Google Sheets for the social media
// review workflow.
package sheets

import (
	"context"
	"fmt"
	"time"

	"github.com/archivo-venezuela/archivero/internal/captions"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// postHeader is the review sheet's column layout. The trailing columns are
// filled in by human reviewers.
var postHeader = []string{
	"Item Title", "Creator", "Caption_EN", "Caption_ES",
	"Hashtags", "Image URL", "Approved?", "Reviewer Notes", "Scheduled Date",
}

// Exporter creates and shares Google Sheets using a service account.
type Exporter struct {
	sheets *sheets.Service
	drive  *drive.Service

	// now is swappable for title tests.
	now func() time.Time
}

// NewExporter authenticates with the given service-account credentials
// file.
func NewExporter(ctx context.Context, credentialsFile string) (*Exporter, error) {
	opts := []option.ClientOption{
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope, drive.DriveScope),
	}

	sheetsSvc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	driveSvc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return &Exporter{sheets: sheetsSvc, drive: driveSvc, now: time.Now}, nil
}

// queueSheetTitle names the monthly review sheet.
func queueSheetTitle(now time.Time) string {
	return fmt.Sprintf("Omeka Social Media Queue – %s", now.Format("January 2006"))
}

// CreateQueueSheet creates a new spreadsheet named for the current month
// and appends the header row plus one row per post. It returns the
// spreadsheet id and URL.
func (e *Exporter) CreateQueueSheet(ctx context.Context, posts []captions.Post) (string, string, error) {
	ss, err := e.sheets.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title: queueSheetTitle(e.now()),
		},
	}).Context(ctx).Do()
	if err != nil {
		return "", "", fmt.Errorf("failed to create spreadsheet: %w", err)
	}

	values := make([][]any, 0, len(posts)+1)
	header := make([]any, len(postHeader))
	for i, h := range postHeader {
		header[i] = h
	}
	values = append(values, header)

	for _, post := range posts {
		values = append(values, []any{
			post.Title,
			post.Creator,
			post.CaptionEN,
			post.CaptionES,
			post.Hashtags,
			post.Image,
			"", // Approved?
			"", // Reviewer Notes
			"", // Scheduled Date
		})
	}

	_, err = e.sheets.Spreadsheets.Values.Append(ss.SpreadsheetId, "A1", &sheets.ValueRange{
		Values: values,
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return "", "", fmt.Errorf("failed to append rows: %w", err)
	}

	return ss.SpreadsheetId, ss.SpreadsheetUrl, nil
}

// Share grants a user writer access to the spreadsheet by email.
func (e *Exporter) Share(ctx context.Context, spreadsheetID, email string) error {
	_, err := e.drive.Permissions.Create(spreadsheetID, &drive.Permission{
		Type:         "user",
		Role:         "writer",
		EmailAddress: email,
	}).SendNotificationEmail(true).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to share spreadsheet with %s: %w", email, err)
	}
	return nil
}
