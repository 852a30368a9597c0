package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/alanyoungcy/skinscout/internal/domain"
)

// ReportArchiver writes trend reports as JSON objects keyed by item and range:
//
//	trends/{item}/{start}_{end}.json
//
// Reports larger than MinPartSize go through a multipart upload.
type ReportArchiver struct {
	writer domain.BlobWriter
}

var _ domain.TrendArchiver = (*ReportArchiver)(nil)

// NewReportArchiver creates a ReportArchiver on top of any BlobWriter.
func NewReportArchiver(w domain.BlobWriter) *ReportArchiver {
	return &ReportArchiver{writer: w}
}

// Archive uploads report and returns the object path.
func (a *ReportArchiver) Archive(ctx context.Context, report domain.TrendReport) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("s3blob: marshal report %q: %w", report.Item, err)
	}

	path := ReportPath(report.Item, report.Start, report.End)
	if int64(len(data)) > MinPartSize {
		err = a.writer.PutMultipart(ctx, path, bytes.NewReader(data), MinPartSize)
	} else {
		err = a.writer.Put(ctx, path, bytes.NewReader(data), "application/json")
	}
	if err != nil {
		return "", err
	}
	return path, nil
}

// ReportPath builds the object path for a report. Open range bounds render
// as "open".
func ReportPath(item domain.ItemID, start, end domain.Date) string {
	return fmt.Sprintf("trends/%s/%s_%s.json", pathSegment(string(item)), dateSegment(start), dateSegment(end))
}

func dateSegment(d domain.Date) string {
	if d.IsZero() {
		return "open"
	}
	return d.String()
}

// pathSegment makes an item name safe for use as one key segment.
func pathSegment(s string) string {
	var b bytes.Buffer
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
