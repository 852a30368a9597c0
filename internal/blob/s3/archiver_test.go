package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/alanyoungcy/skinscout/internal/domain"
)

type memWriter struct {
	puts      map[string][]byte
	multipart int
	err       error
}

func (m *memWriter) Put(_ context.Context, path string, data io.Reader, _ string) error {
	if m.err != nil {
		return m.err
	}
	b, _ := io.ReadAll(data)
	if m.puts == nil {
		m.puts = map[string][]byte{}
	}
	m.puts[path] = b
	return nil
}

func (m *memWriter) PutMultipart(ctx context.Context, path string, data io.Reader, _ int64) error {
	m.multipart++
	return m.Put(ctx, path, data, "")
}

func TestReportPath(t *testing.T) {
	start := domain.NewDate(2024, 1, 1)
	end := domain.NewDate(2024, 1, 31)

	got := ReportPath("AK-47 | Redline (Field-Tested)", start, end)
	want := "trends/AK-47___Redline__Field-Tested_/2024-01-01_2024-01-31.json"
	if got != want {
		t.Errorf("ReportPath = %q, want %q", got, want)
	}

	if got := ReportPath("x", domain.Date{}, end); got != "trends/x/open_2024-01-31.json" {
		t.Errorf("open start: got %q", got)
	}
}

func TestReportArchiver_Archive(t *testing.T) {
	w := &memWriter{}
	a := NewReportArchiver(w)
	report := domain.TrendReport{
		Item:   "Glock-18 | Fade",
		Start:  domain.NewDate(2024, 3, 1),
		End:    domain.NewDate(2024, 3, 7),
		Status: domain.StatusNoData,
	}

	path, err := a.Archive(context.Background(), report)
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	body, ok := w.puts[path]
	if !ok {
		t.Fatalf("nothing written at %q", path)
	}
	if w.multipart != 0 {
		t.Errorf("small report used multipart")
	}

	var decoded domain.TrendReport
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Item != report.Item || decoded.Status != domain.StatusNoData {
		t.Errorf("decoded = %+v", decoded)
	}
	if !bytes.Contains(body, []byte(`"start": "2024-03-01"`)) {
		t.Errorf("start date not encoded as YYYY-MM-DD: %s", body)
	}
}

func TestReportArchiver_WriterError(t *testing.T) {
	boom := errors.New("boom")
	a := NewReportArchiver(&memWriter{err: boom})
	if _, err := a.Archive(context.Background(), domain.TrendReport{Item: "x"}); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}

func TestKeyPrefix(t *testing.T) {
	c := &Client{prefix: cleanPrefix("/reports/")}
	if got := c.key("/trends/a.json"); got != "reports/trends/a.json" {
		t.Errorf("key = %q", got)
	}
	c = &Client{prefix: cleanPrefix("")}
	if got := c.key("trends/a.json"); got != "trends/a.json" {
		t.Errorf("key = %q", got)
	}
}

func TestNormaliseEndpoint(t *testing.T) {
	cases := map[string]string{
		"https://e2.example.com": "https://e2.example.com",
		"minio:9000":             "http://minio:9000",
	}
	for in, want := range cases {
		if got := normaliseEndpoint(in, false); got != want {
			t.Errorf("normaliseEndpoint(%q) = %q, want %q", in, got, want)
		}
	}
	if got := normaliseEndpoint("r2.example.com", true); got != "https://r2.example.com" {
		t.Errorf("ssl: got %q", got)
	}
}
