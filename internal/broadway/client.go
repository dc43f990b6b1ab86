// Package broadway loads the Broadway attendance dataset.
//
// The dataset is a single JSON array of objects carrying Year, Show_Theatre,
// Attendance and Total_Capacity. Numeric fields may be JSON numbers or numeric
// strings. The source is read exactly once per FetchRecords call: there are no
// retries and nothing is cached.
package broadway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/rewired-gh/broadway/internal/models"
)

var (
	// ErrEmptyDataset is returned when the document holds no records at all.
	ErrEmptyDataset = errors.New("dataset is empty")
	// ErrMalformedDataset is returned when the document is not a JSON array.
	ErrMalformedDataset = errors.New("dataset is not a JSON array")
	// ErrUnexpectedStatus is returned for non-2xx HTTP responses.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")
	// ErrNoValidRecords is returned when every record failed validation.
	ErrNoValidRecords = errors.New("dataset has no valid records")
)

// maxBodyBytes caps the size of the dataset document.
const maxBodyBytes = 64 << 20

// Client reads the attendance dataset from a URL or a local file.
type Client struct {
	source     string
	httpClient *http.Client
}

// SkippedRecord describes a dataset entry rejected during validation.
type SkippedRecord struct {
	Index  int
	Reason string
}

// LoadResult holds the valid records of a dataset read.
type LoadResult struct {
	Records  []models.AttendanceRecord
	Skipped  []SkippedRecord
	Source   string
	Duration time.Duration
}

// NewClient creates a new dataset client. Sources without an http or https
// scheme are treated as file paths.
func NewClient(source string, timeout time.Duration) *Client {
	return &Client{
		source: source,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Source returns the configured dataset location.
func (c *Client) Source() string {
	return c.source
}

// FetchRecords reads and validates the dataset once.
func (c *Client) FetchRecords(ctx context.Context) (*LoadResult, error) {
	start := time.Now()

	body, err := c.read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dataset: %w", err)
	}

	records, skipped, err := ParseRecords(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}

	return &LoadResult{
		Records:  records,
		Skipped:  skipped,
		Source:   c.source,
		Duration: time.Since(start),
	}, nil
}

func (c *Client) read(ctx context.Context) ([]byte, error) {
	if !isHTTPSource(c.source) {
		path := strings.TrimPrefix(c.source, "file://")
		return os.ReadFile(path)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.source, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}

func isHTTPSource(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// ParseRecords decodes a dataset document. Entries that are missing a field or
// fail validation are returned as skipped rather than failing the whole read.
func ParseRecords(body []byte) ([]models.AttendanceRecord, []SkippedRecord, error) {
	if !gjson.ValidBytes(body) {
		return nil, nil, ErrMalformedDataset
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsArray() {
		return nil, nil, ErrMalformedDataset
	}

	items := doc.Array()
	if len(items) == 0 {
		return nil, nil, ErrEmptyDataset
	}

	records := make([]models.AttendanceRecord, 0, len(items))
	var skipped []SkippedRecord
	for i, item := range items {
		record, err := parseRecord(item)
		if err == nil {
			err = record.Validate()
		}
		if err != nil {
			skipped = append(skipped, SkippedRecord{Index: i, Reason: err.Error()})
			continue
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, skipped, ErrNoValidRecords
	}
	return records, skipped, nil
}

func parseRecord(item gjson.Result) (models.AttendanceRecord, error) {
	if !item.IsObject() {
		return models.AttendanceRecord{}, errors.New("entry is not an object")
	}

	year, err := numberField(item, "Year")
	if err != nil {
		return models.AttendanceRecord{}, err
	}
	if year != math.Trunc(year) {
		return models.AttendanceRecord{}, fmt.Errorf("Year %v is not an integer", year)
	}

	theatre := item.Get("Show_Theatre")
	if theatre.Type != gjson.String {
		return models.AttendanceRecord{}, errors.New("Show_Theatre is missing or not a string")
	}

	attendance, err := numberField(item, "Attendance")
	if err != nil {
		return models.AttendanceRecord{}, err
	}
	capacity, err := numberField(item, "Total_Capacity")
	if err != nil {
		return models.AttendanceRecord{}, err
	}

	return models.AttendanceRecord{
		Year:          int(year),
		ShowTheatre:   strings.TrimSpace(theatre.Str),
		Attendance:    attendance,
		TotalCapacity: capacity,
	}, nil
}

// numberField reads a field that may be a JSON number or a numeric string.
func numberField(item gjson.Result, name string) (float64, error) {
	v := item.Get(name)
	switch v.Type {
	case gjson.Number:
		return v.Num, nil
	case gjson.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0, fmt.Errorf("%s %q is not numeric", name, v.Str)
		}
		return f, nil
	case gjson.Null:
		if !v.Exists() {
			return 0, fmt.Errorf("%s is missing", name)
		}
		return 0, fmt.Errorf("%s is null", name)
	default:
		return 0, fmt.Errorf("%s has unsupported type", name)
	}
}
