// Package report renders a resource's history and deliveries as downloadable documents.
package report

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"liyu1981.xyz/vessel-resource-service/pkg/models"
	"liyu1981.xyz/vessel-resource-service/pkg/store"
)

// Data is everything one report shows.
type Data struct {
	Resource    models.Resource
	History     []models.HistoryEntry
	Deliveries  []models.Delivery
	From        *time.Time
	To          *time.Time
	GeneratedAt time.Time
}

type Writer interface {
	Format() string
	ContentType() string
	Write(w io.Writer, data *Data) error
}

// Source is the read side of the vessel resource service.
type Source interface {
	GetResource(ctx context.Context, t models.ResourceType) (*models.Resource, error)
	GetHistory(ctx context.Context, t models.ResourceType, filter store.HistoryFilter) (store.HistoryPage, error)
	GetDeliveries(ctx context.Context, t models.ResourceType, filter store.HistoryFilter) (store.DeliveryPage, error)
}

// Collect reads the resource and every history entry and delivery in the filter's date range.
// Page and Limit of the filter are ignored.
func Collect(ctx context.Context, src Source, t models.ResourceType, filter store.HistoryFilter, now time.Time) (*Data, error) {
	r, err := src.GetResource(ctx, t)
	if err != nil {
		return nil, err
	}
	data := &Data{
		Resource:    *r,
		From:        filter.StartDate,
		To:          filter.EndDate,
		GeneratedAt: now,
	}
	data.Resource.History = nil
	data.Resource.Deliveries = nil

	filter.Limit = store.MaxPageLimit
	for page := 1; ; page++ {
		filter.Page = page
		hp, err := src.GetHistory(ctx, t, filter)
		if err != nil {
			return nil, fmt.Errorf("read history page %d: %w", page, err)
		}
		data.History = append(data.History, hp.Entries...)
		if len(hp.Entries) < filter.Limit || int64(len(data.History)) >= hp.Total {
			break
		}
	}

	for page := 1; ; page++ {
		filter.Page = page
		dp, err := src.GetDeliveries(ctx, t, filter)
		if err != nil {
			return nil, fmt.Errorf("read deliveries page %d: %w", page, err)
		}
		data.Deliveries = append(data.Deliveries, dp.Deliveries...)
		if len(dp.Deliveries) < filter.Limit || int64(len(data.Deliveries)) >= dp.Total {
			break
		}
	}

	return data, nil
}

// Registry looks writers up by format name, case-insensitively.
type Registry struct {
	writers map[string]Writer
}

// NewRegistry registers the xlsx and pdf writers. A nil timezone means UTC.
func NewRegistry(timezone *time.Location) *Registry {
	if timezone == nil {
		timezone = time.UTC
	}
	r := &Registry{writers: make(map[string]Writer)}
	r.Register(NewXLSXWriter(timezone))
	r.Register(NewPDFWriter(timezone))
	return r
}

func (r *Registry) Register(w Writer) {
	r.writers[strings.ToLower(w.Format())] = w
}

func (r *Registry) Get(format string) (Writer, error) {
	normalized := strings.ToLower(strings.TrimSpace(format))
	w, ok := r.writers[normalized]
	if !ok {
		return nil, fmt.Errorf("unsupported report format %q, supported formats: %s",
			format, strings.Join(r.Formats(), ", "))
	}
	return w, nil
}

func (r *Registry) Formats() []string {
	formats := make([]string, 0, len(r.writers))
	for format := range r.writers {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

func (r *Registry) Has(format string) bool {
	_, ok := r.writers[strings.ToLower(strings.TrimSpace(format))]
	return ok
}

// Filename is the suggested download name, e.g. fuel-report-20260301.xlsx.
func Filename(data *Data, format string) string {
	return fmt.Sprintf("%s-report-%s.%s", data.Resource.Type, data.GeneratedAt.Format("20060102"), strings.ToLower(format))
}

func formatRange(from, to *time.Time, tz *time.Location) string {
	const layout = "2006-01-02 15:04"
	switch {
	case from != nil && to != nil:
		return from.In(tz).Format(layout) + " to " + to.In(tz).Format(layout)
	case from != nil:
		return "from " + from.In(tz).Format(layout)
	case to != nil:
		return "until " + to.In(tz).Format(layout)
	default:
		return "all records"
	}
}
