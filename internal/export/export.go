package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/apache/arrow/go/v14/parquet"
	"github.com/apache/arrow/go/v14/parquet/pqarrow"

	"github.com/matheuskafuri/forge/internal/api"
)

type Format string

const (
	Parquet Format = "parquet"
	JSON    Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case Parquet, JSON:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown export format %q (valid: parquet, json)", s)
}

// Lister is the paging call export needs.
type Lister interface {
	ListNotes(ctx context.Context, opts api.ListOptions) (api.NotesPage, error)
}

// FetchAll pages through every note matching category. It stops at the
// reported total or on the first short page.
func FetchAll(ctx context.Context, l Lister, category string, pageSize int) ([]api.ProcessedNote, error) {
	if pageSize <= 0 {
		pageSize = api.DefaultLimit
	}
	var all []api.ProcessedNote
	for offset := 0; ; offset += pageSize {
		page, err := l.ListNotes(ctx, api.ListOptions{Category: category, Limit: pageSize, Offset: offset})
		if err != nil {
			return nil, fmt.Errorf("listing notes at offset %d: %w", offset, err)
		}
		all = append(all, page.Notes...)
		if len(page.Notes) < pageSize || len(all) >= page.Total {
			return all, nil
		}
	}
}

func Write(w io.Writer, format Format, notes []api.ProcessedNote) error {
	switch format {
	case Parquet:
		return WriteParquet(w, notes)
	case JSON:
		return WriteJSON(w, notes)
	}
	return fmt.Errorf("unknown export format %q", format)
}

func WriteJSON(w io.Writer, notes []api.ProcessedNote) error {
	if notes == nil {
		notes = []api.ProcessedNote{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(notes)
}

func noteSchema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.BinaryTypes.String},
		{Name: "original", Type: arrow.BinaryTypes.String},
		{Name: "title", Type: arrow.BinaryTypes.String},
		{Name: "category", Type: arrow.BinaryTypes.String},
		{Name: "markdown", Type: arrow.BinaryTypes.String},
		{Name: "links", Type: arrow.BinaryTypes.String},
		{Name: "created_at", Type: arrow.FixedWidthTypes.Timestamp_ms},
		{Name: "synced_at", Type: arrow.FixedWidthTypes.Timestamp_ms, Nullable: true},
	}, nil)
}

// WriteParquet writes notes as one row group. Links are stored as JSON text.
func WriteParquet(w io.Writer, notes []api.ProcessedNote) error {
	schema := noteSchema()
	mem := memory.NewGoAllocator()
	builder := array.NewRecordBuilder(mem, schema)
	defer builder.Release()

	for _, n := range notes {
		links := n.Links
		if links == nil {
			links = []api.Link{}
		}
		linksJSON, err := json.Marshal(links)
		if err != nil {
			return fmt.Errorf("encoding links for %s: %w", n.ID, err)
		}

		builder.Field(0).(*array.StringBuilder).Append(n.ID)
		builder.Field(1).(*array.StringBuilder).Append(n.Original)
		builder.Field(2).(*array.StringBuilder).Append(n.Title)
		builder.Field(3).(*array.StringBuilder).Append(n.Category)
		builder.Field(4).(*array.StringBuilder).Append(n.Markdown)
		builder.Field(5).(*array.StringBuilder).Append(string(linksJSON))
		builder.Field(6).(*array.TimestampBuilder).Append(arrow.Timestamp(n.CreatedAt.UnixMilli()))
		if n.SyncedAt != nil {
			builder.Field(7).(*array.TimestampBuilder).Append(arrow.Timestamp(n.SyncedAt.UnixMilli()))
		} else {
			builder.Field(7).(*array.TimestampBuilder).AppendNull()
		}
	}

	record := builder.NewRecord()
	defer record.Release()

	writer, err := pqarrow.NewFileWriter(schema, w, parquet.NewWriterProperties(), pqarrow.DefaultWriterProps())
	if err != nil {
		return fmt.Errorf("creating parquet writer: %w", err)
	}
	if err := writer.Write(record); err != nil {
		writer.Close()
		return fmt.Errorf("writing parquet: %w", err)
	}
	return writer.Close()
}
