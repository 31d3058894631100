// Package ingest turns scanner CSV exports into typed snapshots.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/okian/dkp/internal/domain/snapshot"
)

const (
	defaultMaxRows = 100_000
	bom            = "\ufeff"
	// ctxCheckEvery bounds how many rows are read between cancellation checks.
	ctxCheckEvery = 1024
)

// Parser reads CSV exports. It is safe for concurrent use.
type Parser struct {
	columns snapshot.Columns
	maxRows int
	comma   rune
}

// NewParser creates a parser for the default scanner headers.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		columns: snapshot.DefaultColumns(),
		maxRows: defaultMaxRows,
		comma:   ',',
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Columns returns the headers p maps.
func (p *Parser) Columns() snapshot.Columns {
	return p.columns
}

// ParseString parses a whole export held in memory.
func (p *Parser) ParseString(ctx context.Context, raw string) (snapshot.Snapshot, error) {
	return p.Parse(ctx, strings.NewReader(raw))
}

// Parse reads an export. The header row must contain every required column;
// otherwise the error wraps ErrMissingColumns and names what is absent.
// Rows without a governor ID are skipped. Short rows read as blank cells.
func (p *Parser) Parse(ctx context.Context, r io.Reader) (snapshot.Snapshot, error) {
	cr := csv.NewReader(r)
	cr.Comma = p.comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptySnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrMalformed, err)
	}

	idx, err := p.mapHeader(header)
	if err != nil {
		return nil, err
	}

	var out snapshot.Snapshot
	for line := 1; ; line++ {
		if line%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("parse snapshot: %w", err)
			}
		}
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		rec := idx.record(row)
		if rec.ID == "" {
			continue
		}
		if len(out) >= p.maxRows {
			return nil, fmt.Errorf("%w: more than %d rows", ErrTooManyRows, p.maxRows)
		}
		out = append(out, rec)
	}
	return out, nil
}

// fieldIndex holds the position of each mapped column, -1 when absent.
type fieldIndex struct {
	id, name, power, troopPower int
	kills                       [snapshot.Tiers]int
	deads, killPoints           int
}

func (p *Parser) mapHeader(header []string) (fieldIndex, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = cleanCell(h)
		if i == 0 {
			h = strings.TrimPrefix(h, bom)
		}
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}

	var missing []string
	for _, name := range p.columns.Required() {
		if _, ok := pos[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fieldIndex{}, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	lookup := func(name string) int {
		if i, ok := pos[name]; ok {
			return i
		}
		return -1
	}
	idx := fieldIndex{
		id:         lookup(p.columns.ID),
		name:       lookup(p.columns.Name),
		power:      lookup(p.columns.Power),
		troopPower: lookup(p.columns.TroopPower),
		deads:      lookup(p.columns.Deads),
		killPoints: lookup(p.columns.KillPoints),
	}
	for i, name := range p.columns.Kills() {
		idx.kills[i] = lookup(name)
	}
	return idx, nil
}

func (f fieldIndex) record(row []string) snapshot.Record {
	cell := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return cleanCell(row[i])
	}
	r := snapshot.Record{
		ID:         cell(f.id),
		Name:       cell(f.name),
		Power:      cell(f.power),
		TroopPower: cell(f.troopPower),
		Deads:      cell(f.deads),
		KillPoints: cell(f.killPoints),
	}
	for i, k := range f.kills {
		r.Kills[i] = cell(k)
	}
	return r
}

func cleanCell(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, `"`, ""))
}
