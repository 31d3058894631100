package ingest

import "github.com/okian/dkp/internal/domain/snapshot"

// Option applies a configuration option to the Parser.
type Option func(*Parser)

// WithColumns sets the header names to look for. Empty names keep defaults.
func WithColumns(c snapshot.Columns) Option {
	return func(p *Parser) {
		p.columns = c.WithDefaults()
	}
}

// WithMaxRows caps the number of data rows accepted.
func WithMaxRows(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.maxRows = n
		}
	}
}

// WithComma sets the field delimiter.
func WithComma(r rune) Option {
	return func(p *Parser) {
		if r != 0 && r != '"' && r != '\n' && r != '\r' {
			p.comma = r
		}
	}
}
