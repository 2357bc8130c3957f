package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/fastygo/ecowork/internal/apiclient"
)

// printer writes human output; colors are off when useColors is false.
type printer struct {
	out       io.Writer
	useColors bool
}

func newPrinter(out io.Writer, useColors bool) *printer {
	return &printer{out: out, useColors: useColors}
}

func (p *printer) paint(attr color.Attribute, format string, args ...interface{}) {
	if p.useColors {
		c := color.New(attr)
		c.EnableColor()
		c.Fprintf(p.out, format, args...)
		return
	}
	fmt.Fprintf(p.out, format, args...)
}

func (p *printer) Info(format string, args ...interface{}) {
	p.paint(color.FgCyan, format+"\n", args...)
}

func (p *printer) Success(format string, args ...interface{}) {
	if p.useColors {
		p.paint(color.FgGreen, "✓ "+format+"\n", args...)
		return
	}
	fmt.Fprintf(p.out, "[OK] "+format+"\n", args...)
}

func (p *printer) Warning(format string, args ...interface{}) {
	if p.useColors {
		p.paint(color.FgYellow, "! "+format+"\n", args...)
		return
	}
	fmt.Fprintf(p.out, "[WARN] "+format+"\n", args...)
}

func (p *printer) Field(name string, value interface{}) {
	if p.useColors {
		c := color.New(color.Bold)
		c.EnableColor()
		c.Fprintf(p.out, "%-18s", name+":")
		fmt.Fprintf(p.out, " %v\n", value)
		return
	}
	fmt.Fprintf(p.out, "%-18s %v\n", name+":", value)
}

// Source flags results that did not come from the backend.
func (p *printer) Source(source apiclient.Source) {
	switch source {
	case apiclient.SourceFallback:
		p.Warning("demo mode: backend unavailable, showing sample data")
	case apiclient.SourceEmpty:
		p.Warning("no data returned")
	}
}

func (p *printer) Table(headers []string, rows [][]string) {
	table := tablewriter.NewTable(p.out,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)
	table.Header(headers)
	table.Bulk(rows)
	table.Render()
}
