// Package report renders export results, manifest records and decoded links
// as terminal tables.
package report

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/lobinuxsoft/gamestream-presets/internal/export"
	"github.com/lobinuxsoft/gamestream-presets/pkg/shelllink"
	"github.com/lobinuxsoft/gamestream-presets/pkg/steam"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// Printer writes tables to Out. Box-drawing characters are used only when
// Rounded is set, so piped output stays plain ASCII.
type Printer struct {
	Out     io.Writer
	Rounded bool
}

// NewPrinter returns a Printer for f, rounded when f is a terminal.
func NewPrinter(f *os.File) *Printer {
	return &Printer{Out: f, Rounded: IsTerminal(f)}
}

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (p *Printer) renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	if p.Rounded {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleDefault)
	}

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

func (p *Printer) print(headers []string, rows [][]string, aligns []columnAlignment) error {
	_, err := fmt.Fprintln(p.Out, p.renderTable(headers, rows, aligns))
	return err
}

// Results prints one row per exported shortcut and one per failed target,
// followed by a summary line.
func (p *Printer) Results(results []export.Result, dryRun bool) error {
	okStatus := "ok"
	if dryRun {
		okStatus = "planned"
	}

	var rows [][]string
	var exported, failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
			rows = append(rows, []string{r.Target, "", "", "", "", "error: " + r.Err.Error()})
			continue
		}
		for _, it := range r.Items {
			status := okStatus
			if it.Err != nil {
				failed++
				status = "error: " + it.Err.Error()
			} else {
				exported++
			}
			rows = append(rows, []string{
				r.Target,
				strconv.FormatUint(uint64(it.AppID), 10),
				it.AppName,
				it.LinkPath,
				it.Source.String(),
				status,
			})
		}
	}

	err := p.print(
		[]string{"Target", "App ID", "Name", "Link", "Box Art", "Status"},
		rows,
		[]columnAlignment{alignLeft, alignRight},
	)
	if err != nil {
		return err
	}

	verb := "exported"
	if dryRun {
		verb = "planned"
	}
	_, err = fmt.Fprintf(p.Out, "%d %s, %d failed\n", exported, verb, failed)
	return err
}

// Shortcuts prints the decoded manifest records.
func (p *Printer) Shortcuts(shortcuts []steam.Shortcut) error {
	rows := make([][]string, 0, len(shortcuts))
	for _, sc := range shortcuts {
		hidden := ""
		if sc.IsHidden {
			hidden = "yes"
		}
		rows = append(rows, []string{
			sc.Index,
			strconv.FormatUint(uint64(sc.AppID), 10),
			sc.AppName,
			sc.Exe,
			sc.StartDir,
			strings.Join(sc.Tags, ", "),
			hidden,
		})
	}
	return p.print(
		[]string{"#", "App ID", "Name", "Exe", "Start Dir", "Tags", "Hidden"},
		rows,
		[]columnAlignment{alignRight, alignRight},
	)
}

// Link prints the fields of a decoded shell link as key/value rows.
func (p *Printer) Link(path string, l *shelllink.Link) error {
	rows := [][]string{
		{"File", path},
		{"Target", l.Target},
		{"Arguments", strconv.Quote(l.Arguments)},
		{"Working Dir", l.WorkingDir},
		{"Icon", l.IconLocation},
		{"Icon Index", strconv.Itoa(int(l.IconIndex))},
		{"Name", l.Name},
		{"Show", showName(l.ShowCommand)},
	}
	return p.print([]string{"Field", "Value"}, rows, nil)
}

func showName(cmd uint32) string {
	switch cmd {
	case shelllink.ShowNormal:
		return "normal"
	case shelllink.ShowMaximized:
		return "maximized"
	case shelllink.ShowMinNoActivate:
		return "minimized"
	default:
		return strconv.FormatUint(uint64(cmd), 10)
	}
}
