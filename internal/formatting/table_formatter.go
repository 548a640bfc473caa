package formatting

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"healthsync/internal/cvconfig"
	"healthsync/internal/monitoredservice"
)

// TableFormatter provides rich table output formatting
type TableFormatter struct {
	options Options
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(options Options) Formatter {
	return &TableFormatter{options: options}
}

// FormatPlan lists one row per mutation followed by the totals.
func (f *TableFormatter) FormatPlan(plan monitoredservice.Plan) (string, error) {
	if len(plan.Changes) == 0 {
		return f.formatEmptyMessage(fmt.Sprintf("No health sources for %s", plan.MonitoredServiceIdentifier)), nil
	}

	t := f.createTable()
	t.SetTitle("%s (%s)", plan.MonitoredServiceIdentifier, plan.Scope)
	t.AppendHeader(table.Row{"HEALTH SOURCE", "TYPE", "ACTION", "CATEGORY", "CONFIG", "UUID"})

	var added, updated, deleted int
	for _, c := range plan.Changes {
		name := c.Identifier
		if c.Removed {
			name += " (removed)"
		}
		for _, cfg := range c.Mutations.Added {
			t.AppendRow(table.Row{name, c.Type, f.colorize(text.FgGreen, "add"), cfg.Category, cfg.Label(), "-"})
		}
		for _, cfg := range c.Mutations.Updated {
			t.AppendRow(table.Row{name, c.Type, f.colorize(text.FgYellow, "update"), cfg.Category, cfg.Label(), cfg.UUID})
		}
		for _, cfg := range c.Mutations.Deleted {
			t.AppendRow(table.Row{name, cfg.Type(), f.colorize(text.FgRed, "delete"), cfg.Category, cfg.Label(), cfg.UUID})
		}
		a, u, d := c.Mutations.Counts()
		added, updated, deleted = added+a, updated+u, deleted+d
	}
	t.AppendFooter(table.Row{"", "", "", "", "TOTAL", fmt.Sprintf("%d to add, %d to update, %d to delete", added, updated, deleted)})
	return t.Render() + "\n", nil
}

// FormatMonitoredService lists the health sources of a document.
func (f *TableFormatter) FormatMonitoredService(ms monitoredservice.MonitoredService) (string, error) {
	if len(ms.HealthSources) == 0 {
		return f.formatEmptyMessage(fmt.Sprintf("No health sources for %s", ms.Identifier)), nil
	}

	t := f.createTable()
	t.SetTitle("%s: service %s in %s", ms.Identifier, ms.ServiceRef, ms.EnvironmentRef)
	t.AppendHeader(table.Row{"IDENTIFIER", "NAME", "TYPE", "SPEC"})
	for _, hs := range ms.HealthSources {
		t.AppendRow(table.Row{hs.Identifier, hs.Name, hs.Type, PrettyJSON(hs.Spec)})
	}
	return t.Render() + "\n", nil
}

func (f *TableFormatter) FormatTypes(types []cvconfig.DataSourceType) (string, error) {
	t := f.createTable()
	t.AppendHeader(table.Row{"TYPE", "KIND"})
	for _, row := range typeRows(types) {
		t.AppendRow(table.Row{row.Type, row.Kind})
	}
	return t.Render() + "\n", nil
}

// createTable creates a new table with standard styling
func (f *TableFormatter) createTable() table.Writer {
	t := table.NewWriter()
	if f.options.Color {
		t.SetStyle(table.StyleRounded)
	} else {
		t.SetStyle(table.StyleLight)
	}
	t.Style().Format.Footer = text.FormatDefault
	return t
}

func (f *TableFormatter) colorize(color text.Color, s string) string {
	if !f.options.Color {
		return s
	}
	return color.Sprint(s)
}

// formatEmptyMessage formats empty result messages
func (f *TableFormatter) formatEmptyMessage(message string) string {
	return f.colorize(text.FgYellow, strings.TrimSpace(message)) + "\n"
}
