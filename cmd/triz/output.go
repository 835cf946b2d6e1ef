package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/HendryAvila/triz-master/internal/advisor"
	"github.com/HendryAvila/triz-master/internal/catalog"
	"github.com/HendryAvila/triz-master/internal/history"
)

var (
	warnColor    = color.New(color.FgYellow)
	headingColor = color.New(color.FgCyan, color.Bold)
)

// warnf prints a highlighted warning line.
func warnf(w io.Writer, format string, args ...any) {
	_, _ = warnColor.Fprintf(w, format+"\n", args...)
}

func heading(w io.Writer, s string) {
	_, _ = headingColor.Fprintln(w, s)
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	return t
}

func render(w io.Writer, t table.Writer) {
	fmt.Fprintln(w, t.Render())
}

func parametersTable(params []catalog.Parameter, loc catalog.Locale) table.Writer {
	t := newTable()
	t.AppendHeader(table.Row{"ID", "Parameter"})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 1, Align: text.AlignRight}})
	for _, p := range params {
		t.AppendRow(table.Row{p.ID, p.Name.Get(loc)})
	}
	return t
}

// printAnalysis shows the contradiction and its principles.
func printAnalysis(w io.Writer, a *advisor.Analysis) {
	loc := a.Locale
	fmt.Fprintf(w, "Improving: %d. %s\n", a.Improving.ID, a.Improving.Name.Get(loc))
	fmt.Fprintf(w, "Worsening: %d. %s\n", a.Worsening.ID, a.Worsening.Name.Get(loc))
	fmt.Fprintf(w, "Source:    %s\n", a.Resolution.Source)
	if a.Explanation != "" {
		fmt.Fprintf(w, "\n%s\n", a.Explanation)
	}
	fmt.Fprintln(w)

	if a.Resolution.Empty() {
		warnf(w, "No known or inferable principle for this contradiction. Try reframing it.")
		return
	}

	t := newTable()
	t.AppendHeader(table.Row{"ID", "Principle", "Description"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 3, WidthMax: 60},
	})
	byID := make(map[int]catalog.Principle, len(a.Principles))
	for _, p := range a.Principles {
		byID[p.ID] = p
	}
	for _, id := range a.PrincipleIDs() {
		if p, ok := byID[id]; ok {
			t.AppendRow(table.Row{id, p.Name.Get(loc), p.Description.Get(loc)})
		} else {
			t.AppendRow(table.Row{id, "-", "not described in this catalog"})
		}
	}
	render(w, t)
}

func sessionsTable(sessions []history.Session) table.Writer {
	t := newTable()
	t.AppendHeader(table.Row{"ID", "Created", "Lang", "Contradiction", "Principles", "Problem"})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 6, WidthMax: 50}})
	for _, s := range sessions {
		pair := "-"
		if s.ImprovingID != nil && s.WorseningID != nil {
			pair = fmt.Sprintf("%d → %d", *s.ImprovingID, *s.WorseningID)
		}
		t.AppendRow(table.Row{
			s.ID,
			s.CreatedAt.Local().Format("2006-01-02 15:04"),
			s.Locale,
			pair,
			joinInts(s.Principles),
			oneLine(s.Problem),
		})
	}
	return t
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ", ")
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
