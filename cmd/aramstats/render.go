package main

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"
	"time"

	"aram-stats/internal/domain"
	"aram-stats/internal/service"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func renderStats(w io.Writer, keyHeader string, rows []domain.StatRow, err error) error {
	if err != nil {
		return err
	}

	withPick := len(rows) > 0 && rows[0].PickRate != nil

	tw := newTable(w)
	header := []string{strings.ToUpper(keyHeader), "GAMES", "WINS", "WIN%"}
	if withPick {
		header = append(header, "PICK%")
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, r := range rows {
		line := fmt.Sprintf("%s\t%d\t%d\t%.2f", r.Label(), r.Total, r.Wins, r.WinRate)
		if withPick && r.PickRate != nil {
			line += fmt.Sprintf("\t%.2f", *r.PickRate)
		}
		fmt.Fprintln(tw, line)
	}
	return tw.Flush()
}

func renderOverview(w io.Writer, ov domain.Overview) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "matches\t%d\n", ov.Matches)
	fmt.Fprintf(tw, "players\t%d\n", ov.Players)
	fmt.Fprintf(tw, "rows\t%d\n", ov.Rows)
	if ov.DatasetID != "" {
		fmt.Fprintf(tw, "dataset\t%s\n", ov.DatasetID)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return renderStats(w, "champion", ov.TopChampions, nil)
}

func renderDetail(w io.Writer, d domain.ChampionDetail) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "champion\t%s\n", d.Champion)
	fmt.Fprintf(tw, "games\t%d\n", d.Games)
	fmt.Fprintf(tw, "wins\t%d\n", d.Wins)
	fmt.Fprintf(tw, "win rate\t%.2f\n", d.WinRate)
	fmt.Fprintf(tw, "avg kda\t%s\n", formatFloat(d.AvgKDA))
	fmt.Fprintf(tw, "avg damage/min\t%s\n", formatFloat(d.AvgDamagePerMin))
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return renderStats(w, "item", d.Items, nil)
}

func renderRows(w io.Writer, page *service.RowsPage) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "MATCH\tTEAM\tCHAMPION\tWIN\tK/D/A\tKDA\tDPM\tITEMS")
	for _, p := range page.Rows {
		var items []string
		for _, it := range p.Items {
			if it != "" {
				items = append(items, it)
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%g/%g/%g\t%.2f\t%s\t%s\n",
			p.MatchID, p.TeamID, p.Champion, p.Win,
			p.Kills, p.Deaths, p.Assists, p.KDA(),
			formatFloat(p.DamagePerMinute()), strings.Join(items, ", "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d of %d rows\n", len(page.Rows), page.Total)
	return err
}

func renderDatasets(w io.Writer, list []domain.Dataset) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tROWS\tCREATED\tSOURCE")
	for _, ds := range list {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", ds.ID, ds.Name, ds.RowCount, ds.CreatedAt.Local().Format(time.DateTime), ds.Source)
	}
	return tw.Flush()
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}
