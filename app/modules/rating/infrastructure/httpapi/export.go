package ratinghttp

import (
	"bytes"
	"fmt"

	ratingservice "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/application"
	ratingdb "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/infrastructure/repositories"
	"github.com/xuri/excelize/v2"
)

const (
	leaderboardSheet = "Leaderboard"
	seasonSheet      = "Last Season"
)

var (
	leaderboardHeader = []any{"Position", "Runner ID", "Runner", "RR", "Tier"}
	seasonHeader      = []any{"Position", "Runner ID", "Runner", "Final RR", "Tier"}
)

// BuildStandingsWorkbook writes the current leaderboard and, when given, the
// last archived season to an XLSX workbook.
func BuildStandingsWorkbook(entries []ratingservice.LeaderboardEntry, lastSeason *ratingdb.Season) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", leaderboardSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	rows := make([][]any, len(entries))
	for i, e := range entries {
		rows[i] = []any{e.Position, string(e.UserID), e.DisplayName, e.RatingPoints, e.Tier.Name}
	}
	if err := writeSheet(f, leaderboardSheet, leaderboardHeader, rows); err != nil {
		return nil, err
	}

	if lastSeason != nil {
		if _, err := f.NewSheet(seasonSheet); err != nil {
			return nil, fmt.Errorf("failed to add sheet %q: %w", seasonSheet, err)
		}
		rows := make([][]any, len(lastSeason.Standings))
		for i, s := range lastSeason.Standings {
			rows[i] = []any{s.Position, string(s.UserID), s.DisplayName, s.RatingPoints, s.Tier}
		}
		if err := writeSheet(f, seasonSheet, seasonHeader, rows); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}

func writeSheet(f *excelize.File, sheet string, header []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
