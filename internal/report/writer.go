// Package report exports batch insights to an xlsx workbook.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"cc-insights-go/internal/actionable"
	"cc-insights-go/internal/aggregator"
	"cc-insights-go/internal/types"
)

const (
	summarySheet       = "Summary"
	conversationsSheet = "Conversations"
	actionsSheet       = "Action Cards"
)

// Write renders one workbook: a batch summary, one row per conversation and
// the generated action cards.
func Write(path, date string, records []types.EnrichmentRecord, ins aggregator.Insight, cards []actionable.ActionCard) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), summarySheet)
	if err := writeSummary(f, date, ins); err != nil {
		return err
	}
	if err := writeConversations(f, records); err != nil {
		return err
	}
	if err := writeActions(f, cards); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, date string, ins aggregator.Insight) error {
	rows := [][]interface{}{
		{"Batch date", date},
		{"Conversations", ins.TotalConversations},
		{"Phrase matches", ins.TotalMatches},
	}
	for _, flag := range sortedKeys(ins.FlagCounts) {
		rows = append(rows, []interface{}{flag, ins.FlagCounts[flag]})
	}
	return writeRows(f, summarySheet, rows)
}

func writeConversations(f *excelize.File, records []types.EnrichmentRecord) error {
	if _, err := f.NewSheet(conversationsSheet); err != nil {
		return fmt.Errorf("new sheet: %w", err)
	}
	rows := [][]interface{}{
		{"Conversation ID", "Agent", "Queue", "Outcome", "Turns", "Duration (s)", "Matches", "Flags"},
	}
	for i := range records {
		r := &records[i]
		rows = append(rows, []interface{}{
			r.ConversationID,
			r.AgentID,
			string(r.Queue),
			string(r.CallOutcome),
			r.TurnCount,
			r.DurationSec,
			r.TotalMatchCount(),
			strings.Join(r.Flags, ", "),
		})
	}
	return writeRows(f, conversationsSheet, rows)
}

func writeActions(f *excelize.File, cards []actionable.ActionCard) error {
	if _, err := f.NewSheet(actionsSheet); err != nil {
		return fmt.Errorf("new sheet: %w", err)
	}
	rows := [][]interface{}{
		{"Agent", "Insight", "Action", "Impact"},
	}
	for _, c := range cards {
		rows = append(rows, []interface{}{c.AgentID, c.Insight, c.Action, c.Impact})
	}
	return writeRows(f, actionsSheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d on %s: %w", i+1, sheet, err)
		}
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
