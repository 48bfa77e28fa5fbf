package sheets

import (
	"fmt"
	"strings"

	"casinha/internal/core"
)

// Column headers of the manual tab.
const (
	ColManualDate   = "data"
	ColManualAmount = "valor"
	ColManualPayer  = "pagador"
)

// Column headers of the form responses tab.
const (
	ColBotTimestamp   = "Carimbo de data/hora"
	ColBotType        = "Tipo"
	ColBotAmount      = "Valor"
	ColBotDescription = "Descrição"
	ColBotResponsible = "Responsável"
)

// BotColumns is the column order of the form responses tab.
var BotColumns = []string{ColBotTimestamp, ColBotType, ColBotAmount, ColBotDescription, ColBotResponsible}

// Table is a sheet read as strings, first row as header.
type Table struct {
	Header []string
	Rows   [][]string
}

// NewTable splits values into header and rows. Empty input yields an empty table.
func NewTable(values [][]string) Table {
	if len(values) == 0 {
		return Table{}
	}
	header := make([]string, len(values[0]))
	for i, h := range values[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	return Table{Header: header, Rows: values[1:]}
}

// Column returns the index of name in the header (case-insensitive), or -1.
func (t Table) Column(name string) int {
	return indexOf(t.Header, name)
}

func (t Table) requireColumns(names ...string) ([]int, error) {
	idx := make([]int, len(names))
	var missing []string
	for i, n := range names {
		idx[i] = t.Column(n)
		if idx[i] == -1 {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("unexpected header: missing %s; got headers=%v", strings.Join(missing, ","), t.Header)
	}
	return idx, nil
}

// ManualRows decodes the manual tab.
func ManualRows(t Table) ([]core.RawManualRow, error) {
	if len(t.Header) == 0 {
		return nil, nil
	}
	idx, err := t.requireColumns(ColManualDate, ColManualAmount, ColManualPayer)
	if err != nil {
		return nil, err
	}
	out := make([]core.RawManualRow, 0, len(t.Rows))
	for _, row := range t.Rows {
		out = append(out, core.RawManualRow{
			Date:   safeGet(row, idx[0]),
			Amount: safeGet(row, idx[1]),
			Payer:  safeGet(row, idx[2]),
		})
	}
	return out, nil
}

// BotRows decodes the form responses tab. Tipo and Descrição are optional.
func BotRows(t Table) ([]core.RawBotRow, error) {
	if len(t.Header) == 0 {
		return nil, nil
	}
	idx, err := t.requireColumns(ColBotTimestamp, ColBotAmount, ColBotResponsible)
	if err != nil {
		return nil, err
	}
	colType := t.Column(ColBotType)
	colDesc := t.Column(ColBotDescription)
	out := make([]core.RawBotRow, 0, len(t.Rows))
	for _, row := range t.Rows {
		out = append(out, core.RawBotRow{
			Timestamp:   safeGet(row, idx[0]),
			Type:        safeGet(row, colType),
			Amount:      safeGet(row, idx[1]),
			Description: safeGet(row, colDesc),
			Responsible: safeGet(row, idx[2]),
		})
	}
	return out, nil
}

// BotRow lays out an entry in BotColumns order, stamped with timestamp.
func BotRow(timestamp string, e core.Entry) []string {
	return []string{timestamp, e.Type, e.Amount, e.Description, e.Buyer}
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return strings.TrimSpace(arr[idx])
}
