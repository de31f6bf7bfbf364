package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/papertrade/internal/domain"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	warning   = lipgloss.AdaptiveColor{Light: "#F25D94", Dark: "#F25D94"}

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(highlight).MarginTop(1)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	okStyle     = lipgloss.NewStyle().Foreground(special)
	lossStyle   = lipgloss.NewStyle().Foreground(warning)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(subtle)).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func gain(d decimal.Decimal) string {
	s := domain.FormatUSD(d)
	if d.IsNegative() {
		return lossStyle.Render(s)
	}
	return okStyle.Render(s)
}

func renderCatalog(w io.Writer, instruments []domain.Instrument) {
	t := newTable("Ticker", "Name", "Category", "Price", "Base")
	for _, inst := range instruments {
		t.Row(inst.Ticker, inst.Name, string(inst.Category),
			domain.FormatUSD(inst.CurrentPrice), domain.FormatUSD(inst.BasePrice))
	}
	fmt.Fprintln(w, t.Render())
}

func renderAccount(w io.Writer, state domain.AccountState) {
	fmt.Fprintln(w, titleStyle.Render(state.Username))
	fmt.Fprintf(w, "id:      %s\n", state.ID)
	fmt.Fprintf(w, "balance: %s\n", domain.FormatUSD(state.Balance))
	fmt.Fprintf(w, "lots:    %d\n", len(state.Lots))
}

func renderSummary(w io.Writer, username string, s domain.Summary) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Portfolio of %s", username)))

	t := newTable("Lot", "Ticker", "Name", "Quantity", "Cost basis", "Price", "Value", "Gain")
	for _, h := range s.Holdings {
		t.Row(h.Lot.ID, h.Lot.Ticker, h.Name, h.Lot.Quantity.String(),
			domain.FormatUSD(h.Lot.CostBasis), domain.FormatUSD(h.CurrentPrice),
			domain.FormatUSD(h.MarketValue), gain(h.Gain))
	}
	if len(s.Holdings) > 0 {
		fmt.Fprintln(w, t.Render())
	} else {
		fmt.Fprintln(w, "no holdings")
	}

	fmt.Fprintf(w, "cash:     %s\n", domain.FormatUSD(s.Cash))
	fmt.Fprintf(w, "invested: %s\n", domain.FormatUSD(s.Invested))
	fmt.Fprintf(w, "value:    %s\n", domain.FormatUSD(s.MarketValue))
	fmt.Fprintf(w, "gain:     %s\n", gain(s.Gain))
	fmt.Fprintf(w, "equity:   %s\n", domain.FormatUSD(s.Equity))
}

func renderLedger(w io.Writer, ledger []domain.Transaction) {
	if len(ledger) == 0 {
		fmt.Fprintln(w, "no transactions")
		return
	}
	t := newTable("Date", "Kind", "Ticker", "Category", "Quantity", "Unit price", "Total")
	for _, tx := range ledger {
		t.Row(tx.Date.String(), string(tx.Kind), tx.Ticker, string(tx.Category),
			tx.Quantity.String(), domain.FormatUSD(tx.UnitPrice), domain.FormatUSD(tx.Total()))
	}
	fmt.Fprintln(w, t.Render())
}

func renderTransaction(w io.Writer, tx domain.Transaction, balance decimal.Decimal) {
	fmt.Fprintln(w, okStyle.Render("✓ "+tx.String()))
	fmt.Fprintf(w, "balance: %s\n", domain.FormatUSD(balance))
}
