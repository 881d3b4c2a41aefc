package views

import (
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mingleapp/mingle/internal/delivery"
	"github.com/mingleapp/mingle/internal/store"
	"github.com/mingleapp/mingle/internal/tui/ui"
	"github.com/rivo/tview"
)

// SearchView searches the cached message history.
type SearchView struct {
	*tview.Flex
	theme   *ui.Theme
	input   *tview.InputField
	results *tview.Table
	data    []store.SearchResult
	onQuery func(query string)
}

// NewSearchView creates the search page.
func NewSearchView(theme *ui.Theme) *SearchView {
	input := tview.NewInputField().
		SetLabel(" Search: ").
		SetFieldWidth(0)
	input.SetFieldBackgroundColor(theme.BgColor)
	input.SetFieldTextColor(theme.FgColor)
	input.SetLabelColor(theme.LabelColor)

	results := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	results.SetBorder(true).SetTitle(" Results ").SetTitleColor(theme.TitleColor)
	results.SetBorderColor(theme.BorderColor)
	results.SetBackgroundColor(theme.BgColor)
	results.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(input, 1, 0, true).
		AddItem(results, 0, 1, false)

	return &SearchView{
		Flex:    flex,
		theme:   theme,
		input:   input,
		results: results,
	}
}

// SetOnQuery sets the callback when a query is submitted.
func (sv *SearchView) SetOnQuery(fn func(query string)) {
	sv.onQuery = fn
	sv.input.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter && sv.onQuery != nil {
			sv.onQuery(sv.input.GetText())
		}
	})
}

// Update re-renders the result table.
func (sv *SearchView) Update(results []store.SearchResult) {
	sv.data = results
	sv.results.Clear()

	headers := []string{" FROM", " MATCH", " TIME"}
	for col, h := range headers {
		sv.results.SetCell(0, col, tview.NewTableCell(h).
			SetSelectable(false).
			SetTextColor(sv.theme.TableHeaderFg).
			SetAttributes(tcell.AttrBold))
	}

	for i, r := range results {
		row := i + 1
		sender := r.Message.SenderName
		if r.Message.FromMe {
			sender = "You"
		}
		ts := delivery.FormatTimestamp(time.UnixMilli(r.Message.Timestamp), time.Now())
		sv.results.SetCell(row, 0, tview.NewTableCell(" "+tview.Escape(sender)).SetMaxWidth(20).SetTextColor(sv.theme.FgColor))
		sv.results.SetCell(row, 1, tview.NewTableCell(" "+tview.Escape(r.Snippet)).SetExpansion(1).SetTextColor(sv.theme.FgColor))
		sv.results.SetCell(row, 2, tview.NewTableCell(" "+ts).SetMaxWidth(16).SetTextColor(sv.theme.StatusSentColor))
	}
}

// Selected returns the conversation id of the selected result, or "".
func (sv *SearchView) Selected() string {
	row, _ := sv.results.GetSelection()
	idx := row - 1
	if idx >= 0 && idx < len(sv.data) {
		return sv.data[idx].Message.ConversationID
	}
	return ""
}

// Input returns the query field, for focus handoff.
func (sv *SearchView) Input() *tview.InputField { return sv.input }

// Results returns the result table, for focus handoff.
func (sv *SearchView) Results() *tview.Table { return sv.results }
