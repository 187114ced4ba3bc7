package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/cancerflow/pkg/dataset"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// LayerPickerModel - Interactive middle layer selection
// =============================================================================

// LayerPickerModel is the bubbletea model for choosing the layers drawn
// between Diagnosis and Therapy. Layers are returned in the order they were
// checked.
type LayerPickerModel struct {
	Columns []string
	Cursor  int

	// Distinct holds the number of distinct values per column, for display.
	Distinct map[string]int

	// Order lists the checked columns in check order.
	Order []string

	Confirmed bool
}

// NewLayerPickerModel creates a picker over the selectable middle layers of t.
func NewLayerPickerModel(t *dataset.Table) LayerPickerModel {
	cols := dataset.MiddleLayers(t)
	distinct := make(map[string]int, len(cols))
	for _, c := range cols {
		if values, err := t.UniqueValues(c); err == nil {
			distinct[c] = len(values)
		}
	}
	return LayerPickerModel{Columns: cols, Distinct: distinct}
}

func (m LayerPickerModel) Init() tea.Cmd {
	return nil
}

func (m LayerPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Columns)-1 {
			m.Cursor++
		}
	case " ", "x":
		m.toggle(m.Columns[m.Cursor])
	case "enter":
		m.Confirmed = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *LayerPickerModel) toggle(col string) {
	for i, c := range m.Order {
		if c == col {
			m.Order = append(m.Order[:i:i], m.Order[i+1:]...)
			return
		}
	}
	m.Order = append(m.Order, col)
}

// position returns the 1-based check position of col, or 0.
func (m LayerPickerModel) position(col string) int {
	for i, c := range m.Order {
		if c == col {
			return i + 1
		}
	}
	return 0
}

func (m LayerPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Middle Layers"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  ⏎ confirm  q quit"))
	b.WriteString("\n\n")

	rows := make([][]string, 0, len(m.Columns))
	for i, col := range m.Columns {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		mark := "[ ]"
		if p := m.position(col); p > 0 {
			mark = "[" + strconv.Itoa(p) + "]"
		}
		rows = append(rows, []string{cursor, mark, col, strconv.Itoa(m.Distinct[col])})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "Column", "Values").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row < 0 || row >= len(m.Columns) {
				return lipgloss.NewStyle()
			}
			switch {
			case row == m.Cursor:
				return listSelectedStyle
			case m.position(m.Columns[row]) > 0:
				return listNormalStyle.Foreground(colorGreen)
			default:
				return listNormalStyle
			}
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %s", layerPreview(m.Order))))
	return b.String()
}

// layerPreview shows the diagram layers a selection produces.
func layerPreview(middle []string) string {
	parts := append([]string{dataset.ColDiagnosis}, middle...)
	parts = append(parts, dataset.ColTherapy)
	return strings.Join(parts, " "+iconArrow+" ")
}

// pickLayers runs the picker and returns the chosen middle layers. ok is
// false when the user quit without confirming.
func pickLayers(t *dataset.Table) (middle []string, ok bool, err error) {
	final, err := tea.NewProgram(NewLayerPickerModel(t)).Run()
	if err != nil {
		return nil, false, fmt.Errorf("layer picker: %w", err)
	}
	m := final.(LayerPickerModel)
	if !m.Confirmed {
		return nil, false, nil
	}
	return m.Order, true, nil
}
