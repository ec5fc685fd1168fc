package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/derange/pkg/derange"
)

// List styles
var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	listTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// browseCommand creates the interactive browse command.
func (c *CLI) browseCommand() *cobra.Command {
	var start uint64

	cmd := &cobra.Command{
		Use:   "browse N",
		Short: "Page through derangements of N items interactively",
		Long: `Page through derangements of N items in lexicographic order.

Rows are decoded on demand, so even n = 20 with its ~9·10^17 ranks can be
browsed. Press enter to print the highlighted derangement and exit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseN(args[0])
			if err != nil {
				return err
			}
			t, err := c.table(cmd.Context(), n)
			if err != nil {
				return err
			}

			m := NewBrowseModel(t)
			m.Cursor = start % t.Total()
			m.Offset = m.Cursor
			p := tea.NewProgram(m, tea.WithContext(cmd.Context()), tea.WithOutput(c.Err))
			final, err := p.Run()
			if err != nil {
				return err
			}

			if bm, ok := final.(BrowseModel); ok && bm.Selected != nil {
				c.printLine(formatSeq(bm.Selected))
			}
			return nil
		},
	}

	cmd.Flags().Uint64Var(&start, "start", 0, "rank to open at")
	return cmd
}

// =============================================================================
// BrowseModel - Interactive rank browser
// =============================================================================

// BrowseModel is the bubbletea model for paging through a count table.
type BrowseModel struct {
	Table    *derange.Table
	Cursor   uint64
	Offset   uint64
	Height   int
	Selected []int
	Err      error
}

// NewBrowseModel creates a browser positioned at rank 0.
func NewBrowseModel(t *derange.Table) BrowseModel {
	return BrowseModel{Table: t, Height: 15}
}

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	total := m.Table.Total()
	page := uint64(m.Height)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < total-1 {
				m.Cursor++
			}
		case "pgup", "b":
			if m.Cursor >= page {
				m.Cursor -= page
			} else {
				m.Cursor = 0
			}
		case "pgdown", "f", " ":
			if total-1-m.Cursor >= page {
				m.Cursor += page
			} else {
				m.Cursor = total - 1
			}
		case "home", "g":
			m.Cursor = 0
		case "end", "G":
			m.Cursor = total - 1
		case "enter":
			d, err := m.Table.Unrank(m.Cursor)
			if err != nil {
				m.Err = err
				return m, nil
			}
			m.Selected = d
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}

	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+uint64(m.Height) {
		m.Offset = m.Cursor - uint64(m.Height) + 1
	}
	return m, nil
}

func (m BrowseModel) View() string {
	var b strings.Builder
	total := m.Table.Total()

	b.WriteString(listTitleStyle.Render(fmt.Sprintf("Derangements of %d items", m.Table.N())))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ move  f/b page  g/G first/last  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + uint64(m.Height)
	if end > total {
		end = total
	}

	rows := [][]string{}
	for a := m.Offset; a < end; a++ {
		cursor := "  "
		if a == m.Cursor {
			cursor = "▸ "
		}
		seq := "?"
		if d, err := m.Table.Unrank(a); err == nil {
			seq = formatSeq(d)
		}
		rows = append(rows, []string{cursor, strconv.FormatUint(a, 10), seq})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Rank", "Derangement").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return listHeaderStyle
			}
			if m.Offset+uint64(row) == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			if col == 1 {
				return StyleNumber
			}
			return StyleValue
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, total)))
	if m.Err != nil {
		b.WriteString("\n")
		b.WriteString(StyleWarning.Render(m.Err.Error()))
	}
	return b.String()
}
