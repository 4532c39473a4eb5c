package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mysterygraph/pkg/graph"
	"github.com/matzehuels/mysterygraph/pkg/validate"
)

// headerRow is the row index lipgloss tables pass for the header.
const headerRow = -1

var (
	listDimStyle  = lipgloss.NewStyle().Foreground(colorDim)
	listHeadStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// inspectCommand creates the interactive inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var inputFormat string

	cmd := &cobra.Command{
		Use:   "inspect [file|url]",
		Short: "Browse the nodes or findings of a mystery interactively",
		Long: `Browse the nodes or findings of a mystery interactively.

Valid documents show a table of nodes with the edges leaving the selected
one. Documents with findings show the findings instead. Press r to reload
the document after editing it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			src := args[0]
			load := func() inspection { return c.inspect(ctx, src, inputFormat) }
			_, err := tea.NewProgram(newInspectModel(load), tea.WithContext(ctx)).Run()
			return err
		},
	}

	cmd.Flags().StringVar(&inputFormat, "input-format", "", "document format: yaml, json, toml (default: from extension)")

	return cmd
}

// inspection is one load of the inspected document.
type inspection struct {
	source   string
	graph    graph.Graph
	findings []validate.Finding
	err      error
}

// inspect reads, checks and derives src for the interactive view.
func (c *CLI) inspect(ctx context.Context, src, inputFormat string) inspection {
	out := inspection{source: src}
	data, format, err := readDocument(ctx, src, inputFormat)
	if err != nil {
		out.err = err
		return out
	}
	runner, err := c.newRunner(true)
	if err != nil {
		out.err = err
		return out
	}
	defer runner.Close()

	res, err := checkDocument(ctx, runner, data, format)
	if err != nil {
		out.err = err
		return out
	}
	if !res.Valid() {
		out.findings = res.Findings
		return out
	}
	out.graph, out.err = runner.Derive(ctx, res)
	return out
}

// =============================================================================
// InspectModel
// =============================================================================

type inspectLoadedMsg inspection

// InspectModel is the bubbletea model behind the inspect command.
type InspectModel struct {
	load    func() inspection
	data    inspection
	loaded  bool
	reloads int

	Cursor int
	Offset int
	Height int
}

// newInspectModel creates a model that loads its data with load.
func newInspectModel(load func() inspection) InspectModel {
	return InspectModel{load: load, Height: 12}
}

func (m InspectModel) loadCmd() tea.Cmd {
	load := m.load
	return func() tea.Msg { return inspectLoadedMsg(load()) }
}

func (m InspectModel) Init() tea.Cmd {
	return m.loadCmd()
}

// rows is the number of selectable lines.
func (m InspectModel) rows() int {
	if len(m.data.findings) > 0 {
		return len(m.data.findings)
	}
	return len(m.data.graph.Nodes)
}

func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case inspectLoadedMsg:
		m.data = inspection(msg)
		m.loaded = true
		if m.Cursor >= m.rows() {
			m.Cursor = max(m.rows()-1, 0)
		}
		m.Offset = min(m.Offset, m.Cursor)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < m.rows()-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "r":
			m.reloads++
			return m, m.loadCmd()
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-12, 3)
	}
	return m, nil
}

func (m InspectModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Inspect " + m.data.source))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  r reload  q quit"))
	b.WriteString("\n\n")

	switch {
	case !m.loaded:
		b.WriteString(listDimStyle.Render("Loading..."))
	case m.data.err != nil:
		b.WriteString(styleIconError.Render(iconError) + " " + m.data.err.Error())
	case len(m.data.findings) > 0:
		b.WriteString(m.findingsView())
	default:
		b.WriteString(m.nodesView())
	}

	if m.reloads > 0 {
		b.WriteString("\n\n")
		b.WriteString(listDimStyle.Render(fmt.Sprintf("reloaded %d×", m.reloads)))
	}
	return b.String()
}

// window returns the visible row range.
func (m InspectModel) window() (int, int) {
	return m.Offset, min(m.Offset+m.Height, m.rows())
}

func (m InspectModel) styleRow(row int) lipgloss.Style {
	if row == headerRow {
		return listHeadStyle
	}
	if m.Offset+row == m.Cursor {
		return lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	}
	return lipgloss.NewStyle().Foreground(colorWhite)
}

func cursorMark(selected bool) string {
	if selected {
		return "▸"
	}
	return " "
}

func (m InspectModel) nodesView() string {
	start, end := m.window()
	rows := make([][]string, 0, end-start)
	for i := start; i < end; i++ {
		n := m.data.graph.Nodes[i]
		rows = append(rows, []string{
			cursorMark(i == m.Cursor),
			n.Name,
			n.Kind(),
			fmt.Sprintf("%g", n.Complexity),
			fmt.Sprintf("%d", len(m.data.graph.Outgoing(n.Name))),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Node", "Kind", "Complexity", "Out").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style { return m.styleRow(row) })

	var b strings.Builder
	b.WriteString(t.Render())
	b.WriteString("\n")

	if m.Cursor < len(m.data.graph.Nodes) {
		n := m.data.graph.Nodes[m.Cursor]
		b.WriteString("\n" + StyleValue.Render(n.Description) + "\n")
		for _, e := range m.data.graph.Outgoing(n.Name) {
			line := fmt.Sprintf("  %s %s", iconArrow, e.Target)
			if e.IsKey {
				line += listDimStyle.Render("  key: " + e.Description)
			} else {
				line += listDimStyle.Render("  reveal")
			}
			b.WriteString(line + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(statsLine(m.data.graph.NodeCount(), m.data.graph.EdgeCount(), false))
	return b.String()
}

func (m InspectModel) findingsView() string {
	start, end := m.window()
	rows := make([][]string, 0, end-start)
	for i := start; i < end; i++ {
		f := m.data.findings[i]
		rows = append(rows, []string{cursorMark(i == m.Cursor), f.Title, f.Message})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Finding", "Message").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style { return m.styleRow(row) })

	return t.Render() + "\n\n" + StyleWarning.Render(fmt.Sprintf("%d findings", len(m.data.findings)))
}
