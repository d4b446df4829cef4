// envsetup provides a lightweight .env configuration wizard.
// It runs automatically on first web server startup when no .env file
// exists, collecting the table store, port and CORS settings.
package envsetup

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type step int

const (
	stepWelcome step = iota
	stepTables
	stepPort
	stepOrigins
	stepConfirm
	stepDone
)

const (
	defaultTablesURL = "embedded"
	defaultPort      = "3000"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

type model struct {
	path      string
	step      step
	textInput textinput.Model
	tablesURL string
	port      string
	origins   string
	err       error
}

// New returns a wizard that writes its result to path.
func New(path string) model {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 512
	ti.Width = 60

	return model{path: path, step: stepWelcome, textInput: ti}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.handleEnter()
		}
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m model) handleEnter() (tea.Model, tea.Cmd) {
	m.err = nil
	value := strings.TrimSpace(m.textInput.Value())

	switch m.step {
	case stepWelcome:
		m.step = stepTables

	case stepTables:
		if value == "" {
			value = defaultTablesURL
		}
		m.tablesURL = value
		m.step = stepPort

	case stepPort:
		if value == "" {
			value = defaultPort
		}
		if p, err := strconv.Atoi(value); err != nil || p < 1 || p > 65535 {
			m.err = fmt.Errorf("port must be a number between 1 and 65535")
			return m, nil
		}
		m.port = value
		m.step = stepOrigins

	case stepOrigins:
		m.origins = value
		m.step = stepConfirm

	case stepConfirm:
		choice := strings.ToLower(value)
		switch choice {
		case "", "y", "yes":
			if err := m.writeEnvFile(); err != nil {
				m.err = err
				return m, nil
			}
			m.step = stepDone
			return m, tea.Quit
		case "n", "no":
			m.step = stepTables
			m.tablesURL, m.port, m.origins = "", "", ""
		default:
			m.err = fmt.Errorf("please answer y or n")
			return m, nil
		}
	}

	m.textInput.SetValue("")
	return m, nil
}

func (m model) envContent() string {
	return fmt.Sprintf(`TABLES_URL=%s
PORT=%s
ALLOWED_ORIGINS=%s
LOG_FORMAT=pretty
LOG_LEVEL=info
`, m.tablesURL, m.port, m.origins)
}

func (m model) writeEnvFile() error {
	return os.WriteFile(m.path, []byte(m.envContent()), 0600)
}

func (m model) View() string {
	var s strings.Builder

	switch m.step {
	case stepWelcome:
		s.WriteString(titleStyle.Render("Romanization - Env Setup"))
		s.WriteString("\n\n")
		s.WriteString("This wizard writes the .env used by the web server.\n")
		s.WriteString("Every question has a default; press Enter to accept it.\n")
		s.WriteString("\n")
		s.WriteString(dimStyle.Render("Press Enter to continue, Ctrl+C to exit"))

	case stepTables:
		s.WriteString(titleStyle.Render("Step 1: Character tables"))
		s.WriteString("\n\n")
		s.WriteString("Where should the reading tables come from?\n\n")
		s.WriteString("  embedded               tables compiled into the binary\n")
		s.WriteString("  ./tables.db            a SQLite file filled by tableimport\n")
		s.WriteString("  postgres://...         a PostgreSQL database filled by tableimport\n")
		s.WriteString("\n")
		s.WriteString(labelStyle.Render("Tables URL [" + defaultTablesURL + "]:"))

	case stepPort:
		s.WriteString(titleStyle.Render("Step 2: HTTP port"))
		s.WriteString("\n\n")
		s.WriteString(labelStyle.Render("Port [" + defaultPort + "]:"))

	case stepOrigins:
		s.WriteString(titleStyle.Render("Step 3: Allowed CORS origins"))
		s.WriteString("\n\n")
		s.WriteString("Comma-separated list. Leave empty to allow any origin.\n\n")
		s.WriteString(labelStyle.Render("Origins:"))

	case stepConfirm:
		origins := m.origins
		if origins == "" {
			origins = "*"
		}
		s.WriteString(titleStyle.Render("Configuration Complete"))
		s.WriteString("\n\n")
		s.WriteString("Your configuration:\n\n")
		s.WriteString("  Tables:  " + successStyle.Render(m.tablesURL) + "\n")
		s.WriteString("  Port:    " + successStyle.Render(m.port) + "\n")
		s.WriteString("  Origins: " + successStyle.Render(origins) + "\n")
		s.WriteString("\n")
		s.WriteString(labelStyle.Render("Save this configuration? [Y/n]:"))

	case stepDone:
		s.WriteString(successStyle.Render("Saved " + m.path))
		s.WriteString("\n")
		return s.String()
	}

	if m.step != stepWelcome {
		s.WriteString("\n")
		s.WriteString(m.textInput.View())
	}
	if m.err != nil {
		s.WriteString("\n" + errorStyle.Render(m.err.Error()))
	}

	s.WriteString("\n")
	return s.String()
}

// Run starts the setup wizard and returns true if the file was written.
func Run(path string) (bool, error) {
	p := tea.NewProgram(New(path))
	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}

	m := finalModel.(model)
	return m.step == stepDone, nil
}

// NeedsSetup checks if the file at path is missing.
func NeedsSetup(path string) bool {
	_, err := os.Stat(path)
	return os.IsNotExist(err)
}
