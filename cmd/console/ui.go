package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/dmassey-dev/crucible/internal/worker"
	"github.com/dmassey-dev/crucible/pkg/actor"
	"github.com/dmassey-dev/crucible/pkg/encounter"
)

const (
	AgentName       = "Narrator"
	PlaceHolderText = "ability [target], e.g. longsword goblin-1"
	encountersSize  = 2 // monsters spawned per encounter
)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *http.Client
	encounter    *encounter.Encounter
	player       *actor.PlayerSpec
	logLines     []string
	lastProse    string
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool

	// Monster selection state
	showMonsterModal bool
	monsters         []string
	selectedMonster  int
	loadingMonsters  bool

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type turnResultMsg struct {
	result *worker.TurnResult
	err    error
}

type monstersLoadedMsg struct {
	monsters []string
	err      error
}

type encounterCreatedMsg struct {
	enc    *encounter.Encounter
	player *actor.PlayerSpec
	err    error
}

type progressTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	traceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")) // grey

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 200
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:           cfg,
		client:           client,
		textarea:         ta,
		chatViewport:     chatVp,
		metaViewport:     metaVp,
		ready:            false,
		showMonsterModal: true,
		loadingMonsters:  true,
		selectedMonster:  0,
	}
}

func writeMetadata(enc *encounter.Encounter, player *actor.PlayerSpec) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("ENCOUNTER") + "\n\n")

	content.WriteString("ID:\n")
	content.WriteString(enc.ID[:8] + "...\n\n")

	content.WriteString(fmt.Sprintf("Round %d (%s)\n", enc.Round, enc.Status))
	content.WriteString(fmt.Sprintf("Turn: %s\n\n", enc.CurrentTurn()))

	if player != nil {
		content.WriteString(fmt.Sprintf("%s:\n", player.Name))
		content.WriteString(fmt.Sprintf("HP %d/%d  AC %d  XP %d\n\n", player.HP, player.MaxHP, player.AC, player.XP))

		content.WriteString("Abilities:\n")
		for _, a := range player.Abilities {
			content.WriteString(fmt.Sprintf("• %s (%s)\n", a.Name, a.DamageDice))
		}
		content.WriteString("\n")
	}

	content.WriteString("Combatants:\n")
	for _, npc := range enc.NPCs {
		marker := "•"
		if !npc.IsAlive() {
			marker = "✝"
		}
		pos := ""
		if p, ok := enc.Positions[npc.ID]; ok {
			pos = fmt.Sprintf(" @(%d,%d)", p.Row, p.Col)
		}
		content.WriteString(fmt.Sprintf("%s %s %d/%d%s\n", marker, npc.ID, npc.HP, npc.MaxHP, pos))
	}

	content.WriteString("\n")
	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Enter: Act\n")
	content.WriteString("• /help: Help\n")
	content.WriteString("• /copy: Copy prose\n")

	return content.String()
}

// writeChatContent rebuilds the combat log for the current viewport width.
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6 // Account for left(3) + right(3) padding

	var content strings.Builder
	content.WriteString(titleStyle.Render("CRUCIBLE") + "\n\n")
	content.WriteString("Name an ability and a target to take your turn.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(chatWidth-6, 10))) + "\n\n")

	for _, line := range m.logLines {
		content.WriteString(wordwrap.String(line, chatWidth) + "\n\n")
	}

	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m ConsoleUI) Init() tea.Cmd {
	if m.showMonsterModal {
		return m.loadMonsters()
	}
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle monster modal first
	if m.showMonsterModal {
		return m.updateMonsterModal(msg)
	}

	// Handle quit modal second
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.textarea, tiCmd = m.textarea.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(tiCmd, vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		if !m.showMonsterModal {
			chatWidth := int(float64(m.width)*0.75) - 4
			metaWidth := m.width - chatWidth - 6

			m.chatViewport.Width = chatWidth - 2
			m.chatViewport.Height = m.height - 7
			m.metaViewport.Width = metaWidth - 2
			m.metaViewport.Height = m.height - 4
			m.textarea.SetWidth(chatWidth - 4)

			m.ready = true
			m.writeChatContent()

			if m.encounter != nil {
				m.metaViewport.SetContent(writeMetadata(m.encounter, m.player))
			}
		}

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}

			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			if m.encounter.Finished() {
				m.logLines = append(m.logLines,
					errorStyle.Render("The encounter is over. Press Ctrl+C to quit."))
				m.textarea.Reset()
				m.writeChatContent()
				return m, nil
			}

			ability, targetID := m.parseAction(input)

			m.textarea.Reset()
			m.loading = true
			m.progressTick = 0

			m.logLines = append(m.logLines, userStyle.Render("You: ")+input)
			m.writeChatContent()

			return m, tea.Batch(m.sendTurn(ability, targetID), progressTick())
		}

	case turnResultMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.logLines = append(m.logLines, errorStyle.Render("Error: "+msg.err.Error()))
		} else {
			m.applyTurnResult(msg.result)
		}
		m.writeChatContent()
		if m.encounter != nil {
			m.metaViewport.SetContent(writeMetadata(m.encounter, m.player))
		}
		return m, nil

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeChatContent()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

// parseAction splits player input into ability name and optional target id.
// When the last token matches a combatant id, it is the target and the rest
// is the ability; otherwise the whole input is the ability name.
func (m *ConsoleUI) parseAction(input string) (string, string) {
	fields := strings.Fields(input)
	if len(fields) > 1 {
		last := fields[len(fields)-1]
		if m.encounter != nil && m.encounter.NPC(last) != nil {
			return strings.Join(fields[:len(fields)-1], " "), last
		}
	}
	return input, ""
}

// applyTurnResult folds one resolved turn into the combat log.
func (m *ConsoleUI) applyTurnResult(result *worker.TurnResult) {
	m.encounter = result.Encounter
	m.player = result.Player

	if result.Facts != nil {
		for _, trace := range result.Facts.PlayerTraces {
			m.logLines = append(m.logLines, traceStyle.Render(trace))
		}
		for _, trace := range result.Facts.NPCTraces {
			m.logLines = append(m.logLines, traceStyle.Render(trace))
		}
	}

	if result.Narration != nil && result.Narration.Prose != "" {
		m.lastProse = result.Narration.Prose
		m.logLines = append(m.logLines, narratorStyle.Render(AgentName+": ")+result.Narration.Prose)
	} else if result.Facts != nil {
		// Narration failed; the mechanical summary stands in.
		m.lastProse = result.Facts.Summary()
		m.logLines = append(m.logLines, narratorStyle.Render(AgentName+": ")+m.lastProse)
	}

	if result.XPAwarded > 0 {
		m.logLines = append(m.logLines,
			loadingStyle.Render(fmt.Sprintf("Victory! %d XP awarded.", result.XPAwarded)))
	}
	if result.Facts != nil && result.Facts.PlayerDown {
		m.logLines = append(m.logLines, errorStyle.Render("You have fallen."))
	}
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	cmd := strings.ToLower(strings.TrimSpace(input))

	switch cmd {
	case "/help":
		helpText := `
Commands:
• /help - Show this help
• /copy - Copy the last narration to the clipboard
• Ctrl+C - Quit

How to fight:
• Type an ability name and a target id, e.g. "longsword goblin-1"
• Area abilities need no target, e.g. "burning hands"
• The whole round resolves at once; surviving enemies hit back
`
		m.logLines = append(m.logLines, titleStyle.Render("Help:")+helpText)
		m.writeChatContent()

	case "/copy":
		if m.lastProse == "" {
			m.logLines = append(m.logLines, errorStyle.Render("Nothing to copy yet."))
		} else if err := clipboard.WriteAll(m.lastProse); err != nil {
			m.logLines = append(m.logLines, errorStyle.Render("Clipboard error: "+err.Error()))
		} else {
			m.logLines = append(m.logLines, promptStyle.Render("Narration copied to clipboard."))
		}
		m.writeChatContent()
	}

	m.textarea.Reset()
	return m, nil
}

func (m ConsoleUI) sendTurn(ability string, targetID string) tea.Cmd {
	return func() tea.Msg {
		result, err := sendAction(m.client, m.config.APIBaseURL, m.encounter.ID, ability, targetID)
		return turnResultMsg{result, err}
	}
}

func (m ConsoleUI) loadMonsters() tea.Cmd {
	return func() tea.Msg {
		monsters, err := listMonsters(m.client, m.config.APIBaseURL)
		return monstersLoadedMsg{monsters, err}
	}
}

func (m ConsoleUI) createEncounterFromMonster(slug string) tea.Cmd {
	return func() tea.Msg {
		enc, err := createEncounter(m.client, m.config.APIBaseURL, slug, encountersSize)
		if err != nil {
			return encounterCreatedMsg{nil, nil, err}
		}
		player, err := getCharacter(m.client, m.config.APIBaseURL)
		return encounterCreatedMsg{enc, player, err}
	}
}

func (m ConsoleUI) updateMonsterModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case monstersLoadedMsg:
		m.loadingMonsters = false
		if msg.err != nil {
			m.err = msg.err
		} else if len(msg.monsters) == 0 {
			m.err = fmt.Errorf("no monsters available; seed the SRD data directory")
		} else {
			m.monsters = msg.monsters
		}

	case encounterCreatedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.encounter = msg.enc
			m.player = msg.player
			m.showMonsterModal = false
			if m.width > 0 && m.height > 0 {
				chatWidth := int(float64(m.width)*0.75) - 4
				metaWidth := m.width - chatWidth - 6
				m.chatViewport.Width = chatWidth - 2
				m.chatViewport.Height = m.height - 7
				m.metaViewport.Width = metaWidth - 2
				m.metaViewport.Height = m.height - 4
				m.textarea.SetWidth(chatWidth - 4)
			}
			m.logLines = append(m.logLines,
				narratorStyle.Render(AgentName+": ")+m.encounter.Scene)
			m.writeChatContent()
			m.metaViewport.SetContent(writeMetadata(m.encounter, m.player))
			m.textarea.Focus()
			m.ready = true
		}
		return m, textarea.Blink

	case tea.KeyMsg:
		if m.loadingMonsters {
			if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
				return m, tea.Quit
			}
			return m, nil
		}

		if m.err != nil {
			if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
				m.showQuitModal = true
				return m, nil
			}
			return m, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyUp:
			if m.selectedMonster > 0 {
				m.selectedMonster--
			}
		case tea.KeyDown:
			if m.selectedMonster < len(m.monsters)-1 {
				m.selectedMonster++
			}
		case tea.KeyEnter:
			if len(m.monsters) > 0 {
				m.loading = true
				return m, m.createEncounterFromMonster(m.monsters[m.selectedMonster])
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				if m.showMonsterModal {
					return m, nil
				}
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to leave the fight?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderMonsterModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	if m.loadingMonsters {
		content.WriteString(modalTitleStyle.Render("Loading Monsters..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Fetching the bestiary..."))
	} else if m.err != nil {
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(fmt.Sprintf("Failed to load monsters: %v", m.err)))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	} else if m.loading {
		content.WriteString(modalTitleStyle.Render("Creating Encounter..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Rolling initiative..."))
	} else {
		content.WriteString(modalTitleStyle.Render("Choose Your Opponent"))
		content.WriteString("\n\n")

		for i, monster := range m.monsters {
			if i == m.selectedMonster {
				content.WriteString(modalSelectedItemStyle.Render(fmt.Sprintf("▶ %s", monster)))
			} else {
				content.WriteString(modalItemStyle.Render(fmt.Sprintf("  %s", monster)))
			}
			content.WriteString("\n")
		}

		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showMonsterModal {
		return m.renderMonsterModal()
	}

	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 10))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.chatViewport.Width - 6
	if usable <= 0 {
		usable = 30 // fallback before sizing
	}

	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓")
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

// progressTick creates a command that sends a progress tick message
func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
