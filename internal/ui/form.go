// Package ui provides the interactive credential entry form.
//
// The form collects the site login, an optional recharge password, and the
// master password that encrypts the credential file. Secret fields are
// masked while typing.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jhpark-dev/lottoctl/internal/vault"
)

// Form field indices, in tab order.
const (
	fieldUserID = iota
	fieldPassword
	fieldRecharge
	fieldMaster
	fieldConfirm
	fieldCount
)

// keyMap defines the key bindings for the form.
type keyMap struct {
	next   key.Binding
	prev   key.Binding
	submit key.Binding
	quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "previous field"),
		),
		submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "next/submit"),
		),
		quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.submit, k.next, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.next, k.prev},
		{k.submit, k.quit},
	}
}

// Form is the credential entry model.
type Form struct {
	inputs   [fieldCount]textinput.Model
	labels   [fieldCount]string
	focus    int
	done     bool
	canceled bool
	errText  string
	help     help.Model
	keys     keyMap
}

// NewForm creates the form, prefilling the user id when credentials are
// being rotated.
func NewForm(existing *vault.Credentials) *Form {
	f := &Form{
		help: help.New(),
		keys: newKeyMap(),
	}

	f.labels = [fieldCount]string{
		fieldUserID:   "User ID",
		fieldPassword: "Site password",
		fieldRecharge: "Recharge password (optional)",
		fieldMaster:   "Master password",
		fieldConfirm:  "Master password (again)",
	}

	for i := range f.inputs {
		input := textinput.New()
		input.CharLimit = 128
		if i != fieldUserID {
			input.EchoMode = textinput.EchoPassword
			input.EchoCharacter = '•'
		}
		f.inputs[i] = input
	}

	if existing != nil {
		f.inputs[fieldUserID].SetValue(existing.UserID)
	}

	f.inputs[fieldUserID].Focus()
	return f
}

// Init implements tea.Model.
func (f *Form) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (f *Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, f.keys.quit):
			f.canceled = true
			return f, tea.Quit

		case key.Matches(msg, f.keys.submit):
			if f.focus == fieldCount-1 {
				if err := f.validate(); err != nil {
					f.errText = err.Error()
					return f, nil
				}
				f.done = true
				return f, tea.Quit
			}
			f.setFocus(f.focus + 1)
			return f, nil

		case key.Matches(msg, f.keys.next):
			f.setFocus((f.focus + 1) % fieldCount)
			return f, nil

		case key.Matches(msg, f.keys.prev):
			f.setFocus((f.focus + fieldCount - 1) % fieldCount)
			return f, nil
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

// View implements tea.Model.
func (f *Form) View() string {
	var b strings.Builder

	b.WriteString(styles.title.Render("Store lottery site credentials"))
	b.WriteString("\n")

	for i, input := range f.inputs {
		label := f.labels[i]
		if i == f.focus {
			b.WriteString(styles.focus.Render("> " + label))
		} else {
			b.WriteString(styles.label.Render("  " + label))
		}
		b.WriteString("\n  ")
		b.WriteString(input.View())
		b.WriteString("\n")
	}

	if f.errText != "" {
		b.WriteString("\n")
		b.WriteString(styles.err.Render(f.errText))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.help.Render(f.help.ShortHelpView(f.keys.ShortHelp())))
	return b.String()
}

// Credentials returns the entered credentials after a successful submit.
func (f *Form) Credentials() *vault.Credentials {
	return &vault.Credentials{
		UserID:           strings.TrimSpace(f.inputs[fieldUserID].Value()),
		Password:         f.inputs[fieldPassword].Value(),
		RechargePassword: f.inputs[fieldRecharge].Value(),
	}
}

// MasterPassword returns the confirmed master password.
func (f *Form) MasterPassword() string {
	return f.inputs[fieldMaster].Value()
}

// Done reports whether the form was submitted.
func (f *Form) Done() bool { return f.done }

// Canceled reports whether the user backed out.
func (f *Form) Canceled() bool { return f.canceled }

func (f *Form) setFocus(index int) {
	f.inputs[f.focus].Blur()
	f.focus = index
	f.inputs[f.focus].Focus()
	f.errText = ""
}

func (f *Form) validate() error {
	creds := f.Credentials()
	if err := creds.Validate(); err != nil {
		return err
	}

	master := f.inputs[fieldMaster].Value()
	if master == "" {
		return fmt.Errorf("master password must not be empty")
	}
	if master != f.inputs[fieldConfirm].Value() {
		return fmt.Errorf("master passwords do not match")
	}
	return nil
}
