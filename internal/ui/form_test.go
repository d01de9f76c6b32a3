package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jhpark-dev/lottoctl/internal/vault"
)

func typeInto(f *Form, text string) {
	for _, r := range text {
		f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func pressEnter(f *Form) {
	f.Update(tea.KeyMsg{Type: tea.KeyEnter})
}

func fill(f *Form, userID, password, recharge, master, confirm string) {
	for _, value := range []string{userID, password, recharge, master, confirm} {
		typeInto(f, value)
		pressEnter(f)
	}
}

func TestFormSubmit(t *testing.T) {
	f := NewForm(nil)
	fill(f, "hong1234", "sitepw", "4321", "master", "master")

	if !f.Done() {
		t.Fatal("expected the form to be done after a valid submit")
	}

	creds := f.Credentials()
	if creds.UserID != "hong1234" || creds.Password != "sitepw" || creds.RechargePassword != "4321" {
		t.Errorf("credentials mismatch: %+v", creds)
	}
	if f.MasterPassword() != "master" {
		t.Errorf("master password mismatch: %q", f.MasterPassword())
	}
}

func TestFormValidation(t *testing.T) {
	t.Run("master mismatch", func(t *testing.T) {
		f := NewForm(nil)
		fill(f, "hong1234", "sitepw", "", "master", "other")

		if f.Done() {
			t.Fatal("mismatched master passwords must not submit")
		}
		if !strings.Contains(f.View(), "do not match") {
			t.Error("expected a mismatch message in the view")
		}
	})

	t.Run("missing user id", func(t *testing.T) {
		f := NewForm(nil)
		fill(f, "", "sitepw", "", "master", "master")

		if f.Done() {
			t.Fatal("missing user id must not submit")
		}
	})

	t.Run("empty master password", func(t *testing.T) {
		f := NewForm(nil)
		fill(f, "hong1234", "sitepw", "", "", "")

		if f.Done() {
			t.Fatal("empty master password must not submit")
		}
	})
}

func TestFormCancel(t *testing.T) {
	f := NewForm(nil)
	typeInto(f, "hong")
	f.Update(tea.KeyMsg{Type: tea.KeyEsc})

	if !f.Canceled() || f.Done() {
		t.Error("esc should cancel the form")
	}
}

func TestFormPrefill(t *testing.T) {
	f := NewForm(&vault.Credentials{UserID: "hong1234", Password: "old"})

	creds := f.Credentials()
	if creds.UserID != "hong1234" {
		t.Errorf("expected prefilled user id, got %q", creds.UserID)
	}
	if creds.Password != "" {
		t.Error("passwords must never be prefilled")
	}
}

func TestFormMasksSecrets(t *testing.T) {
	f := NewForm(nil)
	typeInto(f, "hong1234")
	pressEnter(f)
	typeInto(f, "sitepw")

	if strings.Contains(f.View(), "sitepw") {
		t.Error("site password must be masked in the view")
	}
	if !strings.Contains(f.View(), "hong1234") {
		t.Error("user id should be visible")
	}
}
