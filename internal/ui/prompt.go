package ui

import (
	"os"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
)

// IsInteractive reports whether stdout is a real terminal. Non-interactive
// runs never prompt; they behave as if tunnels were declined.
func IsInteractive() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// ConfirmTunnels asks whether to start the verification tunnels for
// browsing the deployed services. Returns false on any prompt error.
func ConfirmTunnels() bool {
	var start bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title("Start port-forward tunnels to the deployed services?").
			Affirmative("Start").
			Negative("Skip").
			Value(&start),
	))
	if err := form.Run(); err != nil {
		return false
	}
	return start
}
