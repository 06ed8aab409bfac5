package root

import "github.com/charmbracelet/huh"

// confirm asks a yes/no question unless yes is already set.
func confirm(title string, yes bool) (bool, error) {
	if yes {
		return true, nil
	}
	ok := false
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	return ok, err
}
