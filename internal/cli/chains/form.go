package chains

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitchain/internal/constants"
	"github.com/julianstephens/habitchain/internal/repository"
)

type chainForm struct {
	Name        string
	Description string
	Habits      string
}

func newChainForm(fm *chainForm) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Chain name").
				Value(&fm.Name).
				CharLimit(constants.MaxChainNameLen).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Description").
				Value(&fm.Description).
				CharLimit(constants.MaxChainDescriptionLen),
			huh.NewText().
				Title("Habits").
				Description("One habit per line, in the order you complete them.").
				Value(&fm.Habits).
				Validate(func(s string) error {
					n := len(parseHabitLines(s))
					if n < constants.MinHabitsPerChain || n > constants.MaxHabitsPerChain {
						return fmt.Errorf("enter between %d and %d habits", constants.MinHabitsPerChain, constants.MaxHabitsPerChain)
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeDracula())
}

func parseHabitLines(s string) []string {
	var names []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			names = append(names, line)
		}
	}
	return names
}

// runChainForm prompts for the parts of input that were not given as flags.
func runChainForm(input repository.ChainInput) (repository.ChainInput, error) {
	fm := &chainForm{Name: input.Name, Description: input.Description}
	if err := newChainForm(fm).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return input, errors.New("cancelled")
		}
		return input, err
	}

	input.Name = fm.Name
	input.Description = fm.Description
	input.Habits = nil
	for _, name := range parseHabitLines(fm.Habits) {
		input.Habits = append(input.Habits, repository.HabitInput{Name: name})
	}
	return input, nil
}
