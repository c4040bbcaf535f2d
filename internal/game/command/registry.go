package command

import (
	"fmt"
	"sort"
	"strings"
)

// Registry resolves command words, canonical names and aliases alike, to Command definitions.
type Registry struct {
	byWord map[string]*Command
	// canonical holds each command once, sorted by name.
	canonical []*Command
}

// NewRegistry creates a Registry populated with the given commands. Names and
// aliases share one namespace.
//
// Precondition: every name is non-empty and no word is claimed twice.
// Postcondition: Returns a Registry or an error naming the first collision.
func NewRegistry(cmds []Command) (*Registry, error) {
	r := &Registry{byWord: make(map[string]*Command)}

	claim := func(word string, cmd *Command) error {
		if owner, taken := r.byWord[word]; taken {
			if owner.Name == word {
				return fmt.Errorf("%q of %q conflicts with command name %q", word, cmd.Name, owner.Name)
			}
			return fmt.Errorf("duplicate alias %q: used by %q and %q", word, owner.Name, cmd.Name)
		}
		r.byWord[word] = cmd
		return nil
	}

	for i := range cmds {
		cmd := &cmds[i]
		if cmd.Name == "" {
			return nil, fmt.Errorf("command %d has an empty name", i)
		}
		if owner, taken := r.byWord[cmd.Name]; taken {
			if owner.Name == cmd.Name {
				return nil, fmt.Errorf("duplicate command name: %q", cmd.Name)
			}
			return nil, fmt.Errorf("command name %q conflicts with an alias of %q", cmd.Name, owner.Name)
		}
		r.byWord[cmd.Name] = cmd
		for _, alias := range cmd.Aliases {
			if err := claim(alias, cmd); err != nil {
				return nil, err
			}
		}
		r.canonical = append(r.canonical, cmd)
	}

	sort.Slice(r.canonical, func(i, j int) bool { return r.canonical[i].Name < r.canonical[j].Name })
	return r, nil
}

// DefaultRegistry creates a Registry with all built-in commands.
//
// Postcondition: Returns a Registry with all built-in commands registered.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(BuiltinCommands())
	if err != nil {
		panic(fmt.Sprintf("building default registry: %v", err))
	}
	return r
}

// Resolve looks up a command by name or alias, ignoring case.
func (r *Registry) Resolve(word string) (*Command, bool) {
	cmd, ok := r.byWord[strings.ToLower(word)]
	return cmd, ok
}

// Commands returns all registered commands sorted by name.
func (r *Registry) Commands() []*Command {
	return append([]*Command(nil), r.canonical...)
}

// CommandsByCategory returns commands grouped by category, each group sorted by name.
func (r *Registry) CommandsByCategory() map[string][]*Command {
	categories := make(map[string][]*Command)
	for _, cmd := range r.canonical {
		categories[cmd.Category] = append(categories[cmd.Category], cmd)
	}
	return categories
}
