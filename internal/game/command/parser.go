package command

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseResult holds the parsed command name and arguments from a console line.
type ParseResult struct {
	// Command is the first word of the input, lowercased.
	Command string
	// Args are the remaining words after the command.
	Args []string
	// RawArgs is the text after the command with inner spacing preserved.
	RawArgs string
}

// Parse splits a console line into a command and arguments.
//
// Postcondition: Returns a ParseResult. If line is blank, Command is empty.
func Parse(line string) ParseResult {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ParseResult{}
	}

	line = strings.TrimSpace(line)
	rest := strings.TrimSpace(line[len(fields[0]):])
	res := ParseResult{Command: strings.ToLower(fields[0]), RawArgs: rest}
	if len(fields) > 1 {
		res.Args = fields[1:]
	}
	return res
}

// splitQuantity separates an optional trailing count from an item reference, so
// "iron ore 3" becomes ("iron ore", 3). A lone number is kept as the reference.
//
// Postcondition: qty is 1 when no count is given; ref is the remaining words joined by spaces.
func splitQuantity(args []string) (ref string, qty int, err error) {
	qty = 1
	if len(args) > 1 {
		last := args[len(args)-1]
		if n, convErr := strconv.Atoi(last); convErr == nil {
			if n < 1 {
				return "", 0, fmt.Errorf("quantity must be a positive number, got %s", last)
			}
			qty = n
			args = args[:len(args)-1]
		}
	}
	return strings.Join(args, " "), qty, nil
}
