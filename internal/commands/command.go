package commands

import (
	"strings"

	"github.com/pixil98/samud/internal/game"
)

// Verb is the closed set of things a player can do.
type Verb string

const (
	VerbLook   Verb = "look"
	VerbSay    Verb = "say"
	VerbShout  Verb = "shout"
	VerbMove   Verb = "move"
	VerbWho    Verb = "who"
	VerbWhere  Verb = "where"
	VerbHelp   Verb = "help"
	VerbQuit   Verb = "quit"
	VerbLogin  Verb = "login"
	VerbSignup Verb = "signup"
)

// Verbs lists every verb in help order.
var Verbs = []Verb{
	VerbLook, VerbSay, VerbShout, VerbMove, VerbWho,
	VerbWhere, VerbHelp, VerbQuit, VerbLogin, VerbSignup,
}

// directions are accepted as verbs in their own right.
var directions = map[string]struct{}{
	"n": {}, "s": {}, "e": {}, "w": {}, "u": {}, "d": {},
	"north": {}, "south": {}, "east": {}, "west": {}, "up": {}, "down": {},
}

// Command is one parsed input line.
type Command struct {
	Verb Verb
	// Args is the rest of the line with surrounding space removed.
	Args string
}

// Parse resolves the first word of line to a Verb. An unknown verb is a
// *UserError wrapping ErrUnknownCommand.
func Parse(line string) (Command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Command{}, unknownCommand()
	}

	token := strings.Fields(line)[0]
	rest := strings.TrimSpace(line[len(token):])
	word := game.Key(token)

	if _, ok := directions[word]; ok {
		return Command{Verb: VerbMove, Args: word}, nil
	}

	v := Verb(word)
	for _, known := range Verbs {
		if v == known {
			return Command{Verb: v, Args: rest}, nil
		}
	}

	return Command{}, unknownCommand()
}

// IsReserved reports whether name would be read as a command.
func IsReserved(name string) bool {
	_, err := Parse(name)
	return err == nil
}
