package commands

import (
	"errors"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestParse(t *testing.T) {
	tests := map[string]struct {
		line   string
		exp    Command
		expErr error
	}{
		"bare verb":            {line: "look", exp: Command{Verb: VerbLook}},
		"mixed case verb":      {line: "LoOk", exp: Command{Verb: VerbLook}},
		"say keeps body":       {line: "say  Hello  there ", exp: Command{Verb: VerbSay, Args: "Hello  there"}},
		"tab separated":        {line: "shout\thi all", exp: Command{Verb: VerbShout, Args: "hi all"}},
		"move with direction":  {line: "move East", exp: Command{Verb: VerbMove, Args: "East"}},
		"shorthand":            {line: "e", exp: Command{Verb: VerbMove, Args: "e"}},
		"shorthand upper case": {line: "N", exp: Command{Verb: VerbMove, Args: "n"}},
		"direction word":       {line: "west", exp: Command{Verb: VerbMove, Args: "west"}},
		"login":                {line: "login", exp: Command{Verb: VerbLogin}},
		"unknown":              {line: "dance", expErr: ErrUnknownCommand},
		"blank":                {line: "   ", expErr: ErrUnknownCommand},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := Parse(tt.line)
			if !errors.Is(err, tt.expErr) {
				t.Fatalf("error = %v, expected %v", err, tt.expErr)
			}
			testutil.AssertEqual(t, "verb", got.Verb, tt.exp.Verb)
			testutil.AssertEqual(t, "args", got.Args, tt.exp.Args)
		})
	}
}

func TestIsReserved(t *testing.T) {
	testutil.AssertEqual(t, "who", IsReserved("Who"), true)
	testutil.AssertEqual(t, "shorthand", IsReserved("n"), true)
	testutil.AssertEqual(t, "player name", IsReserved("alice"), false)
}
