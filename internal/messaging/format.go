package messaging

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	goerrors "github.com/pixil98/go-errors"
)

// Formats holds the templates used to render chat. Each template sees the
// Message being rendered.
type Formats struct {
	RoomSelf   string `json:"room_self"`
	Room       string `json:"room"`
	GlobalSelf string `json:"global_self"`
	Global     string `json:"global"`
}

func DefaultFormats() Formats {
	return Formats{
		RoomSelf:   "[Room] you: {{ .Body }}",
		Room:       "[Room] {{ .From }}: {{ .Body }}",
		GlobalSelf: "[Global] you: {{ .Body }}",
		Global:     "[Global] {{ .From }}: {{ .Body }}",
	}
}

// withDefaults fills every empty format from DefaultFormats.
func (f Formats) withDefaults() Formats {
	d := DefaultFormats()
	if f.RoomSelf == "" {
		f.RoomSelf = d.RoomSelf
	}
	if f.Room == "" {
		f.Room = d.Room
	}
	if f.GlobalSelf == "" {
		f.GlobalSelf = d.GlobalSelf
	}
	if f.Global == "" {
		f.Global = d.Global
	}
	return f
}

// Validate parses every template.
func (f Formats) Validate() error {
	_, err := f.compile()
	return err
}

type formatKey struct {
	scope Scope
	self  bool
}

type compiledFormats map[formatKey]*template.Template

func (f Formats) compile() (compiledFormats, error) {
	f = f.withDefaults()

	el := goerrors.NewErrorList()
	out := compiledFormats{}

	add := func(name string, key formatKey, text string) {
		tmpl, err := template.New(name).Funcs(sprig.TxtFuncMap()).Parse(text)
		if err != nil {
			el.Add(fmt.Errorf("format %s: %w", name, err))
			return
		}
		out[key] = tmpl
	}

	add("room_self", formatKey{ScopeRoom, true}, f.RoomSelf)
	add("room", formatKey{ScopeRoom, false}, f.Room)
	add("global_self", formatKey{ScopeGlobal, true}, f.GlobalSelf)
	add("global", formatKey{ScopeGlobal, false}, f.Global)

	if err := el.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c compiledFormats) render(msg Message, self bool) (string, error) {
	if msg.Scope == ScopeSystem {
		return msg.Body, nil
	}

	tmpl, ok := c[formatKey{msg.Scope, self}]
	if !ok {
		return "", fmt.Errorf("no format for %s message", msg.Scope)
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, msg); err != nil {
		return "", fmt.Errorf("rendering %s: %w", tmpl.Name(), err)
	}
	return sb.String(), nil
}
