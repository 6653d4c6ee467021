// macro.go defines the macro registry and the context handlers run in.
package md

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// MacroContext carries the per-render state a handler may use.
type MacroContext struct {
	Context  context.Context
	Document Document
	Stash    *Stash
	Articles ArticleTree
}

// MacroHandler renders one macro invocation. The returned string replaces the
// matched token; it may be plain text or a stash placeholder.
type MacroHandler func(mc *MacroContext, args KeywordArgs) (string, error)

// MacroMeta is display metadata for help surfaces. Args doubles as the list
// of accepted argument names.
type MacroMeta struct {
	ShortDescription string
	HelpText         string
	ExampleCode      string
	Args             map[string]string // argument name -> description
}

// MacroType binds a directive name to its handler.
type MacroType struct {
	Name     string   // canonical lowercase name
	Handler  MacroHandler
	Meta     MacroMeta
	Required []string // arguments that must be present
}

// ArgNames returns the accepted argument names in sorted order.
func (mt MacroType) ArgNames() []string {
	names := make([]string, 0, len(mt.Meta.Args))
	for name := range mt.Meta.Args {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// checkArgs rejects unknown and missing arguments.
func (mt MacroType) checkArgs(args KeywordArgs) error {
	for _, key := range args.Keys() {
		if _, ok := mt.Meta.Args[key]; !ok {
			return fmt.Errorf("%w: %s does not accept %q", ErrUnexpectedArgument, mt.Name, key)
		}
	}
	for _, key := range mt.Required {
		if !args.Has(key) {
			return fmt.Errorf("%w: %s requires %q", ErrMissingArgument, mt.Name, key)
		}
	}
	return nil
}

// MacroRegistry maps macro names to their definitions. It is built once and
// handed to the expander; hosts extend it with Register.
type MacroRegistry struct {
	macros map[string]MacroType
}

// NewMacroRegistry returns a registry holding the built-in macros.
func NewMacroRegistry() *MacroRegistry {
	r := &MacroRegistry{macros: make(map[string]MacroType)}
	for _, mt := range BuiltInMacros() {
		r.macros[mt.Name] = mt
	}
	return r
}

// Register adds or replaces a macro. Names are normalized to lowercase.
func (r *MacroRegistry) Register(mt MacroType) error {
	name := strings.ToLower(strings.TrimSpace(mt.Name))
	if name == "" {
		return fmt.Errorf("macro name is required")
	}
	if mt.Handler == nil {
		return fmt.Errorf("macro %q has no handler", name)
	}
	mt.Name = name
	r.macros[name] = mt
	return nil
}

// Lookup returns the MacroType for a given name, normalizing to lowercase.
// Returns ok=false if macro is not registered.
func (r *MacroRegistry) Lookup(name string) (MacroType, bool) {
	mt, ok := r.macros[strings.ToLower(name)]
	return mt, ok
}

// List returns all macros in name order.
func (r *MacroRegistry) List() []MacroType {
	result := make([]MacroType, 0, len(r.macros))
	for _, mt := range r.macros {
		result = append(result, mt)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}
