package md

import (
	"errors"
	"fmt"
)

// MacroExpander rewrites [name key:value ...] tokens using a registry.
type MacroExpander struct {
	registry *MacroRegistry
	logger   Logger
}

// NewMacroExpander creates an expander over registry. A nil registry means
// the built-ins.
func NewMacroExpander(registry *MacroRegistry, logger Logger) *MacroExpander {
	if registry == nil {
		registry = NewMacroRegistry()
	}
	return &MacroExpander{registry: registry, logger: loggerOrNop(logger)}
}

// Registry returns the registry the expander dispatches through.
func (e *MacroExpander) Registry() *MacroRegistry {
	return e.registry
}

// Expand replaces every registered macro in input with its handler's output.
// Unregistered names are echoed unchanged; handler errors abort the expansion.
func (e *MacroExpander) Expand(mc *MacroContext, input string) (string, error) {
	tokens := TokenizeMacros(input)
	return rewriteTokens(tokens, func(token Token) (string, error) {
		return e.dispatch(mc, token)
	})
}

func (e *MacroExpander) dispatch(mc *MacroContext, token Token) (string, error) {
	mt, ok := e.registry.Lookup(token.Name)
	if !ok {
		return token.OriginalText, nil
	}

	args := ParseKeywordArgs(token.RawArgs)
	if err := mt.checkArgs(args); err != nil {
		return "", macroArgumentError(mt.Name, err)
	}

	out, err := mt.Handler(mc, args)
	if err != nil {
		if errors.Is(err, ErrUnexpectedArgument) || errors.Is(err, ErrMissingArgument) {
			return "", macroArgumentError(mt.Name, err)
		}
		return "", fmt.Errorf("macro %s: %w", mt.Name, err)
	}
	e.logger.Debug("macro expanded", "macro", mt.Name, "position", token.Position)
	return out, nil
}
