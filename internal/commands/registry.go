// Package commands provides command registration and lookup for unilang.
// It manages a global registry of command definitions and the routines that implement them.
package commands

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"

	"unilang/internal/logger"
	"unilang/pkg/unitypes"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
)

// Command is a builtin command that carries its own definition and routine.
type Command interface {
	Definition() unitypes.CommandDefinition
	Execute(cmd unitypes.VerifiedCommand, ctx unitypes.Context) (unitypes.OutputData, error)
}

// Registry manages command definitions and routines.
// It provides thread-safe registration and lookup by full name or alias.
type Registry struct {
	mu          sync.RWMutex
	definitions map[string]*unitypes.CommandDefinition
	aliases     map[string]string
	routines    map[string]unitypes.Routine
	validate    *validator.Validate
	logger      *log.Logger
}

// NewRegistry creates a new command registry with no commands.
func NewRegistry() *Registry {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
	})

	return &Registry{
		definitions: make(map[string]*unitypes.CommandDefinition),
		aliases:     make(map[string]string),
		routines:    make(map[string]unitypes.Routine),
		validate:    validate,
		logger:      logger.NewStyledLogger("Registry"),
	}
}

// RegisterCommand registers a builtin command's definition and routine.
func (r *Registry) RegisterCommand(cmd Command) error {
	return r.Register(cmd.Definition(), cmd.Execute)
}

// Register adds a command definition. A nil routine registers the definition only; a
// routine can be linked later with RegisterRoutine.
func (r *Registry) Register(def unitypes.CommandDefinition, routine unitypes.Routine) error {
	if err := r.check(&def); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	fullName := def.FullName()
	if r.taken(fullName) {
		return unitypes.NewErrorData(unitypes.ErrCodeCommandAlreadyExists, "command %s already registered", fullName)
	}
	aliases := make([]string, 0, len(def.Aliases))
	for _, alias := range def.Aliases {
		path := aliasPath(&def, alias)
		if path == fullName || r.taken(path) {
			return unitypes.NewErrorData(unitypes.ErrCodeCommandAlreadyExists,
				"alias %s of command %s already registered", path, fullName)
		}
		aliases = append(aliases, path)
	}

	stored := def
	r.definitions[fullName] = &stored
	for _, path := range aliases {
		r.aliases[path] = fullName
	}
	if routine != nil {
		r.routines[stored.RoutineKey()] = routine
	}

	r.logger.Debug("Registered command", "command", fullName, "aliases", len(aliases), "routine", routine != nil)
	return nil
}

// RegisterRoutine links a routine to key. Definitions refer to it through their
// routine_link or their full name.
func (r *Registry) RegisterRoutine(key string, routine unitypes.Routine) error {
	if key == "" {
		return fmt.Errorf("routine key cannot be empty")
	}
	if routine == nil {
		return fmt.Errorf("routine %s cannot be nil", key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.routines[key]; exists {
		return fmt.Errorf("routine %s already registered", key)
	}
	r.routines[key] = routine
	return nil
}

// check validates a definition before it is stored.
func (r *Registry) check(def *unitypes.CommandDefinition) error {
	fullName := def.FullName()
	if !strings.HasPrefix(fullName, unitypes.PathPrefix) || fullName == unitypes.PathPrefix {
		return unitypes.NewErrorData(unitypes.ErrCodeInvalidCommandName,
			"Invalid command name '%s': command names must start with '%s'", fullName, unitypes.PathPrefix)
	}
	if strings.Contains(fullName, "..") || strings.HasSuffix(fullName, ".") {
		return unitypes.NewErrorData(unitypes.ErrCodeInvalidCommandName,
			"Invalid command name '%s': empty path segment", fullName)
	}

	if err := r.validate.Struct(def); err != nil {
		return &unitypes.ErrorData{
			Code:    unitypes.ErrCodeInvalidDefinition,
			Message: fmt.Sprintf("invalid definition for %s: %v", fullName, err),
			Cause:   err,
		}
	}

	if def.Version != "" {
		if _, err := semver.NewVersion(def.Version); err != nil {
			return &unitypes.ErrorData{
				Code:    unitypes.ErrCodeInvalidDefinition,
				Message: fmt.Sprintf("invalid version '%s' for %s: %v", def.Version, fullName, err),
				Cause:   err,
			}
		}
	}

	for _, arg := range def.Arguments {
		if arg.Attributes.Multiple && !arg.Kind.IsList() {
			return unitypes.NewErrorData(unitypes.ErrCodeInvalidDefinition,
				"argument '%s' of %s is multiple but its kind %s is not a List", arg.Name, fullName, arg.Kind)
		}
		for _, rule := range arg.ValidationRules {
			if rule.Type != unitypes.RulePattern {
				continue
			}
			if _, err := regexp.Compile(rule.Pattern); err != nil {
				return &unitypes.ErrorData{
					Code:    unitypes.ErrCodeInvalidDefinition,
					Message: fmt.Sprintf("argument '%s' of %s has an invalid pattern: %v", arg.Name, fullName, err),
					Cause:   err,
				}
			}
		}
	}
	return nil
}

// taken reports whether path is a registered full name or alias. Callers hold the lock.
func (r *Registry) taken(path string) bool {
	if _, exists := r.definitions[path]; exists {
		return true
	}
	_, exists := r.aliases[path]
	return exists
}

// aliasPath resolves an alias to a path. Aliases starting with "." are full paths;
// others live in the command's namespace.
func aliasPath(def *unitypes.CommandDefinition, alias string) string {
	if strings.HasPrefix(alias, unitypes.PathPrefix) {
		return alias
	}
	full := def.FullName()
	return full[:strings.LastIndex(full, unitypes.PathPrefix)+1] + alias
}

// Unregister removes a command and its aliases by full name.
// This operation is thread-safe and will not error if the command doesn't exist.
func (r *Registry) Unregister(fullName string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.definitions, fullName)
	for alias, target := range r.aliases {
		if target == fullName {
			delete(r.aliases, alias)
		}
	}
}

// Lookup resolves a path, given as full name or alias, to its definition.
func (r *Registry) Lookup(path string) (*unitypes.CommandDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if target, ok := r.aliases[path]; ok {
		path = target
	}
	def, exists := r.definitions[path]
	return def, exists
}

// RoutineFor returns the routine implementing the command with the given full name.
func (r *Registry) RoutineFor(fullName string) (unitypes.Routine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, exists := r.definitions[fullName]
	if !exists {
		return nil, false
	}
	routine, exists := r.routines[def.RoutineKey()]
	return routine, exists
}

// Names returns every registered full name and alias in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.definitions)+len(r.aliases))
	for name := range r.definitions {
		names = append(names, name)
	}
	for alias := range r.aliases {
		names = append(names, alias)
	}
	sort.Strings(names)
	return names
}

// GetAll returns all registered definitions sorted by full name.
// The returned slice is a copy and can be safely modified.
func (r *Registry) GetAll() []*unitypes.CommandDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]*unitypes.CommandDefinition, 0, len(r.definitions))
	for _, def := range r.definitions {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool {
		return defs[i].FullName() < defs[j].FullName()
	})
	return defs
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.definitions)
}

// Clone returns an independent registry holding the same definitions and routines.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clone := NewRegistry()
	for name, def := range r.definitions {
		clone.definitions[name] = def
	}
	for alias, target := range r.aliases {
		clone.aliases[alias] = target
	}
	for key, routine := range r.routines {
		clone.routines[key] = routine
	}
	return clone
}

// GlobalRegistry is the global command registry instance used throughout unilang.
// Builtin commands register themselves with this instance during initialization.
var GlobalRegistry = NewRegistry()
