// Package vars keeps the registry of configuration variables. Each variable
// binds a typed value to a name, an environment variable and a description.
package vars

import (
	"errors"
	"fmt"
	"os"

	"github.com/ob1/scannerd/config/value"
)

// ErrNotFound is returned for a name that has not been registered.
var ErrNotFound = errors.New("variable not found")

// Levels of the messages collected by Merge and Validate.
const (
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

type variable struct {
	value       value.Value
	defVal      string // Default value in string representation
	name        string
	envName     string
	envAltNames []string // Deprecated environment variables
	description string
	required    bool // A non-empty value is required
	disguise    bool // The value is a secret
	merged      bool // The value has been set from the environment
}

func (v *variable) describe() Variable {
	d := Variable{
		Value:       v.value.String(),
		Name:        v.name,
		EnvName:     v.envName,
		Description: v.description,
		Required:    v.required,
		Merged:      v.merged,
	}

	if v.disguise {
		d.Value = "***"
	}

	return d
}

// Variable is the public description of a registered variable.
type Variable struct {
	Value       string `json:"value"`
	Name        string `json:"name"`
	EnvName     string `json:"env_name,omitempty"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Merged      bool   `json:"merged"`
}

type message struct {
	level    string
	text     string
	variable Variable
}

// Variables is the registry. The zero value is ready to use.
type Variables struct {
	vars  []*variable
	index map[string]*variable
	logs  []message
}

// LookupFunc returns the value of an environment variable and whether it
// is set, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

func (vs *Variables) Register(val value.Value, name, envName string, envAltNames []string, description string, required, disguise bool) {
	if vs.index == nil {
		vs.index = map[string]*variable{}
	}

	v := &variable{
		value:       val,
		defVal:      val.String(),
		name:        name,
		envName:     envName,
		envAltNames: envAltNames,
		description: description,
		required:    required,
		disguise:    disguise,
	}

	vs.vars = append(vs.vars, v)
	vs.index[name] = v
}

// Transfer copies the merged flags of vss. It is used after cloning, where
// the values are copied but not the knowledge where they came from.
func (vs *Variables) Transfer(vss *Variables) {
	for _, v := range vs.vars {
		if vss.IsMerged(v.name) {
			v.merged = true
		}
	}
}

func (vs *Variables) SetDefault(name string) {
	if v := vs.findVariable(name); v != nil {
		v.value.Set(v.defVal)
	}
}

func (vs *Variables) Get(name string) (string, error) {
	v := vs.findVariable(name)
	if v == nil {
		return "", ErrNotFound
	}

	return v.value.String(), nil
}

func (vs *Variables) Set(name, val string) error {
	v := vs.findVariable(name)
	if v == nil {
		return ErrNotFound
	}

	return v.value.Set(val)
}

// Log adds a message for the variable. Messages for unknown variables
// are dropped.
func (vs *Variables) Log(level, name string, format string, args ...interface{}) {
	v := vs.findVariable(name)
	if v == nil {
		return
	}

	vs.logs = append(vs.logs, message{
		level:    level,
		text:     fmt.Sprintf(format, args...),
		variable: v.describe(),
	})
}

// Describe returns all registered variables in the order of their
// registration. Values of secrets are disguised.
func (vs *Variables) Describe() []Variable {
	list := make([]Variable, 0, len(vs.vars))

	for _, v := range vs.vars {
		list = append(list, v.describe())
	}

	return list
}

// Merge overrides the values with the environment.
func (vs *Variables) Merge() {
	vs.MergeWith(os.LookupEnv)
}

// MergeWith overrides the values with the variables found by lookup. A
// deprecated name is only used if the current name isn't set.
func (vs *Variables) MergeWith(lookup LookupFunc) {
	for _, v := range vs.vars {
		if len(v.envName) == 0 {
			continue
		}

		val, ok := lookup(v.envName)
		if !ok {
			for _, alt := range v.envAltNames {
				if val, ok = lookup(alt); ok {
					vs.Log(LevelWarn, v.name, "%s is deprecated, please use %s", alt, v.envName)
					break
				}
			}
		}

		if !ok {
			continue
		}

		if err := v.value.Set(val); err != nil {
			vs.Log(LevelError, v.name, "%s", err.Error())
		}

		v.merged = true
	}
}

func (vs *Variables) IsMerged(name string) bool {
	v := vs.findVariable(name)

	return v != nil && v.merged
}

func (vs *Variables) Validate() {
	for _, v := range vs.vars {
		vs.Log(LevelInfo, v.name, "%s", "")

		if err := v.value.Validate(); err != nil {
			vs.Log(LevelError, v.name, "%s", err.Error())
		}

		if v.required && v.value.IsEmpty() {
			vs.Log(LevelError, v.name, "a value is required")
		}
	}
}

func (vs *Variables) ResetLogs() {
	vs.logs = nil
}

func (vs *Variables) Messages(logger func(level string, v Variable, message string)) {
	for _, l := range vs.logs {
		logger(l.level, l.variable, l.text)
	}
}

func (vs *Variables) HasErrors() bool {
	for _, l := range vs.logs {
		if l.level == LevelError {
			return true
		}
	}

	return false
}

// Overrides returns the names of the variables set from the environment.
func (vs *Variables) Overrides() []string {
	overrides := []string{}

	for _, v := range vs.vars {
		if v.merged {
			overrides = append(overrides, v.name)
		}
	}

	return overrides
}

func (vs *Variables) findVariable(name string) *variable {
	return vs.index[name]
}
