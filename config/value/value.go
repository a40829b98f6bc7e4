package value

// Value is a typed config value that is bound to a field of the config
// struct and can be set from its string representation, e.g. from an
// environment variable.
type Value interface {
	String() string

	// Set parses the string into the bound field.
	Set(string) error

	// Validate checks the current value. Parsing succeeded doesn't imply
	// the value is valid, e.g. a directory that doesn't exist.
	Validate() error

	IsEmpty() bool
}
