package config

// Version is the compiler version checked against a project's `requires` constraint.
var Version = "0.4.0"

const SourceFileExt = ".val"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".val", ".valang"}

// ConfigFileName is the project options file looked up next to the source.
const ConfigFileName = "valang.yaml"

// IsTestMode indicates if the program is running in test mode.
// Diagnostics omit unit ids and colors in test mode.
var IsTestMode = false

// Built-in type names
const (
	IntTypeName    = "Int"
	BoolTypeName   = "Bool"
	UnitTypeName   = "Unit"
	StringTypeName = "String"
)

// BuiltinTypeNames lists the prelude types in declaration order.
var BuiltinTypeNames = []string{IntTypeName, BoolTypeName, UnitTypeName, StringTypeName}

// Limits
const (
	MaxRecursionDepth = 512
	MaxCallDepth      = 10000 // interpreter frames, tail calls excluded
	DefaultMaxErrors  = 100
	DefaultEntry      = "main"
)
