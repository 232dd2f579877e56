package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/conduit-lang/podreg/runtime/pod"
)

// ErrorLevel represents the severity of an error message
type ErrorLevel int

const (
	ErrorLevelError ErrorLevel = iota
	ErrorLevelWarning
	ErrorLevelInfo
)

// ErrorOptions configures the error message formatting
type ErrorOptions struct {
	Level        ErrorLevel
	Code         string
	Context      string
	Problem      string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

// FormatError creates a standardized error message
//
// Example output:
//
//	❌ [R004] TYPE NOT FOUND
//	   Cannot find type 'Pint' in pod 'geom'.
//
//	   Did you mean: Point, Print?
//
//	   → See all types: podreg list geom
func FormatError(opts ErrorOptions) string {
	var b strings.Builder

	var headerColor, bodyColor *color.Color
	var symbol string

	switch opts.Level {
	case ErrorLevelWarning:
		headerColor = color.New(color.FgYellow, color.Bold)
		bodyColor = color.New(color.FgYellow)
		symbol = "⚠️"
	case ErrorLevelInfo:
		headerColor = color.New(color.FgCyan, color.Bold)
		bodyColor = color.New(color.FgCyan)
		symbol = "ℹ️"
	default:
		headerColor = color.New(color.FgRed, color.Bold)
		bodyColor = color.New(color.FgRed)
		symbol = "❌"
	}

	if opts.NoColor {
		headerColor.DisableColor()
		bodyColor.DisableColor()
	}

	header := symbol
	if opts.Code != "" {
		header += " [" + opts.Code + "]"
	}
	if opts.Context != "" {
		headerColor.Fprintf(&b, "%s %s\n", header, strings.ToUpper(opts.Context))
		bodyColor.Fprintf(&b, "   %s\n", opts.Problem)
	} else {
		headerColor.Fprintf(&b, "%s %s\n", header, opts.Problem)
	}

	if len(opts.Suggestions) > 0 {
		b.WriteString("\n")
		yellow := color.New(color.FgYellow)
		if opts.NoColor {
			yellow.DisableColor()
		}
		yellow.Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		cyan := color.New(color.FgCyan)
		if opts.NoColor {
			cyan.DisableColor()
		}
		for _, cmd := range opts.HelpCommands {
			cyan.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

// WriteError writes a formatted error message to the writer
func WriteError(w io.Writer, opts ErrorOptions) {
	fmt.Fprint(w, FormatError(opts))
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	green := color.New(color.FgGreen, color.Bold)
	if noColor {
		green.DisableColor()
	}
	return green.Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to the writer
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// RegistryError formats a registry failure. Errors that carry no registry
// code are rendered as a plain error.
func RegistryError(err error, suggestions []string, noColor bool) string {
	opts := ErrorOptions{
		Level:       ErrorLevelError,
		Problem:     err.Error(),
		Suggestions: suggestions,
		NoColor:     noColor,
	}

	var regErr *pod.Error
	if !errors.As(err, &regErr) {
		return FormatError(opts)
	}

	opts.Code = regErr.Code
	switch {
	case errors.Is(err, pod.ErrUnknownPod):
		opts.Context = "pod not found"
		opts.Problem = fmt.Sprintf("Cannot find pod '%s'.", regErr.Name)
		opts.HelpCommands = []string{"See all pods: podreg list"}
	case errors.Is(err, pod.ErrUnknownType):
		opts.Context = "type not found"
		podName, typeName, _ := pod.SplitQName(regErr.Name)
		opts.Problem = fmt.Sprintf("Cannot find type '%s' in pod '%s'.", typeName, podName)
		opts.HelpCommands = []string{"See all types: podreg list " + podName}
	case errors.Is(err, pod.ErrDuplicatePod):
		opts.Context = "duplicate pod"
		opts.Problem = fmt.Sprintf("Pod '%s' is registered twice.", regErr.Name)
	case errors.Is(err, pod.ErrDuplicateType):
		opts.Context = "duplicate type"
		opts.Problem = fmt.Sprintf("Type '%s' is registered twice.", regErr.Name)
	case errors.Is(err, pod.ErrInvalidName):
		opts.Context = "invalid name"
		opts.Problem = fmt.Sprintf("'%s' is not a valid name. Qualified names look like Pod%sType.", regErr.Name, pod.Separator)
	case errors.Is(err, pod.ErrNilType):
		opts.Context = "type not created"
		opts.Problem = fmt.Sprintf("The type constructor returned nothing for '%s'.", regErr.Name)
	}
	if err.Error() != regErr.Error() {
		// keep the caller's context, e.g. the manifest position
		opts.Problem += "\n   " + err.Error()
	}
	return FormatError(opts)
}

// ConfigError creates a standardized configuration error
func ConfigError(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:        ErrorLevelError,
		Context:      "configuration error",
		Problem:      message,
		HelpCommands: []string{"View config: cat podreg.yaml", "Get help: podreg --help"},
		NoColor:      noColor,
	})
}

// Warning creates a standardized warning message
func Warning(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelWarning,
		Problem: message,
		NoColor: noColor,
	})
}
