// annotations.go defines the annotation types and parser for the Oxy WGSL skeleton
// pre-processor. Annotations are single-line WGSL comments prefixed with @oxy: that mark
// where generated code is spliced into a stage skeleton: the uniform block for shader
// vars, the user code fragments, and each hook call site.
package shader

import (
	"fmt"
	"strings"
)

// annotationPrefix is the marker that identifies an Oxy annotation within a WGSL comment line.
// Every annotation must appear on a line beginning with "//" followed by this prefix.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// AnnotationTypeVars is replaced with the ShaderVars struct and its uniform binding.
	// It produces no output when no vars are in scope.
	//
	// Syntax: //@oxy:vars
	AnnotationTypeVars AnnotationType = "vars"

	// AnnotationTypeFragments is replaced with the stage's user code fragments, outermost
	// shader node first.
	//
	// Syntax: //@oxy:fragments
	AnnotationTypeFragments AnnotationType = "fragments"

	// AnnotationTypeHook marks a hook call site. It is replaced with the call to the bound
	// function, or removed when the hook is unbound.
	//
	// Syntax: //@oxy:hook <hook_name>
	//
	// Example: //@oxy:hook pixelColor
	AnnotationTypeHook AnnotationType = "hook"
)

// Annotation represents a single parsed @oxy: annotation from a skeleton line.
type Annotation struct {
	// Type identifies which annotation was parsed.
	Type AnnotationType

	// Hook is the hook name for AnnotationTypeHook, empty otherwise.
	Hook string

	// Line is the 1-based line number in the skeleton. Used for error reporting.
	Line int

	// Indent is the leading whitespace of the annotation line, reused for the generated code.
	Indent string
}

// parseAnnotation parses one skeleton line. It returns nil with no error when the line is
// not an annotation.
//
// Parameters:
//   - line: the raw source line
//   - lineNum: the 1-based line number
//
// Returns:
//   - *Annotation: the parsed annotation, or nil
//   - error: an error if the line is a malformed annotation
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	comment, ok := strings.CutPrefix(trimmed, "//")
	if !ok {
		return nil, nil
	}
	body, ok := strings.CutPrefix(strings.TrimSpace(comment), annotationPrefix)
	if !ok {
		return nil, nil
	}

	fields := strings.Fields(body)
	if len(fields) == 0 {
		return nil, fmt.Errorf("line %d: empty annotation", lineNum)
	}

	a := &Annotation{
		Type:   AnnotationType(fields[0]),
		Line:   lineNum,
		Indent: line[:len(line)-len(strings.TrimLeft(line, " \t"))],
	}
	args := fields[1:]

	switch a.Type {
	case AnnotationTypeVars, AnnotationTypeFragments:
		if len(args) != 0 {
			return nil, fmt.Errorf("line %d: %s annotation takes no arguments, got %d", lineNum, a.Type, len(args))
		}
	case AnnotationTypeHook:
		if len(args) != 1 {
			return nil, fmt.Errorf("line %d: hook annotation takes 1 argument, got %d", lineNum, len(args))
		}
		a.Hook = args[0]
	default:
		return nil, fmt.Errorf("line %d: unknown annotation type %q", lineNum, fields[0])
	}

	return a, nil
}
