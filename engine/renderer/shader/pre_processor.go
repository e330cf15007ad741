// pre_processor.go implements the Oxy WGSL skeleton pre-processor. It scans a stage
// skeleton for @oxy: annotations and splices in the generated ShaderVars block, the user
// code fragments and the hook calls of one program.
package shader

import (
	"fmt"
	"strings"
)

// Injection is the generated content spliced into one stage skeleton.
type Injection struct {
	// Vars replaces the //@oxy:vars annotation. Empty removes the line.
	Vars string

	// Fragments replace the //@oxy:fragments annotation, in order.
	Fragments []string

	// Calls maps each bound hook to its function name.
	Calls map[Hook]string
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct{}

// PreProcessor rewrites stage skeletons carrying @oxy: annotations.
type PreProcessor interface {
	// HookSites lists the hook annotations of a skeleton.
	//
	// Parameters:
	//   - stage: the stage the skeleton belongs to
	//   - skeleton: the raw WGSL skeleton
	//
	// Returns:
	//   - map[Hook]int: the 1-based line of each hook site
	//   - error: an error if the skeleton has a malformed annotation or a hook foreign to the stage
	HookSites(stage Stage, skeleton string) (map[Hook]int, error)

	// Process replaces every annotation of the skeleton with the injected content. Hook sites
	// without a binding are removed.
	//
	// Parameters:
	//   - stage: the stage the skeleton belongs to
	//   - skeleton: the raw WGSL skeleton
	//   - in: the generated content to splice in
	//
	// Returns:
	//   - string: the assembled WGSL source
	//   - error: an error if the skeleton is malformed
	Process(stage Stage, skeleton string, in Injection) (string, error)
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a skeleton pre-processor.
//
// Returns:
//   - PreProcessor: the pre-processor
func NewPreProcessor() PreProcessor {
	return &preProcessor{}
}

func (p *preProcessor) HookSites(stage Stage, skeleton string) (map[Hook]int, error) {
	sites := make(map[Hook]int)
	for i, line := range strings.Split(skeleton, "\n") {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return nil, err
		}
		if a == nil || a.Type != AnnotationTypeHook {
			continue
		}
		h, err := ParseHook(stage, a.Hook)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", a.Line, err)
		}
		if prev, ok := sites[h]; ok {
			return nil, fmt.Errorf("line %d: hook %q already placed on line %d", a.Line, a.Hook, prev)
		}
		sites[h] = a.Line
	}
	return sites, nil
}

func (p *preProcessor) Process(stage Stage, skeleton string, in Injection) (string, error) {
	lines := strings.Split(skeleton, "\n")
	out := make([]string, 0, len(lines))

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case AnnotationTypeVars:
			if in.Vars != "" {
				out = append(out, in.Vars)
			}
		case AnnotationTypeFragments:
			out = append(out, in.Fragments...)
		case AnnotationTypeHook:
			h, err := ParseHook(stage, a.Hook)
			if err != nil {
				return "", fmt.Errorf("line %d: %w", a.Line, err)
			}
			if fn, ok := in.Calls[h]; ok {
				out = append(out, a.Indent+h.call(fn))
			}
		}
	}

	return strings.Join(out, "\n"), nil
}
