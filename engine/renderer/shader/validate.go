package shader

import (
	"regexp"
	"strings"

	"github.com/gogpu/naga"
)

// stripComments removes // line comments and /* */ block comments from WGSL source.
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		switch {
		case depth == 0 && strings.HasPrefix(source[i:], "//"):
			end := strings.IndexByte(source[i:], '\n')
			if end < 0 {
				return sb.String()
			}
			i += end - 1
		case strings.HasPrefix(source[i:], "/*"):
			// WGSL block comments nest
			depth++
			i++
		case depth > 0 && strings.HasPrefix(source[i:], "*/"):
			depth--
			i++
		case depth == 0:
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}

// definesFunction reports whether code declares a function called name.
func definesFunction(code, name string) bool {
	re := regexp.MustCompile(`\bfn\s+` + regexp.QuoteMeta(name) + `\s*\(`)
	return re.MatchString(stripComments(code))
}

// compileWGSL runs the WGSL front end and back end over an assembled stage.
func compileWGSL(source string) error {
	_, err := naga.Compile(source)
	return err
}
