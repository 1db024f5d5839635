package parser

import (
	"bufio"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"fsbridge/pkg/errors"
	"fsbridge/pkg/types"
)

var (
	reStep    = regexp.MustCompile(`^(\w+)\s+(\S+)(?:\s(.*))?$`)
	unescaper = strings.NewReplacer(`\\`, `\`, `\n`, "\n", `\t`, "\t", `\r`, "\r")
)

// maxLineSize bounds a single script line, content included
const maxLineSize = 4 * 1024 * 1024

// splitLines splits a string into lines with proper handling of large
// content. On error the lines scanned so far are returned with it.
func splitLines(s string) ([]string, error) {
	sc := bufio.NewScanner(strings.NewReader(s))
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lines := []string{}
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

// Unescape expands \n, \t, \r and \\ in script content
func Unescape(s string) string {
	return unescaper.Replace(s)
}

// ParseScript parses a line-oriented batch script. Each non-blank line that
// does not start with '#' reads "<op> <path> [content]"; content runs to the
// end of the line, trailing whitespace included, and may use \n, \t, \r
// and \\ escapes.
func ParseScript(text string) ([]types.Step, error) {
	lines, err := splitLines(text)
	if err != nil {
		return nil, errors.ParseErrorf("line %d: %v", len(lines)+1, err)
	}

	var steps []types.Step
	for i, raw := range lines {
		line := strings.TrimLeft(raw, " \t")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m := reStep.FindStringSubmatch(line)
		if m == nil {
			return nil, errors.ParseErrorf("line %d: expected \"<op> <path> [content]\"", i+1)
		}
		step := types.Step{
			Op:      types.Op(strings.ToLower(m[1])),
			Path:    m[2],
			Content: Unescape(m[3]),
			Line:    i + 1,
		}
		if err := validate(step); err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}

	if len(steps) == 0 {
		return nil, errors.ParseError("no steps found in script")
	}
	return steps, nil
}

type manifest struct {
	Steps []types.Step `yaml:"steps"`
}

// ParseYAML parses a manifest of the form "steps: [{op, path, content}]".
// JSON input is accepted as a YAML subset.
func ParseYAML(data []byte) ([]types.Step, error) {
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeParse, "invalid manifest")
	}
	if len(m.Steps) == 0 {
		return nil, errors.ParseError("no steps found in manifest")
	}
	for i := range m.Steps {
		m.Steps[i].Op = types.Op(strings.ToLower(string(m.Steps[i].Op)))
		m.Steps[i].Line = i + 1
		if err := validate(m.Steps[i]); err != nil {
			return nil, err
		}
	}
	return m.Steps, nil
}

// ParseManifest picks the format from the file name: .yaml, .yml and .json
// are structured manifests, anything else is a line script.
func ParseManifest(name string, data []byte) ([]types.Step, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return ParseYAML(data)
	default:
		return ParseScript(string(data))
	}
}

func validate(s types.Step) error {
	if !s.Op.Valid() {
		return errors.ParseErrorf("step %d: unknown op %q", s.Line, s.Op)
	}
	if s.Path == "" {
		return errors.ParseErrorf("step %d: path is required", s.Line)
	}
	return nil
}
