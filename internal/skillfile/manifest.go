// Package skillfile parses SKILL.md documents: a YAML frontmatter block
// describing the skill, followed by a markdown body that becomes the
// published readme. Both the publish endpoint and the CLI use this parser,
// so a skill rejected locally by `claw publish` would also be rejected by
// the server.
package skillfile

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/clawhub/clawhub/internal/apperror"
)

// maxFrontmatterSize bounds the YAML block we hand to the parser.
const maxFrontmatterSize = 64 * 1024

// Manifest is the parsed SKILL.md frontmatter.
type Manifest struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Version     string            `yaml:"version,omitempty"`
	License     string            `yaml:"license,omitempty"`
	Metadata    map[string]string `yaml:"metadata,omitempty"`
}

const delimiter = "---"

// Parse extracts the frontmatter and body from SKILL.md content.
//
// The document must start with a `---` line; everything up to the next
// `---` line is YAML, the remainder is the readme body. Name and
// description are mandatory. All failures are validation errors so the
// HTTP layer reports them as 400s.
func Parse(content string) (*Manifest, string, error) {
	content = strings.TrimLeft(content, "\uFEFF") // tolerate a BOM

	lines := strings.SplitN(content, "\n", 2)
	if strings.TrimRight(lines[0], "\r") != delimiter || len(lines) < 2 {
		return nil, "", apperror.ValidationFailed("skill",
			"SKILL.md must start with YAML frontmatter (---)")
	}

	rest := lines[1]
	end := findDelimiter(rest)
	if end < 0 {
		return nil, "", apperror.ValidationFailed("skill",
			"SKILL.md frontmatter is not terminated (missing closing ---)")
	}

	raw := rest[:end]
	if len(raw) > maxFrontmatterSize {
		return nil, "", apperror.ValidationFailed("skill",
			fmt.Sprintf("frontmatter exceeds %d bytes", maxFrontmatterSize))
	}

	var m Manifest
	if err := yaml.Unmarshal([]byte(raw), &m); err != nil {
		return nil, "", apperror.ValidationFailed("skill",
			fmt.Sprintf("invalid frontmatter YAML: %v", err))
	}

	m.Name = strings.TrimSpace(m.Name)
	m.Description = strings.TrimSpace(m.Description)
	if m.Name == "" {
		return nil, "", apperror.ValidationFailed("name",
			"skill name is required in SKILL.md frontmatter")
	}
	if m.Description == "" {
		return nil, "", apperror.ValidationFailed("description",
			"skill description is required in SKILL.md frontmatter")
	}

	body := rest[end:]
	// Drop the closing delimiter line itself.
	if i := strings.Index(body, "\n"); i >= 0 {
		body = body[i+1:]
	} else {
		body = ""
	}

	return &m, strings.TrimSpace(body), nil
}

// findDelimiter returns the byte offset of the line starting the closing
// `---`, or -1 when none exists.
func findDelimiter(s string) int {
	offset := 0
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimRight(line, "\r") == delimiter {
			return offset
		}
		offset += len(line) + 1
	}
	return -1
}

// Slugify derives the stable public identifier from a skill name:
// lowercase, runs of non-alphanumerics collapsed to single hyphens.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
