package skillfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clawhub/clawhub/internal/apperror"
)

const validSkillMD = `---
name: Git Helper
description: Automates common git workflows
version: 1.2.0
license: MIT
metadata:
  category: dev-tools
---

# Git Helper

Use this skill to automate rebases.
`

func TestParse_Valid(t *testing.T) {
	m, body, err := Parse(validSkillMD)
	require.NoError(t, err)

	assert.Equal(t, "Git Helper", m.Name)
	assert.Equal(t, "Automates common git workflows", m.Description)
	assert.Equal(t, "1.2.0", m.Version)
	assert.Equal(t, "MIT", m.License)
	assert.Equal(t, "dev-tools", m.Metadata["category"])
	assert.Contains(t, body, "# Git Helper")
	assert.NotContains(t, body, "---", "body must not contain the frontmatter")
}

func TestParse_CRLF(t *testing.T) {
	content := "---\r\nname: CRLF Skill\r\ndescription: written on Windows\r\n---\r\nbody\r\n"
	m, body, err := Parse(content)
	require.NoError(t, err)
	assert.Equal(t, "CRLF Skill", m.Name)
	assert.Equal(t, "body", body)
}

func TestParse_MissingFrontmatter(t *testing.T) {
	_, _, err := Parse("# Just a readme\n")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestParse_UnterminatedFrontmatter(t *testing.T) {
	_, _, err := Parse("---\nname: Broken\ndescription: no closing fence\n")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestParse_InvalidYAML(t *testing.T) {
	_, _, err := Parse("---\nname: [unclosed\n---\nbody\n")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestParse_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no name", "---\ndescription: has no name\n---\nbody\n"},
		{"no description", "---\nname: Nameless\n---\nbody\n"},
		{"whitespace name", "---\nname: \"   \"\ndescription: x\n---\nbody\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(tt.content)
			assert.ErrorIs(t, err, apperror.ErrValidation)
		})
	}
}

func TestParse_EmptyBody(t *testing.T) {
	m, body, err := Parse("---\nname: Terse\ndescription: no readme\n---")
	require.NoError(t, err)
	assert.Equal(t, "Terse", m.Name)
	assert.Empty(t, body)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Git Helper", "git-helper"},
		{"  spaced  out  ", "spaced-out"},
		{"PDF → Text!", "pdf-text"},
		{"already-a-slug", "already-a-slug"},
		{"Caps And 123", "caps-and-123"},
		{"___", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
