package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
)

var overrideKeyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// LoadOverrideFile parses a KEY=VALUE file. Blank lines and lines starting with '#'
// are skipped. It returns nil without error when the file does not exist.
func LoadOverrideFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read override file: %w", err)
	}
	return parseOverrides(path, data)
}

// parseOverrides checks every line before handing the content to godotenv, which
// would otherwise accept some malformed lines by joining them with their neighbours.
// Quoted values may span lines. Variable references are rejected: the file is
// merged under the process environment, so expanding them here could disagree
// with the captured values.
func parseOverrides(path string, data []byte) (map[string]string, error) {
	content := strings.ReplaceAll(string(data), "\r\n", "\n")

	var (
		open     byte
		openLine int
		openText string
	)
	for i, raw := range strings.Split(content, "\n") {
		if open != 0 {
			rest, closed := closeQuote(raw, open)
			if open == '"' && referencesVariable(rest) {
				return nil, &ParseError{Path: path, Line: i + 1, Text: raw, Reason: "variable references are not supported"}
			}
			if closed {
				open = 0
			}
			continue
		}

		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		value, reason := checkOverrideLine(line)
		if reason == "" {
			open, reason = checkOverrideValue(value)
		}
		if reason != "" {
			return nil, &ParseError{Path: path, Line: i + 1, Text: raw, Reason: reason}
		}
		if open != 0 {
			openLine, openText = i+1, raw
		}
	}
	if open != 0 {
		return nil, &ParseError{Path: path, Line: openLine, Text: openText, Reason: "unterminated quoted value"}
	}

	values, err := godotenv.Unmarshal(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedOverride, path, err)
	}
	return values, nil
}

// checkOverrideLine validates the key of a KEY=VALUE line and returns the raw value.
func checkOverrideLine(line string) (string, string) {
	if rest, ok := strings.CutPrefix(line, "export "); ok {
		line = strings.TrimSpace(rest)
	}
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", "expected KEY=VALUE"
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "missing key"
	}
	if !overrideKeyPattern.MatchString(key) {
		return "", "invalid key"
	}
	return strings.TrimSpace(value), ""
}

// checkOverrideValue returns the quote character left open at the end of the line.
// Single-quoted values are literal; everything else must not reference variables.
func checkOverrideValue(value string) (byte, string) {
	if value == "" {
		return 0, ""
	}
	quote := value[0]
	if quote != '"' && quote != '\'' {
		if i := strings.Index(value, " #"); i >= 0 {
			value = value[:i]
		}
		if referencesVariable(value) {
			return 0, "variable references are not supported"
		}
		return 0, ""
	}

	body, closed := closeQuote(value[1:], quote)
	if quote == '"' && referencesVariable(body) {
		return 0, "variable references are not supported"
	}
	if !closed {
		return quote, ""
	}
	return 0, ""
}

// closeQuote returns the text up to the first unescaped quote and whether one was found.
func closeQuote(s string, quote byte) (string, bool) {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case quote:
			return s[:i], true
		}
	}
	return s, false
}

// referencesVariable reports whether s contains an unescaped $NAME, ${NAME} or $(...).
func referencesVariable(s string) bool {
	for i := 0; i < len(s)-1; i++ {
		switch s[i] {
		case '\\':
			i++
		case '$':
			next := s[i+1]
			if next == '{' || next == '(' || next == '_' ||
				(next >= 'A' && next <= 'Z') || (next >= 'a' && next <= 'z') || (next >= '0' && next <= '9') {
				return true
			}
		}
	}
	return false
}

// FindOverrideFile resolves a bare file name by walking up from the working
// directory until a file with that name exists. Paths with a directory part are
// returned unchanged. It returns an empty string when nothing is found.
func FindOverrideFile(name string) string {
	if name == "" {
		return ""
	}
	if filepath.IsAbs(name) || filepath.Base(name) != name {
		return name
	}

	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
