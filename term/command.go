package term

import (
	"strconv"
	"strings"
)

// splitLine separates the first whitespace-delimited token from the rest
// of the line. The remainder keeps its internal spacing but loses the
// separator run after the token.
func splitLine(line string) (name, arg string) {
	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	start := i
	for i < len(line) && line[i] != ' ' && line[i] != '\t' {
		i++
	}
	name = line[start:i]
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return name, line[i:]
}

// dispatchLine runs the command table against one input line. Every exact
// name match receives the trimmed argument. When nothing matched and the
// line carried a token, every catch-all entry receives the raw line.
func (t *Terminal) dispatchLine(line string) {
	name, arg := splitLine(line)
	found := false
	for i := range t.commands {
		if t.commands[i].Name == name {
			t.commands[i].Handler(arg)
			found = true
		}
	}
	if !found && name != "" {
		for i := range t.commands {
			if t.commands[i].Name == "" {
				t.commands[i].Handler(line)
			}
		}
	}
}

// parseKeyAndTail splits a command argument into the settings key and the
// value remainder.
func parseKeyAndTail(arg string) (key, tail string, ok bool) {
	key, tail = splitLine(arg)
	if key == "" {
		return "", "", false
	}
	return key, tail, true
}

// parseIntStrict accepts an optionally signed decimal with nothing but
// whitespace around it. Trailing garbage rejects the whole value.
func parseIntStrict(s string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseBoolToken accepts true/false, t/f and 1/0, case-insensitive.
func parseBoolToken(s string) (bool, bool) {
	tok, _ := splitLine(s)
	switch strings.ToLower(tok) {
	case "true", "t", "1":
		return true, true
	case "false", "f", "0":
		return false, true
	}
	return false, false
}
