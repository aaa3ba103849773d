package hotkey

import (
	"fmt"
	"strings"
)

// Modifier is a platform-neutral modifier key.
type Modifier string

const (
	// CommandOrControl is Command on macOS and Control elsewhere.
	CommandOrControl Modifier = "CommandOrControl"
	Control          Modifier = "Control"
	Command          Modifier = "Command"
	Shift            Modifier = "Shift"
	Alt              Modifier = "Alt"
	Super            Modifier = "Super"
)

var modifierAliases = map[string]Modifier{
	"commandorcontrol": CommandOrControl,
	"cmdorctrl":        CommandOrControl,
	"control":          Control,
	"ctrl":             Control,
	"command":          Command,
	"cmd":              Command,
	"shift":            Shift,
	"alt":              Alt,
	"option":           Alt,
	"super":            Super,
	"meta":             Super,
}

var namedKeys = map[string]string{
	"up":       "Up",
	"down":     "Down",
	"left":     "Left",
	"right":    "Right",
	"home":     "Home",
	"end":      "End",
	"pageup":   "PageUp",
	"pagedown": "PageDown",
	"space":    "Space",
	"tab":      "Tab",
	"enter":    "Return",
	"return":   "Return",
	"escape":   "Escape",
	"esc":      "Escape",
	"delete":   "Delete",
}

// Accelerator is a parsed key chord such as "CommandOrControl+Shift+B".
type Accelerator struct {
	Modifiers []Modifier
	Key       string
}

// String renders the accelerator in canonical form.
func (accelerator Accelerator) String() string {
	parts := make([]string, 0, len(accelerator.Modifiers)+1)
	for _, modifier := range accelerator.Modifiers {
		parts = append(parts, string(modifier))
	}
	return strings.Join(append(parts, accelerator.Key), "+")
}

// Has reports whether the chord includes modifier.
func (accelerator Accelerator) Has(modifier Modifier) bool {
	for _, candidate := range accelerator.Modifiers {
		if candidate == modifier {
			return true
		}
	}
	return false
}

// ParseAccelerator parses a "+"-separated chord. Exactly one non-modifier key
// is required; it must be a letter, a digit, F1-F24, or a named key.
func ParseAccelerator(text string) (Accelerator, error) {
	var accelerator Accelerator
	seen := make(map[Modifier]bool)

	for _, raw := range strings.Split(text, "+") {
		token := strings.TrimSpace(raw)
		if token == "" {
			return Accelerator{}, fmt.Errorf("accelerator %q: empty key", text)
		}
		if modifier, ok := modifierAliases[strings.ToLower(token)]; ok {
			if !seen[modifier] {
				seen[modifier] = true
				accelerator.Modifiers = append(accelerator.Modifiers, modifier)
			}
			continue
		}
		if accelerator.Key != "" {
			return Accelerator{}, fmt.Errorf("accelerator %q: more than one key", text)
		}
		key, err := normalizeKey(token)
		if err != nil {
			return Accelerator{}, fmt.Errorf("accelerator %q: %w", text, err)
		}
		accelerator.Key = key
	}

	if accelerator.Key == "" {
		return Accelerator{}, fmt.Errorf("accelerator %q: missing key", text)
	}
	return accelerator, nil
}

func normalizeKey(token string) (string, error) {
	if len(token) == 1 {
		character := strings.ToUpper(token)[0]
		if (character >= 'A' && character <= 'Z') || (character >= '0' && character <= '9') {
			return string(character), nil
		}
	}
	lower := strings.ToLower(token)
	if named, ok := namedKeys[lower]; ok {
		return named, nil
	}
	var number int
	if _, err := fmt.Sscanf(lower, "f%d", &number); err == nil && number >= 1 && number <= 24 &&
		lower == fmt.Sprintf("f%d", number) {
		return fmt.Sprintf("F%d", number), nil
	}
	return "", fmt.Errorf("unsupported key %q", token)
}
