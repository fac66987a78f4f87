package recipe

import (
	"fmt"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Params holds normalized flag values keyed by flag name. Values are
// canonical strings (numbers without percent signs, enums in canonical
// casing, colors as "#rrggbb"); the typed getters assume Normalize has
// validated them.
type Params map[string]string

// Int returns a normalized int parameter.
func (p Params) Int(name string) int {
	v, _ := strconv.Atoi(p[name])
	return v
}

// Float returns a normalized float or percent parameter.
func (p Params) Float(name string) float64 {
	v, _ := strconv.ParseFloat(p[name], 64)
	return v
}

// Bool returns a normalized bool parameter.
func (p Params) Bool(name string) bool {
	return p[name] == "true"
}

// String returns a parameter verbatim.
func (p Params) String(name string) string { return p[name] }

// Color returns a normalized color parameter.
func (p Params) Color(name string) colorful.Color {
	c, _ := colorful.Hex(p[name])
	return c
}

// Normalize validates raw flag values against the spec and fills
// defaults for omitted optionals. Raw values are the textual flag
// values as typed by the user; a missing or empty entry means the flag
// was omitted.
func Normalize(s Spec, raw map[string]string) (Params, error) {
	out := make(Params, len(s.Args))
	for _, a := range s.Args {
		val := strings.TrimSpace(raw[a.Name])
		if val == "" {
			if a.Required {
				return nil, fmt.Errorf("missing required flag --%s", a.Name)
			}
			val = a.Default
			if val == "" {
				out[a.Name] = ""
				continue
			}
		}
		norm, err := normalizeValue(a, val)
		if err != nil {
			return nil, err
		}
		out[a.Name] = norm
	}
	return out, nil
}

func normalizeValue(a ArgSpec, val string) (string, error) {
	switch a.Type {
	case ArgInt:
		n, err := strconv.Atoi(val)
		if err != nil {
			return "", fmt.Errorf("flag --%s: expected integer, got %q", a.Name, val)
		}
		if err := checkRange(a, float64(n)); err != nil {
			return "", err
		}
		return strconv.Itoa(n), nil

	case ArgFloat:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return "", fmt.Errorf("flag --%s: expected number, got %q", a.Name, val)
		}
		if err := checkRange(a, f); err != nil {
			return "", err
		}
		return strconv.FormatFloat(f, 'f', -1, 64), nil

	case ArgPercent:
		f, err := parsePercent(val)
		if err != nil {
			return "", fmt.Errorf("flag --%s: %w", a.Name, err)
		}
		if err := checkRange(a, f); err != nil {
			return "", err
		}
		return strconv.FormatFloat(f, 'f', -1, 64), nil

	case ArgBool:
		b, err := parseBoolLike(val)
		if err != nil {
			return "", fmt.Errorf("flag --%s: %w", a.Name, err)
		}
		return strconv.FormatBool(b), nil

	case ArgEnum:
		tok, err := matchEnum(a.Enum, val)
		if err != nil {
			return "", fmt.Errorf("flag --%s: %w", a.Name, err)
		}
		return tok, nil

	case ArgColor:
		c, err := ParseColor(val)
		if err != nil {
			return "", fmt.Errorf("flag --%s: %w", a.Name, err)
		}
		return c.Hex(), nil

	case ArgString:
		return val, nil

	default:
		return "", fmt.Errorf("flag --%s: unsupported type %q", a.Name, a.Type)
	}
}

func checkRange(a ArgSpec, v float64) error {
	if a.Min != nil && v < *a.Min {
		return fmt.Errorf("flag --%s: %s below minimum %s", a.Name, trimFloat(v), trimFloat(*a.Min))
	}
	if a.Max != nil && v > *a.Max {
		return fmt.Errorf("flag --%s: %s above maximum %s", a.Name, trimFloat(v), trimFloat(*a.Max))
	}
	return nil
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// parsePercent accepts "30" or "30%" and returns the numeric value.
func parsePercent(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid percent value: %q", s)
	}
	return f, nil
}

// parseBoolLike accepts common truthy/falsy forms.
func parseBoolLike(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "t", "true", "y", "yes", "on":
		return true, nil
	case "0", "f", "false", "n", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean: %q", s)
	}
}

// matchEnum resolves val against the token set, accepting canonical
// tokens case-insensitively and unambiguous prefixes.
func matchEnum(tokens []string, val string) (string, error) {
	lower := strings.ToLower(strings.TrimSpace(val))
	for _, t := range tokens {
		if strings.ToLower(t) == lower {
			return t, nil
		}
	}
	var matches []string
	for _, t := range tokens {
		if strings.HasPrefix(strings.ToLower(t), lower) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", fmt.Errorf("invalid value %q; choose one of %s", val, strings.Join(tokens, ", "))
	default:
		return "", fmt.Errorf("ambiguous value %q; candidates: %s", val, strings.Join(matches, ", "))
	}
}
