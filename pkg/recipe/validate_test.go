package recipe

import (
	"strings"
	"testing"
)

func sampleSpec() Spec {
	return Spec{
		Name: "sample",
		Args: []ArgSpec{
			{Name: "spin", Type: ArgInt, Default: "0", Min: F(0), Max: F(360), Description: "rotation degrees"},
			{Name: "amount", Type: ArgPercent, Default: "50", Min: F(0), Max: F(100), Description: "strength"},
			{Name: "sigma", Type: ArgFloat, Default: "1.5", Min: F(0), Description: "blur sigma"},
			{Name: "mode", Type: ArgEnum, Default: "mirror", Enum: []string{"mirror", "tile", "edge"}, Description: "virtual pixel mode"},
			{Name: "invert", Type: ArgBool, Default: "false", Description: "invert"},
			{Name: "tint", Type: ArgColor, Default: "white", Description: "tint color"},
			{Name: "label", Type: ArgString, Required: true, Description: "label text"},
		},
	}
}

func TestNormalizeDefaults(t *testing.T) {
	p, err := Normalize(sampleSpec(), map[string]string{"label": "x"})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if p.Int("spin") != 0 {
		t.Fatalf("spin default = %d; want 0", p.Int("spin"))
	}
	if p.Float("amount") != 50 {
		t.Fatalf("amount default = %v; want 50", p.Float("amount"))
	}
	if p.String("mode") != "mirror" {
		t.Fatalf("mode default = %q; want mirror", p.String("mode"))
	}
	if p.Bool("invert") {
		t.Fatalf("invert default should be false")
	}
	if p.String("tint") != "#ffffff" {
		t.Fatalf("tint default = %q; want #ffffff", p.String("tint"))
	}
}

func TestNormalizeRanges(t *testing.T) {
	cases := []struct {
		name  string
		value string
		ok    bool
	}{
		{"spin", "0", true},
		{"spin", "360", true},
		{"spin", "361", false},
		{"spin", "-1", false},
		{"spin", "abc", false},
		{"spin", "1.5", false},
		{"amount", "30", true},
		{"amount", "30%", true},
		{"amount", "101", false},
		{"amount", "-0.1", false},
		{"sigma", "0.25", true},
		{"sigma", "-2", false},
	}
	for _, c := range cases {
		raw := map[string]string{"label": "x", c.name: c.value}
		_, err := Normalize(sampleSpec(), raw)
		if c.ok && err != nil {
			t.Fatalf("Normalize(%s=%s) unexpected error: %v", c.name, c.value, err)
		}
		if !c.ok && err == nil {
			t.Fatalf("Normalize(%s=%s) expected error", c.name, c.value)
		}
	}
}

func TestNormalizePercentStripsSuffix(t *testing.T) {
	p, err := Normalize(sampleSpec(), map[string]string{"label": "x", "amount": "75%"})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if p.Float("amount") != 75 {
		t.Fatalf("amount = %v; want 75", p.Float("amount"))
	}
	if strings.Contains(p.String("amount"), "%") {
		t.Fatalf("normalized percent %q still carries suffix", p.String("amount"))
	}
}

func TestNormalizeEnum(t *testing.T) {
	cases := []struct {
		value string
		want  string
		ok    bool
	}{
		{"mirror", "mirror", true},
		{"MIRROR", "mirror", true},
		{"m", "mirror", true},
		{"ti", "tile", true},
		{"x", "", false},
		{"", "mirror", true}, // omitted -> default
	}
	for _, c := range cases {
		raw := map[string]string{"label": "x"}
		if c.value != "" {
			raw["mode"] = c.value
		}
		p, err := Normalize(sampleSpec(), raw)
		if c.ok {
			if err != nil {
				t.Fatalf("Normalize(mode=%s) unexpected error: %v", c.value, err)
			}
			if p.String("mode") != c.want {
				t.Fatalf("Normalize(mode=%s) = %q; want %q", c.value, p.String("mode"), c.want)
			}
		} else if err == nil {
			t.Fatalf("Normalize(mode=%s) expected error", c.value)
		}
	}
}

func TestNormalizeEnumAmbiguousPrefix(t *testing.T) {
	s := Spec{Name: "s", Args: []ArgSpec{{Name: "op", Type: ArgEnum, Default: "over", Enum: []string{"over", "overlay"}}}}
	if _, err := Normalize(s, map[string]string{"op": "ov"}); err == nil {
		t.Fatalf("expected ambiguity error for prefix 'ov'")
	}
	p, err := Normalize(s, map[string]string{"op": "over"})
	if err != nil {
		t.Fatalf("exact token rejected: %v", err)
	}
	if p.String("op") != "over" {
		t.Fatalf("op = %q; want over", p.String("op"))
	}
}

func TestNormalizeRequired(t *testing.T) {
	if _, err := Normalize(sampleSpec(), map[string]string{}); err == nil {
		t.Fatalf("expected error for missing required flag")
	}
}

func TestNormalizeBoolForms(t *testing.T) {
	for _, v := range []string{"1", "t", "TRUE", "yes", "on"} {
		p, err := Normalize(sampleSpec(), map[string]string{"label": "x", "invert": v})
		if err != nil {
			t.Fatalf("Normalize(invert=%s): %v", v, err)
		}
		if !p.Bool("invert") {
			t.Fatalf("Normalize(invert=%s) = false; want true", v)
		}
	}
	if _, err := Normalize(sampleSpec(), map[string]string{"label": "x", "invert": "maybe"}); err == nil {
		t.Fatalf("expected error for invert=maybe")
	}
}

func TestParseColor(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"#ff0000", "#ff0000", true},
		{"#F00", "#ff0000", true},
		{"red", "#ff0000", true},
		{"SkyBlue", "#87ceeb", true},
		{"rgb(0,128,255)", "#0080ff", true},
		{"rgb(0,128,999)", "", false},
		{"notacolor", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		col, err := ParseColor(c.in)
		if c.ok {
			if err != nil {
				t.Fatalf("ParseColor(%q) unexpected error: %v", c.in, err)
			}
			if col.Hex() != c.want {
				t.Fatalf("ParseColor(%q) = %s; want %s", c.in, col.Hex(), c.want)
			}
		} else if err == nil {
			t.Fatalf("ParseColor(%q) expected error", c.in)
		}
	}
}
