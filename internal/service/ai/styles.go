package ai

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// StyleKind tells the prompt assembler how a style's instructions are built.
type StyleKind int

const (
	// StyleStatic uses a fixed instruction template.
	StyleStatic StyleKind = iota + 1
	// StyleExemplarDerived builds instructions from saved translation pairs.
	StyleExemplarDerived
)

func (k StyleKind) String() string {
	switch k {
	case StyleStatic:
		return "static"
	case StyleExemplarDerived:
		return "exemplar"
	default:
		return fmt.Sprintf("StyleKind(%d)", int(k))
	}
}

// ParseStyleKind accepts the names used in style files.
func ParseStyleKind(s string) (StyleKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "static":
		return StyleStatic, nil
	case "exemplar", "exemplar_derived", "personal":
		return StyleExemplarDerived, nil
	default:
		return 0, fmt.Errorf("unknown style kind %q", s)
	}
}

// StyleProfile describes one selectable translation style.
// Template holds a {style} placeholder and is used only by static styles.
type StyleProfile struct {
	ID          string
	DisplayName string
	Kind        StyleKind
	Template    string
}

// Built-in style identifiers.
const (
	StyleButrusAlBustani = "butrus-al-bustani"
	StyleAlJahiz         = "al-jahiz"
	StyleMahmoudShaker   = "mahmoud-shaker"
	StylePersonal        = "personal"
	StyleLiterary        = "literary"
)

const genericStyleTemplate = `Translate the following English text into Arabic in the style of {style}:`

const literaryStyleTemplate = `You are a professional translator tasked with rendering English texts into Arabic using the user’s personal literary style.

This style is defined by:

- Elevated and classical Arabic language, free from modern journalistic clichés.
- Preference for original Arabic syntax, beginning with the verb where natural.
- Long, rhetorically rich sentences balanced by cadence and logic.
- Imagery-driven narration: metaphor and simile are built progressively and end with poetic force.
- Diction inspired by early 20th-century Arab stylists such as Taha Hussein, Mahmoud Shaker, and Butrus al-Bustani.
- Philosophical and reflective tone; avoids sensationalism and overstatement.
- Sensitive to historical analogy, metaphorical layering, and the connotations of both source and target languages.
- Avoids literal translation when it fails to preserve the author’s tone and subtext.
- Avoid common errors and stylistic weaknesses in Arabic translation.
Be mindful of frequent issues such as passive constructions when the agent is known, weak nominal structures like 'القيام بـ', vague wording, and overly literal phrases that distort the original tone.
- Audience: highly literate Arabic readers.

Translate the following English text into Arabic using this style:`

// DefaultStyles returns the built-in profiles in display order.
func DefaultStyles() []StyleProfile {
	return []StyleProfile{
		{ID: StyleButrusAlBustani, DisplayName: "Butrus al-Bustani", Kind: StyleStatic, Template: genericStyleTemplate},
		{ID: StyleAlJahiz, DisplayName: "al-Jahiz", Kind: StyleStatic, Template: genericStyleTemplate},
		{ID: StyleMahmoudShaker, DisplayName: "Mahmoud Shaker", Kind: StyleStatic, Template: genericStyleTemplate},
		{ID: StylePersonal, DisplayName: "أسلوبي الشخصي", Kind: StyleExemplarDerived},
		{ID: StyleLiterary, DisplayName: "أسلوبي الحقيقي", Kind: StyleStatic, Template: literaryStyleTemplate},
	}
}

var ErrDuplicateStyle = errors.New("duplicate style")

// StyleRegistry is the immutable set of styles built at startup.
type StyleRegistry struct {
	profiles []StyleProfile
	byKey    map[string]StyleProfile
}

// NewStyleRegistry builds a registry from the built-ins plus extra.
// Identifiers and display names must be unique across both.
func NewStyleRegistry(extra ...StyleProfile) (*StyleRegistry, error) {
	r := &StyleRegistry{byKey: make(map[string]StyleProfile)}
	for _, p := range append(DefaultStyles(), extra...) {
		if err := r.add(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *StyleRegistry) add(p StyleProfile) error {
	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" {
		return errors.New("style id is required")
	}
	if p.DisplayName == "" {
		p.DisplayName = p.ID
	}
	switch p.Kind {
	case StyleStatic:
		if strings.TrimSpace(p.Template) == "" {
			p.Template = genericStyleTemplate
		}
	case StyleExemplarDerived:
		p.Template = ""
	default:
		return fmt.Errorf("style %s: unknown kind %v", p.ID, p.Kind)
	}
	for _, key := range []string{p.ID, p.DisplayName} {
		if _, ok := r.byKey[key]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateStyle, key)
		}
	}
	r.byKey[p.ID] = p
	r.byKey[p.DisplayName] = p
	r.profiles = append(r.profiles, p)
	return nil
}

// Lookup finds a style by identifier or display name. Display names are
// what older archives stored in the style column.
func (r *StyleRegistry) Lookup(key string) (StyleProfile, bool) {
	p, ok := r.byKey[strings.TrimSpace(key)]
	return p, ok
}

// List returns the profiles in registration order.
func (r *StyleRegistry) List() []StyleProfile {
	out := make([]StyleProfile, len(r.profiles))
	copy(out, r.profiles)
	return out
}

type styleFile struct {
	Styles []struct {
		ID       string `yaml:"id"`
		Name     string `yaml:"name"`
		Kind     string `yaml:"kind"`
		Template string `yaml:"template"`
	} `yaml:"styles"`
}

// LoadStyleFile reads extra style profiles from a YAML file:
//
//	styles:
//	  - id: taha-hussein
//	    name: Taha Hussein
//	    kind: static
func LoadStyleFile(path string) ([]StyleProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read style file: %w", err)
	}
	var file styleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse style file: %w", err)
	}

	profiles := make([]StyleProfile, 0, len(file.Styles))
	for i, s := range file.Styles {
		kind, err := ParseStyleKind(s.Kind)
		if err != nil {
			return nil, fmt.Errorf("style %d: %w", i, err)
		}
		profiles = append(profiles, StyleProfile{
			ID:          s.ID,
			DisplayName: s.Name,
			Kind:        kind,
			Template:    s.Template,
		})
	}
	return profiles, nil
}
