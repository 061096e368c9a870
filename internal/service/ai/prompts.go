package ai

import (
	"errors"
	"fmt"
	"strings"
)

const exemplarPreamble = `You are a professional translator who renders English texts into Arabic in the personal literary voice of the user you work for.

Below are passages the user has translated and approved. Study their diction, syntax, rhythm, imagery and tone; these examples define the style.

`

const exemplarClosing = `Translate the following English text into Arabic, writing in the same style demonstrated by the examples above. Output only the Arabic translation.`

var ErrUnknownStyleKind = errors.New("unknown style kind")

// BuildTranslatePrompt assembles the instruction text sent to the provider.
// Static styles interpolate the style name into their template; exemplar
// styles wrap the selected exemplars in a fixed preamble and closing line.
// The source is always appended at the end, byte for byte.
func BuildTranslatePrompt(profile StyleProfile, source string, exemplars ExemplarSet) (string, error) {
	var sb strings.Builder

	switch profile.Kind {
	case StyleStatic:
		sb.WriteString(strings.ReplaceAll(profile.Template, "{style}", profile.DisplayName))
	case StyleExemplarDerived:
		sb.WriteString(exemplarPreamble)
		sb.WriteString(exemplars.Block)
		sb.WriteString(exemplarClosing)
	default:
		return "", fmt.Errorf("%w: %v", ErrUnknownStyleKind, profile.Kind)
	}

	sb.WriteString("\n\n")
	sb.WriteString(source)
	return sb.String(), nil
}
