package creative

import (
	"fmt"
	"sort"
	"strings"
)

// Kind classifies creative elements.
type Kind string

const (
	KindScene     Kind = "scene"
	KindAudioTone Kind = "audio_tone"
	KindMessaging Kind = "messaging"
	KindPacing    Kind = "pacing"
)

// Element is a discrete, referenceable unit of the creative that a
// recommendation can point to. Elements are supplied pre-computed by the
// video/audio understanding provider and are read-only inputs.
type Element interface {
	Kind() Kind
	// Key is a stable reference identity used for merging recommendations
	// that point at the same element.
	Key() string
	// Description is a short human-readable name for the element.
	Description() string
	// MatchTokens returns the element's lower-cased match vocabulary
	// (tags plus transcript tokens), deduplicated and sorted.
	MatchTokens() []string
}

// SceneElement references a time-bounded scene of the video creative.
type SceneElement struct {
	SceneID    string   `json:"scene_id"`
	StartTime  float64  `json:"start_time"`
	EndTime    float64  `json:"end_time"`
	VisualTags []string `json:"visual_tags"`
	Transcript string   `json:"transcript,omitempty"`
}

func (s SceneElement) Kind() Kind { return KindScene }

func (s SceneElement) Key() string { return "scene:" + s.SceneID }

func (s SceneElement) Description() string {
	return fmt.Sprintf("Scene %s (%.1fs-%.1fs)", s.SceneID, s.StartTime, s.EndTime)
}

func (s SceneElement) MatchTokens() []string {
	set := make(map[string]struct{})
	for _, tag := range s.VisualTags {
		addTokens(set, tag)
	}
	addTokens(set, s.Transcript)
	return sortedTokens(set)
}

// AttributeElement references a non-scene attribute of the creative:
// audio tone, messaging or pacing.
type AttributeElement struct {
	Attribute Kind     `json:"kind"`
	Value     string   `json:"value"`
	Tags      []string `json:"tags"`
}

func (a AttributeElement) Kind() Kind { return a.Attribute }

func (a AttributeElement) Key() string { return string(a.Attribute) + ":" + a.Value }

func (a AttributeElement) Description() string {
	switch a.Attribute {
	case KindAudioTone:
		return "Audio/voiceover tone: " + a.Value
	case KindMessaging:
		return "Messaging: " + a.Value
	case KindPacing:
		return "Pacing: " + a.Value
	}
	return a.Value
}

func (a AttributeElement) MatchTokens() []string {
	set := make(map[string]struct{})
	for _, tag := range a.Tags {
		addTokens(set, tag)
	}
	addTokens(set, a.Value)
	return sortedTokens(set)
}

// Tokenize lower-cases text and splits it on non-alphanumeric runs.
// Exact token matching keeps resolution deterministic and explainable;
// stemming is deliberately not applied.
func Tokenize(text string) []string {
	lowered := strings.ToLower(text)
	return strings.FieldsFunc(lowered, func(r rune) bool {
		return !isWordRune(r)
	})
}

func isWordRune(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= '0' && r <= '9') ||
		r > 127 // keep non-ASCII letters intact rather than splitting words
}

func addTokens(set map[string]struct{}, text string) {
	for _, tok := range Tokenize(text) {
		set[tok] = struct{}{}
	}
}

func sortedTokens(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for tok := range set {
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}
