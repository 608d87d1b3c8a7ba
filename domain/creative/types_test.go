package creative

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"Corporate Voice-Over!", []string{"corporate", "voice", "over"}},
		{"close_up shot", []string{"close_up", "shot"}},
		{"", nil},
		{"  ---  ", nil},
	}
	for _, tc := range cases {
		got := Tokenize(tc.in)
		if len(got) == 0 && len(tc.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestSceneElement(t *testing.T) {
	s := SceneElement{
		SceneID:    "scene_1",
		StartTime:  0,
		EndTime:    5.2,
		VisualTags: []string{"Office", "corporate"},
		Transcript: "Our brand has always been about People.",
	}

	if s.Kind() != KindScene {
		t.Fatalf("kind = %s", s.Kind())
	}
	if s.Key() != "scene:scene_1" {
		t.Fatalf("key = %s", s.Key())
	}
	if got, want := s.Description(), "Scene scene_1 (0.0s-5.2s)"; got != want {
		t.Fatalf("description = %q, want %q", got, want)
	}

	tokens := s.MatchTokens()
	for _, want := range []string{"office", "corporate", "people", "brand"} {
		if !contains(tokens, want) {
			t.Errorf("MatchTokens missing %q: %v", want, tokens)
		}
	}
	// Sorted and deduplicated.
	for i := 1; i < len(tokens); i++ {
		if tokens[i-1] >= tokens[i] {
			t.Fatalf("tokens not strictly sorted: %v", tokens)
		}
	}
}

func TestAttributeElement(t *testing.T) {
	a := AttributeElement{
		Attribute: KindAudioTone,
		Value:     "formal_voiceover",
		Tags:      []string{"corporate", "scripted"},
	}

	if a.Kind() != KindAudioTone {
		t.Fatalf("kind = %s", a.Kind())
	}
	if a.Key() != "audio_tone:formal_voiceover" {
		t.Fatalf("key = %s", a.Key())
	}
	if got := a.Description(); got != "Audio/voiceover tone: formal_voiceover" {
		t.Fatalf("description = %q", got)
	}
	if !contains(a.MatchTokens(), "formal_voiceover") {
		t.Errorf("value tokens missing: %v", a.MatchTokens())
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
