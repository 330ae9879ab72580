package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestMetadataMarshal_FlatObject(t *testing.T) {
	m := Metadata{
		Source:      "/kb/about.md",
		FileName:    "about.md",
		Chunk:       2,
		TotalChunks: 3,
		Category:    "personal",
		Type:        "markdown",
		Extra:       map[string]string{"tag": "bio"},
	}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	// One flat object, no nesting.
	if obj["source"] != "/kb/about.md" {
		t.Errorf("unexpected source %v", obj["source"])
	}
	if obj["fileName"] != "about.md" {
		t.Errorf("unexpected fileName %v", obj["fileName"])
	}
	if obj["chunk"] != float64(2) {
		t.Errorf("unexpected chunk %v", obj["chunk"])
	}
	if obj["totalChunks"] != float64(3) {
		t.Errorf("unexpected totalChunks %v", obj["totalChunks"])
	}
	if obj["tag"] != "bio" {
		t.Errorf("extra key not flattened: %v", obj["tag"])
	}
}

func TestMetadataMarshal_OmitsZeroFields(t *testing.T) {
	data, err := json.Marshal(Metadata{Category: "education"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if len(obj) != 1 {
		t.Errorf("expected only category, got %v", obj)
	}
}

func TestMetadataMarshal_ExtraNeverOverridesKnownKeys(t *testing.T) {
	m := Metadata{
		Source: "/kb/real.md",
		Extra:  map[string]string{"source": "/kb/fake.md"},
	}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if obj["source"] != "/kb/real.md" {
		t.Errorf("extra key overrode the known field: %v", obj["source"])
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	in := Metadata{
		Source:      "/kb/projects.md",
		FileName:    "projects.md",
		Chunk:       1,
		TotalChunks: 4,
		Category:    "personal",
		Type:        "markdown",
		Extra:       map[string]string{"tag": "projects"},
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out Metadata
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if out.Source != in.Source || out.Chunk != in.Chunk || out.TotalChunks != in.TotalChunks {
		t.Errorf("round trip lost fields: %+v", out)
	}
	if out.Extra["tag"] != "projects" {
		t.Errorf("round trip lost extra keys: %+v", out.Extra)
	}
}

func TestMetadataWithChunk_CopiesExtra(t *testing.T) {
	base := Metadata{Category: "personal", Extra: map[string]string{"tag": "bio"}}

	tagged := base.WithChunk(Chunk{SourcePath: "/kb/bio.md", ChunkIndex: 2, TotalChunks: 5})
	tagged.Extra["tag"] = "changed"

	if base.Extra["tag"] != "bio" {
		t.Error("WithChunk must not alias the base Extra map")
	}
	if tagged.Source != "/kb/bio.md" || tagged.Chunk != 2 || tagged.TotalChunks != 5 {
		t.Errorf("unexpected chunk fields: %+v", tagged)
	}
	if tagged.Category != "personal" {
		t.Errorf("base fields must carry over, got %+v", tagged)
	}
}

func TestMessageValidTurn(t *testing.T) {
	testCases := []struct {
		name string
		msg  Message
		want bool
	}{
		{"user turn", Message{Role: RoleUser, Content: "hi"}, true},
		{"assistant turn", Message{Role: RoleAssistant, Content: "hello"}, true},
		{"system turn rejected", Message{Role: RoleSystem, Content: "instructions"}, false},
		{"empty content rejected", Message{Role: RoleUser, Content: ""}, false},
		{"unknown role rejected", Message{Role: "tool", Content: "output"}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.msg.ValidTurn(); got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("connection refused")

	storeErr := &StoreError{Op: StoreOpQuery, Err: cause}
	if !errors.Is(storeErr, cause) {
		t.Error("StoreError must unwrap to its cause")
	}

	retErr := &RetrievalError{Err: storeErr}
	var inner *StoreError
	if !errors.As(retErr, &inner) {
		t.Error("RetrievalError must expose the wrapped StoreError")
	}
	if inner.Op != StoreOpQuery {
		t.Errorf("unexpected op %q", inner.Op)
	}

	embErr := &EmbeddingError{Err: cause}
	if !errors.Is(embErr, cause) {
		t.Error("EmbeddingError must unwrap to its cause")
	}
}
