package embedding

import (
	"testing"

	"github.com/dd0wney/cluso-kgraph/pkg/graph"
)

func TestExtractText(t *testing.T) {
	text := ExtractText("Service", map[string]any{
		"name":                  "auth-service",
		"description":           "handles login",
		"replicas":              3,
		"blank":                 "   ",
		graph.EmbeddingProperty: "not text",
	})

	want := "Entity Type: Service\ndescription: handles login\nname: auth-service"
	if text != want {
		t.Errorf("got %q, want %q", text, want)
	}
}

func TestExtractTextNoProperties(t *testing.T) {
	if got := ExtractText("Module", nil); got != "Entity Type: Module" {
		t.Errorf("got %q", got)
	}
}

func TestEmbeddableProperties(t *testing.T) {
	props := EmbeddableProperties(map[string]any{
		"name":                  "x",
		"count":                 2,
		"empty":                 "",
		graph.EmbeddingProperty: "y",
	})
	if len(props) != 1 || props["name"] != "x" {
		t.Errorf("unexpected embeddable set: %v", props)
	}
}
