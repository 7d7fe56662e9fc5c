package scene

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTitleCase(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"cornell-empty", "Cornell Empty"},
		{"dragon_gold", "Dragon Gold"},
		{"my-custom-scene", "My Custom Scene"},
		{"simple", "Simple"},
		{"UPPER-case", "Upper Case"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			result := titleCase(tc.input)
			if result != tc.expected {
				t.Errorf("titleCase(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

func writeSceneFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestParseSceneMetadata(t *testing.T) {
	dir := t.TempDir()

	testCases := []struct {
		file     string
		content  string
		expected SceneInfo
	}{
		{
			file:    "complete_metadata.json",
			content: `{"name": "Glass Row", "description": "Three glass spheres", "group": "Glass"}`,
			expected: SceneInfo{
				ID:          "json:complete_metadata",
				Name:        "Glass Row",
				Description: "Three glass spheres",
				Group:       "Glass",
				Type:        "json",
			},
		},
		{
			file:    "no_metadata.json",
			content: `{"spheres": []}`,
			expected: SceneInfo{
				ID:    "json:no_metadata",
				Name:  "No Metadata", // From filename
				Group: "Scene Files",
				Type:  "json",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.file, func(t *testing.T) {
			path := writeSceneFile(t, dir, tc.file, tc.content)
			tc.expected.FilePath = path

			result, err := ParseSceneMetadata(path)
			if err != nil {
				t.Fatalf("ParseSceneMetadata() error: %v", err)
			}
			if result != tc.expected {
				t.Errorf("ParseSceneMetadata() = %+v, want %+v", result, tc.expected)
			}
		})
	}

	broken := writeSceneFile(t, dir, "broken.json", `{"name": `)
	if _, err := ParseSceneMetadata(broken); err == nil {
		t.Error("Expected an error for malformed JSON")
	}
}

func TestListJSONScenes(t *testing.T) {
	scenes, err := ListJSONScenes(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Errorf("ListJSONScenes() error: %v", err)
	}
	if scenes == nil || len(scenes) != 0 {
		t.Errorf("Missing directory should give an empty list, got %v", scenes)
	}

	dir := t.TempDir()
	writeSceneFile(t, dir, "b.json", `{"name": "Beta"}`)
	writeSceneFile(t, dir, "a.json", `{"name": "Alpha"}`)
	writeSceneFile(t, dir, "bad.json", `not json`)
	writeSceneFile(t, dir, "notes.txt", `ignored`)

	scenes, err = ListJSONScenes(dir)
	if err != nil {
		t.Fatalf("ListJSONScenes() error: %v", err)
	}
	if len(scenes) != 2 || scenes[0].Name != "Alpha" || scenes[1].Name != "Beta" {
		t.Errorf("Expected Alpha and Beta sorted by name, got %+v", scenes)
	}
}

func TestListAllScenes(t *testing.T) {
	dir := t.TempDir()
	writeSceneFile(t, dir, "custom.json", `{"name": "Custom", "group": "Mine"}`)

	response, err := ListAllScenes(dir)
	if err != nil {
		t.Fatalf("ListAllScenes() error: %v", err)
	}
	if len(response.Groups) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(response.Groups))
	}

	builtIn := response.Groups[0]
	if builtIn.Name != "Built-in Scenes" {
		t.Errorf("Built-in scenes should come first, got %q", builtIn.Name)
	}
	if len(builtIn.Scenes) != len(Presets) {
		t.Errorf("Expected %d built-in scenes, got %d", len(Presets), len(builtIn.Scenes))
	}
	for i, info := range builtIn.Scenes {
		if info.ID != Presets[i].ID || info.Type != "builtin" {
			t.Errorf("Unexpected built-in scene %+v", info)
		}
	}

	if response.Groups[1].Name != "Mine" || response.Groups[1].Scenes[0].ID != "json:custom" {
		t.Errorf("Unexpected file group %+v", response.Groups[1])
	}
}

func TestLoadByID(t *testing.T) {
	dir := t.TempDir()
	writeSceneFile(t, dir, "one.json", `{
		"name": "one",
		"camera": {"lookFrom": [0, 0, 1], "lookAt": [0, 0, 0]},
		"materials": {"white": {"type": "lambertian", "albedo": [1, 1, 1]}},
		"spheres": [{"center": [0, 0, 0], "radius": 0.5, "material": "white"}]
	}`)

	s, err := Load("json:one", dir)
	if err != nil {
		t.Fatalf("Load(json:one) error: %v", err)
	}
	if s.Name != "one" || len(s.Shapes) != 1 {
		t.Errorf("Unexpected scene %+v", s)
	}

	if _, err := Load("spheres", dir); err != nil {
		t.Errorf("Load(spheres) error: %v", err)
	}
	for _, id := range []string{"json:../one", "json:", "json:missing", "nope"} {
		if _, err := Load(id, dir); err == nil {
			t.Errorf("Load(%q) should fail", id)
		}
	}
}
