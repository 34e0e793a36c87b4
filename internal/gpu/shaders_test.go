package gpu

import (
	"strings"
	"testing"
)

func TestShaderSources(t *testing.T) {
	sources := ShaderSources()
	for _, name := range []string{"quad", "text", "triangle", "blit", "image"} {
		src, ok := sources[name]
		if !ok {
			t.Errorf("shader %q missing", name)
			continue
		}
		for _, want := range []string{"@vertex", "@fragment", "fn vs_main", "fn fs_main"} {
			if !strings.Contains(src, want) {
				t.Errorf("shader %q does not contain %q", name, want)
			}
		}
	}
}
