// Package translator converts WebGL2 shader sources into desktop GLSL 4.10.
package translator

import (
	"context"
	"fmt"
	"sync"

	gst "github.com/richinsley/goshadertranslator"
)

var (
	once       sync.Once
	translator *gst.ShaderTranslator
	initErr    error
)

// GetTranslator returns the shared translator, creating it on first use.
func GetTranslator() (*gst.ShaderTranslator, error) {
	once.Do(func() {
		translator, initErr = gst.NewShaderTranslator(context.Background())
		if initErr != nil {
			initErr = fmt.Errorf("failed to create shader translator: %w", initErr)
		}
	})
	return translator, initErr
}

type Stage string

const (
	Vertex   Stage = "vertex"
	Fragment Stage = "fragment"
)

// Shader is a translated stage. Names maps source identifiers (uniforms,
// attributes) to the identifiers in Code.
type Shader struct {
	Code  string
	Names map[string]string
}

// Lookup returns the translated name of a source identifier.
func (s *Shader) Lookup(name string) (string, bool) {
	mapped, ok := s.Names[name]
	return mapped, ok
}

// Translate converts a WebGL2 (ESSL 3.00) stage to GLSL 4.10.
func Translate(source string, stage Stage) (*Shader, error) {
	t, err := GetTranslator()
	if err != nil {
		return nil, err
	}
	out, err := t.TranslateShader(source, string(stage), gst.ShaderSpecWebGL2, gst.OutputFormatGLSL410)
	if err != nil {
		return nil, fmt.Errorf("%s shader translation failed: %w", stage, err)
	}
	names := make(map[string]string, len(out.Variables))
	for name, v := range out.Variables {
		names[name] = v.MappedName
	}
	return &Shader{Code: out.Code, Names: names}, nil
}
