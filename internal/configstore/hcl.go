package configstore

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// decodeHCL parses an HCL-syntax configuration file into a document. Each
// top-level attribute becomes a section; object constructors nest naturally:
//
//	scheduler = {
//	  job_name = "picker"
//	  nodes    = 2
//	}
//
// Expressions are evaluated with no variables in scope, so only literal
// values are accepted. Anything unparseable fails with a *FormatError.
func decodeHCL(path string, data []byte) (*Document, error) {
	file, diags := hclsyntax.ParseConfig(data, path, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, &FormatError{Path: path, Err: diags}
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, &FormatError{Path: path, Err: fmt.Errorf("unexpected body type %T", file.Body)}
	}
	if len(body.Blocks) > 0 {
		return nil, &FormatError{Path: path, Err: fmt.Errorf("blocks are not supported; use attribute syntax (section = { ... })")}
	}

	names := make([]string, 0, len(body.Attributes))
	for name := range body.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)

	attrs := make(map[string]cty.Value, len(names))
	for _, name := range names {
		v, diags := body.Attributes[name].Expr.Value(nil)
		if diags.HasErrors() {
			return nil, &FormatError{Path: path, Err: fmt.Errorf("attribute %q: %w", name, error(diags))}
		}
		attrs[name] = v
	}
	if len(attrs) == 0 {
		return nil, &FormatError{Path: path, Err: fmt.Errorf("document is empty")}
	}

	return NewDocument(cty.ObjectVal(attrs)), nil
}
