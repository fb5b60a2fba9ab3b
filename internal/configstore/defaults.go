package configstore

import "github.com/zclconf/go-cty/cty"

// SupportedTools is the fixed list of wrapped external packages, in the
// order the console presents them. Every name is pre-listed in the default
// document with an empty path and enabled=false.
var SupportedTools = []string{
	"topaz",
	"model_angelo",
	"relion",
	"cryosparc",
	"eman2",
	"cistem",
}

// RequiredSections are the top-level keys a well-formed document must carry.
// Import refuses any document missing one of them.
var RequiredSections = []string{
	"project_info",
	"paths",
	"dependencies",
	"scheduler",
	"settings",
	"api_keys",
}

// DefaultDocument builds the full default configuration. It is pure: calling
// it twice yields equal documents and it never consults the filesystem.
func DefaultDocument() *Document {
	deps := make(map[string]cty.Value, len(SupportedTools))
	for _, name := range SupportedTools {
		deps[name] = cty.ObjectVal(map[string]cty.Value{
			"path":    cty.StringVal(""),
			"version": cty.StringVal(""),
			"enabled": cty.False,
		})
	}

	root := cty.ObjectVal(map[string]cty.Value{
		"project_info": cty.ObjectVal(map[string]cty.Value{
			"name":        cty.StringVal("cryoDL"),
			"version":     cty.StringVal("0.1.0"),
			"description": cty.StringVal("operator console for cryo-EM tooling"),
		}),
		"paths": cty.ObjectVal(map[string]cty.Value{
			"project_root": cty.StringVal("."),
			"output_dir":   cty.StringVal("output"),
			"temp_dir":     cty.StringVal("temp"),
		}),
		"dependencies": cty.ObjectVal(deps),
		"scheduler": cty.ObjectVal(map[string]cty.Value{
			"job_name":      cty.StringVal("cryodl_job"),
			"nodes":         cty.NumberIntVal(1),
			"ntasks":        cty.NumberIntVal(1),
			"cpus_per_task": cty.NumberIntVal(4),
			"gres_gpu":      cty.NumberIntVal(1),
			"time":          cty.StringVal("12:00:00"),
			"mem":           cty.StringVal("32G"),
			"partition":     cty.StringVal("gpu"),
			"qos":           cty.StringVal(""),
			"account":       cty.StringVal(""),
			"output":        cty.StringVal("%x_%j.out"),
			"error":         cty.StringVal("%x_%j.err"),
		}),
		"settings": cty.ObjectVal(map[string]cty.Value{
			"max_threads":     cty.NumberIntVal(4),
			"memory_limit_gb": cty.NumberIntVal(16),
			"gpu_enabled":     cty.False,
			"debug_mode":      cty.False,
			"log_level":       cty.StringVal("info"),
		}),
		"api_keys": cty.ObjectVal(map[string]cty.Value{
			"cryosparc_license": cty.StringVal(""),
		}),
	})

	return NewDocument(root)
}
