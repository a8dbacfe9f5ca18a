package ops

import "github.com/gogpu/recipe"

func rangeParam(name, label string, def, lo, hi, step float64) recipe.ParamDef {
	p := recipe.ParamDef{Name: name, Label: label, Type: recipe.ParamRange, Default: def, Min: recipe.Range(lo), Max: recipe.Range(hi)}
	if step > 0 {
		p.Step = recipe.Range(step)
	}
	return p
}

func numberParam(name, label string, def float64) recipe.ParamDef {
	return recipe.ParamDef{Name: name, Label: label, Type: recipe.ParamNumber, Default: def}
}

func textParam(name, label, def string) recipe.ParamDef {
	return recipe.ParamDef{Name: name, Label: label, Type: recipe.ParamText, Default: def}
}

func colorParam(name, label, def string) recipe.ParamDef {
	return recipe.ParamDef{Name: name, Label: label, Type: recipe.ParamColor, Default: def}
}

func boolParam(name, label string, def bool) recipe.ParamDef {
	return recipe.ParamDef{Name: name, Label: label, Type: recipe.ParamBoolean, Default: def}
}

func selectParam(name, label string, def any, options ...string) recipe.ParamDef {
	return recipe.ParamDef{Name: name, Label: label, Type: recipe.ParamSelect, Default: def, Options: options}
}
