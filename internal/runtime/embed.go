package runtime

import _ "embed"

// The two analysis libraries installed into the interpreter at bootstrap.
// Each assigns a single global (luadocs, analysis) when executed.

//go:embed luasrc/luadocs.lua
var luadocsSource string

//go:embed luasrc/analysis.lua
var analysisSource string

// packageSources maps LoadPackage names to embedded sources. luadocs must be
// installed before analysis, which reads the luadocs global.
var packageSources = map[string]string{
	PackageDocs:     luadocsSource,
	PackageAnalysis: analysisSource,
}

// Package names accepted by LuaSandbox.LoadPackage.
const (
	PackageDocs     = "luadocs"
	PackageAnalysis = "analysis"
)
