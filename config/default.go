package config

import (
	yaml3 "gopkg.in/yaml.v3"
	"sigs.k8s.io/kustomize/kyaml/yaml"
	"sigs.k8s.io/kustomize/kyaml/yaml/merge2"
	"sigs.k8s.io/kustomize/kyaml/yaml/walk"
)

// defaultConfig is a variable so that embedding tools can replace the
// defaults before New is called.
var defaultConfig = `
contracts: []
implDirs: []
contractDepends: []
baseline: []
validateBaseline: false
remapFile: ""
excludeAttributes: []
skipAttributes: false
respectInternals: false
excludeNonBrowsable: false
excludeCompilerGenerated: false
enforceOptionalRules: false
mdilServicingMode: false
groupByAssembly: true
warnOnMissingAssemblies: false
warnOnIncorrectVersion: false
ignoreDesignTimeFacades: false
unresolvedAsError: false
allowDefaultInterfaceMethods: false
leftOperand: "contract"
rightOperand: "implementation"
out: ""
reportPath: ""
reportInformational: true
debug: false
disableANSI: false
`

func GetDefaultConfig() string {
	return defaultConfig
}

func SetDefaultConfig(cfgStr string) {
	defaultConfig = cfgStr
}

// InternalConfig holds values that are not meant to be set by users.
const InternalConfig = `
configPath: "."
`

func New() *Config {
	mergedConfig, err := Merge(defaultConfig, InternalConfig)
	if err != nil {
		panic(err)
	}
	config := &Config{}
	err = yaml3.Unmarshal([]byte(mergedConfig), config)
	if err != nil {
		panic(err)
	}
	return config
}

func Merge(srcStr, destStr string) (string, error) {
	return mergeStrings(srcStr, destStr, false, yaml.MergeOptions{})
}

// Reference: https://github.com/kubernetes-sigs/kustomize/blob/537c4fa5c2bf3292b273876f50c62ce1c81714d7/kyaml/yaml/merge2/merge2.go#L24
// VisitKeysAsScalars is set to true to enable merging comments.
// inferAssociativeLists is set to false to disable merging associative lists.
func mergeStrings(srcStr, destStr string, infer bool, mergeOptions yaml.MergeOptions) (string, error) {
	src, err := yaml.Parse(srcStr)
	if err != nil {
		return "", err
	}

	dest, err := yaml.Parse(destStr)
	if err != nil {
		return "", err
	}

	result, err := walk.Walker{
		Sources:               []*yaml.RNode{dest, src},
		Visitor:               merge2.Merger{},
		InferAssociativeLists: infer,
		VisitKeysAsScalars:    true,
		MergeOptions:          mergeOptions,
	}.Walk()
	if err != nil {
		return "", err
	}

	return result.String()
}
