// Package config provides configuration structures for the application.
package config

import (
	"strings"
)

type Config struct {
	// Contracts are surface files or directories of the contract side.
	Contracts []string `json:"contracts" yaml:"contracts" mapstructure:"contracts"`
	// ImplDirs are searched for an implementation of every contract assembly.
	ImplDirs        []string `json:"implDirs" yaml:"implDirs" mapstructure:"implDirs"`
	ContractDepends []string `json:"contractDepends" yaml:"contractDepends" mapstructure:"contractDepends"`

	Baseline         []string `json:"baseline" yaml:"baseline" mapstructure:"baseline"`
	ValidateBaseline bool     `json:"validateBaseline" yaml:"validateBaseline" mapstructure:"validateBaseline"`
	RemapFile        string   `json:"remapFile" yaml:"remapFile" mapstructure:"remapFile"`
	// ExcludeAttributes are DocId files naming attribute types to ignore.
	ExcludeAttributes []string `json:"excludeAttributes" yaml:"excludeAttributes" mapstructure:"excludeAttributes"`
	SkipAttributes    bool     `json:"skipAttributes" yaml:"skipAttributes" mapstructure:"skipAttributes"`

	RespectInternals         bool `json:"respectInternals" yaml:"respectInternals" mapstructure:"respectInternals"`
	ExcludeNonBrowsable      bool `json:"excludeNonBrowsable" yaml:"excludeNonBrowsable" mapstructure:"excludeNonBrowsable"`
	ExcludeCompilerGenerated bool `json:"excludeCompilerGenerated" yaml:"excludeCompilerGenerated" mapstructure:"excludeCompilerGenerated"`
	EnforceOptionalRules     bool `json:"enforceOptionalRules" yaml:"enforceOptionalRules" mapstructure:"enforceOptionalRules"`
	MdilServicingMode        bool `json:"mdilServicingMode" yaml:"mdilServicingMode" mapstructure:"mdilServicingMode"`
	GroupByAssembly          bool `json:"groupByAssembly" yaml:"groupByAssembly" mapstructure:"groupByAssembly"`

	WarnOnMissingAssemblies      bool `json:"warnOnMissingAssemblies" yaml:"warnOnMissingAssemblies" mapstructure:"warnOnMissingAssemblies"`
	WarnOnIncorrectVersion       bool `json:"warnOnIncorrectVersion" yaml:"warnOnIncorrectVersion" mapstructure:"warnOnIncorrectVersion"`
	IgnoreDesignTimeFacades      bool `json:"ignoreDesignTimeFacades" yaml:"ignoreDesignTimeFacades" mapstructure:"ignoreDesignTimeFacades"`
	UnresolvedAsError            bool `json:"unresolvedAsError" yaml:"unresolvedAsError" mapstructure:"unresolvedAsError"`
	AllowDefaultInterfaceMethods bool `json:"allowDefaultInterfaceMethods" yaml:"allowDefaultInterfaceMethods" mapstructure:"allowDefaultInterfaceMethods"`

	LeftOperand         string `json:"leftOperand" yaml:"leftOperand" mapstructure:"leftOperand"`
	RightOperand        string `json:"rightOperand" yaml:"rightOperand" mapstructure:"rightOperand"`
	Out                 string `json:"out" yaml:"out" mapstructure:"out"`
	ReportPath          string `json:"reportPath" yaml:"reportPath" mapstructure:"reportPath"`
	ReportInformational bool   `json:"reportInformational" yaml:"reportInformational" mapstructure:"reportInformational"`

	Debug       bool   `json:"debug" yaml:"debug" mapstructure:"debug"`
	DisableANSI bool   `json:"disableANSI" yaml:"disableANSI" mapstructure:"disableANSI"`
	ConfigPath  string `json:"configPath" yaml:"configPath" mapstructure:"configPath"`
}

// SetContracts replaces the contract list with the comma separated paths
// given on the command line. Empty input keeps what the config file set.
func SetContracts(conf *Config, args []string) {
	paths := SplitPaths(args...)
	if len(paths) == 0 {
		return
	}
	conf.Contracts = paths
}

// SplitPaths flattens comma or semicolon separated path lists and drops
// empty entries.
func SplitPaths(values ...string) []string {
	var out []string
	for _, v := range values {
		for _, p := range strings.FieldsFunc(v, func(r rune) bool {
			return r == ',' || r == ';'
		}) {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// Normalize splits every list option that may have been given as a single
// comma separated flag value.
func Normalize(conf *Config) {
	conf.Contracts = SplitPaths(conf.Contracts...)
	conf.ImplDirs = SplitPaths(conf.ImplDirs...)
	conf.ContractDepends = SplitPaths(conf.ContractDepends...)
	conf.Baseline = SplitPaths(conf.Baseline...)
	conf.ExcludeAttributes = SplitPaths(conf.ExcludeAttributes...)
}
