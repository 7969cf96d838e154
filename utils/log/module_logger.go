package log

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Module names. Sub loggers use dotted names, e.g. "compat.rules".
const (
	ModuleCompat   = "compat"
	ModuleRules    = "compat.rules"
	ModuleBaseline = "compat.baseline"
	ModuleSurface  = "surface"
	ModuleReport   = "report"
	ModuleConfig   = "config"
)

// ModuleLoggerFactory hands out named loggers whose debug output can be
// switched on per module.
type ModuleLoggerFactory struct {
	baseLogger  *zap.Logger
	globalDebug bool
	moduleDebug map[string]bool
}

func NewModuleLoggerFactory(baseLogger *zap.Logger, globalDebug bool, moduleDebug map[string]bool) *ModuleLoggerFactory {
	if moduleDebug == nil {
		moduleDebug = make(map[string]bool)
	}
	return &ModuleLoggerFactory{
		baseLogger:  baseLogger,
		globalDebug: globalDebug,
		moduleDebug: moduleDebug,
	}
}

// GetLogger returns the logger of a module. Debug entries are dropped unless
// debug is on globally or for the module or one of its parents.
func (f *ModuleLoggerFactory) GetLogger(moduleName string) *zap.Logger {
	named := f.baseLogger
	for _, part := range strings.Split(moduleName, ".") {
		named = named.Named(part)
	}
	if f.IsDebugEnabled(moduleName) {
		return named
	}
	return named.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return &levelFilterCore{Core: core, minLevel: zapcore.InfoLevel}
	}))
}

func (f *ModuleLoggerFactory) IsDebugEnabled(moduleName string) bool {
	if f.globalDebug {
		return true
	}
	for name := moduleName; name != ""; {
		if f.moduleDebug[name] {
			return true
		}
		i := strings.LastIndexByte(name, '.')
		if i < 0 {
			break
		}
		name = name[:i]
	}
	return false
}

// levelFilterCore drops entries below minLevel.
type levelFilterCore struct {
	zapcore.Core
	minLevel zapcore.Level
}

func (c *levelFilterCore) Enabled(level zapcore.Level) bool {
	return level >= c.minLevel && c.Core.Enabled(level)
}

func (c *levelFilterCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return c.Core.Check(entry, ce)
	}
	return ce
}

func (c *levelFilterCore) With(fields []zapcore.Field) zapcore.Core {
	return &levelFilterCore{
		Core:     c.Core.With(fields),
		minLevel: c.minLevel,
	}
}
