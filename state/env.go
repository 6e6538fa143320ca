// Package state defines shared program state.
package state

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"

	"pageflow/common"
	"pageflow/config"
)

type envKey struct{}

// LocalEnv keeps everything program needs in a single place.
type LocalEnv struct {
	Cfg *config.Config
	Rpt *config.Report
	Log *zap.Logger

	// used by render subcommand
	Format    common.OutputFmt
	NoDirs    bool
	Overwrite bool
	CodePage  encoding.Encoding

	Stats Stats

	start         time.Time
	restoreStdLog func()
}

// Stats counts documents processed during program run.
type Stats struct {
	Documents int
	Failed    int
	Pages     int
	// references to ids no page defined
	Dangling int
}

// Record accounts for successfully rendered document.
func (s *Stats) Record(pages, dangling int) {
	s.Documents++
	s.Pages += pages
	s.Dangling += dangling
}

func (s *Stats) Fail() {
	s.Failed++
}

// Fields presents counters for structured logging.
func (s Stats) Fields() []zap.Field {
	return []zap.Field{
		zap.Int("documents", s.Documents),
		zap.Int("failed", s.Failed),
		zap.Int("pages", s.Pages),
		zap.Int("dangling", s.Dangling),
	}
}

// EnvFromContext returns environment installed by ContextWithEnv and panics
// when there is none.
func EnvFromContext(ctx context.Context) *LocalEnv {
	env, ok := ctx.Value(envKey{}).(*LocalEnv)
	if !ok {
		panic("local environment is missing from context")
	}
	return env
}

func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, newLocalEnv())
}

func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}

// RedirectStdLog sends output of standard library logger to Log until
// RestoreStdLog is called.
func (e *LocalEnv) RedirectStdLog() {
	if e.Log != nil {
		e.restoreStdLog = zap.RedirectStdLog(e.Log.Named("stdlog"))
	}
}

func (e *LocalEnv) RestoreStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.restoreStdLog != nil {
		e.restoreStdLog()
		e.restoreStdLog = nil
	}
}
