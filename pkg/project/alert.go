package project

import (
	"context"

	"tlog.app/go/tlog"
)

// AlertSink receives the driver's progress notifications (spec.md §6's
// alertDecompiling/alertEndDecompile/alertDiscovered/
// alertDecompileDebugPoint), modeled as an interface so tests can run
// against a no-op implementation instead of real tracing output.
type AlertSink interface {
	AlertDecompiling(ctx context.Context, procName string)
	AlertEndDecompile(ctx context.Context, procName string, status Status)
	AlertDiscovered(ctx context.Context, addr uint64, kind string)
	AlertDecompileDebugPoint(ctx context.Context, procName, point string)
}

// TlogAlertSink reports through tlog spans, the way the teacher's stages
// would if they carried progress callbacks (no pack repo has a closer
// analogue; slowlang-slow's compiler.Compile threads tlog the same way,
// via tlog.SpawnFromContextAndWrap/tr.Printw).
type TlogAlertSink struct{}

func (TlogAlertSink) AlertDecompiling(ctx context.Context, procName string) {
	tlog.SpanFromContext(ctx).Printw("decompiling", "proc", procName)
}

func (TlogAlertSink) AlertEndDecompile(ctx context.Context, procName string, status Status) {
	tlog.SpanFromContext(ctx).Printw("end decompile", "proc", procName, "status", status.String())
}

func (TlogAlertSink) AlertDiscovered(ctx context.Context, addr uint64, kind string) {
	tlog.SpanFromContext(ctx).Printw("discovered", "addr", addr, "kind", kind)
}

func (TlogAlertSink) AlertDecompileDebugPoint(ctx context.Context, procName, point string) {
	tlog.SpanFromContext(ctx).Printw("debug point", "proc", procName, "point", point)
}

// NoopAlertSink discards every notification; the default for tests and
// for a Settings.VerboseOutput-disabled run.
type NoopAlertSink struct{}

func (NoopAlertSink) AlertDecompiling(context.Context, string)                {}
func (NoopAlertSink) AlertEndDecompile(context.Context, string, Status)       {}
func (NoopAlertSink) AlertDiscovered(context.Context, uint64, string)         {}
func (NoopAlertSink) AlertDecompileDebugPoint(context.Context, string, string) {}
