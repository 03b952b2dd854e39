// Package cssbuild lints and compiles stylesheet sources through a
// lint-gated, mode-parameterized transform pipeline.
//
// A Task owns one asset pipeline (for example "app" styles). Linting runs
// over the whole source set before anything is decided: every file gets a
// LintResult, failures are aggregated, and a failed lint blocks compilation
// until the next lint pass.
//
// # Build modes
//
//	task.Nest(ctx, inv)     // outputStyle=nested, source maps when enabled
//	task.Compress(ctx, inv) // outputStyle=compressed, media queries packed, *.min.css
//
// # Invocations
//
// An Invocation carries the names the user requested for this run and the
// stack of names that led to the current call. Lint and compile failures are
// fatal when the user targeted the failing task (or a task depending on it)
// and advisory otherwise:
//
//	inv := cssbuild.NewInvocation("app:nest")
//	runner.Run(ctx, inv) // app:lint runs first as a dependency of app:nest
//
// # Collaborators
//
// The compiler, linter, postprocessors, writer, live-reload sync and
// notifications are interfaces (see Collaborators). Default implementations
// live under internal/ and are wired by cmd/cssbuild.
package cssbuild
