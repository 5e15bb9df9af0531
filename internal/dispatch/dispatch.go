// SPDX-License-Identifier: MPL-2.0

package dispatch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/envrun/envrun/internal/command"
	"github.com/envrun/envrun/internal/envspec"
	"github.com/envrun/envrun/internal/registry"
	"github.com/envrun/envrun/internal/runtime"
	"github.com/envrun/envrun/pkg/descriptor"
	"github.com/envrun/envrun/pkg/types"
)

// Variables set for every launched command.
const (
	EnvRunID   = "ENVRUN_RUN_ID"
	EnvEnvName = "ENVRUN_ENV_NAME"
)

// Environment outcome labels.
const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusResolve Status = "resolve-error"
	StatusBlocked Status = "blocked"
)

type (
	// Status labels how an environment ended.
	Status string

	// Options configures one run.
	Options struct {
		// Names selects environments; entries may be comma separated and use
		// brace factors. Empty selects the registry's defaults.
		Names []string
		// PosArgs replace {posargs} placeholders.
		PosArgs []string
		// SkipInstall skips the install step of every environment.
		SkipInstall bool
		// Resolve carries resolution inputs.
		Resolve envspec.Options
		// Environ is the caller environment that pass_env draws from.
		Environ []string
		// Stdout, Stderr and Stdin are the streams handed to commands.
		Stdout io.Writer
		Stderr io.Writer
		Stdin  io.Reader
	}

	// EnvResult is the outcome of one environment.
	EnvResult struct {
		Name     string
		Status   Status
		ExitCode types.ExitCode
		Err      error
		Commands int
		Duration time.Duration
	}

	// Report is the outcome of a run.
	Report struct {
		RunID    string
		Envs     []EnvResult
		ExitCode types.ExitCode
	}

	// Dispatcher runs environments from a registry with a launcher.
	Dispatcher struct {
		reg      *registry.Registry
		launcher runtime.Launcher
		logger   *slog.Logger
	}

	envRun struct {
		d      *Dispatcher
		spec   *envspec.EnvironmentSpec
		opts   *Options
		env    []string
		result *EnvResult
	}
)

// New creates a Dispatcher. A nil logger discards log output.
func New(reg *registry.Registry, launcher runtime.Launcher, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Dispatcher{reg: reg, launcher: launcher, logger: logger}
}

// Select turns requested names into the ordered list of environments to run.
// Explicit names must exist; with none requested, the registry's defaults
// are used, or every environment when there are no defaults.
func (d *Dispatcher) Select(requested []string) ([]string, error) {
	var names []string
	for _, entry := range requested {
		for _, item := range descriptor.SplitList(entry) {
			names = append(names, descriptor.ExpandFactors(item)...)
		}
	}

	if len(names) == 0 {
		names = d.reg.DefaultNames()
	}
	if len(names) == 0 {
		names = d.reg.Names()
	}
	if len(names) == 0 {
		return nil, ErrNoEnvironments
	}

	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, err := d.reg.Get(n); err != nil {
			return nil, err
		}
		if !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out, nil
}

// Run selects environments and runs them in order. It returns an error only
// when the selection itself fails; per-environment failures are recorded in
// the report.
func (d *Dispatcher) Run(ctx context.Context, opts Options) (*Report, error) {
	names, err := d.Select(opts.Names)
	if err != nil {
		return nil, err
	}

	report := &Report{RunID: uuid.NewString()}
	d.logger.Debug("starting run", "run_id", report.RunID, "envs", names)

	codes := make([]types.ExitCode, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			report.Envs = append(report.Envs, EnvResult{
				Name: name, Status: StatusFailed, ExitCode: types.ExitInterrupted, Err: err,
			})
			codes = append(codes, types.ExitInterrupted)
			continue
		}
		res := d.runEnv(ctx, name, report.RunID, &opts)
		report.Envs = append(report.Envs, res)
		codes = append(codes, res.ExitCode)
	}
	report.ExitCode = types.FirstFailure(codes...)
	return report, nil
}

func (d *Dispatcher) runEnv(ctx context.Context, name, runID string, opts *Options) EnvResult {
	start := time.Now()
	result := EnvResult{Name: name, Status: StatusOK}
	log := d.logger.With("env", name)

	spec, err := envspec.Resolve(d.reg, name, opts.Resolve)
	if err != nil {
		log.Error("cannot resolve environment", "error", err)
		result.Status, result.ExitCode, result.Err = StatusResolve, types.ExitFailure, err
		result.Duration = time.Since(start)
		return result
	}
	for _, diag := range spec.Diagnostics() {
		log.Warn(diag)
	}

	r := &envRun{
		d:      d,
		spec:   spec,
		opts:   opts,
		env:    append(spec.Environ(opts.Environ), EnvRunID+"="+runID, EnvEnvName+"="+name),
		result: &result,
	}
	r.run(ctx, log)
	result.Duration = time.Since(start)
	return result
}

func (r *envRun) run(ctx context.Context, log *slog.Logger) {
	cmds, err := r.spec.Commands(r.opts.PosArgs)
	if err != nil {
		log.Error("cannot assemble commands", "error", err)
		r.fail(StatusResolve, types.ExitFailure, err)
		return
	}
	for _, cmd := range cmds {
		if !r.spec.Allows(cmd.Executable()) {
			err := &NotAllowedError{Env: r.spec.Name(), Executable: cmd.Executable()}
			log.Error("command blocked", "error", err)
			r.fail(StatusBlocked, types.ExitFailure, err)
			return
		}
	}

	var install []command.Command
	if !r.opts.SkipInstall {
		install, err = r.spec.InstallCommands()
		if err != nil {
			log.Error("cannot assemble install commands", "error", err)
			r.fail(StatusResolve, types.ExitFailure, err)
			return
		}
	}

	for _, cmd := range install {
		if !r.launch(ctx, log, cmd, r.spec.RootDir(), false) {
			return
		}
	}
	for _, cmd := range cmds {
		if !r.launch(ctx, log, cmd, r.spec.ChangeDir(), r.spec.IgnoreErrors()) {
			return
		}
	}
}

// launch runs cmd and reports whether the environment should continue.
func (r *envRun) launch(ctx context.Context, log *slog.Logger, cmd command.Command, dir string, keepGoing bool) bool {
	log.Info("run", "cmd", cmd.String(), "dir", dir)
	res := r.d.launcher.Launch(ctx, runtime.Request{
		Argv:   cmd.Argv,
		Dir:    dir,
		Env:    r.env,
		Stdout: r.opts.Stdout,
		Stderr: r.opts.Stderr,
		Stdin:  r.opts.Stdin,
	})
	r.result.Commands++
	if !res.Failed() {
		return true
	}

	code := res.ExitCode
	if code.IsSuccess() {
		code = types.ExitFailure
	}
	if cmd.IgnoreExitCode {
		log.Warn("ignoring failed command", "cmd", cmd.String(), "exit_code", code)
		return true
	}

	err := &CommandFailedError{Env: r.spec.Name(), Command: cmd.String(), ExitCode: code, Err: res.Error}
	log.Error("command failed", "cmd", cmd.String(), "exit_code", code, "error", res.Error)
	if r.result.ExitCode.IsSuccess() {
		r.fail(StatusFailed, code, err)
	}
	return keepGoing && !errors.Is(ctx.Err(), context.Canceled)
}

func (r *envRun) fail(status Status, code types.ExitCode, err error) {
	r.result.Status = status
	r.result.ExitCode = code
	r.result.Err = err
}
