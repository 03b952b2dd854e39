package cssbuild

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/go-logr/logr"
)

// dependencies lists the functions that run before a task function.
var dependencies = map[string][]string{
	FuncLint:     nil,
	FuncNest:     {FuncLint},
	FuncCompress: {FuncLint},
	FuncBuild:    {FuncNest, FuncCompress},
}

// Runner resolves requested invocations and runs them with their
// dependencies. Every invocation runs at most once per Run, and invocations
// run one at a time.
type Runner struct {
	tasks map[string]*Task
	names []string
	log   logr.Logger
}

// NewRunner registers tasks by name.
func NewRunner(log logr.Logger, tasks ...*Task) (*Runner, error) {
	r := &Runner{tasks: make(map[string]*Task, len(tasks)), log: log}
	for _, task := range tasks {
		if _, exists := r.tasks[task.Name()]; exists {
			return nil, fmt.Errorf("duplicate task %q", task.Name())
		}
		r.tasks[task.Name()] = task
		r.names = append(r.names, task.Name())
	}
	return r, nil
}

// Tasks returns the registered task names in registration order.
func (r *Runner) Tasks() []string {
	return slices.Clone(r.names)
}

// Task returns a registered task.
func (r *Runner) Task(name string) (*Task, bool) {
	t, ok := r.tasks[name]
	return t, ok
}

// Resolve expands a requested name into invocation labels:
//
//	"app:nest" -> [app:nest]
//	"app"      -> [app:build]
//	"nest"     -> [app:nest, theme:nest]
func (r *Runner) Resolve(name string) ([]string, error) {
	if task, fn, ok := strings.Cut(name, ":"); ok {
		if _, exists := r.tasks[task]; !exists {
			return nil, fmt.Errorf("unknown task %q", task)
		}
		if _, known := dependencies[fn]; !known {
			return nil, fmt.Errorf("unknown function %q for task %s", fn, task)
		}
		return []string{name}, nil
	}

	if _, exists := r.tasks[name]; exists {
		return []string{Label(name, FuncBuild)}, nil
	}
	if _, known := dependencies[name]; known {
		labels := make([]string, 0, len(r.names))
		for _, task := range r.names {
			labels = append(labels, Label(task, name))
		}
		return labels, nil
	}
	return nil, fmt.Errorf("unknown task or function %q", name)
}

// Run resolves the requested names and runs them as explicit invocations.
// With no names, every task is built as an incidental invocation.
func (r *Runner) Run(ctx context.Context, requested ...string) error {
	if len(requested) == 0 {
		labels := make([]string, 0, len(r.names))
		for _, task := range r.names {
			labels = append(labels, Label(task, FuncBuild))
		}
		return r.Invoke(ctx, NewInvocation(), labels...)
	}

	var labels []string
	for _, name := range requested {
		resolved, err := r.Resolve(name)
		if err != nil {
			return err
		}
		labels = append(labels, resolved...)
	}
	return r.Invoke(ctx, NewInvocation(labels...), labels...)
}

// Invoke runs labels under inv. The first fatal error aborts the run.
func (r *Runner) Invoke(ctx context.Context, inv Invocation, labels ...string) error {
	done := make(map[string]bool)
	for _, label := range labels {
		if err := r.invoke(ctx, label, inv, done); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) invoke(ctx context.Context, label string, inv Invocation, done map[string]bool) error {
	if done[label] {
		return nil
	}
	done[label] = true

	name, fn, _ := strings.Cut(label, ":")
	task, ok := r.tasks[name]
	if !ok {
		return fmt.Errorf("unknown task %q", name)
	}
	deps, ok := dependencies[fn]
	if !ok {
		return fmt.Errorf("unknown function %q for task %s", fn, name)
	}

	for _, dep := range deps {
		if err := r.invoke(ctx, Label(name, dep), inv.Call(label), done); err != nil {
			return err
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	r.log.V(1).Info("running", "invocation", label)

	var err error
	switch fn {
	case FuncLint:
		err = task.Lint(ctx, inv)
	case FuncNest:
		_, err = task.Nest(ctx, inv)
	case FuncCompress:
		_, err = task.Compress(ctx, inv)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	return nil
}
