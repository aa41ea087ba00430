package reconciler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/eip-monitor/eipmon/pkg/apis/monitoring/v1alpha1"
	"github.com/eip-monitor/eipmon/pkg/svc/installer"
	"github.com/eip-monitor/eipmon/pkg/utils/notify"
)

// DefaultSettleDelay is the pause between removing one monitoring stack and
// installing its replacement during a switch. Terminating scrape targets get
// this long to drain before the replacement registers.
const DefaultSettleDelay = 10 * time.Second

// ErrUnsupportedAction is returned when Execute receives an action kind it
// does not know how to carry out.
var ErrUnsupportedAction = errors.New("unsupported reconciliation action")

// InstallerFactory yields the installer for a monitoring backend.
type InstallerFactory interface {
	ForType(monitoringType v1alpha1.MonitoringType) (installer.Installer, error)
}

// Reconciler drives the detected monitoring state toward the desired one.
// Plan decides, Execute delegates to the per-backend installers.
type Reconciler struct {
	factory     InstallerFactory
	settleDelay time.Duration
	out         io.Writer
}

// NewReconciler creates a Reconciler with the default settle delay.
func NewReconciler(factory InstallerFactory, out io.Writer) *Reconciler {
	return NewReconcilerWithSettleDelay(factory, DefaultSettleDelay, out)
}

// NewReconcilerWithSettleDelay creates a Reconciler with an explicit settle
// delay between the remove and install phases of a switch.
func NewReconcilerWithSettleDelay(
	factory InstallerFactory,
	settleDelay time.Duration,
	out io.Writer,
) *Reconciler {
	return &Reconciler{
		factory:     factory,
		settleDelay: settleDelay,
		out:         out,
	}
}

// Plan decides what to do about the detected monitoring state. It is pure:
// no cluster access, no side effects, and the same inputs always produce the
// same decision.
//
// First matching rule wins:
//  1. removal with nothing detected is a no-op
//  2. removal with one stack detected removes that stack
//  3. removal with both stacks detected requires an explicit type; without
//     one the plan fails rather than guess which stack the operator meant
//  4. install of an already-detected type re-applies it (coexist-install
//     when the other stack is present alongside)
//  5. install with only the other type detected switches stacks
//  6. install on a clean namespace installs fresh
func Plan(obs v1alpha1.Observation, desired v1alpha1.DesiredState) (v1alpha1.Action, error) {
	if desired.Remove {
		return planRemoval(obs, desired)
	}

	return planInstall(obs, desired)
}

func planRemoval(obs v1alpha1.Observation, desired v1alpha1.DesiredState) (v1alpha1.Action, error) {
	if obs.Empty() {
		return v1alpha1.NoOp("no monitoring detected, nothing to remove"), nil
	}

	if detected, unambiguous := obs.Primary(); unambiguous {
		return v1alpha1.Remove(
			detected,
			fmt.Sprintf("removing detected %s monitoring", detected),
		), nil
	}

	if desired.Type != v1alpha1.TypeNone {
		return v1alpha1.Remove(
			desired.Type,
			fmt.Sprintf(
				"removing %s monitoring, leaving %s untouched",
				desired.Type, otherType(desired.Type),
			),
		), nil
	}

	return v1alpha1.Action{}, v1alpha1.ErrAmbiguousPrimary
}

func planInstall(obs v1alpha1.Observation, desired v1alpha1.DesiredState) (v1alpha1.Action, error) {
	if !desired.Type.IsValid() {
		return v1alpha1.Action{}, fmt.Errorf(
			"%w: %q is not installable",
			v1alpha1.ErrInvalidMonitoringType, desired.Type,
		)
	}

	other := otherType(desired.Type)

	switch {
	case obs.Has(desired.Type) && obs.Has(other):
		return v1alpha1.CoexistInstall(
			desired.Type,
			fmt.Sprintf(
				"re-applying %s monitoring, %s stays installed alongside",
				desired.Type, other,
			),
		), nil
	case obs.Has(desired.Type):
		return v1alpha1.Install(
			desired.Type,
			fmt.Sprintf("%s monitoring already present, re-applying", desired.Type),
		), nil
	case obs.Has(other):
		return v1alpha1.Switch(
			other, desired.Type,
			fmt.Sprintf("replacing %s monitoring with %s", other, desired.Type),
		), nil
	default:
		return v1alpha1.Install(
			desired.Type,
			fmt.Sprintf("installing %s monitoring", desired.Type),
		), nil
	}
}

// otherType returns the opposite backend.
func otherType(monitoringType v1alpha1.MonitoringType) v1alpha1.MonitoringType {
	if monitoringType == v1alpha1.TypeCOO {
		return v1alpha1.TypeUWM
	}

	return v1alpha1.TypeCOO
}

// Reconcile plans and executes in one call, returning the action that was
// carried out so callers can report it.
func (r *Reconciler) Reconcile(
	ctx context.Context,
	obs v1alpha1.Observation,
	desired v1alpha1.DesiredState,
) (v1alpha1.Action, error) {
	action, err := Plan(obs, desired)
	if err != nil {
		return v1alpha1.Action{}, err
	}

	if err := r.Execute(ctx, action); err != nil {
		return action, err
	}

	return action, nil
}

// Execute carries out a planned action by delegating to the per-backend
// installers. A no-op action is always the nothing-to-remove case and is
// surfaced as a warning.
func (r *Reconciler) Execute(ctx context.Context, action v1alpha1.Action) error {
	switch action.Kind {
	case v1alpha1.ActionNoOp:
		notify.Warningf(r.out, "%s", action.Reason)

		return nil
	case v1alpha1.ActionRemove:
		notify.Activityf(r.out, "%s", action.Reason)

		return r.uninstall(ctx, action.Target)
	case v1alpha1.ActionInstall, v1alpha1.ActionCoexistInstall:
		notify.Activityf(r.out, "%s", action.Reason)

		return r.install(ctx, action.Target)
	case v1alpha1.ActionSwitch:
		return r.switchStacks(ctx, action)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedAction, action.Kind)
	}
}

// switchStacks removes the old backend, waits for its scrape targets to
// drain, then installs the new one. Strictly remove-then-install so both
// stacks never scrape the workload concurrently.
func (r *Reconciler) switchStacks(ctx context.Context, action v1alpha1.Action) error {
	notify.Activityf(r.out, "%s", action.Reason)

	if err := r.uninstall(ctx, action.From); err != nil {
		return err
	}

	notify.Activityf(
		r.out,
		"waiting %s for %s scrape targets to drain",
		r.settleDelay, action.From,
	)

	select {
	case <-ctx.Done():
		return fmt.Errorf("settle delay interrupted: %w", ctx.Err())
	case <-time.After(r.settleDelay):
	}

	return r.install(ctx, action.Target)
}

func (r *Reconciler) install(ctx context.Context, target v1alpha1.MonitoringType) error {
	inst, err := r.factory.ForType(target)
	if err != nil {
		return fmt.Errorf("no installer for %s: %w", target, err)
	}

	if err := inst.Install(ctx); err != nil {
		return fmt.Errorf("failed to install %s monitoring: %w", inst.Name(), err)
	}

	return nil
}

func (r *Reconciler) uninstall(ctx context.Context, target v1alpha1.MonitoringType) error {
	inst, err := r.factory.ForType(target)
	if err != nil {
		return fmt.Errorf("no installer for %s: %w", target, err)
	}

	if err := inst.Uninstall(ctx); err != nil {
		return fmt.Errorf("failed to remove %s monitoring: %w", inst.Name(), err)
	}

	return nil
}
