package k8s

import (
	"context"
	"fmt"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	ctrlclient "sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
)

//nolint:gochecknoglobals // package-level retry tuning, overridable in tests
var (
	upsertTimeout      = 2 * time.Minute
	upsertPollInterval = 2 * time.Second
)

// Upsert creates obj if it does not exist, or updates the live copy through
// mutate. Transient API errors (a CRD registered but not yet servable shortly
// after operator install) are retried until the timeout elapses; any other
// error is returned immediately.
//
// The mutate callback must set every desired field on obj: after the internal
// Get, obj holds the live cluster state.
func Upsert(
	ctx context.Context,
	crClient ctrlclient.Client,
	obj ctrlclient.Object,
	mutate func() error,
) error {
	waitCtx, cancel := context.WithTimeout(ctx, upsertTimeout)
	defer cancel()

	ticker := time.NewTicker(upsertPollInterval)
	defer ticker.Stop()

	var lastErr error

	for {
		_, err := controllerutil.CreateOrUpdate(waitCtx, crClient, obj, mutate)
		if err == nil {
			return nil
		}

		if !IsTransientAPIError(err) {
			return fmt.Errorf(
				"failed to upsert %T %s/%s: %w",
				obj,
				obj.GetNamespace(),
				obj.GetName(),
				err,
			)
		}

		lastErr = err

		select {
		case <-waitCtx.Done():
			if lastErr == nil {
				lastErr = waitCtx.Err()
			}

			return fmt.Errorf(
				"timed out upserting %T %s/%s: %w",
				obj,
				obj.GetNamespace(),
				obj.GetName(),
				lastErr,
			)
		case <-ticker.C:
			// Retry
		}
	}
}

// Delete removes obj from the cluster. An object that is already gone, or
// whose CRD is not installed at all, counts as success so removal flows stay
// idempotent.
func Delete(ctx context.Context, crClient ctrlclient.Client, obj ctrlclient.Object) error {
	err := crClient.Delete(ctx, obj)
	if err == nil || apierrors.IsNotFound(err) || IsMissingKind(err) {
		return nil
	}

	return fmt.Errorf("failed to delete %T %s/%s: %w", obj, obj.GetNamespace(), obj.GetName(), err)
}

// DeleteAllByLabels removes every object of obj's kind in the namespace that
// matches the given labels. A missing CRD means there is nothing to delete.
func DeleteAllByLabels(
	ctx context.Context,
	crClient ctrlclient.Client,
	obj ctrlclient.Object,
	namespace string,
	labels map[string]string,
) error {
	err := crClient.DeleteAllOf(
		ctx,
		obj,
		ctrlclient.InNamespace(namespace),
		ctrlclient.MatchingLabels(labels),
	)
	if err == nil || apierrors.IsNotFound(err) || IsMissingKind(err) {
		return nil
	}

	return fmt.Errorf("failed to delete %T collection in %s: %w", obj, namespace, err)
}
