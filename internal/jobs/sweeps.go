// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/yomira-cms/internal/core/owner"
	"github.com/taibuivan/yomira-cms/internal/core/tag"
	"github.com/taibuivan/yomira-cms/internal/platform/metrics"
)

// Job names double as lock names.
const (
	PublishSweepName = "publish_sweep"
	TagReconcileName = "tag_reconcile"
)

// Promoter publishes scheduled content that has come due.
type Promoter interface {
	PromoteDue(ctx context.Context) (int, error)
}

// Reconciler repairs drifted tag usage counts.
type Reconciler interface {
	ReconcileAll(ctx context.Context) ([]tag.Correction, error)
}

/*
PublishSweep promotes due content of every given type. A failing type does
not stop the others; the first error is returned after all ran.
*/
func PublishSweep(interval time.Duration, promoters map[owner.Type]Promoter, logger *slog.Logger) Job {
	return Job{
		Name:     PublishSweepName,
		Interval: interval,
		Run: func(ctx context.Context) error {
			var first error
			for kind, promoter := range promoters {
				count, err := promoter.PromoteDue(ctx)
				if count > 0 {
					metrics.ContentPromoted.WithLabelValues(string(kind)).Add(float64(count))
				}
				if err != nil {
					logger.ErrorContext(ctx, "publish_sweep_failed",
						slog.String("type", string(kind)),
						slog.Any("error", err),
					)
					if first == nil {
						first = err
					}
				}
			}
			return first
		},
	}
}

// TagReconcile recomputes every tag usage count from the live associations.
func TagReconcile(interval time.Duration, reconciler Reconciler) Job {
	return Job{
		Name:     TagReconcileName,
		Interval: interval,
		Run: func(ctx context.Context) error {
			corrections, err := reconciler.ReconcileAll(ctx)
			metrics.TagCorrections.Add(float64(len(corrections)))
			return err
		},
	}
}
