package progress

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Dashboard is the statistics view: overall progress, error statistics and
// recent results.
type Dashboard struct {
	Overview *Overview
	Errors   *ErrorStats
	History  []Result
}

// LoadDashboard fetches the three statistics reads concurrently. The first
// failure cancels the others.
func LoadDashboard(ctx context.Context, svc Service, historyLimit int) (*Dashboard, error) {
	var d Dashboard
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ov, err := svc.Progress(ctx)
		d.Overview = ov
		return err
	})
	g.Go(func() error {
		st, err := svc.ErrorStats(ctx)
		d.Errors = st
		return err
	})
	g.Go(func() error {
		h, err := svc.History(ctx, historyLimit)
		d.History = h
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}
