package assess

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rcliao/eunoia-signals/internal/model"
)

// DefaultWorkers bounds AssessAll when no worker count is given.
const DefaultWorkers = 4

// Input is one conversation to assess.
type Input struct {
	Conversation model.Conversation
	Messages     []model.Message
}

// AssessAll assesses inputs on up to workers goroutines. Results keep the
// input order. The first error cancels the remaining work.
func (a *Assessor) AssessAll(ctx context.Context, inputs []Input, workers int) ([]*Assessment, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	out := make([]*Assessment, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := a.Assess(ctx, in.Conversation, in.Messages)
			if err != nil {
				return err
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
