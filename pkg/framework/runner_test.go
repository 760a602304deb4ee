package framework

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func blockUntilDone(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestRunnerStop(t *testing.T) {
	r := NewRunner().Go(RunFunc(blockUntilDone), NamedRun("named", RunFunc(blockUntilDone)))
	r.Stop()
	require.NoError(t, r.Wait())
	require.Len(t, r.Runners, 2)
}

func TestRunnerFirstExitCancelsOthers(t *testing.T) {
	failure := errors.New("broker gone")
	r := NewRunner().Go(
		RunFunc(blockUntilDone),
		RunFunc(func(context.Context) error { return failure }),
	)
	err := r.Wait()
	var agg *AggregatedError
	require.ErrorAs(t, err, &agg)
	require.Equal(t, []error{failure}, agg.Errors)
	require.ErrorIs(t, err, failure)
	require.Equal(t, "broker gone", err.Error())
}

func TestRunnerParentContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunnerWith(ctx).Go(RunFunc(blockUntilDone))
	cancel()
	require.NoError(t, r.Wait())
}

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil, nil).Aggregate())
	errs.Add(errors.New("a"), nil, errors.New("b"))
	require.Len(t, errs.Errors, 2)
	require.Equal(t, "Multiple errors:\na\nb", errs.Aggregate().Error())
}
