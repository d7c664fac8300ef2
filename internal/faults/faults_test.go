package faults

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"transient consumer", TransientConsumer(errors.New("boom")), KindTransientConsumerFault},
		{"malformed", Malformed(errors.New("boom")), KindMalformedEvent},
		{"unclassified", Unclassified(errors.New("boom")), KindUnclassifiedTransaction},
		{"transform", Transform(errors.New("boom")), KindTransformFault},
		{"state lookup miss", StateLookupMiss(errors.New("boom")), KindStateLookupMiss},
		{"target transaction", TargetTransaction(errors.New("boom"), true), KindTargetTransactionFault},
		{"checkpoint", Checkpoint(errors.New("boom")), KindCheckpointFault},
		{"plain error", errors.New("boom"), KindUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, KindOf(tc.err))
		})
	}
}

func TestTransient(t *testing.T) {
	require.True(t, TransientConsumer(errors.New("x")).Transient())
	require.False(t, Malformed(errors.New("x")).Transient())

	deadlock := TargetTransaction(errors.New("deadlock"), true)
	require.True(t, deadlock.Transient())

	constraint := TargetTransaction(errors.New("unique violation"), false)
	require.False(t, constraint.Transient())
}

func TestContext(t *testing.T) {
	f := Transform(errors.New("bad payload")).With("xid", int64(42)).With("table", "records_metadata")
	require.Equal(t, int64(42), f.Context()["xid"])
	require.Equal(t, "records_metadata", f.Context()["table"])
}

func TestStateLookupMissIsDistinctKind(t *testing.T) {
	f := StateLookupMiss(errors.New("missing bucket"))
	require.Equal(t, KindStateLookupMiss, f.Kind())
	require.NotEqual(t, KindTransformFault, f.Kind())
}
