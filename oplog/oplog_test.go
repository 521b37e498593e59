package oplog_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cshekharsharma/causalcrdt/causalgraph"
	"github.com/cshekharsharma/causalcrdt/oplog"
)

func TestPushInsertAndOperationAt(t *testing.T) {
	log := oplog.New()
	lv, end := log.PushInsert("a", nil, 0, "hello")
	if lv != 0 || end != 5 {
		t.Fatalf("PushInsert returned (%d, %d), want (0, 5)", lv, end)
	}
	op, off, ok := log.OperationAt(2)
	require.True(t, ok, "OperationAt(2) not found")
	require.Equal(t, oplog.Insert, op.Kind)
	require.Equal(t, "hello", op.Content)
	require.Equal(t, 2, off)
}

func TestPushDeleteForward(t *testing.T) {
	log := oplog.New()
	_, end0 := log.PushInsert("a", nil, 0, "hello world")
	after := causalgraph.Frontier{end0 - 1}
	log.PushDelete("a", after, 0, 5, true)
	if log.NextLV() != 16 {
		t.Fatalf("NextLV() = %d, want 16", log.NextLV())
	}
}

func TestOpLogEqualAcrossPushOrder(t *testing.T) {
	build := func(interleaved bool) *oplog.OpLog {
		log := oplog.New()
		root := causalgraph.Frontier{}
		if interleaved {
			log.PushInsert("b", root, 0, "y")
			log.PushInsert("a", root, 0, "x")
		} else {
			log.PushInsert("a", root, 0, "x")
			log.PushInsert("b", root, 0, "y")
		}
		return log
	}
	l1 := build(false)
	l2 := build(true)
	if !l1.Equal(l2) {
		t.Fatalf("expected op-logs with the same edits in different push order to be equal")
	}
}

func TestOpLogNotEqualOnDifferentContent(t *testing.T) {
	l1 := oplog.New()
	l1.PushInsert("a", nil, 0, "hello")
	l2 := oplog.New()
	l2.PushInsert("a", nil, 0, "world")
	if l1.Equal(l2) {
		t.Fatalf("expected op-logs with different content to compare unequal")
	}
}

func TestEncodeDecodeSnapshotRoundTrip(t *testing.T) {
	original := oplog.New()
	root := causalgraph.Frontier{}
	_, end0 := original.PushInsert("a", root, 0, "Aa")
	afterA := causalgraph.Frontier{end0 - 1}
	_, end1 := original.PushInsert("b", root, 0, "b")
	afterB := causalgraph.Frontier{end1 - 1}
	merged := original.CG.VersionUnion(afterA, afterB)
	original.PushDelete("a", merged, 0, 1, true)

	bytes := original.Encode(oplog.EncodeOptions{Compress: true})

	restored := oplog.New()
	newFrontier, err := restored.DecodeAndMerge(bytes)
	require.NoError(t, err)
	require.True(t, newFrontier.Equal(original.Frontier()), "decoded frontier = %v, want %v", newFrontier, original.Frontier())
	require.True(t, original.Equal(restored), "decoded op-log is not equal to the original")
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	restored := oplog.New()
	if _, err := restored.DecodeAndMerge([]byte("not a valid wire stream")); err == nil {
		t.Fatalf("expected an error decoding garbage input")
	}
}

func TestDecodeAndMergePatchMode(t *testing.T) {
	sender := oplog.New()
	root := causalgraph.Frontier{}
	_, end0 := sender.PushInsert("a", root, 0, "hi")
	afterFirst := causalgraph.Frontier{end0 - 1}

	receiver := oplog.New()
	firstPatch := sender.EncodeFrom(oplog.EncodeOptions{}, causalgraph.Frontier{})
	if _, err := receiver.DecodeAndMerge(firstPatch); err != nil {
		t.Fatalf("first DecodeAndMerge: %v", err)
	}

	sender.PushInsert("a", afterFirst, 2, "!")
	secondPatch := sender.EncodeFrom(oplog.EncodeOptions{}, afterFirst)
	if _, err := receiver.DecodeAndMerge(secondPatch); err != nil {
		t.Fatalf("second DecodeAndMerge: %v", err)
	}

	if !sender.Equal(receiver) {
		t.Fatalf("receiver should match sender after both patches are applied")
	}
}
