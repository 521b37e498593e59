package xform_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cshekharsharma/causalcrdt/causalgraph"
	"github.com/cshekharsharma/causalcrdt/oplog"
	"github.com/cshekharsharma/causalcrdt/placement"
	"github.com/cshekharsharma/causalcrdt/xform"
)

func TestIterXFOperationsFromEmptyRangeIsEmpty(t *testing.T) {
	log := oplog.New()
	log.PushInsert("a", nil, 0, "hi")
	f := log.Frontier()
	ops := xform.IterXFOperationsFrom(log, f, f, placement.Sequential{})
	if len(ops) != 0 {
		t.Fatalf("expected no ops between a frontier and itself, got %v", ops)
	}
}

func TestIterXFOperationsFromLinearHistory(t *testing.T) {
	log := oplog.New()
	root := causalgraph.Frontier{}
	lv0, end0 := log.PushInsert("a", root, 0, "Aa")
	_ = lv0
	afterA := causalgraph.Frontier{end0 - 1}
	_, end1 := log.PushDelete("a", afterA, 0, 2, true)
	afterDelete := causalgraph.Frontier{end1 - 1}

	ops := xform.IterXFOperationsFrom(log, root, afterDelete, placement.Sequential{})
	require.Len(t, ops, 2)
	require.Equal(t, oplog.Insert, ops[0].Op.Kind)
	require.Equal(t, "Aa", ops[0].Op.Content)
	require.Equal(t, oplog.Delete, ops[1].Op.Kind)
	require.Equal(t, 0, ops[1].Op.Pos)
	require.Equal(t, 2, ops[1].Op.Length)
}

func TestIterXFOperationsFromSkipsSharedHistory(t *testing.T) {
	log := oplog.New()
	root := causalgraph.Frontier{}
	_, end0 := log.PushInsert("a", root, 0, "x")
	afterFirst := causalgraph.Frontier{end0 - 1}
	_, end1 := log.PushInsert("a", afterFirst, 1, "y")
	afterSecond := causalgraph.Frontier{end1 - 1}

	ops := xform.IterXFOperationsFrom(log, afterFirst, afterSecond, placement.Sequential{})
	if len(ops) != 1 {
		t.Fatalf("expected only the new op, got %d: %+v", len(ops), ops)
	}
	if ops[0].Op.Content != "y" {
		t.Fatalf("expected the second insert's content, got %+v", ops[0].Op)
	}
}
