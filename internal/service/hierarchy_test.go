package service

import (
	"reflect"
	"testing"

	"taskhub/internal/model"
)

func flatTask(id, userID string) model.Task {
	return model.Task{ID: id, UserID: userID, Description: "task " + id}
}

func edge(parentID, childID string) model.TaskRelationship {
	return model.TaskRelationship{ParentTaskID: parentID, ChildTaskID: childID}
}

func TestAssembleNodesLinksBothDirections(t *testing.T) {
	tasks := []model.Task{flatTask("a", "u1"), flatTask("b", "u1"), flatTask("c", "u1")}
	rels := []model.TaskRelationship{edge("a", "b"), edge("a", "c")}

	nodes := assembleNodes(tasks, rels)

	if nodes["a"].ParentID != nil {
		t.Errorf("root parent = %v, want nil", *nodes["a"].ParentID)
	}
	if got := nodes["a"].Children; !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Errorf("root children = %v, want [b c]", got)
	}
	for _, id := range []string{"b", "c"} {
		if nodes[id].ParentID == nil || *nodes[id].ParentID != "a" {
			t.Errorf("task %s parent = %v, want a", id, nodes[id].ParentID)
		}
		if len(nodes[id].Children) != 0 {
			t.Errorf("task %s children = %v, want empty", id, nodes[id].Children)
		}
	}
}

func TestAssembleNodesDropsEdgesWithMissingEndpoints(t *testing.T) {
	tasks := []model.Task{flatTask("a", "u1"), flatTask("b", "u1")}
	rels := []model.TaskRelationship{
		edge("a", "b"),
		edge("a", "ghost"),  // child outside the record set
		edge("ghost2", "a"), // parent outside the record set
	}

	nodes := assembleNodes(tasks, rels)

	if got := nodes["a"].Children; !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("children = %v, want [b]", got)
	}
	if nodes["a"].ParentID != nil {
		t.Errorf("parent = %v, want nil (edge from missing parent must be dropped)", *nodes["a"].ParentID)
	}
}

func TestAssembleNodesChildrenAlwaysNonNil(t *testing.T) {
	nodes := assembleNodes([]model.Task{flatTask("a", "u1")}, nil)
	if nodes["a"].Children == nil {
		t.Fatal("children must be an empty slice, not nil")
	}
}

func TestCollectDescendantsDeepTree(t *testing.T) {
	owned := map[string]bool{"a": true, "b": true, "c": true, "d": true, "e": true}
	rels := []model.TaskRelationship{
		edge("a", "b"),
		edge("b", "c"),
		edge("b", "d"),
		edge("d", "e"),
	}

	got := collectDescendants("a", owned, rels)

	want := map[string]bool{"b": true, "c": true, "d": true, "e": true}
	if len(got) != len(want) {
		t.Fatalf("descendants = %v, want ids %v", got, want)
	}
	for _, id := range got {
		if !want[id] {
			t.Errorf("unexpected descendant %s", id)
		}
	}
}

func TestCollectDescendantsExcludesRootAndForeignTasks(t *testing.T) {
	owned := map[string]bool{"a": true, "b": true}
	rels := []model.TaskRelationship{
		edge("a", "b"),
		edge("a", "foreign"), // not owned, must not be collected
	}

	got := collectDescendants("a", owned, rels)
	if !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("descendants = %v, want [b]", got)
	}
}

func TestCollectDescendantsUnknownRoot(t *testing.T) {
	owned := map[string]bool{"a": true}
	if got := collectDescendants("missing", owned, nil); got != nil {
		t.Errorf("descendants = %v, want nil", got)
	}
}

func TestCollectDescendantsTerminatesOnCorruptCycle(t *testing.T) {
	owned := map[string]bool{"a": true, "b": true, "c": true}
	rels := []model.TaskRelationship{
		edge("a", "b"),
		edge("b", "c"),
		edge("c", "a"), // corrupt: violates the forest invariant
	}

	got := collectDescendants("a", owned, rels)

	// Must return without looping; a is the root and never re-collected.
	for _, id := range got {
		if id == "a" {
			t.Errorf("root collected as its own descendant")
		}
	}
	if len(got) != 2 {
		t.Errorf("descendants = %v, want b and c", got)
	}
}

func TestParentOf(t *testing.T) {
	parents := parentOf([]model.TaskRelationship{edge("a", "b"), edge("b", "c")})
	if parents["b"] != "a" || parents["c"] != "b" {
		t.Errorf("parentOf = %v", parents)
	}
	if _, ok := parents["a"]; ok {
		t.Error("root must have no parent entry")
	}
}
