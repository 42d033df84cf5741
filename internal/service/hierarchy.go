package service

import "taskhub/internal/model"

// assembleNodes derives the caller-facing tree view from flat task records
// and the relationship edge set. Edges whose endpoints are not both present
// in the record set are silently dropped: relationships pointing at tasks
// outside the current result set (or another user's tasks) are invisible to
// the caller. Runs in O(tasks + edges).
func assembleNodes(tasks []model.Task, rels []model.TaskRelationship) map[string]*model.TaskNode {
	nodes := make(map[string]*model.TaskNode, len(tasks))
	for _, t := range tasks {
		nodes[t.ID] = &model.TaskNode{Task: t, Children: []string{}}
	}

	for _, rel := range rels {
		if rel.ParentTaskID == "" {
			continue
		}
		child, okChild := nodes[rel.ChildTaskID]
		parent, okParent := nodes[rel.ParentTaskID]
		if !okChild || !okParent {
			continue
		}
		parentID := rel.ParentTaskID
		child.ParentID = &parentID
		parent.Children = append(parent.Children, rel.ChildTaskID)
	}

	return nodes
}

// collectDescendants walks the parent→children adjacency from rootID and
// returns every reachable descendant id, excluding the root. Only edges
// whose endpoints are both in owned are expanded, so the result never
// crosses an ownership boundary. The visited set guarantees termination
// even if the persisted edges accidentally contain a cycle.
func collectDescendants(rootID string, owned map[string]bool, rels []model.TaskRelationship) []string {
	children := make(map[string][]string)
	for _, rel := range rels {
		if rel.ParentTaskID == "" || !owned[rel.ParentTaskID] || !owned[rel.ChildTaskID] {
			continue
		}
		children[rel.ParentTaskID] = append(children[rel.ParentTaskID], rel.ChildTaskID)
	}

	if !owned[rootID] {
		return nil
	}

	var descendants []string
	visited := map[string]bool{rootID: true}
	stack := append([]string(nil), children[rootID]...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[id] {
			continue
		}
		visited[id] = true
		descendants = append(descendants, id)
		stack = append(stack, children[id]...)
	}

	return descendants
}

// parentOf builds a child→parent lookup from the edge set.
func parentOf(rels []model.TaskRelationship) map[string]string {
	parents := make(map[string]string, len(rels))
	for _, rel := range rels {
		if rel.ParentTaskID != "" {
			parents[rel.ChildTaskID] = rel.ParentTaskID
		}
	}
	return parents
}
