package parse

import (
	"errors"
	"fmt"
)

// ErrCyclicGraph is returned when a parent chain loops back on itself.
var ErrCyclicGraph = errors.New("cyclic message graph")

// OrderMessages walks parent links from current back to the root and
// returns the messages found on the way, oldest first. Nodes without a
// message (the synthetic root) are skipped. A missing node ends the walk.
func OrderMessages(nodes map[string]ChatGPTNode, current string) ([]ChatGPTMessage, error) {
	var msgs []ChatGPTMessage
	visited := make(map[string]struct{})

	id, ok := current, current != ""
	for ok {
		node, found := nodes[id]
		if !found {
			break
		}
		if _, seen := visited[id]; seen {
			return nil, fmt.Errorf("%w: node %q revisited", ErrCyclicGraph, id)
		}
		visited[id] = struct{}{}

		if node.Message != nil {
			msgs = append(msgs, *node.Message)
		}
		if node.Parent == nil {
			break
		}
		id, ok = *node.Parent, true
	}

	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}
