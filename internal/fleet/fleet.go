// Package fleet resolves user-supplied node identifiers against the
// inventory and fans single logical operations out across the resolved
// nodes, collecting independent per-node outcomes.
package fleet

import (
	"context"
	"fmt"
	"net"

	"github.com/rs/zerolog/log"

	"github.com/rackctl/rackctl/internal/config"
)

// Resolve maps each identifier to an inventory node. An identifier matches
// on logical name, OS hostname, or any known address. One that matches
// nothing but parses as an IP synthesizes a bare node so ad-hoc hosts stay
// manageable without inventory entries. No identifiers selects the whole
// inventory.
func Resolve(inv *config.Inventory, ids []string) ([]config.Node, error) {
	if len(ids) == 0 {
		return inv.Nodes, nil
	}

	nodes := make([]config.Node, 0, len(ids))
	for _, id := range ids {
		n, ok := lookup(inv, id)
		if !ok {
			if net.ParseIP(id) == nil {
				return nil, fmt.Errorf("unknown node %q", id)
			}
			n = config.Node{Name: id, BMCIP: id}
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func lookup(inv *config.Inventory, id string) (config.Node, bool) {
	for _, n := range inv.Nodes {
		switch id {
		case n.Name, n.OSHostname, n.BMCIP, n.OSIP, n.StorageIP:
			if id != "" {
				return n, true
			}
		}
	}
	return config.Node{}, false
}

// Result is one node's outcome from an orchestrated operation.
type Result struct {
	Node    config.Node `json:"node"`
	Payload any         `json:"payload,omitempty"`
	Err     error       `json:"-"`
}

// OK reports whether the node's operation succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// ErrorText returns the failure reason, empty on success.
func (r Result) ErrorText() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Op is one logical operation applied to a single node.
type Op func(ctx context.Context, node config.Node) (any, error)

// Run executes op once per node, in input order. One node's failure never
// aborts the remaining nodes; every node gets exactly one Result, and the
// returned flag is true only when all of them succeeded. A single-node run
// produces the same list shape as a fleet-wide one.
func Run(ctx context.Context, nodes []config.Node, op Op) ([]Result, bool) {
	results := make([]Result, 0, len(nodes))
	ok := true

	for _, n := range nodes {
		payload, err := op(ctx, n)
		if err != nil {
			ok = false
			log.Debug().Str("node", n.Name).Err(err).Msg("node operation failed")
		}
		results = append(results, Result{Node: n, Payload: payload, Err: err})
	}

	return results, ok
}
