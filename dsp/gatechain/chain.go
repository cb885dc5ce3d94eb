package gatechain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownNode is returned when a config references an unregistered node type.
var ErrUnknownNode = errors.New("unknown node type")

type chainNode struct {
	params  Params
	runtime Runtime
}

// Chain owns an ordered series of node runtimes processing one mono
// signal in place. It is independent of any application engine.
type Chain struct {
	ctx      Context
	registry *Registry

	nodes []*chainNode
	byID  map[string]*chainNode
}

// New creates a Chain with the given context and registry.
func New(ctx Context, registry *Registry) *Chain {
	return &Chain{
		ctx:      ctx,
		registry: registry,
		byID:     make(map[string]*chainNode),
	}
}

// SetContext updates the chain context and reconfigures every node for
// the new sample rate and block size.
func (c *Chain) SetContext(ctx Context) error {
	c.ctx = ctx

	for _, node := range c.nodes {
		err := node.runtime.Configure(ctx, node.params)
		if err != nil {
			return err
		}
	}

	return nil
}

// Context returns the current chain context.
func (c *Chain) Context() Context {
	return c.ctx
}

// Len returns the number of nodes in the chain.
func (c *Chain) Len() int {
	return len(c.nodes)
}

// Load parses a JSON array of node configs, builds the runtimes in
// order, and configures them. An empty string clears the chain.
func (c *Chain) Load(jsonConfig string) error {
	if jsonConfig == "" {
		c.Reset()
		return nil
	}

	var configs []Params

	err := json.Unmarshal([]byte(jsonConfig), &configs)
	if err != nil {
		return fmt.Errorf("gatechain: parse config: %w", err)
	}

	nodes, byID, err := c.buildNodes(configs)
	if err != nil {
		return err
	}

	c.nodes = nodes
	c.byID = byID

	return nil
}

func (c *Chain) buildNodes(configs []Params) ([]*chainNode, map[string]*chainNode, error) {
	nodes := make([]*chainNode, 0, len(configs))
	byID := make(map[string]*chainNode, len(configs))

	for i, params := range configs {
		if params.ID == "" {
			return nil, nil, fmt.Errorf("gatechain: node %d has no id", i)
		}

		if _, exists := byID[params.ID]; exists {
			return nil, nil, fmt.Errorf("gatechain: duplicate node id: %s", params.ID)
		}

		factory := c.registry.Lookup(params.Type)
		if factory == nil {
			return nil, nil, fmt.Errorf("%w: %s", ErrUnknownNode, params.Type)
		}

		runtime, err := factory(c.ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("gatechain: create node %s: %w", params.ID, err)
		}

		err = runtime.Configure(c.ctx, params)
		if err != nil {
			return nil, nil, fmt.Errorf("gatechain: configure node %s: %w", params.ID, err)
		}

		node := &chainNode{params: params, runtime: runtime}
		nodes = append(nodes, node)
		byID[params.ID] = node
	}

	return nodes, byID, nil
}

// Configure updates the parameters of an existing node. The node's type
// cannot change; reload the chain to change topology.
func (c *Chain) Configure(id string, params Params) error {
	node, ok := c.byID[id]
	if !ok {
		return fmt.Errorf("gatechain: no node with id: %s", id)
	}

	if params.Type != "" && params.Type != node.params.Type {
		return fmt.Errorf("gatechain: node %s: type change requires a reload", id)
	}

	params.ID = node.params.ID
	params.Type = node.params.Type

	err := node.runtime.Configure(c.ctx, params)
	if err != nil {
		return err
	}

	node.params = params

	return nil
}

// Runtime returns the runtime of the node with the given id, or nil.
// Callers can type-assert for node-specific controls.
func (c *Chain) Runtime(id string) Runtime {
	node, ok := c.byID[id]
	if !ok {
		return nil
	}

	return node.runtime
}

// Process runs the block through every non-bypassed node in order,
// in place.
func (c *Chain) Process(block []float64) {
	if len(block) == 0 {
		return
	}

	for _, node := range c.nodes {
		if node.params.Bypassed {
			continue
		}

		node.runtime.Process(block)
	}
}

// Reset removes all nodes and their processing state.
func (c *Chain) Reset() {
	c.nodes = nil
	c.byID = make(map[string]*chainNode)
}
