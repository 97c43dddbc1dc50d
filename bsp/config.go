package bsp

import (
	"github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"
)

// GraphConfig encapsulates the parameters for creating a Graph instance.
type GraphConfig struct {
	// ComputeFn is invoked on every vertex when executing a superstep.
	ComputeFn ComputeFunc

	// ComputeWorkers is the number of workers that execute the compute
	// function over the graph's vertices. If not specified, a default
	// value of 1 will be used instead.
	ComputeWorkers int
}

// validate checks whether the graph configuration is valid and sets the
// default values where required.
func (c *GraphConfig) validate() error {
	var err error
	if c.ComputeFn == nil {
		err = multierror.Append(err, xerrors.New("ComputeFn must be specified"))
	}

	if c.ComputeWorkers <= 0 {
		c.ComputeWorkers = 1
	}

	return err
}
