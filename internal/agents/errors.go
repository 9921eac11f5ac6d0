package agents

import "errors"

var (
	// ErrInvalidConfiguration covers malformed behaviour codes and market
	// parameters that make demand undefined, such as zero dividend volatility.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrEmptyNeighborSet is returned when neighbour incorporation runs
	// without any neighbour belief available.
	ErrEmptyNeighborSet = errors.New("no neighbour beliefs to incorporate")
	// ErrUndefinedBelief is returned when demand, a limit or incorporation is
	// requested before the strategy has produced a belief.
	ErrUndefinedBelief = errors.New("belief not yet available")
)
