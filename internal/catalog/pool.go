package catalog

import (
	"github.com/mesh-intelligence/entityaxis/pkg/types"
	"github.com/mesh-intelligence/entityaxis/pkg/wiring"
)

// ProductReader is a read-only product view. It declares the query
// contract only, so discovery registers it for reads alone.
type ProductReader struct {
	*ProductService
}

// Pool returns the candidate types the registry scans.
func Pool() []wiring.Candidate {
	return []wiring.Candidate{
		wiring.CandidateOf[*ProductService](wiring.EntityServiceContract[*Product, string]()),
		wiring.CandidateOf[*OrderService](wiring.EntityServiceContract[*Order, string]()),
		wiring.CandidateOf[*ProductReader](wiring.QueryServiceContract[*Product, string]()),
		// Interfaces are never registered as implementations.
		wiring.CandidateOf[types.EntityService[*Product, string]](wiring.EntityServiceContract[*Product, string]()),
	}
}

// NewRegistry scans Pool for command and query services.
func NewRegistry(opts ...wiring.Option) (*wiring.Registry, error) {
	r := wiring.NewRegistry()
	if _, err := wiring.ScanCommandAndQueryServices(r, Pool(), opts...); err != nil {
		return nil, err
	}
	return r, nil
}
