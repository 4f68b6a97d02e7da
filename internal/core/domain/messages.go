package domain

// ServiceType names a kind of service a backend announces.
type ServiceType string

const (
	// ServiceIDGenerator is the backend range allocator.
	ServiceIDGenerator ServiceType = "id-generator"
	// ServiceLedger is the backend ledger batcher.
	ServiceLedger ServiceType = "ledger-proxy"
)

// Node roles carried in membership metadata.
const (
	RoleBackend  = "backend"
	RoleFrontend = "frontend"
)

// Well-known unit paths.
const (
	// FrontendPath is where a frontend's membership listener lives.
	FrontendPath = "/user/frontend"
	// BackendPath is where a backend's membership announcer lives.
	BackendPath = "/user/backend"
)

// ServiceAnnouncement pairs a service type with the address of the unit
// providing it.
type ServiceAnnouncement struct {
	Type    ServiceType `codec:"type"`
	Address string      `codec:"address"`
}

// Registration is the ordered set of services one backend provides.
type Registration struct {
	Actors []ServiceAnnouncement `codec:"actors"`
}

// NewRegistration copies anns into a Registration.
func NewRegistration(anns ...ServiceAnnouncement) Registration {
	return Registration{Actors: append([]ServiceAnnouncement(nil), anns...)}
}

// Lookup returns the first announcement of type t.
func (r Registration) Lookup(t ServiceType) (ServiceAnnouncement, bool) {
	for _, a := range r.Actors {
		if a.Type == t {
			return a, true
		}
	}
	return ServiceAnnouncement{}, false
}

// IdsRequest asks the range allocator for Count consecutive IDs.
// Generation is echoed back unchanged in the response.
type IdsRequest struct {
	Count      int    `codec:"count"`
	Generation uint64 `codec:"generation"`
}

// IdsResponse carries a contiguous block of IDs as decimal strings.
type IdsResponse struct {
	IDs        []string `codec:"ids"`
	Generation uint64   `codec:"generation"`
}

// IdRequest asks an ID cache for one ID.
type IdRequest struct{}

// IdResponse carries one ID.
type IdResponse struct {
	ID string `codec:"id"`
}

// Reset restarts ID issuance from zero.
type Reset struct{}

// Reseted acknowledges a Reset.
type Reseted struct{}
