package service

import (
	"fmt"

	"github.com/yndnr/idmesh-go/internal/actor"
	"github.com/yndnr/idmesh-go/internal/core/domain"
)

// Membership delivers membership events to units. Subscribe replays the
// current state as events before any later change.
type Membership interface {
	Subscribe(ref actor.Ref, filter domain.EventFilter)
	Unsubscribe(ref actor.Ref)
}

// LocalService is a service hosted on this node, by type and unit path.
type LocalService struct {
	Type domain.ServiceType
	Path string
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
