package persist

import (
	"reflect"

	"github.com/google/uuid"

	"github.com/goliatone/go-persist/store"
)

// Location is a world position with orientation.
type Location struct {
	World string
	X     float64
	Y     float64
	Z     float64
	Yaw   float32
	Pitch float32
}

// ItemStack is a typed quantity of inventory items.
type ItemStack struct {
	Type       string
	Amount     int
	Durability int
}

// EulerAngle is a rotation expressed in radians around each axis.
type EulerAngle struct {
	X float64
	Y float64
	Z float64
}

// LocationPersister persists Location values under world/x/y/z/yaw/pitch
// children.
type LocationPersister struct{}

func (LocationPersister) Create(root store.DataKey) (any, error) {
	if !root.KeyExists("world") {
		return nil, nil
	}
	return Location{
		World: root.GetString("world", ""),
		X:     root.GetDouble("x", 0),
		Y:     root.GetDouble("y", 0),
		Z:     root.GetDouble("z", 0),
		Yaw:   float32(root.GetDouble("yaw", 0)),
		Pitch: float32(root.GetDouble("pitch", 0)),
	}, nil
}

func (LocationPersister) Save(value any, root store.DataKey) {
	location, ok := value.(Location)
	if !ok {
		return
	}
	root.SetRaw("world", location.World)
	root.SetRaw("x", location.X)
	root.SetRaw("y", location.Y)
	root.SetRaw("z", location.Z)
	root.SetRaw("yaw", float64(location.Yaw))
	root.SetRaw("pitch", float64(location.Pitch))
}

// ItemStackPersister persists ItemStack values under type/amount/durability
// children.
type ItemStackPersister struct{}

func (ItemStackPersister) Create(root store.DataKey) (any, error) {
	if !root.KeyExists("type") {
		return nil, nil
	}
	return ItemStack{
		Type:       root.GetString("type", ""),
		Amount:     root.GetInt("amount", 1),
		Durability: root.GetInt("durability", 0),
	}, nil
}

func (ItemStackPersister) Save(value any, root store.DataKey) {
	stack, ok := value.(ItemStack)
	if !ok {
		return
	}
	root.SetRaw("type", stack.Type)
	root.SetRaw("amount", stack.Amount)
	root.SetRaw("durability", stack.Durability)
}

// EulerAnglePersister persists EulerAngle values under x/y/z children.
type EulerAnglePersister struct{}

func (EulerAnglePersister) Create(root store.DataKey) (any, error) {
	if !root.KeyExists("x") {
		return nil, nil
	}
	return EulerAngle{
		X: root.GetDouble("x", 0),
		Y: root.GetDouble("y", 0),
		Z: root.GetDouble("z", 0),
	}, nil
}

func (EulerAnglePersister) Save(value any, root store.DataKey) {
	angle, ok := value.(EulerAngle)
	if !ok {
		return
	}
	root.SetRaw("x", angle.X)
	root.SetRaw("y", angle.Y)
	root.SetRaw("z", angle.Z)
}

// UUIDPersister persists uuid.UUID values as their canonical text form.
type UUIDPersister struct{}

func (UUIDPersister) Create(root store.DataKey) (any, error) {
	text := root.GetString("", "")
	if text == "" {
		return nil, nil
	}
	id, err := uuid.Parse(text)
	if err != nil {
		return nil, err
	}
	return id, nil
}

func (UUIDPersister) Save(value any, root store.DataKey) {
	id, ok := value.(uuid.UUID)
	if !ok {
		return
	}
	root.SetRaw("", id.String())
}

// Built-in capability names.
const (
	PersisterLocation   = "location"
	PersisterItemStack  = "itemstack"
	PersisterEulerAngle = "eulerangle"
	PersisterUUID       = "uuid"
)

func registerBuiltins(registry *Registry) {
	_ = registry.RegisterPersister(PersisterLocation, func() Persister { return LocationPersister{} })
	_ = registry.RegisterPersister(PersisterItemStack, func() Persister { return ItemStackPersister{} })
	_ = registry.RegisterPersister(PersisterEulerAngle, func() Persister { return EulerAnglePersister{} })
	_ = registry.RegisterPersister(PersisterUUID, func() Persister { return UUIDPersister{} })

	_ = registry.RegisterRedirect(reflect.TypeOf(Location{}), PersisterLocation)
	_ = registry.RegisterRedirect(reflect.TypeOf(ItemStack{}), PersisterItemStack)
	_ = registry.RegisterRedirect(reflect.TypeOf(EulerAngle{}), PersisterEulerAngle)
	_ = registry.RegisterRedirect(reflect.TypeOf(uuid.UUID{}), PersisterUUID)
}
