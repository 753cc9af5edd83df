package db

import "gorm.io/gorm"

type Repositories struct {
	Rooms       *RoomRepository
	Cycles      *CycleRepository
	Items       *ItemRepository
	Units       *UnitRepository
	Users       *UserRepository
	Consumption *ConsumptionRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Rooms:       NewRoomRepository(database),
		Cycles:      NewCycleRepository(database),
		Items:       NewItemRepository(database),
		Units:       NewUnitRepository(database),
		Users:       NewUserRepository(database),
		Consumption: NewConsumptionRepository(database),
	}
}
