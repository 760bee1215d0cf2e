package repository

import (
	"database/sql"

	"gorm.io/gorm"
)

// Repositories 按存储驱动组装的一组仓储
type Repositories struct {
	Bedrooms         BedroomsRepository
	Sensors          SensorsRepository
	SensorLogs       SensorLogsRepository
	SimulationConfig SimulationConfigRepository
}

// NewPostgresRepositories DB_DRIVER=postgres
func NewPostgresRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Bedrooms:         NewPostgresBedroomsRepository(db),
		Sensors:          NewPostgresSensorsRepository(db),
		SensorLogs:       NewPostgresSensorLogsRepository(db),
		SimulationConfig: NewPostgresSimulationConfigRepository(db),
	}
}

// NewSQLiteRepositories DB_DRIVER=sqlite
func NewSQLiteRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Bedrooms:         NewSQLiteBedroomsRepository(db),
		Sensors:          NewSQLiteSensorsRepository(db),
		SensorLogs:       NewSQLiteSensorLogsRepository(db),
		SimulationConfig: NewSQLiteSimulationConfigRepository(db),
	}
}
