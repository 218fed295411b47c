package models

import "fmt"

// DBType identifies the warehouse engine a connection points at.
type DBType string

const (
	DBTypeMySQL     DBType = "mysql"
	DBTypePostgres  DBType = "postgres"
	DBTypeSQLServer DBType = "sqlserver"
)

// WarehouseMetadata stores a warehouse connection configuration. Mapping
// tables, staging tables and processing targets all live in the warehouse
// this points at, never in the application database.
type WarehouseMetadata struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Host         string `json:"host"`
	Port         int    `json:"port"`
	User         string `json:"user"`
	Password     string `json:"password"`
	DatabaseName string `json:"databaseName"`
	SSLMode      string `json:"sslMode"`
	DbType       DBType `json:"dbType"`
}

func (WarehouseMetadata) TableName() string {
	return "warehouse_metadata"
}

// ConnectionConfig builds the database/sql connection settings for this warehouse.
func (m WarehouseMetadata) ConnectionConfig() DBConnectionConfig {
	return DBConnectionConfig{
		Type:     m.DbType,
		Host:     m.Host,
		Port:     m.Port,
		Database: m.DatabaseName,
		Username: m.User,
		Password: m.Password,
		SSLMode:  m.SSLMode,
	}
}

// DBConnectionConfig holds everything needed to open a database/sql
// connection to a warehouse.
type DBConnectionConfig struct {
	Type     DBType `json:"type"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"password"`
	SSLMode  string `json:"sslMode"`
}

// GetDriverName returns the registered database/sql driver for the type.
func (c DBConnectionConfig) GetDriverName() string {
	switch c.Type {
	case DBTypeMySQL:
		return "mysql"
	case DBTypeSQLServer:
		return "sqlserver"
	default:
		return "postgres"
	}
}

// BuildConnectionString builds the driver-specific DSN.
func (c DBConnectionConfig) BuildConnectionString() string {
	switch c.Type {
	case DBTypeMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
			c.Username, c.Password, c.Host, c.Port, c.Database)
	case DBTypeSQLServer:
		return fmt.Sprintf("sqlserver://%s:%s@%s:%d?database=%s",
			c.Username, c.Password, c.Host, c.Port, c.Database)
	default:
		sslMode := c.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
			c.Host, c.Username, c.Password, c.Database, c.Port, sslMode)
	}
}
