package request

type CreateWarehouse struct {
	Name         string `json:"name" validate:"required"`
	Host         string `json:"host" validate:"required"`
	Port         int    `json:"port" validate:"required,min=1,max=65535"`
	User         string `json:"user" validate:"required"`
	Password     string `json:"password"`
	DatabaseName string `json:"databaseName" validate:"required"`
	SSLMode      string `json:"sslMode"`
	DbType       string `json:"dbType" validate:"required,oneof=mysql postgres sqlserver"`
}

type UpdateWarehouse struct {
	Name         *string `json:"name"`
	Host         *string `json:"host"`
	Port         *int    `json:"port"`
	User         *string `json:"user"`
	Password     *string `json:"password"`
	DatabaseName *string `json:"databaseName"`
	SSLMode      *string `json:"sslMode"`
	DbType       *string `json:"dbType"`
}
