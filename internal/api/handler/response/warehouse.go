package response

type Warehouse struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Host         string `json:"host"`
	Port         int    `json:"port"`
	User         string `json:"user"`
	DatabaseName string `json:"databaseName"`
	SSLMode      string `json:"sslMode"`
	DbType       string `json:"dbType"`
}

type TestConnectionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Version string `json:"version,omitempty"`
}
