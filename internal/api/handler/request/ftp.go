package request

type FTPListDTO struct {
	Host     string `json:"host" validate:"required"`
	Port     int    `json:"port"`
	User     string `json:"user" validate:"required"`
	Password string `json:"password" validate:"required"`
	Path     string `json:"path"`
}
