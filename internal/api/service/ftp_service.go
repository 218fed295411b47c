package service

import (
	"fmt"
	"time"

	"etlapi"
	"etlapi/internal/api/handler/request"
	"etlapi/internal/api/handler/response"

	"github.com/jlaffaye/ftp"
	"github.com/rs/zerolog"
)

type FTPService struct {
	logger zerolog.Logger
}

func NewFTPService() *FTPService {
	return &FTPService{logger: etlapi.Logger}
}

// ListDirectory connects to an FTP server, logs in and lists the entries of
// a directory.
func (slf *FTPService) ListDirectory(dto request.FTPListDTO) ([]response.FTPEntry, error) {
	port := dto.Port
	if port == 0 {
		port = 21
	}
	addr := fmt.Sprintf("%s:%d", dto.Host, port)

	conn, err := ftp.Dial(addr, ftp.DialWithTimeout(10*time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ftp server: %w", err)
	}
	defer conn.Quit()

	if err := conn.Login(dto.User, dto.Password); err != nil {
		return nil, fmt.Errorf("ftp login failed: %w", err)
	}

	path := dto.Path
	if path == "" {
		path = "/"
	}
	entries, err := conn.List(path)
	if err != nil {
		return nil, fmt.Errorf("failed to list directory %s: %w", path, err)
	}

	result := make([]response.FTPEntry, 0, len(entries))
	for _, e := range entries {
		result = append(result, response.FTPEntry{
			Name:       e.Name,
			Type:       entryType(e.Type),
			Size:       e.Size,
			ModifiedAt: e.Time,
		})
	}

	slf.logger.Info().Str("host", dto.Host).Str("path", path).Int("entries", len(result)).Msg("Listed FTP directory")
	return result, nil
}

func entryType(t ftp.EntryType) string {
	switch t {
	case ftp.EntryTypeFolder:
		return "directory"
	case ftp.EntryTypeLink:
		return "link"
	default:
		return "file"
	}
}
