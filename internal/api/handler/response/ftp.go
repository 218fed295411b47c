package response

import "time"

type FTPEntry struct {
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Size       uint64    `json:"size"`
	ModifiedAt time.Time `json:"modifiedAt"`
}
