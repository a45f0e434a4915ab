package sqlite

import "github.com/felixgeelhaar/codeclip/internal/storage"

var (
	_ storage.Slots  = (*SlotStore)(nil)
	_ storage.Lister = (*SlotStore)(nil)
)
